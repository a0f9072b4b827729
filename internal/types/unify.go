package types

import (
	"fmt"

	"whlsl/internal/ast"
)

// UnificationContext binds the type parameters of one candidate function
// while its signature is matched against a call. Only the parameters given
// to NewUnificationContext and unresolved literal and null types are
// unifiable; every other type variable is rigid and equal only to itself.
//
// A context is owned by a single resolution attempt and is discarded when
// the attempt fails, so Unify does not roll back partial bindings.
type UnificationContext struct {
	params    []ast.TypeParameter
	unifiable map[ast.Node]bool
	parent    map[ast.Node]ast.Node
	state     *resolveState
}

// NewUnificationContext creates a context in which params are unifiable.
func NewUnificationContext(params []ast.TypeParameter) *UnificationContext {
	return newContext(newResolveState(), params)
}

func newContext(state *resolveState, params []ast.TypeParameter) *UnificationContext {
	c := &UnificationContext{
		params:    params,
		unifiable: make(map[ast.Node]bool, len(params)),
		parent:    make(map[ast.Node]ast.Node),
		state:     state,
	}
	for _, p := range params {
		c.unifiable[p] = true
	}
	return c
}

// Params returns the unifiable type parameters in declaration order.
func (c *UnificationContext) Params() []ast.TypeParameter { return c.params }

// normalize maps a node to the representative that takes part in unification.
func normalize(n ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.VariableRef:
		if cp, ok := v.Decl.(*ast.ConstexprTypeParameter); ok {
			return cp
		}
		return v
	case ast.Type:
		return ast.UnifyNode(v)
	}
	return n
}

// Find returns the current binding of n, or n's representative if unbound.
func (c *UnificationContext) Find(n ast.Node) ast.Node {
	n = normalize(n)
	for {
		next, ok := c.parent[n]
		if !ok {
			return n
		}
		n = normalize(next)
	}
}

func (c *UnificationContext) isVar(n ast.Node) bool {
	if c.unifiable[n] {
		return true
	}
	switch v := n.(type) {
	case *ast.LiteralType:
		return v.Resolved == nil
	case *ast.NullType:
		return v.Resolved == nil
	}
	return false
}

// Unify makes candidate and target equal by binding unifiable nodes.
// Candidate is the side that carries the context's parameters.
func (c *UnificationContext) Unify(candidate, target ast.Node) bool {
	a := c.Find(candidate)
	b := c.Find(target)
	if a == b {
		return true
	}
	av, bv := c.isVar(a), c.isVar(b)
	switch {
	case av && bv:
		return c.join(a, b)
	case av:
		return c.bind(a, b)
	case bv:
		return c.bind(b, a)
	}
	return c.structural(a, b)
}

func (c *UnificationContext) bind(v, target ast.Node) bool {
	switch v := v.(type) {
	case *ast.TypeVariable:
		if _, ok := target.(ast.Type); !ok {
			return false
		}
	case *ast.ConstexprTypeParameter:
		switch e := target.(type) {
		case *ast.ConstexprTypeParameter:
		case ast.Expr:
			if !ast.IsConstexpr(e) {
				return false
			}
		default:
			return false
		}
	case *ast.LiteralType:
		t, ok := target.(ast.Type)
		if !ok || !v.Accepts(t) {
			return false
		}
	case *ast.NullType:
		t, ok := target.(ast.Type)
		if !ok {
			return false
		}
		switch ast.UnifyNode(t).(type) {
		case *ast.PtrType, *ast.ArrayRefType:
		default:
			return false
		}
	default:
		return false
	}
	c.parent[v] = target
	return true
}

// join links two unbound unifiable nodes.
func (c *UnificationContext) join(a, b ast.Node) bool {
	ap, bp := c.unifiable[a], c.unifiable[b]
	switch {
	case ap && bp:
		_, aType := a.(*ast.TypeVariable)
		_, bType := b.(*ast.TypeVariable)
		if aType != bType {
			return false
		}
		c.parent[a] = b
		return true
	case ap:
		return c.bindParamToFree(a, b)
	case bp:
		return c.bindParamToFree(b, a)
	}

	la, aLit := a.(*ast.LiteralType)
	lb, bLit := b.(*ast.LiteralType)
	if aLit && bLit {
		switch {
		case la.Kind == lb.Kind || la.Kind == ast.LitInt:
			c.parent[a] = b
		case lb.Kind == ast.LitInt:
			c.parent[b] = a
		default:
			return false
		}
		return true
	}
	_, aNull := a.(*ast.NullType)
	_, bNull := b.(*ast.NullType)
	if aNull && bNull {
		c.parent[a] = b
		return true
	}
	return false
}

// bindParamToFree binds a type variable to an unresolved literal or null.
func (c *UnificationContext) bindParamToFree(p, free ast.Node) bool {
	if _, ok := p.(*ast.TypeVariable); !ok {
		return false
	}
	c.parent[p] = free
	return true
}

func (c *UnificationContext) structural(a, b ast.Node) bool {
	switch at := a.(type) {
	case *ast.PtrType:
		bt, ok := b.(*ast.PtrType)
		return ok && at.Space == bt.Space && c.Unify(at.Elem, bt.Elem)
	case *ast.ArrayRefType:
		bt, ok := b.(*ast.ArrayRefType)
		return ok && at.Space == bt.Space && c.Unify(at.Elem, bt.Elem)
	case *ast.ArrayType:
		bt, ok := b.(*ast.ArrayType)
		return ok && c.Unify(at.Elem, bt.Elem) && c.Unify(at.Length, bt.Length)
	case *ast.TypeRef:
		bt, ok := b.(*ast.TypeRef)
		if !ok || at.Type == nil || at.Type != bt.Type || len(at.TypeArguments) != len(bt.TypeArguments) {
			return false
		}
		for i := range at.TypeArguments {
			if !c.Unify(at.TypeArguments[i], bt.TypeArguments[i]) {
				return false
			}
		}
		return true
	case *ast.VectorType:
		bt, ok := b.(*ast.VectorType)
		return ok && at.Size == bt.Size && at.Elem == bt.Elem
	case *ast.MatrixType:
		bt, ok := b.(*ast.MatrixType)
		return ok && at.Rows == bt.Rows && at.Cols == bt.Cols && at.Elem == bt.Elem
	case ast.Expr:
		bt, ok := b.(ast.Expr)
		return ok && ast.ConstexprEqual(at, bt)
	}
	// Named types, rigid type variables and rigid constexpr parameters are
	// equal only by identity, which Unify already checked.
	return false
}

// Verify checks that every parameter is bound, defaulting parameters bound
// to bare literals to the literal's preferred type, and that the bindings
// satisfy protocol constraints and constexpr parameter types.
func (c *UnificationContext) Verify() error {
	for _, p := range c.params {
		root := c.Find(p)
		if root == normalize(p) {
			return fmt.Errorf("cannot infer type parameter %s", p.ParamName())
		}
		switch free := root.(type) {
		case *ast.LiteralType:
			if free.Resolved == nil {
				if free.Preferred == nil {
					return fmt.Errorf("cannot infer type parameter %s from %s", p.ParamName(), free)
				}
				c.parent[free] = free.Preferred
				root = free.Preferred
			}
		case *ast.NullType:
			if free.Resolved == nil {
				return fmt.Errorf("cannot infer type parameter %s from null", p.ParamName())
			}
		}

		switch p := p.(type) {
		case *ast.TypeVariable:
			t, ok := root.(ast.Type)
			if !ok {
				return fmt.Errorf("type parameter %s is bound to the value %s", p.Name, ast.NodeString(root))
			}
			if p.Protocol != nil {
				if err := c.state.inherits(t, p.Protocol); err != nil {
					return err
				}
			}
		case *ast.ConstexprTypeParameter:
			var vt ast.Type
			switch r := root.(type) {
			case *ast.ConstexprTypeParameter:
				vt = r.Type
			case ast.Expr:
				vt = r.ExprType()
			}
			if vt == nil {
				return fmt.Errorf("constexpr parameter %s is bound to %s, which has no type", p.Name, ast.NodeString(root))
			}
			if !Equals(vt, p.Type) {
				return fmt.Errorf("constexpr parameter %s expects a value of type %s, got %s", p.Name, p.Type, vt)
			}
		}
	}
	return nil
}

// Commit makes the bindings of literal and null types permanent.
func (c *UnificationContext) Commit() {
	for n := range c.parent {
		switch v := n.(type) {
		case *ast.LiteralType:
			if t, ok := c.Find(v).(ast.Type); ok && !c.isVar(t) {
				v.Resolved = t
			}
		case *ast.NullType:
			if t, ok := c.Find(v).(ast.Type); ok && !c.isVar(t) {
				v.Resolved = t
			}
		}
	}
}

// Equals reports whether a and b denote the same type or constexpr value,
// without side effects.
func Equals(a, b ast.Node) bool {
	c := NewUnificationContext(nil)
	return c.Unify(a, b) && c.Verify() == nil
}

// EqualsWithCommit is Equals that also commits literal and null types bound
// along the way.
func EqualsWithCommit(a, b ast.Node) bool {
	c := NewUnificationContext(nil)
	if !c.Unify(a, b) || c.Verify() != nil {
		return false
	}
	c.Commit()
	return true
}
