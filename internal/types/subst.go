package types

import (
	"whlsl/internal/ast"
)

// Substitution maps type parameters to type arguments (types for type
// variables, constexpr values for constexpr parameters).
type Substitution struct {
	m map[ast.Node]ast.Node
}

// NewSubstitution pairs params with args positionally.
func NewSubstitution(params []ast.TypeParameter, args []ast.Node) *Substitution {
	s := &Substitution{m: make(map[ast.Node]ast.Node, len(params))}
	for i, p := range params {
		if i >= len(args) {
			break
		}
		s.m[p] = args[i]
	}
	return s
}

// SubstitutionFromContext maps each parameter to its binding in ctx.
func SubstitutionFromContext(params []ast.TypeParameter, ctx *UnificationContext) *Substitution {
	s := &Substitution{m: make(map[ast.Node]ast.Node, len(params))}
	for _, p := range params {
		if bound := ctx.Find(p); bound != normalize(p) {
			s.m[p] = bound
		}
	}
	return s
}

// Lookup returns the argument bound to p.
func (s *Substitution) Lookup(p ast.TypeParameter) (ast.Node, bool) {
	if s == nil {
		return nil, false
	}
	n, ok := s.m[p]
	return n, ok
}

// Empty reports whether the substitution maps nothing.
func (s *Substitution) Empty() bool { return s == nil || len(s.m) == 0 }

// Type substitutes t, sharing unchanged subtrees with the input.
func (s *Substitution) Type(t ast.Type) ast.Type {
	if s.Empty() || t == nil {
		return t
	}
	switch v := t.(type) {
	case *ast.TypeVariable:
		if r, ok := s.m[v].(ast.Type); ok {
			return r
		}
	case *ast.TypeRef:
		if len(v.TypeArguments) == 0 {
			if tv, ok := v.Type.(*ast.TypeVariable); ok {
				if r, ok := s.m[tv].(ast.Type); ok {
					return r
				}
			}
			return v
		}
		args, changed := s.nodes(v.TypeArguments)
		if !changed {
			return v
		}
		out := &ast.TypeRef{Name: v.Name, TypeArguments: args, Type: v.Type}
		out.SetPos(v.Pos())
		return out
	case *ast.PtrType:
		elem := s.Type(v.Elem)
		if elem == v.Elem {
			return v
		}
		out := &ast.PtrType{Space: v.Space, Elem: elem}
		out.SetPos(v.Pos())
		return out
	case *ast.ArrayRefType:
		elem := s.Type(v.Elem)
		if elem == v.Elem {
			return v
		}
		out := &ast.ArrayRefType{Space: v.Space, Elem: elem}
		out.SetPos(v.Pos())
		return out
	case *ast.ArrayType:
		elem := s.Type(v.Elem)
		length := s.Expr(v.Length)
		if elem == v.Elem && length == v.Length {
			return v
		}
		out := &ast.ArrayType{Elem: elem, Length: length}
		out.SetPos(v.Pos())
		return out
	}
	return t
}

// Expr substitutes references to constexpr parameters. Other expressions
// are returned unchanged.
func (s *Substitution) Expr(e ast.Expr) ast.Expr {
	if s.Empty() || e == nil {
		return e
	}
	ref, ok := e.(*ast.VariableRef)
	if !ok {
		return e
	}
	cp, ok := ref.Decl.(*ast.ConstexprTypeParameter)
	if !ok {
		return e
	}
	switch r := s.m[cp].(type) {
	case ast.Expr:
		return r
	case *ast.ConstexprTypeParameter:
		out := &ast.VariableRef{Name: r.Name, Decl: r}
		out.SetPos(ref.Pos())
		out.SetExprType(r.Type)
		return out
	}
	return e
}

// Node substitutes a type argument of either kind.
func (s *Substitution) Node(n ast.Node) ast.Node {
	switch v := n.(type) {
	case ast.Type:
		return s.Type(v)
	case ast.Expr:
		return s.Expr(v)
	case *ast.ConstexprTypeParameter:
		if r, ok := s.m[v]; ok {
			return r
		}
	}
	return n
}

func (s *Substitution) nodes(in []ast.Node) ([]ast.Node, bool) {
	out := make([]ast.Node, len(in))
	changed := false
	for i, n := range in {
		out[i] = s.Node(n)
		if out[i] != n {
			changed = true
		}
	}
	return out, changed
}

// InstantiateStruct returns st with its fields' types substituted by args.
func InstantiateStruct(st *ast.StructType, args []ast.Node) *ast.StructType {
	if len(st.TypeParameters) == 0 {
		return st
	}
	sub := NewSubstitution(st.TypeParameters, args)
	out := &ast.StructType{Name: st.Name, Fields: make([]*ast.Field, len(st.Fields))}
	out.SetPos(st.Pos())
	for i, f := range st.Fields {
		out.Fields[i] = &ast.Field{Origin: f.Origin, Name: f.Name, Type: sub.Type(f.Type), Semantic: f.Semantic}
	}
	return out
}

// Instantiated resolves t to the type it denotes once the type arguments of
// a generic reference are applied.
func Instantiated(t ast.Type) ast.Type {
	u := ast.UnifyNode(t)
	ref, ok := u.(*ast.TypeRef)
	if !ok {
		return u
	}
	switch target := ref.Type.(type) {
	case *ast.TypeDef:
		return Instantiated(NewSubstitution(target.TypeParameters, ref.TypeArguments).Type(target.Type))
	case *ast.StructType:
		return InstantiateStruct(target, ref.TypeArguments)
	case nil:
		return u
	default:
		return target
	}
}
