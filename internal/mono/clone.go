package mono

import (
	"whlsl/internal/ast"
	"whlsl/internal/source"
	"whlsl/internal/types"
)

// cloner deep-copies a function body while substituting type parameters.
// decls maps original parameters and locals to their copies so variable
// references in the copy point into the copy.
type cloner struct {
	sub   *types.Substitution
	decls map[ast.Node]ast.Node
}

func newCloner(sub *types.Substitution) *cloner {
	return &cloner{sub: sub, decls: make(map[ast.Node]ast.Node)}
}

func (c *cloner) typ(t ast.Type) ast.Type {
	if t == nil {
		return nil
	}
	return c.sub.Type(t)
}

func (c *cloner) signature(f *ast.FuncBase) ast.FuncBase {
	out := ast.FuncBase{
		Origin:     f.Origin,
		Name:       f.Name,
		ReturnType: c.typ(f.ReturnType),
		Shader:     f.Shader,
		Semantic:   f.Semantic,
		IsCast:     f.IsCast,
	}
	if len(f.Parameters) > 0 {
		out.Parameters = make([]*ast.FuncParameter, len(f.Parameters))
		for i, p := range f.Parameters {
			np := &ast.FuncParameter{Origin: p.Origin, Name: p.Name, Type: c.typ(p.Type), Semantic: p.Semantic}
			c.decls[p] = np
			out.Parameters[i] = np
		}
	}
	return out
}

func (c *cloner) block(b *ast.Block) *ast.Block {
	if b == nil {
		return nil
	}
	out := &ast.Block{}
	out.SetPos(b.Pos())
	if len(b.Statements) == 0 {
		return out
	}
	out.Statements = make([]ast.Stmt, len(b.Statements))
	for i, s := range b.Statements {
		out.Statements[i] = c.stmt(s)
	}
	return out
}

func (c *cloner) stmt(s ast.Stmt) ast.Stmt {
	if s == nil {
		return nil
	}
	switch s := s.(type) {
	case *ast.Block:
		return c.block(s)
	case *ast.VariableDecl:
		out := &ast.VariableDecl{Name: s.Name, Type: c.typ(s.Type), Initializer: c.expr(s.Initializer)}
		out.SetPos(s.Pos())
		c.decls[s] = out
		return out
	case *ast.Return:
		out := &ast.Return{Value: c.expr(s.Value)}
		out.SetPos(s.Pos())
		return out
	case *ast.IfStatement:
		out := &ast.IfStatement{Condition: c.expr(s.Condition), Body: c.stmt(s.Body), Else: c.stmt(s.Else)}
		out.SetPos(s.Pos())
		return out
	case *ast.WhileLoop:
		out := &ast.WhileLoop{Condition: c.expr(s.Condition), Body: c.stmt(s.Body)}
		out.SetPos(s.Pos())
		return out
	case *ast.DoWhileLoop:
		out := &ast.DoWhileLoop{Body: c.stmt(s.Body), Condition: c.expr(s.Condition)}
		out.SetPos(s.Pos())
		return out
	case *ast.ForLoop:
		out := &ast.ForLoop{Init: c.stmt(s.Init), Condition: c.expr(s.Condition), Increment: c.expr(s.Increment), Body: c.stmt(s.Body)}
		out.SetPos(s.Pos())
		return out
	case *ast.ExprStatement:
		out := &ast.ExprStatement{Expr: c.expr(s.Expr)}
		out.SetPos(s.Pos())
		return out
	case *ast.Break:
		out := &ast.Break{}
		out.SetPos(s.Pos())
		return out
	case *ast.Continue:
		out := &ast.Continue{}
		out.SetPos(s.Pos())
		return out
	case *ast.Trap:
		out := &ast.Trap{}
		out.SetPos(s.Pos())
		return out
	}
	return s
}

func (c *cloner) exprs(in []ast.Expr) []ast.Expr {
	if len(in) == 0 {
		return nil
	}
	out := make([]ast.Expr, len(in))
	for i, e := range in {
		out[i] = c.expr(e)
	}
	return out
}

func (c *cloner) nodes(in []ast.Node) []ast.Node {
	if len(in) == 0 {
		return nil
	}
	out := make([]ast.Node, len(in))
	for i, n := range in {
		switch v := n.(type) {
		case ast.Expr:
			out[i] = c.expr(v)
		default:
			out[i] = c.sub.Node(n)
		}
	}
	return out
}

func (c *cloner) typeList(in []ast.Type) []ast.Type {
	if len(in) == 0 {
		return nil
	}
	out := make([]ast.Type, len(in))
	for i, t := range in {
		out[i] = c.typ(t)
	}
	return out
}

func (c *cloner) expr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	var out ast.Expr
	switch e := e.(type) {
	case *ast.IntLiteral:
		lit := ast.NewIntLiteral(ast.At(e.Pos()), e.Value)
		c.literalType(e, lit)
		return lit
	case *ast.UintLiteral:
		lit := ast.NewUintLiteral(ast.At(e.Pos()), e.Value)
		c.literalType(e, lit)
		return lit
	case *ast.FloatLiteral:
		lit := ast.NewFloatLiteral(ast.At(e.Pos()), e.Value)
		c.literalType(e, lit)
		return lit
	case *ast.NullLiteral:
		lit := ast.NewNullLiteral(ast.At(e.Pos()))
		if old, ok := e.ExprType().(*ast.NullType); ok && old.Resolved != nil {
			lit.ExprType().(*ast.NullType).Resolved = c.typ(old.Resolved)
		}
		return lit
	case *ast.BoolLiteral:
		out = &ast.BoolLiteral{Value: e.Value}
	case *ast.VariableRef:
		if cp, ok := e.Decl.(*ast.ConstexprTypeParameter); ok {
			if _, bound := c.sub.Lookup(cp); bound {
				return c.constexprValue(e)
			}
		}
		decl := e.Decl
		if mapped, ok := c.decls[decl]; ok {
			decl = mapped
		}
		out = &ast.VariableRef{Name: e.Name, Decl: decl}
	case *ast.Assignment:
		out = &ast.Assignment{LHS: c.expr(e.LHS), RHS: c.expr(e.RHS)}
	case *ast.DereferenceExpression:
		out = &ast.DereferenceExpression{Ptr: c.expr(e.Ptr), Space: e.Space}
	case *ast.MakePtrExpression:
		out = &ast.MakePtrExpression{LValue: c.expr(e.LValue)}
	case *ast.MakeArrayRefExpression:
		out = &ast.MakeArrayRefExpression{LValue: c.expr(e.LValue), NumElements: c.expr(e.NumElements), FromPointer: e.FromPointer}
	case *ast.DotExpression:
		out = &ast.DotExpression{Struct: c.expr(e.Struct), FieldName: e.FieldName, StructType: c.typ(e.StructType), Getter: e.Getter}
	case *ast.CallExpression:
		out = &ast.CallExpression{
			Name:                e.Name,
			TypeArguments:       c.nodes(e.TypeArguments),
			Args:                c.exprs(e.Args),
			ReturnType:          c.typ(e.ReturnType),
			PossibleOverloads:   e.PossibleOverloads,
			Func:                e.Func,
			ActualTypeArguments: c.nodes(e.ActualTypeArguments),
			ArgumentTypes:       c.typeList(e.ArgumentTypes),
		}
	case *ast.LogicalNot:
		out = &ast.LogicalNot{Operand: c.expr(e.Operand)}
	case *ast.LogicalExpression:
		out = &ast.LogicalExpression{Op: e.Op, Left: c.expr(e.Left), Right: c.expr(e.Right)}
	case *ast.CommaExpression:
		out = &ast.CommaExpression{List: c.exprs(e.List)}
	default:
		return e
	}
	if sp, ok := out.(interface{ SetPos(source.Span) }); ok {
		sp.SetPos(e.Pos())
	}
	out.SetExprType(c.typ(e.ExprType()))
	return out
}

// constexprValue replaces a reference to a bound constexpr parameter with a
// copy of its value.
func (c *cloner) constexprValue(ref *ast.VariableRef) ast.Expr {
	switch v := c.sub.Expr(ref).(type) {
	case *ast.VariableRef:
		return v
	default:
		// The bound value comes from the call site and holds no references
		// into the function being copied.
		return c.expr(v)
	}
}

func (c *cloner) literalType(from, to ast.Expr) {
	old := ast.LiteralTypeOf(from)
	lt := ast.LiteralTypeOf(to)
	if old == nil || lt == nil {
		return
	}
	lt.Preferred = old.Preferred
	if old.Resolved != nil {
		lt.Resolved = c.typ(old.Resolved)
	}
}
