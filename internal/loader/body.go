package loader

import (
	"strconv"

	"fortio.org/safecast"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
)

var (
	stmtKinds = []string{"let", "return", "if", "while", "do_while", "for", "expr", "block", "break", "continue", "trap"}
	exprKinds = []string{"int", "uint", "float", "bool", "null", "var", "assign", "deref", "addr", "arrayref", "dot", "call", "not", "and", "or", "comma"}
)

// block binds a statement list in a fresh scope.
func (b *binder) block(s *scope, n *dnode) (*ast.Block, error) {
	if !n.isNull() && n.kind != seqNode {
		return nil, errorf(diag.LoadBadDocument, n, "a block is a sequence of statements")
	}
	inner := newScope(s)
	blk := &ast.Block{}
	setPos(blk, n)
	for _, item := range n.list() {
		st, err := b.stmt(inner, item)
		if err != nil {
			return nil, err
		}
		blk.Statements = append(blk.Statements, st)
	}
	return blk, nil
}

func (b *binder) stmt(s *scope, n *dnode) (ast.Stmt, error) {
	var out ast.Stmt
	if word, ok := n.str(); ok && n.tag == tagStr {
		switch word {
		case "break":
			out = &ast.Break{}
		case "continue":
			out = &ast.Continue{}
		case "trap":
			out = &ast.Trap{}
		case "return":
			out = &ast.Return{}
		default:
			return nil, errorf(diag.LoadBadNode, n, "unknown statement %q", word)
		}
		setPos(out, n)
		return out, nil
	}
	kind, val, err := kindOf(n, stmtKinds, "statement")
	if err != nil {
		return nil, err
	}

	switch kind {
	case "let":
		out, err = b.let(s, n, val)
	case "return":
		r := &ast.Return{}
		if !val.isNull() {
			r.Value, err = b.expr(s, val)
		}
		out = r
	case "if":
		out, err = b.ifStmt(s, n, val)
	case "while":
		w := &ast.WhileLoop{}
		if w.Condition, err = b.expr(s, val); err == nil {
			w.Body, err = b.block(s, n.get("body"))
		}
		out = w
	case "do_while":
		d := &ast.DoWhileLoop{}
		if d.Body, err = b.block(s, n.get("body")); err == nil {
			d.Condition, err = b.expr(s, val)
		}
		out = d
	case "for":
		out, err = b.forLoop(s, n, val)
	case "expr":
		es := &ast.ExprStatement{}
		es.Expr, err = b.expr(s, val)
		out = es
	case "block":
		out, err = b.block(s, val)
	case "break":
		out = &ast.Break{}
	case "continue":
		out = &ast.Continue{}
	case "trap":
		out = &ast.Trap{}
	}
	if err != nil {
		return nil, err
	}
	setPos(out, n)
	return out, nil
}

// let declares a local after binding its initializer, so the initializer
// sees an outer variable of the same name.
func (b *binder) let(s *scope, n, nameNode *dnode) (*ast.VariableDecl, error) {
	name, err := ident(nameNode, "variable name")
	if err != nil {
		return nil, err
	}
	vd := &ast.VariableDecl{Name: name}
	if vd.Type, err = b.typ(s, n.get("type")); err != nil {
		return nil, err
	}
	if init := n.get("init"); init != nil {
		if vd.Initializer, err = b.expr(s, init); err != nil {
			return nil, err
		}
	}
	if err := s.declare(name, vd, n); err != nil {
		return nil, err
	}
	return vd, nil
}

func (b *binder) ifStmt(s *scope, n, cond *dnode) (*ast.IfStatement, error) {
	var err error
	is := &ast.IfStatement{}
	if is.Condition, err = b.expr(s, cond); err != nil {
		return nil, err
	}
	if is.Body, err = b.block(s, n.get("then")); err != nil {
		return nil, err
	}
	if els := n.get("else"); els != nil {
		if is.Else, err = b.block(s, els); err != nil {
			return nil, err
		}
	}
	return is, nil
}

// forLoop scopes its init statement to the loop.
func (b *binder) forLoop(s *scope, n, cond *dnode) (*ast.ForLoop, error) {
	var err error
	inner := newScope(s)
	fl := &ast.ForLoop{}
	if init := n.get("init"); init != nil {
		if fl.Init, err = b.stmt(inner, init); err != nil {
			return nil, err
		}
	}
	if !cond.isNull() {
		if fl.Condition, err = b.expr(inner, cond); err != nil {
			return nil, err
		}
	}
	if inc := n.get("inc"); !inc.isNull() {
		if fl.Increment, err = b.expr(inner, inc); err != nil {
			return nil, err
		}
	}
	if fl.Body, err = b.block(inner, n.get("body")); err != nil {
		return nil, err
	}
	return fl, nil
}

// expr binds an expression. Scalars are literals by their tag, strings
// name variables, and null is the null literal.
func (b *binder) expr(s *scope, n *dnode) (ast.Expr, error) {
	if n.isNull() {
		if n == nil {
			return nil, errorf(diag.LoadBadDocument, n, "missing expression")
		}
		return ast.NewNullLiteral(ast.At(n.span)), nil
	}
	if n.kind == scalarNode {
		switch n.tag {
		case tagInt:
			return intLiteral(n)
		case tagFloat:
			return floatLiteral(n)
		case tagBool:
			return boolLiteral(n)
		default:
			return b.varRef(s, n)
		}
	}
	kind, val, err := kindOf(n, exprKinds, "expression")
	if err != nil {
		return nil, err
	}

	var out ast.Expr
	switch kind {
	case "int":
		return intLiteral(val)
	case "uint":
		return uintLiteral(val)
	case "float":
		return floatLiteral(val)
	case "bool":
		return boolLiteral(val)
	case "null":
		return ast.NewNullLiteral(ast.At(n.span)), nil
	case "var":
		return b.varRef(s, val)
	case "assign":
		ops, err := b.operands(s, val, 2, "assign")
		if err != nil {
			return nil, err
		}
		out = &ast.Assignment{LHS: ops[0], RHS: ops[1]}
	case "deref":
		e, err := b.expr(s, val)
		if err != nil {
			return nil, err
		}
		out = &ast.DereferenceExpression{Ptr: e}
	case "addr":
		e, err := b.expr(s, val)
		if err != nil {
			return nil, err
		}
		out = &ast.MakePtrExpression{LValue: e}
	case "arrayref":
		e, err := b.expr(s, val)
		if err != nil {
			return nil, err
		}
		out = &ast.MakeArrayRefExpression{LValue: e}
	case "dot":
		e, err := b.expr(s, val)
		if err != nil {
			return nil, err
		}
		field, err := ident(n.get("field"), "field name")
		if err != nil {
			return nil, err
		}
		out = &ast.DotExpression{Struct: e, FieldName: field}
	case "call":
		out, err = b.call(s, n, val)
		if err != nil {
			return nil, err
		}
	case "not":
		e, err := b.expr(s, val)
		if err != nil {
			return nil, err
		}
		out = &ast.LogicalNot{Operand: e}
	case "and", "or":
		ops, err := b.operands(s, val, 2, kind)
		if err != nil {
			return nil, err
		}
		op := ast.LogicalAnd
		if kind == "or" {
			op = ast.LogicalOr
		}
		out = &ast.LogicalExpression{Op: op, Left: ops[0], Right: ops[1]}
	case "comma":
		ops, err := b.operands(s, val, -1, kind)
		if err != nil {
			return nil, err
		}
		out = &ast.CommaExpression{List: ops}
	}
	setPos(out, n)
	return out, nil
}

// operands binds a sequence of expressions; want < 0 accepts any count.
func (b *binder) operands(s *scope, n *dnode, want int, what string) ([]ast.Expr, error) {
	if n == nil || n.kind != seqNode {
		return nil, errorf(diag.LoadBadDocument, n, "%s takes a sequence of operands", what)
	}
	if want >= 0 && len(n.items) != want {
		return nil, errorf(diag.LoadBadDocument, n, "%s takes %d operands, got %d", what, want, len(n.items))
	}
	out := make([]ast.Expr, 0, len(n.items))
	for _, item := range n.items {
		e, err := b.expr(s, item)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// call binds a call to its overload set. An empty set is left nil so the
// checker falls back to the program's functions of that name, which
// includes functions synthesized after loading.
func (b *binder) call(s *scope, n, nameNode *dnode) (*ast.CallExpression, error) {
	name, err := ident(nameNode, "callee name")
	if err != nil {
		return nil, err
	}
	ce := &ast.CallExpression{Name: name}
	for _, a := range n.get("type_args").list() {
		arg, err := b.typeArg(s, a)
		if err != nil {
			return nil, err
		}
		ce.TypeArguments = append(ce.TypeArguments, arg)
	}
	if args := n.get("args"); args != nil {
		if ce.Args, err = b.operands(s, args, -1, "call"); err != nil {
			return nil, err
		}
	}
	if ret := n.get("returns"); ret != nil {
		if ce.ReturnType, err = b.typ(s, ret); err != nil {
			return nil, err
		}
	}
	if set := b.prog.OverloadSet(name); len(set) != 0 {
		ce.PossibleOverloads = set
	}
	return ce, nil
}

func (b *binder) varRef(s *scope, n *dnode) (*ast.VariableRef, error) {
	name, err := ident(n, "variable name")
	if err != nil {
		return nil, err
	}
	decl := s.lookup(name)
	switch decl.(type) {
	case *ast.VariableDecl, *ast.FuncParameter, *ast.ConstexprTypeParameter:
	case nil:
		return nil, errorf(diag.LoadUnknownName, n, "unknown variable %q", name)
	default:
		return nil, errorf(diag.LoadUnknownName, n, "%q names a type, not a value", name)
	}
	ref := &ast.VariableRef{Name: name, Decl: decl}
	setPos(ref, n)
	return ref, nil
}

func intLiteral(n *dnode) (ast.Expr, error) {
	raw, err := n.scalar("int literal")
	if err != nil {
		return nil, err
	}
	v, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		return nil, errorf(diag.LoadBadValue, n, "invalid int literal %q", raw)
	}
	i, err := safecast.Conv[int32](v)
	if err != nil {
		return nil, errorf(diag.LoadBadValue, n, "int literal %d out of range", v)
	}
	return ast.NewIntLiteral(ast.At(n.span), i), nil
}

func uintLiteral(n *dnode) (ast.Expr, error) {
	raw, err := n.scalar("uint literal")
	if err != nil {
		return nil, err
	}
	v, err := strconv.ParseUint(raw, 0, 64)
	if err != nil {
		return nil, errorf(diag.LoadBadValue, n, "invalid uint literal %q", raw)
	}
	u, err := safecast.Conv[uint32](v)
	if err != nil {
		return nil, errorf(diag.LoadBadValue, n, "uint literal %d out of range", v)
	}
	return ast.NewUintLiteral(ast.At(n.span), u), nil
}

func floatLiteral(n *dnode) (ast.Expr, error) {
	raw, err := n.scalar("float literal")
	if err != nil {
		return nil, err
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return nil, errorf(diag.LoadBadValue, n, "invalid float literal %q", raw)
	}
	return ast.NewFloatLiteral(ast.At(n.span), float32(v)), nil
}

func boolLiteral(n *dnode) (ast.Expr, error) {
	raw, err := n.scalar("bool literal")
	if err != nil {
		return nil, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errorf(diag.LoadBadValue, n, "invalid bool literal %q", raw)
	}
	lit := &ast.BoolLiteral{Value: v}
	lit.SetPos(n.span)
	return lit, nil
}
