package sema

import (
	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/source"
	"whlsl/internal/types"
)

// expr checks e, records its type on the node and returns it.
func (tc *typeChecker) expr(e *env, x ast.Expr) (ast.Type, error) {
	if x == nil {
		return nil, internalErrorf(diag.InternalError, source.Span{}, "missing expression")
	}
	if err := tc.enter(x); err != nil {
		return nil, err
	}
	defer tc.leave()

	t, err := tc.exprType(e, x)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, internalErrorf(diag.InternalMissingType, x.Pos(), "expression %s has no type", ast.ExprString(x))
	}
	x.SetExprType(t)
	return t, nil
}

func (tc *typeChecker) exprType(e *env, x ast.Expr) (ast.Type, error) {
	switch v := x.(type) {
	case *ast.IntLiteral, *ast.UintLiteral, *ast.FloatLiteral:
		return tc.literal(v)
	case *ast.BoolLiteral:
		return tc.in.Bool, nil
	case *ast.NullLiteral:
		if v.ExprType() == nil {
			nt := &ast.NullType{}
			nt.SetPos(v.Pos())
			return nt, nil
		}
		return v.ExprType(), nil
	case *ast.VariableRef:
		return variableType(v)
	case *ast.Assignment:
		return tc.assignment(e, v)
	case *ast.DereferenceExpression:
		return tc.deref(e, v)
	case *ast.MakePtrExpression:
		return tc.makePtr(e, v)
	case *ast.MakeArrayRefExpression:
		return tc.makeArrayRef(e, v)
	case *ast.DotExpression:
		return tc.dot(e, v)
	case *ast.CallExpression:
		return tc.call(e, v)
	case *ast.LogicalNot:
		if err := tc.requireBool(e, v.Operand); err != nil {
			return nil, err
		}
		return tc.in.Bool, nil
	case *ast.LogicalExpression:
		if err := tc.requireBool(e, v.Left); err != nil {
			return nil, err
		}
		if err := tc.requireBool(e, v.Right); err != nil {
			return nil, err
		}
		return tc.in.Bool, nil
	case *ast.CommaExpression:
		var last ast.Type = tc.in.Void
		for _, item := range v.List {
			t, err := tc.expr(e, item)
			if err != nil {
				return nil, err
			}
			last = t
		}
		return last, nil
	default:
		return nil, internalErrorf(diag.InternalError, x.Pos(), "unexpected expression %T", x)
	}
}

// literal returns the provisional type of a numeric literal, giving it the
// registry's preferred type as its default.
func (tc *typeChecker) literal(x ast.Expr) (ast.Type, error) {
	lt := ast.LiteralTypeOf(x)
	if lt == nil {
		return nil, internalErrorf(diag.InternalMissingType, x.Pos(), "literal %s has no literal type", ast.ExprString(x))
	}
	if lt.Preferred == nil {
		lt.Preferred = tc.in.Preferred(lt.Kind)
	}
	return lt, nil
}

func variableType(ref *ast.VariableRef) (ast.Type, error) {
	var t ast.Type
	switch d := ref.Decl.(type) {
	case *ast.VariableDecl:
		t = d.Type
	case *ast.FuncParameter:
		t = d.Type
	case *ast.ConstexprTypeParameter:
		t = d.Type
	case nil:
		return nil, internalErrorf(diag.InternalError, ref.Pos(), "variable %s is not bound", ref.Name)
	default:
		return nil, internalErrorf(diag.InternalError, ref.Pos(), "variable %s is bound to %T", ref.Name, d)
	}
	if t == nil {
		return nil, internalErrorf(diag.InternalMissingType, ref.Pos(), "variable %s has no type", ref.Name)
	}
	return t, nil
}

func (tc *typeChecker) assignment(e *env, a *ast.Assignment) (ast.Type, error) {
	if !ast.IsLValue(a.LHS) {
		return nil, typeErrorf(diag.TypeNotLValue, a.LHS.Pos(), "LHS of assignment is not an lvalue: %s", ast.ExprString(a.LHS))
	}
	lhs, err := tc.expr(e, a.LHS)
	if err != nil {
		return nil, err
	}
	// A component read through a getter only shows up once typed.
	if !ast.IsLValue(a.LHS) {
		return nil, typeErrorf(diag.TypeNotLValue, a.LHS.Pos(), "LHS of assignment is not an lvalue: %s", ast.ExprString(a.LHS))
	}
	rhs, err := tc.expr(e, a.RHS)
	if err != nil {
		return nil, err
	}
	if !types.EqualsWithCommit(lhs, rhs) {
		return nil, typeErrorf(diag.TypeAssignMismatch, a.Pos(), "type mismatch in assignment: %s versus %s", lhs, rhs)
	}
	return lhs, nil
}

func (tc *typeChecker) deref(e *env, d *ast.DereferenceExpression) (ast.Type, error) {
	t, err := tc.expr(e, d.Ptr)
	if err != nil {
		return nil, err
	}
	ptr, ok := ast.UnifyNode(t).(*ast.PtrType)
	if !ok {
		return nil, typeErrorf(diag.TypeDerefNonPointer, d.Pos(), "type passed to dereference is not a pointer: %s", t)
	}
	d.Space = ptr.Space
	return ptr.Elem, nil
}

func (tc *typeChecker) makePtr(e *env, m *ast.MakePtrExpression) (ast.Type, error) {
	t, err := tc.expr(e, m.LValue)
	if err != nil {
		return nil, err
	}
	if !ast.IsLValue(m.LValue) {
		return nil, typeErrorf(diag.TypeNotLValue, m.Pos(), "operand to & is not an lvalue: %s", ast.ExprString(m.LValue))
	}
	ptr := &ast.PtrType{Space: ast.AddressSpaceOf(m.LValue), Elem: ast.UnifyNode(t)}
	ptr.SetPos(m.Pos())
	return ptr, nil
}

// makeArrayRef types @x. A pointer operand turns the node into a
// pointer-to-array-reference conversion; an array captures its length and
// any other lvalue is a one-element array reference.
func (tc *typeChecker) makeArrayRef(e *env, m *ast.MakeArrayRefExpression) (ast.Type, error) {
	t, err := tc.expr(e, m.LValue)
	if err != nil {
		return nil, err
	}
	elem := ast.UnifyNode(t)
	if ptr, ok := elem.(*ast.PtrType); ok {
		m.FromPointer = true
		ref := &ast.ArrayRefType{Space: ptr.Space, Elem: ptr.Elem}
		ref.SetPos(m.Pos())
		return ref, nil
	}
	if !ast.IsLValue(m.LValue) {
		return nil, typeErrorf(diag.TypeNotLValue, m.Pos(), "operand to @ is not an lvalue: %s", ast.ExprString(m.LValue))
	}
	if _, ok := elem.(*ast.ArrayRefType); ok {
		return nil, typeErrorf(diag.TypeArrayRefOfArrayRef, m.Pos(), "operand to @ is an array reference: %s", elem)
	}
	if arr, ok := elem.(*ast.ArrayType); ok {
		m.NumElements = arr.Length
		elem = arr.Elem
	} else {
		one := ast.NewUintLiteral(ast.At(m.Pos()), 1)
		lt := ast.LiteralTypeOf(one)
		lt.Preferred = tc.in.Uint
		lt.Resolved = tc.in.Uint
		m.NumElements = one
	}
	ref := &ast.ArrayRefType{Space: ast.AddressSpaceOf(m.LValue), Elem: elem}
	ref.SetPos(m.Pos())
	return ref, nil
}

func (tc *typeChecker) dot(e *env, d *ast.DotExpression) (ast.Type, error) {
	t, err := tc.expr(e, d.Struct)
	if err != nil {
		return nil, err
	}
	base := ast.UnifyNode(t)
	d.StructType = autoWrap(base)
	if at, ok := base.(*ast.ArrayType); ok && ast.IsLValue(d.Struct) {
		d.StructType = decayedArray(d.Struct, at)
	}
	st, ok := types.Instantiated(base).(*ast.StructType)
	if !ok {
		if t, ok := tc.getter(d, base); ok {
			return t, nil
		}
		return nil, typeErrorf(diag.TypeNotStruct, d.Pos(), "operand to dot expression is not a struct type: %s", base)
	}
	f := st.FieldByName(d.FieldName)
	if f == nil {
		return nil, typeErrorf(diag.TypeUnknownField, d.Pos(), "field %s not found in %s", d.FieldName, base)
	}
	return f.Type, nil
}

// getter resolves base.FieldName through the operator.FieldName overload
// set, which is how vector components are read.
func (tc *typeChecker) getter(d *ast.DotExpression, base ast.Type) (ast.Type, bool) {
	candidates := tc.prog.OverloadSet(GetterFuncPrefix + d.FieldName)
	if len(candidates) == 0 {
		return nil, false
	}
	res := types.ResolveOverload(candidates, nil, []ast.Type{autoWrap(base)}, nil)
	if res.Func == nil {
		return nil, false
	}
	res.Context.Commit()
	fn := res.Func.Base()
	d.Getter = res.Func
	return types.SubstitutionFromContext(fn.TypeParameters, res.Context).Type(fn.ReturnType), true
}
