package sema

import (
	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/semantics"
	"whlsl/internal/types"
)

// protocolDecl requires every signature to mention the protocol's type
// variable, and every type parameter of a signature to be inferable from its
// value parameters.
func (tc *typeChecker) protocolDecl(decl *ast.ProtocolDecl) error {
	for _, ext := range decl.Extends {
		if ext.Decl == nil {
			return internalErrorf(diag.InternalUnresolvedType, ext.Pos(), "protocol %s extends unresolved protocol %s", decl.Name, ext.Name)
		}
	}
	for _, sig := range decl.Signatures {
		mentioned := make(map[ast.Node]bool)
		for _, p := range sig.Parameters {
			ast.Inspect(p.Type, func(n ast.Node) bool {
				switch v := n.(type) {
				case *ast.TypeVariable:
					mentioned[v] = true
				case *ast.TypeRef:
					if v.Type != nil {
						mentioned[v.Type] = true
					}
				case *ast.VariableRef:
					if v.Decl != nil {
						mentioned[v.Decl] = true
					}
				}
				return true
			})
		}
		for _, tp := range sig.TypeParameters {
			if !mentioned[tp] {
				return typeErrorf(diag.TypeProtocolNotInferable, tp.Pos(),
					"type parameter %s of protocol signature %s is not inferable from value parameters", tp.ParamName(), sig.Signature())
			}
		}
		if decl.TypeVariable == nil || !mentioned[decl.TypeVariable] {
			return typeErrorf(diag.TypeProtocolVarNotMentioned, sig.Pos(),
				"protocol's type variable (%s) not mentioned in signature: %s", decl.Name, sig.Signature())
		}
	}
	return nil
}

func (tc *typeChecker) funcDecl(fn ast.Func, body *ast.Block) error {
	b := fn.Base()
	e := &env{typeParams: b.TypeParameters, fn: b}
	if err := tc.typeParameters(e, b.TypeParameters); err != nil {
		return err
	}
	if b.ReturnType == nil {
		return internalErrorf(diag.InternalMissingType, b.Pos(), "function %s has no return type", b.Name)
	}
	if err := tc.typ(e, b.ReturnType); err != nil {
		return err
	}
	for _, p := range b.Parameters {
		if p.Type == nil {
			return internalErrorf(diag.InternalMissingType, p.Pos(), "parameter %s of %s has no type", p.Name, b.Name)
		}
		if err := tc.typ(e, p.Type); err != nil {
			return err
		}
	}
	if b.Shader != ast.StageNone {
		if err := semantics.CheckEntryPoint(fn, tc.in); err != nil {
			return fromSemantics(err)
		}
	}
	if body == nil {
		return nil
	}
	return tc.block(e, body)
}

func (tc *typeChecker) typeParameters(e *env, params []ast.TypeParameter) error {
	for _, tp := range params {
		switch p := tp.(type) {
		case *ast.TypeVariable:
			if p.Protocol != nil && p.Protocol.Decl == nil {
				return internalErrorf(diag.InternalUnresolvedType, p.Pos(), "type variable %s is constrained by unresolved protocol %s", p.Name, p.Protocol.Name)
			}
		case *ast.ConstexprTypeParameter:
			if p.Type == nil {
				return internalErrorf(diag.InternalMissingType, p.Pos(), "constexpr parameter %s has no type", p.Name)
			}
			if err := tc.typ(e, p.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tc *typeChecker) structDecl(st *ast.StructType) error {
	e := &env{typeParams: st.TypeParameters}
	if err := tc.typeParameters(e, st.TypeParameters); err != nil {
		return err
	}
	for _, f := range st.Fields {
		if f.Type == nil {
			return internalErrorf(diag.InternalMissingType, f.Pos(), "field %s of %s has no type", f.Name, st.Name)
		}
		if err := tc.typ(e, f.Type); err != nil {
			return err
		}
	}
	return nil
}

// enumDecl checks the base type and member values. Members without a value
// get the previous value plus one, starting at zero.
func (tc *typeChecker) enumDecl(en *ast.EnumType) error {
	e := &env{}
	if en.Base == nil {
		en.Base = tc.in.Int
	}
	if err := tc.typ(e, en.Base); err != nil {
		return err
	}
	base, ok := ast.UnifyNode(en.Base).(*ast.PrimitiveType)
	if !ok || !base.IsInt() {
		return typeErrorf(diag.TypeEnumBase, en.Pos(), "base type %s of enum %s is not an integer type", en.Base, en.Name)
	}

	next := int64(0)
	for i, m := range en.Members {
		if m.Value == nil {
			lit, err := tc.enumLiteral(m, base, next)
			if err != nil {
				return err
			}
			m.Value = lit
		}
		t, err := tc.expr(e, m.Value)
		if err != nil {
			return err
		}
		if !ast.IsConstexpr(m.Value) {
			return typeErrorf(diag.TypeEnumMember, m.Pos(), "value of enum member %s.%s is not constexpr", en.Name, m.Name)
		}
		if !types.EqualsWithCommit(t, en.Base) {
			return typeErrorf(diag.TypeEnumMember, m.Pos(), "value of enum member %s.%s has type %s, expected %s", en.Name, m.Name, t, en.Base)
		}
		for _, prev := range en.Members[:i] {
			if ast.ConstexprEqual(prev.Value, m.Value) {
				return typeErrorf(diag.TypeEnumMember, m.Pos(), "enum members %s.%s and %s.%s have the same value", en.Name, prev.Name, en.Name, m.Name)
			}
		}
		if v, ok := constInt(m.Value); ok {
			next = v + 1
		}
	}
	return nil
}

func (tc *typeChecker) enumLiteral(m *ast.EnumMember, base *ast.PrimitiveType, v int64) (ast.Expr, error) {
	var lit ast.Expr
	if base.IsSigned() {
		n, err := narrowInt(v)
		if err != nil {
			return nil, typeErrorf(diag.TypeEnumMember, m.Pos(), "implicit value of enum member %s: %v", m.Name, err)
		}
		lit = ast.NewIntLiteral(m.Origin, n)
	} else {
		n, err := narrowUint(v)
		if err != nil {
			return nil, typeErrorf(diag.TypeEnumMember, m.Pos(), "implicit value of enum member %s: %v", m.Name, err)
		}
		lit = ast.NewUintLiteral(m.Origin, n)
	}
	return lit, nil
}
