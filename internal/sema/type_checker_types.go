package sema

import (
	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/types"
)

// typ checks a type written in the program.
func (tc *typeChecker) typ(e *env, t ast.Type) error {
	if t == nil {
		return nil
	}
	if err := tc.enter(t); err != nil {
		return err
	}
	defer tc.leave()

	switch v := t.(type) {
	case *ast.TypeRef:
		return tc.typeRef(e, v)
	case *ast.PtrType:
		return tc.referenceType(e, t, v.Space, v.Elem)
	case *ast.ArrayRefType:
		return tc.referenceType(e, t, v.Space, v.Elem)
	case *ast.ArrayType:
		return tc.arrayType(e, v)
	case *ast.PrimitiveType, *ast.VectorType, *ast.MatrixType, *ast.NativeType,
		*ast.StructType, *ast.EnumType, *ast.TypeDef, *ast.TypeVariable,
		*ast.LiteralType, *ast.NullType:
		// Declarations are checked once, at the top level.
		return nil
	default:
		return internalErrorf(diag.InternalError, t.Pos(), "unexpected type node %T", t)
	}
}

func (tc *typeChecker) typeRef(e *env, ref *ast.TypeRef) error {
	if ref.Type == nil {
		return internalErrorf(diag.InternalUnresolvedType, ref.Pos(), "type reference without a type: %s", ref)
	}
	params := ref.Type.TypeParams()
	if len(params) != len(ref.TypeArguments) {
		return typeErrorf(diag.TypeArgumentCount, ref.Pos(), "%s expects %d type arguments, got %d", ref.Type.TypeName(), len(params), len(ref.TypeArguments))
	}
	for i, arg := range ref.TypeArguments {
		switch p := params[i].(type) {
		case *ast.TypeVariable:
			at, ok := arg.(ast.Type)
			if !ok {
				return typeErrorf(diag.TypeArgumentNotInherit, arg.Pos(), "type parameter %s of %s needs a type, got the value %s", p.Name, ref.Type.TypeName(), ast.NodeString(arg))
			}
			if err := tc.typ(e, at); err != nil {
				return err
			}
			if p.Protocol == nil {
				continue
			}
			if err := types.Inherits(at, p.Protocol); err != nil {
				return typeErrorf(diag.TypeArgumentNotInherit, arg.Pos(), "type argument does not inherit protocol: %v", err)
			}
		case *ast.ConstexprTypeParameter:
			val, ok := arg.(ast.Expr)
			if !ok {
				return typeErrorf(diag.TypeConstexprMismatch, arg.Pos(), "constexpr parameter %s of %s needs a value, got the type %s", p.Name, ref.Type.TypeName(), ast.NodeString(arg))
			}
			vt, err := tc.expr(e, val)
			if err != nil {
				return err
			}
			if !types.EqualsWithCommit(vt, p.Type) {
				return typeErrorf(diag.TypeConstexprMismatch, arg.Pos(), "wrong type for constexpr: %s expects %s, got %s", p.Name, p.Type, vt)
			}
		}
	}
	return nil
}

// referenceType allows any element in thread memory; other address spaces
// may only point at primitives.
func (tc *typeChecker) referenceType(e *env, t ast.Type, space ast.AddressSpace, elem ast.Type) error {
	if err := tc.typ(e, elem); err != nil {
		return err
	}
	if space == ast.Thread {
		return nil
	}
	if inst := types.Instantiated(elem); !inst.IsPrimitive() {
		return typeErrorf(diag.TypeIllegalPointer, t.Pos(), "illegal pointer to non-primitive type: %s (instantiated to %s)", elem, inst)
	}
	return nil
}

func (tc *typeChecker) arrayType(e *env, at *ast.ArrayType) error {
	if err := tc.typ(e, at.Elem); err != nil {
		return err
	}
	if at.Length == nil {
		return internalErrorf(diag.InternalMissingType, at.Pos(), "array type %s has no length", at.Elem)
	}
	if !ast.IsConstexpr(at.Length) {
		folded, ok, err := fold(at.Length)
		if err != nil {
			return typeErrorf(diag.TypeArrayLengthNotConstexpr, at.Length.Pos(), "array length: %v", err)
		}
		if !ok {
			return typeErrorf(diag.TypeArrayLengthNotConstexpr, at.Length.Pos(), "array length must be constexpr: %s", ast.ExprString(at.Length))
		}
		at.Length = folded
	}
	lt, err := tc.expr(e, at.Length)
	if err != nil {
		return err
	}
	if !types.EqualsWithCommit(lt, tc.in.Uint) {
		return typeErrorf(diag.TypeArrayLengthNotUint, at.Length.Pos(), "array length must be a uint32, got %s", lt)
	}
	if lit, ok := at.Length.(*ast.IntLiteral); ok && lit.Value < 0 {
		return typeErrorf(diag.TypeArrayLengthNotUint, at.Length.Pos(), "array length %d is negative", lit.Value)
	}
	return nil
}

// autoWrap presents a bare named type as a reference to it, the form
// unification and instantiation expect.
func autoWrap(t ast.Type) ast.Type {
	switch v := t.(type) {
	case *ast.StructType, *ast.EnumType, *ast.NativeType, *ast.TypeDef, *ast.TypeVariable:
		return ast.RefTo(v.(ast.NamedType))
	}
	return t
}

// decayedArray is the array reference an addressable array value decays to.
func decayedArray(e ast.Expr, at *ast.ArrayType) *ast.ArrayRefType {
	ref := &ast.ArrayRefType{Space: ast.AddressSpaceOf(e), Elem: at.Elem}
	ref.SetPos(e.Pos())
	return ref
}
