package semantics

import (
	"fmt"
	"slices"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/types"
)

// IsAcceptableType reports whether sem may be attached to a value of type t.
func IsAcceptableType(sem ast.Semantic, t ast.Type, in *types.Intrinsics) (bool, error) {
	switch s := sem.(type) {
	case *ast.BuiltInSemantic:
		req, err := RequiredType(s.Name, in)
		if err != nil {
			return false, err
		}
		return types.Equals(req, t), nil
	case *ast.StageInOutSemantic:
		switch types.Instantiated(t).(type) {
		case *ast.VectorType, *ast.MatrixType:
			return true, nil
		case *ast.PrimitiveType:
			return t.IsPrimitive(), nil
		}
		return false, nil
	case *ast.ResourceSemantic:
		return resourceAcceptsType(s.Mode, t), nil
	case *ast.SpecializationConstantSemantic:
		p, ok := types.Instantiated(t).(*ast.PrimitiveType)
		return ok && p.IsPrimitive(), nil
	}
	return false, &Error{Code: diag.InternalError, Msg: fmt.Sprintf("unexpected semantic %T", sem)}
}

func resourceAcceptsType(mode ast.ResourceMode, t ast.Type) bool {
	var space ast.AddressSpace
	switch u := ast.UnifyNode(t).(type) {
	case *ast.PtrType:
		space = u.Space
	case *ast.ArrayRefType:
		space = u.Space
	case *ast.NativeType:
		return mode != ast.ResourceBuffer
	case *ast.TypeRef:
		if _, ok := u.Type.(*ast.NativeType); ok {
			return mode != ast.ResourceBuffer
		}
		return false
	default:
		return false
	}
	switch mode {
	case ast.ResourceUAV:
		return space == ast.Device
	case ast.ResourceBuffer:
		return space == ast.Constant
	case ast.ResourceTexture:
		return space == ast.Device || space == ast.Constant
	}
	return false
}

// IsAcceptableForStage reports whether sem may appear in the given stage and
// direction. Resources and specialization constants are input only.
func IsAcceptableForStage(sem ast.Semantic, stage ast.ShaderStage, dir Direction) (bool, error) {
	switch s := sem.(type) {
	case *ast.BuiltInSemantic:
		return BuiltInAllowed(s.Name, stage, dir)
	case *ast.StageInOutSemantic:
		switch stage {
		case ast.StageVertex, ast.StageTest:
			return true, nil
		case ast.StageFragment:
			return dir == Input, nil
		case ast.StageCompute:
			return false, nil
		}
	case *ast.ResourceSemantic, *ast.SpecializationConstantSemantic:
		if stage == ast.StageNone {
			break
		}
		return dir == Input, nil
	default:
		return false, &Error{Code: diag.InternalError, Msg: fmt.Sprintf("unexpected semantic %T", sem)}
	}
	return false, &Error{Code: diag.InternalError, Msg: fmt.Sprintf("unknown shader stage %s", stage)}
}

// Equal compares two semantics. Built-ins match when their names and extra
// arguments match; a missing extra-argument list equals an empty one.
func Equal(a, b ast.Semantic) bool {
	switch x := a.(type) {
	case *ast.BuiltInSemantic:
		y, ok := b.(*ast.BuiltInSemantic)
		return ok && x.Name == y.Name && slices.Equal(x.ExtraArgs, y.ExtraArgs)
	case *ast.StageInOutSemantic:
		y, ok := b.(*ast.StageInOutSemantic)
		return ok && x.Index == y.Index
	case *ast.ResourceSemantic:
		y, ok := b.(*ast.ResourceSemantic)
		return ok && x.Mode == y.Mode && x.Index == y.Index && x.Space == y.Space
	case *ast.SpecializationConstantSemantic:
		_, ok := b.(*ast.SpecializationConstantSemantic)
		return ok
	}
	return false
}
