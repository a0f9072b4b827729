package semantics

import (
	"errors"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/source"
	"whlsl/internal/types"
)

// CheckEntryPoint validates the semantics of a function with a shader stage.
// Every parameter, or every field of a struct-typed parameter, needs a
// semantic valid as stage input; a non-void return value, or every field of
// a struct return, needs one valid as stage output. A semantic may appear at
// most once per direction. Functions without a stage are accepted as is.
func CheckEntryPoint(fn ast.Func, in *types.Intrinsics) error {
	b := fn.Base()
	if b.Shader == ast.StageNone {
		return nil
	}
	v := &entryValidator{stage: b.Shader, in: in, visiting: make(map[*ast.StructType]bool)}
	for _, p := range b.Parameters {
		if err := v.check(p.Type, p.Semantic, Input, p.Pos(), "parameter "+p.Name); err != nil {
			return err
		}
	}
	if b.ReturnType != nil && !types.Equals(b.ReturnType, in.Void) {
		if err := v.check(b.ReturnType, b.Semantic, Output, b.Pos(), "return value of "+b.Name); err != nil {
			return err
		}
	}
	return nil
}

type entryValidator struct {
	stage    ast.ShaderStage
	in       *types.Intrinsics
	seen     [2][]ast.Semantic
	visiting map[*ast.StructType]bool
}

func (v *entryValidator) check(t ast.Type, sem ast.Semantic, dir Direction, span source.Span, what string) error {
	if sem == nil {
		st, ok := types.Instantiated(t).(*ast.StructType)
		if !ok {
			return errorf(diag.SemMissing, span, "%s of %s entry point has no semantic", what, v.stage)
		}
		if v.visiting[st] {
			return errorf(diag.SemMissing, span, "%s of %s entry point has a recursive struct type", what, v.stage)
		}
		v.visiting[st] = true
		defer delete(v.visiting, st)
		for _, f := range st.Fields {
			if err := v.check(f.Type, f.Semantic, dir, f.Pos(), "field "+f.Name); err != nil {
				return err
			}
		}
		return nil
	}

	ok, err := IsAcceptableType(sem, t, v.in)
	if err != nil {
		return withSpan(err, span)
	}
	if !ok {
		if b, isBuiltIn := sem.(*ast.BuiltInSemantic); isBuiltIn {
			req, _ := RequiredType(b.Name, v.in)
			return errorf(diag.SemWrongType, span, "semantic %s requires type %s, but %s has type %s", sem, req, what, t)
		}
		return errorf(diag.SemWrongType, span, "semantic %s does not accept %s of type %s", sem, what, t)
	}

	ok, err = IsAcceptableForStage(sem, v.stage, dir)
	if err != nil {
		return withSpan(err, span)
	}
	if !ok {
		return errorf(diag.SemWrongStage, span, "semantic %s is not valid as %s stage %s", sem, v.stage, dir)
	}

	for _, prev := range v.seen[dir] {
		if Equal(prev, sem) {
			return errorf(diag.SemDuplicate, span, "duplicate %s semantic %s", dir, sem)
		}
	}
	v.seen[dir] = append(v.seen[dir], sem)
	return nil
}

func withSpan(err error, span source.Span) error {
	var se *Error
	if errors.As(err, &se) && se.Span == (source.Span{}) {
		se.Span = span
	}
	return err
}
