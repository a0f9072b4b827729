package types

import (
	"fmt"

	"whlsl/internal/ast"
)

// OverloadFailure records why one candidate was rejected.
type OverloadFailure struct {
	Func   ast.Func
	Reason string
}

func (f OverloadFailure) String() string {
	return fmt.Sprintf("%s: %s", f.Func.Base().Signature(), f.Reason)
}

// OverloadResolution is the outcome of ResolveOverload. Func is nil when no
// candidate applies; Failures then explains every rejection in order.
type OverloadResolution struct {
	Func          ast.Func
	Context       *UnificationContext
	TypeArguments []ast.Node
	Failures      []OverloadFailure
}

// ResolveOverload returns the first candidate, in order, whose signature
// unifies with the explicit type arguments, the argument types and, when
// returnType is non-nil, the expected return type. There is no ranking:
// an earlier applicable candidate always wins over a later one.
//
// When no explicit type arguments are given, the verified bindings of the
// winner's type parameters become the resolution's TypeArguments.
func ResolveOverload(candidates []ast.Func, typeArgs []ast.Node, argTypes []ast.Type, returnType ast.Type) OverloadResolution {
	return newResolveState().resolve(candidates, typeArgs, argTypes, returnType)
}

func (st *resolveState) resolve(candidates []ast.Func, typeArgs []ast.Node, argTypes []ast.Type, returnType ast.Type) OverloadResolution {
	var failures []OverloadFailure
	for _, cand := range candidates {
		ctx, reason := st.tryCandidate(cand, typeArgs, argTypes, returnType)
		if reason != "" {
			failures = append(failures, OverloadFailure{Func: cand, Reason: reason})
			continue
		}
		f := cand.Base()
		actual := typeArgs
		if len(typeArgs) == 0 && len(f.TypeParameters) != 0 {
			actual = make([]ast.Node, len(f.TypeParameters))
			for i, tp := range f.TypeParameters {
				actual[i] = ctx.Find(tp)
			}
		}
		return OverloadResolution{Func: cand, Context: ctx, TypeArguments: actual, Failures: failures}
	}
	return OverloadResolution{Failures: failures}
}

// tryCandidate returns an empty reason when cand applies.
func (st *resolveState) tryCandidate(cand ast.Func, typeArgs []ast.Node, argTypes []ast.Type, returnType ast.Type) (*UnificationContext, string) {
	f := cand.Base()
	if len(typeArgs) != 0 && len(typeArgs) != len(f.TypeParameters) {
		return nil, fmt.Sprintf("wrong number of type arguments (got %d, want %d)", len(typeArgs), len(f.TypeParameters))
	}
	if len(argTypes) != len(f.Parameters) {
		return nil, fmt.Sprintf("wrong number of arguments (got %d, want %d)", len(argTypes), len(f.Parameters))
	}
	ctx := newContext(st, f.TypeParameters)
	for i, ta := range typeArgs {
		if !ctx.Unify(f.TypeParameters[i], ta) {
			return nil, fmt.Sprintf("type argument %s does not match type parameter %s", ast.NodeString(ta), f.TypeParameters[i].ParamName())
		}
	}
	for i, at := range argTypes {
		if !ctx.Unify(f.Parameters[i].Type, at) {
			return nil, fmt.Sprintf("argument %d has type %s, which does not match %s", i+1, at, f.Parameters[i].Type)
		}
	}
	if returnType != nil && f.ReturnType != nil && !ctx.Unify(f.ReturnType, returnType) {
		return nil, fmt.Sprintf("return type %s does not match %s", f.ReturnType, returnType)
	}
	if err := ctx.Verify(); err != nil {
		return nil, err.Error()
	}
	return ctx, ""
}
