package sema

import (
	"fmt"
	"strings"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/trace"
	"whlsl/internal/types"
)

const operatorAnderIndex = "operator&[]"

// call resolves a call to its first applicable overload. Protocol
// signatures reachable through the enclosing declaration's type variables
// are tried before the global overload set.
func (tc *typeChecker) call(e *env, c *ast.CallExpression) (ast.Type, error) {
	typeArgTypes := make([]ast.Type, len(c.TypeArguments))
	for i, ta := range c.TypeArguments {
		switch v := ta.(type) {
		case ast.Type:
			if err := tc.typ(e, v); err != nil {
				return nil, err
			}
		case ast.Expr:
			t, err := tc.expr(e, v)
			if err != nil {
				return nil, err
			}
			typeArgTypes[i] = t
		default:
			return nil, internalErrorf(diag.InternalError, ta.Pos(), "type argument %T is neither a type nor a value", ta)
		}
	}

	argTypes := make([]ast.Type, len(c.Args))
	for i, arg := range c.Args {
		t, err := tc.expr(e, arg)
		if err != nil {
			return nil, err
		}
		argTypes[i] = autoWrap(t)
	}
	if c.Name == operatorAnderIndex && len(c.Args) > 0 {
		if err := tc.wrapIndexBase(c, argTypes); err != nil {
			return nil, err
		}
	}
	c.ArgumentTypes = argTypes
	if err := tc.typ(e, c.ReturnType); err != nil {
		return nil, err
	}

	res, failures := tc.resolveCall(e, c, argTypes)
	if res.Func == nil && decayArrayArgs(c, argTypes) {
		var more []types.OverloadFailure
		res, more = tc.resolveCall(e, c, argTypes)
		failures = append(failures, more...)
	}
	if res.Func == nil {
		return nil, noOverloadError(c, argTypes, failures)
	}
	res.Context.Commit()

	fn := res.Func.Base()
	for i, tat := range typeArgTypes {
		cp, ok := fn.TypeParameters[i].(*ast.ConstexprTypeParameter)
		if !ok || tat == nil {
			continue
		}
		if !types.EqualsWithCommit(cp.Type, tat) {
			return nil, internalErrorf(diag.InternalResolverMismatch, c.Pos(),
				"constexpr type argument and parameter types not equal: argument = %s, parameter = %s", tat, cp.Type)
		}
	}
	sub := types.SubstitutionFromContext(fn.TypeParameters, res.Context)
	for i, at := range argTypes {
		pt := sub.Type(fn.Parameters[i].Type)
		if !types.EqualsWithCommit(at, pt) {
			return nil, internalErrorf(diag.InternalResolverMismatch, c.Args[i].Pos(),
				"argument and parameter types not equal after type argument substitution: argument = %s, parameter = %s", at, pt)
		}
	}

	inst, err := tc.inst.Instantiate(res.Func, res.TypeArguments, c.Pos(), e.caller())
	if err != nil {
		return nil, &InternalError{Code: diag.InternalError, Span: c.Pos(), Msg: "cannot instantiate " + fn.Name, Err: err}
	}
	c.Func = inst
	c.ActualTypeArguments = res.TypeArguments

	ret := sub.Type(fn.ReturnType)
	trace.Point(tc.tracer, trace.ScopeNode, "call "+c.Name, tc.declSpan, inst.Base().Signature())
	return ret, nil
}

// resolveCall tries the protocol signatures in scope, then the overload set.
func (tc *typeChecker) resolveCall(e *env, c *ast.CallExpression, argTypes []ast.Type) (types.OverloadResolution, []types.OverloadFailure) {
	res, failures := tc.resolveViaProtocols(e, c, argTypes)
	if res.Func != nil {
		return res, failures
	}
	candidates := c.PossibleOverloads
	if candidates == nil {
		candidates = tc.prog.OverloadSet(c.Name)
	}
	res = types.ResolveOverload(candidates, c.TypeArguments, argTypes, c.ReturnType)
	return res, append(failures, res.Failures...)
}

// decayArrayArgs rewrites every addressable fixed-array argument into @arg,
// an array reference that captures the array's length, and reports whether
// anything changed. Arrays keep their value type until no overload accepts
// them, so natives taking T[N] still match first.
func decayArrayArgs(c *ast.CallExpression, argTypes []ast.Type) bool {
	changed := false
	for i, t := range argTypes {
		at, ok := ast.UnifyNode(t).(*ast.ArrayType)
		if !ok || !ast.IsLValue(c.Args[i]) {
			continue
		}
		ref := decayedArray(c.Args[i], at)
		wrap := &ast.MakeArrayRefExpression{LValue: c.Args[i], NumElements: at.Length}
		wrap.SetPos(c.Args[i].Pos())
		wrap.SetExprType(ref)
		c.Args[i] = wrap
		argTypes[i] = ref
		changed = true
	}
	return changed
}

// wrapIndexBase makes the base of operator&[] a reference: arrays become
// array references that capture their length, other non-references are
// taken by address. Raw pointers cannot be indexed.
func (tc *typeChecker) wrapIndexBase(c *ast.CallExpression, argTypes []ast.Type) error {
	switch at := ast.UnifyNode(argTypes[0]).(type) {
	case *ast.PtrType:
		return typeErrorf(diag.TypePointerSubscript, c.Pos(), "pointer subscript is not valid: %s", at)
	case *ast.ArrayType:
		ref := ast.ArrayRefTypeOf(at.Elem)
		wrap := &ast.MakeArrayRefExpression{LValue: c.Args[0], NumElements: at.Length}
		wrap.SetPos(c.Pos())
		wrap.SetExprType(ref)
		c.Args[0] = wrap
		argTypes[0] = ref
	case *ast.ArrayRefType:
	default:
		ptr := &ast.PtrType{Space: ast.Thread, Elem: argTypes[0]}
		ptr.SetPos(c.Pos())
		wrap := &ast.MakePtrExpression{LValue: c.Args[0]}
		wrap.SetPos(c.Pos())
		wrap.SetExprType(ptr)
		c.Args[0] = wrap
		argTypes[0] = ptr
	}
	return nil
}

func (tc *typeChecker) resolveViaProtocols(e *env, c *ast.CallExpression, argTypes []ast.Type) (types.OverloadResolution, []types.OverloadFailure) {
	var failures []types.OverloadFailure
	for _, tp := range e.typeParams {
		tv, ok := tp.(*ast.TypeVariable)
		if !ok || tv.Protocol == nil || tv.Protocol.Decl == nil {
			continue
		}
		sigs := types.SignaturesByNameWithTypeVariable(tv.Protocol.Decl, c.Name, tv)
		if len(sigs) == 0 {
			continue
		}
		res := types.ResolveOverload(sigs, c.TypeArguments, argTypes, c.ReturnType)
		if res.Func != nil {
			return res, failures
		}
		failures = append(failures, res.Failures...)
	}
	return types.OverloadResolution{}, failures
}

func noOverloadError(c *ast.CallExpression, argTypes []ast.Type, failures []types.OverloadFailure) *TypeError {
	var sb strings.Builder
	fmt.Fprintf(&sb, "did not find function %s for call with ", c.Name)
	if len(c.TypeArguments) != 0 {
		args := make([]string, len(c.TypeArguments))
		for i, ta := range c.TypeArguments {
			args[i] = ast.NodeString(ta)
		}
		fmt.Fprintf(&sb, "type arguments <%s> and ", strings.Join(args, ", "))
	}
	names := make([]string, len(argTypes))
	for i, t := range argTypes {
		names[i] = t.String()
	}
	fmt.Fprintf(&sb, "argument types (%s)", strings.Join(names, ", "))
	if c.ReturnType != nil {
		fmt.Fprintf(&sb, " and return type %s", c.ReturnType)
	}

	err := &TypeError{Code: diag.TypeNoMatchingOverload, Span: c.Pos(), Msg: sb.String()}
	for _, f := range failures {
		err.Notes = append(err.Notes, diag.Note{Span: f.Func.Pos(), Msg: "considered: " + f.String()})
	}
	return err
}
