package sema

import (
	"fmt"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/mono"
	"whlsl/internal/trace"
	"whlsl/internal/types"
)

// Options configure a semantic pass over a program.
type Options struct {
	// Reporter receives the error that stopped the pass, if any.
	Reporter   diag.Reporter
	Intrinsics *types.Intrinsics
	// Instantiations records every generic instantiation; a fresh map is
	// created when nil.
	Instantiations *mono.InstantiationMap
	Tracer         trace.Tracer
	// TraceParent is the span the pass span nests under, 0 for a root.
	TraceParent uint64
	// MaxDepth bounds statement and expression nesting; zero means unbounded.
	MaxDepth int
}

// Result stores semantic artefacts produced by the checker.
type Result struct {
	Program        *ast.Program
	Instantiations *mono.InstantiationMap
}

// Check type-checks prog in place. It stops at the first violation and
// returns it as a *TypeError or an *InternalError; the same error is also
// sent to opts.Reporter.
func Check(prog *ast.Program, opts Options) (Result, error) {
	res := Result{Program: prog, Instantiations: opts.Instantiations}
	if res.Instantiations == nil {
		res.Instantiations = mono.NewInstantiationMap()
	}
	if prog == nil {
		return res, nil
	}
	in := opts.Intrinsics
	if in == nil {
		in = types.NewIntrinsics()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}

	tc := &typeChecker{
		prog:     prog,
		in:       in,
		inst:     mono.NewInstantiator(mono.NewInstantiationMapRecorder(res.Instantiations)),
		tracer:   tracer,
		parent:   opts.TraceParent,
		maxDepth: opts.MaxDepth,
	}
	err := tc.run()
	if err != nil && opts.Reporter != nil {
		diag.Emit(opts.Reporter, Diagnostic(err))
	}
	return res, err
}

type typeChecker struct {
	prog     *ast.Program
	in       *types.Intrinsics
	inst     *mono.Instantiator
	tracer   trace.Tracer
	parent   uint64
	maxDepth int
	depth    int
	declSpan uint64
}

// env is the typing context threaded through one top-level declaration.
type env struct {
	// typeParams are the type parameters of the declaration being checked;
	// calls look for protocol signatures through them.
	typeParams []ast.TypeParameter
	fn         *ast.FuncBase
}

func (e *env) caller() string {
	if e == nil || e.fn == nil {
		return ""
	}
	return e.fn.Name
}

func (tc *typeChecker) run() error {
	pass := trace.Begin(tc.tracer, trace.ScopePass, "sema", tc.parent)
	checked := 0
	defer func() { pass.WithExtra("decls", fmt.Sprint(checked)).End("") }()

	for _, stmt := range tc.prog.TopLevelStatements {
		span := trace.Begin(tc.tracer, trace.ScopeDecl, declName(stmt), pass.ID())
		tc.declSpan = span.ID()
		err := tc.topLevel(stmt)
		if err != nil {
			span.End("error")
			return err
		}
		span.End("")
		checked++
	}
	return nil
}

func (tc *typeChecker) topLevel(n ast.Node) error {
	switch v := n.(type) {
	case *ast.ProtocolDecl:
		return tc.protocolDecl(v)
	case *ast.FuncDef:
		return tc.funcDecl(v, v.Body)
	case *ast.NativeFunc:
		return tc.funcDecl(v, nil)
	case *ast.StructType:
		return tc.structDecl(v)
	case *ast.EnumType:
		return tc.enumDecl(v)
	case *ast.TypeDef:
		e := &env{typeParams: v.TypeParameters}
		if err := tc.typeParameters(e, v.TypeParameters); err != nil {
			return err
		}
		return tc.typ(e, v.Type)
	case *ast.NativeType:
		return tc.typeParameters(&env{typeParams: v.TypeParameters}, v.TypeParameters)
	case *ast.PrimitiveType, *ast.VectorType, *ast.MatrixType:
		return nil
	default:
		return internalErrorf(diag.InternalError, n.Pos(), "unexpected top-level node %T", n)
	}
}

// enter bounds recursion; callers must defer tc.leave().
func (tc *typeChecker) enter(n ast.Node) error {
	tc.depth++
	if tc.maxDepth > 0 && tc.depth > tc.maxDepth {
		return typeErrorf(diag.TypeNestingTooDeep, n.Pos(), "nesting exceeds the limit of %d", tc.maxDepth)
	}
	return nil
}

func (tc *typeChecker) leave() { tc.depth-- }

func declName(n ast.Node) string {
	switch v := n.(type) {
	case ast.Func:
		return "func " + v.Base().Name
	case *ast.ProtocolDecl:
		return "protocol " + v.Name
	case ast.NamedType:
		return "type " + v.TypeName()
	}
	return fmt.Sprintf("%T", n)
}
