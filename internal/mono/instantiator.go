package mono

import (
	"fmt"

	"whlsl/internal/ast"
	"whlsl/internal/source"
	"whlsl/internal/types"
)

// Instantiator produces one monomorphic copy of a generic function per
// distinct tuple of type arguments. The cache lives on each function
// (FuncBase.Instances), so instances are shared by every caller of the
// same program.
type Instantiator struct {
	Recorder InstantiationRecorder
}

// NewInstantiator returns an instantiator reporting to rec, which may be nil.
func NewInstantiator(rec InstantiationRecorder) *Instantiator {
	return &Instantiator{Recorder: rec}
}

// GetUnique returns fn itself when it is not generic, and otherwise the
// cached or newly built instance for typeArgs. Equal type arguments always
// yield the identical instance.
func (in *Instantiator) GetUnique(fn ast.Func, typeArgs []ast.Node) (ast.Func, error) {
	return in.Instantiate(fn, typeArgs, source.Span{}, "")
}

// Instantiate is GetUnique that also records the requesting site.
func (in *Instantiator) Instantiate(fn ast.Func, typeArgs []ast.Node, site source.Span, caller string) (ast.Func, error) {
	base := fn.Base()
	if !base.IsGeneric() {
		return fn, nil
	}
	if _, ok := fn.(*ast.ProtocolFuncDecl); ok {
		// Protocol signatures are dispatched when the enclosing generic
		// function is instantiated; there is nothing to copy.
		return fn, nil
	}
	if len(typeArgs) != len(base.TypeParameters) {
		return nil, fmt.Errorf("instantiate %s: got %d type arguments, want %d", base.Name, len(typeArgs), len(base.TypeParameters))
	}

	inst := lookup(base, typeArgs)
	if inst == nil {
		var err error
		inst, err = build(fn, typeArgs)
		if err != nil {
			return nil, err
		}
		base.Instances = append(base.Instances, ast.Instance{TypeArguments: typeArgs, Func: inst})
	}
	if in != nil && in.Recorder != nil {
		in.Recorder.RecordFnInstantiation(fn, typeArgs, inst, site, caller)
	}
	return inst, nil
}

// lookup scans the cache in insertion order using pointwise equality.
func lookup(base *ast.FuncBase, typeArgs []ast.Node) ast.Func {
	for _, cached := range base.Instances {
		if argsEqual(cached.TypeArguments, typeArgs) {
			return cached.Func
		}
	}
	return nil
}

func argsEqual(a, b []ast.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !types.Equals(a[i], b[i]) {
			return false
		}
	}
	return true
}

func build(fn ast.Func, typeArgs []ast.Node) (ast.Func, error) {
	c := newCloner(types.NewSubstitution(fn.Base().TypeParameters, typeArgs))
	switch f := fn.(type) {
	case *ast.FuncDef:
		out := &ast.FuncDef{FuncBase: c.signature(&f.FuncBase)}
		out.Body = c.block(f.Body)
		return out, nil
	case *ast.NativeFunc:
		return &ast.NativeFuncInstance{FuncBase: c.signature(&f.FuncBase), Func: f}, nil
	default:
		return nil, fmt.Errorf("instantiate %s: unexpected function kind %T", fn.Base().Name, fn)
	}
}
