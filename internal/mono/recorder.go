package mono

import (
	"whlsl/internal/ast"
	"whlsl/internal/source"
)

// InstantiationRecorder observes every instantiation request served by an
// Instantiator, cache hits included.
type InstantiationRecorder interface {
	RecordFnInstantiation(fn ast.Func, typeArgs []ast.Node, instance ast.Func, site source.Span, caller string)
}

// InstantiationMapRecorder implements InstantiationRecorder.
type InstantiationMapRecorder struct {
	Map *InstantiationMap
}

var _ InstantiationRecorder = (*InstantiationMapRecorder)(nil)

// NewInstantiationMapRecorder creates a new recorder bound to the provided map.
func NewInstantiationMapRecorder(m *InstantiationMap) *InstantiationMapRecorder {
	return &InstantiationMapRecorder{Map: m}
}

// RecordFnInstantiation implements InstantiationRecorder.
func (r *InstantiationMapRecorder) RecordFnInstantiation(fn ast.Func, typeArgs []ast.Node, instance ast.Func, site source.Span, caller string) {
	if r == nil || r.Map == nil {
		return
	}
	r.Map.Record(fn, typeArgs, instance, site, caller, "call")
}
