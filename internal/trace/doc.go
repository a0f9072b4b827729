// Package trace records the phases of a check run as structured events.
//
//	whlsl check --trace=- --trace-level=detail shader.yaml
//
// A Tracer is a stream (text or NDJSON), a ring buffer dumped after an
// internal error, or both. LevelPhase emits driver and pass spans,
// LevelDetail adds a span per top-level declaration and LevelDebug adds
// resolved calls.
//
// The tracer and the current span travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.StartSpan(ctx, trace.ScopeDriver, "check_file")
//	defer span.End("")
package trace
