package trace

import "context"

type ctxKey struct{}

// state is what a context carries: the tracer and the innermost span opened
// with StartSpan.
type state struct {
	tracer Tracer
	span   uint64
}

func stateOf(ctx context.Context) state {
	if ctx != nil {
		if s, ok := ctx.Value(ctxKey{}).(state); ok {
			return s
		}
	}
	return state{tracer: Nop}
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return stateOf(ctx).tracer
}

// WithTracer attaches t to ctx. The current span, if any, is kept.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	s := stateOf(ctx)
	s.tracer = t
	return context.WithValue(ctx, ctxKey{}, s)
}

// ParentID is the innermost span opened on ctx, 0 at the root.
func ParentID(ctx context.Context) uint64 {
	return stateOf(ctx).span
}

// StartSpan opens a span under the current one and returns a context in
// which it is current. A span filtered out by the level leaves the parent
// current, so children attach to the nearest emitted ancestor.
func StartSpan(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	s := stateOf(ctx)
	span := Begin(s.tracer, scope, name, s.span)
	if span.ID() == 0 {
		return ctx, span
	}
	s.span = span.ID()
	return context.WithValue(ctx, ctxKey{}, s), span
}
