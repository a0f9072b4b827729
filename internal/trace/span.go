package trace

import (
	"sync/atomic"
	"time"
)

var (
	seq     atomic.Uint64
	spanIDs atomic.Uint64
)

// Span is an open span. A span filtered out by the tracer's level has ID 0
// and its methods do nothing.
type Span struct {
	tracer  Tracer
	begin   Event
	started time.Time
	extra   map[string]string
}

// Begin opens a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !emits(t, scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		started: time.Now(),
		begin: Event{
			Kind:     KindSpanBegin,
			Scope:    scope,
			SpanID:   spanIDs.Add(1),
			ParentID: parent,
			Name:     name,
		},
	}
	ev := s.begin
	ev.Time, ev.Seq = s.started, seq.Add(1)
	t.Emit(&ev)
	return s
}

// WithExtra attaches a key to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// End closes the span.
func (s *Span) End(detail string) {
	if s == nil || s.tracer == nil {
		return
	}
	ev := s.begin
	ev.Kind = KindSpanEnd
	ev.Time, ev.Seq = time.Now(), seq.Add(1)
	ev.Elapsed = ev.Time.Sub(s.started)
	ev.Detail = detail
	ev.Extra = s.extra
	s.tracer.Emit(&ev)
}

// ID is the span's ID, 0 when it was filtered out.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.begin.SpanID
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name string, parent uint64, detail string) {
	if !emits(t, scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      seq.Add(1),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}
