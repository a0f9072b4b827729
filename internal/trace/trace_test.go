package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeDecl, false},
		{LevelDetail, ScopeDecl, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestStreamTracerWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	pass := Begin(tr, ScopePass, "sema", 0)
	decl := Begin(tr, ScopeDecl, "decl:main", pass.ID())
	decl.WithExtra("kind", "func").End("")
	Point(tr, ScopeNode, "call", decl.ID(), "filtered out at detail level")
	pass.End("ok")

	out := buf.String()
	for _, want := range []string{"→ sema", "→ decl:main", "← decl:main {kind=func}", "← sema (ok)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "call") {
		t.Fatalf("node-level events must be filtered at detail level:\n%s", out)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeNode, name, 0, "")
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("snapshot = %+v, want [b c]", snap)
	}
}

func TestNewAndContext(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff should produce a disabled tracer, got %v, %v", tr, err)
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := Ring(tr); !ok {
		t.Fatalf("both mode should carry a ring tracer")
	}

	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != tr {
		t.Fatalf("FromContext did not return the attached tracer")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("FromContext without a tracer should return Nop")
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("DEBUG"); err != nil || l != LevelDebug {
		t.Fatalf("ParseLevel(DEBUG) = %v, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}

func TestStartSpanNests(t *testing.T) {
	r := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), r)
	if ParentID(ctx) != 0 {
		t.Fatalf("root context has parent %d", ParentID(ctx))
	}

	outer, driverSpan := StartSpan(ctx, ScopeDriver, "check_paths")
	inner, declSpan := StartSpan(outer, ScopeDecl, "decl:main")
	// Filtered at detail level: the decl span stays current.
	same, nodeSpan := StartSpan(inner, ScopeNode, "call")
	if nodeSpan.ID() != 0 || ParentID(same) != declSpan.ID() {
		t.Fatalf("filtered span changed the current span: %d", ParentID(same))
	}
	nodeSpan.End("")
	declSpan.End("")
	driverSpan.End("")

	if ParentID(outer) != driverSpan.ID() || ParentID(inner) != declSpan.ID() {
		t.Fatalf("contexts carry parents %d and %d", ParentID(outer), ParentID(inner))
	}
	var declBegin *Event
	for _, ev := range r.Snapshot() {
		if ev.Kind == KindSpanBegin && ev.Name == "decl:main" {
			declBegin = &ev
		}
	}
	if declBegin == nil || declBegin.ParentID != driverSpan.ID() {
		t.Fatalf("decl span is not parented to the driver span: %+v", declBegin)
	}
	if FromContext(inner) != r {
		t.Fatal("StartSpan lost the tracer")
	}
}

func TestFormatEvent(t *testing.T) {
	ev := &Event{
		Seq:      7,
		Kind:     KindSpanEnd,
		Scope:    ScopeDecl,
		SpanID:   3,
		ParentID: 1,
		Name:     "decl:main",
		Detail:   "error",
		Elapsed:  1500 * time.Microsecond,
		Extra:    map[string]string{"b": "2", "a": "1"},
	}
	text := string(FormatEvent(ev, FormatText))
	if want := "[     7] decl     ← decl:main (error) {a=1, b=2} 1.5ms\n"; text != want {
		t.Fatalf("text: got %q, want %q", text, want)
	}

	var decoded map[string]any
	if err := json.Unmarshal(FormatEvent(ev, FormatNDJSON), &decoded); err != nil {
		t.Fatalf("ndjson does not decode: %v", err)
	}
	if decoded["kind"] != "end" || decoded["elapsed_us"] != float64(1500) {
		t.Fatalf("ndjson = %v", decoded)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]StorageMode{"": ModeStream, "Ring": ModeRing, "both": ModeBoth} {
		if got, err := ParseMode(in); err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}
