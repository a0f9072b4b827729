package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	clock := time.Unix(0, 0)
	tm := NewTimer()
	tm.now = func() time.Time { return clock }

	load := tm.Begin("load")
	clock = clock.Add(2 * time.Millisecond)
	tm.End(load, "")

	err := tm.Measure("sema", func() error {
		clock = clock.Add(3 * time.Millisecond)
		return errors.New("type error")
	})
	if err == nil {
		t.Fatalf("Measure should return the phase error")
	}

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(r.Phases))
	}
	if r.TotalMS != 5 {
		t.Fatalf("total = %v ms, want 5", r.TotalMS)
	}
	if r.Phases[1].Note != "failed" {
		t.Fatalf("failed phase note = %q", r.Phases[1].Note)
	}
	if s := tm.Summary(); !strings.Contains(s, "sema") || !strings.Contains(s, "total") {
		t.Fatalf("summary = %q", s)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "ignored")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("End with a bad index must not add phases")
	}
}
