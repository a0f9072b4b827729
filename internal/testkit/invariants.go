// Package testkit holds assertions shared by package tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"whlsl/internal/ast"
	"whlsl/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a loaded
// program:
// 1) the program span belongs to sf and ends within its content
// 2) every declaration and parameter span lies inside the program span
// 3) top-level declarations appear in source order
func CheckSpanInvariants(prog *ast.Program, sf *source.File) error {
	if prog == nil || sf == nil {
		return fmt.Errorf("nil program or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	ps := prog.Pos()
	if ps.File != sf.ID {
		return fmt.Errorf("program span points to different file id: got=%d want=%d", ps.File, sf.ID)
	}
	if ps.Start != 0 || ps.End > lenContent {
		return fmt.Errorf("program span %v does not match content of %d bytes", ps, lenContent)
	}

	inside := func(what string, sp source.Span) error {
		if sp.File != sf.ID {
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", what, sp.File, sf.ID)
		}
		if sp.End < sp.Start {
			return fmt.Errorf("%s span is inverted: %v", what, sp)
		}
		if sp.Start < ps.Start || sp.End > ps.End {
			return fmt.Errorf("%s span %v is outside program span %v", what, sp, ps)
		}
		return nil
	}

	var prev uint32
	for i, n := range prog.TopLevelStatements {
		what := fmt.Sprintf("declaration %d (%T)", i, n)
		sp := n.Pos()
		if err := inside(what, sp); err != nil {
			return err
		}
		if sp.Start < prev {
			return fmt.Errorf("%s starts at %d, before the previous declaration at %d", what, sp.Start, prev)
		}
		prev = sp.Start
		if fn, ok := n.(ast.Func); ok {
			for _, p := range fn.Base().Parameters {
				if err := inside("parameter "+p.Name, p.Pos()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
