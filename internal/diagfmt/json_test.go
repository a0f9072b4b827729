package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"whlsl/internal/diag"
	"whlsl/internal/source"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.yaml", []byte("- func:\n    name: f\n    return: Nope\n"))
	d := diag.NewError(diag.LoadUnknownName, source.Span{File: fileID, Start: 32, End: 36}, "unknown type \"Nope\"")
	d = d.WithNote(source.Span{File: fileID, Start: 2, End: 6}, "in this declaration")
	bag := oneDiagnostic(fs, d)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("count: got %d/%d, want 1", output.Count, len(output.Diagnostics))
	}
	got := output.Diagnostics[0]
	if got.Severity != "ERROR" || got.Code != "LDR1002" {
		t.Fatalf("severity/code: got %s %s", got.Severity, got.Code)
	}
	want := LocationJSON{File: "test.yaml", StartByte: 32, EndByte: 36, StartLine: 3, StartCol: 13, EndLine: 3, EndCol: 17}
	if got.Location != want {
		t.Fatalf("location: got %+v, want %+v", got.Location, want)
	}
	if len(got.Notes) != 1 || got.Notes[0].Message != "in this declaration" {
		t.Fatalf("notes: got %+v", got.Notes)
	}
}

func TestJSONMaxAndNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("m.yaml", []byte("abc\n"))
	bag := diag.NewBag(10)
	for range 3 {
		bag.Add(diag.NewError(diag.LoadBadDocument, source.Span{File: fileID}, "bad").WithNote(source.Span{File: fileID}, "note"))
	}
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("count: got %d, want 2", out.Count)
	}
	if out.Diagnostics[0].Notes != nil {
		t.Fatalf("notes included although disabled: %+v", out.Diagnostics[0].Notes)
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Fatalf("positions included although disabled: %+v", out.Diagnostics[0].Location)
	}
}

func TestJSONKeepsTimingNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("t.yaml", []byte("x\n"))
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: fileID}, "timings")
	d = d.WithNote(source.Span{File: fileID}, `{"total_ms":1}`)
	out := BuildDiagnosticsOutput(oneDiagnostic(fs, d), fs, JSONOpts{})
	if len(out.Diagnostics[0].Notes) != 1 {
		t.Fatalf("timing notes dropped: %+v", out.Diagnostics[0])
	}
}
