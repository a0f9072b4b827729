package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"whlsl/internal/diag"
	"whlsl/internal/source"
)

func oneDiagnostic(_ *source.FileSet, d diag.Diagnostic) *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(d)
	return bag
}

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("/home/user/project/shaders/test.yaml", []byte("- func: {name: f, return: Nope}\n"))
	bag := oneDiagnostic(fs, diag.NewError(diag.LoadUnknownName, source.Span{File: fileID, Start: 26, End: 30}, "unknown type \"Nope\""))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/shaders/test.yaml:1:27"},
		{"relative", PathModeRelative, "shaders/test.yaml:1:27"},
		{"basename", PathModeBasename, "test.yaml:1:27"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/project"})
			output := buf.String()
			for _, want := range []string{tt.contains, "ERROR", "LDR1002", "unknown type"} {
				if !strings.Contains(output, want) {
					t.Fatalf("expected output to contain %q, got:\n%s", want, output)
				}
			}
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"test.yaml", "test.yaml"},
		{"/very/long/absolute/path/to/some/nested/directory/file.yaml", "file.yaml"},
	}
	for _, tt := range tests {
		if got := displayPath(tt.path, PathModeAuto, ""); got != tt.want {
			t.Fatalf("displayPath(%q): got %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPrettyCaretUnderline(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("- func:\n    name: f\n    return: Nope\n")
	fileID := fs.AddVirtual("prog.yaml", content)
	start := uint32(strings.Index(string(content), "Nope"))
	bag := oneDiagnostic(fs, diag.NewError(diag.LoadUnknownName, source.Span{File: fileID, Start: start, End: start + 4}, "unknown type"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, two source lines and a caret line, got:\n%s", buf.String())
	}
	if lines[0] != "prog.yaml:3:13: ERROR LDR1002: unknown type" {
		t.Fatalf("header: got %q", lines[0])
	}
	if lines[1] != " 2 |     name: f" || lines[2] != " 3 |     return: Nope" {
		t.Fatalf("source lines: got %q and %q", lines[1], lines[2])
	}
	if want := "   |" + strings.Repeat(" ", 1+12) + "^~~~"; lines[3] != want {
		t.Fatalf("caret line: got %q, want %q", lines[3], want)
	}
}

func TestPrettyWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("- {let: 变量, type: Nope}\n")
	fileID := fs.AddVirtual("wide.yaml", content)
	start := uint32(strings.Index(string(content), "Nope"))
	bag := oneDiagnostic(fs, diag.NewError(diag.LoadUnknownName, source.Span{File: fileID, Start: start, End: start + 4}, "unknown type"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	caret := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")[2]
	// "- {let: 变量, type: " is 16 ASCII cells plus two double-width runes.
	if want := "   |" + strings.Repeat(" ", 1+20) + "^~~~"; caret != want {
		t.Fatalf("caret line: got %q, want %q", caret, want)
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.yaml", []byte("- func: {name: f}\n- func: {name: f}\n"))
	d := diag.NewError(diag.TypeNoMatchingOverload, source.Span{File: fileID, Start: 2, End: 6}, "no overload")
	d = d.WithNote(source.Span{File: fileID, Start: 20, End: 24}, "considered here")
	d = d.WithNote(source.Span{}, "considered: f(): argument count")
	bag := oneDiagnostic(fs, d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	output := buf.String()
	if !strings.Contains(output, "note: test.yaml:2:3: considered here") {
		t.Fatalf("expected note with location, got:\n%s", output)
	}
	if !strings.Contains(output, "note: considered: f(): argument count") {
		t.Fatalf("expected note without location, got:\n%s", output)
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{})
	if strings.Contains(buf.String(), "note:") {
		t.Fatalf("notes printed although disabled:\n%s", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("c.yaml", []byte("x\n"))
	bag := oneDiagnostic(fs, diag.NewError(diag.LoadBadDocument, source.Span{File: fileID, Start: 0, End: 1}, "bad"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output contains escape sequences: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escape sequences: %q", colored.String())
	}
}

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("s.yaml", []byte("abc\ndef\n"))
	bag := oneDiagnostic(fs, diag.NewError(diag.TypeAssignMismatch, source.Span{File: fileID, Start: 5, End: 6}, "mismatch"))

	var buf bytes.Buffer
	Short(&buf, bag, fs, PathModeAuto, "")
	if got, want := buf.String(), "s.yaml:2:2: error "+diag.TypeAssignMismatch.ID()+": mismatch\n"; got != want {
		t.Fatalf("short: got %q, want %q", got, want)
	}
}
