package diag

import (
	"fmt"

	"whlsl/internal/source"
)

// Note points at a related location. A zero Span means the note has no
// location, as with timing payloads.
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// Errorf is NewError with a formatted message.
func Errorf(code Code, primary source.Span, format string, args ...any) Diagnostic {
	return New(SevError, code, primary, fmt.Sprintf(format, args...))
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// WithNotes appends notes; the receiver's slice is never shared.
func (d Diagnostic) WithNotes(notes ...Note) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], notes...)
	return d
}
