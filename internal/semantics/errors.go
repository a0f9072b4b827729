package semantics

import (
	"fmt"

	"whlsl/internal/diag"
	"whlsl/internal/source"
)

// Error is a violated entry-point rule. Codes in the internal range mark
// table lookups that cannot fail for a well-formed program.
type Error struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
}

func errorf(code diag.Code, span source.Span, format string, args ...any) *Error {
	return &Error{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}
