package loader

import (
	"fmt"

	"whlsl/internal/diag"
	"whlsl/internal/source"
)

// Error is a malformed or unbindable program description.
type Error struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
}

// Diagnostic converts the error into a reportable diagnostic.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code, e.Span, e.Msg)
}

func errorf(code diag.Code, n *dnode, format string, args ...any) *Error {
	var span source.Span
	if n != nil {
		span = n.span
	}
	return &Error{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}
