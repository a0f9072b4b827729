package sema

import (
	"errors"
	"fmt"

	"whlsl/internal/diag"
	"whlsl/internal/semantics"
	"whlsl/internal/source"
)

// TypeError is a rule of the language violated by the checked program.
type TypeError struct {
	Code  diag.Code
	Span  source.Span
	Msg   string
	Notes []diag.Note
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
}

// Diagnostic converts the error into a reportable diagnostic.
func (e *TypeError) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code, e.Span, e.Msg).WithNotes(e.Notes...)
}

// InternalError is an invariant broken by an earlier pass, by the resolver
// or by the instantiator. It is never the program author's fault.
type InternalError struct {
	Code diag.Code
	Span source.Span
	Msg  string
	Err  error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code.ID(), e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
}

func (e *InternalError) Unwrap() error { return e.Err }

// Diagnostic converts the error into a reportable diagnostic.
func (e *InternalError) Diagnostic() diag.Diagnostic {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return diag.NewError(e.Code, e.Span, msg)
}

func typeErrorf(code diag.Code, span source.Span, format string, args ...any) *TypeError {
	return &TypeError{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func internalErrorf(code diag.Code, span source.Span, format string, args ...any) *InternalError {
	return &InternalError{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// fromSemantics maps an entry-point validation failure onto the checker's
// error kinds.
func fromSemantics(err error) error {
	var se *semantics.Error
	if !errors.As(err, &se) {
		return &InternalError{Code: diag.InternalError, Msg: "entry point validation failed", Err: err}
	}
	if se.Code.IsInternal() {
		return &InternalError{Code: se.Code, Span: se.Span, Msg: se.Msg}
	}
	return &TypeError{Code: se.Code, Span: se.Span, Msg: se.Msg}
}

// Diagnostic converts any error returned by Check into a diagnostic. Errors
// that are neither a *TypeError nor an *InternalError become internal
// compiler errors.
func Diagnostic(err error) diag.Diagnostic {
	var te *TypeError
	if errors.As(err, &te) {
		return te.Diagnostic()
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Diagnostic()
	}
	return diag.NewError(diag.InternalError, source.Span{}, err.Error())
}

// IsInternal reports whether err is a checker or resolver defect.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
