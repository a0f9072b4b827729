// Package diag defines the diagnostic model shared by the loader, the checker
// and the entry-point validator.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – compact numeric identifier with a stable string form (codes.go).
//     Ranges: LDR1xxx loading, TYP3xxx type checking, SEM4xxx entry-point
//     semantics, IO5xxx, OBS6xxx, ICE9xxx internal compiler errors.
//   - Message – short human oriented text.
//   - Primary – the source.Span of the offending node.
//   - Notes – secondary spans, e.g. every overload candidate that was
//     considered and rejected.
//
// # Emitting diagnostics
//
// Producers report through a Reporter so storage stays decoupled: BagReporter
// collects into a Bag and Emit forwards a finished Diagnostic. Rendering lives
// in internal/diagfmt; FormatGoldenDiagnostics provides the stable one-line
// form used by golden tests.
package diag
