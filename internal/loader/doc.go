// Package loader decodes program descriptions into name-bound ASTs.
//
// A program description is a YAML or MessagePack document listing the
// declarations of one compilation unit in an already structured form. The
// loader binds the names the description spells out (types, protocols,
// variables and overload sets) and hands the result to the checker. It does
// not parse source text.
//
// The document is a sequence of declarations, each a single-key map:
//
//	- struct: {name: S, fields: [{name: a, type: int}]}
//	- func:
//	    name: main
//	    return: void
//	    body:
//	      - {let: x, type: int, init: 1}
//	      - return
package loader
