// Package sema type-checks a name-resolved program in place.
//
// The checker walks every top-level declaration once, in order. It fills in
// the type of every expression, resolves each call to a concrete function
// (instantiating generic callees through package mono), and validates the
// semantics of shader entry points. The first violated rule stops the pass
// and is returned as a *TypeError, or as an *InternalError when the
// violation points at a defect in an earlier pass or in the checker itself.
package sema
