// Package semantics holds the fixed tables that govern shader entry-point
// semantics: the type each built-in semantic requires, the stages and
// directions it may appear in, and semantic equality. CheckEntryPoint applies
// them to a function with a shader stage.
package semantics
