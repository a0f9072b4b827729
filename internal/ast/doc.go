// Package ast defines the name-resolved syntax tree consumed by the checker.
//
// Node variants form closed sets (Type, Func, Stmt, Expr, Semantic) guarded
// by unexported marker methods, and Walk switches over all of them. The tree
// is mutated in place by later passes: expressions gain their resolved type,
// calls their callee and type arguments, and a few nodes are rewritten.
package ast
