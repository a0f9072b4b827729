package loader

import (
	"golang.org/x/text/unicode/norm"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
)

// scope maps names to type parameters and value declarations. Lookups walk
// outward; the program's types and protocols sit behind the outermost scope.
type scope struct {
	parent *scope
	names  map[string]ast.Node
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]ast.Node)}
}

func (s *scope) lookup(name string) ast.Node {
	for cur := s; cur != nil; cur = cur.parent {
		if n, ok := cur.names[name]; ok {
			return n
		}
	}
	return nil
}

// declare binds name in s; names may shadow outer scopes but not repeat
// within one.
func (s *scope) declare(name string, n ast.Node, at *dnode) error {
	if _, dup := s.names[name]; dup {
		return errorf(diag.LoadDuplicateName, at, "%q is already declared in this scope", name)
	}
	s.names[name] = n
	return nil
}

// ident reads an identifier and brings it to NFC so that differently
// composed spellings bind to the same declaration.
func ident(n *dnode, what string) (string, error) {
	s, ok := n.str()
	if !ok || s == "" {
		return "", errorf(diag.LoadBadDocument, n, "%s must be a non-empty name", what)
	}
	return norm.NFC.String(s), nil
}
