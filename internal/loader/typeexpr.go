package loader

import (
	"whlsl/internal/ast"
	"whlsl/internal/diag"
)

var typeKinds = []string{"ptr", "array_ref", "array", "ref"}

// typ binds a type: a bare name, or a map keyed by ptr, array_ref, array or
// ref.
func (b *binder) typ(s *scope, n *dnode) (ast.Type, error) {
	if n.isNull() {
		return nil, errorf(diag.LoadBadDocument, n, "missing type")
	}
	if n.kind == scalarNode {
		name, err := ident(n, "type name")
		if err != nil {
			return nil, err
		}
		return b.named(s, name, nil, n)
	}
	kind, val, err := kindOf(n, typeKinds, "type")
	if err != nil {
		return nil, err
	}

	var out ast.Type
	switch kind {
	case "ptr", "array_ref":
		elem, err := b.typ(s, val)
		if err != nil {
			return nil, err
		}
		space := ast.Thread
		if sp := n.get("space"); sp != nil {
			raw, err := sp.scalar("address space")
			if err != nil {
				return nil, err
			}
			if space, err = ast.ParseAddressSpace(raw); err != nil {
				return nil, errorf(diag.LoadBadValue, sp, "%v", err)
			}
		}
		if kind == "ptr" {
			out = &ast.PtrType{Space: space, Elem: elem}
		} else {
			out = &ast.ArrayRefType{Space: space, Elem: elem}
		}
	case "array":
		elem, err := b.typ(s, val)
		if err != nil {
			return nil, err
		}
		lenNode := n.get("length")
		if lenNode.isNull() {
			return nil, errorf(diag.LoadBadDocument, n, "array type needs a length")
		}
		length, err := b.expr(s, lenNode)
		if err != nil {
			return nil, err
		}
		out = &ast.ArrayType{Elem: elem, Length: length}
	case "ref":
		name, err := ident(val, "type name")
		if err != nil {
			return nil, err
		}
		var args []ast.Node
		for _, a := range n.get("args").list() {
			arg, err := b.typeArg(s, a)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return b.named(s, name, args, n)
	}
	setPos(out, n)
	return out, nil
}

// named resolves a type name through type parameters, program types and
// built-in types, in that order.
func (b *binder) named(s *scope, name string, args []ast.Node, at *dnode) (ast.Type, error) {
	var target ast.NamedType
	switch v := s.lookup(name).(type) {
	case *ast.TypeVariable:
		target = v
	case nil:
		if nt, ok := b.prog.Types[name]; ok {
			target = nt
		} else if nt, ok := b.in.Lookup(name); ok {
			if len(args) != 0 {
				return nil, errorf(diag.LoadBadDocument, at, "built-in type %q takes no type arguments", name)
			}
			return nt, nil
		}
	default:
		return nil, errorf(diag.LoadUnknownName, at, "%q names a value, not a type", name)
	}
	if target == nil {
		return nil, errorf(diag.LoadUnknownName, at, "unknown type %q", name)
	}
	ref := &ast.TypeRef{Name: name, TypeArguments: args, Type: target}
	setPos(ref, at)
	return ref, nil
}

// typeArg binds a type argument, which is a type or a constant value.
func (b *binder) typeArg(s *scope, n *dnode) (ast.Node, error) {
	switch {
	case n.isNull():
		return nil, errorf(diag.LoadBadDocument, n, "missing type argument")
	case n.kind == scalarNode && n.tag != tagStr:
		return b.expr(s, n)
	case n.kind == scalarNode:
		name, err := ident(n, "type argument")
		if err != nil {
			return nil, err
		}
		if _, ok := s.lookup(name).(*ast.ConstexprTypeParameter); ok {
			return b.expr(s, n)
		}
		return b.typ(s, n)
	case n.kind == mapNode:
		if _, _, err := kindOf(n, exprKinds, "expression"); err == nil {
			return b.expr(s, n)
		}
	}
	return b.typ(s, n)
}
