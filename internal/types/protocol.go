package types

import (
	"fmt"

	"whlsl/internal/ast"
)

type inheritKey struct {
	protocol *ast.ProtocolDecl
	typ      string
}

// resolveState is shared by nested resolutions started from one top-level
// request. It stops protocol checks that re-enter themselves through a
// generic candidate constrained by the same protocol.
type resolveState struct {
	inProgress map[inheritKey]bool
}

func newResolveState() *resolveState {
	return &resolveState{inProgress: make(map[inheritKey]bool)}
}

// Inherits returns nil when t provides an implementation of every signature
// of the referenced protocol and of the protocols it extends.
func Inherits(t ast.Type, ref *ast.ProtocolRef) error {
	return newResolveState().inherits(t, ref)
}

func (st *resolveState) inherits(t ast.Type, ref *ast.ProtocolRef) error {
	if ref == nil || ref.Decl == nil {
		name := "<nil>"
		if ref != nil {
			name = ref.Name
		}
		return fmt.Errorf("protocol %s is not resolved", name)
	}
	decl := ref.Decl
	key := inheritKey{protocol: decl, typ: t.String()}
	if st.inProgress[key] {
		return nil
	}
	st.inProgress[key] = true
	defer delete(st.inProgress, key)

	for _, ext := range decl.Extends {
		if err := st.inherits(t, ext); err != nil {
			return err
		}
	}
	for _, sig := range decl.Signatures {
		inst := instantiateSignature(sig, decl.TypeVariable, t)
		res := st.resolve(inst.PossibleOverloads, nil, inst.ParameterTypes(), inst.ReturnType)
		if res.Func == nil {
			return fmt.Errorf("type %s does not inherit %s: no implementation of %s", t, decl.Name, inst.Signature())
		}
	}
	return nil
}

// SignaturesByNameWithTypeVariable returns the signatures named name of the
// protocol and of the protocols it extends, with the protocol's type
// variable replaced by tv.
func SignaturesByNameWithTypeVariable(decl *ast.ProtocolDecl, name string, tv *ast.TypeVariable) []ast.Func {
	var out []ast.Func
	seen := make(map[*ast.ProtocolDecl]bool)
	var collect func(d *ast.ProtocolDecl)
	collect = func(d *ast.ProtocolDecl) {
		if d == nil || seen[d] {
			return
		}
		seen[d] = true
		for _, sig := range d.Signatures {
			if sig.Name == name {
				out = append(out, instantiateSignature(sig, d.TypeVariable, ast.RefTo(tv)))
			}
		}
		for _, ext := range d.Extends {
			collect(ext.Decl)
		}
	}
	collect(decl)
	return out
}

func instantiateSignature(sig *ast.ProtocolFuncDecl, tv *ast.TypeVariable, t ast.Type) *ast.ProtocolFuncDecl {
	sub := NewSubstitution([]ast.TypeParameter{tv}, []ast.Node{t})
	out := &ast.ProtocolFuncDecl{
		FuncBase: ast.FuncBase{
			Origin:         sig.Origin,
			Name:           sig.Name,
			ReturnType:     sub.Type(sig.ReturnType),
			TypeParameters: sig.TypeParameters,
			Parameters:     make([]*ast.FuncParameter, len(sig.Parameters)),
			IsCast:         sig.IsCast,
		},
		Protocol:          sig.Protocol,
		PossibleOverloads: sig.PossibleOverloads,
	}
	for i, p := range sig.Parameters {
		out.Parameters[i] = &ast.FuncParameter{Origin: p.Origin, Name: p.Name, Type: sub.Type(p.Type)}
	}
	return out
}
