package types

import (
	"testing"

	"whlsl/internal/ast"
)

// protocolFixture declares
//
//	protocol Addable { Addable operator+(Addable, Addable); }
//	protocol Numeric : Addable { Numeric operator*(Numeric, Numeric); }
//
// with operator+ implemented for int and float and operator* for int only.
func protocolFixture(in *Intrinsics) (addable, numeric *ast.ProtocolDecl) {
	plusInt := native("operator+", in.Int, nil, in.Int, in.Int)
	plusFloat := native("operator+", in.Float, nil, in.Float, in.Float)
	timesInt := native("operator*", in.Int, nil, in.Int, in.Int)

	addTV := &ast.TypeVariable{Name: "Addable"}
	addable = &ast.ProtocolDecl{Name: "Addable", TypeVariable: addTV}
	addable.Signatures = []*ast.ProtocolFuncDecl{{
		FuncBase: ast.FuncBase{
			Name:       "operator+",
			ReturnType: ast.RefTo(addTV),
			Parameters: []*ast.FuncParameter{param("a", ast.RefTo(addTV)), param("b", ast.RefTo(addTV))},
		},
		Protocol:          addable,
		PossibleOverloads: []ast.Func{plusInt, plusFloat},
	}}

	numTV := &ast.TypeVariable{Name: "Numeric"}
	numeric = &ast.ProtocolDecl{
		Name:         "Numeric",
		TypeVariable: numTV,
		Extends:      []*ast.ProtocolRef{{Name: "Addable", Decl: addable}},
	}
	numeric.Signatures = []*ast.ProtocolFuncDecl{{
		FuncBase: ast.FuncBase{
			Name:       "operator*",
			ReturnType: ast.RefTo(numTV),
			Parameters: []*ast.FuncParameter{param("a", ast.RefTo(numTV)), param("b", ast.RefTo(numTV))},
		},
		Protocol:          numeric,
		PossibleOverloads: []ast.Func{timesInt},
	}}
	return addable, numeric
}

func TestInherits(t *testing.T) {
	in := NewIntrinsics()
	addable, numeric := protocolFixture(in)
	addRef := &ast.ProtocolRef{Name: "Addable", Decl: addable}
	numRef := &ast.ProtocolRef{Name: "Numeric", Decl: numeric}

	tests := []struct {
		typ     ast.Type
		proto   *ast.ProtocolRef
		inherit bool
	}{
		{in.Int, addRef, true},
		{in.Float, addRef, true},
		{in.Bool, addRef, false},
		{in.Int, numRef, true},
		// float has operator+ but no operator*.
		{in.Float, numRef, false},
	}
	for _, tt := range tests {
		err := Inherits(tt.typ, tt.proto)
		if got := err == nil; got != tt.inherit {
			t.Errorf("Inherits(%s, %s): got %v (err %v), want %v", tt.typ, tt.proto.Name, got, err, tt.inherit)
		}
	}
}

func TestProtocolConstraintFiltersCandidates(t *testing.T) {
	in := NewIntrinsics()
	_, numeric := protocolFixture(in)
	tv := &ast.TypeVariable{Name: "T", Protocol: &ast.ProtocolRef{Name: "Numeric", Decl: numeric}}
	square := native("square", ast.RefTo(tv), []ast.TypeParameter{tv}, ast.RefTo(tv))

	if res := ResolveOverload([]ast.Func{square}, nil, []ast.Type{in.Int}, nil); res.Func == nil {
		t.Fatalf("square(int) should resolve: %v", res.Failures)
	}
	if res := ResolveOverload([]ast.Func{square}, nil, []ast.Type{in.Float}, nil); res.Func != nil {
		t.Fatalf("square(float) must fail: float does not inherit Numeric")
	}
}

func TestSignaturesByNameWithTypeVariable(t *testing.T) {
	in := NewIntrinsics()
	_, numeric := protocolFixture(in)
	tv := &ast.TypeVariable{Name: "T"}

	sigs := SignaturesByNameWithTypeVariable(numeric, "operator+", tv)
	if len(sigs) != 1 {
		t.Fatalf("expected operator+ through the extended protocol, got %d", len(sigs))
	}
	b := sigs[0].Base()
	if !Equals(b.Parameters[0].Type, ast.RefTo(tv)) || !Equals(b.ReturnType, ast.RefTo(tv)) {
		t.Fatalf("signature not substituted: %s", b.Signature())
	}
}

func TestInheritsRecursiveConstraint(t *testing.T) {
	in := NewIntrinsics()
	addTV := &ast.TypeVariable{Name: "Addable"}
	addable := &ast.ProtocolDecl{Name: "Addable", TypeVariable: addTV}
	ref := &ast.ProtocolRef{Name: "Addable", Decl: addable}

	// T operator+<T:Addable>(T, T) is the only implementation; checking it
	// re-enters Inherits(int, Addable).
	tv := &ast.TypeVariable{Name: "T", Protocol: ref}
	generic := native("operator+", ast.RefTo(tv), []ast.TypeParameter{tv}, ast.RefTo(tv), ast.RefTo(tv))
	addable.Signatures = []*ast.ProtocolFuncDecl{{
		FuncBase: ast.FuncBase{
			Name:       "operator+",
			ReturnType: ast.RefTo(addTV),
			Parameters: []*ast.FuncParameter{param("a", ast.RefTo(addTV)), param("b", ast.RefTo(addTV))},
		},
		Protocol:          addable,
		PossibleOverloads: []ast.Func{generic},
	}}
	if err := Inherits(in.Int, ref); err != nil {
		t.Fatalf("Inherits should terminate and succeed: %v", err)
	}
}
