package sema

import (
	"testing"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/types"
)

func TestSynthesizeVectorGetters(t *testing.T) {
	f := newFixture()
	// bool, int, uint, float and half vectors of sizes 2, 3 and 4.
	if n := SynthesizeVectorGetters(f.prog, f.in); n != 5*(2+3+4) {
		t.Fatalf("synthesized %d getters, want %d", n, 5*(2+3+4))
	}
	if n := SynthesizeVectorGetters(f.prog, f.in); n != 0 {
		t.Fatalf("second pass synthesized %d getters, want 0", n)
	}
	if got := len(f.prog.OverloadSet("operator.w")); got != 5 {
		t.Fatalf("operator.w has %d overloads, want 5 (size 4 only)", got)
	}

	float3 := f.in.Vector(f.in.Float, 3)
	res := types.ResolveOverload(f.prog.OverloadSet("operator.y"), nil, []ast.Type{float3}, nil)
	if res.Func == nil {
		t.Fatalf("operator.y(float3) did not resolve: %v", res.Failures)
	}
	if got := res.Func.Base().ReturnType; got != f.in.Float {
		t.Fatalf("operator.y(float3) returns %v, want float", got)
	}
	if got := res.Func.(*ast.NativeFunc).Behavior.(VectorComponent).Index; got != 1 {
		t.Fatalf("operator.y reads component %d, want 1", got)
	}
}

func TestSynthesizeVectorGettersKeepsDeclared(t *testing.T) {
	f := newFixture()
	declared := f.native("operator.x", f.in.Int, f.in.Vector(f.in.Int, 2))
	SynthesizeVectorGetters(f.prog, f.in)

	int2 := f.in.Vector(f.in.Int, 2)
	res := types.ResolveOverload(f.prog.OverloadSet("operator.x"), nil, []ast.Type{int2}, nil)
	if res.Func != declared {
		t.Fatalf("operator.x(int2) resolved to %v, want the declared native", res.Func)
	}
}

func TestVectorComponentAccess(t *testing.T) {
	f := newFixture()
	SynthesizeVectorGetters(f.prog, f.in)
	v := local("v", f.in.Vector(f.in.Float, 3), nil)
	d := &ast.DotExpression{Struct: use(v), FieldName: "y"}
	f.main(v, stmt(d))
	f.mustCheck(t)

	if d.ExprType() != f.in.Float {
		t.Fatalf("v.y has type %v, want float", d.ExprType())
	}
	if d.Getter == nil {
		t.Fatal("v.y should record its getter")
	}

	t.Run("component past the size", func(t *testing.T) {
		f := newFixture()
		SynthesizeVectorGetters(f.prog, f.in)
		v := local("v", f.in.Vector(f.in.Float, 2), nil)
		f.main(v, stmt(&ast.DotExpression{Struct: use(v), FieldName: "z"}))
		f.expectCode(t, diag.TypeNotStruct)
	})

	t.Run("getter result is not assignable", func(t *testing.T) {
		f := newFixture()
		SynthesizeVectorGetters(f.prog, f.in)
		v := local("v", f.in.Vector(f.in.Float, 2), nil)
		lhs := &ast.DotExpression{Struct: use(v), FieldName: "x"}
		f.main(v, stmt(&ast.Assignment{LHS: lhs, RHS: floatLit(1)}))
		f.expectCode(t, diag.TypeNotLValue)
	})
}
