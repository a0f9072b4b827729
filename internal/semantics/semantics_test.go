package semantics

import (
	"errors"
	"testing"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/types"
)

var stages = []ast.ShaderStage{ast.StageVertex, ast.StageFragment, ast.StageCompute}

func TestRequiredTypes(t *testing.T) {
	in := types.NewIntrinsics()
	want := map[string]ast.Type{
		"SV_InstanceID":       in.Uint,
		"SV_VertexID":         in.Uint,
		"SV_SampleIndex":      in.Uint,
		"SV_InnerCoverage":    in.Uint,
		"SV_Coverage":         in.Uint,
		"SV_GroupIndex":       in.Uint,
		"PSIZE":               in.Float,
		"SV_Depth":            in.Float,
		"SV_Position":         in.Vector(in.Float, 4),
		"SV_Target":           in.Vector(in.Float, 4),
		"SV_IsFrontFace":      in.Bool,
		"SV_DispatchThreadID": in.Vector(in.Uint, 3),
		"SV_GroupID":          in.Vector(in.Uint, 3),
		"SV_GroupThreadID":    in.Vector(in.Uint, 3),
	}
	if got := len(BuiltInNames()); got != len(want) {
		t.Fatalf("BuiltInNames has %d entries, want %d", got, len(want))
	}
	for name, typ := range want {
		got, err := RequiredType(name, in)
		if err != nil {
			t.Fatalf("RequiredType(%s): %v", name, err)
		}
		if got != typ {
			t.Errorf("RequiredType(%s) = %v, want %v", name, got, typ)
		}
	}

	_, err := RequiredType("SV_Bogus", in)
	var se *Error
	if !errors.As(err, &se) || !se.Code.IsInternal() {
		t.Fatalf("unknown semantic should be an internal error, got %v", err)
	}
}

func TestStageTable(t *testing.T) {
	allowed := map[ast.ShaderStage]map[Direction][]string{
		ast.StageVertex: {
			Input:  {"SV_InstanceID", "SV_VertexID"},
			Output: {"PSIZE", "SV_Position"},
		},
		ast.StageFragment: {
			Input:  {"SV_IsFrontFace", "SV_Position", "SV_SampleIndex", "SV_InnerCoverage"},
			Output: {"SV_Target", "SV_Depth", "SV_Coverage"},
		},
		ast.StageCompute: {
			Input: {"SV_DispatchThreadID", "SV_GroupID", "SV_GroupIndex", "SV_GroupThreadID"},
		},
	}
	for _, stage := range stages {
		for _, dir := range []Direction{Input, Output} {
			set := make(map[string]bool)
			for _, n := range allowed[stage][dir] {
				set[n] = true
			}
			for _, name := range BuiltInNames() {
				got, err := BuiltInAllowed(name, stage, dir)
				if err != nil {
					t.Fatalf("BuiltInAllowed(%s, %s, %s): %v", name, stage, dir, err)
				}
				if got != set[name] {
					t.Errorf("%s as %s %s: got %v, want %v", name, stage, dir, got, set[name])
				}
				if ok, _ := BuiltInAllowed(name, ast.StageTest, dir); !ok {
					t.Errorf("test stage must accept %s as %s", name, dir)
				}
			}
		}
	}
	if _, err := BuiltInAllowed("SV_Position", ast.StageNone, Input); err == nil {
		t.Fatalf("a function without a stage should be an internal error")
	}
}

func TestVertexIDAndPosition(t *testing.T) {
	in := types.NewIntrinsics()
	vid := &ast.BuiltInSemantic{Name: "SV_VertexID"}
	if ok, _ := IsAcceptableForStage(vid, ast.StageVertex, Input); !ok {
		t.Fatalf("SV_VertexID must be valid as vertex input")
	}
	if ok, _ := IsAcceptableForStage(vid, ast.StageFragment, Input); ok {
		t.Fatalf("SV_VertexID must be rejected as fragment input")
	}
	for _, stage := range stages {
		if ok, _ := IsAcceptableForStage(vid, stage, Output); ok {
			t.Fatalf("SV_VertexID must be rejected as %s output", stage)
		}
	}

	pos := &ast.BuiltInSemantic{Name: "SV_Position"}
	if ok, _ := IsAcceptableForStage(pos, ast.StageVertex, Output); !ok {
		t.Fatalf("SV_Position must be valid as vertex output")
	}
	if ok, _ := IsAcceptableForStage(pos, ast.StageFragment, Input); !ok {
		t.Fatalf("SV_Position must be valid as fragment input")
	}
	if ok, _ := IsAcceptableType(pos, in.Vector(in.Float, 4), in); !ok {
		t.Fatalf("SV_Position must accept float4")
	}
	if ok, _ := IsAcceptableType(pos, in.Vector(in.Float, 3), in); ok {
		t.Fatalf("SV_Position must reject float3")
	}
}

func TestOtherSemanticKinds(t *testing.T) {
	in := types.NewIntrinsics()
	attr := &ast.StageInOutSemantic{Index: 0}
	res := &ast.ResourceSemantic{Mode: ast.ResourceUAV, Index: 0}
	spec := &ast.SpecializationConstantSemantic{}

	cases := []struct {
		name string
		sem  ast.Semantic
		typ  ast.Type
		want bool
	}{
		{"attribute float4", attr, in.Vector(in.Float, 4), true},
		{"attribute float", attr, in.Float, true},
		{"attribute struct", attr, &ast.StructType{Name: "S"}, false},
		{"uav device array ref", res, &ast.ArrayRefType{Space: ast.Device, Elem: in.Float}, true},
		{"uav thread pointer", res, &ast.PtrType{Space: ast.Thread, Elem: in.Float}, false},
		{"uav float", res, in.Float, false},
		{"buffer constant pointer", &ast.ResourceSemantic{Mode: ast.ResourceBuffer}, &ast.PtrType{Space: ast.Constant, Elem: in.Float}, true},
		{"specialized int", spec, in.Int, true},
		{"specialized float4", spec, in.Vector(in.Float, 4), false},
	}
	for _, c := range cases {
		got, err := IsAcceptableType(c.sem, c.typ, in)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}

	if ok, _ := IsAcceptableForStage(attr, ast.StageFragment, Output); ok {
		t.Fatalf("attribute must be rejected as fragment output")
	}
	if ok, _ := IsAcceptableForStage(res, ast.StageCompute, Output); ok {
		t.Fatalf("resources are input only")
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b ast.Semantic
		want bool
	}{
		{&ast.BuiltInSemantic{Name: "SV_Target"}, &ast.BuiltInSemantic{Name: "SV_Target"}, true},
		{&ast.BuiltInSemantic{Name: "SV_Target"}, &ast.BuiltInSemantic{Name: "SV_Target", ExtraArgs: []uint32{}}, true},
		{&ast.BuiltInSemantic{Name: "SV_Target", ExtraArgs: []uint32{1}}, &ast.BuiltInSemantic{Name: "SV_Target", ExtraArgs: []uint32{1}}, true},
		{&ast.BuiltInSemantic{Name: "SV_Target", ExtraArgs: []uint32{1}}, &ast.BuiltInSemantic{Name: "SV_Target", ExtraArgs: []uint32{2}}, false},
		{&ast.BuiltInSemantic{Name: "SV_Target", ExtraArgs: []uint32{0}}, &ast.BuiltInSemantic{Name: "SV_Target"}, false},
		{&ast.BuiltInSemantic{Name: "SV_Depth"}, &ast.BuiltInSemantic{Name: "SV_Target"}, false},
		{&ast.StageInOutSemantic{Index: 1}, &ast.StageInOutSemantic{Index: 1}, true},
		{&ast.StageInOutSemantic{Index: 1}, &ast.BuiltInSemantic{Name: "SV_Depth"}, false},
		{&ast.SpecializationConstantSemantic{}, &ast.SpecializationConstantSemantic{}, true},
	}
	for i, c := range cases {
		if got := Equal(c.a, c.b); got != c.want {
			t.Errorf("case %d: Equal(%s, %s) = %v, want %v", i, c.a, c.b, got, c.want)
		}
	}
}

func TestParseBuiltIn(t *testing.T) {
	s, err := ParseBuiltIn("SV_Target3")
	if err != nil {
		t.Fatalf("ParseBuiltIn: %v", err)
	}
	if s.Name != "SV_Target" || len(s.ExtraArgs) != 1 || s.ExtraArgs[0] != 3 {
		t.Fatalf("got %s, want SV_Target(3)", s)
	}
	if s, err := ParseBuiltIn("SV_Position"); err != nil || len(s.ExtraArgs) != 0 {
		t.Fatalf("ParseBuiltIn(SV_Position) = %v, %v", s, err)
	}
	if _, err := ParseBuiltIn("SV_Bogus1"); err == nil {
		t.Fatalf("expected an error for an unknown base name")
	}
	if _, err := ParseBuiltIn("SV_Target99999999999"); err == nil {
		t.Fatalf("expected an overflow error")
	}
}

func codeOf(t *testing.T, err error) diag.Code {
	t.Helper()
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *semantics.Error, got %v", err)
	}
	return se.Code
}

func TestCheckEntryPoint(t *testing.T) {
	in := types.NewIntrinsics()
	float4 := in.Vector(in.Float, 4)
	vout := &ast.StructType{Name: "VOut", Fields: []*ast.Field{
		{Name: "pos", Type: float4, Semantic: &ast.BuiltInSemantic{Name: "SV_Position"}},
		{Name: "uv", Type: in.Vector(in.Float, 2), Semantic: &ast.StageInOutSemantic{Index: 0}},
	}}
	vertex := &ast.NativeFunc{FuncBase: ast.FuncBase{
		Name:       "vs",
		Shader:     ast.StageVertex,
		ReturnType: ast.RefTo(vout),
		Parameters: []*ast.FuncParameter{
			{Name: "vid", Type: in.Uint, Semantic: &ast.BuiltInSemantic{Name: "SV_VertexID"}},
		},
	}}
	if err := CheckEntryPoint(vertex, in); err != nil {
		t.Fatalf("valid vertex entry point: %v", err)
	}

	missing := &ast.NativeFunc{FuncBase: ast.FuncBase{
		Name: "vs", Shader: ast.StageVertex, ReturnType: in.Void,
		Parameters: []*ast.FuncParameter{{Name: "x", Type: in.Uint}},
	}}
	if got := codeOf(t, CheckEntryPoint(missing, in)); got != diag.SemMissing {
		t.Fatalf("missing semantic: code %s", got.ID())
	}

	wrongStage := &ast.NativeFunc{FuncBase: ast.FuncBase{
		Name: "fs", Shader: ast.StageFragment, ReturnType: in.Void,
		Parameters: []*ast.FuncParameter{{Name: "vid", Type: in.Uint, Semantic: &ast.BuiltInSemantic{Name: "SV_VertexID"}}},
	}}
	if got := codeOf(t, CheckEntryPoint(wrongStage, in)); got != diag.SemWrongStage {
		t.Fatalf("wrong stage: code %s", got.ID())
	}

	wrongType := &ast.NativeFunc{FuncBase: ast.FuncBase{
		Name: "fs", Shader: ast.StageFragment, ReturnType: in.Vector(in.Float, 3),
		Semantic: &ast.BuiltInSemantic{Name: "SV_Target"},
	}}
	if got := codeOf(t, CheckEntryPoint(wrongType, in)); got != diag.SemWrongType {
		t.Fatalf("wrong type: code %s", got.ID())
	}

	dup := &ast.NativeFunc{FuncBase: ast.FuncBase{
		Name: "vs", Shader: ast.StageVertex, ReturnType: in.Void,
		Parameters: []*ast.FuncParameter{
			{Name: "a", Type: in.Uint, Semantic: &ast.BuiltInSemantic{Name: "SV_VertexID"}},
			{Name: "b", Type: in.Uint, Semantic: &ast.BuiltInSemantic{Name: "SV_VertexID"}},
		},
	}}
	if got := codeOf(t, CheckEntryPoint(dup, in)); got != diag.SemDuplicate {
		t.Fatalf("duplicate: code %s", got.ID())
	}

	helper := &ast.NativeFunc{FuncBase: ast.FuncBase{
		Name: "helper", ReturnType: in.Int,
		Parameters: []*ast.FuncParameter{{Name: "x", Type: in.Int}},
	}}
	if err := CheckEntryPoint(helper, in); err != nil {
		t.Fatalf("functions without a stage are not entry points: %v", err)
	}
}
