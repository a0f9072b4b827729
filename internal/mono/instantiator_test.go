package mono

import (
	"bytes"
	"strings"
	"testing"

	"whlsl/internal/ast"
	"whlsl/internal/source"
	"whlsl/internal/types"
)

// identity builds `T id<T>(T x) { T y = x; return y; }`.
func identity() (*ast.FuncDef, *ast.TypeVariable) {
	tv := &ast.TypeVariable{Name: "T"}
	x := &ast.FuncParameter{Name: "x", Type: ast.RefTo(tv)}
	y := &ast.VariableDecl{Name: "y", Type: ast.RefTo(tv), Initializer: &ast.VariableRef{Name: "x", Decl: x}}
	ret := &ast.Return{Value: &ast.VariableRef{Name: "y", Decl: y}}
	fn := &ast.FuncDef{
		FuncBase: ast.FuncBase{
			Name:           "id",
			ReturnType:     ast.RefTo(tv),
			TypeParameters: []ast.TypeParameter{tv},
			Parameters:     []*ast.FuncParameter{x},
		},
		Body: &ast.Block{Statements: []ast.Stmt{y, ret}},
	}
	return fn, tv
}

func TestGetUniqueIsCanonical(t *testing.T) {
	in := types.NewIntrinsics()
	fn, _ := identity()
	inst := NewInstantiator(nil)

	a, err := inst.GetUnique(fn, []ast.Node{in.Int})
	if err != nil {
		t.Fatalf("GetUnique: %v", err)
	}
	b, err := inst.GetUnique(fn, []ast.Node{ast.RefTo(in.Int)})
	if err != nil {
		t.Fatalf("GetUnique: %v", err)
	}
	if a != b {
		t.Fatalf("equal type arguments must yield the identical instance")
	}
	c, err := inst.GetUnique(fn, []ast.Node{in.Float})
	if err != nil {
		t.Fatalf("GetUnique: %v", err)
	}
	if c == a {
		t.Fatalf("int and float must yield distinct instances")
	}
	if got := len(fn.Instances); got != 2 {
		t.Fatalf("cache holds %d instances, want 2", got)
	}
}

func TestGetUniqueNonGenericReturnsSelf(t *testing.T) {
	in := types.NewIntrinsics()
	fn := &ast.NativeFunc{FuncBase: ast.FuncBase{Name: "f", ReturnType: in.Void}}
	got, err := NewInstantiator(nil).GetUnique(fn, nil)
	if err != nil || got != fn {
		t.Fatalf("GetUnique(non-generic) = %v, %v; want itself", got, err)
	}
}

func TestInstanceBodyIsSubstituted(t *testing.T) {
	in := types.NewIntrinsics()
	fn, _ := identity()
	got, err := NewInstantiator(nil).GetUnique(fn, []ast.Node{in.Int})
	if err != nil {
		t.Fatalf("GetUnique: %v", err)
	}
	def, ok := got.(*ast.FuncDef)
	if !ok {
		t.Fatalf("instance is %T, want *ast.FuncDef", got)
	}
	if def.IsGeneric() {
		t.Fatalf("instance must have no type parameters")
	}
	if def.ReturnType != in.Int || def.Parameters[0].Type != in.Int {
		t.Fatalf("signature not substituted: %s", def.Signature())
	}
	if def.Parameters[0] == fn.Parameters[0] {
		t.Fatalf("parameters must be copied")
	}

	decl := def.Body.Statements[0].(*ast.VariableDecl)
	if decl.Type != in.Int {
		t.Fatalf("local type = %v, want int", decl.Type)
	}
	if ref := decl.Initializer.(*ast.VariableRef); ref.Decl != def.Parameters[0] {
		t.Fatalf("reference to x must point at the copied parameter")
	}
	ret := def.Body.Statements[1].(*ast.Return)
	if ref := ret.Value.(*ast.VariableRef); ref.Decl != decl {
		t.Fatalf("reference to y must point at the copied local")
	}
	if fn.Body.Statements[0].(*ast.VariableDecl).Type == decl.Type {
		t.Fatalf("the original body must keep its generic types")
	}
}

func TestNativeInstanceDelegates(t *testing.T) {
	in := types.NewIntrinsics()
	tv := &ast.TypeVariable{Name: "T"}
	behavior := "load"
	fn := &ast.NativeFunc{
		FuncBase: ast.FuncBase{
			Name:           "load",
			ReturnType:     ast.RefTo(tv),
			TypeParameters: []ast.TypeParameter{tv},
			Parameters:     []*ast.FuncParameter{{Name: "p", Type: &ast.PtrType{Space: ast.Device, Elem: ast.RefTo(tv)}}},
		},
		Behavior: behavior,
	}
	got, err := NewInstantiator(nil).GetUnique(fn, []ast.Node{in.Float})
	if err != nil {
		t.Fatalf("GetUnique: %v", err)
	}
	ni, ok := got.(*ast.NativeFuncInstance)
	if !ok {
		t.Fatalf("instance is %T, want *ast.NativeFuncInstance", got)
	}
	if ni.Func != fn || ni.Behavior() != behavior {
		t.Fatalf("native instance must delegate to the original")
	}
	if want := "float load(device float*)"; ni.Signature() != want {
		t.Fatalf("Signature() = %q, want %q", ni.Signature(), want)
	}
}

func TestConstexprParameterIsInlined(t *testing.T) {
	in := types.NewIntrinsics()
	n := &ast.ConstexprTypeParameter{Name: "n", Type: in.Uint}
	ret := &ast.Return{Value: &ast.VariableRef{Name: "n", Decl: n}}
	fn := &ast.FuncDef{
		FuncBase: ast.FuncBase{Name: "size", ReturnType: in.Uint, TypeParameters: []ast.TypeParameter{n}},
		Body:     &ast.Block{Statements: []ast.Stmt{ret}},
	}
	got, err := NewInstantiator(nil).GetUnique(fn, []ast.Node{ast.NewUintLiteral(ast.Origin{}, 8)})
	if err != nil {
		t.Fatalf("GetUnique: %v", err)
	}
	value := got.(*ast.FuncDef).Body.Statements[0].(*ast.Return).Value
	if v, ok := ast.ConstexprUint(value); !ok || v != 8 {
		t.Fatalf("return value = %s, want 8u", ast.ExprString(value))
	}
}

func TestGetUniqueArityMismatch(t *testing.T) {
	fn, _ := identity()
	if _, err := NewInstantiator(nil).GetUnique(fn, nil); err == nil {
		t.Fatalf("expected an error for missing type arguments")
	}
}

func TestRecorderCollectsUseSites(t *testing.T) {
	in := types.NewIntrinsics()
	fn, _ := identity()
	m := NewInstantiationMap()
	inst := NewInstantiator(NewInstantiationMapRecorder(m))

	s1 := source.Span{File: 0, Start: 1, End: 2}
	s2 := source.Span{File: 0, Start: 5, End: 6}
	if _, err := inst.Instantiate(fn, []ast.Node{in.Int}, s1, "main"); err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Instantiate(fn, []ast.Node{in.Int}, s2, "main"); err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Instantiate(fn, []ast.Node{in.Int}, s2, "main"); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 1 {
		t.Fatalf("map holds %d entries, want 1", m.Len())
	}
	for _, e := range m.Entries {
		if len(e.UseSites) != 2 {
			t.Fatalf("use sites = %d, want 2 (duplicates collapse)", len(e.UseSites))
		}
	}

	var buf bytes.Buffer
	if err := DumpInstantiations(&buf, m, nil, DumpOptions{HeadersOnly: true}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); !strings.Contains(got, "fn id<int> uses=2") {
		t.Fatalf("dump = %q", got)
	}
}
