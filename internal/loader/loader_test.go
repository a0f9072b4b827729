package loader

import (
	"errors"
	"testing"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/sema"
	"whlsl/internal/source"
	"whlsl/internal/testkit"
	"whlsl/internal/types"
)

const generics = `
- protocol:
    name: Addable
    signatures:
      - name: operator+
        return: Addable
        params: [{name: a, type: Addable}, {name: b, type: Addable}]
- native:
    name: operator+
    return: int
    params: [{name: a, type: int}, {name: b, type: int}]
- struct:
    name: Pair
    type_params: [T]
    fields:
      - {name: first, type: T}
      - {name: second, type: T}
- func:
    name: twice
    type_params: [{name: U, protocol: Addable}]
    return: U
    params: [{name: x, type: U}]
    body:
      - return: {call: operator+, args: [x, x]}
- func:
    name: main
    return: int
    body:
      - let: p
        type: {ref: Pair, args: [int]}
      - expr: {assign: [{dot: p, field: first}, 3]}
      - return: {call: twice, args: [{dot: p, field: first}]}
`

// intrinsics is shared by loading and checking; built-in types compare by
// identity.
var intrinsics = types.NewIntrinsics()

func load(t *testing.T, doc string) (*ast.Program, *source.FileSet, error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.yaml", []byte(doc))
	prog, err := Load(fs, id, Options{Intrinsics: intrinsics})
	return prog, fs, err
}

func mustLoad(t *testing.T, doc string) *ast.Program {
	t.Helper()
	prog, _, err := load(t, doc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return prog
}

func expectLoadCode(t *testing.T, doc string, want diag.Code) *Error {
	t.Helper()
	_, _, err := load(t, doc)
	var le *Error
	if !errors.As(err, &le) {
		t.Fatalf("expected *Error with %s, got %v", want.ID(), err)
	}
	if le.Code != want {
		t.Fatalf("expected %s, got %v", want.ID(), le)
	}
	return le
}

func TestLoadBindsAndChecks(t *testing.T) {
	prog := mustLoad(t, generics)

	if got := len(prog.TopLevelStatements); got != 5 {
		t.Fatalf("top-level statements: got %d, want 5", got)
	}
	twice, ok := prog.OverloadSet("twice")[0].(*ast.FuncDef)
	if !ok {
		t.Fatalf("twice: got %T, want *ast.FuncDef", prog.OverloadSet("twice")[0])
	}
	tv, ok := twice.TypeParameters[0].(*ast.TypeVariable)
	if !ok || tv.Protocol == nil || tv.Protocol.Decl != prog.Protocols["Addable"] {
		t.Fatalf("type parameter U is not bound to Addable: %#v", twice.TypeParameters[0])
	}
	sig := prog.Protocols["Addable"].Signatures[0]
	if len(sig.PossibleOverloads) != 1 {
		t.Fatalf("protocol signature overloads: got %d, want 1", len(sig.PossibleOverloads))
	}

	if _, err := sema.Check(prog, sema.Options{Intrinsics: intrinsics}); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestLoadSpanInvariants(t *testing.T) {
	prog, fs, err := load(t, generics)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := testkit.CheckSpanInvariants(prog, fs.Get(prog.Pos().File)); err != nil {
		t.Fatal(err)
	}

	packed, err := ConvertYAML([]byte(generics))
	if err != nil {
		t.Fatalf("ConvertYAML: %v", err)
	}
	fs = source.NewFileSet()
	id := fs.AddVirtual("test.msgpack", packed)
	prog, err = Load(fs, id, Options{Intrinsics: intrinsics, Format: FormatMsgpack})
	if err != nil {
		t.Fatalf("Load msgpack: %v", err)
	}
	if err := testkit.CheckSpanInvariants(prog, fs.Get(id)); err != nil {
		t.Fatal(err)
	}
}

func TestLoadPositions(t *testing.T) {
	doc := "- func:\n    name: main\n    body:\n      - return: 1\n"
	prog, fs, err := load(t, doc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	main := prog.OverloadSet("main")[0].(*ast.FuncDef)
	ret := main.Body.Statements[0].(*ast.Return)
	start, _ := fs.Resolve(ret.Value.Pos())
	if start.Line != 4 || start.Col != 17 {
		t.Fatalf("return value position: got %d:%d, want 4:17", start.Line, start.Col)
	}
	if got := ret.Value.Pos().Len(); got != 1 {
		t.Fatalf("return value span length: got %d, want 1", got)
	}
}

func TestLoadScopes(t *testing.T) {
	doc := `
- func:
    name: main
    params: [{name: x, type: int}]
    body:
      - block:
          - {let: x, type: float, init: 1.5}
          - expr: x
      - expr: x
`
	prog := mustLoad(t, doc)
	main := prog.OverloadSet("main")[0].(*ast.FuncDef)
	inner := main.Body.Statements[0].(*ast.Block)
	shadow := inner.Statements[1].(*ast.ExprStatement).Expr.(*ast.VariableRef)
	if _, ok := shadow.Decl.(*ast.VariableDecl); !ok {
		t.Fatalf("inner x: got %T, want *ast.VariableDecl", shadow.Decl)
	}
	outer := main.Body.Statements[1].(*ast.ExprStatement).Expr.(*ast.VariableRef)
	if outer.Decl != main.Parameters[0] {
		t.Fatalf("outer x: got %T, want the parameter", outer.Decl)
	}
}

func TestLoadNormalizesIdentifiers(t *testing.T) {
	// Precomposed in the declaration, decomposed in the use.
	doc := "- func:\n    name: main\n    body:\n      - {let: \"caf\u00e9\", type: int, init: 1}\n      - expr: \"cafe\u0301\"\n"
	prog := mustLoad(t, doc)
	main := prog.OverloadSet("main")[0].(*ast.FuncDef)
	ref := main.Body.Statements[1].(*ast.ExprStatement).Expr.(*ast.VariableRef)
	if ref.Decl != main.Body.Statements[0] {
		t.Fatalf("decomposed spelling did not bind to the declaration")
	}
}

func TestLoadLiteralsAndTypes(t *testing.T) {
	doc := `
- struct:
    name: Buf
    type_params: [{name: N, type: uint}]
    fields:
      - {name: data, type: {array: float, length: N}}
- func:
    name: main
    body:
      - {let: a, type: uint, init: {uint: 7}}
      - {let: b, type: {ptr: int, space: device}, init: null}
      - {let: c, type: {array_ref: float, space: constant}}
      - {let: d, type: {ref: Buf, args: [{uint: 4}]}}
      - {let: e, type: float4}
      - {let: f, type: bool, init: true}
`
	prog := mustLoad(t, doc)
	main := prog.OverloadSet("main")[0].(*ast.FuncDef)
	local := func(i int) *ast.VariableDecl { return main.Body.Statements[i].(*ast.VariableDecl) }

	if lit, ok := local(0).Initializer.(*ast.UintLiteral); !ok || lit.Value != 7 {
		t.Fatalf("a: got %#v, want uint literal 7", local(0).Initializer)
	}
	if p, ok := local(1).Type.(*ast.PtrType); !ok || p.Space != ast.Device {
		t.Fatalf("b: got %s, want a device pointer", local(1).Type)
	}
	if _, ok := local(1).Initializer.(*ast.NullLiteral); !ok {
		t.Fatalf("b init: got %T, want *ast.NullLiteral", local(1).Initializer)
	}
	if r, ok := local(2).Type.(*ast.ArrayRefType); !ok || r.Space != ast.Constant {
		t.Fatalf("c: got %s, want a constant array reference", local(2).Type)
	}
	ref, ok := local(3).Type.(*ast.TypeRef)
	if !ok || len(ref.TypeArguments) != 1 {
		t.Fatalf("d: got %s, want Buf<4>", local(3).Type)
	}
	if _, ok := ref.TypeArguments[0].(*ast.UintLiteral); !ok {
		t.Fatalf("d type argument: got %T, want *ast.UintLiteral", ref.TypeArguments[0])
	}
	if _, ok := local(4).Type.(*ast.VectorType); !ok {
		t.Fatalf("e: got %T, want *ast.VectorType", local(4).Type)
	}
	buf := prog.Types["Buf"].(*ast.StructType)
	length := buf.Fields[0].Type.(*ast.ArrayType).Length.(*ast.VariableRef)
	if length.Decl != buf.TypeParameters[0] {
		t.Fatalf("array length does not bind to the constexpr parameter")
	}

	if _, err := sema.Check(prog, sema.Options{Intrinsics: intrinsics}); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestLoadSemantics(t *testing.T) {
	doc := `
- func:
    name: vs
    stage: vertex
    return: float4
    semantic: SV_Position
    params:
      - {name: id, type: uint, semantic: SV_VertexID}
      - {name: pos, type: float4, semantic: attribute(2)}
      - {name: buf, type: {array_ref: float, space: device}, semantic: "register(u1, space3)"}
      - {name: k, type: float, semantic: specialized}
    body:
      - return: pos
`
	prog := mustLoad(t, doc)
	vs := prog.OverloadSet("vs")[0].(*ast.FuncDef)
	if vs.Shader != ast.StageVertex {
		t.Fatalf("stage: got %s, want vertex", vs.Shader)
	}
	want := []string{"SV_VertexID", "attribute(2)", "register(u1, space3)", "specialized"}
	for i, p := range vs.Parameters {
		if got := p.Semantic.String(); got != want[i] {
			t.Fatalf("parameter %d semantic: got %q, want %q", i, got, want[i])
		}
	}
	if _, err := sema.Check(prog, sema.Options{Intrinsics: intrinsics}); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want diag.Code
	}{
		{"not a sequence", "name: x\n", diag.LoadBadDocument},
		{"invalid yaml", "- [unclosed\n", diag.LoadBadDocument},
		{"unknown declaration", "- class: {name: C}\n", diag.LoadBadNode},
		{"two kinds", "- {struct: {name: A}, enum: {name: B}}\n", diag.LoadBadNode},
		{"duplicate type", "- struct: {name: A}\n- enum: {name: A}\n", diag.LoadDuplicateName},
		{"shadows builtin", "- struct: {name: float}\n", diag.LoadDuplicateName},
		{"unknown type", "- func: {name: f, return: Nope}\n", diag.LoadUnknownName},
		{"unknown protocol", "- func: {name: f, type_params: [{name: T, protocol: P}]}\n", diag.LoadUnknownName},
		{"unknown variable", "- func: {name: f, body: [{expr: y}]}\n", diag.LoadUnknownName},
		{"duplicate local", "- func: {name: f, body: [{let: a, type: int}, {let: a, type: int}]}\n", diag.LoadDuplicateName},
		{"int overflow", "- func: {name: f, body: [{expr: 4294967296}]}\n", diag.LoadBadValue},
		{"negative uint", "- func: {name: f, body: [{expr: {uint: -1}}]}\n", diag.LoadBadValue},
		{"bad stage", "- func: {name: f, stage: geometry}\n", diag.LoadBadValue},
		{"bad space", "- func: {name: f, return: {ptr: int, space: shared}}\n", diag.LoadBadValue},
		{"bad semantic", "- func: {name: f, semantic: SV_Nope}\n", diag.LoadBadValue},
		{"unknown statement", "- func: {name: f, body: [goto]}\n", diag.LoadBadNode},
		{"assign arity", "- func: {name: f, body: [{expr: {assign: [1]}}]}\n", diag.LoadBadDocument},
		{"native body", "- native: {name: f, body: []}\n", diag.LoadBadDocument},
		{"type as value", "- struct: {name: S}\n- func: {name: f, body: [{expr: S}]}\n", diag.LoadUnknownName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectLoadCode(t, tt.doc, tt.want)
		})
	}
}

func TestLoadNonScalarValues(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"stage", "- func: {name: f, stage: [vertex]}\n", "stage must be a scalar"},
		{"space", "- func: {name: f, return: {ptr: int, space: {s: device}}}\n", "address space must be a scalar"},
		{"int", "- func: {name: f, body: [{expr: {int: [1]}}]}\n", "int literal must be a scalar"},
		{"bool", "- func: {name: f, body: [{expr: {bool: {v: true}}}]}\n", "bool literal must be a scalar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			le := expectLoadCode(t, tt.doc, diag.LoadBadValue)
			if le.Msg != tt.want {
				t.Fatalf("message: got %q, want %q", le.Msg, tt.want)
			}
			if le.Span.Start == 0 {
				t.Fatal("error should point at the offending node")
			}
		})
	}
}

func TestLoadErrorSpan(t *testing.T) {
	doc := "- func:\n    name: f\n    return: Nope\n"
	le := expectLoadCode(t, doc, diag.LoadUnknownName)
	fs := source.NewFileSet()
	fs.AddVirtual("test.yaml", []byte(doc))
	start, _ := fs.Resolve(le.Span)
	if start.Line != 3 || start.Col != 13 {
		t.Fatalf("error position: got %d:%d, want 3:13", start.Line, start.Col)
	}
	if got := le.Diagnostic().Code; got != diag.LoadUnknownName {
		t.Fatalf("diagnostic code: got %s", got.ID())
	}
}

func TestConvertYAMLRoundTrip(t *testing.T) {
	packed, err := ConvertYAML([]byte(generics))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.msgpack", packed)
	in := types.NewIntrinsics()
	prog, err := Load(fs, id, Options{Intrinsics: in, Format: FormatOf("test.msgpack")})
	if err != nil {
		t.Fatalf("load msgpack: %v", err)
	}
	if len(prog.TopLevelStatements) != 5 {
		t.Fatalf("top-level statements: got %d, want 5", len(prog.TopLevelStatements))
	}
	if _, err := sema.Check(prog, sema.Options{Intrinsics: in}); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"a.yaml":    FormatYAML,
		"a.yml":     FormatYAML,
		"a.MP":      FormatMsgpack,
		"a.msgpack": FormatMsgpack,
		"a":         FormatYAML,
	}
	for path, want := range tests {
		if got := FormatOf(path); got != want {
			t.Fatalf("FormatOf(%q): got %s, want %s", path, got, want)
		}
	}
}

func TestLoadEmptyDocument(t *testing.T) {
	prog := mustLoad(t, "")
	if len(prog.TopLevelStatements) != 0 {
		t.Fatalf("expected an empty program, got %d statements", len(prog.TopLevelStatements))
	}
}
