package sema

import (
	"errors"
	"testing"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/types"
)

type fixture struct {
	in   *types.Intrinsics
	prog *ast.Program
}

func newFixture() *fixture {
	return &fixture{in: types.NewIntrinsics(), prog: ast.NewProgram()}
}

func (f *fixture) check(t *testing.T) (Result, error) {
	t.Helper()
	return Check(f.prog, Options{Intrinsics: f.in})
}

func (f *fixture) mustCheck(t *testing.T) Result {
	t.Helper()
	res, err := f.check(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func (f *fixture) expectCode(t *testing.T, want diag.Code) {
	t.Helper()
	_, err := f.check(t)
	if err == nil {
		t.Fatalf("expected %s, got no error", want.ID())
	}
	if got := Diagnostic(err).Code; got != want {
		t.Fatalf("expected %s, got %v", want.ID(), err)
	}
}

func (f *fixture) funcDef(name string, ret ast.Type, params []*ast.FuncParameter, body ...ast.Stmt) *ast.FuncDef {
	fn := &ast.FuncDef{
		FuncBase: ast.FuncBase{Name: name, ReturnType: ret, Parameters: params},
		Body:     &ast.Block{Statements: body},
	}
	f.prog.Add(fn)
	return fn
}

// main adds a void function without parameters holding body.
func (f *fixture) main(body ...ast.Stmt) *ast.FuncDef {
	return f.funcDef("main", f.in.Void, nil, body...)
}

func (f *fixture) native(name string, ret ast.Type, params ...ast.Type) *ast.NativeFunc {
	nf := &ast.NativeFunc{FuncBase: ast.FuncBase{Name: name, ReturnType: ret}}
	for _, p := range params {
		nf.Parameters = append(nf.Parameters, &ast.FuncParameter{Name: "p", Type: p})
	}
	f.prog.Add(nf)
	return nf
}

func param(name string, t ast.Type) *ast.FuncParameter {
	return &ast.FuncParameter{Name: name, Type: t}
}

func local(name string, t ast.Type, init ast.Expr) *ast.VariableDecl {
	return &ast.VariableDecl{Name: name, Type: t, Initializer: init}
}

func use(decl ast.Node) *ast.VariableRef {
	name := ""
	switch d := decl.(type) {
	case *ast.VariableDecl:
		name = d.Name
	case *ast.FuncParameter:
		name = d.Name
	case *ast.ConstexprTypeParameter:
		name = d.Name
	}
	return &ast.VariableRef{Name: name, Decl: decl}
}

func call(name string, args ...ast.Expr) *ast.CallExpression {
	return &ast.CallExpression{Name: name, Args: args}
}

func intLit(v int32) *ast.IntLiteral    { return ast.NewIntLiteral(ast.Origin{}, v) }
func uintLit(v uint32) *ast.UintLiteral { return ast.NewUintLiteral(ast.Origin{}, v) }
func floatLit(v float32) *ast.FloatLiteral {
	return ast.NewFloatLiteral(ast.Origin{}, v)
}
func boolLit(v bool) *ast.BoolLiteral { return &ast.BoolLiteral{Value: v} }

func stmt(e ast.Expr) *ast.ExprStatement { return &ast.ExprStatement{Expr: e} }

func ret(e ast.Expr) *ast.Return { return &ast.Return{Value: e} }

func ptr(space ast.AddressSpace, elem ast.Type) *ast.PtrType {
	return &ast.PtrType{Space: space, Elem: elem}
}

func array(elem ast.Type, length ast.Expr) *ast.ArrayType {
	return &ast.ArrayType{Elem: elem, Length: length}
}

func typeVar(name string, protocol *ast.ProtocolDecl) *ast.TypeVariable {
	tv := &ast.TypeVariable{Name: name}
	if protocol != nil {
		tv.Protocol = &ast.ProtocolRef{Name: protocol.Name, Decl: protocol}
	}
	return tv
}

func asTypeError(t *testing.T, err error) *TypeError {
	t.Helper()
	var te *TypeError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TypeError, got %T: %v", err, err)
	}
	return te
}
