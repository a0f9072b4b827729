package sema

import (
	"strings"
	"testing"

	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/types"
)

func TestFirstDeclaredOverloadWins(t *testing.T) {
	f := newFixture()
	first := f.native("foo", f.in.Void, f.in.Int)
	f.native("foo", f.in.Void, f.in.Int)
	c := call("foo", intLit(1))
	f.main(stmt(c))
	f.mustCheck(t)
	if c.Func != first {
		t.Fatalf("resolved to %p, want the first declaration %p", c.Func, first)
	}
}

func TestLaterOverloadWhenEarlierDoesNotApply(t *testing.T) {
	f := newFixture()
	f.native("foo", f.in.Void, f.in.Bool)
	second := f.native("foo", f.in.Void, f.in.Float)
	c := call("foo", floatLit(1))
	f.main(stmt(c))
	f.mustCheck(t)
	if c.Func != second {
		t.Fatalf("resolved to %v, want foo(float)", c.Func.Base().Signature())
	}
}

// identity adds T id<T>(T x) { return x; }.
func identity(f *fixture) *ast.FuncDef {
	tv := typeVar("T", nil)
	x := param("x", ast.RefTo(tv))
	fn := f.funcDef("id", ast.RefTo(tv), []*ast.FuncParameter{x}, ret(use(x)))
	fn.TypeParameters = []ast.TypeParameter{tv}
	return fn
}

func TestInstantiationIsCanonical(t *testing.T) {
	f := newFixture()
	id := identity(f)
	c1, c2, c3 := call("id", intLit(1)), call("id", intLit(2)), call("id", floatLit(1.5))
	r1 := local("a", f.in.Int, c1)
	f.main(r1, stmt(c2), stmt(c3))
	res := f.mustCheck(t)

	if c1.Func != c2.Func {
		t.Fatalf("id<int> from two call sites should be the same instance")
	}
	if c1.Func == c3.Func {
		t.Fatalf("id<int> and id<float> should be distinct instances")
	}
	if c1.Func == ast.Func(id) {
		t.Fatalf("generic callee should be replaced by its instance")
	}
	if len(id.Instances) != 2 {
		t.Fatalf("got %d cached instances, want 2", len(id.Instances))
	}
	if len(c1.ActualTypeArguments) != 1 || c1.ActualTypeArguments[0] != ast.Node(f.in.Int) {
		t.Fatalf("synthesized type arguments = %v, want [int]", c1.ActualTypeArguments)
	}
	if c1.ExprType() != f.in.Int {
		t.Fatalf("id(1) has type %v, want int", c1.ExprType())
	}
	if res.Instantiations.Len() != 2 {
		t.Fatalf("recorded %d instantiations, want 2", res.Instantiations.Len())
	}
}

func TestExplicitTypeArguments(t *testing.T) {
	f := newFixture()
	identity(f)
	c := call("id", intLit(1))
	c.TypeArguments = []ast.Node{f.in.Float}
	f.main(stmt(c))
	f.mustCheck(t)
	if c.ExprType() != f.in.Float {
		t.Fatalf("id<float>(1) has type %v, want float", c.ExprType())
	}
}

func TestNoMatchingOverloadListsCandidates(t *testing.T) {
	f := newFixture()
	f.native("foo", f.in.Void, f.in.Bool)
	f.native("foo", f.in.Void, f.in.Int, f.in.Int)
	f.main(stmt(call("foo", floatLit(1))))
	_, err := f.check(t)
	te := asTypeError(t, err)
	if te.Code != diag.TypeNoMatchingOverload {
		t.Fatalf("code = %s, want %s", te.Code.ID(), diag.TypeNoMatchingOverload.ID())
	}
	if len(te.Notes) != 2 {
		t.Fatalf("got %d notes, want one per candidate", len(te.Notes))
	}
	if !strings.Contains(te.Notes[1].Msg, "wrong number of arguments") {
		t.Fatalf("second note = %q", te.Notes[1].Msg)
	}
}

// addable declares protocol Addable { T add(T, T); } with an int
// implementation of add.
func addable(f *fixture) *ast.ProtocolDecl {
	impl := f.native("add", f.in.Int, f.in.Int, f.in.Int)
	tv := typeVar("T", nil)
	decl := &ast.ProtocolDecl{Name: "Addable", TypeVariable: tv}
	sig := &ast.ProtocolFuncDecl{
		FuncBase: ast.FuncBase{
			Name:       "add",
			ReturnType: ast.RefTo(tv),
			Parameters: []*ast.FuncParameter{param("a", ast.RefTo(tv)), param("b", ast.RefTo(tv))},
		},
		Protocol:          decl,
		PossibleOverloads: []ast.Func{impl},
	}
	decl.Signatures = []*ast.ProtocolFuncDecl{sig}
	f.prog.Add(decl)
	return decl
}

// twice adds U twice<U: Addable>(U v) { return add(v, v); }.
func twice(f *fixture, protocol *ast.ProtocolDecl) *ast.CallExpression {
	u := typeVar("U", protocol)
	v := param("v", ast.RefTo(u))
	inner := call("add", use(v), use(v))
	fn := f.funcDef("twice", ast.RefTo(u), []*ast.FuncParameter{v}, ret(inner))
	fn.TypeParameters = []ast.TypeParameter{u}
	return inner
}

func TestProtocolSignatureResolvesInsideGenericFunction(t *testing.T) {
	f := newFixture()
	inner := twice(f, addable(f))
	outer := call("twice", intLit(3))
	f.main(stmt(outer))
	f.mustCheck(t)

	if _, ok := inner.Func.(*ast.ProtocolFuncDecl); !ok {
		t.Fatalf("add inside twice should resolve to the protocol signature, got %T", inner.Func)
	}
	if outer.ExprType() != f.in.Int {
		t.Fatalf("twice(3) has type %v, want int", outer.ExprType())
	}
}

func TestProtocolConstraintRejectsType(t *testing.T) {
	f := newFixture()
	twice(f, addable(f))
	f.main(stmt(call("twice", boolLit(true))))
	_, err := f.check(t)
	te := asTypeError(t, err)
	if te.Code != diag.TypeNoMatchingOverload {
		t.Fatalf("code = %s, want %s", te.Code.ID(), diag.TypeNoMatchingOverload.ID())
	}
	if len(te.Notes) == 0 || !strings.Contains(te.Notes[0].Msg, "Addable") {
		t.Fatalf("expected a note naming the protocol, got %+v", te.Notes)
	}
}

func TestIndexingWrapsBase(t *testing.T) {
	f := newFixture()
	elemPtr := ptr(ast.Thread, f.in.Int)
	f.native(operatorAnderIndex, elemPtr, &ast.ArrayRefType{Space: ast.Thread, Elem: f.in.Int}, f.in.Uint)
	arr := local("arr", array(f.in.Int, uintLit(3)), nil)
	c := call(operatorAnderIndex, use(arr), uintLit(0))
	f.main(arr, stmt(c))
	f.mustCheck(t)

	wrap, ok := c.Args[0].(*ast.MakeArrayRefExpression)
	if !ok {
		t.Fatalf("array base should be wrapped in @, got %T", c.Args[0])
	}
	if n, _ := ast.ConstexprUint(wrap.NumElements); n != 3 {
		t.Fatalf("wrapped base captured length %d, want 3", n)
	}
	if !types.Equals(c.ExprType(), elemPtr) {
		t.Fatalf("index result %v, want %v", c.ExprType(), elemPtr)
	}
}

func TestArrayArgumentDecays(t *testing.T) {
	f := newFixture()
	f.native("sum", f.in.Int, &ast.ArrayRefType{Space: ast.Thread, Elem: f.in.Int})
	a := local("a", array(f.in.Int, uintLit(4)), nil)
	c := call("sum", use(a))
	f.main(a, stmt(c))
	f.mustCheck(t)

	wrap, ok := c.Args[0].(*ast.MakeArrayRefExpression)
	if !ok {
		t.Fatalf("array argument should decay to @a, got %T", c.Args[0])
	}
	if n, _ := ast.ConstexprUint(wrap.NumElements); n != 4 {
		t.Fatalf("decayed argument captured length %d, want 4", n)
	}
	if _, ok := c.ArgumentTypes[0].(*ast.ArrayRefType); !ok {
		t.Fatalf("argument type %v, want an array reference", c.ArgumentTypes[0])
	}
	if c.ExprType() != f.in.Int {
		t.Fatalf("sum(a) has type %v, want int", c.ExprType())
	}
}

func TestArrayValueOverloadMatchesBeforeDecay(t *testing.T) {
	f := newFixture()
	f.native("first", f.in.Int, array(f.in.Int, uintLit(4)))
	a := local("a", array(f.in.Int, uintLit(4)), nil)
	c := call("first", use(a))
	f.main(a, stmt(c))
	f.mustCheck(t)

	if _, ok := c.Args[0].(*ast.VariableRef); !ok {
		t.Fatalf("argument should stay an array value, got %T", c.Args[0])
	}
}

func TestArrayArgumentDecayStillNeedsMatch(t *testing.T) {
	f := newFixture()
	f.native("sum", f.in.Int, &ast.ArrayRefType{Space: ast.Thread, Elem: f.in.Float})
	a := local("a", array(f.in.Int, uintLit(4)), nil)
	f.main(a, stmt(call("sum", use(a))))
	f.expectCode(t, diag.TypeNoMatchingOverload)
}

func TestIndexingRejectsPointer(t *testing.T) {
	f := newFixture()
	p := local("p", ptr(ast.Thread, f.in.Int), nil)
	f.main(p, stmt(call(operatorAnderIndex, use(p), uintLit(0))))
	f.expectCode(t, diag.TypePointerSubscript)
}

func TestCallRecordsArgumentTypes(t *testing.T) {
	f := newFixture()
	st := &ast.StructType{Name: "S"}
	f.prog.Add(st)
	f.native("touch", f.in.Void, ast.RefTo(st))
	s := local("s", st, nil)
	c := call("touch", use(s))
	f.main(s, stmt(c))
	f.mustCheck(t)
	if ref, ok := c.ArgumentTypes[0].(*ast.TypeRef); !ok || ref.Type != ast.NamedType(st) {
		t.Fatalf("bare struct argument should be wrapped in a reference, got %T", c.ArgumentTypes[0])
	}
}
