package ast

import (
	"fmt"
	"math"
)

// Expr is the closed set of expressions. ExprType is nil until checked.
type Expr interface {
	Node
	ExprType() Type
	SetExprType(Type)
	isExpr()
}

type exprBase struct {
	Origin
	Type Type
}

func (e *exprBase) ExprType() Type     { return e.Type }
func (e *exprBase) SetExprType(t Type) { e.Type = t }
func (*exprBase) isExpr()              {}

type IntLiteral struct {
	exprBase
	Value int32
}

// NewIntLiteral builds the literal together with its provisional type.
func NewIntLiteral(o Origin, v int32) *IntLiteral {
	lit := &IntLiteral{Value: v}
	lit.Origin = o
	lit.Type = &LiteralType{typeBase: typeBase{Origin: o}, Kind: LitInt, Text: fmt.Sprint(v)}
	return lit
}

type UintLiteral struct {
	exprBase
	Value uint32
}

func NewUintLiteral(o Origin, v uint32) *UintLiteral {
	lit := &UintLiteral{Value: v}
	lit.Origin = o
	lit.Type = &LiteralType{typeBase: typeBase{Origin: o}, Kind: LitUint, Text: fmt.Sprint(v)}
	return lit
}

type FloatLiteral struct {
	exprBase
	Value float32
}

func NewFloatLiteral(o Origin, v float32) *FloatLiteral {
	lit := &FloatLiteral{Value: v}
	lit.Origin = o
	lit.Type = &LiteralType{typeBase: typeBase{Origin: o}, Kind: LitFloat, Text: fmt.Sprint(v)}
	return lit
}

type BoolLiteral struct {
	exprBase
	Value bool
}

type NullLiteral struct {
	exprBase
}

func NewNullLiteral(o Origin) *NullLiteral {
	lit := &NullLiteral{}
	lit.Origin = o
	lit.Type = &NullType{typeBase: typeBase{Origin: o}}
	return lit
}

// LiteralTypeOf returns the provisional type of a numeric literal, or nil.
func LiteralTypeOf(e Expr) *LiteralType {
	switch e.(type) {
	case *IntLiteral, *UintLiteral, *FloatLiteral:
		lt, _ := e.ExprType().(*LiteralType)
		return lt
	}
	return nil
}

// VariableRef names a *VariableDecl, *FuncParameter or *ConstexprTypeParameter.
type VariableRef struct {
	exprBase
	Name string
	Decl Node
}

type Assignment struct {
	exprBase
	LHS Expr
	RHS Expr
}

// DereferenceExpression is *Ptr; Space is filled by the checker.
type DereferenceExpression struct {
	exprBase
	Ptr   Expr
	Space AddressSpace
}

// MakePtrExpression is &LValue.
type MakePtrExpression struct {
	exprBase
	LValue Expr
}

// MakeArrayRefExpression is @LValue. The checker fills NumElements; when the
// operand is a pointer it sets FromPointer and the node becomes a
// pointer-to-array-reference conversion.
type MakeArrayRefExpression struct {
	exprBase
	LValue      Expr
	NumElements Expr
	FromPointer bool
}

// DotExpression is Struct.FieldName; StructType is the decayed base type.
// Getter is the operator.FieldName native a non-struct base resolved to.
type DotExpression struct {
	exprBase
	Struct     Expr
	FieldName  string
	StructType Type
	Getter     Func
}

// CallExpression is filled in by resolution: Func is the concrete callee and
// ActualTypeArguments the explicit or synthesized type arguments.
type CallExpression struct {
	exprBase
	Name              string
	TypeArguments     []Node
	Args              []Expr
	ReturnType        Type
	PossibleOverloads []Func

	Func                Func
	ActualTypeArguments []Node
	ArgumentTypes       []Type
}

type LogicalNot struct {
	exprBase
	Operand Expr
}

type LogicalOp uint8

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

func (op LogicalOp) String() string {
	if op == LogicalOr {
		return "||"
	}
	return "&&"
}

type LogicalExpression struct {
	exprBase
	Op    LogicalOp
	Left  Expr
	Right Expr
}

// CommaExpression evaluates List in order and yields the last value.
type CommaExpression struct {
	exprBase
	List []Expr
}

// IsLValue reports whether e denotes addressable storage.
func IsLValue(e Expr) bool {
	switch v := e.(type) {
	case *VariableRef:
		_, isConst := v.Decl.(*ConstexprTypeParameter)
		return v.Decl != nil && !isConst
	case *DereferenceExpression:
		return true
	case *DotExpression:
		return v.Getter == nil && IsLValue(v.Struct)
	}
	return false
}

// AddressSpaceOf is the address space of an lvalue; locals live in thread.
func AddressSpaceOf(e Expr) AddressSpace {
	switch v := e.(type) {
	case *DereferenceExpression:
		if v.Space != "" {
			return v.Space
		}
	case *DotExpression:
		return AddressSpaceOf(v.Struct)
	}
	return Thread
}

// IsConstexpr reports whether e is a literal or a reference to a constexpr
// type parameter.
func IsConstexpr(e Expr) bool {
	switch v := e.(type) {
	case *IntLiteral, *UintLiteral, *FloatLiteral, *BoolLiteral:
		return true
	case *VariableRef:
		_, ok := v.Decl.(*ConstexprTypeParameter)
		return ok
	}
	return false
}

// ConstexprUint reads a non-negative integer literal.
func ConstexprUint(e Expr) (uint32, bool) {
	switch v := e.(type) {
	case *UintLiteral:
		return v.Value, true
	case *IntLiteral:
		if v.Value >= 0 {
			return uint32(v.Value), true
		}
	}
	return 0, false
}

// ConstexprEqual compares two constexpr values. References to constexpr
// parameters are equal only to themselves.
func ConstexprEqual(a, b Expr) bool {
	if ra, ok := a.(*VariableRef); ok {
		rb, ok := b.(*VariableRef)
		return ok && ra.Decl != nil && ra.Decl == rb.Decl
	}
	if ab, ok := a.(*BoolLiteral); ok {
		bb, ok := b.(*BoolLiteral)
		return ok && ab.Value == bb.Value
	}
	av, aok := numericValue(a)
	bv, bok := numericValue(b)
	return aok && bok && av == bv
}

func numericValue(e Expr) (float64, bool) {
	switch v := e.(type) {
	case *IntLiteral:
		return float64(v.Value), true
	case *UintLiteral:
		return float64(v.Value), true
	case *FloatLiteral:
		if math.IsNaN(float64(v.Value)) {
			return 0, false
		}
		return float64(v.Value), true
	}
	return 0, false
}
