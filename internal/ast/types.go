package ast

import (
	"fmt"
	"strings"
)

// Type is the closed set of type variants. Classification predicates default
// to false through typeBase and are overridden by the variants they apply to.
type Type interface {
	Node
	String() string

	IsPtr() bool
	IsArray() bool
	IsArrayRef() bool
	IsRef() bool
	IsNumber() bool
	IsInt() bool
	IsSigned() bool
	IsFloating() bool
	IsEnum() bool
	IsPrimitive() bool

	isType()
}

type typeBase struct {
	Origin
}

func (typeBase) IsPtr() bool       { return false }
func (typeBase) IsArray() bool     { return false }
func (typeBase) IsArrayRef() bool  { return false }
func (typeBase) IsRef() bool       { return false }
func (typeBase) IsNumber() bool    { return false }
func (typeBase) IsInt() bool       { return false }
func (typeBase) IsSigned() bool    { return false }
func (typeBase) IsFloating() bool  { return false }
func (typeBase) IsEnum() bool      { return false }
func (typeBase) IsPrimitive() bool { return false }
func (typeBase) isType()           {}

// NamedType is a type a TypeRef can resolve to.
type NamedType interface {
	Type
	TypeName() string
	TypeParams() []TypeParameter
}

// TypeParameter is either a *TypeVariable or a *ConstexprTypeParameter.
type TypeParameter interface {
	Node
	ParamName() string
	isTypeParameter()
}

// PrimitiveKind enumerates the scalar primitives.
type PrimitiveKind uint8

const (
	PrimVoid PrimitiveKind = iota
	PrimBool
	PrimInt
	PrimUint
	PrimUchar
	PrimFloat
	PrimHalf
)

// PrimitiveType is a scalar built into the language.
type PrimitiveType struct {
	typeBase
	Name string
	Kind PrimitiveKind
}

func (t *PrimitiveType) String() string               { return t.Name }
func (t *PrimitiveType) TypeName() string             { return t.Name }
func (t *PrimitiveType) TypeParams() []TypeParameter { return nil }

func (t *PrimitiveType) IsNumber() bool {
	return t.IsInt() || t.IsFloating()
}

func (t *PrimitiveType) IsInt() bool {
	return t.Kind == PrimInt || t.Kind == PrimUint || t.Kind == PrimUchar
}

func (t *PrimitiveType) IsSigned() bool {
	return t.Kind == PrimInt || t.IsFloating()
}

func (t *PrimitiveType) IsFloating() bool {
	return t.Kind == PrimFloat || t.Kind == PrimHalf
}

func (t *PrimitiveType) IsPrimitive() bool { return t.Kind != PrimVoid }

// VectorType is vector<Elem, Size>; Name is the short spelling (float4).
type VectorType struct {
	typeBase
	Name string
	Elem *PrimitiveType
	Size uint32
}

func (t *VectorType) String() string               { return t.Name }
func (t *VectorType) TypeName() string             { return t.Name }
func (t *VectorType) TypeParams() []TypeParameter { return nil }
func (t *VectorType) IsPrimitive() bool            { return true }

// MatrixType is matrix<Elem, Rows, Cols>.
type MatrixType struct {
	typeBase
	Name string
	Elem *PrimitiveType
	Rows uint32
	Cols uint32
}

func (t *MatrixType) String() string               { return t.Name }
func (t *MatrixType) TypeName() string             { return t.Name }
func (t *MatrixType) TypeParams() []TypeParameter { return nil }
func (t *MatrixType) IsPrimitive() bool            { return true }

// NativeType is an opaque type supplied by the standard library (textures, samplers).
type NativeType struct {
	typeBase
	Name           string
	TypeParameters []TypeParameter
}

func (t *NativeType) String() string               { return t.Name + typeParamsString(t.TypeParameters) }
func (t *NativeType) TypeName() string             { return t.Name }
func (t *NativeType) TypeParams() []TypeParameter { return t.TypeParameters }

// PtrType is Elem* in a given address space.
type PtrType struct {
	typeBase
	Space AddressSpace
	Elem  Type
}

func (t *PtrType) String() string { return fmt.Sprintf("%s %s*", t.Space, t.Elem) }
func (t *PtrType) IsPtr() bool    { return true }
func (t *PtrType) IsRef() bool    { return true }

// ArrayRefType is Elem[] in a given address space.
type ArrayRefType struct {
	typeBase
	Space AddressSpace
	Elem  Type
}

func (t *ArrayRefType) String() string   { return fmt.Sprintf("%s %s[]", t.Space, t.Elem) }
func (t *ArrayRefType) IsArrayRef() bool { return true }
func (t *ArrayRefType) IsRef() bool      { return true }

// ArrayType is a fixed-size array; Length must be a constexpr.
type ArrayType struct {
	typeBase
	Elem   Type
	Length Expr
}

func (t *ArrayType) String() string { return fmt.Sprintf("%s[%s]", t.Elem, ExprString(t.Length)) }
func (t *ArrayType) IsArray() bool  { return true }

// NumElements reports the folded length when it is a literal.
func (t *ArrayType) NumElements() (uint32, bool) {
	return ConstexprUint(t.Length)
}

// Field is a struct member.
type Field struct {
	Origin
	Name     string
	Type     Type
	Semantic Semantic
}

// StructType is a nominal record, optionally generic.
type StructType struct {
	typeBase
	Name           string
	TypeParameters []TypeParameter
	Fields         []*Field
}

func (t *StructType) String() string               { return t.Name + typeParamsString(t.TypeParameters) }
func (t *StructType) TypeName() string             { return t.Name }
func (t *StructType) TypeParams() []TypeParameter { return t.TypeParameters }

// FieldByName returns nil when the struct has no such field.
func (t *StructType) FieldByName(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// EnumMember is one named value of an enum; Value may be nil when implicit.
type EnumMember struct {
	Origin
	Name  string
	Value Expr
}

// EnumType is a nominal integer enumeration.
type EnumType struct {
	typeBase
	Name    string
	Base    Type
	Members []*EnumMember
}

func (t *EnumType) String() string               { return t.Name }
func (t *EnumType) TypeName() string             { return t.Name }
func (t *EnumType) TypeParams() []TypeParameter { return nil }
func (t *EnumType) IsEnum() bool                 { return true }

// MemberByName returns nil when the enum has no such member.
func (t *EnumType) MemberByName(name string) *EnumMember {
	for _, m := range t.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// TypeDef names another type, optionally over type parameters.
type TypeDef struct {
	typeBase
	Name           string
	TypeParameters []TypeParameter
	Type           Type
}

func (t *TypeDef) String() string               { return t.Name + typeParamsString(t.TypeParameters) }
func (t *TypeDef) TypeName() string             { return t.Name }
func (t *TypeDef) TypeParams() []TypeParameter { return t.TypeParameters }

// TypeVariable is a type-kind type parameter, optionally protocol-constrained.
type TypeVariable struct {
	typeBase
	Name     string
	Protocol *ProtocolRef
}

func (t *TypeVariable) String() string               { return t.Name }
func (t *TypeVariable) TypeName() string             { return t.Name }
func (t *TypeVariable) TypeParams() []TypeParameter { return nil }
func (t *TypeVariable) ParamName() string            { return t.Name }
func (t *TypeVariable) isTypeParameter()             {}

// ConstexprTypeParameter is a value-kind type parameter of a declared type.
type ConstexprTypeParameter struct {
	Origin
	Name string
	Type Type
}

func (p *ConstexprTypeParameter) ParamName() string { return p.Name }
func (p *ConstexprTypeParameter) isTypeParameter()  {}

// TypeRef is a use of a named type. Type is filled by name resolution.
// TypeArguments hold Types or constexpr Exprs.
type TypeRef struct {
	typeBase
	Name          string
	TypeArguments []Node
	Type          NamedType
}

// RefTo wraps a named type into a reference without type arguments.
func RefTo(t NamedType) *TypeRef {
	return &TypeRef{typeBase: typeBase{Origin: At(t.Pos())}, Name: t.TypeName(), Type: t}
}

func (t *TypeRef) String() string {
	if len(t.TypeArguments) == 0 {
		return t.Name
	}
	parts := make([]string, 0, len(t.TypeArguments))
	for _, a := range t.TypeArguments {
		parts = append(parts, NodeString(a))
	}
	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}

func (t *TypeRef) target() Type {
	if t.Type == nil {
		return nil
	}
	if td, ok := t.Type.(*TypeDef); ok && len(td.TypeParameters) == 0 && len(t.TypeArguments) == 0 {
		return td.Type
	}
	return t.Type
}

func (t *TypeRef) forward(pred func(Type) bool) bool {
	target := t.target()
	return target != nil && pred(target)
}

func (t *TypeRef) IsPtr() bool       { return t.forward(Type.IsPtr) }
func (t *TypeRef) IsArray() bool     { return t.forward(Type.IsArray) }
func (t *TypeRef) IsArrayRef() bool  { return t.forward(Type.IsArrayRef) }
func (t *TypeRef) IsRef() bool       { return t.forward(Type.IsRef) }
func (t *TypeRef) IsNumber() bool    { return t.forward(Type.IsNumber) }
func (t *TypeRef) IsInt() bool       { return t.forward(Type.IsInt) }
func (t *TypeRef) IsSigned() bool    { return t.forward(Type.IsSigned) }
func (t *TypeRef) IsFloating() bool  { return t.forward(Type.IsFloating) }
func (t *TypeRef) IsEnum() bool      { return t.forward(Type.IsEnum) }
func (t *TypeRef) IsPrimitive() bool { return t.forward(Type.IsPrimitive) }

// LiteralKind distinguishes the numeric literal families.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitUint
	LitFloat
)

func (k LiteralKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitUint:
		return "uint"
	case LitFloat:
		return "float"
	default:
		return fmt.Sprintf("LiteralKind(%d)", k)
	}
}

// LiteralType is the provisional type of a numeric literal. It is unresolved
// until a committing equality binds it; Preferred is the default used when
// nothing else constrains it.
type LiteralType struct {
	typeBase
	Kind      LiteralKind
	Text      string
	Preferred Type
	Resolved  Type
}

func (t *LiteralType) String() string {
	if t.Resolved != nil {
		return t.Resolved.String()
	}
	return fmt.Sprintf("%s literal %s", t.Kind, t.Text)
}

// Accepts reports whether the literal may take the concrete type t.
func (t *LiteralType) Accepts(target Type) bool {
	u := UnifyNode(target)
	if _, ok := u.(*PrimitiveType); !ok {
		return false
	}
	switch t.Kind {
	case LitInt:
		return u.IsNumber()
	case LitUint:
		return u.IsInt() && !u.IsSigned()
	case LitFloat:
		return u.IsFloating()
	}
	return false
}

func (t *LiteralType) IsNumber() bool {
	if t.Resolved != nil {
		return t.Resolved.IsNumber()
	}
	return true
}

func (t *LiteralType) IsInt() bool {
	if t.Resolved != nil {
		return t.Resolved.IsInt()
	}
	return t.Kind != LitFloat
}

func (t *LiteralType) IsSigned() bool {
	if t.Resolved != nil {
		return t.Resolved.IsSigned()
	}
	return t.Kind != LitUint
}

func (t *LiteralType) IsFloating() bool {
	if t.Resolved != nil {
		return t.Resolved.IsFloating()
	}
	return t.Kind == LitFloat
}

func (t *LiteralType) IsPrimitive() bool { return true }

// NullType is the type of the null literal; it unifies with any reference.
type NullType struct {
	typeBase
	Resolved Type
}

func (t *NullType) String() string {
	if t.Resolved != nil {
		return t.Resolved.String()
	}
	return "null"
}

func (t *NullType) IsPtr() bool      { return t.Resolved != nil && t.Resolved.IsPtr() }
func (t *NullType) IsArrayRef() bool { return t.Resolved != nil && t.Resolved.IsArrayRef() }
func (t *NullType) IsRef() bool      { return true }

// UnifyNode strips the indirections that never participate in equality:
// references without type arguments, non-generic typedefs and committed
// literal and null types.
func UnifyNode(t Type) Type {
	for {
		switch v := t.(type) {
		case *TypeRef:
			if len(v.TypeArguments) != 0 || v.Type == nil {
				return t
			}
			t = v.Type
		case *TypeDef:
			if len(v.TypeParameters) != 0 {
				return t
			}
			t = v.Type
		case *LiteralType:
			if v.Resolved == nil {
				return t
			}
			t = v.Resolved
		case *NullType:
			if v.Resolved == nil {
				return t
			}
			t = v.Resolved
		default:
			return t
		}
	}
}

// ArrayRefTypeOf is the thread-space array reference over t.
func ArrayRefTypeOf(t Type) *ArrayRefType {
	return &ArrayRefType{typeBase: typeBase{Origin: At(t.Pos())}, Space: Thread, Elem: t}
}

func typeParamsString(params []TypeParameter) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.ParamName())
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
