package ast

import (
	"strings"
)

// Func is the closed set of callable declarations.
type Func interface {
	Node
	Base() *FuncBase
	isFunc()
}

// FuncParameter is a value parameter; VariableRefs bind to it.
type FuncParameter struct {
	Origin
	Name     string
	Type     Type
	Semantic Semantic
}

// Instance is one entry of a generic function's monomorphization cache.
type Instance struct {
	TypeArguments []Node
	Func          Func
}

// FuncBase carries the signature shared by every Func variant.
type FuncBase struct {
	Origin
	Name           string
	ReturnType     Type
	TypeParameters []TypeParameter
	Parameters     []*FuncParameter
	Shader         ShaderStage
	Semantic       Semantic
	IsCast         bool

	// Instances is append-only and ordered by first request.
	Instances []Instance
}

func (f *FuncBase) Base() *FuncBase { return f }
func (f *FuncBase) isFunc()         {}

// IsGeneric reports whether the function declares type parameters.
func (f *FuncBase) IsGeneric() bool { return len(f.TypeParameters) != 0 }

// ParameterTypes lists the declared value-parameter types.
func (f *FuncBase) ParameterTypes() []Type {
	out := make([]Type, len(f.Parameters))
	for i, p := range f.Parameters {
		out[i] = p.Type
	}
	return out
}

// Signature renders "ret name<T>(a, b)".
func (f *FuncBase) Signature() string {
	var sb strings.Builder
	if f.Shader != StageNone {
		sb.WriteString(f.Shader.String())
		sb.WriteByte(' ')
	}
	if f.IsCast {
		sb.WriteString("operator ")
	}
	if f.ReturnType != nil {
		sb.WriteString(f.ReturnType.String())
		sb.WriteByte(' ')
	}
	if !f.IsCast {
		sb.WriteString(f.Name)
	}
	sb.WriteString(typeParamsString(f.TypeParameters))
	sb.WriteByte('(')
	for i, p := range f.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Type.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// FuncDef is a function with a body.
type FuncDef struct {
	FuncBase
	Body *Block
}

// NativeFunc is a function implemented by the runtime. Behavior is opaque to
// the checker and is handed to whatever executes the program.
type NativeFunc struct {
	FuncBase
	Behavior any
}

// NativeFuncInstance is a monomorphic copy of a generic native function's
// signature; it delegates its behavior to the original.
type NativeFuncInstance struct {
	FuncBase
	Func *NativeFunc
}

// Behavior returns the original native's behavior.
func (f *NativeFuncInstance) Behavior() any { return f.Func.Behavior }

// ProtocolFuncDecl is a signature required by a protocol. PossibleOverloads
// is filled by name resolution with the global overload set of that name.
type ProtocolFuncDecl struct {
	FuncBase
	Protocol          *ProtocolDecl
	PossibleOverloads []Func
}

// ProtocolRef is a use of a protocol name.
type ProtocolRef struct {
	Origin
	Name string
	Decl *ProtocolDecl
}

// ProtocolDecl declares a set of signatures over one type variable.
type ProtocolDecl struct {
	Origin
	Name         string
	TypeVariable *TypeVariable
	Signatures   []*ProtocolFuncDecl
	Extends      []*ProtocolRef
}
