package ast

import "fmt"

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// node with w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(n Node) (w Visitor)
}

// Walk traverses n depth-first in declaration order. Resolved references
// (TypeRef.Type, VariableRef.Decl, CallExpression.Func) are not followed,
// so the traversal terminates on recursive programs.
func Walk(v Visitor, n Node) {
	if v = v.Visit(n); v == nil {
		return
	}

	switch n := n.(type) {
	case *Program:
		for _, s := range n.TopLevelStatements {
			Walk(v, s)
		}

	// Functions
	case *FuncDef:
		walkFuncBase(v, &n.FuncBase)
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *NativeFunc:
		walkFuncBase(v, &n.FuncBase)
	case *NativeFuncInstance:
		walkFuncBase(v, &n.FuncBase)
	case *ProtocolFuncDecl:
		walkFuncBase(v, &n.FuncBase)
	case *FuncParameter:
		walkOpt(v, n.Type)
		walkOpt(v, n.Semantic)
	case *ProtocolDecl:
		for _, e := range n.Extends {
			Walk(v, e)
		}
		for _, s := range n.Signatures {
			Walk(v, s)
		}
	case *ProtocolRef:
		// leaf

	// Types
	case *PrimitiveType, *VectorType, *MatrixType, *LiteralType, *NullType:
		// leaf
	case *NativeType:
		walkTypeParams(v, n.TypeParameters)
	case *PtrType:
		Walk(v, n.Elem)
	case *ArrayRefType:
		Walk(v, n.Elem)
	case *ArrayType:
		Walk(v, n.Elem)
		walkOpt(v, n.Length)
	case *StructType:
		walkTypeParams(v, n.TypeParameters)
		for _, f := range n.Fields {
			Walk(v, f)
		}
	case *Field:
		walkOpt(v, n.Type)
		walkOpt(v, n.Semantic)
	case *EnumType:
		walkOpt(v, n.Base)
		for _, m := range n.Members {
			Walk(v, m)
		}
	case *EnumMember:
		walkOpt(v, n.Value)
	case *TypeDef:
		walkTypeParams(v, n.TypeParameters)
		walkOpt(v, n.Type)
	case *TypeVariable:
		if n.Protocol != nil {
			Walk(v, n.Protocol)
		}
	case *ConstexprTypeParameter:
		walkOpt(v, n.Type)
	case *TypeRef:
		for _, a := range n.TypeArguments {
			Walk(v, a)
		}

	// Semantics
	case *BuiltInSemantic, *StageInOutSemantic, *ResourceSemantic, *SpecializationConstantSemantic:
		// leaf

	// Statements
	case *Block:
		for _, s := range n.Statements {
			Walk(v, s)
		}
	case *VariableDecl:
		walkOpt(v, n.Type)
		walkOpt(v, n.Initializer)
	case *Return:
		walkOpt(v, n.Value)
	case *IfStatement:
		Walk(v, n.Condition)
		Walk(v, n.Body)
		walkOpt(v, n.Else)
	case *WhileLoop:
		Walk(v, n.Condition)
		Walk(v, n.Body)
	case *DoWhileLoop:
		Walk(v, n.Body)
		Walk(v, n.Condition)
	case *ForLoop:
		walkOpt(v, n.Init)
		walkOpt(v, n.Condition)
		walkOpt(v, n.Increment)
		Walk(v, n.Body)
	case *ExprStatement:
		Walk(v, n.Expr)
	case *Break, *Continue, *Trap:
		// leaf

	// Expressions
	case *IntLiteral, *UintLiteral, *FloatLiteral, *BoolLiteral, *NullLiteral, *VariableRef:
		// leaf
	case *Assignment:
		Walk(v, n.LHS)
		Walk(v, n.RHS)
	case *DereferenceExpression:
		Walk(v, n.Ptr)
	case *MakePtrExpression:
		Walk(v, n.LValue)
	case *MakeArrayRefExpression:
		Walk(v, n.LValue)
	case *DotExpression:
		Walk(v, n.Struct)
	case *CallExpression:
		for _, a := range n.TypeArguments {
			Walk(v, a)
		}
		for _, a := range n.Args {
			Walk(v, a)
		}
		walkOpt(v, n.ReturnType)
	case *LogicalNot:
		Walk(v, n.Operand)
	case *LogicalExpression:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *CommaExpression:
		for _, e := range n.List {
			Walk(v, e)
		}

	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

func walkFuncBase(v Visitor, f *FuncBase) {
	walkOpt(v, f.ReturnType)
	walkTypeParams(v, f.TypeParameters)
	for _, p := range f.Parameters {
		Walk(v, p)
	}
	walkOpt(v, f.Semantic)
}

func walkTypeParams(v Visitor, params []TypeParameter) {
	for _, p := range params {
		Walk(v, p)
	}
}

// walkOpt skips absent optional children, including typed nils.
func walkOpt[T Node](v Visitor, n T) {
	if isNil(n) {
		return
	}
	Walk(v, n)
}

type inspector func(Node) bool

func (f inspector) Visit(n Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect traverses n in declaration order, calling f(n) for each node and
// f(nil) after the children. If f returns false the children are skipped.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}
