package ast

import (
	"fmt"
	"strings"
)

// NodeString renders a type or expression for diagnostics.
func NodeString(n Node) string {
	switch v := n.(type) {
	case nil:
		return "<nil>"
	case Type:
		return v.String()
	case Expr:
		return ExprString(v)
	case TypeParameter:
		return v.ParamName()
	case Func:
		return v.Base().Signature()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%T", n)
	}
}

// ExprString renders an expression in source-like syntax.
func ExprString(e Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e Expr) {
	if isNil(e) {
		sb.WriteString("<nil>")
		return
	}
	switch v := e.(type) {
	case *IntLiteral:
		fmt.Fprint(sb, v.Value)
	case *UintLiteral:
		fmt.Fprintf(sb, "%du", v.Value)
	case *FloatLiteral:
		fmt.Fprintf(sb, "%gf", v.Value)
	case *BoolLiteral:
		fmt.Fprint(sb, v.Value)
	case *NullLiteral:
		sb.WriteString("null")
	case *VariableRef:
		sb.WriteString(v.Name)
	case *Assignment:
		writeExpr(sb, v.LHS)
		sb.WriteString(" = ")
		writeExpr(sb, v.RHS)
	case *DereferenceExpression:
		sb.WriteString("*(")
		writeExpr(sb, v.Ptr)
		sb.WriteByte(')')
	case *MakePtrExpression:
		sb.WriteString("&(")
		writeExpr(sb, v.LValue)
		sb.WriteByte(')')
	case *MakeArrayRefExpression:
		sb.WriteString("@(")
		writeExpr(sb, v.LValue)
		sb.WriteByte(')')
	case *DotExpression:
		writeExpr(sb, v.Struct)
		sb.WriteByte('.')
		sb.WriteString(v.FieldName)
	case *CallExpression:
		sb.WriteString(v.Name)
		if len(v.TypeArguments) > 0 {
			sb.WriteByte('<')
			for i, a := range v.TypeArguments {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(NodeString(a))
			}
			sb.WriteByte('>')
		}
		sb.WriteByte('(')
		for i, a := range v.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, a)
		}
		sb.WriteByte(')')
	case *LogicalNot:
		sb.WriteString("!(")
		writeExpr(sb, v.Operand)
		sb.WriteByte(')')
	case *LogicalExpression:
		sb.WriteByte('(')
		writeExpr(sb, v.Left)
		fmt.Fprintf(sb, " %s ", v.Op)
		writeExpr(sb, v.Right)
		sb.WriteByte(')')
	case *CommaExpression:
		sb.WriteByte('(')
		for i, x := range v.List {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, x)
		}
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "%T", e)
	}
}
