package types

import "whlsl/internal/ast"

func param(name string, t ast.Type) *ast.FuncParameter {
	return &ast.FuncParameter{Name: name, Type: t}
}

func native(name string, ret ast.Type, tps []ast.TypeParameter, params ...ast.Type) *ast.NativeFunc {
	f := &ast.NativeFunc{FuncBase: ast.FuncBase{Name: name, ReturnType: ret, TypeParameters: tps}}
	for i, p := range params {
		f.Parameters = append(f.Parameters, param(string(rune('a'+i)), p))
	}
	return f
}

func intLit(in *Intrinsics, v int32) *ast.IntLiteral {
	lit := ast.NewIntLiteral(ast.Origin{}, v)
	ast.LiteralTypeOf(lit).Preferred = in.Int
	return lit
}

func floatLit(in *Intrinsics, v float32) *ast.FloatLiteral {
	lit := ast.NewFloatLiteral(ast.Origin{}, v)
	ast.LiteralTypeOf(lit).Preferred = in.Float
	return lit
}
