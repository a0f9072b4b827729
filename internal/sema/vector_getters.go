package sema

import (
	"whlsl/internal/ast"
	"whlsl/internal/types"
)

// GetterFuncPrefix names the natives that read a component: operator.x.
const GetterFuncPrefix = "operator."

var vectorComponents = [...]string{"x", "y", "z", "w"}

// VectorComponent is the behavior attached to a synthesized vector getter.
type VectorComponent struct {
	Index uint32
}

// SynthesizeVectorGetters adds native operator.x/y/z/w getters for every
// built-in vector type, up to the vector's size, skipping getters the
// program already declares. It returns how many were added.
func SynthesizeVectorGetters(prog *ast.Program, in *types.Intrinsics) int {
	added := 0
	for _, vec := range in.Vectors() {
		for i := uint32(0); i < vec.Size; i++ {
			name := GetterFuncPrefix + vectorComponents[i]
			if hasNative(prog.OverloadSet(name), vec, vec.Elem) {
				continue
			}
			prog.Add(&ast.NativeFunc{
				FuncBase: ast.FuncBase{
					Name:       name,
					ReturnType: vec.Elem,
					Parameters: []*ast.FuncParameter{{Name: "vector", Type: vec}},
				},
				Behavior: VectorComponent{Index: i},
			})
			added++
		}
	}
	return added
}

// hasNative reports whether a native in set already accepts arg and
// returns ret.
func hasNative(set []ast.Func, arg, ret ast.Type) bool {
	var natives []ast.Func
	for _, fn := range set {
		if _, ok := fn.(*ast.NativeFunc); ok {
			natives = append(natives, fn)
		}
	}
	return types.ResolveOverload(natives, nil, []ast.Type{arg}, ret).Func != nil
}
