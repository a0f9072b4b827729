package sema

import (
	"whlsl/internal/ast"
	"whlsl/internal/types"
)

// ArrayLengthFuncName is the native that reports the length of a fixed array.
const ArrayLengthFuncName = "operator.length"

// ArrayLength is the behavior attached to a synthesized operator.length.
type ArrayLength struct {
	Length uint32
}

// SynthesizeArrayLength adds a native operator.length for every fixed array
// type mentioned in prog that no existing native already covers, and
// returns how many were added. Lengths that are not literals after folding
// are skipped.
func SynthesizeArrayLength(prog *ast.Program, in *types.Intrinsics) int {
	var arrays []*ast.ArrayType
	for _, stmt := range prog.TopLevelStatements {
		ast.Inspect(stmt, func(n ast.Node) bool {
			if at, ok := n.(*ast.ArrayType); ok {
				arrays = append(arrays, at)
			}
			return true
		})
	}

	added := 0
	for _, at := range arrays {
		if !ast.IsConstexpr(at.Length) {
			if folded, ok, err := fold(at.Length); ok && err == nil {
				at.Length = folded
			}
		}
		n, ok := at.NumElements()
		if !ok {
			continue
		}
		if hasNative(prog.OverloadSet(ArrayLengthFuncName), at, in.Uint) {
			continue
		}
		nf := &ast.NativeFunc{
			FuncBase: ast.FuncBase{
				Origin:     at.Origin,
				Name:       ArrayLengthFuncName,
				ReturnType: in.Uint,
				Parameters: []*ast.FuncParameter{{Origin: at.Origin, Name: "array", Type: at}},
			},
			Behavior: ArrayLength{Length: n},
		}
		prog.Add(nf)
		added++
	}
	return added
}
