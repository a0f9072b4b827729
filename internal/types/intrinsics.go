package types

import (
	"fmt"

	"whlsl/internal/ast"
)

// Intrinsics stores the built-in named types of the language.
type Intrinsics struct {
	Void  *ast.PrimitiveType
	Bool  *ast.PrimitiveType
	Int   *ast.PrimitiveType
	Uint  *ast.PrimitiveType
	Uchar *ast.PrimitiveType
	Float *ast.PrimitiveType
	Half  *ast.PrimitiveType

	byName   map[string]ast.NamedType
	vecOrder []*ast.VectorType
	vectors  map[vectorKey]*ast.VectorType
	matrices map[matrixKey]*ast.MatrixType
}

type vectorKey struct {
	elem *ast.PrimitiveType
	size uint32
}

type matrixKey struct {
	elem       *ast.PrimitiveType
	rows, cols uint32
}

// NewIntrinsics constructs the registry seeded with the primitives, every
// vector of bool/int/uint/float/half of size 2..4 and every float/half matrix
// of 2..4 rows and columns.
func NewIntrinsics() *Intrinsics {
	in := &Intrinsics{
		byName:   make(map[string]ast.NamedType, 96),
		vectors:  make(map[vectorKey]*ast.VectorType, 16),
		matrices: make(map[matrixKey]*ast.MatrixType, 18),
	}
	in.Void = in.primitive("void", ast.PrimVoid)
	in.Bool = in.primitive("bool", ast.PrimBool)
	in.Int = in.primitive("int", ast.PrimInt)
	in.Uint = in.primitive("uint", ast.PrimUint)
	in.Uchar = in.primitive("uchar", ast.PrimUchar)
	in.Float = in.primitive("float", ast.PrimFloat)
	in.Half = in.primitive("half", ast.PrimHalf)
	in.byName["int32"] = in.Int
	in.byName["uint32"] = in.Uint
	in.byName["uint8"] = in.Uchar

	for _, elem := range []*ast.PrimitiveType{in.Bool, in.Int, in.Uint, in.Float, in.Half} {
		for size := uint32(2); size <= 4; size++ {
			v := &ast.VectorType{Name: fmt.Sprintf("%s%d", elem.Name, size), Elem: elem, Size: size}
			in.vectors[vectorKey{elem, size}] = v
			in.vecOrder = append(in.vecOrder, v)
			in.byName[v.Name] = v
			in.byName[fmt.Sprintf("vector<%s, %d>", elem.Name, size)] = v
		}
	}
	for _, elem := range []*ast.PrimitiveType{in.Float, in.Half} {
		for rows := uint32(2); rows <= 4; rows++ {
			for cols := uint32(2); cols <= 4; cols++ {
				m := &ast.MatrixType{Name: fmt.Sprintf("%s%dx%d", elem.Name, rows, cols), Elem: elem, Rows: rows, Cols: cols}
				in.matrices[matrixKey{elem, rows, cols}] = m
				in.byName[m.Name] = m
				in.byName[fmt.Sprintf("matrix<%s, %d, %d>", elem.Name, rows, cols)] = m
			}
		}
	}
	return in
}

func (in *Intrinsics) primitive(name string, kind ast.PrimitiveKind) *ast.PrimitiveType {
	t := &ast.PrimitiveType{Name: name, Kind: kind}
	in.byName[name] = t
	return t
}

// Lookup finds a built-in type by any of its spellings.
func (in *Intrinsics) Lookup(name string) (ast.NamedType, bool) {
	t, ok := in.byName[name]
	return t, ok
}

// Vector returns the registered vector type, or nil.
func (in *Intrinsics) Vector(elem *ast.PrimitiveType, size uint32) *ast.VectorType {
	return in.vectors[vectorKey{elem, size}]
}

// Vectors lists the registered vector types by element type, then size.
func (in *Intrinsics) Vectors() []*ast.VectorType {
	return append([]*ast.VectorType(nil), in.vecOrder...)
}

// Matrix returns the registered matrix type, or nil.
func (in *Intrinsics) Matrix(elem *ast.PrimitiveType, rows, cols uint32) *ast.MatrixType {
	return in.matrices[matrixKey{elem, rows, cols}]
}

// Preferred is the type a literal of the given kind defaults to.
func (in *Intrinsics) Preferred(kind ast.LiteralKind) ast.Type {
	switch kind {
	case ast.LitUint:
		return in.Uint
	case ast.LitFloat:
		return in.Float
	default:
		return in.Int
	}
}

// Names lists every registered spelling; used by the loader's diagnostics.
func (in *Intrinsics) Names() []string {
	out := make([]string, 0, len(in.byName))
	for name := range in.byName {
		out = append(out, name)
	}
	return out
}
