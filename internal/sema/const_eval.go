package sema

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"whlsl/internal/ast"
)

// constValue is an integer constant widened for folding.
type constValue struct {
	v        int64
	unsigned bool
}

var errDivByZero = errors.New("division by zero in constant expression")

// fold evaluates an integer constant expression built from literals and the
// operators + - * / % (and unary -), and returns it as a single literal.
// ok is false when e is not such an expression.
func fold(e ast.Expr) (ast.Expr, bool, error) {
	cv, ok, err := evalConst(e)
	if err != nil || !ok {
		return nil, ok, err
	}
	o := ast.At(e.Pos())
	if cv.unsigned {
		n, err := narrowUint(cv.v)
		if err != nil {
			return nil, false, err
		}
		return ast.NewUintLiteral(o, n), true, nil
	}
	n, err := narrowInt(cv.v)
	if err != nil {
		return nil, false, err
	}
	return ast.NewIntLiteral(o, n), true, nil
}

func evalConst(e ast.Expr) (constValue, bool, error) {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return constValue{v: int64(v.Value)}, true, nil
	case *ast.UintLiteral:
		return constValue{v: int64(v.Value), unsigned: true}, true, nil
	case *ast.CallExpression:
		if len(v.TypeArguments) != 0 {
			return constValue{}, false, nil
		}
		switch len(v.Args) {
		case 1:
			if v.Name != "operator-" {
				return constValue{}, false, nil
			}
			x, ok, err := evalConst(v.Args[0])
			if err != nil || !ok {
				return x, ok, err
			}
			if x.unsigned {
				return constValue{}, false, fmt.Errorf("negation of unsigned constant %d", x.v)
			}
			return narrowed(constValue{v: -x.v})
		case 2:
			op, ok := foldOps[v.Name]
			if !ok {
				return constValue{}, false, nil
			}
			a, ok, err := evalConst(v.Args[0])
			if err != nil || !ok {
				return a, ok, err
			}
			b, ok, err := evalConst(v.Args[1])
			if err != nil || !ok {
				return b, ok, err
			}
			if a.unsigned != b.unsigned {
				return constValue{}, false, fmt.Errorf("%s mixes signed and unsigned constants", v.Name)
			}
			r, err := op(a.v, b.v)
			if err != nil {
				return constValue{}, false, err
			}
			return narrowed(constValue{v: r, unsigned: a.unsigned})
		}
	}
	return constValue{}, false, nil
}

var foldOps = map[string]func(a, b int64) (int64, error){
	"operator+": func(a, b int64) (int64, error) { return a + b, nil },
	"operator-": func(a, b int64) (int64, error) { return a - b, nil },
	"operator*": func(a, b int64) (int64, error) {
		r := a * b
		if a != 0 && r/a != b {
			return 0, fmt.Errorf("constant %d * %d overflows", a, b)
		}
		return r, nil
	},
	"operator/": func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errDivByZero
		}
		return a / b, nil
	},
	"operator%": func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errDivByZero
		}
		return a % b, nil
	},
}

// narrowed keeps every intermediate result within the range of its
// literal type, so overflow is reported where it happens.
func narrowed(c constValue) (constValue, bool, error) {
	var err error
	if c.unsigned {
		_, err = narrowUint(c.v)
	} else {
		_, err = narrowInt(c.v)
	}
	if err != nil {
		return constValue{}, false, err
	}
	return c, true, nil
}

func narrowInt(v int64) (int32, error) {
	n, err := safecast.Conv[int32](v)
	if err != nil {
		return 0, fmt.Errorf("constant %d does not fit in int: %w", v, err)
	}
	return n, nil
}

func narrowUint(v int64) (uint32, error) {
	n, err := safecast.Conv[uint32](v)
	if err != nil {
		return 0, fmt.Errorf("constant %d does not fit in uint: %w", v, err)
	}
	return n, nil
}

// constInt reads an integer literal.
func constInt(e ast.Expr) (int64, bool) {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return int64(v.Value), true
	case *ast.UintLiteral:
		return int64(v.Value), true
	}
	return 0, false
}
