package sema

import (
	"whlsl/internal/ast"
	"whlsl/internal/diag"
	"whlsl/internal/source"
	"whlsl/internal/types"
)

func (tc *typeChecker) block(e *env, b *ast.Block) error {
	for _, s := range b.Statements {
		if err := tc.stmt(e, s); err != nil {
			return err
		}
	}
	return nil
}

func (tc *typeChecker) stmt(e *env, s ast.Stmt) error {
	if s == nil {
		return nil
	}
	if err := tc.enter(s); err != nil {
		return err
	}
	defer tc.leave()

	switch v := s.(type) {
	case *ast.Block:
		return tc.block(e, v)
	case *ast.VariableDecl:
		return tc.variableDecl(e, v)
	case *ast.Return:
		return tc.returnStmt(e, v)
	case *ast.IfStatement:
		if err := tc.requireBool(e, v.Condition); err != nil {
			return err
		}
		if err := tc.stmt(e, v.Body); err != nil {
			return err
		}
		return tc.stmt(e, v.Else)
	case *ast.WhileLoop:
		if err := tc.requireBool(e, v.Condition); err != nil {
			return err
		}
		return tc.stmt(e, v.Body)
	case *ast.DoWhileLoop:
		if err := tc.stmt(e, v.Body); err != nil {
			return err
		}
		return tc.requireBool(e, v.Condition)
	case *ast.ForLoop:
		if err := tc.stmt(e, v.Init); err != nil {
			return err
		}
		if v.Condition != nil {
			if err := tc.requireBool(e, v.Condition); err != nil {
				return err
			}
		}
		if v.Increment != nil {
			if _, err := tc.expr(e, v.Increment); err != nil {
				return err
			}
		}
		return tc.stmt(e, v.Body)
	case *ast.ExprStatement:
		_, err := tc.expr(e, v.Expr)
		return err
	case *ast.Break, *ast.Continue, *ast.Trap:
		return nil
	default:
		return internalErrorf(diag.InternalError, s.Pos(), "unexpected statement %T", s)
	}
}

func (tc *typeChecker) variableDecl(e *env, v *ast.VariableDecl) error {
	if v.Type == nil {
		return internalErrorf(diag.InternalMissingType, v.Pos(), "variable %s has no type", v.Name)
	}
	if err := tc.typ(e, v.Type); err != nil {
		return err
	}
	if v.Initializer == nil {
		return nil
	}
	rhs, err := tc.expr(e, v.Initializer)
	if err != nil {
		return err
	}
	if !types.EqualsWithCommit(v.Type, rhs) {
		return typeErrorf(diag.TypeInitMismatch, v.Pos(), "type mismatch in variable initialization: %s versus %s", v.Type, rhs)
	}
	return nil
}

func (tc *typeChecker) returnStmt(e *env, r *ast.Return) error {
	if e.fn == nil {
		return internalErrorf(diag.InternalError, r.Pos(), "return outside of a function")
	}
	if r.Value != nil {
		t, err := tc.expr(e, r.Value)
		if err != nil {
			return err
		}
		if !types.EqualsWithCommit(e.fn.ReturnType, t) {
			return typeErrorf(diag.TypeReturnMismatch, r.Pos(), "trying to return %s in a function that returns %s", t, e.fn.ReturnType)
		}
		return nil
	}
	if !types.EqualsWithCommit(e.fn.ReturnType, tc.in.Void) {
		return typeErrorf(diag.TypeMissingReturnValue, r.Pos(), "non-void function %s must return a value of type %s", e.fn.Name, e.fn.ReturnType)
	}
	return nil
}

func (tc *typeChecker) requireBool(e *env, cond ast.Expr) error {
	if cond == nil {
		return internalErrorf(diag.InternalError, source.Span{}, "missing condition")
	}
	t, err := tc.expr(e, cond)
	if err != nil {
		return err
	}
	if !types.Equals(t, tc.in.Bool) {
		return typeErrorf(diag.TypeConditionNotBool, cond.Pos(), "expression isn't a bool: %s has type %s", ast.ExprString(cond), t)
	}
	return nil
}
