package ast

// Stmt is the closed set of statements.
type Stmt interface {
	Node
	isStmt()
}

type stmtBase struct {
	Origin
}

func (stmtBase) isStmt() {}

type Block struct {
	stmtBase
	Statements []Stmt
}

// VariableDecl declares a local; VariableRefs bind to it.
type VariableDecl struct {
	stmtBase
	Name        string
	Type        Type
	Initializer Expr
}

type Return struct {
	stmtBase
	Value Expr
}

type IfStatement struct {
	stmtBase
	Condition Expr
	Body      Stmt
	Else      Stmt
}

type WhileLoop struct {
	stmtBase
	Condition Expr
	Body      Stmt
}

type DoWhileLoop struct {
	stmtBase
	Body      Stmt
	Condition Expr
}

// ForLoop fields are all optional except Body.
type ForLoop struct {
	stmtBase
	Init      Stmt
	Condition Expr
	Increment Expr
	Body      Stmt
}

type ExprStatement struct {
	stmtBase
	Expr Expr
}

type Break struct{ stmtBase }

type Continue struct{ stmtBase }

type Trap struct{ stmtBase }
