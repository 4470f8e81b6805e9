package ast

import "github.com/tangzhangming/vbc/internal/diag"

// Stmt 语句
type Stmt interface {
	Node
	stmtNode()
}

type StmtBase struct {
	Loc diag.Location
}

func (s *StmtBase) Pos() diag.Location { return s.Loc }
func (*StmtBase) stmtNode()            {}

// StmtAt 带位置的语句基础
func StmtAt(loc diag.Location) StmtBase { return StmtBase{Loc: loc} }

// LocalDecl Dim/Const 局部声明
type LocalDecl struct {
	StmtBase
	Const bool
	Vars  []*VarDecl
}

// Assign X = Y、X += Y 等
type Assign struct {
	StmtBase
	Target Expr
	// Op 复合赋值的运算符，简单赋值时 Compound 为 false
	Op       BinOp
	Compound bool
	Value    Expr
}

// ExprStmt 调用语句
type ExprStmt struct {
	StmtBase
	X Expr
}

// If If ... Then ... ElseIf ... Else ... End If
type If struct {
	StmtBase
	Cond    Expr
	Then    []Stmt
	ElseIfs []*ElseIf
	Else    []Stmt
}

// ElseIf ElseIf 分支
type ElseIf struct {
	Loc  diag.Location
	Cond Expr
	Body []Stmt
}

// While While ... End While
type While struct {
	StmtBase
	Cond Expr
	Body []Stmt
}

// DoLoop Do [While|Until cond] ... Loop [While|Until cond]
type DoLoop struct {
	StmtBase
	Cond Expr
	// Until 条件取反
	Until bool
	// PostTest 条件写在 Loop 之后
	PostTest bool
	Body     []Stmt
}

// For For v [As T] = from To to [Step s] ... Next [v]
type For struct {
	StmtBase
	Var     *VarDecl
	Counter Expr
	From    Expr
	To      Expr
	Step    Expr
	Body    []Stmt
}

// Return Return [expr]
type Return struct {
	StmtBase
	Value Expr
}

// Exit Exit Sub/Function/For/While/Do
type Exit struct {
	StmtBase
	Kind string
}

// Throw Throw expr
type Throw struct {
	StmtBase
	Value Expr
}
