package ast

import (
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/types"
)

// Ident 标识符引用
type Ident struct {
	ExprBase
	Name string
	// Sym 绑定后的 *Local、*types.Field 或 *types.Parameter
	Sym any
}

// MemberAccess X.Name
type MemberAccess struct {
	ExprBase
	X    Expr
	Name string
	Sym  any
}

// GenericName F(Of T, U)
type GenericName struct {
	ExprBase
	X        Expr
	TypeArgs []TypeExpr
}

// Invoke 调用或索引 X(args)
type Invoke struct {
	ExprBase
	Fn   Expr
	Args []Expr
	// Method 绑定后选中的方法
	Method *types.Method
}

// BinOp 二元运算符
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	IntDiv
	Mod
	Pow
	Concat
	And
	Or
	Xor
	AndAlso
	OrElse
	Shl
	Shr
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Is
	IsNot
)

var binOpNames = [...]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", IntDiv: "\\", Mod: "Mod", Pow: "^",
	Concat: "&", And: "And", Or: "Or", Xor: "Xor", AndAlso: "AndAlso",
	OrElse: "OrElse", Shl: "<<", Shr: ">>", Eq: "=", Ne: "<>", Lt: "<",
	Le: "<=", Gt: ">", Ge: ">=", Is: "Is", IsNot: "IsNot",
}

func (op BinOp) String() string { return binOpNames[op] }

// FoldOp 对应的常量折叠运算符，短路和引用比较运算没有对应
func (op BinOp) FoldOp() (constant.Op, bool) {
	switch op {
	case Add:
		return constant.OpAdd, true
	case Sub:
		return constant.OpSub, true
	case Mul:
		return constant.OpMul, true
	case Div:
		return constant.OpDiv, true
	case IntDiv:
		return constant.OpIntDiv, true
	case Mod:
		return constant.OpMod, true
	case Pow:
		return constant.OpPow, true
	case Concat:
		return constant.OpConcat, true
	case And, AndAlso:
		return constant.OpAnd, true
	case Or, OrElse:
		return constant.OpOr, true
	case Xor:
		return constant.OpXor, true
	case Shl:
		return constant.OpShl, true
	case Shr:
		return constant.OpShr, true
	case Eq:
		return constant.OpEq, true
	case Ne:
		return constant.OpNe, true
	case Lt:
		return constant.OpLt, true
	case Le:
		return constant.OpLe, true
	case Gt:
		return constant.OpGt, true
	case Ge:
		return constant.OpGe, true
	}
	return 0, false
}

// Binary X op Y
type Binary struct {
	ExprBase
	Op   BinOp
	X, Y Expr
}

// UnOp 一元运算符
type UnOp int

const (
	Neg UnOp = iota
	Plus
	Not
)

func (op UnOp) String() string {
	switch op {
	case Neg:
		return "-"
	case Plus:
		return "+"
	}
	return "Not"
}

// Unary op X
type Unary struct {
	ExprBase
	Op UnOp
	X  Expr
}

// Paren (X)
type Paren struct {
	ExprBase
	X Expr
}

// NewObject New T(args)
type NewObject struct {
	ExprBase
	TypeRef TypeExpr
	Args    []Expr
}

// CastKind 转换表达式的形式
type CastKind int

const (
	CType CastKind = iota
	DirectCast
	TryCast
	// Intrinsic CBool、CInt 等内建转换函数
	Intrinsic
)

// Cast CType(X, T) / DirectCast / TryCast / CInt(X)
type Cast struct {
	ExprBase
	Kind    CastKind
	X       Expr
	TypeRef TypeExpr
	// Name 内建转换函数名（Intrinsic）
	Name string
}

// AddressOf AddressOf X
type AddressOf struct {
	ExprBase
	X Expr
}

// TypeOfIs TypeOf X Is T
type TypeOfIs struct {
	ExprBase
	X       Expr
	TypeRef TypeExpr
}

// GetType GetType(T)
type GetType struct {
	ExprBase
	TypeRef TypeExpr
}

// Me 当前实例
type Me struct {
	ExprBase
}

// MyBase 基类实例
type MyBase struct {
	ExprBase
}

// NothingLit Nothing
type NothingLit struct {
	ExprBase
}

// Lambda Function(params) expr，匿名方法
type Lambda struct {
	ExprBase
	Params []*ParamDecl
	Body   Expr
}

// TypeValue 在表达式位置出现的类型名
type TypeValue struct {
	ExprBase
	Target types.Type
}

// MethodGroup 同名方法集合，AddressOf 或调用的目标
type MethodGroup struct {
	ExprBase
	Receiver Expr
	Methods  []*types.Method
	TypeArgs []types.Type
}

// Local 局部变量或局部常量
type Local struct {
	Name  string
	Type  types.Type
	Const bool
	Value constant.Value
	Decl  *VarDecl
}
