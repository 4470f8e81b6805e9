package ast

import (
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/types"
)

// ConvKind 转换包装节点的种类
type ConvKind int

const (
	// ConvIdentity 不需要运行时操作的转换（引用拓宽、相同表示）
	ConvIdentity ConvKind = iota
	ConvNumeric
	ConvBox
	ConvUnbox
	ConvEnum
	ConvReference // 需要运行时类型检查的引用收窄
	ConvTryCast
	ConvNullableWrap
	ConvNullableUnwrap
	ConvPointer
	ConvBoolean // Boolean 与数值之间
	ConvString  // String 与基元类型、Char() 之间
)

var convKindNames = [...]string{
	"identity", "numeric", "box", "unbox", "enum", "reference", "trycast",
	"nullable-wrap", "nullable-unwrap", "pointer", "boolean", "string",
}

func (k ConvKind) String() string { return convKindNames[k] }

// NumOp 数值转换指令，按目标类型和源是否无符号区分
type NumOp int

const (
	OpNone NumOp = iota
	OpConvI1
	OpConvU1
	OpConvI2
	OpConvU2
	OpConvI4
	OpConvU4
	OpConvI8
	OpConvU8
	OpConvR4
	OpConvR8
	OpConvRUn // 无符号整数到浮点
	OpConvCh  // 到 Char
	OpConvDec // 到 Decimal（运行时调用）
	OpFromDec // 从 Decimal（运行时调用）
)

var numOpNames = [...]string{
	"none", "conv.i1", "conv.u1", "conv.i2", "conv.u2", "conv.i4", "conv.u4",
	"conv.i8", "conv.u8", "conv.r4", "conv.r8", "conv.r.un", "conv.ch",
	"decimal.op_implicit", "decimal.op_explicit",
}

func (op NumOp) String() string { return numOpNames[op] }

// Conversion 转换引擎生成的包装节点
type Conversion struct {
	ExprBase
	Kind    ConvKind
	Operand Expr
	Op      NumOp
	// Checked 收窄时溢出需要运行时检查
	Checked bool
}

// NewConversion 把 operand 包装为类型 t 的转换
func NewConversion(kind ConvKind, operand Expr, t types.Type) *Conversion {
	c := &Conversion{ExprBase: At(operand.Pos()), Kind: kind, Operand: operand}
	c.Bind(t, ClassValue)
	return c
}

// UserConversion 调用用户定义的 CType 运算符
type UserConversion struct {
	ExprBase
	Operand  Expr
	Operator *types.Operator
}

// NewUserConversion 创建用户定义转换节点
func NewUserConversion(operand Expr, op *types.Operator, t types.Type) *UserConversion {
	u := &UserConversion{ExprBase: At(operand.Pos()), Operand: operand, Operator: op}
	u.Bind(t, ClassValue)
	return u
}

// DelegateCreation 从方法组或匿名方法创建委托
type DelegateCreation struct {
	ExprBase
	Receiver Expr
	Method   *types.Method
	Lambda   *Lambda
}

// DecimalConstruct 整数常量到 Decimal 的构造调用 New Decimal(v)
type DecimalConstruct struct {
	ExprBase
	Operand Expr
	Value   constant.DecimalValue
}

// NewDecimalConstruct 创建 Decimal 构造节点
func NewDecimalConstruct(operand Expr, v constant.DecimalValue) *DecimalConstruct {
	d := &DecimalConstruct{ExprBase: At(operand.Pos()), Operand: operand, Value: v}
	d.Bind(types.Decimal, ClassValue)
	return d
}

// Unwrap 去掉外层的转换节点
func Unwrap(e Expr) Expr {
	for {
		switch x := e.(type) {
		case *Conversion:
			e = x.Operand
		case *UserConversion:
			e = x.Operand
		case *Paren:
			e = x.X
		default:
			return e
		}
	}
}
