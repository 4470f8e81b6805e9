// Package ast 定义语法树：声明、语句、表达式以及转换引擎生成的转换包装节点。
//
// 解析器产生未绑定的表达式（类型为 nil），绑定阶段为每个表达式
// 设置类型和分类；常量表达式同时携带 constant.Value。
package ast

import (
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/types"
)

// Node 所有语法节点
type Node interface {
	Pos() diag.Location
}

// Class 表达式分类，决定哪些转换可以适用
type Class int

const (
	ClassValue Class = iota
	ClassVariable
	ClassMethodGroup
	ClassType
)

var classNames = [...]string{"Value", "Variable", "MethodGroup", "Type"}

func (c Class) String() string { return classNames[c] }

// Expr 表达式
type Expr interface {
	Node
	// Type 绑定后的类型，未绑定时为 nil
	Type() types.Type
	// Class 表达式分类
	Class() Class
	// Bind 设置类型和分类
	Bind(t types.Type, c Class)
	exprNode()
}

// ExprBase 表达式公共字段，由各表达式节点嵌入
type ExprBase struct {
	Loc   diag.Location
	typ   types.Type
	class Class
}

func (e *ExprBase) Pos() diag.Location { return e.Loc }
func (e *ExprBase) Type() types.Type   { return e.typ }
func (e *ExprBase) Class() Class       { return e.class }
func (e *ExprBase) Bind(t types.Type, c Class) {
	e.typ = t
	e.class = c
}
func (*ExprBase) exprNode() {}

// At 带位置的表达式基础
func At(loc diag.Location) ExprBase { return ExprBase{Loc: loc} }

// Constant 常量表达式
type Constant struct {
	ExprBase
	Value constant.Value
}

// NewConstant 创建类型为常量自身类型的常量节点
func NewConstant(loc diag.Location, v constant.Value) *Constant {
	c := &Constant{ExprBase: At(loc), Value: v}
	c.Bind(types.BasicOf(v.Kind()), ClassValue)
	return c
}

// NewTypedConstant 创建指定类型（如枚举）的常量节点
func NewTypedConstant(loc diag.Location, v constant.Value, t types.Type) *Constant {
	c := &Constant{ExprBase: At(loc), Value: v}
	c.Bind(t, ClassValue)
	return c
}

// ConstValue 表达式的常量值
func ConstValue(e Expr) (constant.Value, bool) {
	switch x := e.(type) {
	case *Constant:
		return x.Value, true
	case *DecimalConstruct:
		return x.Value, true
	case *Paren:
		return ConstValue(x.X)
	}
	return nil, false
}

// IsNullLiteral 是否 Nothing 字面量
func IsNullLiteral(e Expr) bool {
	_, ok := e.(*NothingLit)
	return ok
}
