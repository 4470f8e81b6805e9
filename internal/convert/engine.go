// Package convert 实现语言定义的类型转换规则：数值拓宽和收窄、
// 引用转换、装箱拆箱、可空、零到枚举、委托以及用户定义的 CType 运算符。
//
// 转换不存在用 nil 表示，不是错误；只有调用方要求某个目标类型时
// 才报告诊断。参数为 nil 属于调用方违约，直接 panic。
package convert

import (
	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/types"
)

// Engine 一次编译的转换引擎，持有该编译独占的运算符缓存
type Engine struct {
	types  *types.Manager
	unsafe bool
	strict bool

	implicitCache *doubleHash[types.Type, types.Type, *types.Operator]
	explicitCache *doubleHash[types.Type, types.Type, *types.Operator]
}

// NewEngine 创建转换引擎
func NewEngine(m *types.Manager) *Engine {
	return &Engine{
		types:         m,
		implicitCache: newDoubleHash[types.Type, types.Type, *types.Operator](),
		explicitCache: newDoubleHash[types.Type, types.Type, *types.Operator](),
	}
}

// Types 引擎使用的类型管理器
func (e *Engine) Types() *types.Manager { return e.types }

// SetUnsafe 进入或离开 unsafe 上下文
func (e *Engine) SetUnsafe(on bool) { e.unsafe = on }

// SetStrict Option Strict On 时禁止隐式收窄
func (e *Engine) SetStrict(on bool) { e.strict = on }

// Strict 是否 Option Strict On
func (e *Engine) Strict() bool { return e.strict }

func (e *Engine) cache(explicit bool) *doubleHash[types.Type, types.Type, *types.Operator] {
	if explicit {
		return e.explicitCache
	}
	return e.implicitCache
}

func mustArgs(expr ast.Expr, target types.Type) {
	if expr == nil {
		panic("convert: nil expression")
	}
	if target == nil {
		panic("convert: nil target type")
	}
}

// WideningConversionExists 是否存在隐式转换（包括用户定义的 Widening 运算符）
func (e *Engine) WideningConversionExists(expr ast.Expr, target types.Type) bool {
	return e.implicit(expr, target, true) != nil
}

// WideningStandardConversionExists 是否存在标准隐式转换（不含用户定义的运算符）
func (e *Engine) WideningStandardConversionExists(expr ast.Expr, target types.Type) bool {
	return e.implicit(expr, target, false) != nil
}

// WideningConversion 执行隐式转换，返回包装后的表达式，不存在时返回 nil
func (e *Engine) WideningConversion(expr ast.Expr, target types.Type) ast.Expr {
	return e.implicit(expr, target, true)
}

// WideningAndNarrowingConversion 执行显式转换（CType 上下文），不存在时返回 nil
func (e *Engine) WideningAndNarrowingConversion(expr ast.Expr, target types.Type) ast.Expr {
	return e.explicit(expr, target, true)
}

// ConvertExplicit 执行显式转换，失败时报告诊断
func (e *Engine) ConvertExplicit(expr ast.Expr, target types.Type, loc diag.Location, sink diag.Sink) ast.Expr {
	if r := e.explicit(expr, target, true); r != nil {
		return r
	}
	e.reportFailure(expr, target, loc, sink)
	return nil
}

// ImplicitConversionRequired 在要求特定类型的位置（赋值、参数、初始值）转换表达式。
// Option Strict Off 时允许隐式收窄；常量超出目标范围报告 BC30439。
func (e *Engine) ImplicitConversionRequired(expr ast.Expr, target types.Type, loc diag.Location, sink diag.Sink) ast.Expr {
	if r := e.implicit(expr, target, true); r != nil {
		return r
	}
	if e.constantOutOfRange(expr, target) {
		diag.Errorf(sink, diag.ErrNotRepresentable, loc, target.String())
		return nil
	}
	narrowing := e.explicit(expr, target, true)
	if narrowing != nil && !e.strict {
		return narrowing
	}
	if narrowing != nil {
		diag.Errorf(sink, diag.ErrStrictNarrowing, loc, typeName(expr), target.String())
		return nil
	}
	e.reportFailure(expr, target, loc, sink)
	return nil
}

func (e *Engine) reportFailure(expr ast.Expr, target types.Type, loc diag.Location, sink diag.Sink) {
	if e.constantOutOfRange(expr, target) {
		diag.Errorf(sink, diag.ErrNotRepresentable, loc, target.String())
		return
	}
	diag.Errorf(sink, diag.ErrCannotConvert, loc, typeName(expr), target.String())
}

// constantOutOfRange 常量表达式在数值上可以转换但值超出目标类型范围
func (e *Engine) constantOutOfRange(expr ast.Expr, target types.Type) bool {
	v, ok := ast.ConstValue(expr)
	if !ok {
		return false
	}
	src := e.numericKindOf(expr.Type())
	dst := e.numericKindOf(target)
	if src < 0 || dst < 0 {
		return false
	}
	if _, ok := numericOp(constant.Kind(src), constant.Kind(dst)); !ok && src != dst {
		return false
	}
	_, ok = constant.Convert(v, constant.Kind(dst))
	return !ok
}

// numericKindOf 数值或 Char 类型（枚举取基础类型）的常量种类，其他返回 -1
func (e *Engine) numericKindOf(t types.Type) int {
	if t == nil {
		return -1
	}
	if u := e.types.EnumUnderlying(t); u != nil {
		return int(u.Kind())
	}
	b, ok := t.(*types.Basic)
	if !ok || !(b.Kind().IsNumeric() || b.Kind() == constant.Char) {
		return -1
	}
	return int(b.Kind())
}

func typeName(expr ast.Expr) string {
	if t := expr.Type(); t != nil {
		return t.String()
	}
	switch expr.Class() {
	case ast.ClassMethodGroup:
		return "method group"
	case ast.ClassType:
		return "type"
	}
	return "?"
}

// StandardConversionExists 类型之间是否存在标准隐式转换
func (e *Engine) StandardConversionExists(src, dst types.Type) bool {
	_, ok := e.implicitKind(src, dst)
	return ok
}

// DirectCastConversion DirectCast 只允许恒等、引用、装箱和拆箱转换
func (e *Engine) DirectCastConversion(expr ast.Expr, target types.Type) ast.Expr {
	mustArgs(expr, target)
	src := expr.Type()
	if src == nil {
		return nil
	}
	if types.Identical(src, target) {
		return expr
	}
	if types.IsNull(src) && !e.types.IsValueType(target) {
		return ast.NewConversion(ast.ConvIdentity, expr, target)
	}
	if e.implicitReference(src, target) {
		return ast.NewConversion(ast.ConvIdentity, expr, target)
	}
	if e.boxing(src, target) {
		return ast.NewConversion(ast.ConvBox, expr, target)
	}
	if e.unboxing(src, target) {
		return ast.NewConversion(ast.ConvUnbox, expr, target)
	}
	if e.explicitReference(src, target) {
		return ast.NewConversion(ast.ConvReference, expr, target)
	}
	return nil
}

// TryCastConversion TryCast 的目标必须是引用类型或泛型参数，失败时结果为 Nothing
func (e *Engine) TryCastConversion(expr ast.Expr, target types.Type) ast.Expr {
	mustArgs(expr, target)
	src := expr.Type()
	if src == nil || e.types.IsValueType(target) {
		return nil
	}
	if _, isParam := target.(*types.Param); !isParam && !e.types.IsReferenceType(target) {
		return nil
	}
	if types.Identical(src, target) {
		return expr
	}
	if types.IsNull(src) || e.implicitReference(src, target) {
		return ast.NewConversion(ast.ConvIdentity, expr, target)
	}
	if e.boxing(src, target) {
		return ast.NewConversion(ast.ConvBox, expr, target)
	}
	if e.explicitReference(src, target) {
		return ast.NewConversion(ast.ConvTryCast, expr, target)
	}
	return nil
}

// ConstraintConversionExists 泛型约束检查只接受恒等、隐式引用和装箱转换，
// 不经过数值转换或用户定义运算符
func (e *Engine) ConstraintConversionExists(src, dst types.Type) bool {
	if src == nil || dst == nil {
		panic("convert: nil type")
	}
	return types.Identical(src, dst) || e.implicitReference(src, dst) || e.boxing(src, dst)
}
