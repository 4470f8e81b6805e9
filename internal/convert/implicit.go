package convert

import (
	"time"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/types"
)

// step 类型层面的一步转换
type step struct {
	kind ast.ConvKind
	op   ast.NumOp
}

// implicitKind 类型之间的标准隐式转换，不考虑常量值和用户定义运算符
func (e *Engine) implicitKind(src, dst types.Type) (step, bool) {
	if types.Identical(src, dst) {
		return step{kind: ast.ConvIdentity}, true
	}
	if sb, ok := src.(*types.Basic); ok {
		if db, ok := dst.(*types.Basic); ok {
			if op, ok := implicitOp(sb.Kind(), db.Kind()); ok {
				return step{kind: ast.ConvNumeric, op: op}, true
			}
			return step{}, false
		}
	}
	if dn, ok := dst.(*types.Nullable); ok {
		inner := src
		if sn, ok := src.(*types.Nullable); ok {
			inner = sn.Elem
		}
		if s, ok := e.implicitKind(inner, dn.Elem); ok && (s.kind == ast.ConvIdentity || s.kind == ast.ConvNumeric) {
			return step{kind: ast.ConvNullableWrap, op: s.op}, true
		}
	}
	if types.IsNull(src) {
		if e.acceptsNull(dst) {
			return step{kind: ast.ConvIdentity}, true
		}
		return step{}, false
	}
	if e.implicitReference(src, dst) {
		return step{kind: ast.ConvIdentity}, true
	}
	if e.boxing(src, dst) {
		return step{kind: ast.ConvBox}, true
	}
	if e.unsafe {
		if _, ok := src.(*types.Pointer); ok && isVoidPointer(dst) {
			return step{kind: ast.ConvPointer}, true
		}
	}
	return step{}, false
}

func isVoidPointer(t types.Type) bool {
	p, ok := t.(*types.Pointer)
	return ok && p.Elem == types.Void
}

// acceptsNull 引用类型、可空类型、带 Class 约束的泛型参数以及 unsafe 下的指针可以接受 Nothing
func (e *Engine) acceptsNull(t types.Type) bool {
	switch t.(type) {
	case *types.Nullable:
		return true
	case *types.Pointer:
		return e.unsafe
	}
	return e.types.IsReferenceType(t)
}

// implicitReference 隐式引用转换（不改变表示）
func (e *Engine) implicitReference(src, dst types.Type) bool {
	m := e.types
	if types.Identical(src, dst) {
		return true
	}
	if p, ok := src.(*types.Param); ok {
		return m.IsReferenceType(p) && e.paramReaches(p, dst)
	}
	if !m.IsReferenceType(src) || types.IsNull(src) {
		return false
	}
	if types.Identical(dst, m.Object) {
		return true
	}
	if sa, ok := src.(*types.Array); ok {
		if da, ok := dst.(*types.Array); ok {
			return sa.Rank == da.Rank &&
				m.IsReferenceType(sa.Elem) && m.IsReferenceType(da.Elem) &&
				e.implicitReference(sa.Elem, da.Elem)
		}
	}
	if m.IsInterface(dst) {
		return m.Implements(src, dst)
	}
	if _, ok := dst.(*types.Param); ok {
		return false
	}
	return m.IsSubclassOf(src, dst)
}

// paramReaches 泛型参数 T 可以隐式转换到其有效基类、接口约束以及作为约束的其他类型参数
func (e *Engine) paramReaches(p *types.Param, dst types.Type) bool {
	m := e.types
	if m.IsInterface(dst) && m.Implements(p, dst) {
		return true
	}
	if m.IsSubclassOf(p, dst) {
		return true
	}
	c := m.ConstraintsOf(p)
	if c == nil {
		return false
	}
	for _, q := range c.TypeParameterConstraints() {
		if q == p {
			continue
		}
		if types.Identical(q, dst) || e.paramReaches(q, dst) {
			return true
		}
	}
	return false
}

// boxing 值类型（或非引用的泛型参数）到 Object、ValueType、Enum 或其实现的接口
func (e *Engine) boxing(src, dst types.Type) bool {
	m := e.types
	if p, ok := src.(*types.Param); ok {
		return !m.IsReferenceType(p) && e.paramReaches(p, dst)
	}
	inner := src
	if n, ok := src.(*types.Nullable); ok {
		inner = n.Elem
	}
	if !m.IsValueType(inner) {
		return false
	}
	if types.Identical(dst, m.Object) || types.Identical(dst, m.ValueType) {
		return true
	}
	if m.IsInterface(dst) {
		return m.Implements(inner, dst)
	}
	return m.IsClass(dst) && m.IsSubclassOf(inner, dst)
}

// implicit 表达式层面的隐式转换，按顺序尝试：恒等、数值、常量表达式、
// 引用（含装箱和可空）、零到枚举、指针、委托、用户定义运算符
func (e *Engine) implicit(expr ast.Expr, target types.Type, userDefined bool) ast.Expr {
	mustArgs(expr, target)
	switch expr.Class() {
	case ast.ClassType:
		return nil
	case ast.ClassMethodGroup:
		return e.methodGroupToDelegate(expr, target)
	}
	if lam, ok := expr.(*ast.Lambda); ok {
		return e.lambdaToDelegate(lam, target)
	}
	src := expr.Type()
	if src == nil {
		panic("convert: unbound expression")
	}
	if types.Identical(src, target) {
		return expr
	}
	if r := e.implicitNumeric(expr, src, target); r != nil {
		return r
	}
	if r := e.implicitConstant(expr, target); r != nil {
		return r
	}
	if r := e.implicitReferenceExpr(expr, src, target); r != nil {
		return r
	}
	if r := e.zeroToEnum(expr, target); r != nil {
		return r
	}
	if e.unsafe {
		if r := e.implicitPointer(expr, src, target); r != nil {
			return r
		}
	}
	if userDefined {
		return e.UserDefinedConversion(expr, target, false)
	}
	return nil
}

func (e *Engine) implicitNumeric(expr ast.Expr, src, dst types.Type) ast.Expr {
	sb, ok := src.(*types.Basic)
	if !ok {
		return nil
	}
	db, ok := dst.(*types.Basic)
	if !ok {
		return nil
	}
	op, ok := implicitOp(sb.Kind(), db.Kind())
	if !ok {
		return nil
	}
	return e.numericNode(expr, db, op, false)
}

// numericNode 常量直接折叠；整数常量到 Decimal 生成构造调用节点
func (e *Engine) numericNode(expr ast.Expr, dst *types.Basic, op ast.NumOp, checked bool) ast.Expr {
	if v, ok := ast.ConstValue(expr); ok {
		cv, ok := constant.Convert(v, dst.Kind())
		if !ok {
			return nil
		}
		if dv, isDec := cv.(constant.DecimalValue); isDec && (v.Kind().IsIntegral() || v.Kind() == constant.Char) {
			return ast.NewDecimalConstruct(expr, dv)
		}
		return ast.NewConstant(expr.Pos(), cv)
	}
	c := ast.NewConversion(ast.ConvNumeric, expr, dst)
	c.Op = op
	c.Checked = checked
	return c
}

// implicitConstant Integer 常量在值域内可以隐式收窄，Long 常量非负时可以转换为 ULong
func (e *Engine) implicitConstant(expr ast.Expr, target types.Type) ast.Expr {
	v, ok := ast.ConstValue(expr)
	if !ok {
		return nil
	}
	if _, ok := expr.Type().(*types.Basic); !ok {
		return nil
	}
	db, ok := target.(*types.Basic)
	if !ok {
		return nil
	}
	cv, ok := constant.ImplicitConvert(v, db.Kind())
	if !ok {
		return nil
	}
	return ast.NewConstant(expr.Pos(), cv)
}

func (e *Engine) implicitReferenceExpr(expr ast.Expr, src, target types.Type) ast.Expr {
	if types.IsNull(src) {
		return e.nothingTo(expr, target)
	}
	if dn, ok := target.(*types.Nullable); ok {
		return e.implicitNullable(expr, src, dn)
	}
	if e.implicitReference(src, target) {
		return ast.NewConversion(ast.ConvIdentity, expr, target)
	}
	if e.boxing(src, target) {
		return ast.NewConversion(ast.ConvBox, expr, target)
	}
	return nil
}

// nothingTo Nothing 转换到任意类型：引用类型为空引用，基元值类型为零值常量
func (e *Engine) nothingTo(expr ast.Expr, target types.Type) ast.Expr {
	if e.acceptsNull(target) {
		return ast.NewConversion(ast.ConvIdentity, expr, target)
	}
	if b, ok := target.(*types.Basic); ok {
		if v := zeroValue(b); v != nil {
			return ast.NewConstant(expr.Pos(), v)
		}
	}
	if e.types.IsValueType(target) {
		return ast.NewConversion(ast.ConvIdentity, expr, target)
	}
	if _, ok := target.(*types.Param); ok {
		return ast.NewConversion(ast.ConvIdentity, expr, target)
	}
	return nil
}

func zeroValue(b *types.Basic) constant.Value {
	switch b.Kind() {
	case constant.Bool:
		return constant.BoolValue(false)
	case constant.Char:
		return constant.CharValue(0)
	case constant.Date:
		return constant.NewDate(time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC))
	case constant.String:
		return nil
	}
	v, _ := constant.Convert(constant.IntegerValue(0), b.Kind())
	return v
}

// implicitNullable S -> T? 和 S? -> T?，内部转换必须是恒等或数值拓宽
func (e *Engine) implicitNullable(expr ast.Expr, src types.Type, dst *types.Nullable) ast.Expr {
	operand := expr
	inner := src
	if sn, ok := src.(*types.Nullable); ok {
		inner = sn.Elem
		operand = ast.NewConversion(ast.ConvNullableUnwrap, expr, inner)
	}
	s, ok := e.implicitKind(inner, dst.Elem)
	if !ok || (s.kind != ast.ConvIdentity && s.kind != ast.ConvNumeric) {
		// 常量可以按常量表达式规则收窄
		if _, isNullable := src.(*types.Nullable); isNullable {
			return nil
		}
		converted := e.implicitConstant(expr, dst.Elem)
		if converted == nil {
			return nil
		}
		return ast.NewConversion(ast.ConvNullableWrap, converted, dst)
	}
	converted := operand
	if s.kind == ast.ConvNumeric {
		converted = e.numericNode(operand, dst.Elem.(*types.Basic), s.op, false)
		if converted == nil {
			return nil
		}
	}
	return ast.NewConversion(ast.ConvNullableWrap, converted, dst)
}

// zeroToEnum 整数常量 0 可以隐式转换为任何枚举类型，与基础类型无关
func (e *Engine) zeroToEnum(expr ast.Expr, target types.Type) ast.Expr {
	v, ok := ast.ConstValue(expr)
	if !ok || !v.IsZeroInteger() {
		return nil
	}
	if _, ok := expr.Type().(*types.Basic); !ok {
		return nil
	}
	u := e.types.EnumUnderlying(target)
	if u == nil {
		return nil
	}
	cv, ok := constant.Convert(v, u.Kind())
	if !ok {
		return nil
	}
	return ast.NewTypedConstant(expr.Pos(), cv, target)
}

func (e *Engine) implicitPointer(expr ast.Expr, src, target types.Type) ast.Expr {
	if _, ok := src.(*types.Pointer); ok && isVoidPointer(target) {
		return ast.NewConversion(ast.ConvPointer, expr, target)
	}
	return nil
}
