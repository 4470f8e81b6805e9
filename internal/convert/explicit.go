package convert

import (
	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/types"
)

// explicit 显式转换：先尝试隐式转换，然后依次是数值收窄、枚举、拆箱、
// 引用收窄、可空、指针、用户定义运算符，最后是 Boolean 与数值、
// String 与基元类型及 Char() 之间的转换
func (e *Engine) explicit(expr ast.Expr, target types.Type, userDefined bool) ast.Expr {
	if r := e.implicit(expr, target, userDefined); r != nil {
		return r
	}
	switch expr.Class() {
	case ast.ClassValue, ast.ClassVariable:
	default:
		return nil
	}
	if _, ok := expr.(*ast.Lambda); ok {
		return nil
	}
	src := expr.Type()
	if r := e.explicitNumeric(expr, src, target); r != nil {
		return r
	}
	if r := e.explicitEnum(expr, src, target); r != nil {
		return r
	}
	if e.unboxing(src, target) {
		return ast.NewConversion(ast.ConvUnbox, expr, target)
	}
	if e.explicitReference(src, target) {
		return ast.NewConversion(ast.ConvReference, expr, target)
	}
	if r := e.explicitNullable(expr, src, target); r != nil {
		return r
	}
	if e.unsafe {
		if r := e.explicitPointer(expr, src, target); r != nil {
			return r
		}
	}
	if userDefined {
		if r := e.UserDefinedConversion(expr, target, true); r != nil {
			return r
		}
	}
	if r := e.booleanConversion(expr, src, target); r != nil {
		return r
	}
	return e.stringConversion(expr, src, target)
}

// explicitKind 类型之间是否存在标准显式转换（不含用户定义的运算符）
func (e *Engine) explicitKind(src, dst types.Type) bool {
	if _, ok := e.implicitKind(src, dst); ok {
		return true
	}
	if sb, ok := src.(*types.Basic); ok {
		if db, ok := dst.(*types.Basic); ok {
			if _, ok := explicitOp(sb.Kind(), db.Kind()); ok {
				return true
			}
		}
	}
	if e.enumPair(src, dst) {
		return true
	}
	return e.unboxing(src, dst) || e.explicitReference(src, dst)
}

func (e *Engine) explicitNumeric(expr ast.Expr, src, dst types.Type) ast.Expr {
	sb, ok := src.(*types.Basic)
	if !ok {
		return nil
	}
	db, ok := dst.(*types.Basic)
	if !ok {
		return nil
	}
	op, ok := explicitOp(sb.Kind(), db.Kind())
	if !ok {
		return nil
	}
	return e.numericNode(expr, db, op, true)
}

// enumPair 枚举与数值（含 Char）之间、枚举与枚举之间
func (e *Engine) enumPair(src, dst types.Type) bool {
	se, de := e.types.IsEnum(src), e.types.IsEnum(dst)
	if !se && !de {
		return false
	}
	return e.numericKindOf(src) >= 0 && e.numericKindOf(dst) >= 0
}

func (e *Engine) explicitEnum(expr ast.Expr, src, dst types.Type) ast.Expr {
	if !e.enumPair(src, dst) {
		return nil
	}
	from := constant.Kind(e.numericKindOf(src))
	to := constant.Kind(e.numericKindOf(dst))
	if v, ok := ast.ConstValue(expr); ok {
		cv, ok := constant.Convert(v, to)
		if !ok {
			return nil
		}
		return ast.NewTypedConstant(expr.Pos(), cv, dst)
	}
	c := ast.NewConversion(ast.ConvEnum, expr, dst)
	if from != to {
		c.Op, _ = numericOp(from, to)
		c.Checked = true
	}
	return c
}

// unboxing Object、ValueType、Enum 或值类型实现的接口到值类型
func (e *Engine) unboxing(src, dst types.Type) bool {
	m := e.types
	target := dst
	if n, ok := dst.(*types.Nullable); ok {
		target = n.Elem
	}
	if !m.IsValueType(target) || !m.IsReferenceType(src) || types.IsNull(src) {
		return false
	}
	switch {
	case types.Identical(src, m.Object), types.Identical(src, m.ValueType):
		return true
	case types.Identical(src, m.Enum):
		return m.IsEnum(target)
	case m.IsInterface(src):
		return m.Implements(target, src)
	}
	return false
}

// isClassLike 类、委托、String、数组等非接口引用类型
func (e *Engine) isClassLike(t types.Type) bool {
	if t == types.String {
		return true
	}
	if _, ok := t.(*types.Array); ok {
		return true
	}
	return e.types.IsClass(t)
}

// explicitReference 需要运行时检查的引用收窄
func (e *Engine) explicitReference(src, dst types.Type) bool {
	m := e.types
	if types.IsNull(src) || types.IsNull(dst) {
		return false
	}
	_, srcParam := src.(*types.Param)
	_, dstParam := dst.(*types.Param)
	if !srcParam && !m.IsReferenceType(src) {
		return false
	}
	if !dstParam && !m.IsReferenceType(dst) {
		return false
	}
	switch {
	case types.Identical(src, m.Object):
		return true
	case dstParam:
		return m.IsInterface(src) || (!srcParam && m.IsSubclassOf(dst, src))
	case srcParam:
		return m.IsInterface(dst)
	}
	sa, srcArray := src.(*types.Array)
	da, dstArray := dst.(*types.Array)
	switch {
	case srcArray && dstArray:
		return sa.Rank == da.Rank &&
			m.IsReferenceType(sa.Elem) && m.IsReferenceType(da.Elem) &&
			e.explicitReference(sa.Elem, da.Elem)
	case dstArray:
		// System.Array 及数组实现的接口
		return m.IsSubclassOf(dst, src) || m.Implements(dst, src)
	case m.IsDelegate(dst) && (types.Identical(src, m.Delegate) || types.Identical(src, m.MulticastDelegate) || types.Identical(src, m.ICloneable)):
		return true
	}
	srcIface, dstIface := m.IsInterface(src), m.IsInterface(dst)
	switch {
	case e.isClassLike(src) && e.isClassLike(dst):
		return m.IsSubclassOf(dst, src)
	case e.isClassLike(src) && dstIface:
		return !m.IsSealed(src) || m.Implements(src, dst)
	case srcIface && e.isClassLike(dst):
		return !m.IsSealed(dst) || m.Implements(dst, src)
	case srcIface && dstIface:
		return !m.Implements(src, dst)
	}
	return false
}

// explicitNullable S? -> T、S -> T?、S? -> T?
func (e *Engine) explicitNullable(expr ast.Expr, src, dst types.Type) ast.Expr {
	sn, srcNullable := src.(*types.Nullable)
	dn, dstNullable := dst.(*types.Nullable)
	if !srcNullable && !dstNullable {
		return nil
	}
	operand := expr
	if srcNullable {
		operand = ast.NewConversion(ast.ConvNullableUnwrap, expr, sn.Elem)
	}
	if !dstNullable {
		return e.explicit(operand, dst, false)
	}
	if !e.types.IsValueType(dn.Elem) {
		return nil
	}
	inner := e.explicit(operand, dn.Elem, false)
	if inner == nil {
		return nil
	}
	return ast.NewConversion(ast.ConvNullableWrap, inner, dst)
}

func (e *Engine) explicitPointer(expr ast.Expr, src, dst types.Type) ast.Expr {
	_, srcPtr := src.(*types.Pointer)
	_, dstPtr := dst.(*types.Pointer)
	switch {
	case srcPtr && dstPtr:
	case srcPtr && isIntegral(dst):
	case dstPtr && isIntegral(src):
	default:
		return nil
	}
	return ast.NewConversion(ast.ConvPointer, expr, dst)
}

func isIntegral(t types.Type) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Kind().IsIntegral()
}

func isNumeric(t types.Type) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Kind().IsNumeric()
}

// booleanConversion Boolean 与数值之间：True 为 -1（无符号为全 1），非零为 True
func (e *Engine) booleanConversion(expr ast.Expr, src, dst types.Type) ast.Expr {
	if !(src == types.Boolean && isNumeric(dst)) && !(isNumeric(src) && dst == types.Boolean) {
		return nil
	}
	db := dst.(*types.Basic)
	if v, ok := ast.ConstValue(expr); ok {
		cv, ok := constant.Convert(v, db.Kind())
		if !ok {
			return nil
		}
		return ast.NewConstant(expr.Pos(), cv)
	}
	return ast.NewConversion(ast.ConvBoolean, expr, dst)
}

// stringConversion String 与基元类型之间、String 与 Char() 之间
func (e *Engine) stringConversion(expr ast.Expr, src, dst types.Type) ast.Expr {
	charArray := e.types.ArrayOf(types.Char, 1)
	switch {
	case src == types.String && types.Identical(dst, charArray),
		types.Identical(src, charArray) && dst == types.String:
		return ast.NewConversion(ast.ConvString, expr, dst)
	}
	sb, ok := src.(*types.Basic)
	if !ok {
		return nil
	}
	db, ok := dst.(*types.Basic)
	if !ok || (sb != types.String && db != types.String) {
		return nil
	}
	if v, ok := ast.ConstValue(expr); ok {
		cv, ok := constant.Convert(v, db.Kind())
		if !ok {
			return nil
		}
		return ast.NewConstant(expr.Pos(), cv)
	}
	return ast.NewConversion(ast.ConvString, expr, dst)
}
