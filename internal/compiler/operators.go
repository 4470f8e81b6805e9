package compiler

import (
	"errors"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/types"
)

func (b *binder) binary(x *ast.Binary) ast.Expr {
	l := b.value(x.X)
	r := b.value(x.Y)
	if l == nil || r == nil {
		return nil
	}
	return b.applyBinary(x, l, r)
}

// applyBinary 用已绑定的操作数完成 x：引用比较、用户定义运算符、内建运算符，
// 两边都是常量时折叠
func (b *binder) applyBinary(x *ast.Binary, l, r ast.Expr) ast.Expr {
	lt, rt := l.Type(), r.Type()
	if x.Op == ast.Is || x.Op == ast.IsNot {
		for _, t := range []types.Type{lt, rt} {
			if !types.IsNull(t) && !b.m.IsReferenceType(t) {
				diag.Errorf(b.sink, diag.ErrOperatorNotDefined, x.Loc, x.Op.String(), lt.String(), rt.String())
				return nil
			}
		}
		x.X, x.Y = l, r
		x.Bind(types.Boolean, ast.ClassValue)
		return x
	}

	if ms := b.userOperators(x.Op.String(), 2, lt, rt); len(ms) > 0 {
		return b.callOperator(x.Loc, ms, l, r)
	}

	// 同一枚举类型的按位运算结果仍是该枚举
	if b.m.IsEnum(lt) && types.Identical(lt, rt) {
		switch x.Op {
		case ast.And, ast.Or, ast.Xor:
			return b.fold(x, l, r, lt)
		}
	}

	lk, lok := b.kindOf(lt)
	rk, rok := b.kindOf(rt)
	switch {
	case types.IsNull(lt) && types.IsNull(rt):
		lk, rk, lok, rok = constant.Integer, constant.Integer, true, true
	case types.IsNull(lt):
		lk, lok = rk, rok
	case types.IsNull(rt):
		rk, rok = lk, lok
	}
	var operand, result constant.Kind
	ok := lok && rok
	if ok {
		operand, result, ok = binaryKind(x.Op, lk, rk)
	}
	if !ok {
		diag.Errorf(b.sink, diag.ErrOperatorNotDefined, x.Loc, x.Op.String(), lt.String(), rt.String())
		return nil
	}

	rightKind := operand
	if x.Op == ast.Shl || x.Op == ast.Shr {
		rightKind = constant.Integer
	}
	if x.Op == ast.Concat {
		// & 接受任何基元类型，Option Strict On 时也不算隐式收窄
		l = b.engine.ConvertExplicit(l, types.String, l.Pos(), b.sink)
		r = b.engine.ConvertExplicit(r, types.String, r.Pos(), b.sink)
		if l == nil || r == nil {
			return nil
		}
		return b.fold(x, l, r, types.String)
	}
	if l = b.coerce(l, operand); l == nil {
		return nil
	}
	if r = b.coerce(r, rightKind); r == nil {
		return nil
	}
	return b.fold(x, l, r, types.BasicOf(result))
}

// fold 设置操作数和结果类型；两边都是常量时返回折叠后的常量
func (b *binder) fold(x *ast.Binary, l, r ast.Expr, result types.Type) ast.Expr {
	x.X, x.Y = l, r
	x.Bind(result, ast.ClassValue)

	lv, lok := ast.ConstValue(l)
	rv, rok := ast.ConstValue(r)
	if !lok || !rok {
		return x
	}
	op, ok := x.Op.FoldOp()
	if !ok {
		return x
	}
	if op == constant.OpAdd && lv.Kind() == constant.String {
		op = constant.OpConcat
	}
	v, err := constant.Fold(op, lv, rv)
	switch {
	case errors.Is(err, constant.ErrOverflow):
		diag.Errorf(b.sink, diag.ErrConstantOverflow, x.Loc, result.String())
		return nil
	case errors.Is(err, constant.ErrDivisionByZero):
		diag.Errorf(b.sink, diag.ErrDivisionByZero, x.Loc)
		return nil
	case err != nil:
		diag.Errorf(b.sink, diag.ErrOperatorNotDefined, x.Loc, x.Op.String(), l.Type().String(), r.Type().String())
		return nil
	}
	return ast.NewTypedConstant(x.Loc, v, result)
}

// kindOf 内建运算看到的常量种类，枚举取基础类型
func (b *binder) kindOf(t types.Type) (constant.Kind, bool) {
	if u := b.m.EnumUnderlying(t); u != nil {
		return u.Kind(), true
	}
	if bt, ok := t.(*types.Basic); ok {
		return bt.Kind(), true
	}
	return 0, false
}

// coerce 把操作数转换到运算类型；枚举先显式转换到基础类型
func (b *binder) coerce(e ast.Expr, k constant.Kind) ast.Expr {
	if u := b.m.EnumUnderlying(e.Type()); u != nil {
		if e = b.engine.WideningAndNarrowingConversion(e, u); e == nil {
			return nil
		}
	}
	return b.engine.ImplicitConversionRequired(e, types.BasicOf(k), e.Pos(), b.sink)
}

// userOperators 操作数类型中声明的同名运算符方法
func (b *binder) userOperators(name string, arity int, operands ...types.Type) []*types.Method {
	var out []*types.Method
	seen := make(map[*types.Named]bool)
	for _, t := range operands {
		def := b.m.Decl(t)
		if def == nil || seen[def] || (def.Kind != types.Class && def.Kind != types.Structure) {
			continue
		}
		seen[def] = true
		for _, m := range def.LookupMethods(name) {
			if d, ok := m.Decl.(*ast.MethodDecl); ok && d.Kind == ast.OperatorMethod && len(m.Params) == arity {
				out = append(out, m)
			}
		}
	}
	return out
}

func (b *binder) callOperator(loc diag.Location, ms []*types.Method, args ...ast.Expr) ast.Expr {
	g := &ast.MethodGroup{ExprBase: ast.At(loc), Receiver: b.typeValue(loc, args[0].Type()), Methods: ms}
	g.Bind(nil, ast.ClassMethodGroup)
	return b.call(&ast.Invoke{ExprBase: ast.At(loc), Fn: g}, g, args)
}

// binaryKind 内建二元运算的操作数类型和结果类型
func binaryKind(op ast.BinOp, l, r constant.Kind) (operand, result constant.Kind, ok bool) {
	switch op {
	case ast.Concat:
		return constant.String, constant.String, true
	case ast.AndAlso, ast.OrElse:
		return constant.Bool, constant.Bool, true
	case ast.Shl, ast.Shr:
		switch {
		case l == constant.Char || l == constant.Date:
			return 0, 0, false
		case l == constant.Bool:
			l = constant.Short
		case !l.IsIntegral():
			l = constant.Long
		}
		return l, l, true
	}

	c, ok := commonKind(l, r)
	if !ok {
		return 0, 0, false
	}
	switch op {
	case ast.Eq, ast.Ne, ast.Lt, ast.Le, ast.Gt, ast.Ge:
		return c, constant.Bool, true
	case ast.And, ast.Or, ast.Xor:
		switch {
		case c == constant.Char || c == constant.Date:
			return 0, 0, false
		case c != constant.Bool && !c.IsIntegral():
			c = constant.Long
		}
		return c, c, true
	}

	// 算术运算
	switch c {
	case constant.Char, constant.Date:
		return 0, 0, false
	case constant.Bool:
		c = constant.Short
	case constant.String:
		if op == ast.Add && l == constant.String && r == constant.String {
			return constant.String, constant.String, true
		}
		c = constant.Double
	}
	switch op {
	case ast.Div:
		if c.IsIntegral() {
			c = constant.Double
		}
	case ast.Pow:
		c = constant.Double
	case ast.IntDiv:
		if !c.IsIntegral() {
			c = constant.Long
		}
	}
	return c, c, true
}

// commonKind 两个操作数类型都能转换到的类型
func commonKind(a, b constant.Kind) (constant.Kind, bool) {
	if a == b {
		return a, true
	}
	if b == constant.String {
		a, b = b, a
	}
	if a == constant.String {
		switch b {
		case constant.Char:
			return constant.String, true
		case constant.Date:
			return constant.Date, true
		case constant.Bool:
			return constant.Bool, true
		}
		return constant.Double, true
	}
	if a == constant.Char || a == constant.Date || b == constant.Char || b == constant.Date {
		return 0, false
	}
	if b == constant.Bool {
		a, b = b, a
	}
	if a == constant.Bool {
		return signedFor(b), true
	}
	if constant.IsWidening(a, b) {
		return b, true
	}
	if constant.IsWidening(b, a) {
		return a, true
	}
	if a.IsIntegral() && b.IsIntegral() {
		// 有符号与无符号混合：取能容纳两者的有符号类型
		bits := a.Bits()
		if b.Bits() > bits {
			bits = b.Bits()
		}
		if a.IsUnsigned() && a.Bits() == bits || b.IsUnsigned() && b.Bits() == bits {
			bits *= 2
		}
		switch bits {
		case 16:
			return constant.Short, true
		case 32:
			return constant.Integer, true
		case 64:
			return constant.Long, true
		}
		return constant.Decimal, true
	}
	return constant.Double, true
}

// signedFor 与 Boolean 组合时的数值类型：无符号类型换成能容纳其值的有符号类型
func signedFor(k constant.Kind) constant.Kind {
	switch k {
	case constant.Byte:
		return constant.Short
	case constant.UShort:
		return constant.Integer
	case constant.UInteger:
		return constant.Long
	case constant.ULong:
		return constant.Decimal
	}
	return k
}

func (b *binder) unary(x *ast.Unary) ast.Expr {
	v := b.value(x.X)
	if v == nil {
		return nil
	}
	t := v.Type()
	if ms := b.userOperators(x.Op.String(), 1, t); len(ms) > 0 {
		return b.callOperator(x.Loc, ms, v)
	}

	if x.Op == ast.Not && b.m.IsEnum(t) {
		return b.foldUnary(x, v, t)
	}
	k, ok := b.kindOf(t)
	if types.IsNull(t) {
		k, ok = constant.Integer, true
	}
	if ok {
		k, ok = unaryKind(x.Op, k)
	}
	if !ok {
		diag.Errorf(b.sink, diag.ErrUnaryNotDefined, x.Loc, x.Op.String(), t.String())
		return nil
	}
	if v = b.coerce(v, k); v == nil {
		return nil
	}
	return b.foldUnary(x, v, types.BasicOf(k))
}

func (b *binder) foldUnary(x *ast.Unary, v ast.Expr, result types.Type) ast.Expr {
	x.X = v
	x.Bind(result, ast.ClassValue)
	cv, ok := ast.ConstValue(v)
	if !ok {
		return x
	}
	var r constant.Value
	var err error
	switch x.Op {
	case ast.Neg:
		r, err = constant.Negate(cv)
	case ast.Not:
		r, err = constant.Not(cv)
	default:
		r = cv
	}
	switch {
	case errors.Is(err, constant.ErrOverflow):
		diag.Errorf(b.sink, diag.ErrConstantOverflow, x.Loc, result.String())
		return nil
	case err != nil:
		diag.Errorf(b.sink, diag.ErrUnaryNotDefined, x.Loc, x.Op.String(), v.Type().String())
		return nil
	}
	return ast.NewTypedConstant(x.Loc, r, result)
}

// unaryKind 一元运算的操作数类型
func unaryKind(op ast.UnOp, k constant.Kind) (constant.Kind, bool) {
	if k == constant.Char || k == constant.Date {
		return 0, false
	}
	if op == ast.Not {
		if k == constant.Bool || k.IsIntegral() {
			return k, true
		}
		return constant.Long, true
	}
	switch k {
	case constant.Bool:
		return constant.Short, true
	case constant.String:
		return constant.Double, true
	}
	if op == ast.Neg {
		return signedFor(k), true
	}
	return k, true
}
