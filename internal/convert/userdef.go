package convert

import (
	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/types"
)

// UserDefinedConversion 通过用户定义的 CType 运算符转换。
// explicit 为 false 时只考虑 Widening 运算符。没有唯一最具体的运算符时返回 nil。
func (e *Engine) UserDefinedConversion(expr ast.Expr, target types.Type, explicit bool) ast.Expr {
	mustArgs(expr, target)
	src := expr.Type()
	if src == nil || types.IsNull(src) {
		return nil
	}
	op := e.lookupOperator(expr, src, target, explicit)
	if op == nil {
		return nil
	}
	var in ast.Expr
	if explicit {
		in = e.explicit(expr, op.From, false)
	} else {
		in = e.implicit(expr, op.From, false)
	}
	if in == nil {
		return nil
	}
	out := ast.Expr(ast.NewUserConversion(in, op, op.To))
	if explicit {
		return e.explicit(out, target, false)
	}
	return e.implicit(out, target, false)
}

// lookupOperator 查找运算符；常量表达式的适用性依赖于值，不进入缓存
func (e *Engine) lookupOperator(expr ast.Expr, src, target types.Type, explicit bool) *types.Operator {
	_, isConst := ast.ConstValue(expr)
	if !isConst {
		if op, ok := e.cache(explicit).Lookup(src, target); ok {
			return op
		}
	}
	op := e.selectOperator(expr, src, target, explicit)
	if !isConst {
		e.cache(explicit).Insert(src, target, op)
	}
	return op
}

// operatorSources 声明可能适用运算符的类型：源和目标及其基类
func (e *Engine) operatorSources(src, target types.Type) []types.Type {
	var out []types.Type
	add := func(t types.Type) {
		if n, ok := t.(*types.Nullable); ok {
			t = n.Elem
		}
		for i := 0; t != nil && i < 64; i++ {
			n := e.types.Decl(t)
			if n == nil || n == e.types.Object {
				return
			}
			dup := false
			for _, seen := range out {
				if types.Identical(seen, t) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, t)
			}
			if n.Kind != types.Class {
				return
			}
			t = e.types.BaseType(t)
		}
	}
	add(src)
	add(target)
	return out
}

// encompasses a 包含 b：存在 b 到 a 的标准隐式转换
func (e *Engine) encompasses(a, b types.Type) bool {
	return e.StandardConversionExists(b, a)
}

func (e *Engine) selectOperator(expr ast.Expr, src, target types.Type, explicit bool) *types.Operator {
	var candidates []*types.Operator
	for _, t := range e.operatorSources(src, target) {
		for _, op := range e.types.Operators(t) {
			if !explicit && !op.Widening {
				continue
			}
			if e.applicable(op, expr, src, target, explicit) {
				candidates = append(candidates, op)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sx := e.FindMostSpecificSource(candidates, expr, explicit)
	if sx == nil {
		return nil
	}
	tx := e.FindMostSpecificTarget(candidates, target, explicit)
	if tx == nil {
		return nil
	}
	var match *types.Operator
	for _, op := range candidates {
		if types.Identical(op.From, sx) && types.Identical(op.To, tx) {
			if match != nil && match != op {
				return nil
			}
			match = op
		}
	}
	return match
}

func (e *Engine) applicable(op *types.Operator, expr ast.Expr, src, target types.Type, explicit bool) bool {
	if !explicit {
		return e.implicit(expr, op.From, false) != nil && e.encompasses(target, op.To)
	}
	fromOK := e.implicit(expr, op.From, false) != nil || e.encompasses(src, op.From)
	toOK := e.encompasses(target, op.To) || e.encompasses(op.To, target)
	return fromOK && toOK
}

// FindMostSpecificSource 候选运算符中最具体的源类型：
// 有运算符恰好从源类型转换时就是源类型；隐式转换取被包含最深的类型；
// 显式转换优先在包含源类型的候选中取被包含最深的，否则取包含最广的。
func (e *Engine) FindMostSpecificSource(ops []*types.Operator, source ast.Expr, explicit bool) types.Type {
	src := source.Type()
	var froms []types.Type
	for _, op := range ops {
		if types.Identical(op.From, src) {
			return src
		}
		froms = appendUnique(froms, op.From)
	}
	if !explicit {
		return e.mostEncompassed(froms)
	}
	var enc []types.Type
	for _, t := range froms {
		if e.implicit(source, t, false) != nil {
			enc = append(enc, t)
		}
	}
	if len(enc) > 0 {
		return e.mostEncompassed(enc)
	}
	return e.mostEncompassing(froms)
}

// FindMostSpecificTarget 候选运算符中最具体的目标类型，规则与源类型对称
func (e *Engine) FindMostSpecificTarget(ops []*types.Operator, target types.Type, explicit bool) types.Type {
	var tos []types.Type
	for _, op := range ops {
		if types.Identical(op.To, target) {
			return target
		}
		tos = appendUnique(tos, op.To)
	}
	if !explicit {
		return e.mostEncompassing(tos)
	}
	var encd []types.Type
	for _, t := range tos {
		if e.encompasses(target, t) {
			encd = append(encd, t)
		}
	}
	if len(encd) > 0 {
		return e.mostEncompassing(encd)
	}
	return e.mostEncompassed(tos)
}

// mostEncompassed 集合中被其他所有类型包含的唯一类型，逐对检查标准隐式转换
func (e *Engine) mostEncompassed(ts []types.Type) types.Type {
	var found types.Type
	for _, x := range ts {
		all := true
		for _, y := range ts {
			if x != y && !e.encompasses(y, x) {
				all = false
				break
			}
		}
		if all {
			if found != nil {
				return nil
			}
			found = x
		}
	}
	return found
}

// mostEncompassing 集合中包含其他所有类型的唯一类型
func (e *Engine) mostEncompassing(ts []types.Type) types.Type {
	var found types.Type
	for _, x := range ts {
		all := true
		for _, y := range ts {
			if x != y && !e.encompasses(x, y) {
				all = false
				break
			}
		}
		if all {
			if found != nil {
				return nil
			}
			found = x
		}
	}
	return found
}

func appendUnique(ts []types.Type, t types.Type) []types.Type {
	for _, x := range ts {
		if types.Identical(x, t) {
			return ts
		}
	}
	return append(ts, t)
}
