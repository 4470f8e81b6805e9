package compiler

import (
	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/generic"
	"github.com/tangzhangming/vbc/internal/types"
)

// candidate 重载解析中一个可用的方法，参数已替换为实际类型
type candidate struct {
	method    *types.Method
	params    []*types.Parameter
	result    types.Type
	typeArgs  []types.Type
	expanded  bool // 按 ParamArray 展开形式匹配
	narrowing bool // 至少一个实参需要收窄转换
}

// rejection 方法不可用的原因，只有一个候选时用来报告具体错误
type rejection int

const (
	rejectArgs rejection = iota
	rejectArity
	rejectInference
)

func (b *binder) invoke(x *ast.Invoke) ast.Expr {
	fn := b.expr(x.Fn)
	if fn == nil {
		return nil
	}
	if fn.Class() == ast.ClassMethodGroup {
		return b.call(x, fn.(*ast.MethodGroup), x.Args)
	}
	if fn.Class() == ast.ClassType {
		diag.Errorf(b.sink, diag.ErrNotInvocable, x.Loc, describe(fn))
		return nil
	}
	if fn = b.rvalue(fn); fn == nil {
		return nil
	}
	t := fn.Type()
	if arr, ok := t.(*types.Array); ok {
		return b.index(x, fn, arr)
	}
	if sig := b.m.DelegateSignature(t); sig != nil {
		m := &types.Method{Name: "Invoke", Owner: b.m.Decl(t), Params: sig.Params, Result: sig.Result, Public: true}
		g := &ast.MethodGroup{ExprBase: ast.At(x.Loc), Receiver: fn, Methods: []*types.Method{m}}
		g.Bind(nil, ast.ClassMethodGroup)
		return b.call(x, g, x.Args)
	}
	diag.Errorf(b.sink, diag.ErrNotInvocable, x.Loc, describe(x.Fn))
	return nil
}

// index 数组元素访问，每个下标转换为 Integer
func (b *binder) index(x *ast.Invoke, arr ast.Expr, t *types.Array) ast.Expr {
	if len(x.Args) != t.Rank {
		diag.Errorf(b.sink, diag.ErrArgCount, x.Loc, describe(x.Fn), t.Rank, len(x.Args))
		return nil
	}
	ok := true
	for i, a := range x.Args {
		v := b.value(a)
		if v == nil {
			ok = false
			continue
		}
		if conv := b.engine.ImplicitConversionRequired(v, types.Integer, a.Pos(), b.sink); conv != nil {
			x.Args[i] = conv
		} else {
			ok = false
		}
	}
	if !ok {
		return nil
	}
	x.Fn = arr
	x.Bind(t.Elem, ast.ClassVariable)
	return x
}

// bindArgs 绑定实参；匿名方法和 AddressOf 保持未定型，由重载解析按形参类型转换
func (b *binder) bindArgs(args []ast.Expr) ([]ast.Expr, bool) {
	out := make([]ast.Expr, len(args))
	ok := true
	for i, a := range args {
		if out[i] = b.operand(a); out[i] == nil {
			ok = false
		}
	}
	return out, ok
}

// call 在方法组中选择与实参匹配的方法：优先只需拓宽转换的方法，
// Option Strict Off 时也接受需要收窄的方法。泛型方法未给出类型实参时先推断。
func (b *binder) call(x *ast.Invoke, g *ast.MethodGroup, args []ast.Expr) ast.Expr {
	bound, ok := b.bindArgs(args)
	if !ok {
		return nil
	}

	var widening, narrowing *candidate
	var lastReason rejection
	var lastErr error
	for _, m := range g.Methods {
		c, reason, err := b.candidate(g, m, bound)
		if c == nil {
			lastReason, lastErr = reason, err
			continue
		}
		if !c.narrowing {
			widening = c
			break
		}
		if narrowing == nil {
			narrowing = c
		}
	}
	chosen := widening
	if chosen == nil {
		chosen = narrowing
	}
	if chosen == nil {
		b.reportNoMatch(x, g, bound, lastReason, lastErr)
		return nil
	}

	if len(chosen.typeArgs) > 0 {
		b.u.c.Checker.CheckArguments(chosen.method.TypeParams, chosen.typeArgs, x.Loc)
	}
	for i, a := range bound {
		t := chosen.paramType(i)
		if t == nil {
			continue
		}
		conv := b.engine.ImplicitConversionRequired(a, t, a.Pos(), b.sink)
		if conv == nil {
			return nil
		}
		bound[i] = conv
	}

	g.TypeArgs = chosen.typeArgs
	x.Fn = g
	x.Args = bound
	x.Method = chosen.method
	x.Bind(chosen.result, ast.ClassValue)
	return x
}

// paramType 第 i 个实参对应的形参类型；展开形式下尾部实参对应 ParamArray 的元素类型
func (c *candidate) paramType(i int) types.Type {
	last := len(c.params) - 1
	if c.expanded && i >= last {
		if arr, ok := c.params[last].Type.(*types.Array); ok {
			return arr.Elem
		}
		return nil
	}
	if i < len(c.params) {
		return c.params[i].Type
	}
	return nil
}

// candidate 用实参检查方法 m，返回替换后的候选；不可用时返回原因
func (b *binder) candidate(g *ast.MethodGroup, m *types.Method, args []ast.Expr) (*candidate, rejection, error) {
	var recv types.Type
	if g.Receiver != nil {
		recv = g.Receiver.Type()
	}
	s := types.Substitution{}
	if m.Owner != nil && recv != nil {
		for p, t := range b.m.MemberSubstitution(recv, m.Owner) {
			s[p] = t
		}
	}

	typeArgs := g.TypeArgs
	switch {
	case len(typeArgs) > 0 && len(typeArgs) != len(m.TypeParams):
		return nil, rejectArity, nil
	case len(typeArgs) == 0 && len(m.TypeParams) > 0:
		formals := make([]types.Type, len(m.Params))
		for i, p := range m.Params {
			formals[i] = b.m.Substitute(p.Type, s)
		}
		actuals := make([]types.Type, len(args))
		for i, a := range args {
			actuals[i] = a.Type()
		}
		last := len(m.Params) - 1
		inferred, err := generic.InferTypeArguments(b.m, m.TypeParams, formals, actuals, last >= 0 && m.Params[last].ParamArray)
		if err != nil {
			return nil, rejectInference, err
		}
		typeArgs = inferred
	}
	for p, t := range types.SubstitutionFor(m.TypeParams, typeArgs) {
		s[p] = t
	}

	c := &candidate{method: m, typeArgs: typeArgs, result: types.Void}
	if m.Result != nil {
		c.result = b.m.Substitute(m.Result, s)
	}
	for _, p := range m.Params {
		q := *p
		q.Type = b.m.Substitute(p.Type, s)
		c.params = append(c.params, &q)
	}

	if !c.arityOK(len(args), false) && !c.arityOK(len(args), true) {
		return nil, rejectArity, nil
	}
	if c.arityOK(len(args), false) && b.match(c, args) {
		return c, 0, nil
	}
	if c.arityOK(len(args), true) {
		c.expanded = true
		if b.match(c, args) {
			return c, 0, nil
		}
	}
	return nil, rejectArgs, nil
}

// arityOK 实参个数是否与普通形式或展开形式相容；省略的形参必须是 Optional
func (c *candidate) arityOK(n int, expanded bool) bool {
	last := len(c.params) - 1
	if expanded {
		if last < 0 || !c.params[last].ParamArray {
			return false
		}
		if _, ok := c.params[last].Type.(*types.Array); !ok {
			return false
		}
		return n >= last
	}
	if n > len(c.params) {
		return false
	}
	for _, p := range c.params[n:] {
		if !p.Optional && !p.ParamArray {
			return false
		}
	}
	return true
}

// match 每个实参能否转换到形参类型，同时记录是否需要收窄
func (b *binder) match(c *candidate, args []ast.Expr) bool {
	c.narrowing = false
	for i, a := range args {
		t := c.paramType(i)
		if t == nil {
			continue
		}
		if b.engine.WideningConversionExists(a, t) {
			continue
		}
		if b.engine.Strict() || b.engine.WideningAndNarrowingConversion(a, t) == nil {
			return false
		}
		c.narrowing = true
	}
	return true
}

// reportNoMatch 只有一个方法时报告具体原因，否则报告没有可访问的重载
func (b *binder) reportNoMatch(x *ast.Invoke, g *ast.MethodGroup, args []ast.Expr, reason rejection, err error) {
	name := g.Methods[0].Name
	if len(g.Methods) > 1 {
		diag.Errorf(b.sink, diag.ErrNoAccessibleMethod, x.Loc, name)
		return
	}
	m := g.Methods[0]
	switch reason {
	case rejectArity:
		want := len(m.Params)
		if len(g.TypeArgs) > 0 && len(g.TypeArgs) != len(m.TypeParams) {
			diag.Errorf(b.sink, diag.ErrTypeArgCount, x.Loc, m.String(), len(m.TypeParams), len(g.TypeArgs))
			return
		}
		diag.Errorf(b.sink, diag.ErrArgCount, x.Loc, name, want, len(args))
		return
	case rejectInference:
		generic.ReportInference(b.sink, err, m.String(), x.Loc)
		return
	}

	// 逐个转换实参，由转换引擎报告第一个失败的转换
	before := b.u.c.Diags.ErrorCount()
	c, _, _ := b.candidate(&ast.MethodGroup{Receiver: g.Receiver, Methods: g.Methods, TypeArgs: g.TypeArgs}, m, nil)
	params := m.Params
	if c != nil {
		params = c.params
	}
	for i, a := range args {
		if i >= len(params) || params[i].Type == nil {
			break
		}
		if b.engine.ImplicitConversionRequired(a, params[i].Type, a.Pos(), b.sink) == nil {
			break
		}
	}
	if b.u.c.Diags.ErrorCount() == before {
		diag.Errorf(b.sink, diag.ErrNoAccessibleMethod, x.Loc, name)
	}
}

// construct New T(args)：抽象类和接口不能实例化，委托从一个方法组或匿名方法创建
func (b *binder) construct(x *ast.NewObject, t types.Type) ast.Expr {
	if b.m.IsAbstract(t) {
		diag.Errorf(b.sink, diag.ErrAbstractInstantiate, x.Loc, t.String())
		return nil
	}
	if b.m.IsDelegate(t) {
		if len(x.Args) != 1 {
			diag.Errorf(b.sink, diag.ErrArgCount, x.Loc, "New", 1, len(x.Args))
			return nil
		}
		arg := b.operand(x.Args[0])
		if arg == nil {
			return nil
		}
		return b.engine.ImplicitConversionRequired(arg, t, x.Loc, b.sink)
	}

	def := b.m.Decl(t)
	if def == nil || len(def.Ctors) == 0 || (len(x.Args) == 0 && def.Kind == types.Structure) {
		if len(x.Args) > 0 {
			diag.Errorf(b.sink, diag.ErrArgCount, x.Loc, "New", 0, len(x.Args))
			return nil
		}
		x.Bind(t, ast.ClassValue)
		return x
	}

	g := &ast.MethodGroup{ExprBase: ast.At(x.Loc), Receiver: b.typeValue(x.Loc, t), Methods: def.Ctors}
	g.Bind(nil, ast.ClassMethodGroup)
	inv := &ast.Invoke{ExprBase: ast.At(x.Loc), Fn: g}
	if b.call(inv, g, x.Args) == nil {
		return nil
	}
	x.Args = inv.Args
	x.Bind(t, ast.ClassValue)
	return x
}
