package compiler

import (
	"context"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/symbol"
	"github.com/tangzhangming/vbc/internal/types"
)

// evalState 字段的绑定状态，用于发现常量之间的循环依赖
type evalState int

const (
	unbound evalState = iota
	binding
	bound
)

// unit 一次编译的绑定状态。常量字段和枚举成员按需求值，
// 所以引用顺序与声明顺序无关。
type unit struct {
	c         *Context
	defStrict bool
	strict    map[string]bool // 文件名到 Option Strict

	owners map[any]*symbol.Entry // 字段和枚举成员声明所在的类型声明
	fields map[any]*types.Field
	state  map[*types.Field]evalState
}

func newUnit(c *Context, strict bool, files []*ast.File) *unit {
	u := &unit{
		c:         c,
		defStrict: strict,
		strict:    make(map[string]bool),
		owners:    make(map[any]*symbol.Entry),
		fields:    make(map[any]*types.Field),
		state:     make(map[*types.Field]evalState),
	}
	for _, f := range files {
		u.strict[f.Name] = fileStrict(f, strict)
	}
	for _, e := range c.Symbols.Entries() {
		for _, em := range e.Decl.Enumerators {
			u.owners[em] = e
		}
		for _, m := range e.Decl.Members {
			if fd, ok := m.(*ast.FieldDecl); ok {
				for _, v := range fd.Vars {
					u.owners[v] = e
				}
			}
		}
		for _, f := range e.Type.Fields {
			u.fields[f.Decl] = f
		}
	}
	return u
}

// useFile 切换到文件的 Option Strict 设置，返回恢复原设置的函数
func (u *unit) useFile(file string) func() {
	prev := u.c.Engine.Strict()
	strict, ok := u.strict[file]
	if !ok {
		strict = u.defStrict
	}
	u.c.Engine.SetStrict(strict)
	return func() { u.c.Engine.SetStrict(prev) }
}

// bindAll 绑定全部类型声明，然后检查接口实现和 MustOverride 成员
func (u *unit) bindAll(ctx context.Context) error {
	entries := u.c.Symbols.Entries()
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		restore := u.useFile(e.Decl.Loc.File)
		u.bindEntry(e)
		restore()
	}

	seen := make(map[*types.Named]bool)
	for _, e := range entries {
		n := e.Type
		if seen[n] {
			continue
		}
		seen[n] = true
		switch n.Kind {
		case types.Class, types.Structure:
			u.checkImplements(n, e.Decl.Loc)
			u.checkOverrides(n, e.Decl.Loc)
		}
	}
	return nil
}

func (u *unit) bindEntry(e *symbol.Entry) {
	for _, em := range e.Decl.Enumerators {
		if f := u.fields[em]; f != nil {
			u.field(f)
		}
	}
	for _, m := range e.Decl.Members {
		switch x := m.(type) {
		case *ast.FieldDecl:
			for _, v := range x.Vars {
				if f := u.fields[v]; f != nil {
					u.field(f)
				}
			}
		case *ast.MethodDecl:
			u.bindMethod(e, x)
		}
	}
}

// field 绑定字段：常量和枚举成员求值，初始值转换到字段类型，
// 没有 As 子句的字段取初始值的类型
func (u *unit) field(f *types.Field) {
	switch u.state[f] {
	case bound:
		return
	case binding:
		if f.Const {
			diag.Errorf(u.c.Diags, diag.ErrCircularConstant, declLoc(f.Decl), f.Name)
		} else if f.Type == nil {
			f.Type = u.c.Types.Object
		}
		return
	}
	u.state[f] = binding
	defer func() { u.state[f] = bound }()

	e := u.owners[f.Decl]
	if e == nil {
		return
	}
	restore := u.useFile(e.Decl.Loc.File)
	defer restore()

	b := u.newBinder(e, nil)
	switch d := f.Decl.(type) {
	case *ast.EnumMember:
		b.enumMember(f, d)
	case *ast.VarDecl:
		t, v := b.initializer(d, f.Type, f.Const)
		f.Type = t
		if v != nil {
			f.Value = v
		}
	}
}

func declLoc(d any) diag.Location {
	switch x := d.(type) {
	case *ast.VarDecl:
		return x.Loc
	case *ast.EnumMember:
		return x.Loc
	}
	return diag.Location{}
}

// enumMember 枚举成员的值：显式值转换到基础类型，否则为上一个成员加一，第一个成员为零
func (b *binder) enumMember(f *types.Field, d *ast.EnumMember) {
	n := b.entry.Type
	under := b.m.EnumUnderlying(n)
	if d.Value == nil {
		prev := previousMember(n, f)
		if prev == nil {
			f.Value, _ = constant.Convert(constant.IntegerValue(0), under.Kind())
			return
		}
		b.u.field(prev)
		pv, ok := prev.Value.(constant.Value)
		if !ok {
			return
		}
		one, _ := constant.Convert(constant.IntegerValue(1), under.Kind())
		v, err := constant.Fold(constant.OpAdd, pv, one)
		if err != nil {
			diag.Errorf(b.sink, diag.ErrNotRepresentable, d.Loc, under.String())
			return
		}
		f.Value = v
		return
	}

	x := b.value(d.Value)
	if x == nil {
		return
	}
	if b.m.IsEnum(x.Type()) {
		if x = b.engine.WideningAndNarrowingConversion(x, b.m.EnumUnderlying(x.Type())); x == nil {
			return
		}
	}
	conv := b.engine.ImplicitConversionRequired(x, under, d.Value.Pos(), b.sink)
	if conv == nil {
		return
	}
	v, ok := ast.ConstValue(conv)
	if !ok {
		diag.Errorf(b.sink, diag.ErrConstantRequired, d.Loc, d.Name)
		return
	}
	d.Value = conv
	f.Value = v
}

func previousMember(n *types.Named, f *types.Field) *types.Field {
	for i, x := range n.Fields {
		if x == f {
			if i == 0 {
				return nil
			}
			return n.Fields[i-1]
		}
	}
	return nil
}

// bindMethod 绑定参数默认值和方法体
func (u *unit) bindMethod(e *symbol.Entry, d *ast.MethodDecl) {
	if d.Sym == nil {
		return
	}
	b := u.newBinder(e, d)
	for _, p := range d.Params {
		if p.Default == nil || p.Type == nil {
			continue
		}
		x := b.value(p.Default)
		if x == nil {
			continue
		}
		conv := b.engine.ImplicitConversionRequired(x, p.Type, p.Default.Pos(), b.sink)
		if conv == nil {
			continue
		}
		if _, ok := ast.ConstValue(conv); !ok && !ast.IsNullLiteral(ast.Unwrap(conv)) {
			diag.Errorf(b.sink, diag.ErrConstantRequired, p.Loc, p.Name)
			continue
		}
		p.Default = conv
	}
	if d.Body != nil {
		b.block(d.Body)
	}
}

// checkImplements 类和结构必须实现所有接口（包括继承的接口）的方法
func (u *unit) checkImplements(n *types.Named, loc diag.Location) {
	m := u.c.Types
	for _, iface := range m.Interfaces(n) {
		def := m.Decl(iface)
		if def == nil {
			continue
		}
		for _, im := range def.Methods {
			if !u.implemented(n, im, n.Abstract) {
				diag.Errorf(u.c.Diags, diag.ErrMustImplement, loc, n.Name, im.Name, iface.String())
			}
		}
	}
}

// checkOverrides 非 MustInherit 的类必须重写基类链上的每个 MustOverride 方法
func (u *unit) checkOverrides(n *types.Named, loc diag.Location) {
	if n.Kind != types.Class || n.Abstract {
		return
	}
	m := u.c.Types
	seen := map[*types.Named]bool{n: true}
	for base := m.BaseType(n); base != nil; base = m.BaseType(base) {
		def := m.Decl(base)
		if def == nil || seen[def] {
			break
		}
		seen[def] = true
		for _, am := range def.Methods {
			if am.Abstract && !u.implemented(n, am, false) {
				diag.Errorf(u.c.Diags, diag.ErrMustOverride, loc, n.Name, am.Name)
			}
		}
	}
}

// implemented 沿基类链是否有同名、参数个数相同的方法；MustInherit 类可以用
// MustOverride 方法实现接口成员
func (u *unit) implemented(n *types.Named, want *types.Method, allowAbstract bool) bool {
	for _, cm := range u.c.Types.FindMethods(n, want.Name) {
		if cm.Owner != nil && cm.Owner.Kind == types.Interface {
			continue
		}
		if (allowAbstract || !cm.Abstract) && len(cm.Params) == len(want.Params) {
			return true
		}
	}
	return false
}
