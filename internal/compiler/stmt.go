package compiler

import (
	"strings"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/types"
)

// block 在新的局部作用域中绑定语句列表
func (b *binder) block(list []ast.Stmt) {
	b.push()
	defer b.pop()
	for _, s := range list {
		b.stmt(s)
	}
}

func (b *binder) stmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.LocalDecl:
		b.localDecl(x)
	case *ast.Assign:
		b.assign(x)
	case *ast.ExprStmt:
		if v := b.value(x.X); v != nil {
			x.X = v
		}
	case *ast.If:
		x.Cond = b.condition(x.Cond)
		b.block(x.Then)
		for _, ei := range x.ElseIfs {
			ei.Cond = b.condition(ei.Cond)
			b.block(ei.Body)
		}
		b.block(x.Else)
	case *ast.While:
		x.Cond = b.condition(x.Cond)
		b.block(x.Body)
	case *ast.DoLoop:
		if x.Cond != nil {
			x.Cond = b.condition(x.Cond)
		}
		b.block(x.Body)
	case *ast.For:
		b.forStmt(x)
	case *ast.Return:
		b.returnStmt(x)
	case *ast.Throw:
		if x.Value != nil {
			x.Value = b.convert(x.Value, b.m.Exception)
		}
	case *ast.Exit:
	}
}

func (b *binder) condition(e ast.Expr) ast.Expr {
	return b.convert(e, types.Boolean)
}

func (b *binder) localDecl(d *ast.LocalDecl) {
	for _, v := range d.Vars {
		var t types.Type
		if v.TypeRef != nil {
			t = b.scope.ResolveType(v.TypeRef)
		}
		l := &ast.Local{Name: v.Name, Const: d.Const, Decl: v}
		if v.TypeRef == nil || t != nil {
			l.Type, l.Value = b.initializer(v, t, d.Const)
		}
		b.declare(l)
		v.Sym = l
	}
}

// initializer 绑定变量或常量的初始值并转换到声明类型；没有 As 子句时取初始值的类型。
// 常量的初始值必须是常量表达式。
func (b *binder) initializer(v *ast.VarDecl, t types.Type, isConst bool) (types.Type, constant.Value) {
	if v.TypeRef != nil && t == nil {
		return nil, nil
	}
	if v.New {
		x := b.construct(&ast.NewObject{ExprBase: ast.At(v.Loc), TypeRef: v.TypeRef, Args: v.Args}, t)
		if x != nil {
			v.Init = x
		}
		return t, nil
	}
	if v.Init == nil {
		if isConst {
			diag.Errorf(b.sink, diag.ErrConstantRequired, v.Loc, v.Name)
		}
		if t == nil {
			t = b.m.Object
		}
		return t, nil
	}

	x := b.operand(v.Init)
	if x == nil {
		if t == nil && !isConst {
			t = b.m.Object
		}
		return t, nil
	}
	if t == nil {
		t = x.Type()
		if t == nil || types.IsNull(t) {
			t = b.m.Object
		}
	}
	conv := b.engine.ImplicitConversionRequired(x, t, v.Init.Pos(), b.sink)
	if conv == nil {
		return t, nil
	}
	v.Init = conv
	if !isConst {
		return t, nil
	}
	cv, ok := ast.ConstValue(conv)
	if !ok {
		diag.Errorf(b.sink, diag.ErrConstantRequired, v.Loc, v.Name)
		return t, nil
	}
	return t, cv
}

// returnVariable 函数体中对函数名赋值即设置返回值
func (b *binder) returnVariable(e ast.Expr) ast.Expr {
	id, ok := e.(*ast.Ident)
	if !ok || b.method == nil || b.method.Result == nil || !strings.EqualFold(id.Name, b.method.Name) {
		return nil
	}
	if b.local(id.Name) != nil || b.param(id.Name) != nil {
		return nil
	}
	id.Sym = b.method
	id.Bind(b.method.Result, ast.ClassVariable)
	return id
}

func (b *binder) assign(s *ast.Assign) {
	target := b.returnVariable(s.Target)
	if target == nil {
		target = b.expr(s.Target)
	}
	if target == nil {
		b.operand(s.Value)
		return
	}
	if target.Class() != ast.ClassVariable {
		diag.Errorf(b.sink, diag.ErrNotAVariable, s.Target.Pos(), describe(s.Target))
		return
	}

	var v ast.Expr
	if s.Compound {
		r := b.value(s.Value)
		if r == nil {
			return
		}
		v = b.applyBinary(&ast.Binary{ExprBase: ast.At(s.Loc), Op: s.Op, X: target, Y: r}, target, r)
	} else {
		v = b.operand(s.Value)
	}
	if v == nil {
		return
	}
	if conv := b.engine.ImplicitConversionRequired(v, target.Type(), s.Value.Pos(), b.sink); conv != nil {
		s.Target, s.Value = target, conv
	}
}

// forStmt 带 As 的计数变量在循环内声明；未声明的名称按初始值的类型隐式声明
func (b *binder) forStmt(s *ast.For) {
	b.push()
	defer b.pop()

	from := b.value(s.From)
	id, _ := s.Counter.(*ast.Ident)
	switch {
	case s.Var != nil:
		t := b.scope.ResolveType(s.Var.TypeRef)
		if t == nil {
			return
		}
		l := &ast.Local{Name: s.Var.Name, Type: t, Decl: s.Var}
		b.declare(l)
		s.Var.Sym = l
	case id != nil && from != nil && !b.declared(id.Name):
		t := from.Type()
		if types.IsNull(t) {
			t = b.m.Object
		}
		b.declare(&ast.Local{Name: id.Name, Type: t})
	}

	counter := b.expr(s.Counter)
	if counter == nil {
		b.block(s.Body)
		return
	}
	if counter.Class() != ast.ClassVariable {
		diag.Errorf(b.sink, diag.ErrNotAVariable, s.Counter.Pos(), describe(s.Counter))
		b.block(s.Body)
		return
	}
	s.Counter = counter
	t := counter.Type()
	if from != nil {
		if conv := b.engine.ImplicitConversionRequired(from, t, s.From.Pos(), b.sink); conv != nil {
			s.From = conv
		}
	}
	s.To = b.convert(s.To, t)
	if s.Step != nil {
		s.Step = b.convert(s.Step, t)
	}
	b.block(s.Body)
}

// declared 名称是否已经是局部变量、参数、成员或类型
func (b *binder) declared(name string) bool {
	if b.local(name) != nil || b.param(name) != nil || b.scope.LookupType(name) != nil {
		return true
	}
	for e := b.entry; e != nil; e = e.Outer {
		t := entryType(b.m, e)
		if f, _ := b.m.FindField(t, name); f != nil {
			return true
		}
		if len(b.m.FindMethods(t, name)) > 0 {
			return true
		}
	}
	return false
}

func (b *binder) returnStmt(s *ast.Return) {
	if s.Value == nil {
		return
	}
	if b.method == nil || b.method.Result == nil {
		diag.Errorf(b.sink, diag.ErrReturnInSub, s.Loc)
		return
	}
	s.Value = b.convert(s.Value, b.method.Result)
}
