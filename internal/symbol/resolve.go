package symbol

import (
	"strings"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/generic"
	"github.com/tangzhangming/vbc/internal/types"
)

// Scope 解析类型引用的作用域：当前方法的类型参数、包含类型链、
// 命名空间链、文件的 Imports，最后是全局名称
type Scope struct {
	table  *Table
	entry  *Entry
	method *types.Method
}

// Scope 类型声明 e 内部的作用域；e 为 nil 时只有全局名称
func (t *Table) Scope(e *Entry) *Scope {
	return &Scope{table: t, entry: e}
}

// WithMethod 加入方法的类型参数
func (s *Scope) WithMethod(m *types.Method) *Scope {
	return &Scope{table: s.table, entry: s.entry, method: m}
}

// Types 类型管理器
func (s *Scope) Types() *types.Manager { return s.table.types }

// Entry 作用域所在的类型声明
func (s *Scope) Entry() *Entry { return s.entry }

// Method 作用域所在的方法
func (s *Scope) Method() *types.Method { return s.method }

// ResolveType 解析类型引用；失败时报告并返回 nil
func (s *Scope) ResolveType(te ast.TypeExpr) types.Type {
	m := s.table.types
	switch x := te.(type) {
	case *ast.NamedType:
		return s.resolveNamed(x)
	case *ast.ArrayType:
		if elem := s.ResolveType(x.Elem); elem != nil {
			return m.ArrayOf(elem, x.Rank)
		}
	case *ast.NullableType:
		if elem := s.ResolveType(x.Elem); elem != nil {
			return m.NullableOf(elem)
		}
	case *ast.PointerType:
		if elem := s.ResolveType(x.Elem); elem != nil {
			return m.PointerTo(elem)
		}
	}
	return nil
}

func (s *Scope) resolveNamed(x *ast.NamedType) types.Type {
	sink := s.table.sink
	t := s.lookup(x.Name)
	if t == nil {
		diag.Errorf(sink, diag.ErrTypeNotDefined, x.Loc, x.Name)
		return nil
	}
	def, _ := t.(*types.Named)
	want := 0
	if def != nil {
		want = len(def.TypeParams)
	}
	if want != len(x.Args) {
		diag.Errorf(sink, diag.ErrTypeArgCount, x.Loc, x.Name, want, len(x.Args))
		return nil
	}
	if want == 0 {
		return t
	}
	args := make([]types.Type, len(x.Args))
	for i, a := range x.Args {
		if args[i] = s.ResolveType(a); args[i] == nil {
			return nil
		}
	}
	s.table.checkInstance(def, args, x.Loc)
	return s.table.types.Instantiate(def, args)
}

// LookupType 按作用域顺序查找类型名，找不到时返回 nil，不报告
func (s *Scope) LookupType(name string) types.Type { return s.lookup(name) }

// lookup 按作用域顺序查找名称
func (s *Scope) lookup(name string) types.Type {
	if !strings.Contains(name, ".") {
		if p := s.typeParam(name); p != nil {
			return p
		}
	}
	m := s.table.types
	var ns string
	var imports []string
	for e := s.entry; e != nil; e = e.Outer {
		if t := m.Lookup(e.Type.FullName() + "." + name); t != nil {
			return t
		}
		ns, imports = e.Namespace, e.Imports
	}
	for ns != "" {
		if t := m.Lookup(ns + "." + name); t != nil {
			return t
		}
		i := strings.LastIndexByte(ns, '.')
		if i < 0 {
			break
		}
		ns = ns[:i]
	}
	for _, imp := range imports {
		if t := m.Lookup(imp + "." + name); t != nil {
			return t
		}
	}
	return m.Lookup(name)
}

func (s *Scope) typeParam(name string) *types.Param {
	if s.method != nil {
		for _, p := range s.method.TypeParams {
			if strings.EqualFold(p.Name, name) {
				return p
			}
		}
	}
	for e := s.entry; e != nil; e = e.Outer {
		for _, p := range e.Type.TypeParams {
			if strings.EqualFold(p.Name, name) {
				return p
			}
		}
	}
	return nil
}

// checkInstance 检查泛型实例的类型实参；约束尚未全部定义时推迟
func (t *Table) checkInstance(def *types.Named, args []types.Type, loc diag.Location) {
	if t.checker == nil {
		return
	}
	if !t.bound {
		t.pending = append(t.pending, instantiation{def, args, loc})
		return
	}
	t.checker.CheckArguments(def.TypeParams, args, loc)
}

// Resolve 解析全部已收集的声明：类型参数约束、继承关系、成员签名，
// 最后检查此前推迟的泛型实例
func (t *Table) Resolve() {
	for _, e := range t.entries {
		if e.primary {
			generic.Finalize(e.typeParams, t.Scope(e), t.sink)
		}
	}
	for _, e := range t.entries {
		t.resolveHierarchy(e)
	}
	t.checkCycles()
	for _, e := range t.entries {
		t.resolveMembers(e)
	}

	t.bound = true
	pending := t.pending
	t.pending = nil
	for _, p := range pending {
		t.checkInstance(p.def, p.args, p.loc)
	}
}

// resolveHierarchy 解析 Inherits/Implements 和枚举的基础类型
func (t *Table) resolveHierarchy(e *Entry) {
	n, d := e.Type, e.Decl
	m := t.types
	s := t.Scope(e)
	for _, ref := range d.Inherits {
		b := s.ResolveType(ref)
		if b == nil {
			continue
		}
		switch n.Kind {
		case types.Interface:
			if !m.IsInterface(b) {
				diag.Errorf(t.sink, diag.ErrImplementsNonIface, ref.Pos(), n.Name, b.String())
				continue
			}
			n.Interfaces = append(n.Interfaces, b)
		default:
			if !m.IsClass(b) {
				diag.Errorf(t.sink, diag.ErrInheritsNonClass, ref.Pos(), n.Name, b.String())
				continue
			}
			if n.Base == nil {
				n.Base = b
			}
		}
	}
	for _, ref := range d.Implements {
		b := s.ResolveType(ref)
		if b == nil {
			continue
		}
		if !m.IsInterface(b) {
			diag.Errorf(t.sink, diag.ErrImplementsNonIface, ref.Pos(), n.Name, b.String())
			continue
		}
		n.Interfaces = append(n.Interfaces, b)
	}
	if n.Kind == types.Enum && e.primary {
		n.Underlying = types.Integer
		if d.Underlying != nil {
			u := s.ResolveType(d.Underlying)
			b, ok := u.(*types.Basic)
			switch {
			case u == nil:
			case !ok || !b.Kind().IsIntegral():
				diag.Errorf(t.sink, diag.ErrEnumUnderlying, d.Underlying.Pos(), u.String())
			default:
				n.Underlying = b
			}
		}
	}
}

// checkCycles 报告并切断继承环
func (t *Table) checkCycles() {
	for _, e := range t.entries {
		if !e.primary {
			continue
		}
		n := e.Type
		if t.reaches(n, n, make(map[*types.Named]bool)) {
			diag.Errorf(t.sink, diag.ErrInheritanceCycle, e.Decl.Loc, n.Name)
			n.Base = nil
			n.Interfaces = nil
		}
	}
}

// reaches 沿基类和接口能否从 from 到达 target
func (t *Table) reaches(from, target *types.Named, seen map[*types.Named]bool) bool {
	if seen[from] {
		return false
	}
	seen[from] = true
	next := from.Interfaces
	if from.Base != nil {
		next = append([]types.Type{from.Base}, next...)
	}
	for _, b := range next {
		d := t.types.Decl(b)
		if d == nil {
			continue
		}
		if d == target || t.reaches(d, target, seen) {
			return true
		}
	}
	return false
}

// resolveMembers 解析字段、方法、构造函数、运算符和委托签名
func (t *Table) resolveMembers(e *Entry) {
	n, d := e.Type, e.Decl
	s := t.Scope(e)
	switch n.Kind {
	case types.Enum:
		for _, em := range d.Enumerators {
			n.Fields = append(n.Fields, &types.Field{Name: em.Name, Type: n, Shared: true, Const: true, Decl: em})
		}
	case types.Delegate:
		sig := &types.Signature{Params: t.parameters(s, d.Params)}
		if d.Result != nil {
			sig.Result = s.ResolveType(d.Result)
		}
		n.Invoke = sig
	}
	for _, member := range d.Members {
		switch x := member.(type) {
		case *ast.FieldDecl:
			t.fields(s, n, x)
		case *ast.MethodDecl:
			t.method(s, n, x)
		}
	}
}

func (t *Table) fields(s *Scope, n *types.Named, x *ast.FieldDecl) {
	shared := x.Const || x.Modifiers.Has(ast.ModShared) || n.Kind == types.Module
	for _, v := range x.Vars {
		f := &types.Field{Name: v.Name, Shared: shared, Const: x.Const, Decl: v}
		switch {
		case v.TypeRef != nil:
			f.Type = s.ResolveType(v.TypeRef)
		case !x.Const && v.Init == nil:
			f.Type = t.types.Object
		}
		n.Fields = append(n.Fields, f)
	}
}

// isPublic 成员默认公开，除非声明了其他访问级别
func isPublic(m ast.Modifier) bool {
	return !m.Has(ast.ModPrivate | ast.ModProtected | ast.ModFriend)
}

func (t *Table) method(s *Scope, n *types.Named, x *ast.MethodDecl) {
	iface := n.Kind == types.Interface
	meth := &types.Method{
		Name:     x.Name,
		Owner:    n,
		Shared:   x.Modifiers.Has(ast.ModShared) || n.Kind == types.Module || x.Kind == ast.OperatorMethod,
		Public:   iface || isPublic(x.Modifiers),
		Abstract: iface || x.Modifiers.Has(ast.ModMustOverride),
		Decl:     x,
	}
	x.Sym = meth
	tps := generic.DeclareList(meth, "", x.TypeParams, t.sink)
	meth.TypeParams = generic.Params(tps)
	ms := s.WithMethod(meth)
	generic.Finalize(tps, ms, t.sink)

	meth.Params = t.parameters(ms, x.Params)
	switch {
	case x.Result != nil:
		meth.Result = ms.ResolveType(x.Result)
	case x.Kind == ast.FunctionMethod:
		meth.Result = t.types.Object
	}

	switch x.Kind {
	case ast.CtorMethod:
		n.Ctors = append(n.Ctors, meth)
	case ast.OperatorMethod:
		if strings.EqualFold(x.Name, "CType") {
			t.conversionOperator(n, meth, x)
			return
		}
		n.Methods = append(n.Methods, meth)
	default:
		n.Methods = append(n.Methods, meth)
	}
}

// conversionOperator 转换运算符必须从包含类型转换或转换到包含类型
func (t *Table) conversionOperator(n *types.Named, meth *types.Method, x *ast.MethodDecl) {
	if len(meth.Params) != 1 || meth.Params[0].Type == nil || meth.Result == nil {
		diag.Errorf(t.sink, diag.ErrOperatorSignature, x.Loc, n.Name)
		return
	}
	from, to := meth.Params[0].Type, meth.Result
	self := t.selfType(n)
	isSelf := func(ty types.Type) bool {
		if nt, ok := ty.(*types.Nullable); ok {
			ty = nt.Elem
		}
		return types.Identical(ty, self)
	}
	if !isSelf(from) && !isSelf(to) {
		diag.Errorf(t.sink, diag.ErrOperatorSignature, x.Loc, n.Name)
		return
	}
	n.Operators = append(n.Operators, &types.Operator{Widening: x.Widening, From: from, To: to, Owner: n, Method: meth})
}

// selfType 类型在自身声明中的形式；泛型类型是以自身类型参数实例化的实例
func (t *Table) selfType(n *types.Named) types.Type {
	if !n.IsGeneric() {
		return n
	}
	args := make([]types.Type, len(n.TypeParams))
	for i, p := range n.TypeParams {
		args[i] = p
	}
	return t.types.Instantiate(n, args)
}

func (t *Table) parameters(s *Scope, decls []*ast.ParamDecl) []*types.Parameter {
	out := make([]*types.Parameter, 0, len(decls))
	for _, p := range decls {
		var typ types.Type = t.types.Object
		if p.TypeRef != nil {
			typ = s.ResolveType(p.TypeRef)
		}
		p.Type = typ
		out = append(out, &types.Parameter{
			Name:       p.Name,
			Type:       typ,
			ByRef:      p.ByRef,
			Optional:   p.Optional,
			ParamArray: p.ParamArray,
		})
	}
	return out
}
