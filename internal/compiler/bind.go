package compiler

import (
	"strings"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/convert"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/lexer"
	"github.com/tangzhangming/vbc/internal/symbol"
	"github.com/tangzhangming/vbc/internal/types"
)

// binder 在一个类型或方法的作用域中绑定表达式和语句。
// 绑定失败的表达式返回 nil，诊断已经上报，调用方不再重复报告。
type binder struct {
	u      *unit
	m      *types.Manager
	engine *convert.Engine
	sink   diag.Sink

	scope  *symbol.Scope
	entry  *symbol.Entry
	method *types.Method

	blocks []map[string]*ast.Local
}

func (u *unit) newBinder(e *symbol.Entry, d *ast.MethodDecl) *binder {
	b := &binder{
		u:      u,
		m:      u.c.Types,
		engine: u.c.Engine,
		sink:   u.c.Diags,
		scope:  u.c.Symbols.Scope(e),
		entry:  e,
	}
	if d != nil && d.Sym != nil {
		b.scope = b.scope.WithMethod(d.Sym)
		b.method = d.Sym
	}
	b.push()
	return b
}

func (b *binder) push() { b.blocks = append(b.blocks, make(map[string]*ast.Local)) }
func (b *binder) pop()  { b.blocks = b.blocks[:len(b.blocks)-1] }

func (b *binder) declare(l *ast.Local) {
	b.blocks[len(b.blocks)-1][strings.ToLower(l.Name)] = l
}

// local 由内向外查找局部变量
func (b *binder) local(name string) *ast.Local {
	key := strings.ToLower(name)
	for i := len(b.blocks) - 1; i >= 0; i-- {
		if l := b.blocks[i][key]; l != nil {
			return l
		}
	}
	return nil
}

func (b *binder) param(name string) *types.Parameter {
	if b.method == nil {
		return nil
	}
	for _, p := range b.method.Params {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// selfType 当前类型在自身声明中的形式
func (b *binder) selfType() types.Type {
	return entryType(b.m, b.entry)
}

func entryType(m *types.Manager, e *symbol.Entry) types.Type {
	n := e.Type
	if !n.IsGeneric() {
		return n
	}
	args := make([]types.Type, len(n.TypeParams))
	for i, p := range n.TypeParams {
		args[i] = p
	}
	return m.Instantiate(n, args)
}

func typeString(t types.Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

// describe 诊断信息中表达式的源码形式
func describe(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.MemberAccess:
		return describe(x.X) + "." + x.Name
	case *ast.Constant:
		return x.Value.String()
	case *ast.Invoke:
		return describe(x.Fn) + "(...)"
	case *ast.Paren:
		return "(" + describe(x.X) + ")"
	case *ast.Me:
		return "Me"
	case *ast.MyBase:
		return "MyBase"
	case *ast.NothingLit:
		return "Nothing"
	case *ast.TypeValue:
		return typeString(x.Target)
	}
	return "expression"
}

// value 绑定需要值的表达式：方法组按无参调用处理，类型名是错误
func (b *binder) value(e ast.Expr) ast.Expr {
	return b.rvalue(b.expr(e))
}

// rvalue 对已绑定的表达式做 value 的分类检查
func (b *binder) rvalue(x ast.Expr) ast.Expr {
	if x == nil {
		return nil
	}
	switch x.Class() {
	case ast.ClassMethodGroup:
		g := x.(*ast.MethodGroup)
		return b.call(&ast.Invoke{ExprBase: ast.At(g.Pos()), Fn: g}, g, nil)
	case ast.ClassType:
		diag.Errorf(b.sink, diag.ErrTypeAsExpr, x.Pos(), typeString(x.Type()))
		return nil
	}
	if x.Type() == nil {
		return nil
	}
	return x
}

// operand 要转换到目标类型的表达式：除值以外还可以是匿名方法或 AddressOf 方法组
func (b *binder) operand(e ast.Expr) ast.Expr {
	switch e.(type) {
	case *ast.Lambda, *ast.AddressOf:
		return b.expr(e)
	}
	return b.value(e)
}

// convert 绑定 e 并转换到 t；失败时返回原表达式
func (b *binder) convert(e ast.Expr, t types.Type) ast.Expr {
	if e == nil || t == nil {
		return e
	}
	x := b.operand(e)
	if x == nil {
		return e
	}
	if conv := b.engine.ImplicitConversionRequired(x, t, e.Pos(), b.sink); conv != nil {
		return conv
	}
	return x
}

func (b *binder) expr(e ast.Expr) ast.Expr {
	switch x := e.(type) {
	case nil:
		return nil
	case *ast.Constant:
		return x
	case *ast.NothingLit:
		x.Bind(types.Null, ast.ClassValue)
		return x
	case *ast.Ident:
		return b.ident(x)
	case *ast.MemberAccess:
		return b.memberAccess(x)
	case *ast.GenericName:
		return b.genericName(x)
	case *ast.Invoke:
		return b.invoke(x)
	case *ast.Paren:
		inner := b.value(x.X)
		if inner == nil {
			return nil
		}
		x.X = inner
		x.Bind(inner.Type(), ast.ClassValue)
		return x
	case *ast.Binary:
		return b.binary(x)
	case *ast.Unary:
		return b.unary(x)
	case *ast.NewObject:
		t := b.scope.ResolveType(x.TypeRef)
		if t == nil {
			return nil
		}
		return b.construct(x, t)
	case *ast.Cast:
		return b.cast(x)
	case *ast.AddressOf:
		if g, ok := b.expr(x.X).(*ast.MethodGroup); ok {
			return g
		}
		diag.Errorf(b.sink, diag.ErrAddressOfOperand, x.Loc)
		return nil
	case *ast.TypeOfIs:
		v := b.value(x.X)
		t := b.scope.ResolveType(x.TypeRef)
		if v == nil || t == nil {
			return nil
		}
		x.X = v
		x.Bind(types.Boolean, ast.ClassValue)
		return x
	case *ast.GetType:
		if b.scope.ResolveType(x.TypeRef) == nil {
			return nil
		}
		x.Bind(b.m.Object, ast.ClassValue)
		return x
	case *ast.Me:
		x.Bind(b.selfType(), ast.ClassValue)
		return x
	case *ast.MyBase:
		x.Bind(b.m.BaseType(b.selfType()), ast.ClassValue)
		return x
	case *ast.Lambda:
		return b.lambda(x)
	}
	return e
}

// lambda 参数都声明了类型时绑定主体；否则主体留到转换为委托时检查参数个数
func (b *binder) lambda(x *ast.Lambda) ast.Expr {
	b.push()
	defer b.pop()
	for _, p := range x.Params {
		if p.TypeRef == nil {
			return x
		}
		if p.Type = b.scope.ResolveType(p.TypeRef); p.Type == nil {
			return nil
		}
		b.declare(&ast.Local{Name: p.Name, Type: p.Type})
	}
	body := b.value(x.Body)
	if body == nil {
		return nil
	}
	x.Body = body
	return x
}

func (b *binder) typeValue(loc diag.Location, t types.Type) *ast.TypeValue {
	tv := &ast.TypeValue{ExprBase: ast.At(loc), Target: t}
	tv.Bind(t, ast.ClassType)
	return tv
}

// ident 按顺序查找：局部变量、参数、当前类型及包含类型的成员、模块成员、类型名
func (b *binder) ident(x *ast.Ident) ast.Expr {
	if l := b.local(x.Name); l != nil {
		if l.Type == nil {
			return nil
		}
		if l.Const {
			if l.Value == nil {
				return nil
			}
			return ast.NewTypedConstant(x.Loc, l.Value, l.Type)
		}
		x.Sym = l
		x.Bind(l.Type, ast.ClassVariable)
		return x
	}
	if p := b.param(x.Name); p != nil {
		if p.Type == nil {
			return nil
		}
		x.Sym = p
		x.Bind(p.Type, ast.ClassVariable)
		return x
	}
	if r, found := b.unqualified(x.Loc, x.Name); found {
		return r
	}
	if t := b.scope.LookupType(x.Name); t != nil {
		return b.typeValue(x.Loc, t)
	}
	diag.Errorf(b.sink, diag.ErrNameNotDeclared, x.Loc, x.Name)
	return nil
}

// unqualified 在当前类型、包含类型以及模块中查找成员；found 为真而结果为 nil
// 表示成员存在但绑定失败
func (b *binder) unqualified(loc diag.Location, name string) (ast.Expr, bool) {
	for e := b.entry; e != nil; e = e.Outer {
		if r, found := b.member(loc, nil, entryType(b.m, e), name); found {
			return r, true
		}
	}
	for _, e := range b.u.c.Symbols.Entries() {
		if e.Type.Kind != types.Module {
			continue
		}
		if r, found := b.member(loc, nil, e.Type, name); found {
			return r, true
		}
	}
	return nil, false
}

// member 在类型 t 及其基类中查找字段或方法；recv 为 nil 时是不带限定的引用
func (b *binder) member(loc diag.Location, recv ast.Expr, t types.Type, name string) (ast.Expr, bool) {
	if f, owner := b.m.FindField(t, name); f != nil {
		return b.fieldRef(loc, recv, f, owner), true
	}
	if ms := b.m.FindMethods(t, name); len(ms) > 0 {
		if recv == nil {
			recv = b.typeValue(loc, t)
		}
		g := &ast.MethodGroup{ExprBase: ast.At(loc), Receiver: recv, Methods: ms}
		g.Bind(nil, ast.ClassMethodGroup)
		return g, true
	}
	return nil, false
}

// fieldRef 字段引用；常量字段折叠为常量节点
func (b *binder) fieldRef(loc diag.Location, recv ast.Expr, f *types.Field, owner types.Type) ast.Expr {
	b.u.field(f)
	t := f.Type
	if t == nil {
		return nil
	}
	if def := b.m.Decl(owner); def != nil {
		t = b.m.Substitute(t, b.m.MemberSubstitution(owner, def))
	}
	if f.Const {
		v, ok := f.Value.(constant.Value)
		if !ok {
			return nil
		}
		return ast.NewTypedConstant(loc, v, t)
	}
	if recv == nil {
		id := &ast.Ident{ExprBase: ast.At(loc), Name: f.Name, Sym: f}
		id.Bind(t, ast.ClassVariable)
		return id
	}
	ma := &ast.MemberAccess{ExprBase: ast.At(loc), X: recv, Name: f.Name, Sym: f}
	ma.Bind(t, ast.ClassVariable)
	return ma
}

// dotted 由标识符和成员访问组成的限定名，以及最左边的标识符
func dotted(e ast.Expr) (name, first string, ok bool) {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name, x.Name, true
	case *ast.MemberAccess:
		n, f, ok := dotted(x.X)
		if !ok {
			return "", "", false
		}
		return n + "." + x.Name, f, true
	}
	return "", "", false
}

func (b *binder) memberAccess(x *ast.MemberAccess) ast.Expr {
	if name, first, ok := dotted(x); ok && b.local(first) == nil && b.param(first) == nil {
		if t := b.scope.LookupType(name); t != nil {
			return b.typeValue(x.Loc, t)
		}
	}
	recv := b.expr(x.X)
	if recv == nil {
		return nil
	}
	if recv.Class() != ast.ClassType {
		if recv = b.rvalue(recv); recv == nil {
			return nil
		}
	}
	t := recv.Type()
	if recv.Class() == ast.ClassType {
		if n := b.m.Decl(t); n != nil {
			if nested := b.m.Lookup(n.FullName() + "." + x.Name); nested != nil {
				return b.typeValue(x.Loc, nested)
			}
		}
	}
	if strings.EqualFold(x.Name, "New") {
		// MyBase.New(...) 和 Me.New(...) 调用构造函数；没有声明构造函数的类有隐式无参构造函数
		if n := b.m.Decl(t); n != nil {
			ctors := n.Ctors
			if len(ctors) == 0 {
				ctors = []*types.Method{{Name: "New", Owner: n, Public: true}}
			}
			g := &ast.MethodGroup{ExprBase: ast.At(x.Loc), Receiver: recv, Methods: ctors}
			g.Bind(nil, ast.ClassMethodGroup)
			return g
		}
	}
	if r, found := b.member(x.Loc, recv, t, x.Name); found {
		return r
	}
	diag.Errorf(b.sink, diag.ErrNotMember, x.Loc, x.Name, typeString(t))
	return nil
}

// genericName F(Of T) 给方法组指定类型实参，或在表达式中构造泛型类型
func (b *binder) genericName(x *ast.GenericName) ast.Expr {
	args := make([]types.Type, len(x.TypeArgs))
	for i, a := range x.TypeArgs {
		if args[i] = b.scope.ResolveType(a); args[i] == nil {
			return nil
		}
	}
	fn := b.expr(x.X)
	if fn == nil {
		return nil
	}
	switch fn.Class() {
	case ast.ClassMethodGroup:
		g := fn.(*ast.MethodGroup)
		g.TypeArgs = args
		return g
	case ast.ClassType:
		def := b.m.Decl(fn.Type())
		if def == nil || len(def.TypeParams) != len(args) {
			want := 0
			if def != nil {
				want = len(def.TypeParams)
			}
			diag.Errorf(b.sink, diag.ErrTypeArgCount, x.Loc, typeString(fn.Type()), want, len(args))
			return nil
		}
		b.u.c.Checker.CheckArguments(def.TypeParams, args, x.Loc)
		return b.typeValue(x.Loc, b.m.Instantiate(def, args))
	}
	diag.Errorf(b.sink, diag.ErrNotInvocable, x.Loc, describe(x.X))
	return nil
}

// cast CType/DirectCast/TryCast 以及 CInt 等内建转换函数
func (b *binder) cast(x *ast.Cast) ast.Expr {
	var target types.Type
	if x.Kind == ast.Intrinsic {
		k, object, ok := lexer.ConversionTarget(x.Name)
		switch {
		case !ok:
			diag.Errorf(b.sink, diag.ErrNameNotDeclared, x.Loc, x.Name)
			return nil
		case object:
			target = b.m.Object
		default:
			target = types.BasicOf(k)
		}
	} else if target = b.scope.ResolveType(x.TypeRef); target == nil {
		return nil
	}

	var operand ast.Expr
	if x.Kind == ast.CType {
		operand = b.operand(x.X)
	} else {
		operand = b.value(x.X)
	}
	if operand == nil {
		return nil
	}

	var r ast.Expr
	switch x.Kind {
	case ast.DirectCast:
		r = b.engine.DirectCastConversion(operand, target)
	case ast.TryCast:
		r = b.engine.TryCastConversion(operand, target)
	default:
		return b.engine.ConvertExplicit(operand, target, x.Loc, b.sink)
	}
	if r == nil {
		diag.Errorf(b.sink, diag.ErrCannotConvert, x.Loc, typeString(operand.Type()), target.String())
	}
	return r
}
