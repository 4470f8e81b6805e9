package parser

import (
	"slices"
	"strings"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/diag"
)

// 语义动作的取值辅助函数。错误恢复会让某些右部的值为 nil，
// 所以这里一律使用 comma-ok 断言。

func str(v any) string           { s, _ := v.(string); return s }
func expr(v any) ast.Expr        { e, _ := v.(ast.Expr); return e }
func typeRef(v any) ast.TypeExpr { t, _ := v.(ast.TypeExpr); return t }
func mods(v any) ast.Modifier    { m, _ := v.(ast.Modifier); return m }

func stmts(v any) []ast.Stmt                { s, _ := v.([]ast.Stmt); return s }
func exprs(v any) []ast.Expr                { s, _ := v.([]ast.Expr); return s }
func typeList(v any) []ast.TypeExpr         { s, _ := v.([]ast.TypeExpr); return s }
func decls(v any) []ast.Decl                { s, _ := v.([]ast.Decl); return s }
func vars(v any) []*ast.VarDecl             { s, _ := v.([]*ast.VarDecl); return s }
func params(v any) []*ast.ParamDecl         { s, _ := v.([]*ast.ParamDecl); return s }
func typeParams(v any) []*ast.TypeParamDecl { s, _ := v.([]*ast.TypeParamDecl); return s }

// none 空列表
func none[T any](p *parser, v []any, l []diag.Location) any { return []T(nil) }

// one 以右部第一个值开始一个列表
func one[T any](p *parser, v []any, l []diag.Location) any {
	if x, ok := v[0].(T); ok {
		return []T{x}
	}
	return []T(nil)
}

// appendAt 左递归列表：把右部第 i 个值追加到第一个值上，nil 跳过
func appendAt[T any](i int) semantic {
	return func(p *parser, v []any, l []diag.Location) any {
		list, _ := v[0].([]T)
		if x, ok := v[i].(T); ok {
			list = append(list, x)
		}
		return list
	}
}

// concatAt 把右部第 i 个列表接到第一个列表之后
func concatAt[T any](i int) semantic {
	return func(p *parser, v []any, l []diag.Location) any {
		list, _ := v[0].([]T)
		more, _ := v[i].([]T)
		return append(list, more...)
	}
}

// at 取右部第 i 个值
func at(i int) semantic {
	return func(p *parser, v []any, l []diag.Location) any { return v[i] }
}

// value 常量语义值
func value(x any) semantic {
	return func(p *parser, v []any, l []diag.Location) any { return x }
}

func discard(p *parser, v []any, l []diag.Location) any { return nil }

func binary(op ast.BinOp) semantic {
	return func(p *parser, v []any, l []diag.Location) any {
		return &ast.Binary{ExprBase: ast.At(l[0]), Op: op, X: expr(v[0]), Y: expr(v[2])}
	}
}

func unary(op ast.UnOp) semantic {
	return func(p *parser, v []any, l []diag.Location) any {
		return &ast.Unary{ExprBase: ast.At(l[0]), Op: op, X: expr(v[1])}
	}
}

func cast(kind ast.CastKind) semantic {
	return func(p *parser, v []any, l []diag.Location) any {
		return &ast.Cast{ExprBase: ast.At(l[0]), Kind: kind, X: expr(v[2]), TypeRef: typeRef(v[4])}
	}
}

// stmtList 由若干可能为 nil 的语句组成列表
func stmtList(xs ...any) []ast.Stmt {
	var out []ast.Stmt
	for _, x := range xs {
		if s, ok := x.(ast.Stmt); ok {
			out = append(out, s)
		}
	}
	return out
}

// assignOp 赋值运算符
type assignOp struct {
	op       ast.BinOp
	compound bool
}

// paramMods ByVal/ByRef/Optional/ParamArray
type paramMods struct {
	byRef, optional, paramArray bool
}

// paramTail 参数名之后的 As T = default
type paramTail struct {
	typ ast.TypeExpr
	def ast.Expr
}

var optionNames = map[string]string{
	"strict": "Strict", "explicit": "Explicit", "infer": "Infer", "compare": "Compare",
}

var optionValues = map[string][]string{
	"Strict":   {"", "On", "Off"},
	"Explicit": {"", "On", "Off"},
	"Infer":    {"", "On", "Off"},
	"Compare":  {"Binary", "Text"},
}

// option 检查 Option 语句；省略值时为 On
func (p *parser) option(loc diag.Location, name, val string) any {
	canon, ok := optionNames[strings.ToLower(name)]
	if ok {
		i := slices.IndexFunc(optionValues[canon], func(s string) bool { return strings.EqualFold(s, val) })
		if i >= 0 {
			if val = optionValues[canon][i]; val == "" {
				val = "On"
			}
			return &ast.Option{Loc: loc, Name: canon, Value: val}
		}
	}
	text := name
	if val != "" {
		text += " " + val
	}
	diag.Errorf(p.sink, diag.ErrInvalidOption, loc, text)
	return nil
}

const access = ast.ModPublic | ast.ModPrivate | ast.ModProtected | ast.ModFriend

// allowedModifiers 各种声明允许的修饰符
var allowedModifiers = map[string]ast.Modifier{
	"Class":       access | ast.ModMustInherit | ast.ModNotInheritable | ast.ModPartial,
	"Structure":   access | ast.ModPartial,
	"Module":      ast.ModPublic | ast.ModFriend | ast.ModPartial,
	"Interface":   access | ast.ModPartial,
	"Enum":        access,
	"Delegate":    access,
	"field":       access | ast.ModShared | ast.ModReadOnly,
	"constant":    access,
	"method":      access | ast.ModShared | ast.ModOverridable | ast.ModOverrides | ast.ModMustOverride,
	"constructor": access | ast.ModShared,
	"operator":    ast.ModPublic | ast.ModShared,
	"interface":   0,
}

func (p *parser) checkModifiers(m ast.Modifier, kind string, loc diag.Location) {
	for _, name := range (m &^ allowedModifiers[kind]).Names() {
		diag.Errorf(p.sink, diag.ErrModifierInvalid, loc, name, kind)
	}
	if m.Has(ast.ModMustInherit) && m.Has(ast.ModNotInheritable) {
		diag.Errorf(p.sink, diag.ErrModifierInvalid, loc, "NotInheritable", kind)
	}
}

// shareTypes Dim a, b As T：没有类型也没有初值的声明符取后面声明符的类型
func shareTypes(list []*ast.VarDecl) {
	var next ast.TypeExpr
	for i := len(list) - 1; i >= 0; i-- {
		d := list[i]
		switch {
		case d.TypeRef != nil && !d.New && d.Init == nil:
			next = d.TypeRef
		case d.TypeRef == nil && d.Init == nil && !d.New:
			d.TypeRef = next
		default:
			next = nil
		}
	}
}

func (p *parser) field(loc diag.Location, m ast.Modifier, isConst bool, v any) ast.Decl {
	list := vars(v)
	shareTypes(list)
	kind := "field"
	if isConst {
		kind = "constant"
		m |= ast.ModConst
	}
	p.checkModifiers(m&^ast.ModConst, kind, loc)
	return &ast.FieldDecl{Loc: loc, Modifiers: m, Const: isConst, Vars: list}
}

func (p *parser) localDecl(loc diag.Location, isConst bool, v any) ast.Stmt {
	list := vars(v)
	shareTypes(list)
	for _, d := range list {
		if !p.scopes.declareLocal(d.Name) {
			diag.Errorf(p.sink, diag.ErrDuplicateLocal, d.Loc, d.Name)
		}
	}
	return &ast.LocalDecl{StmtBase: ast.StmtAt(loc), Const: isConst, Vars: list}
}

// exit 检查 Exit 语句是否在匹配的方法或循环中
func (p *parser) exit(loc diag.Location, kind string) ast.Stmt {
	ok := false
	switch kind {
	case "Sub", "Function":
		if f := p.scopes.method(); f != nil && f.method != nil {
			switch f.method.Kind {
			case ast.FunctionMethod, ast.OperatorMethod:
				ok = kind == "Function"
			default:
				ok = kind == "Sub"
			}
		}
	default:
		ok = p.scopes.inLoop(kind)
	}
	if !ok {
		diag.Errorf(p.sink, diag.ErrExitOutsideLoop, loc, kind)
	}
	return &ast.Exit{StmtBase: ast.StmtAt(loc), Kind: kind}
}

// methodEnd 方法种类对应的结束语句
func methodEnd(k ast.MethodKind) string {
	switch k {
	case ast.FunctionMethod:
		return "End Function"
	case ast.OperatorMethod:
		return "End Operator"
	}
	return "End Sub"
}

// endMethod 方法体结束：检查结束语句并弹出方法帧
func (p *parser) endMethod(v []any, l []diag.Location, end string) any {
	p.scopes.pop(methodFrame)
	m, _ := v[0].(*ast.MethodDecl)
	if m == nil {
		return nil
	}
	m.Body = stmts(v[1])
	if m.Body == nil {
		m.Body = []ast.Stmt{}
	}
	if want := methodEnd(m.Kind); want != end {
		diag.Errorf(p.sink, diag.ErrMismatchedEnd, l[2], want, end)
	}
	return m
}

// methodHead 方法头：检查修饰符并进入方法帧
func (p *parser) methodHead(m *ast.MethodDecl, mod ast.Modifier, loc diag.Location) *ast.MethodDecl {
	if m == nil {
		return nil
	}
	m.Modifiers = mod
	kind := "method"
	switch m.Kind {
	case ast.CtorMethod:
		kind = "constructor"
	case ast.OperatorMethod:
		kind = "operator"
	}
	p.checkModifiers(mod, kind, loc)
	p.enterMethod(m)
	return m
}

// typeHead 类型头：检查修饰符并进入类型帧
func (p *parser) typeHead(d *ast.TypeDecl, loc diag.Location) *ast.TypeDecl {
	p.checkModifiers(d.Modifiers, d.Kind.String(), loc)
	p.enterType(d)
	return d
}

// endType 类型结束：检查 End 后的关键字并弹出类型帧
func (p *parser) endType(d *ast.TypeDecl, end any, loc diag.Location) {
	p.scopes.pop(typeFrame)
	if k, ok := end.(interface{ String() string }); ok && d != nil && k.String() != d.Kind.String() {
		diag.Errorf(p.sink, diag.ErrMismatchedEnd, loc, "End "+d.Kind.String(), "End "+k.String())
	}
}
