package ast

import (
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/types"
)

// Modifier 声明修饰符位集
type Modifier uint32

const (
	ModPublic Modifier = 1 << iota
	ModPrivate
	ModProtected
	ModFriend
	ModShared
	ModMustInherit
	ModNotInheritable
	ModMustOverride
	ModOverridable
	ModOverrides
	ModReadOnly
	ModConst
	ModPartial
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModPublic, "Public"}, {ModPrivate, "Private"}, {ModProtected, "Protected"},
	{ModFriend, "Friend"}, {ModShared, "Shared"}, {ModMustInherit, "MustInherit"},
	{ModNotInheritable, "NotInheritable"}, {ModMustOverride, "MustOverride"},
	{ModOverridable, "Overridable"}, {ModOverrides, "Overrides"},
	{ModReadOnly, "ReadOnly"}, {ModConst, "Const"}, {ModPartial, "Partial"},
}

// Has 是否包含修饰符
func (m Modifier) Has(x Modifier) bool { return m&x != 0 }

// Names 修饰符名称列表
func (m Modifier) Names() []string {
	var out []string
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			out = append(out, mn.name)
		}
	}
	return out
}

// Decl 声明
type Decl interface {
	Node
	declNode()
}

// File 一个源文件
type File struct {
	Name    string
	Options []*Option
	Imports []string
	Members []Decl
}

// Option Option Strict On
type Option struct {
	Loc   diag.Location
	Name  string
	Value string
}

func (o *Option) Pos() diag.Location { return o.Loc }

// Namespace Namespace X ... End Namespace
type Namespace struct {
	Loc     diag.Location
	Name    string
	Members []Decl
}

func (n *Namespace) Pos() diag.Location { return n.Loc }
func (*Namespace) declNode()            {}

// TypeDecl Class/Structure/Interface/Module/Enum/Delegate 声明
type TypeDecl struct {
	Loc        diag.Location
	Kind       types.TypeKind
	Name       string
	Modifiers  Modifier
	TypeParams []*TypeParamDecl
	Inherits   []TypeExpr
	Implements []TypeExpr
	Members    []Decl
	// Underlying 枚举的 As 类型
	Underlying  TypeExpr
	Enumerators []*EnumMember
	// Invoke 委托签名
	Params []*ParamDecl
	Result TypeExpr

	Sym *types.Named
}

func (d *TypeDecl) Pos() diag.Location { return d.Loc }
func (*TypeDecl) declNode()            {}

// ConstraintKind 泛型约束子句的种类
type ConstraintKind int

const (
	ConstraintClass ConstraintKind = iota
	ConstraintStructure
	ConstraintNew
	ConstraintType
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintClass:
		return "Class"
	case ConstraintStructure:
		return "Structure"
	case ConstraintNew:
		return "New"
	}
	return "Type"
}

// Constraint 约束子句 As {Class, Structure, New, T}
type Constraint struct {
	Loc     diag.Location
	Kind    ConstraintKind
	TypeRef TypeExpr
}

// TypeParamDecl 泛型参数声明
type TypeParamDecl struct {
	Loc         diag.Location
	Name        string
	Constraints []*Constraint
	Sym         *types.Param
}

// EnumMember 枚举成员
type EnumMember struct {
	Loc   diag.Location
	Name  string
	Value Expr
}

// FieldDecl 字段或常量成员
type FieldDecl struct {
	Loc       diag.Location
	Modifiers Modifier
	Const     bool
	Vars      []*VarDecl
}

func (d *FieldDecl) Pos() diag.Location { return d.Loc }
func (*FieldDecl) declNode()            {}

// VarDecl 变量声明符 x As T = init
type VarDecl struct {
	Loc     diag.Location
	Name    string
	TypeRef TypeExpr
	Init    Expr
	// New Dim x As New T(args)
	New  bool
	Args []Expr
	Sym  *Local
}

// MethodKind 方法种类
type MethodKind int

const (
	SubMethod MethodKind = iota
	FunctionMethod
	CtorMethod
	OperatorMethod
)

// MethodDecl Sub/Function/Sub New/Operator 声明
type MethodDecl struct {
	Loc        diag.Location
	Kind       MethodKind
	Modifiers  Modifier
	Name       string
	TypeParams []*TypeParamDecl
	Params     []*ParamDecl
	Result     TypeExpr
	// Widening 转换运算符是 Widening 还是 Narrowing
	Widening bool
	// Body 接口成员和 MustOverride 方法为 nil
	Body []Stmt
	Sym  *types.Method
}

func (d *MethodDecl) Pos() diag.Location { return d.Loc }
func (*MethodDecl) declNode()            {}

// ParamDecl 参数声明
type ParamDecl struct {
	Loc        diag.Location
	Name       string
	TypeRef    TypeExpr
	ByRef      bool
	Optional   bool
	ParamArray bool
	Default    Expr
	// Type 绑定后的参数类型
	Type types.Type
}

// TypeExpr 语法上的类型引用
type TypeExpr interface {
	Node
	typeNode()
}

// NamedType 限定名加可选的类型实参 A.B(Of T)
type NamedType struct {
	Loc  diag.Location
	Name string
	Args []TypeExpr
}

func (t *NamedType) Pos() diag.Location { return t.Loc }
func (*NamedType) typeNode()            {}

// ArrayType T() / T(,)
type ArrayType struct {
	Loc  diag.Location
	Elem TypeExpr
	Rank int
}

func (t *ArrayType) Pos() diag.Location { return t.Loc }
func (*ArrayType) typeNode()            {}

// NullableType T?
type NullableType struct {
	Loc  diag.Location
	Elem TypeExpr
}

func (t *NullableType) Pos() diag.Location { return t.Loc }
func (*NullableType) typeNode()            {}

// PointerType T*（仅 unsafe 上下文）
type PointerType struct {
	Loc  diag.Location
	Elem TypeExpr
}

func (t *PointerType) Pos() diag.Location { return t.Loc }
func (*PointerType) typeNode()            {}

// TypeString 类型引用的源码形式
func TypeString(t TypeExpr) string {
	switch x := t.(type) {
	case *NamedType:
		if len(x.Args) == 0 {
			return x.Name
		}
		s := x.Name + "(Of "
		for i, a := range x.Args {
			if i > 0 {
				s += ", "
			}
			s += TypeString(a)
		}
		return s + ")"
	case *ArrayType:
		s := TypeString(x.Elem) + "("
		for i := 1; i < x.Rank; i++ {
			s += ","
		}
		return s + ")"
	case *NullableType:
		return TypeString(x.Elem) + "?"
	case *PointerType:
		return TypeString(x.Elem) + "*"
	}
	return "?"
}
