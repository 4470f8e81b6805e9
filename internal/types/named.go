package types

import "strings"

// TypeKind 声明的类型的种类
type TypeKind int

const (
	Class TypeKind = iota
	Structure
	Interface
	Enum
	Delegate
	Module
)

var typeKindNames = [...]string{
	Class:     "Class",
	Structure: "Structure",
	Interface: "Interface",
	Enum:      "Enum",
	Delegate:  "Delegate",
	Module:    "Module",
}

func (k TypeKind) String() string { return typeKindNames[k] }

// Named 源码声明或预定义的类型
type Named struct {
	Name       string
	Namespace  string
	Kind       TypeKind
	Base       Type   // 类的基类，nil 表示 Object
	Underlying *Basic // 枚举的基础类型
	Interfaces []Type
	TypeParams []*Param
	Abstract   bool // MustInherit
	Sealed     bool // NotInheritable
	Public     bool

	Fields    []*Field
	Methods   []*Method
	Ctors     []*Method
	Operators []*Operator
	Invoke    *Signature // 委托的 Invoke 签名

	// Decl 声明此类型的语法节点
	Decl any
}

func (n *Named) String() string {
	if len(n.TypeParams) == 0 {
		return n.Name
	}
	names := make([]string, len(n.TypeParams))
	for i, p := range n.TypeParams {
		names[i] = p.Name
	}
	return n.Name + "(Of " + strings.Join(names, ", ") + ")"
}
func (*Named) aType() {}

// FullName 带命名空间的名称
func (n *Named) FullName() string {
	if n.Namespace == "" {
		return n.Name
	}
	return n.Namespace + "." + n.Name
}

// IsGeneric 是否开放泛型定义
func (n *Named) IsGeneric() bool { return len(n.TypeParams) > 0 }

// HasDefaultConstructor 是否有可访问的公共无参构造函数；
// 没有声明构造函数的类有隐式的无参构造函数
func (n *Named) HasDefaultConstructor() bool {
	switch n.Kind {
	case Structure, Enum:
		return true
	case Class:
		if len(n.Ctors) == 0 {
			return true
		}
		for _, c := range n.Ctors {
			if c.Public && len(c.Params) == 0 {
				return true
			}
		}
	}
	return false
}

// LookupMethods 按名称查找方法（不区分大小写）
func (n *Named) LookupMethods(name string) []*Method {
	var out []*Method
	for _, m := range n.Methods {
		if strings.EqualFold(m.Name, name) {
			out = append(out, m)
		}
	}
	return out
}

// LookupField 按名称查找字段
func (n *Named) LookupField(name string) *Field {
	for _, f := range n.Fields {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// Param 泛型类型参数，按身份比较
type Param struct {
	Name  string
	Index int
	// Owner 声明参数的 *Named 或 *Method
	Owner any
}

func (p *Param) String() string { return p.Name }
func (*Param) aType()           {}

// Parameter 方法参数
type Parameter struct {
	Name       string
	Type       Type
	ByRef      bool
	Optional   bool
	ParamArray bool
}

// Signature 参数列表和返回类型，Result 为 nil 表示 Sub
type Signature struct {
	Params []*Parameter
	Result Type
}

// Method 方法、构造函数或委托 Invoke
type Method struct {
	Name       string
	Owner      *Named
	TypeParams []*Param
	Params     []*Parameter
	Result     Type
	Shared     bool
	Public     bool
	Abstract   bool
	Decl       any
}

func (m *Method) String() string {
	if m.Owner == nil {
		return m.Name
	}
	return m.Owner.Name + "." + m.Name
}

// Signature 方法签名
func (m *Method) Signature() *Signature {
	return &Signature{Params: m.Params, Result: m.Result}
}

// Field 字段或常量
type Field struct {
	Name   string
	Type   Type
	Shared bool
	Const  bool
	Value  any // 常量字段的值 (constant.Value)
	Decl   any
}

// Operator 用户定义的转换运算符 Widening/Narrowing Operator CType
type Operator struct {
	Widening bool
	From     Type
	To       Type
	Owner    *Named
	Method   *Method
}

func (o *Operator) String() string {
	kind := "Narrowing"
	if o.Widening {
		kind = "Widening"
	}
	return kind + " CType(" + o.From.String() + ") As " + o.To.String()
}
