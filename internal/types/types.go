// Package types 描述编译器看到的类型：内建类型、声明的类型、
// 数组/指针/可空/引用包装、泛型参数和泛型实例。
//
// 复合类型统一由 Manager 创建并驻留，因此同一编译内结构相同的类型指针相同；
// Identical 仍按结构比较，用于未经 Manager 创建的值。
package types

import (
	"strings"

	"github.com/tangzhangming/vbc/internal/constant"
)

// Type 类型句柄
type Type interface {
	String() string
	aType()
}

// Basic 内建基元类型，与常量类型一一对应
type Basic struct {
	kind constant.Kind
	name string
}

func (b *Basic) Kind() constant.Kind { return b.kind }
func (b *Basic) String() string      { return b.name }
func (*Basic) aType()                {}

// 内建类型不可变，全部编译共享
var (
	Boolean  = &Basic{constant.Bool, "Boolean"}
	Byte     = &Basic{constant.Byte, "Byte"}
	SByte    = &Basic{constant.SByte, "SByte"}
	Short    = &Basic{constant.Short, "Short"}
	UShort   = &Basic{constant.UShort, "UShort"}
	Integer  = &Basic{constant.Integer, "Integer"}
	UInteger = &Basic{constant.UInteger, "UInteger"}
	Long     = &Basic{constant.Long, "Long"}
	ULong    = &Basic{constant.ULong, "ULong"}
	Single   = &Basic{constant.Single, "Single"}
	Double   = &Basic{constant.Double, "Double"}
	Decimal  = &Basic{constant.Decimal, "Decimal"}
	Char     = &Basic{constant.Char, "Char"}
	String   = &Basic{constant.String, "String"}
	Date     = &Basic{constant.Date, "Date"}
)

var basics = [...]*Basic{
	constant.Bool: Boolean, constant.Byte: Byte, constant.SByte: SByte,
	constant.Short: Short, constant.UShort: UShort, constant.Integer: Integer,
	constant.UInteger: UInteger, constant.Long: Long, constant.ULong: ULong,
	constant.Single: Single, constant.Double: Double, constant.Decimal: Decimal,
	constant.Char: Char, constant.String: String, constant.Date: Date,
}

// BasicOf 返回常量类型对应的内建类型
func BasicOf(k constant.Kind) *Basic {
	if k < 0 || int(k) >= len(basics) {
		return nil
	}
	return basics[k]
}

// basicNames 关键字和 CLR 名称到内建类型
var basicNames = map[string]*Basic{
	"boolean": Boolean, "system.boolean": Boolean,
	"byte": Byte, "system.byte": Byte,
	"sbyte": SByte, "system.sbyte": SByte,
	"short": Short, "system.int16": Short, "int16": Short,
	"ushort": UShort, "system.uint16": UShort, "uint16": UShort,
	"integer": Integer, "system.int32": Integer, "int32": Integer,
	"uinteger": UInteger, "system.uint32": UInteger, "uint32": UInteger,
	"long": Long, "system.int64": Long, "int64": Long,
	"ulong": ULong, "system.uint64": ULong, "uint64": ULong,
	"single": Single, "system.single": Single,
	"double": Double, "system.double": Double,
	"decimal": Decimal, "system.decimal": Decimal,
	"char": Char, "system.char": Char,
	"string": String, "system.string": String,
	"date": Date, "system.datetime": Date, "datetime": Date,
}

// Array 数组类型
type Array struct {
	Elem Type
	Rank int
}

func (a *Array) String() string {
	return a.Elem.String() + "(" + strings.Repeat(",", a.Rank-1) + ")"
}
func (*Array) aType() {}

// Pointer 非托管指针，只在 unsafe 上下文中参与转换
type Pointer struct {
	Elem Type
}

func (p *Pointer) String() string { return p.Elem.String() + "*" }
func (*Pointer) aType()           {}

// Nullable 可空值类型 T?
type Nullable struct {
	Elem Type
}

func (n *Nullable) String() string { return n.Elem.String() + "?" }
func (*Nullable) aType()           {}

// ByRef 引用传递的参数类型
type ByRef struct {
	Elem Type
}

func (r *ByRef) String() string { return "ByRef " + r.Elem.String() }
func (*ByRef) aType()           {}

// Instance 泛型类型的实例 List(Of Integer)
type Instance struct {
	Def  *Named
	Args []Type
}

func (i *Instance) String() string {
	return i.Def.Name + "(Of " + joinTypes(i.Args) + ")"
}
func (*Instance) aType() {}

// nullType Nothing 字面量的类型
type nullType struct{}

func (nullType) String() string { return "Nothing" }
func (nullType) aType()         {}

// Null Nothing 字面量的类型
var Null Type = nullType{}

type voidType struct{}

func (voidType) String() string { return "Void" }
func (voidType) aType()         {}

// Void 无类型指针 Void* 的元素类型
var Void Type = voidType{}

// IsNull 是否 Nothing 字面量的类型
func IsNull(t Type) bool {
	_, ok := t.(nullType)
	return ok
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Identical 类型相等：泛型实例、数组、指针、可空按结构比较，
// 声明的类型（包括开放泛型定义）和泛型参数按身份比较。
func Identical(a, b Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch x := a.(type) {
	case *Array:
		y, ok := b.(*Array)
		return ok && x.Rank == y.Rank && Identical(x.Elem, y.Elem)
	case *Pointer:
		y, ok := b.(*Pointer)
		return ok && Identical(x.Elem, y.Elem)
	case *Nullable:
		y, ok := b.(*Nullable)
		return ok && Identical(x.Elem, y.Elem)
	case *ByRef:
		y, ok := b.(*ByRef)
		return ok && Identical(x.Elem, y.Elem)
	case *Instance:
		y, ok := b.(*Instance)
		return ok && x.Def == y.Def && identicalList(x.Args, y.Args)
	}
	return false
}

func identicalList(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Identical(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ContainsParams 类型中是否还有未替换的泛型参数
func ContainsParams(t Type) bool {
	switch x := t.(type) {
	case *Param:
		return true
	case *Array:
		return ContainsParams(x.Elem)
	case *Pointer:
		return ContainsParams(x.Elem)
	case *Nullable:
		return ContainsParams(x.Elem)
	case *ByRef:
		return ContainsParams(x.Elem)
	case *Instance:
		for _, a := range x.Args {
			if ContainsParams(a) {
				return true
			}
		}
	}
	return false
}
