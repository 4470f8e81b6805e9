package types

import "strings"

// ParamConstraints 泛型参数解析后的约束
type ParamConstraints interface {
	HasReferenceTypeConstraint() bool
	HasValueTypeConstraint() bool
	HasConstructorConstraint() bool
	ClassConstraint() Type
	InterfaceConstraints() []Type
	TypeParameterConstraints() []*Param
}

// Oracle 转换引擎和约束检查使用的只读类型查询
type Oracle interface {
	IsSubclassOf(t, base Type) bool
	Implements(t, iface Type) bool
	ElementType(t Type) Type
	GenericArguments(t Type) []Type
	ConstraintsOf(p *Param) ParamConstraints
}

// Substitution 泛型参数到实际类型的映射
type Substitution map[*Param]Type

// SubstitutionFor 按位置建立替换表
func SubstitutionFor(params []*Param, args []Type) Substitution {
	if len(params) == 0 {
		return nil
	}
	s := make(Substitution, len(params))
	for i, p := range params {
		if i < len(args) {
			s[p] = args[i]
		}
	}
	return s
}

type arrayKey struct {
	elem Type
	rank int
}

// Manager 一次编译的类型管理器：预定义类型、声明注册表、
// 复合类型驻留表以及泛型参数到约束的登记表。
type Manager struct {
	Object            *Named
	ValueType         *Named
	Enum              *Named
	Array             *Named
	Delegate          *Named
	MulticastDelegate *Named
	Exception         *Named
	Attribute         *Named
	ICloneable        *Named
	IEnumerable       *Named
	ICollection       *Named
	IList             *Named
	IComparable       *Named
	IConvertible      *Named
	IDisposable       *Named

	byName    map[string]*Named
	bySimple  map[string]*Named
	arrays    map[arrayKey]*Array
	pointers  map[Type]*Pointer
	nullables map[Type]*Nullable
	byRefs    map[Type]*ByRef
	instances map[*Named][]*Instance
	params    map[*Param]ParamConstraints
}

// NewManager 创建类型管理器并注册 System 命名空间下的预定义类型
func NewManager() *Manager {
	m := &Manager{
		byName:    make(map[string]*Named),
		bySimple:  make(map[string]*Named),
		arrays:    make(map[arrayKey]*Array),
		pointers:  make(map[Type]*Pointer),
		nullables: make(map[Type]*Nullable),
		byRefs:    make(map[Type]*ByRef),
		instances: make(map[*Named][]*Instance),
		params:    make(map[*Param]ParamConstraints),
	}
	iface := func(name string, bases ...Type) *Named {
		n := &Named{Name: name, Namespace: "System", Kind: Interface, Public: true, Interfaces: bases}
		m.Declare(n)
		return n
	}
	class := func(name string, base Type, abstract bool, ifaces ...Type) *Named {
		n := &Named{Name: name, Namespace: "System", Kind: Class, Base: base, Abstract: abstract, Public: true, Interfaces: ifaces}
		m.Declare(n)
		return n
	}
	m.ICloneable = iface("ICloneable")
	m.IEnumerable = iface("IEnumerable")
	m.ICollection = iface("ICollection", m.IEnumerable)
	m.IList = iface("IList", m.ICollection, m.IEnumerable)
	m.IComparable = iface("IComparable")
	m.IConvertible = iface("IConvertible")
	m.IDisposable = iface("IDisposable")

	m.Object = class("Object", nil, false)
	m.ValueType = class("ValueType", m.Object, true)
	m.Enum = class("Enum", m.ValueType, true, m.IComparable, m.IConvertible)
	m.Array = class("Array", m.Object, true, m.ICloneable, m.IList, m.ICollection, m.IEnumerable)
	m.Delegate = class("Delegate", m.Object, true, m.ICloneable)
	m.MulticastDelegate = class("MulticastDelegate", m.Delegate, true)
	m.Exception = class("Exception", m.Object, false)
	m.Attribute = class("Attribute", m.Object, true)
	return m
}

// Declare 注册声明的类型，同名（不区分大小写）已存在时返回 false
func (m *Manager) Declare(n *Named) bool {
	key := strings.ToLower(n.FullName())
	if _, ok := m.byName[key]; ok {
		return false
	}
	m.byName[key] = n
	simple := strings.ToLower(n.Name)
	if _, ok := m.bySimple[simple]; !ok {
		m.bySimple[simple] = n
	}
	return true
}

// Lookup 按名称查找类型：内建关键字、完全限定名、简单名
func (m *Manager) Lookup(name string) Type {
	key := strings.ToLower(name)
	if b, ok := basicNames[key]; ok {
		return b
	}
	if n, ok := m.byName[key]; ok {
		return n
	}
	if n, ok := m.bySimple[key]; ok {
		return n
	}
	return nil
}

// ArrayOf 返回驻留的数组类型
func (m *Manager) ArrayOf(elem Type, rank int) *Array {
	if rank < 1 {
		rank = 1
	}
	k := arrayKey{elem, rank}
	if a, ok := m.arrays[k]; ok {
		return a
	}
	a := &Array{Elem: elem, Rank: rank}
	m.arrays[k] = a
	return a
}

// PointerTo 返回驻留的指针类型
func (m *Manager) PointerTo(elem Type) *Pointer {
	if p, ok := m.pointers[elem]; ok {
		return p
	}
	p := &Pointer{Elem: elem}
	m.pointers[elem] = p
	return p
}

// NullableOf 返回驻留的可空类型
func (m *Manager) NullableOf(elem Type) *Nullable {
	if n, ok := m.nullables[elem]; ok {
		return n
	}
	n := &Nullable{Elem: elem}
	m.nullables[elem] = n
	return n
}

// ByRefOf 返回驻留的引用参数类型
func (m *Manager) ByRefOf(elem Type) *ByRef {
	if r, ok := m.byRefs[elem]; ok {
		return r
	}
	r := &ByRef{Elem: elem}
	m.byRefs[elem] = r
	return r
}

// Instantiate 返回驻留的泛型实例，实参个数必须与定义一致
func (m *Manager) Instantiate(def *Named, args []Type) *Instance {
	for _, inst := range m.instances[def] {
		if identicalList(inst.Args, args) {
			return inst
		}
	}
	inst := &Instance{Def: def, Args: append([]Type(nil), args...)}
	m.instances[def] = append(m.instances[def], inst)
	return inst
}

// Substitute 把 t 中的泛型参数替换为实际类型
func (m *Manager) Substitute(t Type, s Substitution) Type {
	if len(s) == 0 || t == nil {
		return t
	}
	switch x := t.(type) {
	case *Param:
		if r, ok := s[x]; ok {
			return r
		}
	case *Array:
		if e := m.Substitute(x.Elem, s); e != x.Elem {
			return m.ArrayOf(e, x.Rank)
		}
	case *Pointer:
		if e := m.Substitute(x.Elem, s); e != x.Elem {
			return m.PointerTo(e)
		}
	case *Nullable:
		if e := m.Substitute(x.Elem, s); e != x.Elem {
			return m.NullableOf(e)
		}
	case *ByRef:
		if e := m.Substitute(x.Elem, s); e != x.Elem {
			return m.ByRefOf(e)
		}
	case *Instance:
		args := make([]Type, len(x.Args))
		changed := false
		for i, a := range x.Args {
			args[i] = m.Substitute(a, s)
			changed = changed || args[i] != a
		}
		if changed {
			return m.Instantiate(x.Def, args)
		}
	}
	return t
}

// substitution 泛型实例的成员替换表
func substitution(t Type) (*Named, Substitution) {
	switch x := t.(type) {
	case *Named:
		return x, nil
	case *Instance:
		return x.Def, SubstitutionFor(x.Def.TypeParams, x.Args)
	}
	return nil, nil
}

// BindTypeParameter 登记泛型参数的约束
func (m *Manager) BindTypeParameter(p *Param, c ParamConstraints) {
	m.params[p] = c
}

// ConstraintsOf 返回泛型参数的约束，未登记时为 nil
func (m *Manager) ConstraintsOf(p *Param) ParamConstraints {
	return m.params[p]
}

// Decl 返回声明的类型或泛型实例的定义
func (m *Manager) Decl(t Type) *Named {
	n, _ := substitution(t)
	return n
}

// BaseType 直接基类型
func (m *Manager) BaseType(t Type) Type {
	switch x := t.(type) {
	case *Basic:
		if x == String {
			return m.Object
		}
		return m.ValueType
	case *Named:
		if x == m.Object {
			return nil
		}
		switch x.Kind {
		case Class:
			if x.Base != nil {
				return x.Base
			}
			return m.Object
		case Module:
			return m.Object
		case Structure:
			return m.ValueType
		case Enum:
			return m.Enum
		case Delegate:
			return m.MulticastDelegate
		}
		return nil
	case *Instance:
		return m.Substitute(m.BaseType(x.Def), SubstitutionFor(x.Def.TypeParams, x.Args))
	case *Array:
		return m.Array
	case *Nullable:
		return m.ValueType
	case *Param:
		if c := m.params[x]; c != nil {
			if cc := c.ClassConstraint(); cc != nil {
				return cc
			}
			if c.HasValueTypeConstraint() {
				return m.ValueType
			}
		}
		return m.Object
	}
	return nil
}

// maxDepth 继承链遍历上限，防止源码中的循环继承导致死循环
const maxDepth = 512

// IsSubclassOf t 等于 base 或者沿基类链派生自 base
func (m *Manager) IsSubclassOf(t, base Type) bool {
	for i := 0; t != nil && i < maxDepth; i++ {
		if Identical(t, base) {
			return true
		}
		t = m.BaseType(t)
	}
	return false
}

// directInterfaces 类型自身声明的接口（已替换泛型实参）
func (m *Manager) directInterfaces(t Type) []Type {
	switch x := t.(type) {
	case *Basic:
		if x == String {
			return []Type{m.IComparable, m.ICloneable, m.IConvertible, m.IEnumerable}
		}
		return []Type{m.IComparable, m.IConvertible}
	case *Named:
		return x.Interfaces
	case *Instance:
		s := SubstitutionFor(x.Def.TypeParams, x.Args)
		out := make([]Type, len(x.Def.Interfaces))
		for i, it := range x.Def.Interfaces {
			out[i] = m.Substitute(it, s)
		}
		return out
	case *Param:
		if c := m.params[x]; c != nil {
			return c.InterfaceConstraints()
		}
	}
	return nil
}

// Interfaces t 实现的全部接口，包括基类和接口继承得到的
func (m *Manager) Interfaces(t Type) []Type {
	var out []Type
	var visit func(Type)
	visit = func(it Type) {
		for _, seen := range out {
			if Identical(seen, it) {
				return
			}
		}
		out = append(out, it)
		for _, b := range m.directInterfaces(it) {
			visit(b)
		}
	}
	for i := 0; t != nil && i < maxDepth; i++ {
		for _, it := range m.directInterfaces(t) {
			visit(it)
		}
		t = m.BaseType(t)
	}
	return out
}

// Implements t 是否实现接口 iface（t 自身是该接口也算）
func (m *Manager) Implements(t, iface Type) bool {
	if m.IsInterface(t) && Identical(t, iface) {
		return true
	}
	for _, it := range m.Interfaces(t) {
		if Identical(it, iface) {
			return true
		}
	}
	return false
}

// ElementType 数组、指针、可空、引用的元素类型
func (m *Manager) ElementType(t Type) Type {
	switch x := t.(type) {
	case *Array:
		return x.Elem
	case *Pointer:
		return x.Elem
	case *Nullable:
		return x.Elem
	case *ByRef:
		return x.Elem
	}
	return nil
}

// GenericArguments 泛型实例的实参，开放定义返回其类型参数
func (m *Manager) GenericArguments(t Type) []Type {
	switch x := t.(type) {
	case *Instance:
		return x.Args
	case *Named:
		out := make([]Type, len(x.TypeParams))
		for i, p := range x.TypeParams {
			out[i] = p
		}
		return out
	}
	return nil
}

func (m *Manager) kindOf(t Type) (TypeKind, bool) {
	if n := m.Decl(t); n != nil {
		return n.Kind, true
	}
	return 0, false
}

// IsValueType 是否值类型
func (m *Manager) IsValueType(t Type) bool {
	switch x := t.(type) {
	case *Basic:
		return x != String
	case *Nullable:
		return true
	case *Param:
		c := m.params[x]
		if c == nil {
			return false
		}
		if c.HasValueTypeConstraint() {
			return true
		}
		cc := c.ClassConstraint()
		return cc != nil && m.IsValueType(cc)
	}
	if m.Decl(t) == m.ValueType || m.Decl(t) == m.Enum {
		return false
	}
	k, ok := m.kindOf(t)
	return ok && (k == Structure || k == Enum)
}

// IsReferenceType 是否引用类型；无约束的泛型参数既不是值类型也不是引用类型
func (m *Manager) IsReferenceType(t Type) bool {
	switch x := t.(type) {
	case *Basic:
		return x == String
	case *Array:
		return true
	case nullType:
		return true
	case *Param:
		c := m.params[x]
		if c == nil {
			return false
		}
		if c.HasReferenceTypeConstraint() {
			return true
		}
		cc := c.ClassConstraint()
		return cc != nil && m.IsReferenceType(cc)
	}
	n := m.Decl(t)
	if n == nil {
		return false
	}
	if n == m.ValueType || n == m.Enum {
		return true
	}
	return n.Kind == Class || n.Kind == Interface || n.Kind == Delegate || n.Kind == Module
}

// IsInterface 是否接口
func (m *Manager) IsInterface(t Type) bool {
	k, ok := m.kindOf(t)
	return ok && k == Interface
}

// IsClass 是否类（包括委托）
func (m *Manager) IsClass(t Type) bool {
	k, ok := m.kindOf(t)
	return ok && (k == Class || k == Delegate || k == Module)
}

// IsEnum 是否枚举
func (m *Manager) IsEnum(t Type) bool {
	k, ok := m.kindOf(t)
	return ok && k == Enum
}

// IsDelegate 是否委托类型
func (m *Manager) IsDelegate(t Type) bool {
	k, ok := m.kindOf(t)
	return ok && k == Delegate
}

// IsAbstract MustInherit 类或接口
func (m *Manager) IsAbstract(t Type) bool {
	n := m.Decl(t)
	return n != nil && (n.Abstract || n.Kind == Interface)
}

// IsSealed 不可继承的类型
func (m *Manager) IsSealed(t Type) bool {
	switch t.(type) {
	case *Basic, *Array, *Nullable:
		return true
	}
	n := m.Decl(t)
	return n != nil && (n.Sealed || n.Kind == Structure || n.Kind == Enum || n.Kind == Delegate)
}

// EnumUnderlying 枚举的基础类型，默认 Integer
func (m *Manager) EnumUnderlying(t Type) *Basic {
	n := m.Decl(t)
	if n == nil || n.Kind != Enum {
		return nil
	}
	if n.Underlying == nil {
		return Integer
	}
	return n.Underlying
}

// HasDefaultConstructor 是否可以用无参 New 创建
func (m *Manager) HasDefaultConstructor(t Type) bool {
	switch x := t.(type) {
	case *Basic, *Nullable:
		return true
	case *Param:
		c := m.params[x]
		return c != nil && (c.HasConstructorConstraint() || c.HasValueTypeConstraint())
	}
	n := m.Decl(t)
	return n != nil && n.HasDefaultConstructor()
}

// Operators 类型声明的转换运算符（泛型实例已替换实参）
func (m *Manager) Operators(t Type) []*Operator {
	def, s := substitution(t)
	if def == nil || len(def.Operators) == 0 {
		return nil
	}
	if s == nil {
		return def.Operators
	}
	out := make([]*Operator, len(def.Operators))
	for i, op := range def.Operators {
		out[i] = &Operator{
			Widening: op.Widening,
			From:     m.Substitute(op.From, s),
			To:       m.Substitute(op.To, s),
			Owner:    op.Owner,
			Method:   op.Method,
		}
	}
	return out
}

// DelegateSignature 委托类型的 Invoke 签名
func (m *Manager) DelegateSignature(t Type) *Signature {
	def, s := substitution(t)
	if def == nil || def.Kind != Delegate || def.Invoke == nil {
		return nil
	}
	return m.SubstituteSignature(def.Invoke, s)
}

// SubstituteSignature 替换签名中的泛型参数
func (m *Manager) SubstituteSignature(sig *Signature, s Substitution) *Signature {
	if len(s) == 0 {
		return sig
	}
	out := &Signature{Result: m.Substitute(sig.Result, s)}
	for _, p := range sig.Params {
		q := *p
		q.Type = m.Substitute(p.Type, s)
		out.Params = append(out.Params, &q)
	}
	return out
}

// FindMethods 沿基类链查找名为 name 的方法
func (m *Manager) FindMethods(t Type, name string) []*Method {
	var out []*Method
	for i := 0; t != nil && i < maxDepth; i++ {
		if n := m.Decl(t); n != nil {
			out = append(out, n.LookupMethods(name)...)
		}
		t = m.BaseType(t)
	}
	return out
}

// FindField 沿基类链查找字段，同时返回声明字段的类型在 t 的基类链上的形式
func (m *Manager) FindField(t Type, name string) (*Field, Type) {
	for i := 0; t != nil && i < maxDepth; i++ {
		if n := m.Decl(t); n != nil {
			if f := n.LookupField(name); f != nil {
				return f, t
			}
		}
		t = m.BaseType(t)
	}
	return nil, nil
}

// MemberSubstitution 在 t 的基类链上找到 owner，返回其成员类型的替换表
func (m *Manager) MemberSubstitution(t Type, owner *Named) Substitution {
	for i := 0; t != nil && i < maxDepth; i++ {
		if def, s := substitution(t); def == owner {
			return s
		}
		t = m.BaseType(t)
	}
	return nil
}
