// Package symbol 收集源码中声明的类型并登记到类型管理器。
//
// 收集分两步：CollectFile 为每个类型声明创建 types.Named 并注册名称，
// Resolve 在全部文件收集完之后解析类型参数约束、成员签名和继承关系。
package symbol

import (
	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/generic"
	"github.com/tangzhangming/vbc/internal/types"
)

// Entry 一个类型声明。Partial 类型的每个声明各有一个 Entry，共享同一个 Type。
type Entry struct {
	Decl  *ast.TypeDecl
	Type  *types.Named
	Outer *Entry // 包含此类型的类型，顶层类型为 nil

	// Namespace 声明所在的命名空间（不含包含类型）
	Namespace string
	// Imports 所在文件的 Imports
	Imports []string

	typeParams []*generic.TypeParameter
	primary    bool // 第一个声明，负责类型参数和基类
}

// instantiation 约束定义完成前构造的泛型实例，稍后检查
type instantiation struct {
	def  *types.Named
	args []types.Type
	loc  diag.Location
}

// Table 一次编译中声明的类型
type Table struct {
	types   *types.Manager
	checker *generic.Checker
	sink    diag.Sink

	entries []*Entry
	byType  map[*types.Named][]*Entry

	// pending 约束定义完成前遇到的泛型实例
	pending []instantiation
	bound   bool
}

// New 创建符号表；checker 用于检查泛型实例的类型实参
func New(m *types.Manager, checker *generic.Checker, sink diag.Sink) *Table {
	if sink == nil {
		sink = diag.Discard
	}
	return &Table{
		types:   m,
		checker: checker,
		sink:    sink,
		byType:  make(map[*types.Named][]*Entry),
	}
}

// Types 类型管理器
func (t *Table) Types() *types.Manager { return t.types }

// Entries 按声明顺序返回全部类型声明
func (t *Table) Entries() []*Entry { return t.entries }

// EntriesOf 类型的全部声明
func (t *Table) EntriesOf(n *types.Named) []*Entry { return t.byType[n] }

// Collector 从一个文件收集类型声明
type Collector struct {
	table   *Table
	file    string
	imports []string
}

// NewCollector 创建收集器
func NewCollector(table *Table) *Collector {
	return &Collector{table: table}
}

// CollectFile 收集文件中的全部类型声明
func (c *Collector) CollectFile(file *ast.File) {
	c.file = file.Name
	c.imports = file.Imports
	c.collectMembers(file.Members, "", nil)
}

func (c *Collector) collectMembers(members []ast.Decl, ns string, outer *Entry) {
	for _, m := range members {
		switch d := m.(type) {
		case *ast.Namespace:
			c.collectMembers(d.Members, qualify(ns, d.Name), nil)
		case *ast.TypeDecl:
			c.collectType(d, ns, outer)
		}
	}
}

// collectType 为类型声明创建 Named 并注册；嵌套类型的命名空间是包含类型的完全限定名
func (c *Collector) collectType(d *ast.TypeDecl, ns string, outer *Entry) {
	if d.Name == "" {
		return
	}
	t := c.table
	space := ns
	if outer != nil {
		space = outer.Type.FullName()
	}
	n := &types.Named{
		Name:      d.Name,
		Namespace: space,
		Kind:      d.Kind,
		Abstract:  d.Modifiers.Has(ast.ModMustInherit) || d.Kind == types.Interface,
		Sealed:    d.Modifiers.Has(ast.ModNotInheritable) || d.Kind != types.Class && d.Kind != types.Interface,
		Public:    d.Modifiers.Has(ast.ModPublic),
		Decl:      d,
	}
	e := &Entry{Decl: d, Outer: outer, Namespace: ns, Imports: c.imports, primary: true}

	if !t.types.Declare(n) {
		prev, _ := t.types.Lookup(n.FullName()).(*types.Named)
		switch {
		case prev != nil && t.mergeable(prev, d):
			n = prev
			e.primary = false
		default:
			// 同一文件中的重名已在语法分析时报告
			if pd, ok := declOf(prev); !ok || pd.Loc.File != d.Loc.File {
				diag.Errorf(t.sink, diag.ErrDuplicateType, d.Loc, d.Name, containerName(space, c.file))
			}
			return
		}
	}
	e.Type = n
	d.Sym = n
	if e.primary {
		e.typeParams = generic.DeclareList(n, n.Name, d.TypeParams, t.sink)
		n.TypeParams = generic.Params(e.typeParams)
	}
	t.entries = append(t.entries, e)
	t.byType[n] = append(t.byType[n], e)

	for _, m := range d.Members {
		if nested, ok := m.(*ast.TypeDecl); ok {
			c.collectType(nested, ns, e)
		}
	}
}

// mergeable 重复声明中有一个是 Partial 且种类和类型参数个数相同
func (t *Table) mergeable(prev *types.Named, d *ast.TypeDecl) bool {
	pd, ok := declOf(prev)
	if !ok || prev.Kind != d.Kind || len(prev.TypeParams) != len(d.TypeParams) {
		return false
	}
	return pd.Modifiers.Has(ast.ModPartial) || d.Modifiers.Has(ast.ModPartial)
}

func declOf(n *types.Named) (*ast.TypeDecl, bool) {
	if n == nil {
		return nil, false
	}
	d, ok := n.Decl.(*ast.TypeDecl)
	return d, ok
}

func containerName(space, file string) string {
	if space != "" {
		return space
	}
	return file
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

// Collect 从多个文件收集类型声明并解析
func Collect(m *types.Manager, checker *generic.Checker, files []*ast.File, sink diag.Sink) *Table {
	table := New(m, checker, sink)
	collector := NewCollector(table)
	for _, f := range files {
		collector.CollectFile(f)
	}
	table.Resolve()
	return table
}

// Lookup 按限定名查找声明的类型
func (t *Table) Lookup(name string) *types.Named {
	n, _ := t.types.Lookup(name).(*types.Named)
	if n == nil || len(t.byType[n]) == 0 {
		return nil
	}
	return n
}
