package generic

import (
	"fmt"
	"strings"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/types"
)

// Phase 类型参数的声明期阶段
type Phase int

const (
	Declared Phase = iota
	ConstraintsParsed
	ConstraintsResolved
	DependenciesChecked
	TypeBound
)

var phaseNames = [...]string{
	Declared:            "Declared",
	ConstraintsParsed:   "ConstraintsParsed",
	ConstraintsResolved: "ConstraintsResolved",
	DependenciesChecked: "DependenciesChecked",
	TypeBound:           "TypeBound",
}

func (p Phase) String() string { return phaseNames[p] }

// Resolver 把约束子句中的类型表达式解析为类型；解析失败时自行报告并返回 nil
type Resolver interface {
	ResolveType(t ast.TypeExpr) types.Type
	Types() *types.Manager
}

// TypeParameter 泛型声明中的一个类型参数及其约束。
// 各阶段必须按顺序执行，阶段失败后不能进入下一阶段；
// 定义完成后不再修改。
type TypeParameter struct {
	Name  string
	Owner any // *types.Named 或 *types.Method
	Loc   diag.Location
	Decl  *ast.TypeParamDecl

	phase       Phase
	failed      bool
	clauses     []*ast.Constraint
	constraints *Constraints
	param       *types.Param
}

// NewTypeParameter 创建处于 Declared 阶段的类型参数
func NewTypeParameter(owner any, index int, name string, loc diag.Location, decl *ast.TypeParamDecl) *TypeParameter {
	tp := &TypeParameter{
		Name:        name,
		Owner:       owner,
		Loc:         loc,
		Decl:        decl,
		constraints: &Constraints{},
		param:       &types.Param{Name: name, Index: index, Owner: owner},
	}
	if decl != nil {
		decl.Sym = tp.param
	}
	return tp
}

// DeclareList 为一个泛型声明创建全部类型参数，检查重名和与包含类型同名
func DeclareList(owner any, ownerName string, decls []*ast.TypeParamDecl, sink diag.Sink) []*TypeParameter {
	out := make([]*TypeParameter, 0, len(decls))
	seen := make(map[string]bool, len(decls))
	for i, d := range decls {
		key := strings.ToLower(d.Name)
		if seen[key] {
			diag.Errorf(sink, diag.ErrDuplicateTypeParam, d.Loc, d.Name)
		}
		seen[key] = true
		if ownerName != "" && strings.EqualFold(d.Name, ownerName) {
			diag.Errorf(sink, diag.ErrTypeParamShadowsType, d.Loc, d.Name)
		}
		out = append(out, NewTypeParameter(owner, i, d.Name, d.Loc, d))
	}
	return out
}

// Params 类型参数列表对应的类型
func Params(list []*TypeParameter) []*types.Param {
	out := make([]*types.Param, len(list))
	for i, tp := range list {
		out[i] = tp.param
	}
	return out
}

// Param 类型参数的类型句柄
func (tp *TypeParameter) Param() *types.Param { return tp.param }

// Phase 当前阶段
func (tp *TypeParameter) Phase() Phase { return tp.phase }

// Failed 是否有阶段失败
func (tp *TypeParameter) Failed() bool { return tp.failed }

// Constraints 已解析的约束；ResolveTypes 之前为空
func (tp *TypeParameter) Constraints() *Constraints { return tp.constraints }

func (tp *TypeParameter) String() string { return tp.Name }

func (tp *TypeParameter) advance(from, to Phase) {
	if tp.failed {
		panic(fmt.Sprintf("generic: %s: phase %s after a failed phase", tp.Name, to))
	}
	if tp.phase != from {
		panic(fmt.Sprintf("generic: %s: phase %s requires %s, at %s", tp.Name, to, from, tp.phase))
	}
}

// ParseConstraints 记录约束子句，尚不解析其中的类型
func (tp *TypeParameter) ParseConstraints(clauses []*ast.Constraint) {
	tp.advance(Declared, ConstraintsParsed)
	tp.clauses = clauses
	tp.phase = ConstraintsParsed
}

// ResolveTypes 解析约束中的类型并检查约束之间的冲突
func (tp *TypeParameter) ResolveTypes(r Resolver, sink diag.Sink) bool {
	tp.advance(ConstraintsParsed, ConstraintsResolved)
	m := r.Types()
	c := tp.constraints
	ok := true
	fail := func(code int, loc diag.Location, args ...any) {
		diag.Errorf(sink, code, loc, args...)
		ok = false
	}

	for _, cl := range tp.clauses {
		switch cl.Kind {
		case ast.ConstraintClass:
			switch {
			case c.ReferenceType:
				fail(diag.ErrDuplicateConstraint, cl.Loc, "Class", tp.Name)
			case c.ValueType:
				fail(diag.ErrConflictConstraints, cl.Loc, "Class", "Structure", tp.Name)
			default:
				c.ReferenceType = true
			}

		case ast.ConstraintStructure:
			switch {
			case c.ValueType:
				fail(diag.ErrDuplicateConstraint, cl.Loc, "Structure", tp.Name)
			case c.ReferenceType:
				fail(diag.ErrConflictConstraints, cl.Loc, "Structure", "Class", tp.Name)
			case c.Constructor:
				fail(diag.ErrConflictConstraints, cl.Loc, "Structure", "New", tp.Name)
			case c.Class != nil && !m.IsValueType(c.Class):
				fail(diag.ErrConflictConstraints, cl.Loc, "Structure", c.Class.String(), tp.Name)
			default:
				c.ValueType = true
			}

		case ast.ConstraintNew:
			switch {
			case c.Constructor:
				fail(diag.ErrDuplicateConstraint, cl.Loc, "New", tp.Name)
			case c.ValueType:
				fail(diag.ErrConflictConstraints, cl.Loc, "New", "Structure", tp.Name)
			default:
				c.Constructor = true
			}

		case ast.ConstraintType:
			t := r.ResolveType(cl.TypeRef)
			if t == nil {
				ok = false
				continue
			}
			if !tp.addType(m, c, t, cl.Loc, fail) {
				ok = false
			}
		}
	}
	if !ok {
		tp.failed = true
		return false
	}
	tp.phase = ConstraintsResolved
	return true
}

func (tp *TypeParameter) addType(m *types.Manager, c *Constraints, t types.Type, loc diag.Location, fail func(int, diag.Location, ...any)) bool {
	if p, ok := t.(*types.Param); ok {
		if c.hasTypeParam(p) {
			fail(diag.ErrDuplicateConstraint, loc, p.Name, tp.Name)
			return false
		}
		c.TypeParams = append(c.TypeParams, p)
		return true
	}
	if m.IsInterface(t) {
		if c.hasInterface(t) {
			fail(diag.ErrDuplicateConstraint, loc, t.String(), tp.Name)
			return false
		}
		c.Interfaces = append(c.Interfaces, t)
		return true
	}
	if !validClassConstraint(m, t) {
		fail(diag.ErrBadConstraintType, loc, t.String())
		return false
	}
	switch {
	case c.Class != nil && types.Identical(c.Class, t):
		fail(diag.ErrDuplicateConstraint, loc, t.String(), tp.Name)
		return false
	case c.Class != nil:
		fail(diag.ErrMultipleClassConstr, loc, tp.Name)
		return false
	case c.ValueType && !m.IsValueType(t):
		fail(diag.ErrConflictConstraints, loc, t.String(), "Structure", tp.Name)
		return false
	}
	c.Class = t
	return true
}

// validClassConstraint 类约束必须是可继承的类；基元、数组、结构、枚举、
// 委托、NotInheritable 类以及 Object、ValueType、Enum、Array、Delegate 不能作为约束
func validClassConstraint(m *types.Manager, t types.Type) bool {
	if m.IsSealed(t) || !m.IsClass(t) {
		return false
	}
	switch m.Decl(t) {
	case m.Object, m.ValueType, m.Enum, m.Array, m.Delegate, m.MulticastDelegate:
		return false
	}
	return true
}

// CheckDependencies 在整个类型参数列表上检查约束依赖：
// 依赖图必须无环（深度优先遍历，报告构成环的两个参数），
// 并且依赖的参数不能带有冲突的 Class/Structure 约束。
func CheckDependencies(list []*TypeParameter, sink diag.Sink) bool {
	byParam := make(map[*types.Param]*TypeParameter, len(list))
	for _, tp := range list {
		tp.advance(ConstraintsResolved, DependenciesChecked)
		byParam[tp.param] = tp
	}

	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[*TypeParameter]int, len(list))
	ok := true
	var visit func(tp *TypeParameter) bool
	visit = func(tp *TypeParameter) bool {
		state[tp] = onPath
		for _, p := range tp.constraints.TypeParams {
			dep, local := byParam[p]
			if !local {
				continue
			}
			switch state[dep] {
			case onPath:
				diag.Errorf(sink, diag.ErrCircularConstraint, tp.Loc, dep.Name, tp.Name)
				tp.failed = true
				dep.failed = true
				return false
			case unvisited:
				if !visit(dep) {
					tp.failed = true
					return false
				}
			}
		}
		state[tp] = done
		return true
	}
	for _, tp := range list {
		if state[tp] == unvisited && !visit(tp) {
			ok = false
		}
	}
	if !ok {
		return false
	}

	for _, tp := range list {
		for _, p := range tp.constraints.TypeParams {
			dep, local := byParam[p]
			if !local {
				continue
			}
			dc := dep.constraints
			switch {
			case tp.constraints.ReferenceType && dc.ValueType:
				diag.Errorf(sink, diag.ErrConflictConstraints, tp.Loc, dep.Name, "Class", tp.Name)
				tp.failed = true
				ok = false
			case tp.constraints.ValueType && dc.ReferenceType:
				diag.Errorf(sink, diag.ErrConflictConstraints, tp.Loc, dep.Name, "Structure", tp.Name)
				tp.failed = true
				ok = false
			}
		}
	}
	if !ok {
		return false
	}
	for _, tp := range list {
		tp.phase = DependenciesChecked
	}
	return true
}

// Define 把约束登记到类型管理器，之后类型参数不再变化
func (tp *TypeParameter) Define(m *types.Manager) bool {
	tp.advance(DependenciesChecked, TypeBound)
	if prev := m.ConstraintsOf(tp.param); prev != nil && prev != types.ParamConstraints(tp.constraints) {
		tp.failed = true
		return false
	}
	m.BindTypeParameter(tp.param, tp.constraints)
	tp.phase = TypeBound
	return true
}

// Finalize 依次执行全部阶段；任一阶段失败时停止，已报告的诊断保留
func Finalize(list []*TypeParameter, r Resolver, sink diag.Sink) bool {
	ok := true
	for _, tp := range list {
		if tp.phase == Declared {
			var clauses []*ast.Constraint
			if tp.Decl != nil {
				clauses = tp.Decl.Constraints
			}
			tp.ParseConstraints(clauses)
		}
		if !tp.ResolveTypes(r, sink) {
			ok = false
		}
	}
	if !ok || !CheckDependencies(list, sink) {
		return false
	}
	m := r.Types()
	for _, tp := range list {
		if !tp.Define(m) {
			ok = false
		}
	}
	return ok
}
