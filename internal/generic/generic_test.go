package generic

import (
	"errors"
	"strings"
	"testing"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/convert"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/types"
)

var loc = diag.Location{File: "g.vb", Line: 3, Column: 9}

type world struct {
	m              *types.Manager
	base, derived  *types.Named
	leaf, abstract *types.Named
	noDefault      *types.Named
	iFoo, point    *types.Named
	names          map[string]types.Type
}

func newWorld() *world {
	m := types.NewManager()
	w := &world{m: m}
	w.iFoo = &types.Named{Name: "IFoo", Kind: types.Interface}
	w.base = &types.Named{Name: "Base", Kind: types.Class}
	w.derived = &types.Named{Name: "Derived", Kind: types.Class, Base: w.base, Interfaces: []types.Type{w.iFoo}}
	w.leaf = &types.Named{Name: "Leaf", Kind: types.Class, Sealed: true}
	w.abstract = &types.Named{Name: "Shape", Kind: types.Class, Abstract: true}
	w.noDefault = &types.Named{Name: "Handle", Kind: types.Class, Ctors: []*types.Method{
		{Name: "New", Public: true, Params: []*types.Parameter{{Name: "h", Type: types.Integer}}},
	}}
	w.point = &types.Named{Name: "Point", Kind: types.Structure, Interfaces: []types.Type{w.iFoo}}
	w.names = map[string]types.Type{"Integer": types.Integer, "String": types.String, "Object": m.Object}
	for _, n := range []*types.Named{w.iFoo, w.base, w.derived, w.leaf, w.abstract, w.noDefault, w.point} {
		m.Declare(n)
		w.names[n.Name] = n
	}
	return w
}

// resolver 按名称解析约束类型，未知名称报告 BC30002
type resolver struct {
	w    *world
	sink diag.Sink
}

func (r resolver) Types() *types.Manager { return r.w.m }

func (r resolver) ResolveType(t ast.TypeExpr) types.Type {
	nt := t.(*ast.NamedType)
	if ty, ok := r.w.names[nt.Name]; ok {
		return ty
	}
	diag.Errorf(r.sink, diag.ErrTypeNotDefined, nt.Loc, nt.Name)
	return nil
}

func class() *ast.Constraint     { return &ast.Constraint{Loc: loc, Kind: ast.ConstraintClass} }
func structure() *ast.Constraint { return &ast.Constraint{Loc: loc, Kind: ast.ConstraintStructure} }
func newC() *ast.Constraint      { return &ast.Constraint{Loc: loc, Kind: ast.ConstraintNew} }
func typ(name string) *ast.Constraint {
	return &ast.Constraint{Loc: loc, Kind: ast.ConstraintType, TypeRef: &ast.NamedType{Loc: loc, Name: name}}
}

func decls(names ...string) []*ast.TypeParamDecl {
	out := make([]*ast.TypeParamDecl, len(names))
	for i, n := range names {
		out[i] = &ast.TypeParamDecl{Loc: loc, Name: n}
	}
	return out
}

// declare 声明类型参数并把它们加入解析表，使约束可以引用同列表中的参数
func (w *world) declare(owner any, bag *diag.Bag, names ...string) []*TypeParameter {
	list := DeclareList(owner, "Owner", decls(names...), bag)
	for _, tp := range list {
		w.names[tp.Name] = tp.Param()
	}
	return list
}

func TestConstraintResolution(t *testing.T) {
	tests := []struct {
		name    string
		clauses []*ast.Constraint
		code    int
	}{
		{"class attribute with class type", []*ast.Constraint{class(), typ("Base")}, 0},
		{"structure with interface", []*ast.Constraint{structure(), typ("IFoo")}, 0},
		{"new with class type", []*ast.Constraint{typ("Base"), newC()}, 0},
		{"class and structure", []*ast.Constraint{class(), structure()}, diag.ErrConflictConstraints},
		{"structure and class", []*ast.Constraint{structure(), class()}, diag.ErrConflictConstraints},
		{"structure and reference class type", []*ast.Constraint{structure(), typ("Base")}, diag.ErrConflictConstraints},
		{"reference class type then structure", []*ast.Constraint{typ("Base"), structure()}, diag.ErrConflictConstraints},
		{"structure and new", []*ast.Constraint{structure(), newC()}, diag.ErrConflictConstraints},
		{"duplicate class", []*ast.Constraint{class(), class()}, diag.ErrDuplicateConstraint},
		{"duplicate new", []*ast.Constraint{newC(), newC()}, diag.ErrDuplicateConstraint},
		{"duplicate type", []*ast.Constraint{typ("Base"), typ("Base")}, diag.ErrDuplicateConstraint},
		{"duplicate interface", []*ast.Constraint{typ("IFoo"), typ("IFoo")}, diag.ErrDuplicateConstraint},
		{"two class types", []*ast.Constraint{typ("Base"), typ("Derived")}, diag.ErrMultipleClassConstr},
		{"sealed class", []*ast.Constraint{typ("Leaf")}, diag.ErrBadConstraintType},
		{"primitive", []*ast.Constraint{typ("Integer")}, diag.ErrBadConstraintType},
		{"structure type", []*ast.Constraint{typ("Point")}, diag.ErrBadConstraintType},
		{"object", []*ast.Constraint{typ("Object")}, diag.ErrBadConstraintType},
		{"unknown type", []*ast.Constraint{typ("Missing")}, diag.ErrTypeNotDefined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			bag := diag.NewBag()
			tp := w.declare("M", bag, "T")[0]
			tp.ParseConstraints(tt.clauses)
			ok := tp.ResolveTypes(resolver{w, bag}, bag)
			if tt.code == 0 {
				if !ok || bag.HasErrors() {
					t.Fatalf("unexpected diagnostics %v", bag.Codes())
				}
				if tp.Phase() != ConstraintsResolved {
					t.Errorf("phase = %s", tp.Phase())
				}
				return
			}
			if ok {
				t.Fatal("ResolveTypes succeeded")
			}
			if !bag.Has(tt.code) {
				t.Errorf("codes = %v, want BC%d", bag.Codes(), tt.code)
			}
			if !tp.Failed() {
				t.Error("failed phase not recorded")
			}
		})
	}
}

func TestPhasesRunInOrder(t *testing.T) {
	w := newWorld()
	r := resolver{w, diag.Discard}
	mustPanic := func(name string, f func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s did not panic", name)
			}
		}()
		f()
	}

	tp := NewTypeParameter("M", 0, "T", loc, nil)
	mustPanic("ResolveTypes before ParseConstraints", func() { tp.ResolveTypes(r, diag.Discard) })
	mustPanic("Define before CheckDependencies", func() { tp.Define(w.m) })

	tp.ParseConstraints([]*ast.Constraint{class()})
	mustPanic("ParseConstraints twice", func() { tp.ParseConstraints(nil) })
	if !tp.ResolveTypes(r, diag.Discard) {
		t.Fatal("ResolveTypes failed")
	}
	if !CheckDependencies([]*TypeParameter{tp}, diag.Discard) {
		t.Fatal("CheckDependencies failed")
	}
	if !tp.Define(w.m) || tp.Phase() != TypeBound {
		t.Fatalf("Define: phase %s", tp.Phase())
	}
	if w.m.ConstraintsOf(tp.Param()) != types.ParamConstraints(tp.Constraints()) {
		t.Error("constraints not registered with the type manager")
	}

	bad := NewTypeParameter("M", 0, "U", loc, nil)
	bad.ParseConstraints([]*ast.Constraint{class(), structure()})
	bad.ResolveTypes(r, diag.Discard)
	mustPanic("CheckDependencies after failure", func() { CheckDependencies([]*TypeParameter{bad}, diag.Discard) })
}

func TestCircularConstraints(t *testing.T) {
	w := newWorld()
	bag := diag.NewBag()
	list := w.declare("M", bag, "T", "U", "V")
	list[0].Decl.Constraints = []*ast.Constraint{typ("U")}
	list[1].Decl.Constraints = []*ast.Constraint{typ("V")}
	list[2].Decl.Constraints = []*ast.Constraint{typ("T")}

	if Finalize(list, resolver{w, bag}, bag) {
		t.Fatal("cycle T -> U -> V -> T accepted")
	}
	if !bag.Has(diag.ErrCircularConstraint) {
		t.Fatalf("codes = %v", bag.Codes())
	}
	msg := bag.Diagnostics()[0].Message
	if !strings.Contains(msg, "'T'") || !strings.Contains(msg, "'V'") {
		t.Errorf("message %q should name both parameters", msg)
	}
	for _, tp := range list {
		if tp.Phase() == TypeBound {
			t.Errorf("%s was bound despite the cycle", tp.Name)
		}
	}
}

func TestAcyclicDependencies(t *testing.T) {
	w := newWorld()
	bag := diag.NewBag()
	list := w.declare("M", bag, "T", "U")
	list[0].Decl.Constraints = []*ast.Constraint{typ("U"), newC()}
	list[1].Decl.Constraints = []*ast.Constraint{typ("Base")}

	if !Finalize(list, resolver{w, bag}, bag) {
		t.Fatalf("codes = %v", bag.Codes())
	}
	c := list[0].Constraints()
	if len(c.TypeParams) != 1 || c.TypeParams[0] != list[1].Param() || !c.Constructor {
		t.Errorf("constraints of T = %s", c)
	}
}

func TestDependencyAttributeConflict(t *testing.T) {
	w := newWorld()
	bag := diag.NewBag()
	list := w.declare("M", bag, "T", "U")
	list[0].Decl.Constraints = []*ast.Constraint{class(), typ("U")}
	list[1].Decl.Constraints = []*ast.Constraint{structure()}

	if Finalize(list, resolver{w, bag}, bag) {
		t.Fatal("Class parameter constrained to a Structure parameter")
	}
	if !bag.Has(diag.ErrConflictConstraints) {
		t.Errorf("codes = %v", bag.Codes())
	}
}

func TestDeclareList(t *testing.T) {
	bag := diag.NewBag()
	list := DeclareList("C", "Box", decls("T", "t", "Box"), bag)
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	if !bag.Has(diag.ErrDuplicateTypeParam) || !bag.Has(diag.ErrTypeParamShadowsType) {
		t.Errorf("codes = %v", bag.Codes())
	}
	for i, tp := range list {
		if tp.Param().Index != i || tp.Decl.Sym != tp.Param() {
			t.Errorf("%s: index %d, sym %v", tp.Name, tp.Param().Index, tp.Decl.Sym)
		}
	}
}

// bind 直接登记约束，跳过声明期阶段
func bind(m *types.Manager, name string, c *Constraints) *types.Param {
	p := &types.Param{Name: name}
	m.BindTypeParameter(p, c)
	return p
}

func TestCheckArgument(t *testing.T) {
	w := newWorld()
	m := w.m
	tests := []struct {
		name string
		c    *Constraints
		arg  types.Type
		code int
	}{
		{"class accepts class", &Constraints{ReferenceType: true}, w.base, 0},
		{"class accepts string", &Constraints{ReferenceType: true}, types.String, 0},
		{"class accepts interface", &Constraints{ReferenceType: true}, w.iFoo, 0},
		{"class rejects integer", &Constraints{ReferenceType: true}, types.Integer, diag.ErrRefConstraint},
		{"structure accepts integer", &Constraints{ValueType: true}, types.Integer, 0},
		{"structure accepts user structure", &Constraints{ValueType: true}, w.point, 0},
		{"structure rejects string", &Constraints{ValueType: true}, types.String, diag.ErrValueConstraint},
		{"structure rejects nullable", &Constraints{ValueType: true}, m.NullableOf(types.Integer), diag.ErrValueConstraint},
		{"class type accepts derived", &Constraints{Class: w.base}, w.derived, 0},
		{"class type accepts itself", &Constraints{Class: w.base}, w.base, 0},
		{"class type rejects unrelated", &Constraints{Class: w.base}, w.leaf, diag.ErrClassConstraint},
		{"interface accepts implementor", &Constraints{Interfaces: []types.Type{w.iFoo}}, w.derived, 0},
		{"interface accepts boxed structure", &Constraints{Interfaces: []types.Type{w.iFoo}}, w.point, 0},
		{"interface rejects non-implementor", &Constraints{Interfaces: []types.Type{w.iFoo}}, w.base, diag.ErrInterfaceConstraint},
		{"new accepts implicit constructor", &Constraints{Constructor: true}, w.base, 0},
		{"new accepts primitive", &Constraints{Constructor: true}, types.Integer, 0},
		{"new accepts structure", &Constraints{Constructor: true}, w.point, 0},
		{"new rejects abstract", &Constraints{Constructor: true}, w.abstract, diag.ErrNewAbstract},
		{"new rejects interface", &Constraints{Constructor: true}, w.iFoo, diag.ErrNewAbstract},
		{"new rejects missing default constructor", &Constraints{Constructor: true}, w.noDefault, diag.ErrNewConstraint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag()
			c := NewChecker(convert.NewEngine(m), bag)
			p := bind(m, "T", tt.c)
			ok := c.CheckArgument(p, tt.arg, nil, loc)
			if tt.code == 0 {
				if !ok || bag.HasErrors() {
					t.Errorf("rejected: %v", bag.Codes())
				}
				return
			}
			if ok || !bag.Has(tt.code) {
				t.Errorf("ok = %v, codes = %v, want BC%d", ok, bag.Codes(), tt.code)
			}
			if msg := bag.Diagnostics()[0].Message; !strings.Contains(msg, tt.arg.String()) || !strings.Contains(msg, "'T'") {
				t.Errorf("message %q should name the argument and the parameter", msg)
			}
		})
	}
}

func TestEachViolationReportedSeparately(t *testing.T) {
	w := newWorld()
	bag := diag.NewBag()
	c := NewChecker(convert.NewEngine(w.m), bag)
	p := bind(w.m, "T", &Constraints{ReferenceType: true, Interfaces: []types.Type{w.iFoo}, Constructor: true})
	if c.CheckArgument(p, w.abstract, nil, loc) {
		t.Fatal("abstract class without IFoo accepted")
	}
	if bag.Has(diag.ErrRefConstraint) || !bag.Has(diag.ErrInterfaceConstraint) || !bag.Has(diag.ErrNewAbstract) {
		t.Errorf("codes = %v", bag.Codes())
	}
}

// 约束满足不能经由中间类型链接：B 经用户定义运算符拓宽到 A，A 派生自 Base，
// 但 B 本身不满足 T As Base
func TestConstraintDoesNotChain(t *testing.T) {
	w := newWorld()
	m := w.m
	a := &types.Named{Name: "A", Kind: types.Class, Base: w.base}
	b := &types.Named{Name: "B", Kind: types.Class}
	b.Operators = []*types.Operator{{Widening: true, From: b, To: a, Owner: b}}
	m.Declare(a)
	m.Declare(b)
	e := convert.NewEngine(m)

	bv := &ast.Ident{ExprBase: ast.At(loc), Name: "b"}
	bv.Bind(b, ast.ClassVariable)
	if !e.WideningConversionExists(bv, w.base) {
		t.Fatal("fixture: B should widen to Base through the operator")
	}

	bag := diag.NewBag()
	c := NewChecker(e, bag)
	p := bind(m, "T", &Constraints{Class: w.base})
	if !c.CheckArgument(p, a, nil, loc) {
		t.Error("A should satisfy T As Base")
	}
	if c.CheckArgument(p, b, nil, loc) {
		t.Error("B satisfied T As Base through A")
	}
	if !bag.Has(diag.ErrClassConstraint) {
		t.Errorf("codes = %v", bag.Codes())
	}

	// T As U 不接受数值拓宽
	u := bind(m, "U", &Constraints{})
	tp := bind(m, "T2", &Constraints{TypeParams: []*types.Param{u}})
	s := types.Substitution{u: types.Long, tp: types.Integer}
	if c.CheckArgument(tp, types.Integer, s, loc) {
		t.Error("Integer satisfied T As U with U = Long")
	}
	s[u] = m.Object
	if !c.CheckArgument(tp, types.Integer, s, loc) {
		t.Error("Integer should satisfy T As U with U = Object by boxing")
	}
}

func TestConstraintSubstitution(t *testing.T) {
	w := newWorld()
	m := w.m
	x := &types.Param{Name: "X"}
	iEq := &types.Named{Name: "IEq", Kind: types.Interface, TypeParams: []*types.Param{x}}
	m.Declare(iEq)
	intEq := &types.Named{Name: "IntEq", Kind: types.Class, Interfaces: []types.Type{m.Instantiate(iEq, []types.Type{types.Integer})}}
	m.Declare(intEq)

	tParam := bind(m, "T", &Constraints{})
	uParam := bind(m, "U", &Constraints{Interfaces: []types.Type{m.Instantiate(iEq, []types.Type{tParam})}})
	params := []*types.Param{tParam, uParam}

	bag := diag.NewBag()
	c := NewChecker(convert.NewEngine(m), bag)
	if !c.CheckArguments(params, []types.Type{types.Integer, intEq}, loc) {
		t.Errorf("IntEq should satisfy U As IEq(Of Integer): %v", bag.Codes())
	}
	if c.CheckArguments(params, []types.Type{types.String, intEq}, loc) {
		t.Error("IntEq satisfied U As IEq(Of String)")
	}
	if !bag.Has(diag.ErrInterfaceConstraint) {
		t.Errorf("codes = %v", bag.Codes())
	}
}

func TestInferTypeArguments(t *testing.T) {
	m := types.NewManager()
	T := &types.Param{Name: "T"}
	U := &types.Param{Name: "U"}
	e := &types.Param{Name: "E"}
	list := &types.Named{Name: "List", Kind: types.Class, TypeParams: []*types.Param{e}}
	m.Declare(list)
	listOfString := m.Instantiate(list, []types.Type{types.String})
	names := &types.Named{Name: "Names", Kind: types.Class, Base: listOfString}
	m.Declare(names)
	seq := &types.Named{Name: "ISeq", Kind: types.Interface, TypeParams: []*types.Param{e}}
	m.Declare(seq)
	ints := &types.Named{Name: "Ints", Kind: types.Class, Interfaces: []types.Type{m.Instantiate(seq, []types.Type{types.Integer})}}
	m.Declare(ints)

	tests := []struct {
		name       string
		params     []*types.Param
		formals    []types.Type
		actuals    []types.Type
		paramArray bool
		want       []types.Type
		err        error
	}{
		{"direct", []*types.Param{T}, []types.Type{T}, []types.Type{types.Integer}, false, []types.Type{types.Integer}, nil},
		{"array element", []*types.Param{T}, []types.Type{m.ArrayOf(T, 1), T}, []types.Type{m.ArrayOf(types.Integer, 1), types.Integer}, false, []types.Type{types.Integer}, nil},
		{"conflict", []*types.Param{T}, []types.Type{m.ArrayOf(T, 1), T}, []types.Type{m.ArrayOf(types.Integer, 1), types.String}, false, nil, ErrConflict},
		{"unresolved", []*types.Param{T, U}, []types.Type{T}, []types.Type{types.Integer}, false, nil, ErrUnresolved},
		{"nothing gives no information", []*types.Param{T}, []types.Type{T}, []types.Type{types.Null}, false, nil, ErrUnresolved},
		{"by ref", []*types.Param{T}, []types.Type{m.ByRefOf(T)}, []types.Type{types.Double}, false, []types.Type{types.Double}, nil},
		{"generic instance", []*types.Param{T}, []types.Type{m.Instantiate(list, []types.Type{T})}, []types.Type{listOfString}, false, []types.Type{types.String}, nil},
		{"derived from instance", []*types.Param{T}, []types.Type{m.Instantiate(list, []types.Type{T})}, []types.Type{names}, false, []types.Type{types.String}, nil},
		{"implemented interface", []*types.Param{T}, []types.Type{m.Instantiate(seq, []types.Type{T})}, []types.Type{ints}, false, []types.Type{types.Integer}, nil},
		{"two parameters", []*types.Param{T, U}, []types.Type{U, T}, []types.Type{types.String, types.Long}, false, []types.Type{types.Long, types.String}, nil},
		{"arity", []*types.Param{T}, []types.Type{T, T}, []types.Type{types.Integer}, false, nil, ErrArity},
		{"param array expanded", []*types.Param{T}, []types.Type{m.ArrayOf(T, 1)}, []types.Type{types.Integer, types.Integer, types.Integer}, true, []types.Type{types.Integer}, nil},
		{"param array normal form", []*types.Param{T}, []types.Type{m.ArrayOf(T, 1)}, []types.Type{m.ArrayOf(types.Char, 1)}, true, []types.Type{types.Char}, nil},
		{"param array with fixed prefix", []*types.Param{T, U}, []types.Type{U, m.ArrayOf(T, 1)}, []types.Type{types.String, types.Byte, types.Byte}, true, []types.Type{types.Byte, types.String}, nil},
		{"param array conflict", []*types.Param{T}, []types.Type{m.ArrayOf(T, 1)}, []types.Type{types.Integer, types.String}, true, nil, ErrConflict},
		{"param array empty", []*types.Param{T}, []types.Type{m.ArrayOf(T, 1)}, nil, true, nil, ErrUnresolved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InferTypeArguments(m, tt.params, tt.formals, tt.actuals, tt.paramArray)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if !types.Identical(got[i], tt.want[i]) {
					t.Errorf("argument %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestInferAndCheck(t *testing.T) {
	w := newWorld()
	m := w.m
	T := bind(m, "T", &Constraints{ReferenceType: true})
	method := &types.Method{
		Name:       "Pick",
		TypeParams: []*types.Param{T},
		Params: []*types.Parameter{
			{Name: "a", Type: T},
			{Name: "b", Type: T},
		},
		Result: T,
	}

	tests := []struct {
		name    string
		actuals []types.Type
		code    int
	}{
		{"ok", []types.Type{w.base, w.base}, 0},
		{"conflict", []types.Type{w.base, w.derived}, diag.ErrInferConflict},
		{"unresolved", []types.Type{types.Null, types.Null}, diag.ErrCannotInfer},
		{"constraint", []types.Type{types.Integer, types.Integer}, diag.ErrRefConstraint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag()
			c := NewChecker(convert.NewEngine(m), bag)
			args, ok := c.InferAndCheck(method, tt.actuals, loc)
			if tt.code == 0 {
				if !ok || len(args) != 1 || args[0] != w.base {
					t.Errorf("args = %v, codes = %v", args, bag.Codes())
				}
				return
			}
			if ok || !bag.Has(tt.code) {
				t.Errorf("ok = %v, codes = %v, want BC%d", ok, bag.Codes(), tt.code)
			}
		})
	}
}
