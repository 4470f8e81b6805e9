package types

import "testing"

type stubConstraints struct {
	ref, value, ctor bool
	class            Type
	ifaces           []Type
}

func (s stubConstraints) HasReferenceTypeConstraint() bool   { return s.ref }
func (s stubConstraints) HasValueTypeConstraint() bool       { return s.value }
func (s stubConstraints) HasConstructorConstraint() bool     { return s.ctor }
func (s stubConstraints) ClassConstraint() Type              { return s.class }
func (s stubConstraints) InterfaceConstraints() []Type       { return s.ifaces }
func (s stubConstraints) TypeParameterConstraints() []*Param { return nil }

func newList(m *Manager) (*Named, *Param) {
	t := &Param{Name: "T"}
	list := &Named{Name: "List", Kind: Class, TypeParams: []*Param{t}}
	t.Owner = list
	list.Interfaces = []Type{m.IEnumerable}
	m.Declare(list)
	return list, t
}

func TestIdentical(t *testing.T) {
	m := NewManager()
	list, p := newList(m)
	a := &Instance{Def: list, Args: []Type{Integer}}
	b := &Instance{Def: list, Args: []Type{Integer}}
	c := &Instance{Def: list, Args: []Type{Long}}

	tests := []struct {
		name string
		x, y Type
		want bool
	}{
		{"same basic", Integer, Integer, true},
		{"different basic", Integer, Long, false},
		{"structural instance", a, b, true},
		{"instance args differ", a, c, false},
		{"open definition vs instance", list, a, false},
		{"array rank", &Array{Elem: Integer, Rank: 1}, &Array{Elem: Integer, Rank: 2}, false},
		{"array structural", &Array{Elem: a, Rank: 1}, &Array{Elem: b, Rank: 1}, true},
		{"param identity", p, &Param{Name: "T"}, false},
		{"nullable", &Nullable{Elem: Integer}, &Nullable{Elem: Integer}, true},
		{"pointer vs byref", &Pointer{Elem: Integer}, &ByRef{Elem: Integer}, false},
	}
	for _, tt := range tests {
		if got := Identical(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: Identical(%s, %s) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestInterning(t *testing.T) {
	m := NewManager()
	list, _ := newList(m)
	if m.Instantiate(list, []Type{Integer}) != m.Instantiate(list, []Type{Integer}) {
		t.Error("instances are not interned")
	}
	if m.ArrayOf(Integer, 1) != m.ArrayOf(Integer, 1) {
		t.Error("arrays are not interned")
	}
	if m.NullableOf(Integer) == m.NullableOf(Long) {
		t.Error("distinct nullables share a handle")
	}
}

func TestSubstitute(t *testing.T) {
	m := NewManager()
	list, p := newList(m)
	open := m.ArrayOf(m.Instantiate(list, []Type{p}), 1)
	got := m.Substitute(open, Substitution{p: String})
	want := m.ArrayOf(m.Instantiate(list, []Type{String}), 1)
	if got != want {
		t.Errorf("Substitute = %s, want %s", got, want)
	}
	if m.Substitute(Integer, Substitution{p: String}) != Integer {
		t.Error("substitution changed a closed type")
	}
}

func TestHierarchy(t *testing.T) {
	m := NewManager()
	shape := &Named{Name: "Shape", Kind: Class, Abstract: true}
	iDraw := &Named{Name: "IDraw", Kind: Interface}
	iFancy := &Named{Name: "IFancy", Kind: Interface, Interfaces: []Type{iDraw}}
	circle := &Named{Name: "Circle", Kind: Class, Base: shape, Interfaces: []Type{iFancy}}
	color := &Named{Name: "Color", Kind: Enum, Underlying: Byte}
	point := &Named{Name: "Point", Kind: Structure}
	for _, n := range []*Named{shape, iDraw, iFancy, circle, color, point} {
		m.Declare(n)
	}

	if !m.IsSubclassOf(circle, shape) || !m.IsSubclassOf(circle, m.Object) {
		t.Error("Circle should derive from Shape and Object")
	}
	if m.IsSubclassOf(shape, circle) {
		t.Error("Shape is not derived from Circle")
	}
	if !m.Implements(circle, iDraw) {
		t.Error("Circle implements IDraw through IFancy")
	}
	if !m.Implements(m.ArrayOf(Integer, 1), m.IList) {
		t.Error("arrays implement IList")
	}
	if !m.Implements(Integer, m.IComparable) || m.Implements(Integer, m.ICloneable) {
		t.Error("Integer implements IComparable but not ICloneable")
	}
	if !m.IsSubclassOf(color, m.Enum) || m.EnumUnderlying(color) != Byte {
		t.Error("enum hierarchy")
	}
	if !m.IsValueType(point) || m.IsReferenceType(point) {
		t.Error("Point is a value type")
	}
	if m.IsValueType(m.ValueType) || !m.IsReferenceType(m.ValueType) {
		t.Error("System.ValueType itself is a reference type")
	}
	if !m.HasDefaultConstructor(circle) || m.HasDefaultConstructor(iDraw) {
		t.Error("default constructor")
	}
	circle.Ctors = []*Method{{Name: "New", Public: true, Params: []*Parameter{{Name: "r", Type: Double}}}}
	if m.HasDefaultConstructor(circle) {
		t.Error("explicit constructor with parameters hides the implicit one")
	}
}

func TestParamPredicates(t *testing.T) {
	m := NewManager()
	_, p := newList(m)
	if m.IsValueType(p) || m.IsReferenceType(p) {
		t.Error("unconstrained parameter is neither value nor reference type")
	}
	m.BindTypeParameter(p, stubConstraints{ref: true, ifaces: []Type{m.IDisposable}})
	if !m.IsReferenceType(p) || !m.Implements(p, m.IDisposable) {
		t.Error("constrained parameter")
	}
	if m.BaseType(p) != m.Object {
		t.Errorf("BaseType(T) = %v", m.BaseType(p))
	}
}

func TestLookup(t *testing.T) {
	m := NewManager()
	if m.Lookup("INTEGER") != Integer || m.Lookup("System.Int32") != Integer {
		t.Error("builtin lookup")
	}
	if m.Lookup("system.object") != m.Object || m.Lookup("Object") != m.Object {
		t.Error("well-known lookup")
	}
	if m.Declare(&Named{Name: "object", Namespace: "System"}) {
		t.Error("duplicate declaration accepted")
	}
}

func TestMemberLookup(t *testing.T) {
	m := NewManager()
	list, p := newList(m)
	list.Fields = []*Field{{Name: "Items", Type: m.ArrayOf(p, 1)}}
	list.Methods = []*Method{{Name: "Add", Owner: list, Params: []*Parameter{{Name: "item", Type: p}}}}
	inst := m.Instantiate(list, []Type{String})
	derived := &Named{Name: "Names", Kind: Class, Base: inst}
	m.Declare(derived)

	f, owner := m.FindField(derived, "items")
	if f == nil || !Identical(owner, inst) {
		t.Fatalf("FindField = %v, %v", f, owner)
	}
	s := m.MemberSubstitution(derived, list)
	if got := m.Substitute(f.Type, s); !Identical(got, m.ArrayOf(String, 1)) {
		t.Errorf("field type = %v, want String()", got)
	}
	if got := m.FindMethods(derived, "ADD"); len(got) != 1 {
		t.Errorf("FindMethods found %d methods", len(got))
	}
	if f, _ := m.FindField(derived, "Missing"); f != nil {
		t.Errorf("FindField found %v", f)
	}
	if s := m.MemberSubstitution(derived, m.Exception); s != nil {
		t.Errorf("unrelated owner substitution = %v", s)
	}
}
