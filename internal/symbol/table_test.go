package symbol

import (
	"context"
	"testing"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/convert"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/generic"
	"github.com/tangzhangming/vbc/internal/parser"
	"github.com/tangzhangming/vbc/internal/types"
)

// collect 分析若干源文件并收集声明；语法错误使测试失败
func collect(t *testing.T, sources ...string) (*Table, *diag.Bag) {
	t.Helper()
	m := types.NewManager()
	bag := diag.NewBag()
	var files []*ast.File
	for i, src := range sources {
		name := string(rune('a'+i)) + ".vb"
		f, err := parser.ParseSource(context.Background(), name, src, parser.Options{}, bag)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		files = append(files, f)
	}
	if bag.HasErrors() {
		t.Fatalf("syntax errors: %v", bag.Codes())
	}
	checker := generic.NewChecker(convert.NewEngine(m), bag)
	return Collect(m, checker, files, bag), bag
}

func lookup(t *testing.T, table *Table, name string) *types.Named {
	t.Helper()
	n := table.Lookup(name)
	if n == nil {
		t.Fatalf("type %s not declared", name)
	}
	return n
}

const declarations = `Imports System
Namespace Shapes
    Public MustInherit Class Shape
        Public Name As String
        Private count, total As Integer
        Public Const Sides As Integer = 0
        Public MustOverride Function Area() As Double
        Public Sub New()
        End Sub
        Class Point
            Dim X As Integer
        End Class
    End Class
    Public Class Circle
        Inherits Shape
        Implements IComparable
        Sub New(r As Double)
        End Sub
        Public Overrides Function Area() As Double
            Return 0
        End Function
        Shared Function Unit() As Circle
            Return Nothing
        End Function
        Public Shared Widening Operator CType(c As Circle) As Double
            Return 0
        End Operator
    End Class
    Public Interface IShape
        Inherits IComparable
        Function Area() As Double
        Sub Move(dx As Integer, ByRef dy As Integer)
    End Interface
    Public Enum Color As Byte
        Red
        Green = 5
    End Enum
    Public Delegate Function Measure(s As Shape, ParamArray extra As Integer()) As Double
    Public Structure Box(Of T As Class)
        Dim Item As T
        Function Fetch(Of U As T)(x As U) As T
            Return x
        End Function
    End Structure
    Module Helpers
        Function Twice(x As Integer) As Integer
            Return x
        End Function
    End Module
End Namespace
`

func TestCollectDeclarations(t *testing.T) {
	table, bag := collect(t, declarations)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics %v", bag.Codes())
	}
	m := table.Types()

	shape := lookup(t, table, "Shapes.Shape")
	if shape.Kind != types.Class || !shape.Abstract || shape.Sealed || !shape.Public {
		t.Errorf("Shape = %+v", shape)
	}
	if len(shape.Fields) != 4 {
		t.Fatalf("Shape fields = %d", len(shape.Fields))
	}
	if f := shape.LookupField("count"); f == nil || f.Type != types.Integer {
		t.Errorf("count field = %+v", f)
	}
	if f := shape.LookupField("Sides"); f == nil || !f.Const || !f.Shared {
		t.Errorf("Sides field = %+v", f)
	}
	area := shape.LookupMethods("Area")
	if len(area) != 1 || !area[0].Abstract || area[0].Result != types.Double {
		t.Errorf("Area = %+v", area)
	}
	if !shape.HasDefaultConstructor() {
		t.Error("Shape should have a public parameterless constructor")
	}

	point := lookup(t, table, "Shapes.Shape.Point")
	if point.Namespace != "Shapes.Shape" {
		t.Errorf("Point namespace = %q", point.Namespace)
	}

	circle := lookup(t, table, "Shapes.Circle")
	if circle.Base != shape {
		t.Errorf("Circle base = %v", circle.Base)
	}
	if !m.IsSubclassOf(circle, shape) || !m.Implements(circle, m.IComparable) {
		t.Error("Circle hierarchy not registered")
	}
	if circle.HasDefaultConstructor() {
		t.Error("Circle only declares New(r As Double)")
	}
	if unit := circle.LookupMethods("Unit"); len(unit) != 1 || !unit[0].Shared || unit[0].Result != circle {
		t.Errorf("Unit = %+v", unit)
	}
	if len(circle.Operators) != 1 {
		t.Fatalf("operators = %d", len(circle.Operators))
	}
	if op := circle.Operators[0]; !op.Widening || op.From != circle || op.To != types.Double {
		t.Errorf("operator = %s", op)
	}

	ishape := lookup(t, table, "Shapes.IShape")
	if len(ishape.Interfaces) != 1 || ishape.Interfaces[0] != m.IComparable {
		t.Errorf("IShape interfaces = %v", ishape.Interfaces)
	}
	move := ishape.LookupMethods("Move")
	if len(move) != 1 || !move[0].Abstract || !move[0].Public || !move[0].Params[1].ByRef {
		t.Errorf("Move = %+v", move)
	}

	color := lookup(t, table, "Shapes.Color")
	if color.Underlying != types.Byte || len(color.Fields) != 2 || color.Fields[1].Type != color {
		t.Errorf("Color = %+v", color)
	}

	measure := lookup(t, table, "Shapes.Measure")
	sig := m.DelegateSignature(measure)
	if sig == nil || len(sig.Params) != 2 || sig.Params[0].Type != shape || sig.Result != types.Double {
		t.Fatalf("Measure signature = %+v", sig)
	}
	if !sig.Params[1].ParamArray {
		t.Error("extra should be a ParamArray")
	}
	if _, ok := sig.Params[1].Type.(*types.Array); !ok {
		t.Errorf("extra type = %v", sig.Params[1].Type)
	}

	box := lookup(t, table, "Shapes.Box")
	if len(box.TypeParams) != 1 {
		t.Fatalf("Box type params = %d", len(box.TypeParams))
	}
	tp := box.TypeParams[0]
	if c := m.ConstraintsOf(tp); c == nil || !c.HasReferenceTypeConstraint() {
		t.Errorf("constraints of T = %v", c)
	}
	if f := box.LookupField("Item"); f == nil || f.Type != tp {
		t.Errorf("Item = %+v", f)
	}
	fetch := box.LookupMethods("Fetch")
	if len(fetch) != 1 || len(fetch[0].TypeParams) != 1 {
		t.Fatalf("Fetch = %+v", fetch)
	}
	u := fetch[0].TypeParams[0]
	if c := m.ConstraintsOf(u); c == nil || len(c.TypeParameterConstraints()) != 1 || c.TypeParameterConstraints()[0] != tp {
		t.Errorf("constraints of U = %v", c)
	}
	if fetch[0].Params[0].Type != u || fetch[0].Result != tp {
		t.Errorf("Fetch signature = %+v", fetch[0])
	}

	helpers := lookup(t, table, "Shapes.Helpers")
	if twice := helpers.LookupMethods("Twice"); len(twice) != 1 || !twice[0].Shared {
		t.Errorf("Twice = %+v", twice)
	}
}

func TestDeclarationSymbols(t *testing.T) {
	src := "Class C\nSub F(x As Long)\nEnd Sub\nEnd Class\n"
	table, _ := collect(t, src)
	e := table.Entries()[0]
	if e.Decl.Sym != e.Type {
		t.Error("TypeDecl.Sym not set")
	}
	md := e.Decl.Members[0].(*ast.MethodDecl)
	if md.Sym == nil || md.Sym.Owner != e.Type {
		t.Fatalf("MethodDecl.Sym = %+v", md.Sym)
	}
	if md.Params[0].Type != types.Long {
		t.Errorf("parameter type = %v", md.Params[0].Type)
	}
}

func TestPartialTypes(t *testing.T) {
	a := "Partial Class P\nDim X As Integer\nEnd Class\n"
	b := "Class P\nInherits Base\nDim Y As Integer\nEnd Class\nClass Base\nEnd Class\n"
	table, bag := collect(t, a, b)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics %v", bag.Codes())
	}
	p := lookup(t, table, "P")
	if len(table.EntriesOf(p)) != 2 {
		t.Errorf("entries = %d", len(table.EntriesOf(p)))
	}
	if p.LookupField("X") == nil || p.LookupField("Y") == nil {
		t.Errorf("fields = %v", p.Fields)
	}
	if p.Base != lookup(t, table, "Base") {
		t.Errorf("base = %v", p.Base)
	}
}

func TestScopeLookup(t *testing.T) {
	src := `Namespace Outer.Inner
    Class Target
    End Class
    Class User
        Class Target
        End Class
        Dim Own As Target
        Dim Sibling As Outer.Inner.Target
    End Class
End Namespace
Namespace Outer
    Class Other
        Dim Far As Inner.Target
    End Class
End Namespace
`
	table, bag := collect(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics %v", bag.Codes())
	}
	user := lookup(t, table, "Outer.Inner.User")
	nested := lookup(t, table, "Outer.Inner.User.Target")
	top := lookup(t, table, "Outer.Inner.Target")
	if f := user.LookupField("Own"); f.Type != nested {
		t.Errorf("Own = %v, want the nested Target", f.Type)
	}
	if f := user.LookupField("Sibling"); f.Type != top {
		t.Errorf("Sibling = %v", f.Type)
	}
	other := lookup(t, table, "Outer.Other")
	if f := other.LookupField("Far"); f.Type != top {
		t.Errorf("Far = %v", f.Type)
	}
}

func TestGenericInstances(t *testing.T) {
	src := `Class Holder(Of T As Class)
End Class
Class Uses
    Dim A As Holder(Of String)
    Dim B As Holder(Of Integer)
    Dim C As Holder(Of Holder(Of String))()
End Class
`
	table, bag := collect(t, src)
	codes := bag.Codes()
	if len(codes) != 1 || codes[0] != diag.ErrRefConstraint {
		t.Fatalf("codes = %v, want only %d", codes, diag.ErrRefConstraint)
	}
	uses := lookup(t, table, "Uses")
	holder := lookup(t, table, "Holder")
	inst, ok := uses.LookupField("A").Type.(*types.Instance)
	if !ok || inst.Def != holder || inst.Args[0] != types.String {
		t.Errorf("A = %v", uses.LookupField("A").Type)
	}
	arr, ok := uses.LookupField("C").Type.(*types.Array)
	if !ok || arr.Rank != 1 {
		t.Fatalf("C = %v", uses.LookupField("C").Type)
	}
	if inner, ok := arr.Elem.(*types.Instance); !ok || inner.Def != holder {
		t.Errorf("C element = %v", arr.Elem)
	}
}

func TestDeclarationErrors(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		code    int
	}{
		{"undefined type", []string{"Class C\nDim x As Missing\nEnd Class\n"}, diag.ErrTypeNotDefined},
		{"missing type arguments", []string{"Class G(Of T)\nEnd Class\nClass C\nDim x As G\nEnd Class\n"}, diag.ErrTypeArgCount},
		{"extra type arguments", []string{"Class C\nDim x As C(Of Integer)\nEnd Class\n"}, diag.ErrTypeArgCount},
		{"inherits structure", []string{"Structure S\nEnd Structure\nClass C\nInherits S\nEnd Class\n"}, diag.ErrInheritsNonClass},
		{"implements class", []string{"Class B\nEnd Class\nClass C\nImplements B\nEnd Class\n"}, diag.ErrImplementsNonIface},
		{"interface inherits class", []string{"Class B\nEnd Class\nInterface I\nInherits B\nEnd Interface\n"}, diag.ErrImplementsNonIface},
		{"inheritance cycle", []string{"Class A\nInherits B\nEnd Class\nClass B\nInherits A\nEnd Class\n"}, diag.ErrInheritanceCycle},
		{"interface cycle", []string{"Interface I\nInherits J\nEnd Interface\nInterface J\nInherits I\nEnd Interface\n"}, diag.ErrInheritanceCycle},
		{"enum underlying", []string{"Enum E As String\nA\nEnd Enum\n"}, diag.ErrEnumUnderlying},
		{"operator signature", []string{"Class C\nShared Widening Operator CType(x As Integer) As Long\nReturn 0\nEnd Operator\nEnd Class\n"}, diag.ErrOperatorSignature},
		{"duplicate across files", []string{"Class C\nEnd Class\n", "Class C\nEnd Class\n"}, diag.ErrDuplicateType},
		{"partial kind mismatch", []string{"Partial Class C\nEnd Class\n", "Structure C\nEnd Structure\n"}, diag.ErrDuplicateType},
		{"constraint conflict", []string{"Class C(Of T As {Class, Structure})\nEnd Class\n"}, diag.ErrConflictConstraints},
		{"circular constraint", []string{"Class C(Of T As U, U As T)\nEnd Class\n"}, diag.ErrCircularConstraint},
		{"type parameter named like type", []string{"Class C(Of C)\nEnd Class\n"}, diag.ErrTypeParamShadowsType},
		{"new constraint", []string{"MustInherit Class A\nEnd Class\nClass G(Of T As New)\nEnd Class\nClass C\nDim x As G(Of A)\nEnd Class\n"}, diag.ErrNewAbstract},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := collect(t, tt.sources...)
			if !bag.Has(tt.code) {
				t.Errorf("codes = %v, want %d", bag.Codes(), tt.code)
			}
		})
	}
}
