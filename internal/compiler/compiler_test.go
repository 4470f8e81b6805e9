package compiler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/types"
)

func compile(t *testing.T, opts Options, sources ...string) *Result {
	t.Helper()
	var srcs []Source
	for i, s := range sources {
		srcs = append(srcs, Source{Name: fmt.Sprintf("%c.vb", 'a'+i), Text: s})
	}
	res, err := Compile(context.Background(), opts, srcs)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return res
}

// compileOK 编译并要求没有错误
func compileOK(t *testing.T, sources ...string) *Result {
	t.Helper()
	res := compile(t, Options{}, sources...)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Diags.Codes())
	}
	return res
}

func typeDecl(t *testing.T, res *Result, name string) *ast.TypeDecl {
	t.Helper()
	for _, e := range res.Symbols.Entries() {
		if strings.EqualFold(e.Decl.Name, name) {
			return e.Decl
		}
	}
	t.Fatalf("type %s not found", name)
	return nil
}

func methodBody(t *testing.T, res *Result, typeName, method string) []ast.Stmt {
	t.Helper()
	for _, m := range typeDecl(t, res, typeName).Members {
		if d, ok := m.(*ast.MethodDecl); ok && strings.EqualFold(d.Name, method) {
			return d.Body
		}
	}
	t.Fatalf("method %s.%s not found", typeName, method)
	return nil
}

func local(t *testing.T, body []ast.Stmt, name string) *ast.VarDecl {
	t.Helper()
	for _, s := range body {
		if d, ok := s.(*ast.LocalDecl); ok {
			for _, v := range d.Vars {
				if strings.EqualFold(v.Name, name) {
					return v
				}
			}
		}
	}
	t.Fatalf("local %s not found", name)
	return nil
}

func fieldValue(t *testing.T, res *Result, typeName, field string) constant.Value {
	t.Helper()
	n := res.Symbols.Lookup(typeName)
	if n == nil {
		t.Fatalf("type %s not declared", typeName)
	}
	f := n.LookupField(field)
	if f == nil {
		t.Fatalf("field %s.%s not found", typeName, field)
	}
	v, _ := f.Value.(constant.Value)
	return v
}

func TestConstantInitializer(t *testing.T) {
	res := compileOK(t, `Module M
    Sub F()
        Dim x As Byte = 200
    End Sub
End Module
`)
	v := local(t, methodBody(t, res, "M", "F"), "x")
	c, ok := v.Init.(*ast.Constant)
	if !ok {
		t.Fatalf("Init = %T, want *ast.Constant", v.Init)
	}
	if c.Type() != types.Byte || c.Value != constant.ByteValue(200) {
		t.Errorf("Init = %v As %v", c.Value, c.Type())
	}
	if v.Sym == nil || v.Sym.Type != types.Byte {
		t.Errorf("local type = %v", v.Sym)
	}
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"constant out of range", `Module M
    Sub F()
        Dim x As Byte = 300
    End Sub
End Module
`, diag.ErrNotRepresentable},
		{"division by zero", `Module M
    Const D As Integer = 1 \ 0
End Module
`, diag.ErrDivisionByZero},
		{"overflow", `Module M
    Const O As Integer = 2147483647 + 1
End Module
`, diag.ErrConstantOverflow},
		{"circular constant", `Class C
    Const A As Integer = B
    Const B As Integer = A
End Class
`, diag.ErrCircularConstant},
		{"undeclared name", `Module M
    Sub F()
        Dim x As Integer = y
    End Sub
End Module
`, diag.ErrNameNotDeclared},
		{"constant required", `Module M
    Sub F()
        Dim i As Integer = 1
        Const c As Integer = i
    End Sub
End Module
`, diag.ErrConstantRequired},
		{"generic constraint", `Module M
    Sub G(Of T As Class)(x As T)
    End Sub
    Sub F()
        G(1)
    End Sub
End Module
`, diag.ErrRefConstraint},
		{"abstract instantiation", `MustInherit Class Shape
End Class
Module M
    Sub F()
        Dim s As Shape = New Shape()
    End Sub
End Module
`, diag.ErrAbstractInstantiate},
		{"interface not implemented", `Interface IShape
    Function Area() As Double
End Interface
Class Square
    Implements IShape
End Class
`, diag.ErrMustImplement},
		{"must override", `MustInherit Class Shape
    MustOverride Function Area() As Double
End Class
Class Circle
    Inherits Shape
End Class
`, diag.ErrMustOverride},
		{"assign to constant", `Module M
    Const K As Integer = 1
    Sub F()
        K = 2
    End Sub
End Module
`, diag.ErrNotAVariable},
		{"missing member", `Class P
    Public X As Integer
End Class
Module M
    Sub F()
        Dim q As New P()
        q.Y = 1
    End Sub
End Module
`, diag.ErrNotMember},
		{"return value from sub", `Module M
    Sub F()
        Return 1
    End Sub
End Module
`, diag.ErrReturnInSub},
		{"argument count", `Module M
    Sub G(a As Integer)
    End Sub
    Sub F()
        G(1, 2)
    End Sub
End Module
`, diag.ErrArgCount},
		{"operator not defined", `Module M
    Sub F()
        Dim d As Date = Nothing
        Dim x = d * 2
    End Sub
End Module
`, diag.ErrOperatorNotDefined},
		{"type used as value", `Class P
End Class
Module M
    Sub F()
        Dim x = P
    End Sub
End Module
`, diag.ErrTypeAsExpr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, Options{}, tt.src)
			if !res.Diags.Has(tt.want) {
				t.Errorf("codes = %v, want %d", res.Diags.Codes(), tt.want)
			}
		})
	}
}

func TestCircularConstantReportedOnce(t *testing.T) {
	res := compile(t, Options{}, `Class C
    Const A As Integer = B
    Const B As Integer = A
End Class
`)
	if n := res.Diags.ErrorCount(); n != 1 {
		t.Errorf("errors = %v, want exactly one", res.Diags.Codes())
	}
}

func TestConstantFolding(t *testing.T) {
	res := compileOK(t, `Module M
    Const A As Integer = 1 + 2 * 3
    Const B As Long = A << 4
    Const S As String = "a" & 1
    Const T As Boolean = A > 5 AndAlso Not False
    Const N As Integer = -A
    Const Q As Integer = 7 \ 2
    Const R As Double = 7 / 2
End Module
`)
	tests := []struct {
		field string
		want  constant.Value
	}{
		{"A", constant.IntegerValue(7)},
		{"B", constant.LongValue(112)},
		{"S", constant.StringValue("a1")},
		{"T", constant.BoolValue(true)},
		{"N", constant.IntegerValue(-7)},
		{"Q", constant.IntegerValue(3)},
		{"R", constant.DoubleValue(3.5)},
	}
	for _, tt := range tests {
		if got := fieldValue(t, res, "M", tt.field); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.field, got, tt.want)
		}
	}
}

func TestEnumValues(t *testing.T) {
	res := compileOK(t, `Enum Color
    Red
    Green = 5
    Blue
    Mask = Red Or Green
    Next2 = Blue + 1
End Enum
`)
	tests := []struct {
		member string
		want   constant.Value
	}{
		{"Red", constant.IntegerValue(0)},
		{"Green", constant.IntegerValue(5)},
		{"Blue", constant.IntegerValue(6)},
		{"Mask", constant.IntegerValue(5)},
		{"Next2", constant.IntegerValue(7)},
	}
	for _, tt := range tests {
		if got := fieldValue(t, res, "Color", tt.member); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.member, got, tt.want)
		}
	}
}

func TestEnumOverflow(t *testing.T) {
	res := compile(t, Options{}, `Enum Small As Byte
    A = 255
    B
End Enum
`)
	if !res.Diags.Has(diag.ErrNotRepresentable) {
		t.Errorf("codes = %v, want %d", res.Diags.Codes(), diag.ErrNotRepresentable)
	}
}

func TestConstantOrderIndependent(t *testing.T) {
	res := compileOK(t, `Class C
    Const A As Integer = B * 2
    Const B As Integer = Other.K + 1
End Class
Module Other
    Public Const K As Integer = 20
End Module
`)
	if got := fieldValue(t, res, "C", "A"); got != constant.IntegerValue(42) {
		t.Errorf("A = %v, want 42", got)
	}
}

func TestOverloadResolution(t *testing.T) {
	res := compileOK(t, `Module M
    Function F(x As Integer) As Integer
        Return 1
    End Function
    Function F(x As String) As String
        Return "s"
    End Function
    Function Id(Of T)(x As T) As T
        Return x
    End Function
    Sub Test()
        Dim a = F(1)
        Dim b = F("x")
        Dim s = Id("a")
        Dim n = Id(Of Long)(1)
    End Sub
End Module
`)
	body := methodBody(t, res, "M", "Test")
	tests := []struct {
		name string
		want types.Type
	}{
		{"a", types.Integer},
		{"b", types.String},
		{"s", types.String},
		{"n", types.Long},
	}
	for _, tt := range tests {
		v := local(t, body, tt.name)
		if v.Sym == nil || v.Sym.Type != tt.want {
			t.Errorf("%s: type = %v, want %v", tt.name, v.Sym, tt.want)
		}
		inv, ok := v.Init.(*ast.Invoke)
		if !ok || inv.Method == nil {
			t.Errorf("%s: Init = %T, want bound call", tt.name, v.Init)
		}
	}
}

func TestStrictPerFile(t *testing.T) {
	narrowing := `Module %s
    Sub F()
        Dim i As Integer = 1
        Dim b As Byte = i
    End Sub
End Module
`
	strict := "Option Strict On\n" + fmt.Sprintf(narrowing, "A")
	loose := fmt.Sprintf(narrowing, "B")

	res := compile(t, Options{}, strict, loose)
	var files []string
	for _, d := range res.Diags.Diagnostics() {
		if d.Code == diag.ErrStrictNarrowing {
			files = append(files, d.Location.File)
		}
	}
	if len(files) != 1 || files[0] != "a.vb" {
		t.Errorf("strict narrowing reported in %v, want [a.vb]", files)
	}

	res = compile(t, Options{Strict: true}, loose)
	if !res.Diags.Has(diag.ErrStrictNarrowing) {
		t.Errorf("project Option Strict: codes = %v", res.Diags.Codes())
	}
}

func TestMembersAndInheritance(t *testing.T) {
	compileOK(t, `Interface IShape
    Function Area() As Double
End Interface
MustInherit Class Shape
    Implements IShape
    Public Name As String
    MustOverride Function Area() As Double
End Class
Class Circle
    Inherits Shape
    Public R As Double
    Sub New(r As Double)
        MyBase.New()
        Me.R = r
        Name = "circle"
    End Sub
    Public Overrides Function Area() As Double
        Return 3.14 * R * R
    End Function
End Class
Module M
    Sub F()
        Dim c As New Circle(2)
        Dim s As Shape = c
        Dim a As Double = s.Area()
        c.R += 1
        If a > 10 AndAlso TypeOf s Is Circle Then
            s = Nothing
        End If
        For i As Integer = 1 To 10 Step 2
            a = a + i
        Next
    End Sub
End Module
`)
}

func TestUserDefinedOperator(t *testing.T) {
	res := compileOK(t, `Structure Money
    Public Amount As Decimal
    Public Shared Operator +(a As Money, b As Money) As Money
        Return a
    End Operator
End Structure
Module M
    Sub F()
        Dim x As Money = Nothing
        Dim y = x + x
    End Sub
End Module
`)
	v := local(t, methodBody(t, res, "M", "F"), "y")
	inv, ok := v.Init.(*ast.Invoke)
	if !ok || inv.Method == nil || inv.Method.Name != "+" {
		t.Fatalf("Init = %T, want operator call", v.Init)
	}
	if n, ok := v.Sym.Type.(*types.Named); !ok || n.Name != "Money" {
		t.Errorf("y type = %v", v.Sym.Type)
	}
}

func TestDirectiveErrorSkipsFile(t *testing.T) {
	res := compile(t, Options{}, "#If True Then\nClass A\nEnd Class\n", "Class B\nEnd Class\n")
	if !res.Diags.Has(diag.ErrEndIfExpected) {
		t.Errorf("codes = %v, want %d", res.Diags.Codes(), diag.ErrEndIfExpected)
	}
	if len(res.Files) != 1 || res.Symbols.Lookup("B") == nil {
		t.Errorf("files = %d, want only b.vb", len(res.Files))
	}
}

func TestDefines(t *testing.T) {
	src := "#If DEBUG Then\nClass A\nEnd Class\n#Else\nClass B\nEnd Class\n#End If\n"
	res := compile(t, Options{Defines: map[string]constant.Value{"DEBUG": constant.BoolValue(true)}}, src)
	if res.Symbols.Lookup("A") == nil || res.Symbols.Lookup("B") != nil {
		t.Error("DEBUG should select class A")
	}
}

func TestCompileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compile(ctx, Options{}, []Source{{Name: "a.vb", Text: "Class A\nEnd Class\n"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
