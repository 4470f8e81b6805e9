package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/lexer"
	"github.com/tangzhangming/vbc/internal/preproc"
	"github.com/tangzhangming/vbc/internal/types"
)

// sliceSource 由 token 列表构成的输入
type sliceSource struct {
	toks []lexer.TokenType
	vals []any
	i    int
}

func (s *sliceSource) Advance() bool {
	s.i++
	return s.i <= len(s.toks)
}

func (s *sliceSource) Token() lexer.TokenType { return s.toks[s.i-1] }

func (s *sliceSource) Value() any {
	if s.i-1 < len(s.vals) {
		return s.vals[s.i-1]
	}
	return nil
}

func (s *sliceSource) Pos() diag.Location { return diag.Location{Line: 1, Column: s.i} }

func runGrammar(t *testing.T, g *grammar, src TokenSource) (any, error) {
	t.Helper()
	p := &parser{sink: diag.Discard, scopes: newScopeStack()}
	return newDriver(context.Background(), compile(g), p, src).run()
}

func parseOK(t *testing.T, src string) *ast.File {
	t.Helper()
	bag := diag.NewBag()
	f, err := ParseSource(context.Background(), "test.vb", src, Options{}, bag)
	if err != nil {
		t.Fatalf("ParseSource() error = %v", err)
	}
	if bag.HasErrors() {
		for _, d := range bag.Diagnostics() {
			t.Errorf("unexpected diagnostic: %s", d)
		}
		t.FailNow()
	}
	return f
}

func TestLanguageTables(t *testing.T) {
	tbl := Tables()
	if len(tbl.Conflicts) != 0 {
		for _, c := range tbl.Conflicts {
			t.Errorf("conflict: %s", c)
		}
	}
	if tbl.Terminals() != int(lexer.NumTokenTypes) {
		t.Errorf("Terminals() = %d, want %d", tbl.Terminals(), lexer.NumTokenTypes)
	}
	if tbl.States() == 0 || tbl.Productions() == 0 || tbl.Nonterminals() == 0 {
		t.Errorf("empty table: %d states, %d productions", tbl.States(), tbl.Productions())
	}
	if Tables() != tbl {
		t.Error("Tables() should be built once")
	}
}

func exprGrammar() *grammar {
	num := func(v any) int64 {
		n, _ := v.(int64)
		return n
	}
	g := &grammar{}
	g.rule("E : E + T", func(p *parser, v []any, l []diag.Location) any { return num(v[0]) + num(v[2]) })
	g.rule("E : T", nil)
	g.rule("T : T * F", func(p *parser, v []any, l []diag.Location) any { return num(v[0]) * num(v[2]) })
	g.rule("T : F", nil)
	g.rule("F : ( E )", at(1))
	g.rule("F : INT", func(p *parser, v []any, l []diag.Location) any {
		n, _ := constant.ToLong(v[0].(constant.Value))
		return int64(n)
	})
	return g
}

func TestCompileExpressionGrammar(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"2 * (3 + 4) * 5", 70},
		{"42", 42},
	}
	g := exprGrammar()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := lexer.New(tt.input)
			var src sliceSource
			for l.Advance() {
				if l.Token() == lexer.TOKEN_EOL {
					continue
				}
				src.toks = append(src.toks, l.Token())
				src.vals = append(src.vals, l.Value())
			}
			got, err := runGrammar(t, g, &src)
			if err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %d", got, tt.want)
			}
		})
	}
}

func TestCompileDanglingElse(t *testing.T) {
	g := &grammar{}
	g.rule("S : If IDENT Then S", func(p *parser, v []any, l []diag.Location) any {
		return "if(" + str(v[1]) + "," + str(v[3]) + ")"
	})
	g.rule("S : If IDENT Then S Else S", func(p *parser, v []any, l []diag.Location) any {
		return "if(" + str(v[1]) + "," + str(v[3]) + "," + str(v[5]) + ")"
	})
	g.rule("S : IDENT", nil)

	tbl := compile(g)
	if len(tbl.Conflicts) != 1 {
		t.Fatalf("conflicts = %v, want one", tbl.Conflicts)
	}
	c := tbl.Conflicts[0]
	if c.Kind != "shift/reduce" || c.Symbol != "Else" || c.Chosen != "shift" {
		t.Errorf("conflict = %s", c)
	}

	// If a Then If b Then c Else d：Else 属于内层 If
	src := &sliceSource{
		toks: []lexer.TokenType{lexer.TOKEN_IF, lexer.TOKEN_IDENT, lexer.TOKEN_THEN, lexer.TOKEN_IF, lexer.TOKEN_IDENT,
			lexer.TOKEN_THEN, lexer.TOKEN_IDENT, lexer.TOKEN_ELSE, lexer.TOKEN_IDENT},
		vals: []any{nil, "a", nil, nil, "b", nil, "c", nil, "d"},
	}
	got, err := runGrammar(t, g, src)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got != "if(a,if(b,c,d))" {
		t.Errorf("got %v", got)
	}
}

func TestCompileReduceReduce(t *testing.T) {
	g := &grammar{}
	g.rule("S : A", nil)
	g.rule("S : B", nil)
	g.rule("A : IDENT", value("A"))
	g.rule("B : IDENT", value("B"))

	tbl := compile(g)
	if len(tbl.Conflicts) != 1 || tbl.Conflicts[0].Kind != "reduce/reduce" {
		t.Fatalf("conflicts = %v", tbl.Conflicts)
	}
	got, err := runGrammar(t, g, &sliceSource{toks: []lexer.TokenType{lexer.TOKEN_IDENT}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "A" {
		t.Errorf("earlier production should win, got %v", got)
	}
}

func TestParseEmptyFile(t *testing.T) {
	f := parseOK(t, "' nothing here\n")
	if f.Name != "test.vb" || len(f.Members) != 0 || len(f.Options) != 0 {
		t.Errorf("file = %+v", f)
	}
}

const fullProgram = `Option Strict On
Option Compare Text
Imports System, System.Collections.Generic

Namespace App.Core
    Public MustInherit Class Box(Of T As {Class, New}, U)
        Inherits Base
        Implements IBox(Of T), IOther
        Private item As T
        Const Max As Integer = 10, Min = 1
        Dim a, b As Long
        Public Sub New(ByVal x As T, Optional ByRef n As Integer = 3)
            item = x
        End Sub
        Public Overridable Function Value() As T
            Return item
        End Function
        Public MustOverride Sub Reset(ParamArray xs As Integer())
        Public Shared Widening Operator CType(ByVal b As Box(Of T, U)) As T
            Return b.item
        End Operator
        Public Shared Operator +(ByVal x As Box(Of T, U), ByVal y As Integer) As Integer
            Return y
        End Operator
        Sub Body(Of V As Structure)(ByVal v As V?, ByVal m As Integer(,))
            Dim i As Integer = 0, s As String = "a" & "b"
            Dim f = Function(k As Integer) k * 2
            If i = 0 Then
                i += 1
            ElseIf i > 1 AndAlso Not s Is Nothing Then
                i = -i ^ 2
            Else If i < 0 Then
                Exit Sub
            Else
                i = CInt(3.5) \ 2 Mod 3
            End If
            If i Then i = 1 Else i = 2
            While i < 10
                i = i << 1
                Exit While
            End While
            Do
                i -= 1
            Loop Until i <= 0
            Do While i < 3
                Exit Do
            Loop
            For j As Integer = 1 To 10 Step 2
                Console.WriteLine(j, DirectCast(item, Object), TryCast(item, String))
                Exit For
            Next j
            For i = 0 To 1
            Next
            Dim o As New List(Of Integer)(4)
            Dim p As Object = New Box(Of T, U)
            Dim t1 = TypeOf o Is List(Of Integer)
            Dim g = GetType(Dictionary(Of String, Integer))
            Dim d = AddressOf Me.Body
            Dim q = MyBase.ToString().Length
            Dim r = Generic(Of Integer)(1, 2)
            Throw New Exception("x")
        End Sub
    End Class

    Friend Structure Pair
        Public First As Integer
    End Structure

    Public Interface IBox(Of T)
        Inherits IOther
        Function Value() As T
        Sub Reset(ByVal n As Integer)
    End Interface

    Public Enum Color As Byte
        Red
        Green = 2 + 3
    End Enum

    Public Delegate Function Fn(Of T)(ByVal x As T) As Boolean

    Module Util
        Sub Main()
        End Sub
    End Module
End Namespace

Namespace Other
End Namespace
`

func TestParseProgram(t *testing.T) {
	f := parseOK(t, fullProgram)

	if len(f.Options) != 2 || f.Options[0].Name != "Strict" || f.Options[0].Value != "On" ||
		f.Options[1].Name != "Compare" || f.Options[1].Value != "Text" {
		t.Errorf("options = %+v %+v", f.Options[0], f.Options[1])
	}
	if strings.Join(f.Imports, ";") != "System;System.Collections.Generic" {
		t.Errorf("imports = %v", f.Imports)
	}
	if len(f.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(f.Members))
	}
	ns := f.Members[0].(*ast.Namespace)
	if ns.Name != "App.Core" || len(ns.Members) != 6 {
		t.Fatalf("namespace %s has %d members", ns.Name, len(ns.Members))
	}

	box := ns.Members[0].(*ast.TypeDecl)
	if box.Kind != types.Class || box.Name != "Box" || !box.Modifiers.Has(ast.ModMustInherit) {
		t.Errorf("box = %s %s %v", box.Kind, box.Name, box.Modifiers.Names())
	}
	if len(box.TypeParams) != 2 || len(box.TypeParams[0].Constraints) != 2 ||
		box.TypeParams[0].Constraints[0].Kind != ast.ConstraintClass ||
		box.TypeParams[0].Constraints[1].Kind != ast.ConstraintNew {
		t.Errorf("type params = %+v", box.TypeParams)
	}
	if len(box.Inherits) != 1 || len(box.Implements) != 2 {
		t.Errorf("inherits %d implements %d", len(box.Inherits), len(box.Implements))
	}
	if gen := box.Implements[0].(*ast.NamedType); gen.Name != "IBox" || len(gen.Args) != 1 {
		t.Errorf("implements[0] = %+v", gen)
	}

	kinds := make([]string, 0, len(box.Members))
	for _, m := range box.Members {
		switch m := m.(type) {
		case *ast.FieldDecl:
			kinds = append(kinds, "field")
		case *ast.MethodDecl:
			kinds = append(kinds, m.Name)
		}
	}
	if got := strings.Join(kinds, " "); got != "field field field New Value Reset CType + Body" {
		t.Errorf("members = %s", got)
	}

	consts := box.Members[1].(*ast.FieldDecl)
	if !consts.Const || len(consts.Vars) != 2 || consts.Vars[1].Name != "Min" {
		t.Errorf("const field = %+v", consts)
	}
	shared := box.Members[2].(*ast.FieldDecl)
	if shared.Vars[0].TypeRef == nil || shared.Vars[0].TypeRef.(*ast.NamedType).Name != "Long" {
		t.Errorf("Dim a, b As Long: a has no type")
	}

	ctor := box.Members[3].(*ast.MethodDecl)
	if ctor.Kind != ast.CtorMethod || len(ctor.Params) != 2 || !ctor.Params[1].ByRef ||
		!ctor.Params[1].Optional || ctor.Params[1].Default == nil {
		t.Errorf("ctor = %+v", ctor)
	}
	reset := box.Members[5].(*ast.MethodDecl)
	if reset.Body != nil || !reset.Modifiers.Has(ast.ModMustOverride) || !reset.Params[0].ParamArray {
		t.Errorf("MustOverride method = %+v", reset)
	}
	if arr, ok := reset.Params[0].TypeRef.(*ast.ArrayType); !ok || arr.Rank != 1 {
		t.Errorf("ParamArray type = %#v", reset.Params[0].TypeRef)
	}
	conv := box.Members[6].(*ast.MethodDecl)
	if conv.Kind != ast.OperatorMethod || !conv.Widening || conv.Result == nil {
		t.Errorf("conversion operator = %+v", conv)
	}

	body := box.Members[8].(*ast.MethodDecl)
	if len(body.TypeParams) != 1 || body.TypeParams[0].Constraints[0].Kind != ast.ConstraintStructure {
		t.Errorf("method type params = %+v", body.TypeParams)
	}
	if _, ok := body.Params[0].TypeRef.(*ast.NullableType); !ok {
		t.Errorf("V? = %#v", body.Params[0].TypeRef)
	}
	if arr, ok := body.Params[1].TypeRef.(*ast.ArrayType); !ok || arr.Rank != 2 {
		t.Errorf("Integer(,) = %#v", body.Params[1].TypeRef)
	}

	stmts := body.Body
	if len(stmts) != 17 {
		t.Fatalf("body has %d statements, want 17", len(stmts))
	}
	ifs := stmts[2].(*ast.If)
	if len(ifs.ElseIfs) != 2 || len(ifs.Else) != 1 {
		t.Errorf("if: %d ElseIf, %d Else", len(ifs.ElseIfs), len(ifs.Else))
	}
	if a := ifs.Then[0].(*ast.Assign); !a.Compound || a.Op != ast.Add {
		t.Errorf("i += 1 = %+v", a)
	}
	single := stmts[3].(*ast.If)
	if len(single.Then) != 1 || len(single.Else) != 1 {
		t.Errorf("single-line if = %+v", single)
	}
	do := stmts[5].(*ast.DoLoop)
	if !do.PostTest || !do.Until || do.Cond == nil {
		t.Errorf("do loop = %+v", do)
	}
	pre := stmts[6].(*ast.DoLoop)
	if pre.PostTest || pre.Until || pre.Cond == nil {
		t.Errorf("do while = %+v", pre)
	}
	loop := stmts[7].(*ast.For)
	if loop.Var == nil || loop.Step == nil || len(loop.Body) != 2 {
		t.Errorf("for = %+v", loop)
	}
	if stmts[8].(*ast.For).Var != nil {
		t.Error("For i = ... should not declare a variable")
	}
	newDecl := stmts[9].(*ast.LocalDecl).Vars[0]
	if !newDecl.New || len(newDecl.Args) != 1 {
		t.Errorf("Dim o As New = %+v", newDecl)
	}
	if _, ok := stmts[11].(*ast.LocalDecl).Vars[0].Init.(*ast.TypeOfIs); !ok {
		t.Error("TypeOf ... Is")
	}
	if _, ok := stmts[13].(*ast.LocalDecl).Vars[0].Init.(*ast.AddressOf); !ok {
		t.Error("AddressOf")
	}
	if inv, ok := stmts[15].(*ast.LocalDecl).Vars[0].Init.(*ast.Invoke); !ok {
		t.Error("Generic(Of Integer)(1, 2)")
	} else if _, ok := inv.Fn.(*ast.GenericName); !ok || len(inv.Args) != 2 {
		t.Errorf("generic invoke = %+v", inv)
	}
	if _, ok := stmts[16].(*ast.Throw); !ok {
		t.Error("Throw")
	}

	lambda := stmts[1].(*ast.LocalDecl).Vars[0].Init.(*ast.Lambda)
	if len(lambda.Params) != 1 {
		t.Errorf("lambda = %+v", lambda)
	}

	iface := ns.Members[2].(*ast.TypeDecl)
	if iface.Kind != types.Interface || len(iface.Members) != 2 || len(iface.Inherits) != 1 {
		t.Errorf("interface = %+v", iface)
	}
	enum := ns.Members[3].(*ast.TypeDecl)
	if enum.Kind != types.Enum || len(enum.Enumerators) != 2 || enum.Underlying == nil ||
		enum.Enumerators[1].Value == nil {
		t.Errorf("enum = %+v", enum)
	}
	del := ns.Members[4].(*ast.TypeDecl)
	if del.Kind != types.Delegate || del.Name != "Fn" || len(del.TypeParams) != 1 || del.Result == nil {
		t.Errorf("delegate = %+v", del)
	}
	if mod := ns.Members[5].(*ast.TypeDecl); mod.Kind != types.Module {
		t.Errorf("module = %+v", mod)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	src := "Class C\nSub F()\nx = %s\nEnd Sub\nEnd Class\n"
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"-2 ^ 2", "(-(2 ^ 2))"},
		{"2 ^ -1", "(2 ^ (-1))"},
		{"a & b + c", "(a & (b + c))"},
		{"a Mod b \\ c", "(a Mod (b \\ c))"},
		{"a = b And c <> d", "((a = b) And (c <> d))"},
		{"Not a Or b", "((Not a) Or b)"},
		{"a Or b Xor c", "((a Or b) Xor c)"},
		{"a << 1 + 2", "(a << (1 + 2))"},
		{"a.b(1).c", "a.b(1).c"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f := parseOK(t, strings.Replace(src, "%s", tt.expr, 1))
			m := f.Members[0].(*ast.TypeDecl).Members[0].(*ast.MethodDecl)
			got := render(m.Body[0].(*ast.Assign).Value)
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

var binNames = map[ast.BinOp]string{
	ast.Add: "+", ast.Sub: "-", ast.Mul: "*", ast.IntDiv: "\\", ast.Mod: "Mod", ast.Pow: "^",
	ast.Concat: "&", ast.And: "And", ast.Or: "Or", ast.Xor: "Xor", ast.Eq: "=", ast.Ne: "<>", ast.Shl: "<<",
}

func render(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Binary:
		return "(" + render(e.X) + " " + binNames[e.Op] + " " + render(e.Y) + ")"
	case *ast.Unary:
		if e.Op == ast.Not {
			return "(Not " + render(e.X) + ")"
		}
		return "(" + e.Op.String() + render(e.X) + ")"
	case *ast.Ident:
		return e.Name
	case *ast.Constant:
		return e.Value.String()
	case *ast.MemberAccess:
		return render(e.X) + "." + e.Name
	case *ast.Invoke:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = render(a)
		}
		return render(e.Fn) + "(" + strings.Join(args, ", ") + ")"
	}
	return "?"
}

func TestDeepNesting(t *testing.T) {
	const depth = 10000
	src := "Class C\nSub F()\nx = " + strings.Repeat("(", depth) + "1" + strings.Repeat(")", depth) + "\nEnd Sub\nEnd Class\n"
	f := parseOK(t, src)
	e := f.Members[0].(*ast.TypeDecl).Members[0].(*ast.MethodDecl).Body[0].(*ast.Assign).Value
	n := 0
	for {
		p, ok := e.(*ast.Paren)
		if !ok {
			break
		}
		e = p.X
		n++
	}
	if n != depth {
		t.Errorf("depth = %d, want %d", n, depth)
	}
	if _, ok := e.(*ast.Constant); !ok {
		t.Errorf("innermost = %T", e)
	}
}

func TestErrorRecovery(t *testing.T) {
	src := `Class C
    Sub F()
        x = = 1
        y = 2
        z = )
    End Sub
End Class
`
	bag := diag.NewBag()
	f, err := ParseSource(context.Background(), "test.vb", src, Options{}, bag)
	if err != nil {
		t.Fatalf("ParseSource() error = %v", err)
	}
	ds := bag.Diagnostics()
	if len(ds) != 2 || ds[0].Code != diag.ErrSyntax || ds[1].Code != diag.ErrSyntax {
		t.Fatalf("diagnostics = %v", ds)
	}
	if ds[0].Location.Line != 3 || ds[1].Location.Line != 5 {
		t.Errorf("error lines = %d, %d", ds[0].Location.Line, ds[1].Location.Line)
	}
	if !strings.Contains(ds[0].Message, "unexpected =") {
		t.Errorf("message = %q", ds[0].Message)
	}
	body := f.Members[0].(*ast.TypeDecl).Members[0].(*ast.MethodDecl).Body
	if len(body) != 1 || body[0].(*ast.Assign).Target.(*ast.Ident).Name != "y" {
		t.Errorf("body = %+v", body)
	}
}

func TestErrorAtEndOfFile(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unclosed method", "Class C\n  Sub F()\n"},
		{"incomplete expression", "Class C\n    Sub F()\n        x = (1 +\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag()
			f, err := ParseSource(context.Background(), "test.vb", tt.src, Options{}, bag)
			if !errors.Is(err, ErrAborted) {
				t.Fatalf("err = %v, want ErrAborted", err)
			}
			if f != nil {
				t.Error("aborted parse should not return a file")
			}
			codes := bag.Codes()
			if len(codes) != 2 || codes[0] != diag.ErrSyntax || codes[1] != diag.ErrUnrecoverable {
				t.Errorf("codes = %v", codes)
			}
		})
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	bag := diag.NewBag()
	ParseSource(context.Background(), "test.vb", "Class C\nSub F()\nx = 1 +\nEnd Sub\nEnd Class\n", Options{}, bag)
	ds := bag.Diagnostics()
	if len(ds) != 1 {
		t.Fatalf("diagnostics = %v", ds)
	}
	msg := ds[0].Message
	if !strings.Contains(msg, "end of statement") || !strings.Contains(msg, "IDENT") ||
		strings.Contains(msg, "expecting error") || strings.Contains(msg, ", error") {
		t.Errorf("message = %q", msg)
	}
}

func TestDeclarationErrors(t *testing.T) {
	wrap := func(body string) string {
		return "Class C\nSub F(a As Integer)\n" + body + "\nEnd Sub\nEnd Class\n"
	}
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"duplicate local", wrap("Dim x As Integer\nDim x As Long"), diag.ErrDuplicateLocal},
		{"local shadows parameter", wrap("Dim a As Integer"), diag.ErrDuplicateLocal},
		{"local shadows outer block", wrap("Dim x = 1\nIf x Then\nDim x = 2\nEnd If"), diag.ErrDuplicateLocal},
		{"for variable shadows local", wrap("Dim i = 1\nFor i As Integer = 1 To 2\nNext"), diag.ErrDuplicateLocal},
		{"duplicate parameter", "Class C\nSub F(a As Integer, A As Long)\nEnd Sub\nEnd Class\n", diag.ErrDuplicateParam},
		{"duplicate interface parameter", "Interface I\nSub F(a As Integer, a As Long)\nEnd Interface\n", diag.ErrDuplicateParam},
		{"duplicate type", "Class C\nEnd Class\nStructure c\nEnd Structure\n", diag.ErrDuplicateType},
		{"duplicate nested type", "Class C\nClass D\nEnd Class\nEnum D\nX\nEnd Enum\nEnd Class\n", diag.ErrDuplicateType},
		{"exit for outside loop", wrap("Exit For"), diag.ErrExitOutsideLoop},
		{"exit while inside for", wrap("For i = 1 To 2\nExit While\nNext"), diag.ErrExitOutsideLoop},
		{"exit function in sub", wrap("Exit Function"), diag.ErrExitOutsideLoop},
		{"next mismatch", wrap("For i = 1 To 2\nNext j"), diag.ErrNextMismatch},
		{"end function closes sub", "Class C\nSub F()\nEnd Function\nEnd Class\n", diag.ErrMismatchedEnd},
		{"end structure closes class", "Class C\nEnd Structure\n", diag.ErrMismatchedEnd},
		{"loop condition twice", wrap("Do While a\nLoop Until a"), diag.ErrMismatchedEnd},
		{"bad option value", "Option Strict Maybe\n", diag.ErrInvalidOption},
		{"unknown option", "Option Frobnicate\n", diag.ErrInvalidOption},
		{"compare needs value", "Option Compare\n", diag.ErrInvalidOption},
		{"shared class", "Shared Class C\nEnd Class\n", diag.ErrModifierInvalid},
		{"must inherit and not inheritable", "MustInherit NotInheritable Class C\nEnd Class\n", diag.ErrModifierInvalid},
		{"readonly method", "Class C\nReadOnly Sub F()\nEnd Sub\nEnd Class\n", diag.ErrModifierInvalid},
		{"overridable field", "Class C\nOverridable x As Integer\nEnd Class\n", diag.ErrModifierInvalid},
		{"private operator", "Class C\nPrivate Operator -(a As C) As C\nReturn a\nEnd Operator\nEnd Class\n", diag.ErrModifierInvalid},
		{"interface member modifier", "Interface I\nPublic Sub F()\nEnd Interface\n", diag.ErrModifierInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag()
			if _, err := ParseSource(context.Background(), "test.vb", tt.src, Options{}, bag); err != nil {
				t.Fatalf("ParseSource() error = %v", err)
			}
			if !bag.Has(tt.want) {
				t.Errorf("codes = %v, want %d", bag.Codes(), tt.want)
			}
			if bag.Has(diag.ErrSyntax) {
				t.Errorf("unexpected syntax error: %v", bag.Diagnostics())
			}
		})
	}
}

func TestValidScopes(t *testing.T) {
	src := `Class C
    Sub F(a As Integer)
        If a Then
            Dim x = 1
        Else
            Dim x = 2
        End If
        For i As Integer = 1 To 2
            Do
                If i Then Exit For
                Exit Do
            Loop
        Next I
        While a
            Dim y = 3
        End While
        Dim y = 4
    End Sub
    Function G(a As Integer) As Integer
        Exit Function
    End Function
    Class D
    End Class
End Class

Class D
End Class
Partial Class P
End Class
Partial Class P
End Class
Class Q
End Class
Partial Class Q
End Class
`
	parseOK(t, src)
}

func TestDirectiveErrorDropsSyntaxErrors(t *testing.T) {
	bag := diag.NewBag()
	f, err := ParseSource(context.Background(), "test.vb", "#If True Then\nClass C\n", Options{}, bag)
	var perr *preproc.Error
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *preproc.Error", err)
	}
	if perr.Code != diag.ErrEndIfExpected {
		t.Errorf("code = %d", perr.Code)
	}
	if f != nil {
		t.Error("file should be nil")
	}
	if bag.Has(diag.ErrSyntax) || bag.Has(diag.ErrUnrecoverable) {
		t.Errorf("syntax diagnostics leaked: %v", bag.Codes())
	}
}

func TestParseDefines(t *testing.T) {
	src := "#If DEBUG Then\nClass A\nEnd Class\n#Else\nClass B\nEnd Class\n#End If\n"
	opts := Options{Defines: map[string]constant.Value{"DEBUG": constant.BoolValue(true)}}
	f, err := ParseSource(context.Background(), "test.vb", src, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Members) != 1 || f.Members[0].(*ast.TypeDecl).Name != "A" {
		t.Errorf("members = %+v", f.Members)
	}
}

func TestParseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ParseSource(ctx, "test.vb", "Class C\nEnd Class\n", Options{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParseLocations(t *testing.T) {
	f := parseOK(t, "Class C\n    Sub F()\n        Dim x = 1\n    End Sub\nEnd Class\n")
	c := f.Members[0].(*ast.TypeDecl)
	if c.Loc.Line != 1 || c.Loc.Column != 7 || c.Loc.File != "test.vb" {
		t.Errorf("class at %s", c.Loc)
	}
	m := c.Members[0].(*ast.MethodDecl)
	if m.Loc.Line != 2 || m.Loc.Column != 9 {
		t.Errorf("method at %s", m.Loc)
	}
	d := m.Body[0].(*ast.LocalDecl)
	if d.Pos().Line != 3 || d.Pos().Column != 9 || d.Vars[0].Loc.Column != 13 {
		t.Errorf("dim at %s, var at %s", d.Pos(), d.Vars[0].Loc)
	}
}
