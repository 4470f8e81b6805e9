package parser

import (
	"strings"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/types"
)

// languageGrammar 语言文法。第一条产生式的左部是开始符号。
func languageGrammar() *grammar {
	g := &grammar{}
	fileRules(g)
	typeRules(g)
	signatureRules(g)
	statementRules(g)
	expressionRules(g)
	return g
}

func fileRules(g *grammar) {
	g.rule("File : OptionList ImportList NsMembers", func(p *parser, v []any, l []diag.Location) any {
		f := &ast.File{Name: p.file, Imports: nil, Members: decls(v[2])}
		f.Options, _ = v[0].([]*ast.Option)
		f.Imports, _ = v[1].([]string)
		return f
	})

	g.rule("OptionList :", none[*ast.Option])
	g.rule("OptionList : OptionList OptionStmt", appendAt[*ast.Option](1))
	g.rule("OptionStmt : Option IDENT EOL", func(p *parser, v []any, l []diag.Location) any {
		return p.option(l[0], str(v[1]), "")
	})
	g.rule("OptionStmt : Option IDENT IDENT EOL", func(p *parser, v []any, l []diag.Location) any {
		return p.option(l[0], str(v[1]), str(v[2]))
	})
	g.rule("OptionStmt : Option IDENT On EOL", func(p *parser, v []any, l []diag.Location) any {
		return p.option(l[0], str(v[1]), "On")
	})

	g.rule("ImportList :", none[string])
	g.rule("ImportList : ImportList Imports ImportNames EOL", concatAt[string](2))
	g.rule("ImportNames : QualifiedName", one[string])
	g.rule("ImportNames : ImportNames , QualifiedName", appendAt[string](2))
	g.rule("QualifiedName : IDENT", nil)
	g.rule("QualifiedName : QualifiedName . IDENT", func(p *parser, v []any, l []diag.Location) any {
		return str(v[0]) + "." + str(v[2])
	})

	g.rule("NsMembers :", none[ast.Decl])
	g.rule("NsMembers : NsMembers NsMember", appendAt[ast.Decl](1))
	g.rule("NsMember : NamespaceDecl", nil)
	g.rule("NsMember : TypeDecl", nil)
	g.rule("NsMember : error EOL", discard)
	g.rule("NamespaceDecl : NamespaceHead NsMembers End Namespace EOL", func(p *parser, v []any, l []diag.Location) any {
		p.scopes.pop(namespaceFrame)
		ns, _ := v[0].(*ast.Namespace)
		if ns != nil {
			ns.Members = decls(v[1])
		}
		return ns
	})
	g.rule("NamespaceHead : Namespace QualifiedName EOL", func(p *parser, v []any, l []diag.Location) any {
		p.scopes.trim(namespaceFrame)
		name := str(v[1])
		p.scopes.push(newFrame(namespaceFrame, name))
		return &ast.Namespace{Loc: l[1], Name: name}
	})
}

func typeRules(g *grammar) {
	for _, r := range []string{"ClassDecl", "InterfaceDecl", "EnumDecl", "DelegateDecl"} {
		g.rule("TypeDecl : "+r, nil)
	}
	g.rule("TypeKw : Class", value(types.Class))
	g.rule("TypeKw : Structure", value(types.Structure))
	g.rule("TypeKw : Module", value(types.Module))

	g.rule("ClassDecl : TypeHead InheritsList ImplementsList ClassMembers End TypeKw EOL", func(p *parser, v []any, l []diag.Location) any {
		d, _ := v[0].(*ast.TypeDecl)
		p.endType(d, v[5], l[4])
		if d == nil {
			return nil
		}
		d.Inherits = typeList(v[1])
		d.Implements = typeList(v[2])
		d.Members = decls(v[3])
		return d
	})
	g.rule("TypeHead : Modifiers TypeKw IDENT TypeParamsOpt EOL", func(p *parser, v []any, l []diag.Location) any {
		kind, _ := v[1].(types.TypeKind)
		d := &ast.TypeDecl{Loc: l[2], Kind: kind, Name: str(v[2]), Modifiers: mods(v[0]), TypeParams: typeParams(v[3])}
		return p.typeHead(d, l[1])
	})
	g.rule("InheritsList :", none[ast.TypeExpr])
	g.rule("InheritsList : InheritsList Inherits TypeList EOL", concatAt[ast.TypeExpr](2))
	g.rule("ImplementsList :", none[ast.TypeExpr])
	g.rule("ImplementsList : ImplementsList Implements TypeList EOL", concatAt[ast.TypeExpr](2))
	g.rule("TypeList : TypeRef", one[ast.TypeExpr])
	g.rule("TypeList : TypeList , TypeRef", appendAt[ast.TypeExpr](2))

	g.rule("ClassMembers :", none[ast.Decl])
	g.rule("ClassMembers : ClassMembers ClassMember", appendAt[ast.Decl](1))
	for _, r := range []string{"FieldDecl", "MethodDecl", "AbstractDecl", "TypeDecl"} {
		g.rule("ClassMember : "+r, nil)
	}
	g.rule("ClassMember : error EOL", discard)

	g.rule("FieldDecl : Modifiers VarDecls EOL", func(p *parser, v []any, l []diag.Location) any {
		return p.field(l[1], mods(v[0]), false, v[1])
	})
	g.rule("FieldDecl : Modifiers Dim VarDecls EOL", func(p *parser, v []any, l []diag.Location) any {
		return p.field(l[2], mods(v[0]), false, v[2])
	})
	g.rule("FieldDecl : Modifiers Const VarDecls EOL", func(p *parser, v []any, l []diag.Location) any {
		return p.field(l[2], mods(v[0]), true, v[2])
	})

	for _, end := range []string{"Sub", "Function", "Operator"} {
		end := "End " + end
		g.rule("MethodDecl : MethodHead Block "+end+" EOL", func(p *parser, v []any, l []diag.Location) any {
			return p.endMethod(v, l, end)
		})
	}
	g.rule("MethodHead : Modifiers MethodSig EOL", func(p *parser, v []any, l []diag.Location) any {
		m, _ := v[1].(*ast.MethodDecl)
		return p.methodHead(m, mods(v[0]), l[1])
	})
	g.rule("MethodHead : Modifiers Sub New ParamsOpt EOL", func(p *parser, v []any, l []diag.Location) any {
		m := &ast.MethodDecl{Loc: l[2], Kind: ast.CtorMethod, Name: "New", Params: params(v[3])}
		return p.methodHead(m, mods(v[0]), l[1])
	})
	for _, w := range []string{"Widening", "Narrowing"} {
		widening := w == "Widening"
		g.rule("MethodHead : Modifiers "+w+" Operator CType ( ParamList ) As TypeRef EOL", func(p *parser, v []any, l []diag.Location) any {
			m := &ast.MethodDecl{Loc: l[3], Kind: ast.OperatorMethod, Name: "CType", Widening: widening,
				Params: params(v[5]), Result: typeRef(v[8])}
			return p.methodHead(m, mods(v[0]), l[1])
		})
	}
	g.rule("MethodHead : Modifiers Operator OperatorSym ( ParamList ) As TypeRef EOL", func(p *parser, v []any, l []diag.Location) any {
		m := &ast.MethodDecl{Loc: l[2], Kind: ast.OperatorMethod, Name: str(v[2]),
			Params: params(v[4]), Result: typeRef(v[7])}
		return p.methodHead(m, mods(v[0]), l[1])
	})
	for _, op := range []string{"+", "-", "*", "/", "\\", "^", "&", "Mod", "=", "<>", "<", ">", "<=", ">=",
		"And", "Or", "Xor", "Not", "<<", ">>"} {
		g.rule("OperatorSym : "+op, value(op))
	}
	g.rule("AbstractDecl : Modifiers MustOverride Modifiers MethodSig EOL", func(p *parser, v []any, l []diag.Location) any {
		m, _ := v[3].(*ast.MethodDecl)
		if m == nil {
			return nil
		}
		m.Modifiers = mods(v[0]) | mods(v[2]) | ast.ModMustOverride
		p.checkModifiers(m.Modifiers, "method", l[1])
		p.checkParams(m.Name, m.Params)
		return m
	})

	g.rule("InterfaceDecl : InterfaceHead InheritsList InterfaceMembers End Interface EOL", func(p *parser, v []any, l []diag.Location) any {
		p.scopes.pop(typeFrame)
		d, _ := v[0].(*ast.TypeDecl)
		if d != nil {
			d.Inherits = typeList(v[1])
			d.Members = decls(v[2])
		}
		return d
	})
	g.rule("InterfaceHead : Modifiers Interface IDENT TypeParamsOpt EOL", func(p *parser, v []any, l []diag.Location) any {
		d := &ast.TypeDecl{Loc: l[2], Kind: types.Interface, Name: str(v[2]), Modifiers: mods(v[0]), TypeParams: typeParams(v[3])}
		return p.typeHead(d, l[1])
	})
	g.rule("InterfaceMembers :", none[ast.Decl])
	g.rule("InterfaceMembers : InterfaceMembers InterfaceMember", appendAt[ast.Decl](1))
	g.rule("InterfaceMember : Modifiers MethodSig EOL", func(p *parser, v []any, l []diag.Location) any {
		m, _ := v[1].(*ast.MethodDecl)
		if m == nil {
			return nil
		}
		m.Modifiers = mods(v[0])
		p.checkModifiers(m.Modifiers, "interface", l[1])
		p.checkParams(m.Name, m.Params)
		return m
	})
	g.rule("InterfaceMember : TypeDecl", nil)
	g.rule("InterfaceMember : error EOL", discard)

	g.rule("EnumDecl : EnumHead EnumMembers End Enum EOL", func(p *parser, v []any, l []diag.Location) any {
		p.scopes.pop(typeFrame)
		d, _ := v[0].(*ast.TypeDecl)
		if d != nil {
			d.Enumerators, _ = v[1].([]*ast.EnumMember)
		}
		return d
	})
	g.rule("EnumHead : Modifiers Enum IDENT AsOpt EOL", func(p *parser, v []any, l []diag.Location) any {
		d := &ast.TypeDecl{Loc: l[2], Kind: types.Enum, Name: str(v[2]), Modifiers: mods(v[0]), Underlying: typeRef(v[3])}
		return p.typeHead(d, l[1])
	})
	g.rule("EnumMembers :", none[*ast.EnumMember])
	g.rule("EnumMembers : EnumMembers EnumMember", appendAt[*ast.EnumMember](1))
	g.rule("EnumMember : IDENT EOL", func(p *parser, v []any, l []diag.Location) any {
		return &ast.EnumMember{Loc: l[0], Name: str(v[0])}
	})
	g.rule("EnumMember : IDENT = Expr EOL", func(p *parser, v []any, l []diag.Location) any {
		return &ast.EnumMember{Loc: l[0], Name: str(v[0]), Value: expr(v[2])}
	})
	g.rule("EnumMember : error EOL", discard)

	g.rule("DelegateDecl : Modifiers Delegate MethodSig EOL", func(p *parser, v []any, l []diag.Location) any {
		m, _ := v[2].(*ast.MethodDecl)
		if m == nil {
			return nil
		}
		d := &ast.TypeDecl{Loc: m.Loc, Kind: types.Delegate, Name: m.Name, Modifiers: mods(v[0]),
			TypeParams: m.TypeParams, Params: m.Params, Result: m.Result}
		p.typeHead(d, l[1])
		p.scopes.pop(typeFrame)
		p.checkParams(m.Name, m.Params)
		return d
	})

	g.rule("Modifiers :", value(ast.Modifier(0)))
	g.rule("Modifiers : Modifiers Modifier", func(p *parser, v []any, l []diag.Location) any {
		return mods(v[0]) | mods(v[1])
	})
	for _, m := range []struct {
		name string
		mod  ast.Modifier
	}{
		{"Public", ast.ModPublic}, {"Private", ast.ModPrivate}, {"Protected", ast.ModProtected},
		{"Friend", ast.ModFriend}, {"Shared", ast.ModShared}, {"MustInherit", ast.ModMustInherit},
		{"NotInheritable", ast.ModNotInheritable}, {"Overridable", ast.ModOverridable},
		{"Overrides", ast.ModOverrides}, {"ReadOnly", ast.ModReadOnly}, {"Partial", ast.ModPartial},
	} {
		g.rule("Modifier : "+m.name, value(m.mod))
	}

	g.rule("TypeParamsOpt :", none[*ast.TypeParamDecl])
	g.rule("TypeParamsOpt : ( Of TypeParamList )", at(2))
	g.rule("TypeParamList : TypeParam", one[*ast.TypeParamDecl])
	g.rule("TypeParamList : TypeParamList , TypeParam", appendAt[*ast.TypeParamDecl](2))
	g.rule("TypeParam : IDENT", func(p *parser, v []any, l []diag.Location) any {
		return &ast.TypeParamDecl{Loc: l[0], Name: str(v[0])}
	})
	g.rule("TypeParam : IDENT As Constraint", func(p *parser, v []any, l []diag.Location) any {
		tp := &ast.TypeParamDecl{Loc: l[0], Name: str(v[0])}
		if c, ok := v[2].(*ast.Constraint); ok {
			tp.Constraints = []*ast.Constraint{c}
		}
		return tp
	})
	g.rule("TypeParam : IDENT As { ConstraintList }", func(p *parser, v []any, l []diag.Location) any {
		tp := &ast.TypeParamDecl{Loc: l[0], Name: str(v[0])}
		tp.Constraints, _ = v[3].([]*ast.Constraint)
		return tp
	})
	g.rule("ConstraintList : Constraint", one[*ast.Constraint])
	g.rule("ConstraintList : ConstraintList , Constraint", appendAt[*ast.Constraint](2))
	g.rule("Constraint : Class", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Constraint{Loc: l[0], Kind: ast.ConstraintClass}
	})
	g.rule("Constraint : Structure", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Constraint{Loc: l[0], Kind: ast.ConstraintStructure}
	})
	g.rule("Constraint : New", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Constraint{Loc: l[0], Kind: ast.ConstraintNew}
	})
	g.rule("Constraint : TypeRef", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Constraint{Loc: l[0], Kind: ast.ConstraintType, TypeRef: typeRef(v[0])}
	})
}

func signatureRules(g *grammar) {
	g.rule("MethodSig : Sub IDENT ParamsOpt", func(p *parser, v []any, l []diag.Location) any {
		return &ast.MethodDecl{Loc: l[1], Kind: ast.SubMethod, Name: str(v[1]), Params: params(v[2])}
	})
	g.rule("MethodSig : Sub IDENT ( Of TypeParamList ) ParamsOpt", func(p *parser, v []any, l []diag.Location) any {
		return &ast.MethodDecl{Loc: l[1], Kind: ast.SubMethod, Name: str(v[1]),
			TypeParams: typeParams(v[4]), Params: params(v[6])}
	})
	g.rule("MethodSig : Function IDENT ParamsOpt AsOpt", func(p *parser, v []any, l []diag.Location) any {
		return &ast.MethodDecl{Loc: l[1], Kind: ast.FunctionMethod, Name: str(v[1]),
			Params: params(v[2]), Result: typeRef(v[3])}
	})
	g.rule("MethodSig : Function IDENT ( Of TypeParamList ) ParamsOpt AsOpt", func(p *parser, v []any, l []diag.Location) any {
		return &ast.MethodDecl{Loc: l[1], Kind: ast.FunctionMethod, Name: str(v[1]),
			TypeParams: typeParams(v[4]), Params: params(v[6]), Result: typeRef(v[7])}
	})

	g.rule("ParamsOpt :", none[*ast.ParamDecl])
	g.rule("ParamsOpt : ( )", none[*ast.ParamDecl])
	g.rule("ParamsOpt : ( ParamList )", at(1))
	g.rule("ParamList : Param", one[*ast.ParamDecl])
	g.rule("ParamList : ParamList , Param", appendAt[*ast.ParamDecl](2))
	g.rule("Param : ParamMods IDENT ParamTail", func(p *parser, v []any, l []diag.Location) any {
		pm, _ := v[0].(paramMods)
		tail, _ := v[2].(paramTail)
		return &ast.ParamDecl{Loc: l[1], Name: str(v[1]), TypeRef: tail.typ, Default: tail.def,
			ByRef: pm.byRef, Optional: pm.optional, ParamArray: pm.paramArray}
	})
	g.rule("ParamMods :", value(paramMods{}))
	for _, kw := range []string{"ByVal", "ByRef", "Optional", "ParamArray"} {
		kw := kw
		g.rule("ParamMods : ParamMods "+kw, func(p *parser, v []any, l []diag.Location) any {
			pm, _ := v[0].(paramMods)
			switch kw {
			case "ByVal":
				pm.byRef = false
			case "ByRef":
				pm.byRef = true
			case "Optional":
				pm.optional = true
			default:
				pm.paramArray = true
			}
			return pm
		})
	}
	g.rule("ParamTail :", value(paramTail{}))
	g.rule("ParamTail : As TypeRef", func(p *parser, v []any, l []diag.Location) any {
		return paramTail{typ: typeRef(v[1])}
	})
	g.rule("ParamTail : As TypeRef = Expr", func(p *parser, v []any, l []diag.Location) any {
		return paramTail{typ: typeRef(v[1]), def: expr(v[3])}
	})
	g.rule("ParamTail : = Expr", func(p *parser, v []any, l []diag.Location) any {
		return paramTail{def: expr(v[1])}
	})
	g.rule("AsOpt :", discard)
	g.rule("AsOpt : As TypeRef", at(1))

	named := func(v []any, l []diag.Location) *ast.NamedType {
		return &ast.NamedType{Loc: l[0], Name: str(v[0])}
	}
	generic := func(v []any, l []diag.Location) *ast.NamedType {
		return &ast.NamedType{Loc: l[0], Name: str(v[0]), Args: typeList(v[3])}
	}
	rank := func(x any) int {
		if n, ok := x.(int); ok {
			return n
		}
		return 1
	}
	g.rule("TypeRef : QualifiedName", func(p *parser, v []any, l []diag.Location) any {
		return named(v, l)
	})
	g.rule("TypeRef : QualifiedName ?", func(p *parser, v []any, l []diag.Location) any {
		return &ast.NullableType{Loc: l[0], Elem: named(v, l)}
	})
	g.rule("TypeRef : QualifiedName RankSpec", func(p *parser, v []any, l []diag.Location) any {
		return &ast.ArrayType{Loc: l[0], Elem: named(v, l), Rank: rank(v[1])}
	})
	g.rule("TypeRef : QualifiedName ( Of TypeArgs )", func(p *parser, v []any, l []diag.Location) any {
		return generic(v, l)
	})
	g.rule("TypeRef : QualifiedName ( Of TypeArgs ) ?", func(p *parser, v []any, l []diag.Location) any {
		return &ast.NullableType{Loc: l[0], Elem: generic(v, l)}
	})
	g.rule("TypeRef : QualifiedName ( Of TypeArgs ) RankSpec", func(p *parser, v []any, l []diag.Location) any {
		return &ast.ArrayType{Loc: l[0], Elem: generic(v, l), Rank: rank(v[5])}
	})
	g.rule("RankSpec : ( )", value(1))
	g.rule("RankSpec : ( Commas )", func(p *parser, v []any, l []diag.Location) any {
		return rank(v[1]) + 1
	})
	g.rule("Commas : ,", value(1))
	g.rule("Commas : Commas ,", func(p *parser, v []any, l []diag.Location) any {
		return rank(v[0]) + 1
	})
	g.rule("TypeArgs : TypeRef", one[ast.TypeExpr])
	g.rule("TypeArgs : TypeArgs , TypeRef", appendAt[ast.TypeExpr](2))

	g.rule("VarDecls : VarDecl", one[*ast.VarDecl])
	g.rule("VarDecls : VarDecls , VarDecl", appendAt[*ast.VarDecl](2))
	g.rule("VarDecl : IDENT", func(p *parser, v []any, l []diag.Location) any {
		return &ast.VarDecl{Loc: l[0], Name: str(v[0])}
	})
	g.rule("VarDecl : IDENT As TypeRef", func(p *parser, v []any, l []diag.Location) any {
		return &ast.VarDecl{Loc: l[0], Name: str(v[0]), TypeRef: typeRef(v[2])}
	})
	g.rule("VarDecl : IDENT As TypeRef = Initializer", func(p *parser, v []any, l []diag.Location) any {
		return &ast.VarDecl{Loc: l[0], Name: str(v[0]), TypeRef: typeRef(v[2]), Init: expr(v[4])}
	})
	g.rule("VarDecl : IDENT = Initializer", func(p *parser, v []any, l []diag.Location) any {
		return &ast.VarDecl{Loc: l[0], Name: str(v[0]), Init: expr(v[2])}
	})
	g.rule("VarDecl : IDENT As NewExpr", func(p *parser, v []any, l []diag.Location) any {
		d := &ast.VarDecl{Loc: l[0], Name: str(v[0]), New: true}
		if n, ok := v[2].(*ast.NewObject); ok {
			d.TypeRef, d.Args = n.TypeRef, n.Args
		}
		return d
	})
	g.rule("Initializer : Expr", nil)
	g.rule("Initializer : Lambda", nil)
}

func statementRules(g *grammar) {
	g.rule("Block :", none[ast.Stmt])
	g.rule("Block : Block Statement", appendAt[ast.Stmt](1))

	g.rule("Statement : SimpleStmt EOL", nil)
	g.rule("Statement : Dim VarDecls EOL", func(p *parser, v []any, l []diag.Location) any {
		return p.localDecl(l[0], false, v[1])
	})
	g.rule("Statement : Const VarDecls EOL", func(p *parser, v []any, l []diag.Location) any {
		return p.localDecl(l[0], true, v[1])
	})
	for _, r := range []string{"IfStmt", "SingleIf", "WhileStmt", "DoStmt", "ForStmt"} {
		g.rule("Statement : "+r, nil)
	}
	g.rule("Statement : error EOL", discard)

	g.rule("SimpleStmt : Primary", func(p *parser, v []any, l []diag.Location) any {
		return &ast.ExprStmt{StmtBase: ast.StmtAt(l[0]), X: expr(v[0])}
	})
	g.rule("SimpleStmt : Primary AssignOp Initializer", func(p *parser, v []any, l []diag.Location) any {
		op, _ := v[1].(assignOp)
		return &ast.Assign{StmtBase: ast.StmtAt(l[0]), Target: expr(v[0]), Op: op.op, Compound: op.compound, Value: expr(v[2])}
	})
	g.rule("AssignOp : =", value(assignOp{}))
	for _, a := range []struct {
		tok string
		op  ast.BinOp
	}{
		{"+=", ast.Add}, {"-=", ast.Sub}, {"*=", ast.Mul}, {"/=", ast.Div}, {"\\=", ast.IntDiv},
		{"^=", ast.Pow}, {"&=", ast.Concat}, {"<<=", ast.Shl}, {">>=", ast.Shr},
	} {
		g.rule("AssignOp : "+a.tok, value(assignOp{op: a.op, compound: true}))
	}
	g.rule("SimpleStmt : Return", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Return{StmtBase: ast.StmtAt(l[0])}
	})
	g.rule("SimpleStmt : Return Expr", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Return{StmtBase: ast.StmtAt(l[0]), Value: expr(v[1])}
	})
	g.rule("SimpleStmt : Throw", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Throw{StmtBase: ast.StmtAt(l[0])}
	})
	g.rule("SimpleStmt : Throw Expr", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Throw{StmtBase: ast.StmtAt(l[0]), Value: expr(v[1])}
	})
	for _, kind := range []string{"Sub", "Function", "For", "While", "Do"} {
		kind := kind
		g.rule("SimpleStmt : Exit "+kind, func(p *parser, v []any, l []diag.Location) any {
			return p.exit(l[0], kind)
		})
	}

	// 块 If
	g.rule("IfStmt : IfHead Block ElseIfParts ElsePart End If EOL", func(p *parser, v []any, l []diag.Location) any {
		p.scopes.pop(blockFrame)
		s, _ := v[0].(*ast.If)
		if s != nil {
			s.Then = stmts(v[1])
			s.ElseIfs, _ = v[2].([]*ast.ElseIf)
			s.Else = stmts(v[3])
		}
		return s
	})
	g.rule("IfHead : If Expr Then EOL", func(p *parser, v []any, l []diag.Location) any {
		p.enterBlock("")
		return &ast.If{StmtBase: ast.StmtAt(l[0]), Cond: expr(v[1])}
	})
	g.rule("ElseIfParts :", none[*ast.ElseIf])
	g.rule("ElseIfParts : ElseIfParts ElseIfHead Block", func(p *parser, v []any, l []diag.Location) any {
		list, _ := v[0].([]*ast.ElseIf)
		if e, ok := v[1].(*ast.ElseIf); ok {
			e.Body = stmts(v[2])
			list = append(list, e)
		}
		return list
	})
	elseIf := func(p *parser, loc diag.Location, cond any) any {
		p.scopes.pop(blockFrame)
		p.enterBlock("")
		return &ast.ElseIf{Loc: loc, Cond: expr(cond)}
	}
	g.rule("ElseIfHead : ElseIf Expr Then EOL", func(p *parser, v []any, l []diag.Location) any {
		return elseIf(p, l[0], v[1])
	})
	g.rule("ElseIfHead : Else If Expr Then EOL", func(p *parser, v []any, l []diag.Location) any {
		return elseIf(p, l[0], v[2])
	})
	g.rule("ElsePart :", none[ast.Stmt])
	g.rule("ElsePart : ElseHead Block", func(p *parser, v []any, l []diag.Location) any {
		if s := stmts(v[1]); s != nil {
			return s
		}
		return []ast.Stmt{}
	})
	g.rule("ElseHead : Else EOL", func(p *parser, v []any, l []diag.Location) any {
		p.scopes.pop(blockFrame)
		p.enterBlock("")
		return nil
	})

	// 单行 If
	g.rule("SingleIf : If Expr Then SimpleStmt EOL", func(p *parser, v []any, l []diag.Location) any {
		return &ast.If{StmtBase: ast.StmtAt(l[0]), Cond: expr(v[1]), Then: stmtList(v[3])}
	})
	g.rule("SingleIf : If Expr Then SimpleStmt Else SimpleStmt EOL", func(p *parser, v []any, l []diag.Location) any {
		return &ast.If{StmtBase: ast.StmtAt(l[0]), Cond: expr(v[1]), Then: stmtList(v[3]), Else: stmtList(v[5])}
	})

	g.rule("WhileStmt : WhileHead Block End While EOL", func(p *parser, v []any, l []diag.Location) any {
		p.scopes.pop(blockFrame)
		s, _ := v[0].(*ast.While)
		if s != nil {
			s.Body = stmts(v[1])
		}
		return s
	})
	g.rule("WhileHead : While Expr EOL", func(p *parser, v []any, l []diag.Location) any {
		p.enterBlock("While")
		return &ast.While{StmtBase: ast.StmtAt(l[0]), Cond: expr(v[1])}
	})

	loop := func(p *parser, v []any, l []diag.Location, cond ast.Expr, until bool) any {
		p.scopes.pop(blockFrame)
		s, _ := v[0].(*ast.DoLoop)
		if s == nil {
			return nil
		}
		s.Body = stmts(v[1])
		if cond != nil {
			if s.Cond != nil {
				found := "Loop While"
				if until {
					found = "Loop Until"
				}
				diag.Errorf(p.sink, diag.ErrMismatchedEnd, l[2], "Loop", found)
			}
			s.Cond, s.Until, s.PostTest = cond, until, true
		}
		return s
	}
	g.rule("DoStmt : DoHead Block Loop EOL", func(p *parser, v []any, l []diag.Location) any {
		return loop(p, v, l, nil, false)
	})
	g.rule("DoStmt : DoHead Block Loop While Expr EOL", func(p *parser, v []any, l []diag.Location) any {
		return loop(p, v, l, expr(v[4]), false)
	})
	g.rule("DoStmt : DoHead Block Loop Until Expr EOL", func(p *parser, v []any, l []diag.Location) any {
		return loop(p, v, l, expr(v[4]), true)
	})
	g.rule("DoHead : Do EOL", func(p *parser, v []any, l []diag.Location) any {
		p.enterBlock("Do")
		return &ast.DoLoop{StmtBase: ast.StmtAt(l[0])}
	})
	g.rule("DoHead : Do While Expr EOL", func(p *parser, v []any, l []diag.Location) any {
		p.enterBlock("Do")
		return &ast.DoLoop{StmtBase: ast.StmtAt(l[0]), Cond: expr(v[2])}
	})
	g.rule("DoHead : Do Until Expr EOL", func(p *parser, v []any, l []diag.Location) any {
		p.enterBlock("Do")
		return &ast.DoLoop{StmtBase: ast.StmtAt(l[0]), Cond: expr(v[2]), Until: true}
	})

	g.rule("ForStmt : ForHead Block Next EOL", func(p *parser, v []any, l []diag.Location) any {
		p.scopes.pop(blockFrame)
		s, _ := v[0].(*ast.For)
		if s != nil {
			s.Body = stmts(v[1])
		}
		return s
	})
	g.rule("ForStmt : ForHead Block Next IDENT EOL", func(p *parser, v []any, l []diag.Location) any {
		f := p.scopes.pop(blockFrame)
		if next := str(v[3]); f != nil && !strings.EqualFold(next, f.forVar) {
			diag.Errorf(p.sink, diag.ErrNextMismatch, l[3], next, f.forVar)
		}
		s, _ := v[0].(*ast.For)
		if s != nil {
			s.Body = stmts(v[1])
		}
		return s
	})
	forHead := func(p *parser, l diag.Location, name string, typ ast.TypeExpr, from, to, step any) any {
		f := p.enterBlock("For")
		f.forVar = name
		s := &ast.For{StmtBase: ast.StmtAt(l), Counter: &ast.Ident{ExprBase: ast.At(l), Name: name},
			From: expr(from), To: expr(to), Step: expr(step)}
		if typ != nil {
			s.Var = &ast.VarDecl{Loc: l, Name: name, TypeRef: typ}
			if !p.scopes.declareLocal(name) {
				diag.Errorf(p.sink, diag.ErrDuplicateLocal, l, name)
			}
		}
		return s
	}
	g.rule("ForHead : For IDENT = Expr To Expr StepOpt EOL", func(p *parser, v []any, l []diag.Location) any {
		return forHead(p, l[1], str(v[1]), nil, v[3], v[5], v[6])
	})
	g.rule("ForHead : For IDENT As TypeRef = Expr To Expr StepOpt EOL", func(p *parser, v []any, l []diag.Location) any {
		return forHead(p, l[1], str(v[1]), typeRef(v[3]), v[5], v[7], v[8])
	})
	g.rule("StepOpt :", discard)
	g.rule("StepOpt : Step Expr", at(1))
}

func expressionRules(g *grammar) {
	// 优先级从低到高
	g.rule("Expr : XorExpr", nil)
	g.rule("XorExpr : OrExpr", nil)
	g.rule("XorExpr : XorExpr Xor OrExpr", binary(ast.Xor))
	g.rule("OrExpr : AndExpr", nil)
	g.rule("OrExpr : OrExpr Or AndExpr", binary(ast.Or))
	g.rule("OrExpr : OrExpr OrElse AndExpr", binary(ast.OrElse))
	g.rule("AndExpr : NotExpr", nil)
	g.rule("AndExpr : AndExpr And NotExpr", binary(ast.And))
	g.rule("AndExpr : AndExpr AndAlso NotExpr", binary(ast.AndAlso))
	g.rule("NotExpr : CmpExpr", nil)
	g.rule("NotExpr : Not NotExpr", unary(ast.Not))

	g.rule("CmpExpr : ShiftExpr", nil)
	for _, c := range []struct {
		tok string
		op  ast.BinOp
	}{
		{"=", ast.Eq}, {"<>", ast.Ne}, {"<", ast.Lt}, {">", ast.Gt}, {"<=", ast.Le}, {">=", ast.Ge},
		{"Is", ast.Is}, {"IsNot", ast.IsNot},
	} {
		g.rule("CmpExpr : CmpExpr "+c.tok+" ShiftExpr", binary(c.op))
	}
	g.rule("CmpExpr : TypeOf ShiftExpr Is TypeRef", func(p *parser, v []any, l []diag.Location) any {
		return &ast.TypeOfIs{ExprBase: ast.At(l[0]), X: expr(v[1]), TypeRef: typeRef(v[3])}
	})

	g.rule("ShiftExpr : ConcatExpr", nil)
	g.rule("ShiftExpr : ShiftExpr << ConcatExpr", binary(ast.Shl))
	g.rule("ShiftExpr : ShiftExpr >> ConcatExpr", binary(ast.Shr))
	g.rule("ConcatExpr : AddExpr", nil)
	g.rule("ConcatExpr : ConcatExpr & AddExpr", binary(ast.Concat))
	g.rule("AddExpr : ModExpr", nil)
	g.rule("AddExpr : AddExpr + ModExpr", binary(ast.Add))
	g.rule("AddExpr : AddExpr - ModExpr", binary(ast.Sub))
	g.rule("ModExpr : IntDivExpr", nil)
	g.rule("ModExpr : ModExpr Mod IntDivExpr", binary(ast.Mod))
	g.rule("IntDivExpr : MulExpr", nil)
	g.rule("IntDivExpr : IntDivExpr \\ MulExpr", binary(ast.IntDiv))
	g.rule("MulExpr : UnaryExpr", nil)
	g.rule("MulExpr : MulExpr * UnaryExpr", binary(ast.Mul))
	g.rule("MulExpr : MulExpr / UnaryExpr", binary(ast.Div))
	g.rule("UnaryExpr : PowExpr", nil)
	g.rule("UnaryExpr : - UnaryExpr", unary(ast.Neg))
	g.rule("UnaryExpr : + UnaryExpr", unary(ast.Plus))
	// -2 ^ 2 是 -(2 ^ 2)，2 ^ -2 允许一元运算符
	g.rule("PowExpr : Operand", nil)
	g.rule("PowExpr : PowExpr ^ PowOperand", binary(ast.Pow))
	g.rule("PowOperand : Operand", nil)
	g.rule("PowOperand : - PowOperand", unary(ast.Neg))
	g.rule("PowOperand : + PowOperand", unary(ast.Plus))

	g.rule("Operand : Primary", nil)
	g.rule("Operand : NewExpr", nil)
	g.rule("Operand : AddressOf Primary", func(p *parser, v []any, l []diag.Location) any {
		return &ast.AddressOf{ExprBase: ast.At(l[0]), X: expr(v[1])}
	})

	g.rule("Primary : IDENT", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Ident{ExprBase: ast.At(l[0]), Name: str(v[0])}
	})
	for _, lit := range []string{"INT", "FLOAT", "STRING", "CHAR", "DATE"} {
		g.rule("Primary : "+lit, func(p *parser, v []any, l []diag.Location) any {
			c, ok := v[0].(constant.Value)
			if !ok {
				c = constant.IntegerValue(0)
			}
			return ast.NewConstant(l[0], c)
		})
	}
	g.rule("Primary : True", func(p *parser, v []any, l []diag.Location) any {
		return ast.NewConstant(l[0], constant.BoolValue(true))
	})
	g.rule("Primary : False", func(p *parser, v []any, l []diag.Location) any {
		return ast.NewConstant(l[0], constant.BoolValue(false))
	})
	g.rule("Primary : Nothing", func(p *parser, v []any, l []diag.Location) any {
		return &ast.NothingLit{ExprBase: ast.At(l[0])}
	})
	g.rule("Primary : Me", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Me{ExprBase: ast.At(l[0])}
	})
	g.rule("Primary : MyBase", func(p *parser, v []any, l []diag.Location) any {
		return &ast.MyBase{ExprBase: ast.At(l[0])}
	})
	g.rule("Primary : ( Expr )", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Paren{ExprBase: ast.At(l[0]), X: expr(v[1])}
	})
	g.rule("Primary : Primary . IDENT", func(p *parser, v []any, l []diag.Location) any {
		return &ast.MemberAccess{ExprBase: ast.At(l[0]), X: expr(v[0]), Name: str(v[2])}
	})
	g.rule("Primary : Primary . New", func(p *parser, v []any, l []diag.Location) any {
		return &ast.MemberAccess{ExprBase: ast.At(l[0]), X: expr(v[0]), Name: "New"}
	})
	g.rule("Primary : Primary ( ArgListOpt )", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Invoke{ExprBase: ast.At(l[0]), Fn: expr(v[0]), Args: exprs(v[2])}
	})
	g.rule("Primary : Primary ( Of TypeArgs )", func(p *parser, v []any, l []diag.Location) any {
		return &ast.GenericName{ExprBase: ast.At(l[0]), X: expr(v[0]), TypeArgs: typeList(v[3])}
	})
	g.rule("Primary : CType ( Expr , TypeRef )", cast(ast.CType))
	g.rule("Primary : DirectCast ( Expr , TypeRef )", cast(ast.DirectCast))
	g.rule("Primary : TryCast ( Expr , TypeRef )", cast(ast.TryCast))
	g.rule("Primary : CONVFUNC ( Expr )", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Cast{ExprBase: ast.At(l[0]), Kind: ast.Intrinsic, X: expr(v[2]), Name: str(v[0])}
	})
	g.rule("Primary : GetType ( TypeRef )", func(p *parser, v []any, l []diag.Location) any {
		return &ast.GetType{ExprBase: ast.At(l[0]), TypeRef: typeRef(v[2])}
	})

	g.rule("ArgListOpt :", none[ast.Expr])
	g.rule("ArgListOpt : ArgList", nil)
	g.rule("ArgList : Arg", one[ast.Expr])
	g.rule("ArgList : ArgList , Arg", appendAt[ast.Expr](2))
	g.rule("Arg : Expr", nil)
	g.rule("Arg : Lambda", nil)

	g.rule("Lambda : Function ( ) Expr", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Lambda{ExprBase: ast.At(l[0]), Body: expr(v[3])}
	})
	g.rule("Lambda : Function ( ParamList ) Expr", func(p *parser, v []any, l []diag.Location) any {
		return &ast.Lambda{ExprBase: ast.At(l[0]), Params: params(v[2]), Body: expr(v[4])}
	})

	g.rule("NewExpr : New QualifiedName", func(p *parser, v []any, l []diag.Location) any {
		return &ast.NewObject{ExprBase: ast.At(l[0]), TypeRef: &ast.NamedType{Loc: l[1], Name: str(v[1])}}
	})
	g.rule("NewExpr : New QualifiedName ( ArgListOpt )", func(p *parser, v []any, l []diag.Location) any {
		return &ast.NewObject{ExprBase: ast.At(l[0]), TypeRef: &ast.NamedType{Loc: l[1], Name: str(v[1])}, Args: exprs(v[3])}
	})
	g.rule("NewExpr : New QualifiedName ( Of TypeArgs )", func(p *parser, v []any, l []diag.Location) any {
		t := &ast.NamedType{Loc: l[1], Name: str(v[1]), Args: typeList(v[4])}
		return &ast.NewObject{ExprBase: ast.At(l[0]), TypeRef: t}
	})
	g.rule("NewExpr : New QualifiedName ( Of TypeArgs ) ( ArgListOpt )", func(p *parser, v []any, l []diag.Location) any {
		t := &ast.NamedType{Loc: l[1], Name: str(v[1]), Args: typeList(v[4])}
		return &ast.NewObject{ExprBase: ast.At(l[0]), TypeRef: t, Args: exprs(v[7])}
	})
}
