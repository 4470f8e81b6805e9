package lexer

import (
	"fmt"
	"strings"

	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/preproc"
)

// directiveAhead 行首的 # 之后是否跟着指令关键字（否则是日期字面量）
func (l *Lexer) directiveAhead() bool {
	for i := 0; ; i++ {
		switch ch := l.peekAt(i); {
		case ch == ' ' || ch == '\t':
			continue
		default:
			return isLetter(ch)
		}
	}
}

// directiveLine 读取指令所在行剩余的 token，并消耗行尾换行
func (l *Lexer) directiveLine() []Token {
	var toks []Token
	for {
		l.skipWhitespace()
		if l.ch == 0 {
			return toks
		}
		if l.ch == '\n' {
			l.readChar()
			l.lineStart = true
			return toks
		}
		if tok, ok := l.scanToken(); ok {
			toks = append(toks, tok)
		}
	}
}

// directive 处理一条条件编译指令。嵌套错误记录到 l.err，之后记号流结束。
func (l *Lexer) directive() {
	loc := l.location()
	l.readChar() // 跳过 #
	toks := l.directiveLine()
	if len(toks) == 0 {
		l.errorf(diag.ErrBadDirective, loc, "#")
		return
	}

	var err error
	head := toks[0]
	switch {
	case head.Type == TOKEN_IF:
		cond := l.condition(toks[1:], preproc.If, loc)
		err = l.ctrl.If(cond, loc)
	case head.Type == TOKEN_ELSEIF:
		cond := l.condition(toks[1:], preproc.ElseIf, loc)
		err = l.ctrl.ElseIf(cond, loc)
	case head.Type == TOKEN_ELSE && len(toks) > 1 && toks[1].Type == TOKEN_IF:
		cond := l.condition(toks[2:], preproc.ElseIf, loc)
		err = l.ctrl.ElseIf(cond, loc)
	case head.Type == TOKEN_ELSE:
		err = l.ctrl.Else(loc)
	case head.Type == TOKEN_END && len(toks) > 1 && toks[1].Type == TOKEN_IF:
		err = l.ctrl.EndIf(loc)
	case head.Type == TOKEN_END && len(toks) > 1 && isRegion(toks[1]):
	case head.Type == TOKEN_CONST:
		if l.ctrl.Active() {
			l.constDirective(toks[1:], loc)
		}
	case isRegion(head):
	default:
		l.errorf(diag.ErrBadDirective, loc, head.Literal)
	}
	if err != nil {
		l.err = err
	}
}

func isRegion(t Token) bool {
	return t.Type == TOKEN_IDENT && strings.EqualFold(t.Literal, "Region")
}

// condition 解析并求值 #If/#ElseIf 的条件；不影响结果的条件只检查语法
func (l *Lexer) condition(toks []Token, d preproc.Directive, loc diag.Location) bool {
	if n := len(toks); n > 0 && toks[n-1].Type == TOKEN_THEN {
		toks = toks[:n-1]
	}
	e, err := parseDirectiveExpr(toks)
	if err != nil {
		l.errorf(diag.ErrBadDirectiveExpr, loc, err.Error())
		return false
	}
	if !l.ctrl.NeedsCondition(d) {
		return false
	}
	ok, err := preproc.Condition(e, l.defines)
	if err != nil {
		l.errorf(diag.ErrBadDirectiveExpr, loc, err.Error())
		return false
	}
	return ok
}

// constDirective #Const Name = expr
func (l *Lexer) constDirective(toks []Token, loc diag.Location) {
	if len(toks) < 3 || toks[0].Type != TOKEN_IDENT || toks[1].Type != TOKEN_EQ {
		l.errorf(diag.ErrBadDirectiveExpr, loc, "#Const")
		return
	}
	e, err := parseDirectiveExpr(toks[2:])
	if err == nil {
		var v constant.Value
		if v, err = preproc.Eval(e, l.defines); err == nil {
			l.defines.Set(toks[0].Literal, v)
			return
		}
	}
	l.errorf(diag.ErrBadDirectiveExpr, loc, err.Error())
}

// 指令表达式的二元运算优先级，数值越大结合越紧
var directiveBinary = map[TokenType]struct {
	prec  int
	op    constant.Op
	short bool
}{
	TOKEN_XOR:       {1, constant.OpXor, false},
	TOKEN_OR:        {2, constant.OpOr, false},
	TOKEN_ORELSE:    {2, constant.OpOr, true},
	TOKEN_AND:       {3, constant.OpAnd, false},
	TOKEN_ANDALSO:   {3, constant.OpAnd, true},
	TOKEN_EQ:        {5, constant.OpEq, false},
	TOKEN_NOT_EQ:    {5, constant.OpNe, false},
	TOKEN_LT:        {5, constant.OpLt, false},
	TOKEN_GT:        {5, constant.OpGt, false},
	TOKEN_LT_EQ:     {5, constant.OpLe, false},
	TOKEN_GT_EQ:     {5, constant.OpGe, false},
	TOKEN_SHL:       {6, constant.OpShl, false},
	TOKEN_SHR:       {6, constant.OpShr, false},
	TOKEN_AMP:       {7, constant.OpConcat, false},
	TOKEN_PLUS:      {8, constant.OpAdd, false},
	TOKEN_MINUS:     {8, constant.OpSub, false},
	TOKEN_MOD:       {9, constant.OpMod, false},
	TOKEN_BACKSLASH: {10, constant.OpIntDiv, false},
	TOKEN_ASTERISK:  {11, constant.OpMul, false},
	TOKEN_SLASH:     {11, constant.OpDiv, false},
	TOKEN_CARET:     {13, constant.OpPow, false},
}

const (
	precNot   = 4
	precUnary = 12
	precPow   = 13
)

type directiveParser struct {
	toks []Token
	pos  int
}

func parseDirectiveExpr(toks []Token) (preproc.Expr, error) {
	p := &directiveParser{toks: toks}
	e, err := p.expr(1)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, fmt.Errorf("unexpected '%s'", p.toks[p.pos].Literal)
	}
	return e, nil
}

func (p *directiveParser) peek() (Token, bool) {
	if p.pos >= len(p.toks) {
		return Token{Type: TOKEN_EOL}, false
	}
	return p.toks[p.pos], true
}

func (p *directiveParser) expr(min int) (preproc.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		tok, _ := p.peek()
		b, ok := directiveBinary[tok.Type]
		if !ok || b.prec < min {
			return left, nil
		}
		p.pos++
		right, err := p.expr(b.prec + 1)
		if err != nil {
			return nil, err
		}
		left = &preproc.Binary{Op: b.op, ShortCircuit: b.short, X: left, Y: right}
	}
}

func (p *directiveParser) unary() (preproc.Expr, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("expression expected")
	}
	switch tok.Type {
	case TOKEN_NOT:
		p.pos++
		x, err := p.expr(precNot + 1)
		if err != nil {
			return nil, err
		}
		return &preproc.Unary{Op: preproc.Not, X: x}, nil
	case TOKEN_MINUS, TOKEN_PLUS:
		p.pos++
		x, err := p.expr(precPow)
		if err != nil {
			return nil, err
		}
		op := preproc.Neg
		if tok.Type == TOKEN_PLUS {
			op = preproc.Plus
		}
		return &preproc.Unary{Op: op, X: x}, nil
	}
	return p.primary()
}

func (p *directiveParser) primary() (preproc.Expr, error) {
	tok, _ := p.peek()
	p.pos++
	switch tok.Type {
	case TOKEN_INT, TOKEN_FLOAT, TOKEN_STRING, TOKEN_CHAR, TOKEN_DATE:
		return &preproc.Lit{Value: tok.Value}, nil
	case TOKEN_TRUE:
		return &preproc.Lit{Value: constant.BoolValue(true)}, nil
	case TOKEN_FALSE:
		return &preproc.Lit{Value: constant.BoolValue(false)}, nil
	case TOKEN_NOTHING:
		return &preproc.Nothing{}, nil
	case TOKEN_IDENT:
		return &preproc.Name{Name: tok.Literal}, nil
	case TOKEN_LPAREN:
		e, err := p.expr(1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TOKEN_RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case TOKEN_CONVFUNC:
		kind, object, _ := ConversionTarget(tok.Literal)
		if object {
			return nil, fmt.Errorf("'%s' is not valid in a conditional compilation expression", tok.Literal)
		}
		if err := p.expect(TOKEN_LPAREN); err != nil {
			return nil, err
		}
		e, err := p.expr(1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TOKEN_RPAREN); err != nil {
			return nil, err
		}
		return &preproc.Conv{Kind: kind, X: e}, nil
	case TOKEN_EOL:
		return nil, fmt.Errorf("expression expected")
	}
	return nil, fmt.Errorf("unexpected '%s'", tok.Literal)
}

func (p *directiveParser) expect(t TokenType) error {
	tok, ok := p.peek()
	if !ok || tok.Type != t {
		return fmt.Errorf("'%s' expected", TokenTypeName(t))
	}
	p.pos++
	return nil
}
