package lexer

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/preproc"
)

// Options 词法分析选项
type Options struct {
	File string
	// Defines 项目级条件编译常量，#Const 会在副本上修改
	Defines map[string]constant.Value
	Sink    diag.Sink
}

// Lexer 词法分析器。条件编译在其下层执行：
// 被拒绝分支中的记号不会交给语法分析器。
type Lexer struct {
	input   string
	file    string
	pos     int  // 当前位置
	readPos int  // 下一个读取位置
	ch      rune // 当前字符
	line    int  // 当前行号
	column  int  // 当前列号

	sink    diag.Sink
	ctrl    preproc.Controller
	defines preproc.Defines

	lineStart bool      // 本行到目前为止只有空白
	last      TokenType // 上一个返回的 token
	finished  bool
	err       error // 指令嵌套错误，之后只返回 EOF
	cur       Token
}

// New 创建一个新的词法分析器
func New(input string) *Lexer {
	return NewWithOptions(input, Options{})
}

// NewWithOptions 按选项创建词法分析器
func NewWithOptions(input string, opts Options) *Lexer {
	l := &Lexer{
		input:     input,
		file:      opts.File,
		line:      1,
		column:    0,
		sink:      opts.Sink,
		defines:   preproc.NewDefines(opts.Defines),
		lineStart: true,
		last:      TOKEN_EOL,
	}
	if l.sink == nil {
		l.sink = diag.Discard
	}
	l.readChar()
	return l
}

// readChar 读取下一个字符
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.pos = l.readPos
	l.column++
	if l.readPos >= len(l.input) {
		l.ch = 0
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.readPos += size
}

// peekChar 查看下一个字符但不移动位置
func (l *Lexer) peekChar() rune {
	return l.peekAt(0)
}

// peekAt 查看当前字符之后第 n+1 个字符
func (l *Lexer) peekAt(n int) rune {
	i := l.readPos
	for ; n > 0; n-- {
		if i >= len(l.input) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(l.input[i:])
		i += size
	}
	if i >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[i:])
	return r
}

func (l *Lexer) location() diag.Location {
	return diag.Location{File: l.file, Line: l.line, Column: l.column}
}

func (l *Lexer) errorf(code int, loc diag.Location, args ...any) {
	diag.Errorf(l.sink, code, loc, args...)
}

// Err 预处理的致命错误（*preproc.Error），没有时为 nil
func (l *Lexer) Err() error { return l.err }

// Defines 当前的条件编译常量
func (l *Lexer) Defines() preproc.Defines { return l.defines }

// NextToken 获取下一个 token。
// 连续的换行合并为一个 EOL，文件开头不产生 EOL，EOF 之前总有一个 EOL。
func (l *Lexer) NextToken() Token {
	for {
		tok := l.scan()
		switch tok.Type {
		case TOKEN_EOL:
			if l.last == TOKEN_EOL {
				continue
			}
		case TOKEN_EOF:
			if l.last != TOKEN_EOL && l.last != TOKEN_EOF {
				l.last = TOKEN_EOL
				return Token{Type: TOKEN_EOL, Line: tok.Line, Column: tok.Column}
			}
		}
		l.last = tok.Type
		return tok
	}
}

// scan 在条件编译控制下读取下一个可见 token
func (l *Lexer) scan() Token {
	for {
		if l.err != nil {
			return l.eof()
		}
		l.skipWhitespace()
		if l.lineStart && l.ch == '#' && l.directiveAhead() {
			l.directive()
			continue
		}
		if !l.ctrl.Active() && l.ch != 0 {
			l.skipLine()
			continue
		}
		if l.ch == 0 {
			return l.eof()
		}
		if tok, ok := l.scanToken(); ok {
			return tok
		}
	}
}

func (l *Lexer) eof() Token {
	loc := l.location()
	if !l.finished && l.err == nil {
		l.finished = true
		if err := l.ctrl.Finish(loc); err != nil {
			l.err = err
		}
	}
	return Token{Type: TOKEN_EOF, Line: loc.Line, Column: loc.Column}
}

// scanToken 读取一个 token；注释和非法字符返回 false
func (l *Lexer) scanToken() (Token, bool) {
	tok := Token{Line: l.line, Column: l.column}
	if l.ch != '\n' {
		l.lineStart = false
	}

	switch l.ch {
	case '\n':
		tok.Type, tok.Literal = TOKEN_EOL, "\n"
		l.readChar()
		l.lineStart = true
		return tok, true
	case ':':
		tok.Type, tok.Literal = TOKEN_EOL, ":"
	case '\'':
		l.skipComment()
		return tok, false
	case '"':
		l.readString(&tok)
		return tok, true
	case '#':
		l.readDate(&tok)
		return tok, true
	case '&':
		if base := l.radixAhead(); base != 0 {
			l.readNumber(&tok)
			return tok, true
		}
		l.operator(&tok, TOKEN_AMP, TOKEN_AMP_ASSIGN)
		return tok, true
	case '=':
		tok.Type, tok.Literal = TOKEN_EQ, "="
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type, tok.Literal = TOKEN_LT_EQ, "<="
		case '>':
			l.readChar()
			tok.Type, tok.Literal = TOKEN_NOT_EQ, "<>"
		case '<':
			l.readChar()
			l.operator(&tok, TOKEN_SHL, TOKEN_SHL_ASSIGN)
			return tok, true
		default:
			tok.Type, tok.Literal = TOKEN_LT, "<"
		}
	case '>':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type, tok.Literal = TOKEN_GT_EQ, ">="
		case '>':
			l.readChar()
			l.operator(&tok, TOKEN_SHR, TOKEN_SHR_ASSIGN)
			return tok, true
		default:
			tok.Type, tok.Literal = TOKEN_GT, ">"
		}
	case '+':
		l.operator(&tok, TOKEN_PLUS, TOKEN_PLUS_ASSIGN)
		return tok, true
	case '-':
		l.operator(&tok, TOKEN_MINUS, TOKEN_MINUS_ASSIGN)
		return tok, true
	case '*':
		l.operator(&tok, TOKEN_ASTERISK, TOKEN_ASTERISK_ASSIGN)
		return tok, true
	case '/':
		l.operator(&tok, TOKEN_SLASH, TOKEN_SLASH_ASSIGN)
		return tok, true
	case '\\':
		l.operator(&tok, TOKEN_BACKSLASH, TOKEN_BACKSLASH_ASSIGN)
		return tok, true
	case '^':
		l.operator(&tok, TOKEN_CARET, TOKEN_CARET_ASSIGN)
		return tok, true
	case ',':
		tok.Type, tok.Literal = TOKEN_COMMA, ","
	case '?':
		tok.Type, tok.Literal = TOKEN_QUESTION, "?"
	case '(':
		tok.Type, tok.Literal = TOKEN_LPAREN, "("
	case ')':
		tok.Type, tok.Literal = TOKEN_RPAREN, ")"
	case '{':
		tok.Type, tok.Literal = TOKEN_LBRACE, "{"
	case '}':
		tok.Type, tok.Literal = TOKEN_RBRACE, "}"
	case '[':
		return l.readEscapedIdentifier(tok)
	case '.':
		if isDigit(l.peekChar()) {
			l.readNumber(&tok)
			return tok, true
		}
		tok.Type, tok.Literal = TOKEN_DOT, "."
	default:
		switch {
		case isDigit(l.ch):
			l.readNumber(&tok)
			return tok, true
		case isIdentStart(l.ch, l.peekChar()):
			tok.Literal = l.readIdentifier()
			if strings.EqualFold(tok.Literal, "rem") {
				l.skipComment()
				return tok, false
			}
			tok.Type, tok.Literal = LookupIdent(tok.Literal)
			return tok, true
		}
		l.errorf(diag.ErrIllegalChar, l.location(), string(l.ch))
		l.readChar()
		return tok, false
	}

	l.readChar()
	return tok, true
}

// operator 读取可以后跟 = 组成复合赋值的运算符
func (l *Lexer) operator(tok *Token, plain, assign TokenType) {
	if l.peekChar() == '=' {
		l.readChar()
		tok.Type, tok.Literal = assign, tokenNames[assign]
	} else {
		tok.Type, tok.Literal = plain, tokenNames[plain]
	}
	l.readChar()
}

// skipWhitespace 跳过空白字符和续行符
func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\u00a0':
			l.readChar()
		case l.ch == '_' && l.continuationAhead():
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			if l.ch == '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

// continuationAhead 当前的 _ 之后直到行尾只有空白
func (l *Lexer) continuationAhead() bool {
	for i := l.readPos; i < len(l.input); i++ {
		switch l.input[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		}
		return false
	}
	return true
}

// skipComment 跳过注释，保留行尾的换行
func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// skipLine 跳过被拒绝分支中的一整行
func (l *Lexer) skipLine() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	if l.ch == '\n' {
		l.readChar()
		l.lineStart = true
	}
}

// readIdentifier 读取标识符
func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

// readEscapedIdentifier 读取 [Name] 形式的标识符，不做关键字查找
func (l *Lexer) readEscapedIdentifier(tok Token) (Token, bool) {
	loc := l.location()
	l.readChar()
	name := l.readIdentifier()
	if name == "" || l.ch != ']' {
		l.errorf(diag.ErrIllegalChar, loc, "[")
		return tok, false
	}
	l.readChar()
	tok.Type, tok.Literal = TOKEN_IDENT, name
	return tok, true
}

// radixAhead & 之后是否为 H/O/B 前缀和该进制的数字，返回进制
func (l *Lexer) radixAhead() int {
	base := 0
	switch unicode.ToUpper(l.peekChar()) {
	case 'H':
		base = 16
	case 'O':
		base = 8
	case 'B':
		base = 2
	default:
		return 0
	}
	if digitValue(l.peekAt(1)) < base {
		return base
	}
	return 0
}

// readNumber 读取数值字面量：十进制、&H/&O/&B、实数和类型后缀
func (l *Lexer) readNumber(tok *Token) {
	loc := l.location()
	pos := l.pos
	if l.ch == '&' {
		base := l.radixAhead()
		l.readChar()
		l.readChar()
		for digitValue(l.ch) < base {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) {
			l.readChar()
		}
		if l.ch == '.' && isDigit(l.peekChar()) {
			l.readChar()
			for isDigit(l.ch) {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			next := l.peekChar()
			if isDigit(next) || (next == '+' || next == '-') && isDigit(l.peekAt(1)) {
				l.readChar()
				if l.ch == '+' || l.ch == '-' {
					l.readChar()
				}
				for isDigit(l.ch) {
					l.readChar()
				}
			}
		}
	}
	l.readTypeSuffix()

	tok.Literal = l.input[pos:l.pos]
	v, err := constant.ParseNumber(tok.Literal)
	switch {
	case errors.Is(err, constant.ErrOverflow):
		l.errorf(diag.ErrLiteralOverflow, loc, tok.Literal)
		v = constant.IntegerValue(0)
	case err != nil:
		l.errorf(diag.ErrBadNumber, loc, tok.Literal)
		v = constant.IntegerValue(0)
	}
	tok.Value = v
	tok.Type = TOKEN_INT
	if !v.Kind().IsIntegral() {
		tok.Type = TOKEN_FLOAT
	}
}

// readTypeSuffix 读取 S、US、I、UI、L、UL、F、R、D 以及 % & @ ! # 后缀
func (l *Lexer) readTypeSuffix() {
	switch l.ch {
	case '%', '@', '!':
		l.readChar()
		return
	case '&', '#':
		// &H 前缀和日期字面量另作他用
		if next := l.peekChar(); !isDigit(next) && !isLetter(next) {
			l.readChar()
		}
		return
	}
	first := unicode.ToUpper(l.ch)
	second := unicode.ToUpper(l.peekChar())
	if first == 'U' && (second == 'S' || second == 'I' || second == 'L') && !isIdentPart(l.peekAt(1)) {
		l.readChar()
		l.readChar()
		return
	}
	switch first {
	case 'S', 'I', 'L', 'F', 'R', 'D':
		if !isIdentPart(second) {
			l.readChar()
		}
	}
}

// readString 读取字符串或字符字面量，"" 表示一个双引号
func (l *Lexer) readString(tok *Token) {
	loc := l.location()
	l.readChar() // 跳过开头的 "
	pos := l.pos
	for {
		if l.ch == '"' {
			if l.peekChar() == '"' {
				l.readChar()
				l.readChar()
				continue
			}
			break
		}
		if l.ch == '\n' || l.ch == 0 {
			l.errorf(diag.ErrUnterminatedString, loc)
			tok.Type, tok.Literal = TOKEN_STRING, l.input[pos:l.pos]
			tok.Value = constant.StringLiteral(tok.Literal)
			return
		}
		l.readChar()
	}
	raw := l.input[pos:l.pos]
	l.readChar() // 跳过结尾的 "

	if (l.ch == 'c' || l.ch == 'C') && !isIdentPart(l.peekChar()) {
		l.readChar()
		c, err := constant.CharLiteral(raw)
		if err != nil {
			l.errorf(diag.ErrBadCharLiteral, loc)
		}
		tok.Type, tok.Literal, tok.Value = TOKEN_CHAR, raw, c
		return
	}
	tok.Type, tok.Literal, tok.Value = TOKEN_STRING, raw, constant.StringLiteral(raw)
}

// readDate 读取 #...# 日期字面量
func (l *Lexer) readDate(tok *Token) {
	loc := l.location()
	l.readChar() // 跳过开头的 #
	pos := l.pos
	for l.ch != '#' && l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	body := l.input[pos:l.pos]
	tok.Type, tok.Literal = TOKEN_DATE, body
	if l.ch != '#' {
		l.errorf(diag.ErrBadDateLiteral, loc, body)
		tok.Value = constant.DateValue{}
		return
	}
	l.readChar()
	d, err := constant.ParseDateLiteral(body)
	if err != nil {
		l.errorf(diag.ErrBadDateLiteral, loc, body)
	}
	tok.Value = d
}

// isLetter 判断是否为字母
func isLetter(ch rune) bool {
	return unicode.IsLetter(ch)
}

// isDigit 判断是否为数字
func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentPart(ch rune) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

// isIdentStart 标识符以字母开头，或以 _ 开头且后跟标识符字符
func isIdentStart(ch, next rune) bool {
	return isLetter(ch) || ch == '_' && isIdentPart(next)
}

// digitValue 字符的数值，非数字返回 36
func digitValue(ch rune) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10
	}
	return 36
}

// Tokenize 将输入字符串转换为 token 列表
func Tokenize(input string) []Token {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF {
			break
		}
	}
	return tokens
}

// Advance 读取下一个 token，到达 EOF 时返回 false
func (l *Lexer) Advance() bool {
	l.cur = l.NextToken()
	return l.cur.Type != TOKEN_EOF
}

// Token 当前 token 的类型
func (l *Lexer) Token() TokenType { return l.cur.Type }

// Value 当前 token 的语义值：标识符和转换函数为名称，字面量为常量值
func (l *Lexer) Value() any {
	switch l.cur.Type {
	case TOKEN_IDENT, TOKEN_CONVFUNC:
		return l.cur.Literal
	case TOKEN_INT, TOKEN_FLOAT, TOKEN_STRING, TOKEN_CHAR, TOKEN_DATE:
		return l.cur.Value
	}
	return nil
}

// Pos 当前 token 的位置
func (l *Lexer) Pos() diag.Location {
	return diag.Location{File: l.file, Line: l.cur.Line, Column: l.cur.Column}
}

// Current 当前 token
func (l *Lexer) Current() Token { return l.cur }
