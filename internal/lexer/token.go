package lexer

import (
	"strings"

	"github.com/tangzhangming/vbc/internal/constant"
)

// TokenType 表示 token 的类型，同时是语法分析表中的终结符编号
type TokenType int

const (
	// 特殊 token
	TOKEN_ILLEGAL TokenType = iota
	TOKEN_EOF
	TOKEN_EOL   // 换行或 :
	TOKEN_ERROR // 语法错误恢复用的伪终结符，词法分析器不会产生

	// 标识符和字面量
	TOKEN_IDENT    // 标识符
	TOKEN_INT      // 整数
	TOKEN_FLOAT    // 浮点数和 Decimal
	TOKEN_STRING   // 字符串
	TOKEN_CHAR     // 字符 "x"c
	TOKEN_DATE     // 日期 #1/1/2000#
	TOKEN_CONVFUNC // CInt、CStr 等内建转换函数

	// 运算符
	TOKEN_EQ        // =
	TOKEN_NOT_EQ    // <>
	TOKEN_LT        // <
	TOKEN_GT        // >
	TOKEN_LT_EQ     // <=
	TOKEN_GT_EQ     // >=
	TOKEN_PLUS      // +
	TOKEN_MINUS     // -
	TOKEN_ASTERISK  // *
	TOKEN_SLASH     // /
	TOKEN_BACKSLASH // \
	TOKEN_CARET     // ^
	TOKEN_AMP       // &
	TOKEN_SHL       // <<
	TOKEN_SHR       // >>

	TOKEN_PLUS_ASSIGN      // +=
	TOKEN_MINUS_ASSIGN     // -=
	TOKEN_ASTERISK_ASSIGN  // *=
	TOKEN_SLASH_ASSIGN     // /=
	TOKEN_BACKSLASH_ASSIGN // \=
	TOKEN_CARET_ASSIGN     // ^=
	TOKEN_AMP_ASSIGN       // &=
	TOKEN_SHL_ASSIGN       // <<=
	TOKEN_SHR_ASSIGN       // >>=

	// 分隔符
	TOKEN_COMMA    // ,
	TOKEN_DOT      // .
	TOKEN_QUESTION // ?
	TOKEN_LPAREN   // (
	TOKEN_RPAREN   // )
	TOKEN_LBRACE   // {
	TOKEN_RBRACE   // }

	// 关键字
	TOKEN_ADDRESSOF
	TOKEN_AND
	TOKEN_ANDALSO
	TOKEN_AS
	TOKEN_BYREF
	TOKEN_BYVAL
	TOKEN_CLASS
	TOKEN_CONST
	TOKEN_CTYPE
	TOKEN_DELEGATE
	TOKEN_DIM
	TOKEN_DIRECTCAST
	TOKEN_DO
	TOKEN_ELSE
	TOKEN_ELSEIF
	TOKEN_END
	TOKEN_ENUM
	TOKEN_EXIT
	TOKEN_FALSE
	TOKEN_FOR
	TOKEN_FRIEND
	TOKEN_FUNCTION
	TOKEN_GETTYPE
	TOKEN_IF
	TOKEN_IMPLEMENTS
	TOKEN_IMPORTS
	TOKEN_INHERITS
	TOKEN_INTERFACE
	TOKEN_IS
	TOKEN_ISNOT
	TOKEN_LOOP
	TOKEN_ME
	TOKEN_MOD
	TOKEN_MODULE
	TOKEN_MUSTINHERIT
	TOKEN_MUSTOVERRIDE
	TOKEN_MYBASE
	TOKEN_NAMESPACE
	TOKEN_NARROWING
	TOKEN_NEW
	TOKEN_NEXT
	TOKEN_NOT
	TOKEN_NOTHING
	TOKEN_NOTINHERITABLE
	TOKEN_OF
	TOKEN_ON
	TOKEN_OPERATOR
	TOKEN_OPTION
	TOKEN_OPTIONAL
	TOKEN_OR
	TOKEN_ORELSE
	TOKEN_OVERRIDABLE
	TOKEN_OVERRIDES
	TOKEN_PARAMARRAY
	TOKEN_PARTIAL
	TOKEN_PRIVATE
	TOKEN_PROTECTED
	TOKEN_PUBLIC
	TOKEN_READONLY
	TOKEN_RETURN
	TOKEN_SHARED
	TOKEN_STEP
	TOKEN_STRUCTURE
	TOKEN_SUB
	TOKEN_THEN
	TOKEN_THROW
	TOKEN_TO
	TOKEN_TRUE
	TOKEN_TRYCAST
	TOKEN_TYPEOF
	TOKEN_UNTIL
	TOKEN_WHILE
	TOKEN_WIDENING
	TOKEN_XOR

	// NumTokenTypes token 类型总数
	NumTokenTypes
)

// Token 表示一个词法单元
type Token struct {
	Type    TokenType
	Literal string
	// Value 字面量的常量值
	Value  constant.Value
	Line   int
	Column int
}

var tokenNames = [NumTokenTypes]string{
	TOKEN_ILLEGAL:  "ILLEGAL",
	TOKEN_EOF:      "EOF",
	TOKEN_EOL:      "EOL",
	TOKEN_ERROR:    "error",
	TOKEN_IDENT:    "IDENT",
	TOKEN_INT:      "INT",
	TOKEN_FLOAT:    "FLOAT",
	TOKEN_STRING:   "STRING",
	TOKEN_CHAR:     "CHAR",
	TOKEN_DATE:     "DATE",
	TOKEN_CONVFUNC: "CONVFUNC",

	TOKEN_EQ:        "=",
	TOKEN_NOT_EQ:    "<>",
	TOKEN_LT:        "<",
	TOKEN_GT:        ">",
	TOKEN_LT_EQ:     "<=",
	TOKEN_GT_EQ:     ">=",
	TOKEN_PLUS:      "+",
	TOKEN_MINUS:     "-",
	TOKEN_ASTERISK:  "*",
	TOKEN_SLASH:     "/",
	TOKEN_BACKSLASH: "\\",
	TOKEN_CARET:     "^",
	TOKEN_AMP:       "&",
	TOKEN_SHL:       "<<",
	TOKEN_SHR:       ">>",

	TOKEN_PLUS_ASSIGN:      "+=",
	TOKEN_MINUS_ASSIGN:     "-=",
	TOKEN_ASTERISK_ASSIGN:  "*=",
	TOKEN_SLASH_ASSIGN:     "/=",
	TOKEN_BACKSLASH_ASSIGN: "\\=",
	TOKEN_CARET_ASSIGN:     "^=",
	TOKEN_AMP_ASSIGN:       "&=",
	TOKEN_SHL_ASSIGN:       "<<=",
	TOKEN_SHR_ASSIGN:       ">>=",

	TOKEN_COMMA:    ",",
	TOKEN_DOT:      ".",
	TOKEN_QUESTION: "?",
	TOKEN_LPAREN:   "(",
	TOKEN_RPAREN:   ")",
	TOKEN_LBRACE:   "{",
	TOKEN_RBRACE:   "}",

	TOKEN_ADDRESSOF:      "AddressOf",
	TOKEN_AND:            "And",
	TOKEN_ANDALSO:        "AndAlso",
	TOKEN_AS:             "As",
	TOKEN_BYREF:          "ByRef",
	TOKEN_BYVAL:          "ByVal",
	TOKEN_CLASS:          "Class",
	TOKEN_CONST:          "Const",
	TOKEN_CTYPE:          "CType",
	TOKEN_DELEGATE:       "Delegate",
	TOKEN_DIM:            "Dim",
	TOKEN_DIRECTCAST:     "DirectCast",
	TOKEN_DO:             "Do",
	TOKEN_ELSE:           "Else",
	TOKEN_ELSEIF:         "ElseIf",
	TOKEN_END:            "End",
	TOKEN_ENUM:           "Enum",
	TOKEN_EXIT:           "Exit",
	TOKEN_FALSE:          "False",
	TOKEN_FOR:            "For",
	TOKEN_FRIEND:         "Friend",
	TOKEN_FUNCTION:       "Function",
	TOKEN_GETTYPE:        "GetType",
	TOKEN_IF:             "If",
	TOKEN_IMPLEMENTS:     "Implements",
	TOKEN_IMPORTS:        "Imports",
	TOKEN_INHERITS:       "Inherits",
	TOKEN_INTERFACE:      "Interface",
	TOKEN_IS:             "Is",
	TOKEN_ISNOT:          "IsNot",
	TOKEN_LOOP:           "Loop",
	TOKEN_ME:             "Me",
	TOKEN_MOD:            "Mod",
	TOKEN_MODULE:         "Module",
	TOKEN_MUSTINHERIT:    "MustInherit",
	TOKEN_MUSTOVERRIDE:   "MustOverride",
	TOKEN_MYBASE:         "MyBase",
	TOKEN_NAMESPACE:      "Namespace",
	TOKEN_NARROWING:      "Narrowing",
	TOKEN_NEW:            "New",
	TOKEN_NEXT:           "Next",
	TOKEN_NOT:            "Not",
	TOKEN_NOTHING:        "Nothing",
	TOKEN_NOTINHERITABLE: "NotInheritable",
	TOKEN_OF:             "Of",
	TOKEN_ON:             "On",
	TOKEN_OPERATOR:       "Operator",
	TOKEN_OPTION:         "Option",
	TOKEN_OPTIONAL:       "Optional",
	TOKEN_OR:             "Or",
	TOKEN_ORELSE:         "OrElse",
	TOKEN_OVERRIDABLE:    "Overridable",
	TOKEN_OVERRIDES:      "Overrides",
	TOKEN_PARAMARRAY:     "ParamArray",
	TOKEN_PARTIAL:        "Partial",
	TOKEN_PRIVATE:        "Private",
	TOKEN_PROTECTED:      "Protected",
	TOKEN_PUBLIC:         "Public",
	TOKEN_READONLY:       "ReadOnly",
	TOKEN_RETURN:         "Return",
	TOKEN_SHARED:         "Shared",
	TOKEN_STEP:           "Step",
	TOKEN_STRUCTURE:      "Structure",
	TOKEN_SUB:            "Sub",
	TOKEN_THEN:           "Then",
	TOKEN_THROW:          "Throw",
	TOKEN_TO:             "To",
	TOKEN_TRUE:           "True",
	TOKEN_TRYCAST:        "TryCast",
	TOKEN_TYPEOF:         "TypeOf",
	TOKEN_UNTIL:          "Until",
	TOKEN_WHILE:          "While",
	TOKEN_WIDENING:       "Widening",
	TOKEN_XOR:            "Xor",
}

// keywords 关键字表，键为小写形式
var keywords = func() map[string]TokenType {
	m := make(map[string]TokenType)
	for t := TOKEN_ADDRESSOF; t < NumTokenTypes; t++ {
		m[strings.ToLower(tokenNames[t])] = t
	}
	return m
}()

// conversionFunctions 内建转换函数及其目标类型
var conversionFunctions = map[string]struct {
	name string
	kind constant.Kind
	// object CObj 的目标不是常量类型
	object bool
}{
	"cbool":   {"CBool", constant.Bool, false},
	"cbyte":   {"CByte", constant.Byte, false},
	"cchar":   {"CChar", constant.Char, false},
	"cdate":   {"CDate", constant.Date, false},
	"cdbl":    {"CDbl", constant.Double, false},
	"cdec":    {"CDec", constant.Decimal, false},
	"cint":    {"CInt", constant.Integer, false},
	"clng":    {"CLng", constant.Long, false},
	"cobj":    {"CObj", 0, true},
	"csbyte":  {"CSByte", constant.SByte, false},
	"cshort":  {"CShort", constant.Short, false},
	"csng":    {"CSng", constant.Single, false},
	"cstr":    {"CStr", constant.String, false},
	"cuint":   {"CUInt", constant.UInteger, false},
	"culng":   {"CULng", constant.ULong, false},
	"cushort": {"CUShort", constant.UShort, false},
}

// LookupIdent 查找标识符是否为关键字或内建转换函数，不区分大小写。
// 返回的字面量为关键字的规范拼写。
func LookupIdent(ident string) (TokenType, string) {
	lower := strings.ToLower(ident)
	if tok, ok := keywords[lower]; ok {
		return tok, tokenNames[tok]
	}
	if cf, ok := conversionFunctions[lower]; ok {
		return TOKEN_CONVFUNC, cf.name
	}
	return TOKEN_IDENT, ident
}

// ConversionTarget 内建转换函数的目标类型；CObj 返回 object 为 true
func ConversionTarget(name string) (kind constant.Kind, object, ok bool) {
	cf, ok := conversionFunctions[strings.ToLower(name)]
	return cf.kind, cf.object, ok
}

// IsKeyword 是否为关键字
func (t TokenType) IsKeyword() bool {
	return t >= TOKEN_ADDRESSOF && t < NumTokenTypes
}

func (t TokenType) String() string { return TokenTypeName(t) }

// TokenTypeName 返回 token 类型的名称
func TokenTypeName(t TokenType) string {
	if t < 0 || t >= NumTokenTypes {
		return "UNKNOWN"
	}
	return tokenNames[t]
}
