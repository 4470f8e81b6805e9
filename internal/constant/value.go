package constant

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"

	"github.com/shopspring/decimal"
)

// Value 编译期常量
type Value interface {
	// Kind 常量类型
	Kind() Kind
	// String 可回读的显示形式（字面量语法）
	String() string
	// Raw 底层 Go 值
	Raw() any
	// IsNegative 是否为负数
	IsNegative() bool
	// IsZeroInteger 是否为整数零
	IsZeroInteger() bool

	value()
}

type (
	BoolValue     bool
	ByteValue     uint8
	SByteValue    int8
	ShortValue    int16
	UShortValue   uint16
	IntegerValue  int32
	UIntegerValue uint32
	LongValue     int64
	ULongValue    uint64
	SingleValue   float32
	DoubleValue   float64
	CharValue     uint16
	StringValue   string
)

// DecimalValue 十进制常量，范围与 CLR System.Decimal 一致
type DecimalValue struct {
	d decimal.Decimal
}

// DateValue 日期常量
type DateValue struct {
	t time.Time
}

var (
	decimalMax = decimal.RequireFromString("79228162514264337593543950335")
	decimalMin = decimalMax.Neg()
)

// NewDecimal 创建 Decimal 常量，超出范围时返回 false
func NewDecimal(d decimal.Decimal) (DecimalValue, bool) {
	if d.Cmp(decimalMax) > 0 || d.Cmp(decimalMin) < 0 {
		return DecimalValue{}, false
	}
	return DecimalValue{d: d}, true
}

// NewDate 创建 Date 常量
func NewDate(t time.Time) DateValue {
	return DateValue{t: t.UTC()}
}

// Decimal 返回底层的十进制数
func (v DecimalValue) Decimal() decimal.Decimal { return v.d }

// Time 返回底层时间
func (v DateValue) Time() time.Time { return v.t }

func (BoolValue) Kind() Kind     { return Bool }
func (ByteValue) Kind() Kind     { return Byte }
func (SByteValue) Kind() Kind    { return SByte }
func (ShortValue) Kind() Kind    { return Short }
func (UShortValue) Kind() Kind   { return UShort }
func (IntegerValue) Kind() Kind  { return Integer }
func (UIntegerValue) Kind() Kind { return UInteger }
func (LongValue) Kind() Kind     { return Long }
func (ULongValue) Kind() Kind    { return ULong }
func (SingleValue) Kind() Kind   { return Single }
func (DoubleValue) Kind() Kind   { return Double }
func (DecimalValue) Kind() Kind  { return Decimal }
func (CharValue) Kind() Kind     { return Char }
func (StringValue) Kind() Kind   { return String }
func (DateValue) Kind() Kind     { return Date }

func (v BoolValue) Raw() any     { return bool(v) }
func (v ByteValue) Raw() any     { return uint8(v) }
func (v SByteValue) Raw() any    { return int8(v) }
func (v ShortValue) Raw() any    { return int16(v) }
func (v UShortValue) Raw() any   { return uint16(v) }
func (v IntegerValue) Raw() any  { return int32(v) }
func (v UIntegerValue) Raw() any { return uint32(v) }
func (v LongValue) Raw() any     { return int64(v) }
func (v ULongValue) Raw() any    { return uint64(v) }
func (v SingleValue) Raw() any   { return float32(v) }
func (v DoubleValue) Raw() any   { return float64(v) }
func (v DecimalValue) Raw() any  { return v.d }
func (v CharValue) Raw() any     { return uint16(v) }
func (v StringValue) Raw() any   { return string(v) }
func (v DateValue) Raw() any     { return v.t }

func (BoolValue) IsNegative() bool      { return false }
func (ByteValue) IsNegative() bool      { return false }
func (v SByteValue) IsNegative() bool   { return v < 0 }
func (v ShortValue) IsNegative() bool   { return v < 0 }
func (UShortValue) IsNegative() bool    { return false }
func (v IntegerValue) IsNegative() bool { return v < 0 }
func (UIntegerValue) IsNegative() bool  { return false }
func (v LongValue) IsNegative() bool    { return v < 0 }
func (ULongValue) IsNegative() bool     { return false }
func (v SingleValue) IsNegative() bool  { return v < 0 }
func (v DoubleValue) IsNegative() bool  { return v < 0 }
func (v DecimalValue) IsNegative() bool { return v.d.Sign() < 0 }
func (CharValue) IsNegative() bool      { return false }
func (StringValue) IsNegative() bool    { return false }
func (DateValue) IsNegative() bool      { return false }

func (BoolValue) IsZeroInteger() bool       { return false }
func (v ByteValue) IsZeroInteger() bool     { return v == 0 }
func (v SByteValue) IsZeroInteger() bool    { return v == 0 }
func (v ShortValue) IsZeroInteger() bool    { return v == 0 }
func (v UShortValue) IsZeroInteger() bool   { return v == 0 }
func (v IntegerValue) IsZeroInteger() bool  { return v == 0 }
func (v UIntegerValue) IsZeroInteger() bool { return v == 0 }
func (v LongValue) IsZeroInteger() bool     { return v == 0 }
func (v ULongValue) IsZeroInteger() bool    { return v == 0 }
func (SingleValue) IsZeroInteger() bool     { return false }
func (DoubleValue) IsZeroInteger() bool     { return false }
func (DecimalValue) IsZeroInteger() bool    { return false }
func (CharValue) IsZeroInteger() bool       { return false }
func (StringValue) IsZeroInteger() bool     { return false }
func (DateValue) IsZeroInteger() bool       { return false }

func (BoolValue) value()     {}
func (ByteValue) value()     {}
func (SByteValue) value()    {}
func (ShortValue) value()    {}
func (UShortValue) value()   {}
func (IntegerValue) value()  {}
func (UIntegerValue) value() {}
func (LongValue) value()     {}
func (ULongValue) value()    {}
func (SingleValue) value()   {}
func (DoubleValue) value()   {}
func (DecimalValue) value()  {}
func (CharValue) value()     {}
func (StringValue) value()   {}
func (DateValue) value()     {}

func (v BoolValue) String() string {
	if v {
		return "True"
	}
	return "False"
}

// Byte 和 SByte 没有字面量后缀，使用转换函数形式
func (v ByteValue) String() string  { return "CByte(" + strconv.FormatUint(uint64(v), 10) + ")" }
func (v SByteValue) String() string { return "CSByte(" + strconv.FormatInt(int64(v), 10) + ")" }

func (v ShortValue) String() string    { return strconv.FormatInt(int64(v), 10) + "S" }
func (v UShortValue) String() string   { return strconv.FormatUint(uint64(v), 10) + "US" }
func (v IntegerValue) String() string  { return strconv.FormatInt(int64(v), 10) }
func (v UIntegerValue) String() string { return strconv.FormatUint(uint64(v), 10) + "UI" }
func (v LongValue) String() string     { return strconv.FormatInt(int64(v), 10) + "L" }
func (v ULongValue) String() string    { return strconv.FormatUint(uint64(v), 10) + "UL" }

func (v SingleValue) String() string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "Single.NaN"
	case math.IsInf(f, 1):
		return "Single.PositiveInfinity"
	case math.IsInf(f, -1):
		return "Single.NegativeInfinity"
	}
	return floatLiteral(strconv.FormatFloat(f, 'G', -1, 32)) + "F"
}

func (v DoubleValue) String() string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "Double.NaN"
	case math.IsInf(f, 1):
		return "Double.PositiveInfinity"
	case math.IsInf(f, -1):
		return "Double.NegativeInfinity"
	}
	return floatLiteral(strconv.FormatFloat(f, 'G', -1, 64)) + "R"
}

// floatLiteral 去掉指数部分多余的前导零 (1E+07 -> 1E+7)
func floatLiteral(s string) string {
	i := strings.IndexByte(s, 'E')
	if i < 0 {
		return s
	}
	mant, exp := s[:i], s[i+1:]
	sign := ""
	if exp != "" && (exp[0] == '+' || exp[0] == '-') {
		sign, exp = exp[:1], exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	return mant + "E" + sign + exp
}

func (v DecimalValue) String() string { return v.d.String() + "D" }

// String 不可打印字符和代理码元写成 ChrW(&HXXXX)，"…"c 中只能放单个可打印字符
func (v CharValue) String() string {
	r := rune(v)
	if utf16.IsSurrogate(r) || !unicode.IsPrint(r) {
		return fmt.Sprintf("ChrW(&H%04X)", uint16(v))
	}
	return quote(string(r)) + "c"
}

func (v StringValue) String() string { return quote(string(v)) }

func (v DateValue) String() string { return "#" + v.text() + "#" }

// text 不带 # 的日期文本
func (v DateValue) text() string {
	t := v.t
	hasDate := !(t.Year() == 1 && t.Month() == time.January && t.Day() == 1)
	hasTime := t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0
	switch {
	case hasDate && hasTime:
		return t.Format("1/2/2006 3:04:05 PM")
	case hasTime:
		return t.Format("3:04:05 PM")
	default:
		return t.Format("1/2/2006")
	}
}

// quote 字符串字面量，内部双引号写两次
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Equal 两个常量的类型和值是否都相同
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case DecimalValue:
		return x.d.Equal(b.(DecimalValue).d)
	case DateValue:
		return x.t.Equal(b.(DateValue).t)
	}
	return a == b
}
