package constant

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/shopspring/decimal"
)

var (
	ErrOverflow         = errors.New("constant overflow")
	ErrSyntax           = errors.New("invalid literal")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrInvalidOperation = errors.New("operator not defined for constant")
)

// 后缀按长度降序排列，先匹配两字符后缀
var (
	integerSuffixes = []string{"UL", "US", "UI", "S", "I", "L", "%", "&"}
	numberSuffixes  = []string{"UL", "US", "UI", "S", "I", "L", "%", "&", "F", "R", "D", "@", "!", "#"}
)

func suffixKind(suffix string) (Kind, bool) {
	switch suffix {
	case "S":
		return Short, true
	case "US":
		return UShort, true
	case "I", "%":
		return Integer, true
	case "UI":
		return UInteger, true
	case "L", "&":
		return Long, true
	case "UL":
		return ULong, true
	case "F", "!":
		return Single, true
	case "R", "#":
		return Double, true
	case "D", "@":
		return Decimal, true
	}
	return 0, false
}

func splitSuffix(s string, suffixes []string) (body, suffix string) {
	for _, suf := range suffixes {
		if len(s) > len(suf) && strings.HasSuffix(s, suf) {
			return s[:len(s)-len(suf)], suf
		}
	}
	return s, ""
}

// ParseNumber 解析数值字面量（整数、实数、&H/&O/&B 前缀以及类型后缀）
func ParseNumber(text string) (Value, error) {
	s := strings.ToUpper(text)
	if strings.HasPrefix(s, "&") {
		return ParseIntegerLiteral(text)
	}
	body, suffix := splitSuffix(s, numberSuffixes)
	k, suffixed := suffixKind(suffix)
	if strings.ContainsAny(body, ".E") || (suffixed && !k.IsIntegral()) {
		return ParseRealLiteral(text)
	}
	return ParseIntegerLiteral(text)
}

// ParseIntegerLiteral 解析整数字面量。
// 无后缀的十进制字面量优先为 Integer，其次 Long；十六进制、八进制和二进制字面量按位模式解释。
func ParseIntegerLiteral(text string) (Value, error) {
	s := strings.ToUpper(text)
	base := 10
	if strings.HasPrefix(s, "&") {
		if len(s) < 3 {
			return nil, ErrSyntax
		}
		switch s[1] {
		case 'H':
			base = 16
		case 'O':
			base = 8
		case 'B':
			base = 2
		default:
			return nil, ErrSyntax
		}
		s = s[2:]
	}
	body, suffix := splitSuffix(s, integerSuffixes)
	if body == "" || strings.ContainsAny(body, "+-_") {
		return nil, ErrSyntax
	}
	u, err := strconv.ParseUint(body, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, ErrOverflow
		}
		return nil, ErrSyntax
	}
	if suffix == "" {
		if base == 10 {
			switch {
			case u <= math.MaxInt32:
				return IntegerValue(u), nil
			case u <= math.MaxInt64:
				return LongValue(u), nil
			}
			return nil, ErrOverflow
		}
		if u <= math.MaxUint32 {
			return IntegerValue(int32(uint32(u))), nil
		}
		return LongValue(int64(u)), nil
	}
	k, _ := suffixKind(suffix)
	if base != 10 {
		return radixValue(u, k)
	}
	v, ok := Convert(ULongValue(u), k)
	if !ok {
		return nil, ErrOverflow
	}
	return v, nil
}

// radixValue 十六进制等字面量按目标位宽解释为补码位模式
func radixValue(u uint64, k Kind) (Value, error) {
	if k.Bits() < 64 && u > allOnes(k.Bits()) {
		return nil, ErrOverflow
	}
	switch k {
	case Short:
		return ShortValue(int16(uint16(u))), nil
	case UShort:
		return UShortValue(u), nil
	case Integer:
		return IntegerValue(int32(uint32(u))), nil
	case UInteger:
		return UIntegerValue(u), nil
	case Long:
		return LongValue(int64(u)), nil
	case ULong:
		return ULongValue(u), nil
	}
	return nil, ErrSyntax
}

// ParseRealLiteral 解析浮点或 Decimal 字面量，无后缀为 Double
func ParseRealLiteral(text string) (Value, error) {
	s := strings.ToUpper(text)
	body, suffix := splitSuffix(s, numberSuffixes)
	k := Double
	if suffix != "" {
		var ok bool
		if k, ok = suffixKind(suffix); !ok || k.IsIntegral() {
			return nil, ErrSyntax
		}
	}
	if !validReal(body) {
		return nil, ErrSyntax
	}
	switch k {
	case Single:
		f, err := strconv.ParseFloat(body, 32)
		if err != nil {
			return nil, ErrOverflow
		}
		return SingleValue(float32(f)), nil
	case Decimal:
		d, err := decimal.NewFromString(body)
		if err != nil {
			return nil, ErrSyntax
		}
		v, ok := NewDecimal(d)
		if !ok {
			return nil, ErrOverflow
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return nil, ErrOverflow
	}
	return DoubleValue(f), nil
}

// validReal digits [. digits] [E [+|-] digits]
func validReal(s string) bool {
	i, n := 0, len(s)
	digits := func() int {
		start := i
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return i - start
	}
	mant := digits()
	if i < n && s[i] == '.' {
		i++
		mant += digits()
	}
	if mant == 0 {
		return false
	}
	if i < n && s[i] == 'E' {
		i++
		if i < n && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if digits() == 0 {
			return false
		}
	}
	return i == n
}

var (
	dateLayouts = []string{
		"1/2/2006 3:04:05 PM",
		"1/2/2006 3:04 PM",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	timeLayouts = []string{
		"3:04:05 PM",
		"3:04 PM",
		"15:04:05",
		"15:04",
	}
)

// ParseDateLiteral 解析 # # 之间的日期文本
func ParseDateLiteral(body string) (DateValue, error) {
	s := strings.ToUpper(strings.Join(strings.Fields(body), " "))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), nil
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(time.Date(1, time.January, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)), nil
		}
	}
	return DateValue{}, ErrSyntax
}

// StringLiteral 解码引号之间的文本，"" 表示一个双引号
func StringLiteral(raw string) StringValue {
	return StringValue(strings.ReplaceAll(raw, `""`, `"`))
}

// CharLiteral 解码字符字面量 "x"c，必须恰好一个 UTF-16 码元
func CharLiteral(raw string) (CharValue, error) {
	units := utf16.Encode([]rune(string(StringLiteral(raw))))
	if len(units) != 1 {
		return 0, ErrSyntax
	}
	return CharValue(units[0]), nil
}
