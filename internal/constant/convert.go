package constant

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/shopspring/decimal"
)

// integer 整数的符号-绝对值表示，跨位宽做精确的范围检查
type integer struct {
	neg bool
	mag uint64
}

func fromInt64(x int64) integer {
	if x < 0 {
		return integer{neg: true, mag: uint64(-(x + 1)) + 1}
	}
	return integer{mag: uint64(x)}
}

func fromUint64(x uint64) integer { return integer{mag: x} }

func (n integer) signed(bits int) (int64, bool) {
	limit := uint64(1) << (bits - 1)
	if n.neg {
		if n.mag > limit {
			return 0, false
		}
		return -int64(n.mag-1) - 1, true
	}
	if n.mag >= limit {
		return 0, false
	}
	return int64(n.mag), true
}

func (n integer) unsigned(bits int) (uint64, bool) {
	if n.neg {
		return 0, false
	}
	if bits < 64 && n.mag >= uint64(1)<<bits {
		return 0, false
	}
	return n.mag, true
}

func (n integer) float() float64 {
	if n.neg {
		return -float64(n.mag)
	}
	return float64(n.mag)
}

func (n integer) decimal() decimal.Decimal {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(n.mag), 0)
	if n.neg {
		return d.Neg()
	}
	return d
}

func (n integer) big() *big.Int {
	b := new(big.Int).SetUint64(n.mag)
	if n.neg {
		b.Neg(b)
	}
	return b
}

func (n integer) String() string {
	s := strconv.FormatUint(n.mag, 10)
	if n.neg {
		return "-" + s
	}
	return s
}

func bigToInteger(b *big.Int) (integer, bool) {
	neg := b.Sign() < 0
	abs := new(big.Int).Abs(b)
	if !abs.IsUint64() {
		return integer{}, false
	}
	return integer{neg: neg, mag: abs.Uint64()}, true
}

// floatToInteger 向零截断，NaN、无穷和超出 64 位范围的值失败
func floatToInteger(f float64) (integer, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return integer{}, false
	}
	t := math.Trunc(f)
	if t >= 0x1p64 || t <= -0x1p64 {
		return integer{}, false
	}
	if t < 0 {
		return integer{neg: true, mag: uint64(-t)}, true
	}
	return integer{mag: uint64(t)}, true
}

func decimalToInteger(d decimal.Decimal) (integer, bool) {
	return bigToInteger(d.Truncate(0).BigInt())
}

// radixPrefixed 字符串是否以 &H、&O 或 &B 开头，这类字符串按整数字面量解析
func radixPrefixed(s string) bool {
	if len(s) < 2 || s[0] != '&' {
		return false
	}
	switch s[1] {
	case 'H', 'h', 'O', 'o', 'B', 'b':
		return true
	}
	return false
}

// radixString 按整数字面量解析带基数前缀的字符串
func radixString(s string) (Value, bool) {
	v, err := ParseIntegerLiteral(s)
	if err != nil {
		return nil, false
	}
	return v, true
}

func stringToInteger(s string) (integer, bool) {
	s = strings.TrimSpace(s)
	if radixPrefixed(s) {
		v, ok := radixString(s)
		if !ok {
			return integer{}, false
		}
		return toInteger(v)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return integer{}, false
	}
	return decimalToInteger(d)
}

// toInteger 把非布尔常量转换为整数表示
func toInteger(v Value) (integer, bool) {
	switch x := v.(type) {
	case ByteValue:
		return fromUint64(uint64(x)), true
	case SByteValue:
		return fromInt64(int64(x)), true
	case ShortValue:
		return fromInt64(int64(x)), true
	case UShortValue:
		return fromUint64(uint64(x)), true
	case IntegerValue:
		return fromInt64(int64(x)), true
	case UIntegerValue:
		return fromUint64(uint64(x)), true
	case LongValue:
		return fromInt64(int64(x)), true
	case ULongValue:
		return fromUint64(uint64(x)), true
	case CharValue:
		return fromUint64(uint64(x)), true
	case SingleValue:
		return floatToInteger(float64(x))
	case DoubleValue:
		return floatToInteger(float64(x))
	case DecimalValue:
		return decimalToInteger(x.d)
	case StringValue:
		return stringToInteger(string(x))
	case BoolValue, DateValue:
		return integer{}, false
	}
	return integer{}, false
}

func toSigned(v Value, bits int) (int64, bool) {
	if b, ok := v.(BoolValue); ok {
		if b {
			return -1, true
		}
		return 0, true
	}
	n, ok := toInteger(v)
	if !ok {
		return 0, false
	}
	return n.signed(bits)
}

func toUnsigned(v Value, bits int) (uint64, bool) {
	if b, ok := v.(BoolValue); ok {
		if b {
			return allOnes(bits), true
		}
		return 0, true
	}
	n, ok := toInteger(v)
	if !ok {
		return 0, false
	}
	return n.unsigned(bits)
}

func allOnes(bits int) uint64 {
	if bits >= 64 {
		return math.MaxUint64
	}
	return uint64(1)<<bits - 1
}

// ToBool 数值非零即为 True
func ToBool(v Value) (BoolValue, bool) {
	switch x := v.(type) {
	case BoolValue:
		return x, true
	case SingleValue:
		return x != 0, true
	case DoubleValue:
		return x != 0, true
	case DecimalValue:
		return BoolValue(!x.d.IsZero()), true
	case StringValue:
		s := strings.TrimSpace(string(x))
		switch {
		case strings.EqualFold(s, "True"):
			return true, true
		case strings.EqualFold(s, "False"):
			return false, true
		case radixPrefixed(s):
			n, ok := stringToInteger(s)
			return BoolValue(n.mag != 0), ok
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false, false
		}
		return f != 0, true
	case CharValue, DateValue:
		return false, false
	}
	n, ok := toInteger(v)
	if !ok {
		return false, false
	}
	return n.mag != 0, true
}

func ToByte(v Value) (ByteValue, bool) {
	u, ok := toUnsigned(v, 8)
	return ByteValue(u), ok
}

func ToSByte(v Value) (SByteValue, bool) {
	i, ok := toSigned(v, 8)
	return SByteValue(i), ok
}

func ToShort(v Value) (ShortValue, bool) {
	i, ok := toSigned(v, 16)
	return ShortValue(i), ok
}

func ToUShort(v Value) (UShortValue, bool) {
	u, ok := toUnsigned(v, 16)
	return UShortValue(u), ok
}

func ToInteger(v Value) (IntegerValue, bool) {
	i, ok := toSigned(v, 32)
	return IntegerValue(i), ok
}

func ToUInteger(v Value) (UIntegerValue, bool) {
	u, ok := toUnsigned(v, 32)
	return UIntegerValue(u), ok
}

func ToLong(v Value) (LongValue, bool) {
	i, ok := toSigned(v, 64)
	return LongValue(i), ok
}

func ToULong(v Value) (ULongValue, bool) {
	u, ok := toUnsigned(v, 64)
	return ULongValue(u), ok
}

// ToSingle Double 到 Single 允许丢失精度，但有限值溢出为无穷时失败
func ToSingle(v Value) (SingleValue, bool) {
	switch x := v.(type) {
	case BoolValue:
		if x {
			return -1, true
		}
		return 0, true
	case SingleValue:
		return x, true
	case DoubleValue:
		f := float32(x)
		if math.IsInf(float64(f), 0) && !math.IsInf(float64(x), 0) {
			return 0, false
		}
		return SingleValue(f), true
	case DecimalValue:
		f, _ := x.d.Float64()
		return SingleValue(float32(f)), true
	case StringValue:
		if s := strings.TrimSpace(string(x)); radixPrefixed(s) {
			n, ok := stringToInteger(s)
			return SingleValue(float32(n.float())), ok
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 32)
		if err != nil {
			return 0, false
		}
		return SingleValue(float32(f)), true
	case DateValue:
		return 0, false
	}
	n, ok := toInteger(v)
	if !ok {
		return 0, false
	}
	return SingleValue(float32(n.float())), true
}

func ToDouble(v Value) (DoubleValue, bool) {
	switch x := v.(type) {
	case BoolValue:
		if x {
			return -1, true
		}
		return 0, true
	case SingleValue:
		return DoubleValue(float64(x)), true
	case DoubleValue:
		return x, true
	case DecimalValue:
		f, _ := x.d.Float64()
		return DoubleValue(f), true
	case StringValue:
		if s := strings.TrimSpace(string(x)); radixPrefixed(s) {
			n, ok := stringToInteger(s)
			return DoubleValue(n.float()), ok
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		if err != nil {
			return 0, false
		}
		return DoubleValue(f), true
	case DateValue:
		return 0, false
	}
	n, ok := toInteger(v)
	if !ok {
		return 0, false
	}
	return DoubleValue(n.float()), true
}

func ToDecimal(v Value) (DecimalValue, bool) {
	switch x := v.(type) {
	case BoolValue:
		if x {
			return DecimalValue{d: decimal.NewFromInt(-1)}, true
		}
		return DecimalValue{d: decimal.Zero}, true
	case DecimalValue:
		return x, true
	case SingleValue:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return DecimalValue{}, false
		}
		return NewDecimal(decimal.NewFromFloat32(float32(x)))
	case DoubleValue:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return DecimalValue{}, false
		}
		return NewDecimal(decimal.NewFromFloat(float64(x)))
	case StringValue:
		if s := strings.TrimSpace(string(x)); radixPrefixed(s) {
			n, ok := stringToInteger(s)
			return DecimalValue{d: n.decimal()}, ok
		}
		d, err := decimal.NewFromString(strings.TrimSpace(string(x)))
		if err != nil {
			return DecimalValue{}, false
		}
		return NewDecimal(d)
	case DateValue:
		return DecimalValue{}, false
	}
	n, ok := toInteger(v)
	if !ok {
		return DecimalValue{}, false
	}
	return DecimalValue{d: n.decimal()}, true
}

// ToChar 字符串取第一个 UTF-16 码元
func ToChar(v Value) (CharValue, bool) {
	switch x := v.(type) {
	case CharValue:
		return x, true
	case StringValue:
		units := utf16.Encode([]rune(string(x)))
		if len(units) == 0 {
			return 0, false
		}
		return CharValue(units[0]), true
	case BoolValue, DateValue:
		return 0, false
	}
	n, ok := toInteger(v)
	if !ok {
		return 0, false
	}
	u, ok := n.unsigned(16)
	return CharValue(u), ok
}

func ToString(v Value) (StringValue, bool) {
	switch x := v.(type) {
	case BoolValue:
		return StringValue(x.String()), true
	case CharValue:
		return StringValue(string(utf16.Decode([]uint16{uint16(x)}))), true
	case StringValue:
		return x, true
	case DateValue:
		return StringValue(x.text()), true
	case SingleValue:
		return StringValue(formatFloat(float64(x), 32)), true
	case DoubleValue:
		return StringValue(formatFloat(float64(x), 64)), true
	case DecimalValue:
		return StringValue(x.d.String()), true
	}
	n, ok := toInteger(v)
	if !ok {
		return "", false
	}
	return StringValue(n.String()), true
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return floatLiteral(strconv.FormatFloat(f, 'G', -1, bits))
}

func ToDate(v Value) (DateValue, bool) {
	switch x := v.(type) {
	case DateValue:
		return x, true
	case StringValue:
		d, err := ParseDateLiteral(string(x))
		if err != nil {
			return DateValue{}, false
		}
		return d, true
	}
	return DateValue{}, false
}

func result[T Value](r T, ok bool) (Value, bool) {
	if !ok {
		return nil, false
	}
	return r, true
}

// Convert 显式转换到目标类型，不存在转换或溢出时返回 false
func Convert(v Value, k Kind) (Value, bool) {
	switch k {
	case Bool:
		return result(ToBool(v))
	case Byte:
		return result(ToByte(v))
	case SByte:
		return result(ToSByte(v))
	case Short:
		return result(ToShort(v))
	case UShort:
		return result(ToUShort(v))
	case Integer:
		return result(ToInteger(v))
	case UInteger:
		return result(ToUInteger(v))
	case Long:
		return result(ToLong(v))
	case ULong:
		return result(ToULong(v))
	case Single:
		return result(ToSingle(v))
	case Double:
		return result(ToDouble(v))
	case Decimal:
		return result(ToDecimal(v))
	case Char:
		return result(ToChar(v))
	case String:
		return result(ToString(v))
	case Date:
		return result(ToDate(v))
	}
	return nil, false
}

// implicitNumeric 隐式数值转换表，逐对列出，不按位宽推导
var implicitNumeric = map[Kind][]Kind{
	SByte:    {Short, Integer, Long, Single, Double, Decimal},
	Byte:     {Short, UShort, Integer, UInteger, Long, ULong, Single, Double, Decimal},
	Short:    {Integer, Long, Single, Double, Decimal},
	UShort:   {Integer, UInteger, Long, ULong, Single, Double, Decimal},
	Integer:  {Long, Single, Double, Decimal},
	UInteger: {Long, ULong, Single, Double, Decimal},
	Long:     {Single, Double, Decimal},
	ULong:    {Single, Double, Decimal},
	Char:     {UShort, Integer, UInteger, Long, ULong, Single, Double, Decimal},
	Single:   {Double},
}

// IsWidening 是否存在从 from 到 to 的隐式数值转换
func IsWidening(from, to Kind) bool {
	for _, k := range implicitNumeric[from] {
		if k == to {
			return true
		}
	}
	return false
}

// WideningTargets 返回 from 的所有隐式数值转换目标
func WideningTargets(from Kind) []Kind {
	return append([]Kind(nil), implicitNumeric[from]...)
}

// ImplicitConvert 常量表达式的隐式转换：
// 数值拓宽总是允许；Integer 常量在值域内可以收窄到
// SByte、Byte、Short、UShort、UInteger、ULong；Long 常量非负时可以转换为 ULong。
func ImplicitConvert(v Value, k Kind) (Value, bool) {
	if v.Kind() == k {
		return v, true
	}
	switch v.(type) {
	case IntegerValue:
		switch k {
		case SByte, Byte, Short, UShort, UInteger, ULong:
			return Convert(v, k)
		}
	case LongValue:
		if k == ULong {
			return Convert(v, k)
		}
	}
	if IsWidening(v.Kind(), k) {
		return Convert(v, k)
	}
	return nil, false
}
