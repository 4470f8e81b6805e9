// Package constant 实现编译期常量值模型。
//
// 常量是封闭的和类型：每个 Value 恰好是十五种具体类型之一，
// 值在创建后不可变，所有转换都返回新的常量或失败标记。
package constant

// Kind 常量的类型标记
type Kind int

const (
	Bool Kind = iota
	Byte
	SByte
	Short
	UShort
	Integer
	UInteger
	Long
	ULong
	Single
	Double
	Decimal
	Char
	String
	Date
)

var kindNames = [...]string{
	Bool:     "Boolean",
	Byte:     "Byte",
	SByte:    "SByte",
	Short:    "Short",
	UShort:   "UShort",
	Integer:  "Integer",
	UInteger: "UInteger",
	Long:     "Long",
	ULong:    "ULong",
	Single:   "Single",
	Double:   "Double",
	Decimal:  "Decimal",
	Char:     "Char",
	String:   "String",
	Date:     "Date",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Kinds 返回全部常量类型
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := Bool; k <= Date; k++ {
		out = append(out, k)
	}
	return out
}

// IsIntegral 是否整数类型
func (k Kind) IsIntegral() bool {
	return k >= Byte && k <= ULong
}

// IsUnsigned 是否无符号整数类型
func (k Kind) IsUnsigned() bool {
	switch k {
	case Byte, UShort, UInteger, ULong:
		return true
	}
	return false
}

// IsFloating 是否浮点类型
func (k Kind) IsFloating() bool {
	return k == Single || k == Double
}

// IsNumeric 是否数值类型（整数、浮点、Decimal）
func (k Kind) IsNumeric() bool {
	return k.IsIntegral() || k.IsFloating() || k == Decimal
}

// Bits 整数类型的位宽，非整数类型返回 0
func (k Kind) Bits() int {
	switch k {
	case Byte, SByte:
		return 8
	case Short, UShort:
		return 16
	case Integer, UInteger:
		return 32
	case Long, ULong:
		return 64
	}
	return 0
}
