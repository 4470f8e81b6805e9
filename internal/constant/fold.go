package constant

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Op 常量折叠支持的二元运算符
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv    // /
	OpIntDiv // \
	OpMod
	OpPow
	OpConcat
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var opNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpIntDiv: "\\", OpMod: "Mod",
	OpPow: "^", OpConcat: "&", OpAnd: "And", OpOr: "Or", OpXor: "Xor",
	OpShl: "<<", OpShr: ">>", OpEq: "=", OpNe: "<>", OpLt: "<", OpLe: "<=",
	OpGt: ">", OpGe: ">=",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "?"
	}
	return opNames[op]
}

// IsComparison 比较运算的结果总是 Boolean
func (op Op) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

// Negate 一元负号，溢出返回 ErrOverflow
func Negate(v Value) (Value, error) {
	switch x := v.(type) {
	case SingleValue:
		return -x, nil
	case DoubleValue:
		return -x, nil
	case DecimalValue:
		return DecimalValue{d: x.d.Neg()}, nil
	case BoolValue, CharValue, StringValue, DateValue:
		return nil, ErrInvalidOperation
	}
	n, ok := toInteger(v)
	if !ok {
		return nil, ErrInvalidOperation
	}
	if n.mag != 0 {
		n.neg = !n.neg
	}
	return fromBig(n.big(), v.Kind())
}

// Not Boolean 取反，整数按位取反
func Not(v Value) (Value, error) {
	switch x := v.(type) {
	case BoolValue:
		return !x, nil
	case ByteValue:
		return ^x, nil
	case SByteValue:
		return ^x, nil
	case ShortValue:
		return ^x, nil
	case UShortValue:
		return ^x, nil
	case IntegerValue:
		return ^x, nil
	case UIntegerValue:
		return ^x, nil
	case LongValue:
		return ^x, nil
	case ULongValue:
		return ^x, nil
	}
	return nil, ErrInvalidOperation
}

// Fold 折叠二元运算。除移位外两个操作数必须已转换为同一类型；
// 移位的右操作数是任意整数常量。
func Fold(op Op, a, b Value) (Value, error) {
	k := a.Kind()
	if op == OpShl || op == OpShr {
		if !k.IsIntegral() {
			return nil, ErrInvalidOperation
		}
		return foldShift(op, a, b)
	}
	if b.Kind() != k {
		return nil, ErrInvalidOperation
	}
	if op.IsComparison() {
		c, ok := compare(a, b)
		if !ok {
			return nil, ErrInvalidOperation
		}
		return BoolValue(compareResult(op, c)), nil
	}
	switch {
	case k.IsIntegral():
		return foldIntegral(op, a, b)
	case k.IsFloating():
		return foldFloat(op, a, b)
	case k == Decimal:
		return foldDecimal(op, a.(DecimalValue).d, b.(DecimalValue).d)
	case k == Bool:
		x, y := a.(BoolValue), b.(BoolValue)
		switch op {
		case OpAnd:
			return x && y, nil
		case OpOr:
			return x || y, nil
		case OpXor:
			return BoolValue(x != y), nil
		}
	case k == String:
		if op == OpConcat {
			return a.(StringValue) + b.(StringValue), nil
		}
	}
	return nil, ErrInvalidOperation
}

// fromBig 把任意精度结果放回整数类型，超出范围为溢出
func fromBig(b *big.Int, k Kind) (Value, error) {
	n, ok := bigToInteger(b)
	if !ok {
		return nil, ErrOverflow
	}
	v, ok := Convert(integerValue(n), k)
	if !ok {
		return nil, ErrOverflow
	}
	return v, nil
}

// integerValue 选一个能容纳 n 的 64 位常量作为转换源
func integerValue(n integer) Value {
	if !n.neg {
		return ULongValue(n.mag)
	}
	if i, ok := n.signed(64); ok {
		return LongValue(i)
	}
	return DecimalValue{d: n.decimal()}
}

func foldIntegral(op Op, a, b Value) (Value, error) {
	x, _ := toInteger(a)
	y, _ := toInteger(b)
	bx, by := x.big(), y.big()
	r := new(big.Int)
	switch op {
	case OpAdd:
		r.Add(bx, by)
	case OpSub:
		r.Sub(bx, by)
	case OpMul:
		r.Mul(bx, by)
	case OpIntDiv, OpMod:
		if by.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		if op == OpIntDiv {
			r.Quo(bx, by)
		} else {
			r.Rem(bx, by)
		}
	case OpAnd:
		r.And(bx, by)
	case OpOr:
		r.Or(bx, by)
	case OpXor:
		r.Xor(bx, by)
	default:
		return nil, ErrInvalidOperation
	}
	return fromBig(r, a.Kind())
}

// foldShift 移位量按位宽取模，结果截断到操作数位宽
func foldShift(op Op, a, b Value) (Value, error) {
	k := a.Kind()
	count, ok := toInteger(b)
	if !ok || !b.Kind().IsIntegral() {
		return nil, ErrInvalidOperation
	}
	bits := k.Bits()
	shift := uint(count.mag) & uint(bits-1)
	if count.neg {
		shift = uint(-int64(count.mag)) & uint(bits-1)
	}
	x, _ := toInteger(a)
	if k.IsUnsigned() {
		u := x.mag
		if op == OpShl {
			u = (u << shift) & allOnes(bits)
		} else {
			u >>= shift
		}
		v, _ := Convert(ULongValue(u), k)
		return v, nil
	}
	i, _ := x.signed(bits)
	if op == OpShl {
		i <<= shift
		i = i << (64 - bits) >> (64 - bits)
	} else {
		i >>= shift
	}
	v, _ := Convert(LongValue(i), k)
	return v, nil
}

func foldFloat(op Op, a, b Value) (Value, error) {
	x, _ := ToDouble(a)
	y, _ := ToDouble(b)
	fx, fy := float64(x), float64(y)
	var r float64
	switch op {
	case OpAdd:
		r = fx + fy
	case OpSub:
		r = fx - fy
	case OpMul:
		r = fx * fy
	case OpDiv:
		r = fx / fy
	case OpMod:
		r = math.Mod(fx, fy)
	case OpPow:
		r = math.Pow(fx, fy)
	default:
		return nil, ErrInvalidOperation
	}
	if a.Kind() == Single {
		return SingleValue(float32(r)), nil
	}
	return DoubleValue(r), nil
}

func foldDecimal(op Op, x, y decimal.Decimal) (Value, error) {
	var r decimal.Decimal
	switch op {
	case OpAdd:
		r = x.Add(y)
	case OpSub:
		r = x.Sub(y)
	case OpMul:
		r = x.Mul(y)
	case OpDiv, OpMod:
		if y.IsZero() {
			return nil, ErrDivisionByZero
		}
		if op == OpDiv {
			r = x.Div(y)
		} else {
			r = x.Mod(y)
		}
	default:
		return nil, ErrInvalidOperation
	}
	v, ok := NewDecimal(r)
	if !ok {
		return nil, ErrOverflow
	}
	return v, nil
}

// compare 同类型常量的三路比较
func compare(a, b Value) (int, bool) {
	switch x := a.(type) {
	case BoolValue:
		// True 按 -1 参与比较
		y := b.(BoolValue)
		switch {
		case x == y:
			return 0, true
		case bool(x):
			return -1, true
		}
		return 1, true
	case SingleValue, DoubleValue:
		fx, _ := ToDouble(a)
		fy, _ := ToDouble(b)
		switch {
		case fx < fy:
			return -1, true
		case fx > fy:
			return 1, true
		case fx == fy:
			return 0, true
		}
		// NaN 不可比较
		return 2, true
	case DecimalValue:
		return x.d.Cmp(b.(DecimalValue).d), true
	case StringValue:
		return strings.Compare(string(x), string(b.(StringValue))), true
	case DateValue:
		return x.t.Compare(b.(DateValue).t), true
	}
	x, ok := toInteger(a)
	if !ok {
		return 0, false
	}
	y, _ := toInteger(b)
	return x.big().Cmp(y.big()), true
}

func compareResult(op Op, c int) bool {
	if c == 2 {
		return op == OpNe
	}
	switch op {
	case OpEq:
		return c == 0
	case OpNe:
		return c != 0
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	}
	return false
}

// Promote 把二元运算的两个操作数转换为公共类型：相同类型不变；
// 一方可以拓宽到另一方时取较宽者；Boolean 与数值运算时转为数值类型；
// 其余整数组合取 Long（含 ULong 时取 Decimal），其余数值组合取 Double；
// 任一方为 String 时两边都转为 String
func Promote(a, b Value) (Value, Value, bool) {
	ka, kb := a.Kind(), b.Kind()
	if ka == kb {
		return a, b, true
	}
	var k Kind
	switch {
	case ka == String || kb == String:
		k = String
	case IsWidening(ka, kb):
		k = kb
	case IsWidening(kb, ka):
		k = ka
	case ka == Bool && kb.IsNumeric():
		k = kb
	case kb == Bool && ka.IsNumeric():
		k = ka
	case ka.IsIntegral() && kb.IsIntegral():
		k = Long
		if ka == ULong || kb == ULong {
			k = Decimal
		}
	case ka.IsNumeric() && kb.IsNumeric():
		k = Double
	default:
		return nil, nil, false
	}
	x, ok := Convert(a, k)
	if !ok {
		return nil, nil, false
	}
	y, ok := Convert(b, k)
	if !ok {
		return nil, nil, false
	}
	return x, y, true
}
