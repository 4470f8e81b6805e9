package preproc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tangzhangming/vbc/internal/constant"
)

// ErrNotBoolean 条件不能转换为 Boolean
var ErrNotBoolean = errors.New("condition is not convertible to Boolean")

// Defines 条件编译常量，名称不区分大小写
type Defines map[string]constant.Value

// NewDefines 复制一组定义
func NewDefines(src map[string]constant.Value) Defines {
	d := make(Defines, len(src))
	for name, v := range src {
		d.Set(name, v)
	}
	return d
}

// Set 定义或覆盖常量（#Const）
func (d Defines) Set(name string, v constant.Value) {
	d[strings.ToLower(name)] = v
}

// Lookup 查找常量；未定义的名称为 Nothing
func (d Defines) Lookup(name string) (constant.Value, bool) {
	v, ok := d[strings.ToLower(name)]
	return v, ok
}

// Expr 条件编译表达式
type Expr interface {
	String() string
	exprNode()
}

// Lit 字面量
type Lit struct {
	Value constant.Value
}

// Nothing Nothing 字面量
type Nothing struct{}

// Name 条件编译常量引用
type Name struct {
	Name string
}

// UnaryOp 一元运算
type UnaryOp int

const (
	Neg UnaryOp = iota
	Plus
	Not
)

// Unary 一元表达式
type Unary struct {
	Op UnaryOp
	X  Expr
}

// Binary 二元表达式；ShortCircuit 表示 AndAlso/OrElse
type Binary struct {
	Op           constant.Op
	ShortCircuit bool
	X, Y         Expr
}

// Conv CBool(x)、CInt(x) 等内建转换
type Conv struct {
	Kind constant.Kind
	X    Expr
}

func (*Lit) exprNode()     {}
func (*Nothing) exprNode() {}
func (*Name) exprNode()    {}
func (*Unary) exprNode()   {}
func (*Binary) exprNode()  {}
func (*Conv) exprNode()    {}

func (e *Lit) String() string   { return fmt.Sprint(e.Value) }
func (*Nothing) String() string { return "Nothing" }
func (e *Name) String() string  { return e.Name }

func (e *Unary) String() string {
	switch e.Op {
	case Neg:
		return "-" + e.X.String()
	case Plus:
		return "+" + e.X.String()
	}
	return "Not " + e.X.String()
}

func (e *Binary) String() string {
	op := e.Op.String()
	if e.ShortCircuit {
		op += "Else"
		if e.Op == constant.OpAnd {
			op = "AndAlso"
		}
	}
	return "(" + e.X.String() + " " + op + " " + e.Y.String() + ")"
}

func (e *Conv) String() string { return "C" + e.Kind.String() + "(" + e.X.String() + ")" }

// Eval 在给定定义下求值；结果为 nil 表示 Nothing
func Eval(e Expr, defs Defines) (constant.Value, error) {
	switch x := e.(type) {
	case *Lit:
		return x.Value, nil
	case *Nothing:
		return nil, nil
	case *Name:
		v, _ := defs.Lookup(x.Name)
		return v, nil
	case *Unary:
		return evalUnary(x, defs)
	case *Binary:
		return evalBinary(x, defs)
	case *Conv:
		v, err := Eval(x.X, defs)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return zeroOf(x.Kind)
		}
		r, ok := constant.Convert(v, x.Kind)
		if !ok {
			return nil, fmt.Errorf("%s: %w", x, constant.ErrInvalidOperation)
		}
		return r, nil
	}
	return nil, fmt.Errorf("unexpected expression %T", e)
}

// Truth 条件的真值；Nothing 为 False
func Truth(v constant.Value) (bool, error) {
	if v == nil {
		return false, nil
	}
	b, ok := constant.ToBool(v)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotBoolean, v.Kind())
	}
	return bool(b), nil
}

// Condition 求值 #If/#ElseIf 的条件
func Condition(e Expr, defs Defines) (bool, error) {
	v, err := Eval(e, defs)
	if err != nil {
		return false, err
	}
	return Truth(v)
}

func evalUnary(u *Unary, defs Defines) (constant.Value, error) {
	v, err := Eval(u.X, defs)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = constant.IntegerValue(0)
	}
	switch u.Op {
	case Neg:
		v, err = constant.Negate(v)
	case Not:
		v, err = constant.Not(v)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u, err)
	}
	return v, nil
}

func evalBinary(b *Binary, defs Defines) (constant.Value, error) {
	if b.ShortCircuit {
		return evalShortCircuit(b, defs)
	}
	x, err := Eval(b.X, defs)
	if err != nil {
		return nil, err
	}
	y, err := Eval(b.Y, defs)
	if err != nil {
		return nil, err
	}
	if x, y, err = fillNothing(x, y); err != nil {
		return nil, err
	}

	fail := func(err error) (constant.Value, error) {
		return nil, fmt.Errorf("%s: %w", b, err)
	}
	switch b.Op {
	case constant.OpShl, constant.OpShr:
		r, err := constant.Fold(b.Op, x, y)
		if err != nil {
			return fail(err)
		}
		return r, nil
	case constant.OpConcat:
		x, _ = constant.Convert(x, constant.String)
		y, _ = constant.Convert(y, constant.String)
		if x == nil || y == nil {
			return fail(constant.ErrInvalidOperation)
		}
		return constant.Fold(b.Op, x, y)
	}

	px, py, ok := constant.Promote(x, y)
	if !ok {
		return fail(constant.ErrInvalidOperation)
	}
	// / 和 ^ 在整数上按 Double 计算
	if k := px.Kind(); (b.Op == constant.OpDiv || b.Op == constant.OpPow) && (k.IsIntegral() || k == constant.Bool) {
		px, _ = constant.Convert(px, constant.Double)
		py, _ = constant.Convert(py, constant.Double)
	}
	r, err := constant.Fold(b.Op, px, py)
	if err != nil {
		return fail(err)
	}
	return r, nil
}

func evalShortCircuit(b *Binary, defs Defines) (constant.Value, error) {
	x, err := Eval(b.X, defs)
	if err != nil {
		return nil, err
	}
	l, err := Truth(x)
	if err != nil {
		return nil, err
	}
	if b.Op == constant.OpAnd && !l || b.Op == constant.OpOr && l {
		return constant.BoolValue(l), nil
	}
	y, err := Eval(b.Y, defs)
	if err != nil {
		return nil, err
	}
	r, err := Truth(y)
	if err != nil {
		return nil, err
	}
	return constant.BoolValue(r), nil
}

// fillNothing Nothing 取另一操作数类型的默认值
func fillNothing(x, y constant.Value) (constant.Value, constant.Value, error) {
	var err error
	switch {
	case x == nil && y == nil:
		return constant.IntegerValue(0), constant.IntegerValue(0), nil
	case x == nil:
		x, err = zeroOf(y.Kind())
	case y == nil:
		y, err = zeroOf(x.Kind())
	}
	return x, y, err
}

func zeroOf(k constant.Kind) (constant.Value, error) {
	if k == constant.String {
		return constant.StringValue(""), nil
	}
	v, ok := constant.Convert(constant.IntegerValue(0), k)
	if !ok {
		return nil, fmt.Errorf("Nothing as %s: %w", k, constant.ErrInvalidOperation)
	}
	return v, nil
}
