package generic

import (
	"errors"
	"fmt"

	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/types"
)

var (
	// ErrConflict 同一类型参数推断出两个不同的类型
	ErrConflict = errors.New("conflicting inferences")
	// ErrUnresolved 类型参数没有出现在可推断的位置
	ErrUnresolved = errors.New("type parameter cannot be inferred")
	// ErrArity 实参个数与形参不匹配
	ErrArity = errors.New("argument count mismatch")
)

// InferenceError 推断失败的具体位置
type InferenceError struct {
	Param         *types.Param
	First, Second types.Type
	Err           error
}

func (e *InferenceError) Error() string {
	switch {
	case e.Param == nil:
		return e.Err.Error()
	case e.First != nil && e.Second != nil:
		return fmt.Sprintf("%s: %v: %s and %s", e.Param.Name, e.Err, e.First, e.Second)
	}
	return fmt.Sprintf("%s: %v", e.Param.Name, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// ReportInference 把推断错误转换为诊断
func ReportInference(sink diag.Sink, err error, method string, loc diag.Location) {
	var ie *InferenceError
	if !errors.As(err, &ie) || ie.Param == nil {
		diag.Errorf(sink, diag.ErrNoAccessibleMethod, loc, method)
		return
	}
	if errors.Is(err, ErrConflict) {
		diag.Errorf(sink, diag.ErrInferConflict, loc, ie.Param.Name, method, ie.First.String(), ie.Second.String())
		return
	}
	diag.Errorf(sink, diag.ErrCannotInfer, loc, ie.Param.Name, method)
}

type inference struct {
	m        *types.Manager
	params   map[*types.Param]int
	bindings []types.Type
}

// InferTypeArguments 按结构同时遍历形参类型和实参类型（数组元素、ByRef 元素、
// 泛型实例的实参），把每个开放的类型参数统一到具体类型。
// paramArray 为真时最后一个形参是 ParamArray：实参正好是同秩数组时按普通形式推断，
// 否则用其元素类型与剩余的每个实参统一。
func InferTypeArguments(m *types.Manager, typeParams []*types.Param, formals, actuals []types.Type, paramArray bool) ([]types.Type, error) {
	inf := &inference{
		m:        m,
		params:   make(map[*types.Param]int, len(typeParams)),
		bindings: make([]types.Type, len(typeParams)),
	}
	for i, p := range typeParams {
		inf.params[p] = i
	}

	if paramArray && len(formals) > 0 {
		if err := inf.paramArray(formals, actuals); err != nil {
			return nil, err
		}
	} else {
		if len(formals) != len(actuals) {
			return nil, &InferenceError{Err: ErrArity}
		}
		for i := range formals {
			if err := inf.unify(formals[i], actuals[i]); err != nil {
				return nil, err
			}
		}
	}

	for i, b := range inf.bindings {
		if b == nil {
			return nil, &InferenceError{Param: typeParams[i], Err: ErrUnresolved}
		}
	}
	return inf.bindings, nil
}

func (inf *inference) paramArray(formals, actuals []types.Type) error {
	fixed := len(formals) - 1
	if len(actuals) < fixed {
		return &InferenceError{Err: ErrArity}
	}
	for i := 0; i < fixed; i++ {
		if err := inf.unify(formals[i], actuals[i]); err != nil {
			return err
		}
	}
	tail, ok := formals[fixed].(*types.Array)
	if !ok {
		return &InferenceError{Err: ErrArity}
	}

	// 普通形式：直接传入数组
	if len(actuals) == len(formals) {
		if a, ok := actuals[fixed].(*types.Array); ok && a.Rank == tail.Rank {
			saved := append([]types.Type(nil), inf.bindings...)
			if err := inf.unify(tail, a); err == nil {
				return nil
			}
			inf.bindings = saved
		}
	}
	for _, a := range actuals[fixed:] {
		if err := inf.unify(tail.Elem, a); err != nil {
			return err
		}
	}
	return nil
}

func (inf *inference) unify(formal, actual types.Type) error {
	if actual == nil || types.IsNull(actual) {
		return nil
	}
	switch f := formal.(type) {
	case *types.Param:
		i, open := inf.params[f]
		if !open {
			return nil
		}
		if b := inf.bindings[i]; b != nil {
			if !types.Identical(b, actual) {
				return &InferenceError{Param: f, First: b, Second: actual, Err: ErrConflict}
			}
			return nil
		}
		inf.bindings[i] = actual
		return nil

	case *types.Array:
		if a, ok := actual.(*types.Array); ok && a.Rank == f.Rank {
			return inf.unify(f.Elem, a.Elem)
		}

	case *types.ByRef:
		if a, ok := actual.(*types.ByRef); ok {
			return inf.unify(f.Elem, a.Elem)
		}
		return inf.unify(f.Elem, actual)

	case *types.Nullable:
		if a, ok := actual.(*types.Nullable); ok {
			return inf.unify(f.Elem, a.Elem)
		}

	case *types.Pointer:
		if a, ok := actual.(*types.Pointer); ok {
			return inf.unify(f.Elem, a.Elem)
		}

	case *types.Instance:
		a := inf.matchInstance(f.Def, actual)
		if a == nil {
			return nil
		}
		for i := range f.Args {
			if i >= len(a.Args) {
				break
			}
			if err := inf.unify(f.Args[i], a.Args[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// matchInstance 在实参类型、其基类链和实现的接口中找同一泛型定义的唯一实例
func (inf *inference) matchInstance(def *types.Named, actual types.Type) *types.Instance {
	if a, ok := actual.(*types.Instance); ok && a.Def == def {
		return a
	}
	var found *types.Instance
	consider := func(t types.Type) bool {
		in, ok := t.(*types.Instance)
		if !ok || in.Def != def {
			return true
		}
		if found != nil && !types.Identical(found, in) {
			found = nil
			return false
		}
		found = in
		return true
	}
	if def.Kind == types.Interface {
		for _, it := range inf.m.Interfaces(actual) {
			if !consider(it) {
				return nil
			}
		}
		return found
	}
	t := inf.m.BaseType(actual)
	for i := 0; t != nil && i < 64; i++ {
		if in, ok := t.(*types.Instance); ok && in.Def == def {
			return in
		}
		t = inf.m.BaseType(t)
	}
	return nil
}
