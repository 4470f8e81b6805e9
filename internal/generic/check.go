package generic

import (
	"github.com/tangzhangming/vbc/internal/convert"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/types"
)

// Checker 在应用类型实参时检查约束
type Checker struct {
	engine *convert.Engine
	types  *types.Manager
	sink   diag.Sink
}

// NewChecker 创建约束检查器
func NewChecker(e *convert.Engine, sink diag.Sink) *Checker {
	return &Checker{engine: e, types: e.Types(), sink: sink}
}

// CheckArguments 检查一组类型实参；实参个数由调用方保证
func (c *Checker) CheckArguments(params []*types.Param, args []types.Type, loc diag.Location) bool {
	s := types.SubstitutionFor(params, args)
	ok := true
	for i, p := range params {
		if i >= len(args) {
			break
		}
		if !c.CheckArgument(p, args[i], s, loc) {
			ok = false
		}
	}
	return ok
}

// CheckArgument 检查类型实参 arg 是否满足 param 的约束，依次为：
// 引用类型、值类型、类约束、接口约束、构造函数约束。
// 约束中出现的类型参数先用 s 替换。每一项失败报告各自的错误码。
func (c *Checker) CheckArgument(param *types.Param, arg types.Type, s types.Substitution, loc diag.Location) bool {
	gc := c.types.ConstraintsOf(param)
	if gc == nil {
		return true
	}
	m := c.types
	ok := true

	if gc.HasReferenceTypeConstraint() && !m.IsReferenceType(arg) {
		diag.Errorf(c.sink, diag.ErrRefConstraint, loc, arg.String(), param.Name)
		ok = false
	}
	if gc.HasValueTypeConstraint() {
		_, nullable := arg.(*types.Nullable)
		if nullable || !m.IsValueType(arg) {
			diag.Errorf(c.sink, diag.ErrValueConstraint, loc, arg.String(), param.Name)
			ok = false
		}
	}
	if cc := gc.ClassConstraint(); cc != nil {
		target := m.Substitute(cc, s)
		if !c.engine.ConstraintConversionExists(arg, target) {
			diag.Errorf(c.sink, diag.ErrClassConstraint, loc, arg.String(), target.String(), param.Name)
			ok = false
		}
	}
	for _, p := range gc.TypeParameterConstraints() {
		target := m.Substitute(p, s)
		if !c.engine.ConstraintConversionExists(arg, target) {
			diag.Errorf(c.sink, diag.ErrClassConstraint, loc, arg.String(), target.String(), param.Name)
			ok = false
		}
	}
	for _, it := range gc.InterfaceConstraints() {
		target := m.Substitute(it, s)
		if !c.engine.ConstraintConversionExists(arg, target) {
			diag.Errorf(c.sink, diag.ErrInterfaceConstraint, loc, arg.String(), target.String(), param.Name)
			ok = false
		}
	}
	if gc.HasConstructorConstraint() && !c.hasConstructor(arg) {
		code := diag.ErrNewConstraint
		if m.IsAbstract(arg) {
			code = diag.ErrNewAbstract
		}
		diag.Errorf(c.sink, code, loc, arg.String(), param.Name)
		ok = false
	}
	return ok
}

// hasConstructor 基元和值类型总是满足 New 约束
func (c *Checker) hasConstructor(t types.Type) bool {
	m := c.types
	switch t.(type) {
	case *types.Basic, *types.Nullable:
		return true
	case *types.Param:
		return m.HasDefaultConstructor(t)
	}
	if m.IsValueType(t) {
		return true
	}
	if m.IsAbstract(t) {
		return false
	}
	return m.HasDefaultConstructor(t)
}

// InferAndCheck 为泛型方法调用推断类型实参并检查约束，失败时报告诊断
func (c *Checker) InferAndCheck(method *types.Method, actuals []types.Type, loc diag.Location) ([]types.Type, bool) {
	formals := make([]types.Type, len(method.Params))
	paramArray := false
	for i, p := range method.Params {
		formals[i] = p.Type
		if p.ByRef {
			formals[i] = c.types.ByRefOf(p.Type)
		}
		if i == len(method.Params)-1 && p.ParamArray {
			paramArray = true
		}
	}
	args, err := InferTypeArguments(c.types, method.TypeParams, formals, actuals, paramArray)
	if err != nil {
		ReportInference(c.sink, err, method.String(), loc)
		return nil, false
	}
	return args, c.CheckArguments(method.TypeParams, args, loc)
}
