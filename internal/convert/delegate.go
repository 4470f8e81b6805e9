package convert

import (
	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/types"
)

// methodGroupToDelegate 方法组（AddressOf）到委托：选第一个签名兼容的方法
func (e *Engine) methodGroupToDelegate(expr ast.Expr, target types.Type) ast.Expr {
	mg, ok := expr.(*ast.MethodGroup)
	if !ok {
		return nil
	}
	sig := e.types.DelegateSignature(target)
	if sig == nil {
		return nil
	}
	for _, m := range mg.Methods {
		msig := m.Signature()
		if len(m.TypeParams) > 0 {
			if len(mg.TypeArgs) != len(m.TypeParams) {
				continue
			}
			msig = e.types.SubstituteSignature(msig, types.SubstitutionFor(m.TypeParams, mg.TypeArgs))
		}
		if e.DelegateCompatible(msig, sig) {
			d := &ast.DelegateCreation{ExprBase: ast.At(expr.Pos()), Receiver: mg.Receiver, Method: m}
			d.Bind(target, ast.ClassValue)
			return d
		}
	}
	return nil
}

// DelegateCompatible 方法签名是否与委托签名兼容：参数个数相同，
// 参数按引用传递方式一致且委托参数可引用转换为方法参数，返回类型协变。
func (e *Engine) DelegateCompatible(method, delegate *types.Signature) bool {
	if len(method.Params) != len(delegate.Params) {
		return false
	}
	for i, dp := range delegate.Params {
		mp := method.Params[i]
		if dp.ByRef != mp.ByRef {
			return false
		}
		if dp.ByRef {
			if !types.Identical(dp.Type, mp.Type) {
				return false
			}
			continue
		}
		if !e.implicitReference(dp.Type, mp.Type) {
			return false
		}
	}
	switch {
	case method.Result == nil && delegate.Result == nil:
		return true
	case method.Result == nil || delegate.Result == nil:
		return false
	}
	return e.implicitReference(method.Result, delegate.Result)
}

// lambdaToDelegate 匿名方法到委托：参数个数一致，声明了类型的参数必须相同，
// 已绑定的主体必须能隐式转换到委托返回类型
func (e *Engine) lambdaToDelegate(lam *ast.Lambda, target types.Type) ast.Expr {
	sig := e.types.DelegateSignature(target)
	if sig == nil || len(sig.Params) != len(lam.Params) {
		return nil
	}
	for i, p := range lam.Params {
		if p.Type != nil && !types.Identical(p.Type, sig.Params[i].Type) {
			return nil
		}
	}
	if sig.Result != nil && lam.Body != nil && lam.Body.Type() != nil {
		if e.implicit(lam.Body, sig.Result, true) == nil {
			return nil
		}
	}
	d := &ast.DelegateCreation{ExprBase: ast.At(lam.Pos()), Lambda: lam}
	d.Bind(target, ast.ClassValue)
	return d
}
