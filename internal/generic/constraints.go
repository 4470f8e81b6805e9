// Package generic 管理泛型类型参数的声明期生命周期（约束解析、依赖检查、绑定），
// 检查类型实参是否满足约束，并为泛型方法调用推断类型实参。
package generic

import (
	"strings"

	"github.com/tangzhangming/vbc/internal/types"
)

// Constraints 类型参数解析后的约束
type Constraints struct {
	ReferenceType bool
	ValueType     bool
	Constructor   bool
	Class         types.Type
	Interfaces    []types.Type
	TypeParams    []*types.Param
}

var _ types.ParamConstraints = (*Constraints)(nil)

func (c *Constraints) HasReferenceTypeConstraint() bool         { return c.ReferenceType }
func (c *Constraints) HasValueTypeConstraint() bool             { return c.ValueType }
func (c *Constraints) HasConstructorConstraint() bool           { return c.Constructor }
func (c *Constraints) ClassConstraint() types.Type              { return c.Class }
func (c *Constraints) InterfaceConstraints() []types.Type       { return c.Interfaces }
func (c *Constraints) TypeParameterConstraints() []*types.Param { return c.TypeParams }

// IsEmpty 没有任何约束
func (c *Constraints) IsEmpty() bool {
	return !c.ReferenceType && !c.ValueType && !c.Constructor &&
		c.Class == nil && len(c.Interfaces) == 0 && len(c.TypeParams) == 0
}

func (c *Constraints) String() string {
	var parts []string
	if c.ReferenceType {
		parts = append(parts, "Class")
	}
	if c.ValueType {
		parts = append(parts, "Structure")
	}
	if c.Constructor {
		parts = append(parts, "New")
	}
	if c.Class != nil {
		parts = append(parts, c.Class.String())
	}
	for _, t := range c.Interfaces {
		parts = append(parts, t.String())
	}
	for _, p := range c.TypeParams {
		parts = append(parts, p.Name)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (c *Constraints) hasInterface(t types.Type) bool {
	for _, x := range c.Interfaces {
		if types.Identical(x, t) {
			return true
		}
	}
	return false
}

func (c *Constraints) hasTypeParam(p *types.Param) bool {
	for _, x := range c.TypeParams {
		if x == p {
			return true
		}
	}
	return false
}
