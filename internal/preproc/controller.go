package preproc

import "github.com/tangzhangming/vbc/internal/diag"

// frame 一层 #If 的分支状态
type frame struct {
	// parentActive 外层分支是否可见
	parentActive bool
	// taken 本层是否已有分支被选中
	taken bool
	// active 当前分支是否可见
	active bool
}

// Controller 决定记号是否可见：每层 #If 至多选中一个分支，
// 外层被拒绝的分支里的嵌套指令永远不会激活。
type Controller struct {
	auto   Automaton
	frames []frame
}

// Active 当前位置的记号是否可见
func (c *Controller) Active() bool {
	if len(c.frames) == 0 {
		return true
	}
	return c.frames[len(c.frames)-1].active
}

// Depth 未闭合的 #If 层数
func (c *Controller) Depth() int { return len(c.frames) }

// NeedsCondition 指令 d 的条件是否会影响结果。
// 外层不可见或本层已有分支选中时条件不必求值。
func (c *Controller) NeedsCondition(d Directive) bool {
	switch d {
	case If:
		return c.Active()
	case ElseIf:
		if len(c.frames) == 0 {
			return false
		}
		top := c.frames[len(c.frames)-1]
		return top.parentActive && !top.taken
	}
	return false
}

// If 进入 #If cond
func (c *Controller) If(cond bool, loc diag.Location) error {
	if err := c.auto.Step(If, loc); err != nil {
		return err
	}
	parent := c.Active()
	active := parent && cond
	c.frames = append(c.frames, frame{parentActive: parent, taken: active, active: active})
	return nil
}

// ElseIf 进入 #ElseIf cond
func (c *Controller) ElseIf(cond bool, loc diag.Location) error {
	if err := c.auto.Step(ElseIf, loc); err != nil {
		return err
	}
	top := &c.frames[len(c.frames)-1]
	top.active = top.parentActive && !top.taken && cond
	top.taken = top.taken || top.active
	return nil
}

// Else 进入 #Else
func (c *Controller) Else(loc diag.Location) error {
	if err := c.auto.Step(Else, loc); err != nil {
		return err
	}
	top := &c.frames[len(c.frames)-1]
	top.active = top.parentActive && !top.taken
	top.taken = true
	return nil
}

// EndIf 结束最内层 #If
func (c *Controller) EndIf(loc diag.Location) error {
	if err := c.auto.Step(EndIf, loc); err != nil {
		return err
	}
	c.frames = c.frames[:len(c.frames)-1]
	return nil
}

// Finish 输入结束
func (c *Controller) Finish(loc diag.Location) error {
	return c.auto.Finish(loc)
}

// State 自动机当前状态
func (c *Controller) State() State { return c.auto.State() }
