// Package preproc 实现条件编译：#If/#ElseIf/#Else/#End If 指令的
// 下推自动机、决定哪些分支的记号可见的控制器，以及 #If 条件的常量求值。
//
// 指令嵌套错误以 *Error 值返回，由词法分析器结束记号流，
// 再由编译器转换为诊断。
package preproc

import (
	"fmt"

	"github.com/tangzhangming/vbc/internal/diag"
)

// State 自动机状态
type State int

const (
	Start State = iota
	IfSeen
	ElseIfSeen
	ElseSeen
	EndIfSeen
)

var stateNames = [...]string{
	Start:      "Start",
	IfSeen:     "IfSeen",
	ElseIfSeen: "ElseIfSeen",
	ElseSeen:   "ElseSeen",
	EndIfSeen:  "EndIfSeen",
}

func (s State) String() string { return stateNames[s] }

// Directive 条件编译指令
type Directive int

const (
	If Directive = iota
	ElseIf
	Else
	EndIf
)

var directiveNames = [...]string{If: "#If", ElseIf: "#ElseIf", Else: "#Else", EndIf: "#End If"}

func (d Directive) String() string { return directiveNames[d] }

// transitionErrors (当前状态, 指令) 对应的错误码，0 表示合法
var transitionErrors = [...][4]int{
	Start:      {ElseIf: diag.ErrElseIfNoIf, Else: diag.ErrElseNoIf, EndIf: diag.ErrDirectiveNoIf},
	IfSeen:     {},
	ElseIfSeen: {},
	ElseSeen:   {ElseIf: diag.ErrElseIfAfterElse, Else: diag.ErrElseNoIf},
	EndIfSeen:  {ElseIf: diag.ErrElseIfNoIf, Else: diag.ErrElseNoIf, EndIf: diag.ErrDirectiveNoIf},
}

// Error 指令嵌套错误
type Error struct {
	Code int
	Loc  diag.Location
	Args []any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: BC%d: %s", e.Loc, e.Code, diag.Message(e.Code, e.Args...))
}

// Report 把错误上报到诊断接收者
func (e *Error) Report(sink diag.Sink) {
	diag.Errorf(sink, e.Code, e.Loc, e.Args...)
}

// Automaton 条件编译指令的下推自动机。
// #If 压入当前状态并进入 IfSeen，#End If 弹出；
// 每条 #ElseIf/#Else/#End If 都必须有外层匹配的 #If。
type Automaton struct {
	state State
	stack []State
}

// State 当前状态
func (a *Automaton) State() State { return a.state }

// Depth 未闭合的 #If 层数
func (a *Automaton) Depth() int { return len(a.stack) }

// Step 接收一条指令；非法转移返回 *Error 且状态不变
func (a *Automaton) Step(d Directive, loc diag.Location) error {
	if code := transitionErrors[a.state][d]; code != 0 {
		return &Error{Code: code, Loc: loc}
	}
	switch d {
	case If:
		a.stack = append(a.stack, a.state)
		a.state = IfSeen
	case ElseIf:
		a.state = ElseIfSeen
	case Else:
		a.state = ElseSeen
	case EndIf:
		n := len(a.stack) - 1
		a.state = a.stack[n]
		a.stack = a.stack[:n]
		if n == 0 {
			a.state = EndIfSeen
		}
	}
	return nil
}

// Finish 输入结束时检查所有 #If 都已闭合
func (a *Automaton) Finish(loc diag.Location) error {
	if len(a.stack) > 0 {
		return &Error{Code: diag.ErrEndIfExpected, Loc: loc}
	}
	return nil
}
