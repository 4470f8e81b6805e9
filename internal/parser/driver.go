package parser

import (
	"context"
	"errors"
	"strings"

	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/lexer"
)

// TokenSource 语法分析器的输入：按需拉取，一次只看一个 token
type TokenSource interface {
	// Advance 读取下一个 token，输入结束时返回 false
	Advance() bool
	// Token 当前 token 的类型
	Token() lexer.TokenType
	// Value 当前 token 的语义值
	Value() any
	// Pos 当前 token 的位置
	Pos() diag.Location
}

// ErrAborted 错误恢复途中到达文件末尾，编译单元被放弃
var ErrAborted = errors.New("parse aborted")

// stackIncrement 分析栈每次增长的大小
const stackIncrement = 200

// errorShifts 报告一次语法错误后，至少成功移进这么多 token 才会报告下一个
const errorShifts = 3

// driver 表驱动的移进-规约分析器。
// 状态栈、值栈和位置栈共用 top，长度始终相同。
type driver struct {
	t    *Table
	p    *parser
	src  TokenSource
	ctx  context.Context
	done <-chan struct{}

	states []int
	values []any
	locs   []diag.Location
	top    int

	tok     lexer.TokenType
	val     any
	loc     diag.Location
	haveTok bool

	errFlag int
}

func newDriver(ctx context.Context, t *Table, p *parser, src TokenSource) *driver {
	return &driver{t: t, p: p, src: src, ctx: ctx, done: ctx.Done(), top: -1}
}

func (d *driver) push(state int, v any, loc diag.Location) {
	d.top++
	if d.top >= len(d.states) {
		n := len(d.states) + stackIncrement
		states := make([]int, n)
		values := make([]any, n)
		locs := make([]diag.Location, n)
		copy(states, d.states)
		copy(values, d.values)
		copy(locs, d.locs)
		d.states, d.values, d.locs = states, values, locs
	}
	d.states[d.top] = state
	d.values[d.top] = v
	d.locs[d.top] = loc
}

// read 取得向前看 token
func (d *driver) read() {
	if d.src.Advance() {
		d.tok, d.val = d.src.Token(), d.src.Value()
	} else {
		d.tok, d.val = lexer.TOKEN_EOF, nil
	}
	d.loc = d.src.Pos()
	d.haveTok = true
}

// run 执行分析直到接受，返回开始符号的语义值
func (d *driver) run() (any, error) {
	d.push(0, nil, diag.Location{})
	for {
		state := d.states[d.top]
		if p := d.t.defaultReduce[state]; p > 0 {
			if err := d.reduce(int(p - 1)); err != nil {
				return nil, err
			}
			continue
		}
		if !d.haveTok {
			d.read()
		}

		a := d.t.act(state, d.tok)
		switch {
		case a > 0:
			d.push(int(a-1), d.val, d.loc)
			d.haveTok = false
			if d.errFlag > 0 {
				d.errFlag--
			}
		case a == -1:
			return d.values[d.top], nil
		case a < 0:
			if err := d.reduce(int(-a - 1)); err != nil {
				return nil, err
			}
		default:
			if err := d.recover(state); err != nil {
				return nil, err
			}
		}
	}
}

func (d *driver) reduce(p int) error {
	select {
	case <-d.done:
		return d.ctx.Err()
	default:
	}

	prod := d.t.prods[p]
	n := len(prod.rhs)
	base := d.top - n + 1
	loc := d.loc
	if n > 0 {
		loc = d.locs[base]
	}

	var v any
	switch {
	case prod.action != nil:
		v = prod.action(d.p, d.values[base:d.top+1], d.locs[base:d.top+1])
	case n > 0:
		v = d.values[base]
	}
	for i := base; i <= d.top; i++ {
		d.values[i] = nil
	}
	d.top -= n
	d.push(d.t.gotoState(d.states[d.top], prod.lhs), v, loc)
	return nil
}

// recover 错误恢复：报告一次，然后弹栈到能移进 error 的状态，再丢弃 token 直到可以继续
func (d *driver) recover(state int) error {
	switch d.errFlag {
	case 0:
		d.syntaxError(state)
		fallthrough
	case 1, 2:
		d.errFlag = errorShifts
		return d.shiftError()
	default:
		if d.tok == lexer.TOKEN_EOF {
			return d.abort()
		}
		d.haveTok = false
		return nil
	}
}

func (d *driver) shiftError() error {
	for {
		for d.t.act(d.states[d.top], lexer.TOKEN_ERROR) == 0 {
			if d.top == 0 {
				return d.abort()
			}
			d.top--
		}
		floor := d.top
		for {
			a := d.t.act(d.states[d.top], lexer.TOKEN_ERROR)
			if a > 0 {
				d.push(int(a-1), nil, d.loc)
				return nil
			}
			if a >= -1 {
				break
			}
			if err := d.reduce(int(-a - 1)); err != nil {
				return err
			}
		}
		// 在 error 上规约后进入了无法处理 error 的状态，连同开始规约的状态一起丢掉
		d.top = min(d.top, floor) - 1
		if d.top < 0 {
			d.top = 0
			return d.abort()
		}
	}
}

func (d *driver) syntaxError(state int) {
	got := d.t.names[d.tok]
	switch d.tok {
	case lexer.TOKEN_IDENT, lexer.TOKEN_CONVFUNC:
		if s, ok := d.val.(string); ok {
			got = "'" + s + "'"
		}
	case lexer.TOKEN_EOF:
		got = "end of file"
	case lexer.TOKEN_EOL:
		got = "end of statement"
	}
	diag.Errorf(d.p.sink, diag.ErrSyntax, d.loc, got, strings.Join(d.t.expected(state), ", "))
}

func (d *driver) abort() error {
	diag.Errorf(d.p.sink, diag.ErrUnrecoverable, d.loc)
	return ErrAborted
}
