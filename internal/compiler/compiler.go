// Package compiler 编译一组源文件：语法分析、收集类型声明、解析约束，
// 然后绑定常量、字段初始值和方法体。
//
// 每次 Compile 使用独立的 Context，类型管理器、转换引擎的运算符缓存和
// 诊断信息都不在编译之间共享，所以多个编译可以并发进行。
package compiler

import (
	"context"
	"errors"
	"strings"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/convert"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/generic"
	"github.com/tangzhangming/vbc/internal/parser"
	"github.com/tangzhangming/vbc/internal/preproc"
	"github.com/tangzhangming/vbc/internal/symbol"
	"github.com/tangzhangming/vbc/internal/types"
)

// Options 编译选项
type Options struct {
	// Strict 项目级 Option Strict，文件中的 Option Strict 语句优先
	Strict bool
	// Unsafe 允许指针转换
	Unsafe bool
	// Defines 项目级条件编译常量
	Defines map[string]constant.Value
}

// Source 一个源文件
type Source struct {
	Name string
	Text string
}

// Context 一次编译独占的状态
type Context struct {
	Types   *types.Manager
	Engine  *convert.Engine
	Checker *generic.Checker
	Diags   *diag.Bag
	Symbols *symbol.Table
}

// NewContext 创建编译上下文
func NewContext(opts Options) *Context {
	m := types.NewManager()
	bag := diag.NewBag()
	e := convert.NewEngine(m)
	e.SetStrict(opts.Strict)
	e.SetUnsafe(opts.Unsafe)
	return &Context{
		Types:   m,
		Engine:  e,
		Checker: generic.NewChecker(e, bag),
		Diags:   bag,
	}
}

// Result 编译结果
type Result struct {
	Files   []*ast.File
	Symbols *symbol.Table
	Diags   *diag.Bag
}

// OK 没有错误
func (r *Result) OK() bool { return !r.Diags.HasErrors() }

// Compile 编译一组源文件。源码中的错误作为诊断收集在结果中，
// 只有 ctx 被取消时才返回 error。
func Compile(ctx context.Context, opts Options, sources []Source) (*Result, error) {
	c := NewContext(opts)
	res := &Result{Diags: c.Diags}

	for _, src := range sources {
		f, err := parser.ParseSource(ctx, src.Name, src.Text, parser.Options{Defines: opts.Defines}, c.Diags)
		var perr *preproc.Error
		switch {
		case errors.As(err, &perr):
			perr.Report(c.Diags)
			continue
		case errors.Is(err, parser.ErrAborted):
			// 无法恢复的语法错误已经上报
		case err != nil:
			return nil, err
		}
		if f != nil {
			res.Files = append(res.Files, f)
		}
	}

	c.Symbols = symbol.Collect(c.Types, c.Checker, res.Files, c.Diags)
	res.Symbols = c.Symbols
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u := newUnit(c, opts.Strict, res.Files)
	if err := u.bindAll(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// fileStrict 文件中最后一条 Option Strict 的设置
func fileStrict(f *ast.File, def bool) bool {
	strict := def
	for _, o := range f.Options {
		if strings.EqualFold(o.Name, "Strict") {
			strict = strings.EqualFold(o.Value, "On")
		}
	}
	return strict
}
