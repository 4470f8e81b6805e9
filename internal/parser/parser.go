// Package parser 实现 LALR(1) 表驱动的语法分析。
//
// 分析表在首次使用时由 grammar.go 中的文法生成（LR(0) 项目集加向前看传播），
// 驱动程序执行移进/规约并在规约时调用语义动作构造语法树。
// 语义动作通过作用域帧栈共享当前命名空间、类型、方法和语句块。
package parser

import (
	"context"
	"errors"
	"sync"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/lexer"
)

var (
	tablesOnce sync.Once
	tables     *Table
)

// Tables 返回语言文法的分析表，首次调用时生成，之后共享（只读）
func Tables() *Table {
	tablesOnce.Do(func() {
		tables = compile(languageGrammar())
	})
	return tables
}

// parser 一次分析调用的语义动作状态
type parser struct {
	file   string
	sink   diag.Sink
	scopes scopeStack
}

// Parse 从 token 源分析一个文件。
// 语法错误报告到 sink 并继续；无法恢复时返回 ErrAborted，context 取消时返回 ctx.Err()。
func Parse(ctx context.Context, src TokenSource, file string, sink diag.Sink) (*ast.File, error) {
	if sink == nil {
		sink = diag.Discard
	}
	p := &parser{file: file, sink: sink, scopes: newScopeStack()}
	v, err := newDriver(ctx, Tables(), p, src).run()
	if err != nil {
		return nil, err
	}
	f, _ := v.(*ast.File)
	if f == nil {
		f = &ast.File{}
	}
	f.Name = file
	return f, nil
}

// Options ParseSource 的选项
type Options struct {
	// Defines 项目级条件编译常量
	Defines map[string]constant.Value
}

// ParseSource 对源码进行词法和语法分析。
// 条件编译指令嵌套错误会结束 token 流，此时返回 *preproc.Error，
// 由此引起的语法错误不会上报。
func ParseSource(ctx context.Context, file, text string, opts Options, sink diag.Sink) (*ast.File, error) {
	if sink == nil {
		sink = diag.Discard
	}
	l := lexer.NewWithOptions(text, lexer.Options{File: file, Defines: opts.Defines, Sink: sink})
	syntax := diag.NewBag()
	f, err := Parse(ctx, l, file, syntax)
	if perr := l.Err(); perr != nil {
		return nil, perr
	}
	for _, d := range syntax.Diagnostics() {
		sink.Report(d.Code, d.Location, d.Message)
	}
	if err != nil && !errors.Is(err, ErrAborted) {
		return nil, err
	}
	return f, err
}
