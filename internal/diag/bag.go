package diag

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Bag 收集编译期间的诊断信息
type Bag struct {
	mu          sync.Mutex
	diagnostics []*Diagnostic
	warnings    map[int]bool
	errorCount  int
	warnCount   int
}

// NewBag 创建诊断收集器，warningCodes 中的错误码按警告处理
func NewBag(warningCodes ...int) *Bag {
	b := &Bag{warnings: make(map[int]bool)}
	for _, c := range warningCodes {
		b.warnings[c] = true
	}
	return b
}

// Report 实现 Sink
func (b *Bag) Report(code int, loc Location, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := &Diagnostic{Severity: Error, Code: code, Location: loc, Message: msg}
	if b.warnings[code] {
		d.Severity = Warning
		b.warnCount++
	} else {
		b.errorCount++
	}
	b.diagnostics = append(b.diagnostics, d)
}

// HasErrors returns true if there are any errors
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount > 0
}

// ErrorCount returns the number of errors
func (b *Bag) ErrorCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount
}

// WarningCount returns the number of warnings
func (b *Bag) WarningCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.warnCount
}

// Diagnostics returns a copy of all diagnostics
func (b *Bag) Diagnostics() []*Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Diagnostic, len(b.diagnostics))
	copy(out, b.diagnostics)
	return out
}

// Codes 按上报顺序返回所有错误码
func (b *Bag) Codes() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	codes := make([]int, len(b.diagnostics))
	for i, d := range b.diagnostics {
		codes[i] = d.Code
	}
	return codes
}

// Has 是否上报过指定错误码
func (b *Bag) Has(code int) bool {
	for _, c := range b.Codes() {
		if c == code {
			return true
		}
	}
	return false
}

// Sorted 按文件、行、列排序后的诊断信息
func (b *Bag) Sorted() []*Diagnostic {
	out := b.Diagnostics()
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].Location, out[j].Location
		if li.File != lj.File {
			return li.File < lj.File
		}
		if li.Line != lj.Line {
			return li.Line < lj.Line
		}
		return li.Column < lj.Column
	})
	return out
}

// WriteTo 输出所有诊断信息
func (b *Bag) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, d := range b.Sorted() {
		k, err := fmt.Fprintln(w, d.String())
		n += int64(k)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
