package diag

import "fmt"

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Location 源码位置
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("(%d,%d)", l.Line, l.Column)
	}
	return fmt.Sprintf("%s(%d,%d)", l.File, l.Line, l.Column)
}

// Diagnostic 一条诊断信息
type Diagnostic struct {
	Severity Severity
	Code     int
	Location Location
	Message  string
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s: %s BC%d: %s", d.Location, d.Severity, d.Code, d.Message)
}

// Sink 诊断信息接收者
type Sink interface {
	Report(code int, loc Location, msg string)
}

// Errorf 按错误码格式化消息并上报
func Errorf(s Sink, code int, loc Location, args ...any) {
	s.Report(code, loc, Message(code, args...))
}

// Discard 丢弃所有诊断信息
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(int, Location, string) {}
