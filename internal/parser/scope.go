package parser

import (
	"strings"

	"github.com/tangzhangming/vbc/internal/ast"
	"github.com/tangzhangming/vbc/internal/diag"
)

// frameKind 作用域帧的种类，按嵌套深度排列
type frameKind int

const (
	namespaceFrame frameKind = iota
	typeFrame
	methodFrame
	blockFrame
)

// frame 语义动作共享的作用域帧：当前命名空间、当前类型、当前方法和当前语句块
type frame struct {
	kind frameKind
	name string

	typ    *ast.TypeDecl
	method *ast.MethodDecl

	// loop 循环块的种类 For/While/Do，普通块为空
	loop   string
	forVar string

	// names 本帧中已声明的名称，小写
	names map[string]bool
}

func newFrame(kind frameKind, name string) *frame {
	return &frame{kind: kind, name: name, names: make(map[string]bool)}
}

// declare 在本帧中声明名称，已存在时返回 false
func (f *frame) declare(name string) bool {
	key := strings.ToLower(name)
	if f.names[key] {
		return false
	}
	f.names[key] = true
	return true
}

// scopeStack 作用域帧栈，由开头产生式压入、由结尾产生式弹出。
// 错误恢复可能丢掉结尾产生式，所以弹出总是按种类回退到匹配的帧。
type scopeStack struct {
	frames []*frame
}

func newScopeStack() scopeStack {
	return scopeStack{frames: []*frame{newFrame(namespaceFrame, "")}}
}

func (s *scopeStack) top() *frame { return s.frames[len(s.frames)-1] }

func (s *scopeStack) push(f *frame) { s.frames = append(s.frames, f) }

// trim 弹出比 kind 更深的帧
func (s *scopeStack) trim(kind frameKind) {
	for len(s.frames) > 1 && s.top().kind > kind {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// pop 弹出直到弹出一个 kind 帧（包括它），返回该帧；根帧不会被弹出
func (s *scopeStack) pop(kind frameKind) *frame {
	s.trim(kind)
	if len(s.frames) > 1 && s.top().kind == kind {
		f := s.top()
		s.frames = s.frames[:len(s.frames)-1]
		return f
	}
	return nil
}

// container 最内层的命名空间或类型帧
func (s *scopeStack) container() *frame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if f := s.frames[i]; f.kind <= typeFrame {
			return f
		}
	}
	return s.frames[0]
}

// qualified 最内层容器的限定名
func (s *scopeStack) qualified() string {
	var parts []string
	for _, f := range s.frames {
		if f.kind <= typeFrame && f.name != "" {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, ".")
}

// method 当前方法帧
func (s *scopeStack) method() *frame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		switch f := s.frames[i]; f.kind {
		case methodFrame:
			return f
		case typeFrame, namespaceFrame:
			return nil
		}
	}
	return nil
}

// inLoop 当前方法中是否有某种循环块
func (s *scopeStack) inLoop(loop string) bool {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if f.kind != blockFrame {
			return false
		}
		if strings.EqualFold(f.loop, loop) {
			return true
		}
	}
	return false
}

// declareLocal 在当前块中声明局部变量；与外层块或参数同名也算重复
func (s *scopeStack) declareLocal(name string) bool {
	key := strings.ToLower(name)
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if f.kind < methodFrame {
			break
		}
		if f.names[key] {
			return false
		}
		if f.kind == methodFrame {
			break
		}
	}
	s.top().names[key] = true
	return true
}

// enterType 进入类型声明，检查同一容器中的重名类型；Partial 声明可以重复
func (p *parser) enterType(d *ast.TypeDecl) {
	p.scopes.trim(typeFrame)
	c := p.scopes.container()
	if d.Name != "" && !d.Modifiers.Has(ast.ModPartial) && !c.declare(d.Name) {
		where := p.scopes.qualified()
		if where == "" {
			where = p.file
		}
		diag.Errorf(p.sink, diag.ErrDuplicateType, d.Loc, d.Name, where)
	}
	f := newFrame(typeFrame, d.Name)
	f.typ = d
	p.scopes.push(f)
}

// checkParams 检查重名参数，返回以参数为名称的方法帧
func (p *parser) checkParams(name string, params []*ast.ParamDecl) *frame {
	f := newFrame(methodFrame, name)
	for _, prm := range params {
		if prm != nil && !f.declare(prm.Name) {
			diag.Errorf(p.sink, diag.ErrDuplicateParam, prm.Loc, prm.Name)
		}
	}
	return f
}

// enterMethod 进入方法体，参数是方法帧中的名称
func (p *parser) enterMethod(m *ast.MethodDecl) {
	p.scopes.trim(typeFrame)
	f := p.checkParams(m.Name, m.Params)
	f.method = m
	p.scopes.push(f)
}

// enterBlock 进入语句块
func (p *parser) enterBlock(loop string) *frame {
	f := newFrame(blockFrame, "")
	f.loop = loop
	p.scopes.push(f)
	return f
}
