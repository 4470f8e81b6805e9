package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tangzhangming/vbc/internal/compiler"
	"github.com/tangzhangming/vbc/internal/config"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/i18n"
)

// project 一个独立编译的输入：单个文件或一个目录下的全部 .vb 文件
type project struct {
	input   string
	cfg     *config.Config
	options compiler.Options
	sources []compiler.Source
}

// loadProject 查找 vbc.toml、读取源文件并合并命令行选项
func loadProject(input string, flags *checkFlags) (*project, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, &accessError{err: err}
	}

	startDir := input
	if !info.IsDir() {
		startDir = filepath.Dir(input)
	}
	cfg, configPath, err := config.FindAndLoad(startDir)
	if err != nil {
		return nil, &configError{err: err}
	}
	if flags.verbose {
		if configPath != "" {
			printInfo(i18n.T(i18n.MsgUsingConfig, configPath, cfg.Project.Name))
		} else {
			printInfo(i18n.T(i18n.MsgNoConfig, cfg.Project.Name))
		}
	}

	defines, err := cfg.DefineValues()
	if err != nil {
		return nil, &configError{err: err}
	}
	for name, v := range flags.defines {
		defines[name] = v
	}
	p := &project{
		input: input,
		cfg:   cfg,
		options: compiler.Options{
			Strict:  cfg.Compile.OptionStrict || flags.strict,
			Unsafe:  cfg.Compile.AllowUnsafe,
			Defines: defines,
		},
	}

	var paths []string
	if info.IsDir() {
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".vb") {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, &accessError{err: err}
		}
		if len(paths) == 0 {
			return nil, &noFilesError{dir: input}
		}
		sort.Strings(paths)
	} else {
		paths = []string{input}
	}

	for _, path := range paths {
		if flags.verbose {
			printInfo(i18n.T(i18n.MsgParsing, path))
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, &readFileError{path: path, err: err}
		}
		p.sources = append(p.sources, compiler.Source{Name: path, Text: string(text)})
	}
	return p, nil
}

// parseDefines 解析 -d 参数："DEBUG=True,LEVEL=2,TRACE"，没有值的名称取 True
func parseDefines(s string) (map[string]constant.Value, error) {
	out := make(map[string]constant.Value)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		name, raw, hasValue := strings.Cut(strings.TrimSpace(part), "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &defineError{define: part}
		}
		if !hasValue {
			out[name] = constant.BoolValue(true)
			continue
		}
		v, ok := defineLiteral(strings.TrimSpace(raw))
		if !ok {
			return nil, &defineError{define: part}
		}
		out[name] = v
	}
	return out, nil
}

func defineLiteral(raw string) (constant.Value, bool) {
	switch {
	case strings.EqualFold(raw, "True"):
		return constant.BoolValue(true), true
	case strings.EqualFold(raw, "False"):
		return constant.BoolValue(false), true
	case len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"':
		return constant.StringLiteral(raw[1 : len(raw)-1]), true
	}
	v, err := constant.ParseNumber(raw)
	if err != nil {
		return nil, false
	}
	return v, true
}

// 错误类型定义
type accessError struct {
	err error
}

func (e *accessError) Error() string {
	return fmt.Sprintf("%s: %v", i18n.T(i18n.ErrCannotAccessInput), e.err)
}

func (e *accessError) Unwrap() error { return e.err }

type configError struct {
	err error
}

func (e *configError) Error() string {
	return fmt.Sprintf("%s: %v", i18n.T(i18n.ErrCannotLoadConfig), e.err)
}

func (e *configError) Unwrap() error { return e.err }

type readFileError struct {
	path string
	err  error
}

func (e *readFileError) Error() string {
	return fmt.Sprintf("%s %s: %v", i18n.T(i18n.ErrCannotReadFile), e.path, e.err)
}

func (e *readFileError) Unwrap() error { return e.err }

type noFilesError struct {
	dir string
}

func (e *noFilesError) Error() string {
	return i18n.T(i18n.ErrNoSourceFiles, e.dir)
}

type defineError struct {
	define string
}

func (e *defineError) Error() string {
	return i18n.T(i18n.ErrBadDefine, e.define)
}
