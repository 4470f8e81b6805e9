package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tangzhangming/vbc/internal/constant"
)

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `
[project]
name = "Demo"

[compile]
option_strict = true
language = "zh"

[compile.defines]
DEBUG = true
LEVEL = 3
BIG = 10000000000
RATIO = 0.5
TARGET = "exe"
`)
	nested := filepath.Join(root, "src", "lib")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if path != filepath.Join(root, FileName) {
		t.Errorf("path = %q", path)
	}
	if GetProjectRoot(path) != root {
		t.Errorf("root = %q", GetProjectRoot(path))
	}
	if cfg.Project.Name != "Demo" || !cfg.Compile.OptionStrict || cfg.Compile.AllowUnsafe {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Compile.Language != "zh" {
		t.Errorf("language = %q", cfg.Compile.Language)
	}

	defines, err := cfg.DefineValues()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]constant.Value{
		"DEBUG":  constant.BoolValue(true),
		"LEVEL":  constant.IntegerValue(3),
		"BIG":    constant.LongValue(10000000000),
		"RATIO":  constant.DoubleValue(0.5),
		"TARGET": constant.StringValue("exe"),
	}
	if len(defines) != len(want) {
		t.Fatalf("got %d defines, want %d", len(defines), len(want))
	}
	for name, v := range want {
		if got := defines[name]; got != v {
			t.Errorf("%s = %v, want %v", name, got, v)
		}
	}
}

func TestFindAndLoadDefault(t *testing.T) {
	cfg, path, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if path != "" {
		// 临时目录的祖先中恰好有 vbc.toml
		t.Skipf("found unrelated config %s", path)
	}
	if cfg.Project.Name != "App" || cfg.Compile.OptionStrict {
		t.Errorf("unexpected default %+v", cfg)
	}
	if GetProjectRoot("") != "" {
		t.Error("empty config path should have no root")
	}
}

func TestLoadNameDefaultsToDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "widgets")
	path := filepath.Join(dir, FileName)
	writeFile(t, path, "[compile]\nallow_unsafe = true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project.Name != "widgets" || !cfg.Compile.AllowUnsafe {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"syntax", "[project\nname = 1"},
		{"define type", "[compile.defines]\nLIST = [1, 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.text)
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
