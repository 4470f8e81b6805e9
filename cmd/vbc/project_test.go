package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tangzhangming/vbc/internal/constant"
)

func TestParseDefines(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]constant.Value
	}{
		{"", map[string]constant.Value{}},
		{"DEBUG", map[string]constant.Value{"DEBUG": constant.BoolValue(true)}},
		{"DEBUG=False, LEVEL=2", map[string]constant.Value{
			"DEBUG": constant.BoolValue(false),
			"LEVEL": constant.IntegerValue(2),
		}},
		{`TARGET="exe"`, map[string]constant.Value{"TARGET": constant.StringValue("exe")}},
	}
	for _, tt := range tests {
		got, err := parseDefines(tt.in)
		if err != nil {
			t.Errorf("parseDefines(%q): %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseDefines(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for name, v := range tt.want {
			if got[name] != v {
				t.Errorf("parseDefines(%q)[%s] = %v, want %v", tt.in, name, got[name], v)
			}
		}
	}
}

func TestParseDefinesInvalid(t *testing.T) {
	for _, in := range []string{"=1", "X=abc"} {
		_, err := parseDefines(in)
		var de *defineError
		if !errors.As(err, &de) {
			t.Errorf("parseDefines(%q) err = %v, want defineError", in, err)
		}
	}
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestCheckInputs(t *testing.T) {
	good := writeProject(t, map[string]string{
		"vbc.toml": "[compile.defines]\nDEBUG = true\n",
		"a.vb":     "#If DEBUG Then\nModule M\n    Const A As Integer = 1\nEnd Module\n#Else\nModule M\n    Const A As Integer = Missing\nEnd Module\n#End If\n",
	})
	bad := writeProject(t, map[string]string{
		"b.vb": "Module N\n    Const B As Byte = 300\nEnd Module\n",
	})

	tests := []struct {
		name   string
		inputs []string
		ok     bool
	}{
		{"config defines select branch", []string{good}, true},
		{"overflow reported", []string{bad}, false},
		{"independent projects", []string{good, bad}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := checkInputs(context.Background(), tt.inputs, &checkFlags{jobs: 2})
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.ok {
				t.Errorf("ok = %v, want %v", ok, tt.ok)
			}
		})
	}
}

func TestCheckInputsErrors(t *testing.T) {
	empty := t.TempDir()
	_, err := checkInputs(context.Background(), []string{empty}, &checkFlags{})
	var nf *noFilesError
	if !errors.As(err, &nf) {
		t.Errorf("err = %v, want noFilesError", err)
	}

	_, err = checkInputs(context.Background(), []string{filepath.Join(empty, "missing.vb")}, &checkFlags{})
	var ae *accessError
	if !errors.As(err, &ae) {
		t.Errorf("err = %v, want accessError", err)
	}
}
