package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestBagCountsBySeverity(t *testing.T) {
	b := NewBag(ErrDuplicateLocal)
	b.Report(ErrSyntax, Location{File: "a.vb", Line: 3, Column: 1}, "syntax")
	b.Report(ErrDuplicateLocal, Location{File: "a.vb", Line: 1, Column: 5}, "dup")

	if b.ErrorCount() != 1 {
		t.Errorf("ErrorCount() = %d, want 1", b.ErrorCount())
	}
	if b.WarningCount() != 1 {
		t.Errorf("WarningCount() = %d, want 1", b.WarningCount())
	}
	if !b.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	if !b.Has(ErrSyntax) || b.Has(ErrCannotConvert) {
		t.Errorf("Has() mismatch, codes = %v", b.Codes())
	}
}

func TestBagSortedOutput(t *testing.T) {
	b := NewBag()
	b.Report(ErrSyntax, Location{File: "b.vb", Line: 1, Column: 1}, "second")
	b.Report(ErrSyntax, Location{File: "a.vb", Line: 9, Column: 2}, "first")

	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "a.vb(9,2): error BC30035") {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestEveryCodeHasMessage(t *testing.T) {
	for code, key := range messageKeys {
		if msg := Message(code); msg == key {
			t.Errorf("code %d: message key %q has no translation", code, key)
		}
	}
}
