package i18n

import (
	"strings"
	"testing"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		code string
		want Language
		ok   bool
	}{
		{"zh_CN.UTF-8", LangChinese, true},
		{"ZH-tw", LangChinese, true},
		{" en_US ", LangEnglish, true},
		{"en", LangEnglish, true},
		{"fr_FR", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLanguage(tt.code)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLanguage(%q) = %q, %v", tt.code, got, ok)
		}
	}
}

func TestConfigurePrecedence(t *testing.T) {
	prev := GetLanguage()
	defer SetLanguage(prev)

	SetLanguage(LangEnglish)
	t.Setenv("VBC_LANG", "")
	if !Configure("zh") || GetLanguage() != LangChinese {
		t.Errorf("config language should apply, got %q", GetLanguage())
	}
	if Configure("klingon") {
		t.Error("unknown language should be ignored")
	}

	SetLanguage(LangEnglish)
	t.Setenv("VBC_LANG", "en")
	if Configure("zh") || GetLanguage() != LangEnglish {
		t.Errorf("VBC_LANG should win over config, got %q", GetLanguage())
	}
}

func TestTranslate(t *testing.T) {
	prev := GetLanguage()
	defer SetLanguage(prev)

	SetLanguage(LangEnglish)
	if got := T(ErrNameNotDeclared, "x"); got != "'x' is not declared" {
		t.Errorf("T = %q", got)
	}
	if got := T("no.such.key"); got != "no.such.key" {
		t.Errorf("unknown key = %q", got)
	}

	SetLanguage(LangChinese)
	if got := T(ErrNameNotDeclared, "x"); got == enMessages[ErrNameNotDeclared] || !strings.Contains(got, "x") {
		t.Errorf("zh T = %q", got)
	}
}

func TestTablesHaveSameKeys(t *testing.T) {
	for key := range enMessages {
		if _, ok := zhMessages[key]; !ok {
			t.Errorf("zh missing %s", key)
		}
	}
	for key := range zhMessages {
		if _, ok := enMessages[key]; !ok {
			t.Errorf("en missing %s", key)
		}
	}
}
