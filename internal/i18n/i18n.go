// Package i18n 保存 vbc 的用户可见文本：诊断信息和命令行输出。
//
// 每条文本用消息键标识，按当前语言查表，缺失时回退到英文。
// 语言的优先级依次为 VBC_LANG、vbc.toml 的 language、LANG/LC_ALL/LANGUAGE。
package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Language 支持的语言
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

var tables = map[Language]map[string]string{
	LangEnglish: enMessages,
	LangChinese: zhMessages,
}

var (
	current atomic.Value // Language
	once    sync.Once
)

// Init 从环境变量检测语言，首次调用 T 时自动执行
func Init() {
	once.Do(func() {
		lang, ok := fromEnv("VBC_LANG", "LANG", "LC_ALL", "LANGUAGE")
		if !ok {
			lang = LangEnglish
		}
		current.Store(lang)
	})
}

// Configure 应用项目配置的语言；VBC_LANG 已设置时保持不变。
// 返回是否改变了语言。
func Configure(configured string) bool {
	Init()
	if _, ok := fromEnv("VBC_LANG"); ok {
		return false
	}
	lang, ok := ParseLanguage(configured)
	if ok {
		current.Store(lang)
	}
	return ok
}

// SetLanguage 直接设置语言
func SetLanguage(lang Language) {
	Init()
	current.Store(lang)
}

// GetLanguage 当前语言
func GetLanguage() Language {
	Init()
	return current.Load().(Language)
}

// ParseLanguage 解析 "zh_CN.UTF-8"、"zh-CN"、"en" 这样的语言代码
func ParseLanguage(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(code, "zh"):
		return LangChinese, true
	case strings.HasPrefix(code, "en"):
		return LangEnglish, true
	}
	return "", false
}

// T 按当前语言格式化消息；未知的键原样返回
func T(key string, args ...any) string {
	template, ok := tables[GetLanguage()][key]
	if !ok {
		if template, ok = enMessages[key]; !ok {
			return key
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(template, args...)
	}
	return template
}

// fromEnv 第一个值能识别的环境变量
func fromEnv(vars ...string) (Language, bool) {
	for _, name := range vars {
		if lang, ok := ParseLanguage(os.Getenv(name)); ok {
			return lang, true
		}
	}
	return "", false
}
