package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tangzhangming/vbc/internal/constant"
)

// FileName 项目配置文件名
const FileName = "vbc.toml"

// Config vbc 项目配置
type Config struct {
	Project ProjectConfig `toml:"project"`
	Compile CompileConfig `toml:"compile"`
}

// ProjectConfig 项目配置
type ProjectConfig struct {
	Name string `toml:"name"` // 项目名，默认取配置文件所在目录名
}

// CompileConfig 编译选项
type CompileConfig struct {
	OptionStrict bool           `toml:"option_strict"`
	AllowUnsafe  bool           `toml:"allow_unsafe"`
	Defines      map[string]any `toml:"defines"` // 条件编译常量，如 DEBUG = true
	Language     string         `toml:"language"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Name: "App",
		},
	}
}

// FindAndLoad 从指定目录向上查找 vbc.toml 并加载
func FindAndLoad(startDir string) (*Config, string, error) {
	configPath := FindConfigFile(startDir)
	if configPath == "" {
		// 没找到配置文件，返回默认配置
		return DefaultConfig(), "", nil
	}

	config, err := Load(configPath)
	if err != nil {
		return nil, "", err
	}

	return config, configPath, nil
}

// FindConfigFile 从指定目录向上查找 vbc.toml
func FindConfigFile(startDir string) string {
	dir := startDir

	for {
		configPath := filepath.Join(dir, FileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, err
	}

	if config.Project.Name == "" {
		config.Project.Name = filepath.Base(filepath.Dir(path))
	}
	if _, err := config.DefineValues(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &config, nil
}

// GetProjectRoot 获取项目根目录（vbc.toml 所在目录）
func GetProjectRoot(configPath string) string {
	if configPath == "" {
		return ""
	}
	return filepath.Dir(configPath)
}

// DefineValues 把 [compile.defines] 转换为条件编译常量。
// TOML 整数在 Integer 范围内取 Integer，否则取 Long。
func (c *Config) DefineValues() (map[string]constant.Value, error) {
	out := make(map[string]constant.Value, len(c.Compile.Defines))
	for name, raw := range c.Compile.Defines {
		v, err := defineValue(raw)
		if err != nil {
			return nil, fmt.Errorf("define %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func defineValue(raw any) (constant.Value, error) {
	switch v := raw.(type) {
	case bool:
		return constant.BoolValue(v), nil
	case int64:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return constant.IntegerValue(v), nil
		}
		return constant.LongValue(v), nil
	case float64:
		return constant.DoubleValue(v), nil
	case string:
		return constant.StringValue(v), nil
	}
	return nil, fmt.Errorf("unsupported value %v (%T)", raw, raw)
}
