// Package config 提供配置加载和管理功能
package config

import (
	"time"

	apperrors "bookgen/pkg/errors"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Ollama        OllamaConfig        `yaml:"ollama" mapstructure:"ollama"`
	Generation    GenerationConfig    `yaml:"generation" mapstructure:"generation"`
	Output        OutputConfig        `yaml:"output" mapstructure:"output"`
	Catalog       CatalogConfig       `yaml:"catalog" mapstructure:"catalog"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// OllamaConfig 生成服务配置
type OllamaConfig struct {
	// Endpoint 服务基础地址，例如 http://127.0.0.1:11434
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Model 生成模型标识
	Model string `yaml:"model" mapstructure:"model"`
	// Timeout 单次生成调用超时
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Retries 单次调用的总尝试次数预算
	Retries int `yaml:"retries" mapstructure:"retries"`
}

// GenerationConfig 书籍生成配置
type GenerationConfig struct {
	// MinWords 每本书的最低词数目标
	MinWords int `yaml:"min_words" mapstructure:"min_words"`
	// TargetChapterWords 单章目标词数
	TargetChapterWords int `yaml:"target_chapter_words" mapstructure:"target_chapter_words"`
	// MaxChapters 章节数硬上限，防止服务持续产出过短章节时无限生成
	MaxChapters int `yaml:"max_chapters" mapstructure:"max_chapters"`
	// Seed 可选的确定性种子；nil 表示不下发
	Seed *int64 `yaml:"seed" mapstructure:"seed"`
}

// OutputConfig 产物输出配置
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// CatalogConfig 书籍目录配置
type CatalogConfig struct {
	// Path 外部目录文件路径；为空时使用内置目录
	Path string `yaml:"path" mapstructure:"path"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Port    int    `yaml:"port" mapstructure:"port"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// Validate 校验配置的基本合法性
func (c *Config) Validate() error {
	if c.Ollama.Endpoint == "" {
		return apperrors.New(apperrors.CodeInvalidConfig, "ollama.endpoint is required")
	}
	if c.Ollama.Model == "" {
		return apperrors.New(apperrors.CodeInvalidConfig, "ollama.model is required")
	}
	if c.Generation.MinWords <= 0 {
		return apperrors.New(apperrors.CodeInvalidConfig, "generation.min_words must be positive")
	}
	if c.Generation.TargetChapterWords <= 0 {
		return apperrors.New(apperrors.CodeInvalidConfig, "generation.target_chapter_words must be positive")
	}
	if c.Generation.MaxChapters <= 0 {
		return apperrors.New(apperrors.CodeInvalidConfig, "generation.max_chapters must be positive")
	}
	return nil
}
