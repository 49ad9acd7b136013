// Package generation 实现书籍生成应用层：
// 连续性记忆引擎、章节生产策略与可恢复的生成控制器。
package generation

import "context"

// 生成调用的操作标签，用于日志与指标
const (
	OpChapter     = "chapter"
	OpSummary     = "summary"
	OpMemoryMerge = "memory_merge"
)

// GenerateRequest 单次文本生成请求
type GenerateRequest struct {
	// Operation 操作标签（OpChapter 等）
	Operation string
	// System 系统指令
	System string
	// Prompt 用户提示词
	Prompt string
	// Temperature 采样温度
	Temperature float64
}

// TextGenerator 文本生成端口，由传输层实现
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
