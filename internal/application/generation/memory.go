package generation

import (
	"context"
	"fmt"
	"strings"

	"bookgen/internal/textutil"
	"bookgen/internal/workflow/prompt"
	"bookgen/pkg/metrics"
)

const (
	// 摘要输入的前缀截断上限，控制提示词成本
	summaryInputMaxRunes = 12000
	// 合并失败时回退拼接的最近摘要条数
	fallbackRecentSummaries = 5
	// 连续性操作偏确定性的低温采样
	continuityTemperature = 0.2
)

// MemoryResult 连续性操作的结果。
// 引擎失败时 Fallback 为 true，Text 携带确定性的本地回退值；
// 调用方除记录日志外无需区分两种来源。
type MemoryResult struct {
	Text     string
	Fallback bool
	Cause    error
}

// ContinuityEngine 连续性记忆引擎：章节摘要与滚动记忆合并。
// 两个操作都是尽力而为，生成主循环不因它们失败而停止。
type ContinuityEngine struct {
	gen     TextGenerator
	prompts *prompt.Registry
}

// NewContinuityEngine 创建引擎
func NewContinuityEngine(gen TextGenerator) *ContinuityEngine {
	return &ContinuityEngine{
		gen:     gen,
		prompts: prompt.NewRegistry(),
	}
}

// SummarizeChapter 从章节全文派生受限长度的连续性摘要。
// 失败时返回记录失败原因的占位摘要，章节照常推进。
func (e *ContinuityEngine) SummarizeChapter(ctx context.Context, chapterNumber int, chapterText string) MemoryResult {
	out, err := e.invoke(ctx, prompt.PromptChapterSummaryV1, OpSummary, map[string]any{
		"ChapterText": textutil.TruncateByRunes(chapterText, summaryInputMaxRunes),
	})
	if err != nil {
		metrics.ContinuityFallbackTotal.WithLabelValues(OpSummary).Inc()
		return MemoryResult{
			Text:     fmt.Sprintf("Chapter %d summary unavailable due to error: %v", chapterNumber, err),
			Fallback: true,
			Cause:    err,
		}
	}
	return MemoryResult{Text: out}
}

// MergeMemory 将最新摘要折叠进滚动记忆。
// summaries 为含最新一条的全部章节摘要；失败时回退为最近
// fallbackRecentSummaries 条原始摘要的拼接，不再二次调用引擎。
func (e *ContinuityEngine) MergeMemory(ctx context.Context, previousMemory string, summaries []string) MemoryResult {
	latest := ""
	if len(summaries) > 0 {
		latest = summaries[len(summaries)-1]
	}

	out, err := e.invoke(ctx, prompt.PromptMemoryMergeV1, OpMemoryMerge, map[string]any{
		"PreviousMemory": previousMemory,
		"LatestSummary":  latest,
	})
	if err != nil {
		metrics.ContinuityFallbackTotal.WithLabelValues(OpMemoryMerge).Inc()
		start := len(summaries) - fallbackRecentSummaries
		if start < 0 {
			start = 0
		}
		tail := strings.Join(summaries[start:], "\n")
		return MemoryResult{
			Text:     "Recent continuity notes:\n" + tail,
			Fallback: true,
			Cause:    err,
		}
	}
	return MemoryResult{Text: out}
}

func (e *ContinuityEngine) invoke(ctx context.Context, id prompt.PromptID, op string, vars map[string]any) (string, error) {
	pair, err := e.prompts.Prompt(id)
	if err != nil {
		return "", err
	}
	system, user, err := pair.Format(vars)
	if err != nil {
		return "", err
	}
	out, err := e.gen.Generate(ctx, GenerateRequest{
		Operation:   op,
		System:      system,
		Prompt:      user,
		Temperature: continuityTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
