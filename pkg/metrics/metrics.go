// Package metrics 提供 Prometheus 指标采集功能
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "bookgen"
)

var (
	// LLM 调用指标
	LLMCallTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_total",
			Help:      "Total number of generation endpoint calls",
		},
		[]string{"operation", "status"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Generation endpoint call duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"operation"},
	)

	LLMRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "retries_total",
			Help:      "Total number of retried generation endpoint calls",
		},
		[]string{"operation"},
	)

	// 业务指标 - 章节生产
	ChaptersProducedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chapter",
			Name:      "produced_total",
			Help:      "Total number of accepted chapters",
		},
		[]string{"genre"},
	)

	ChapterRegenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chapter",
			Name:      "regenerations_total",
			Help:      "Total number of length-policy chapter regenerations",
		},
		[]string{"genre"},
	)

	ChapterWordCount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chapter",
			Name:      "word_count",
			Help:      "Accepted chapter word count",
			Buckets:   []float64{500, 900, 1200, 1800, 2500, 4000, 6000},
		},
		[]string{"genre"},
	)

	// 连续性记忆指标
	ContinuityFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "fallback_total",
			Help:      "Total number of continuity engine fallbacks",
		},
		[]string{"operation"},
	)

	// 书籍指标
	BooksCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "book",
			Name:      "completed_total",
			Help:      "Total number of finished book runs",
		},
		[]string{"genre", "status"},
	)

	BookWordCount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "book",
			Name:      "word_count",
			Help:      "Final manuscript word count",
			Buckets:   []float64{5000, 10000, 20000, 40000, 60000, 100000},
		},
		[]string{"genre"},
	)
)
