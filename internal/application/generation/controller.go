package generation

import (
	"context"
	"time"

	"bookgen/internal/catalog"
	"bookgen/internal/domain/entity"
	"bookgen/internal/domain/repository"
	"bookgen/internal/textutil"
	apperrors "bookgen/pkg/errors"
	"bookgen/pkg/logger"
	"bookgen/pkg/metrics"
	"bookgen/pkg/tracer"
)

// Phase 控制器状态机阶段
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseResuming   Phase = "resuming"
	PhaseProducing  Phase = "producing"
	PhasePersisted  Phase = "persisted"
	PhaseFinalizing Phase = "finalizing"
	PhaseDone       Phase = "done"
)

// ControllerConfig 控制器配置
type ControllerConfig struct {
	// MinWords 全书最低词数目标
	MinWords int
	// MaxChapters 章节数硬上限（安全阀）
	MaxChapters int
	// Model / Endpoint 记入元数据的生成参数
	Model    string
	Endpoint string
	// RunID 本次运行标识
	RunID string
}

// BookController 可恢复的单书生成控制器。
// 每章完整生产并计算连续性更新后才持久化；恢复时从下一个
// 未生产的章节号继续，已满足终止条件时重入为空操作。
type BookController struct {
	producer *ChapterProducer
	memory   *ContinuityEngine
	store    repository.BookStateRepository
	cfg      ControllerConfig
	phase    Phase
}

// NewBookController 创建控制器
func NewBookController(producer *ChapterProducer, memory *ContinuityEngine, store repository.BookStateRepository, cfg ControllerConfig) *BookController {
	return &BookController{
		producer: producer,
		memory:   memory,
		store:    store,
		cfg:      cfg,
		phase:    PhaseIdle,
	}
}

// Phase 返回控制器当前阶段
func (c *BookController) Phase() Phase {
	return c.phase
}

// Run 驱动单书生成循环直至满足终止条件，返回手稿路径。
// 循环条件：手稿词数低于 MinWords 且章节数低于 MaxChapters。
func (c *BookController) Run(ctx context.Context, spec *catalog.BookSpec) (string, error) {
	slug := textutil.Slug(spec.Title)
	ctx = logger.WithContext(ctx, logger.BookKey, slug)
	ctx = logger.WithContext(ctx, logger.GenreKey, spec.Genre)
	ctx, span := tracer.Start(ctx, "book.run")
	defer span.End()

	c.phase = PhaseResuming
	state, err := c.store.LoadState(ctx, slug)
	if err != nil {
		return "", err
	}
	if state == nil {
		state = entity.NewGenerationState(spec.Title, spec.Genre)
	} else {
		logger.Info(ctx, "resuming book from persisted state",
			"chapters", state.ChapterCount(),
			"words", textutil.CountWords(state.ManuscriptText()),
		)
	}

	for textutil.CountWords(state.ManuscriptText()) < c.cfg.MinWords && state.ChapterCount() < c.cfg.MaxChapters {
		c.phase = PhaseProducing
		chapterNumber := state.NextChapterNumber()
		cctx := logger.WithContext(ctx, logger.ChapterKey, chapterNumber)

		logger.Info(cctx, "generating chapter")
		produced, err := c.producer.Produce(cctx, spec, chapterNumber, state.StoryMemory)
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.CodeGenerationFailed, "chapter production failed")
		}

		summary := c.memory.SummarizeChapter(cctx, chapterNumber, produced.Text)
		if summary.Fallback {
			logger.Warn(cctx, "chapter summary fell back to placeholder", "cause", summary.Cause.Error())
		}

		merged := c.memory.MergeMemory(cctx, state.StoryMemory, append(state.ChapterSummaries, summary.Text))
		if merged.Fallback {
			logger.Warn(cctx, "story memory fell back to recent raw summaries", "cause", merged.Cause.Error())
		}

		// 外部中断：本章未持久化，恢复时从头重新生成
		if err := ctx.Err(); err != nil {
			return "", err
		}

		state.AppendChapter(produced.Text, summary.Text, merged.Text)
		if err := c.store.SaveState(cctx, slug, state); err != nil {
			return "", err
		}
		if _, err := c.store.WriteManuscript(cctx, slug, state.ManuscriptText()); err != nil {
			return "", err
		}
		c.phase = PhasePersisted

		metrics.ChaptersProducedTotal.WithLabelValues(spec.Genre).Inc()
		metrics.ChapterWordCount.WithLabelValues(spec.Genre).Observe(float64(produced.Words))
		logger.Info(cctx, "chapter complete",
			"chapter_words", produced.Words,
			"total_words", state.WordCount,
			"regenerated", produced.Regenerated,
		)
	}

	c.phase = PhaseFinalizing
	totalWords := textutil.CountWords(state.ManuscriptText())
	meta := &entity.Metadata{
		Title:            spec.Title,
		Genre:            spec.Genre,
		Model:            c.cfg.Model,
		Endpoint:         c.cfg.Endpoint,
		TotalWords:       totalWords,
		Chapters:         state.ChapterCount(),
		TargetMinWords:   c.cfg.MinWords,
		GeneratedAt:      time.Now(),
		StateFile:        c.store.StatePath(slug),
		RunID:            c.cfg.RunID,
		ChapterSummaries: state.ChapterSummaries,
	}
	// 元数据无条件写出：即使书未达标，部分进度也必须可检视
	if err := c.store.WriteMetadata(ctx, slug, meta); err != nil {
		return "", err
	}

	if totalWords < c.cfg.MinWords {
		metrics.BooksCompletedTotal.WithLabelValues(spec.Genre, "under_length").Inc()
		return "", apperrors.Newf(apperrors.CodeBookUnderLength,
			"%s finished at %d words, below requested minimum %d; increase generation.max_chapters or generation.target_chapter_words and rerun",
			spec.Title, totalWords, c.cfg.MinWords)
	}

	c.phase = PhaseDone
	metrics.BooksCompletedTotal.WithLabelValues(spec.Genre, "ok").Inc()
	metrics.BookWordCount.WithLabelValues(spec.Genre).Observe(float64(totalWords))
	return c.store.ManuscriptPath(slug), nil
}
