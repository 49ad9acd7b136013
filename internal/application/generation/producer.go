package generation

import (
	"context"
	"fmt"
	"strings"

	"bookgen/internal/catalog"
	"bookgen/internal/textutil"
	"bookgen/internal/workflow/prompt"
	"bookgen/pkg/logger"
	"bookgen/pkg/metrics"
)

const (
	chapterTemperature      = 0.75
	chapterRetryTemperature = 0.8

	// 接受词数下限的绝对底线
	absoluteMinChapterWords = 900
	// 重生成时的目标词数下限
	regenTargetFloor = 2000

	// 超出既定章节规划后的通用升级目标
	escalationObjective = "Continue escalation from prior chapter, deepen character consequences, " +
		"and set up the final resolution without repeating earlier scenes."

	// 重生成附加指令
	fullerScenesHint = " Write fuller scenes and dialogue."
)

// draftPhase 单章生产的两态机：草稿 -> 已接受
type draftPhase int

const (
	phaseDraft draftPhase = iota
	phaseAccepted
)

// draftAttempt 一次草稿尝试的参数
type draftAttempt struct {
	objective   string
	targetWords int
	temperature float64
}

// ProducedChapter 已接受的章节
type ProducedChapter struct {
	Number      int
	Text        string
	Words       int
	Objective   string
	Regenerated bool
}

// ChapterProducer 章节生产策略：构造提示词上下文、校验最小长度、
// 触发至多一次有界的重生成。
type ChapterProducer struct {
	gen         TextGenerator
	prompts     *prompt.Registry
	targetWords int
}

// NewChapterProducer 创建章节生产者
func NewChapterProducer(gen TextGenerator, targetWords int) *ChapterProducer {
	return &ChapterProducer{
		gen:         gen,
		prompts:     prompt.NewRegistry(),
		targetWords: targetWords,
	}
}

// ObjectiveFor 解析章节的情节目标：规划内取既定目标，规划外使用通用升级目标。
// 这允许最低词数要求下的章节数超过既定大纲长度。
func (p *ChapterProducer) ObjectiveFor(spec *catalog.BookSpec, chapterNumber int) string {
	if chapterNumber <= len(spec.ChapterPlans) {
		return spec.ChapterPlans[chapterNumber-1]
	}
	return escalationObjective
}

// Produce 生产一个章节。
// 首次尝试低于 max(absoluteMinChapterWords, target/2) 词时，以放宽的目标
// 与略高的温度重生成恰好一次，第二次结果无条件接受以约束单章最坏耗时。
func (p *ChapterProducer) Produce(ctx context.Context, spec *catalog.BookSpec, chapterNumber int, storyMemory string) (*ProducedChapter, error) {
	objective := p.ObjectiveFor(spec, chapterNumber)
	minAcceptable := absoluteMinChapterWords
	if half := p.targetWords / 2; half > minAcceptable {
		minAcceptable = half
	}

	attempt := draftAttempt{
		objective:   objective,
		targetWords: p.targetWords,
		temperature: chapterTemperature,
	}

	phase := phaseDraft
	regenerated := false
	var text string
	var words int

	for phase == phaseDraft {
		raw, err := p.generateDraft(ctx, spec, chapterNumber, storyMemory, attempt)
		if err != nil {
			return nil, err
		}

		text = ensureChapterHeading(raw, chapterNumber)
		words = textutil.CountWords(text)

		if words >= minAcceptable || regenerated {
			phase = phaseAccepted
			continue
		}

		// 唯一的一次重生成：放宽目标并要求更充实的场景
		regenerated = true
		logger.Warn(ctx, "chapter below minimum length, regenerating",
			"words", words,
			"min_acceptable", minAcceptable,
		)
		metrics.ChapterRegenerationsTotal.WithLabelValues(spec.Genre).Inc()
		retryTarget := attempt.targetWords
		if retryTarget < regenTargetFloor {
			retryTarget = regenTargetFloor
		}
		attempt = draftAttempt{
			objective:   objective + fullerScenesHint,
			targetWords: retryTarget,
			temperature: chapterRetryTemperature,
		}
	}

	return &ProducedChapter{
		Number:      chapterNumber,
		Text:        text,
		Words:       words,
		Objective:   objective,
		Regenerated: regenerated,
	}, nil
}

func (p *ChapterProducer) generateDraft(ctx context.Context, spec *catalog.BookSpec, chapterNumber int, storyMemory string, attempt draftAttempt) (string, error) {
	pair, err := p.prompts.Prompt(prompt.PromptChapterGenV1)
	if err != nil {
		return "", err
	}

	promptMin := attempt.targetWords - 250
	if promptMin < 1200 {
		promptMin = 1200
	}

	system, user, err := pair.Format(map[string]any{
		"Title":         spec.Title,
		"Genre":         spec.Genre,
		"Premise":       spec.Premise,
		"Tone":          spec.Tone,
		"ChapterNumber": chapterNumber,
		"TargetWords":   attempt.targetWords,
		"MinWords":      promptMin,
		"StoryMemory":   storyMemory,
		"ChapterGoal":   attempt.objective,
	})
	if err != nil {
		return "", err
	}

	out, err := p.gen.Generate(ctx, GenerateRequest{
		Operation:   OpChapter,
		System:      system,
		Prompt:      user,
		Temperature: attempt.temperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ensureChapterHeading 校验章节标题行约定；缺失时补合成标题而不是拒绝
func ensureChapterHeading(text string, chapterNumber int) string {
	if strings.HasPrefix(strings.ToLower(text), "chapter ") {
		return text
	}
	return fmt.Sprintf("Chapter %d: Untitled\n\n%s", chapterNumber, text)
}
