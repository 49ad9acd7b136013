package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookgen/internal/catalog"
)

func testBookSpec() *catalog.BookSpec {
	return &catalog.BookSpec{
		Genre:   "thriller",
		Title:   "Stub Book",
		Premise: "A courier discovers the package is empty.",
		Tone:    "tense, spare",
		ChapterPlans: []string{
			"The courier takes the job.",
			"The handoff goes wrong.",
		},
	}
}

func TestObjectiveFor(t *testing.T) {
	producer := NewChapterProducer(newStubGenerator(0), 1800)
	spec := testBookSpec()

	assert.Equal(t, "The courier takes the job.", producer.ObjectiveFor(spec, 1))
	assert.Equal(t, "The handoff goes wrong.", producer.ObjectiveFor(spec, 2))
	// 超出既定规划后切换到通用升级目标
	assert.Equal(t, escalationObjective, producer.ObjectiveFor(spec, 3))
	assert.Equal(t, escalationObjective, producer.ObjectiveFor(spec, 24))
}

func TestProduceAcceptsSufficientDraft(t *testing.T) {
	stub := newStubGenerator(1500)
	producer := NewChapterProducer(stub, 1800)

	produced, err := producer.Produce(context.Background(), testBookSpec(), 1, "No chapters yet.")
	require.NoError(t, err)

	assert.Equal(t, 1, produced.Number)
	assert.False(t, produced.Regenerated)
	assert.Equal(t, 1503, produced.Words)
	assert.Equal(t, "The courier takes the job.", produced.Objective)

	calls := stub.callsFor(OpChapter)
	require.Len(t, calls, 1)
	assert.InDelta(t, chapterTemperature, calls[0].Temperature, 1e-9)
	assert.Contains(t, calls[0].Prompt, "The courier takes the job.")
	assert.Contains(t, calls[0].Prompt, "about 1800 words (minimum 1550)")
	assert.Contains(t, calls[0].Prompt, "No chapters yet.")
}

func TestProduceRegeneratesShortDraftOnce(t *testing.T) {
	stub := newStubGenerator(0)
	stub.chapterTextFn = func(call int, _ GenerateRequest) (string, error) {
		if call == 1 {
			return "Chapter 1: Thin\n\n" + wordRun(100), nil
		}
		// 第二稿依旧低于下限，必须无条件接受
		return "Chapter 1: Thicker\n\n" + wordRun(120), nil
	}
	producer := NewChapterProducer(stub, 1800)

	produced, err := producer.Produce(context.Background(), testBookSpec(), 1, "No chapters yet.")
	require.NoError(t, err)

	assert.True(t, produced.Regenerated)
	assert.Equal(t, 123, produced.Words)

	calls := stub.callsFor(OpChapter)
	require.Len(t, calls, 2)

	// 重试稿：放宽目标到 2000、提升温度、追加更充实场景的指令
	retry := calls[1]
	assert.InDelta(t, chapterRetryTemperature, retry.Temperature, 1e-9)
	assert.Contains(t, retry.Prompt, "about 2000 words (minimum 1750)")
	assert.Contains(t, retry.Prompt, "Write fuller scenes and dialogue.")
	assert.Contains(t, retry.Prompt, "The courier takes the job.")
}

func TestProduceRepairsMissingHeading(t *testing.T) {
	stub := newStubGenerator(0)
	stub.chapterTextFn = func(_ int, _ GenerateRequest) (string, error) {
		return wordRun(1000), nil
	}
	producer := NewChapterProducer(stub, 1800)

	produced, err := producer.Produce(context.Background(), testBookSpec(), 3, "memory")
	require.NoError(t, err)
	assert.True(t, len(produced.Text) > 0)
	assert.Contains(t, produced.Text, "Chapter 3: Untitled\n\n")
	// 合成标题计入词数
	assert.Equal(t, 1003, produced.Words)
}

func TestProduceKeepsExistingHeading(t *testing.T) {
	stub := newStubGenerator(0)
	stub.chapterTextFn = func(_ int, _ GenerateRequest) (string, error) {
		return "chapter 2: lowercase heading\n\n" + wordRun(1000), nil
	}
	producer := NewChapterProducer(stub, 1800)

	produced, err := producer.Produce(context.Background(), testBookSpec(), 2, "memory")
	require.NoError(t, err)
	assert.NotContains(t, produced.Text, "Untitled")
}

func TestProducePropagatesGeneratorError(t *testing.T) {
	stub := newStubGenerator(0)
	stub.failOps[OpChapter] = errors.New("service down")
	producer := NewChapterProducer(stub, 1800)

	_, err := producer.Produce(context.Background(), testBookSpec(), 1, "memory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service down")
}
