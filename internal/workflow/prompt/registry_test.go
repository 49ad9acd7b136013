package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRendersChapterPrompt(t *testing.T) {
	reg := NewRegistry()
	pair, err := reg.Prompt(PromptChapterGenV1)
	require.NoError(t, err)

	system, user, err := pair.Format(map[string]any{
		"Title":         "Null Meridian",
		"Genre":         "thriller",
		"Premise":       "A premise.",
		"Tone":          "tense",
		"ChapterNumber": 3,
		"TargetWords":   1800,
		"MinWords":      1550,
		"StoryMemory":   "No chapters yet.",
		"ChapterGoal":   "The handoff goes wrong.",
	})
	require.NoError(t, err)

	assert.Contains(t, system, "thriller novel")
	assert.Contains(t, user, "Book title: Null Meridian")
	assert.Contains(t, user, "Chapter number: 3")
	assert.Contains(t, user, "about 1800 words (minimum 1550)")
	assert.Contains(t, user, "Start with 'Chapter 3:")
	assert.Contains(t, user, "The handoff goes wrong.")
}

func TestRegistryCachesPairs(t *testing.T) {
	reg := NewRegistry()
	first, err := reg.Prompt(PromptMemoryMergeV1)
	require.NoError(t, err)
	second, err := reg.Prompt(PromptMemoryMergeV1)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRegistryUnknownID(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Prompt(PromptID("nope_v9"))
	assert.Error(t, err)
}

func TestRegistryAllPromptsParse(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []PromptID{PromptChapterGenV1, PromptChapterSummaryV1, PromptMemoryMergeV1} {
		_, err := reg.Prompt(id)
		assert.NoError(t, err, string(id))
	}
}
