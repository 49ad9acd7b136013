package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGenerationState(t *testing.T) {
	state := NewGenerationState("Null Meridian", "thriller")

	assert.Equal(t, "Null Meridian", state.Title)
	assert.Equal(t, "thriller", state.Genre)
	assert.Empty(t, state.Chapters)
	assert.Empty(t, state.ChapterSummaries)
	assert.Equal(t, MemorySentinel, state.StoryMemory)
	assert.Equal(t, 1, state.NextChapterNumber())
	assert.True(t, state.Consistent())
}

func TestAppendChapter(t *testing.T) {
	state := NewGenerationState("Stub Book", "thriller")

	state.AppendChapter("Chapter 1: One\n\nfirst body", "summary one", "memory one")
	state.AppendChapter("Chapter 2: Two\n\nsecond body", "summary two", "memory two")

	assert.Equal(t, 2, state.ChapterCount())
	assert.Equal(t, 3, state.NextChapterNumber())
	assert.True(t, state.Consistent())
	assert.Equal(t, "memory two", state.StoryMemory)
	assert.False(t, state.UpdatedAt.IsZero())

	// 词数始终与派生手稿一致
	// 标题 2 + 每章 (标题行 3 + 正文 2) = 12
	assert.Equal(t, 12, state.WordCount)
}

func TestManuscriptText(t *testing.T) {
	state := NewGenerationState("Stub Book", "thriller")
	state.AppendChapter("Chapter 1: One\n\nfirst", "s1", "m1")
	state.AppendChapter("Chapter 2: Two\n\nsecond", "s2", "m2")

	want := "Stub Book\n\nChapter 1: One\n\nfirst\n\nChapter 2: Two\n\nsecond\n"
	assert.Equal(t, want, state.ManuscriptText())
}

func TestConsistent(t *testing.T) {
	state := NewGenerationState("Stub Book", "thriller")
	state.Chapters = append(state.Chapters, "orphan chapter")
	assert.False(t, state.Consistent())
}
