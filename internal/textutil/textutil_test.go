package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "plain words", text: "the quick brown fox", want: 4},
		{name: "apostrophes stay one word", text: "don't stop", want: 2},
		{name: "digits count", text: "chapter 12 begins", want: 3},
		{name: "punctuation splits", text: "end.start--again", want: 3},
		{name: "newlines and tabs", text: "one\ntwo\tthree", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.text))
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple title", title: "Null Meridian", want: "null_meridian"},
		{name: "apostrophe folded", title: "The Starcartographer's Oath", want: "the_starcartographer_s_oath"},
		{name: "leading trailing stripped", title: "  Theater of Tides!  ", want: "theater_of_tides"},
		{name: "digits kept", title: "Book 2", want: "book_2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.title))
		})
	}
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "", TruncateByRunes("abc", 0))
	assert.Equal(t, "abc", TruncateByRunes("abc", 10))
	assert.Equal(t, "ab", TruncateByRunes("abcd", 2))
	// 多字节字符不被截断在中间
	assert.Equal(t, "星图", TruncateByRunes("星图师", 2))
}
