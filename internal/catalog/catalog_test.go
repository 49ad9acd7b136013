package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	books, err := Load("")
	require.NoError(t, err)
	require.Len(t, books, 3)

	genres := []string{books[0].Genre, books[1].Genre, books[2].Genre}
	assert.Equal(t, []string{"thriller", "romance", "fantasy"}, genres)

	for _, b := range books {
		assert.NotEmpty(t, b.Title)
		assert.NotEmpty(t, b.Premise)
		assert.NotEmpty(t, b.Tone)
		assert.Len(t, b.ChapterPlans, 24)
	}

	assert.Equal(t, "Null Meridian", books[0].Title)
}

func TestLoadExternalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.yaml")
	content := `books:
  - genre: mystery
    title: "Test Book"
    premise: "A premise."
    tone: "dry"
    chapter_plans:
      - "Something happens."
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	books, err := Load(path)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Test Book", books[0].Title)
	assert.Equal(t, "mystery", books[0].Genre)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty catalog", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "books.yaml")
		require.NoError(t, os.WriteFile(path, []byte("books: []\n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("book without plans", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "books.yaml")
		content := `books:
  - genre: mystery
    title: "No Plans"
    premise: "A premise."
    tone: "dry"
    chapter_plans: []
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
