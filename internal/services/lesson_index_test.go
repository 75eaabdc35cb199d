package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLessonIndex(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("a1_lessons.json", `{"alfabeto":{"title":"El alfabeto","content":"<p>A B C</p>"},"saludos":{"title":"Saludos","content":"Merhaba"}}`)
	write("b1_lessons.json", `{"saludos":{"title":"Saludos formales","content":"İyi günler"}}`)

	index, err := LoadLessonIndex(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, index.Len())
	lesson, ok := index.Lookup("saludos")
	require.True(t, ok)
	assert.Equal(t, "Saludos formales", lesson.Title)
	_, ok = index.Lookup("missing")
	assert.False(t, ok)
}

func TestLoadLessonIndexRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a2_lessons.json"), []byte(`[not json`), 0o644))

	_, err := LoadLessonIndex(dir)
	assert.Error(t, err)
}

func TestNilLessonIndex(t *testing.T) {
	var index *LessonIndex
	assert.Zero(t, index.Len())
	_, ok := index.Lookup("x")
	assert.False(t, ok)
}
