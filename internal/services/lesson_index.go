package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

var lessonLevelFiles = []string{
	"a1_lessons.json",
	"a2_lessons.json",
	"b1_lessons.json",
	"b2_lessons.json",
	"c1_lessons.json",
}

// IndexedLesson is a static lesson entry keyed by its URL slug.
type IndexedLesson struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description,omitempty"`
}

// LessonIndex is the read-only set of static lessons used as chat context.
type LessonIndex struct {
	lessons map[string]IndexedLesson
}

func NewLessonIndex(lessons map[string]IndexedLesson) *LessonIndex {
	if lessons == nil {
		lessons = map[string]IndexedLesson{}
	}
	return &LessonIndex{lessons: lessons}
}

// LoadLessonIndex merges the per-level lesson files in dir. Missing files are
// skipped; later levels win on duplicate slugs.
func LoadLessonIndex(dir string) (*LessonIndex, error) {
	merged := make(map[string]IndexedLesson)
	for _, name := range lessonLevelFiles {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("lesson data file missing", "file", name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var level map[string]IndexedLesson
		if err := json.Unmarshal(raw, &level); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		for slug, lesson := range level {
			merged[slug] = lesson
		}
	}
	return NewLessonIndex(merged), nil
}

func (i *LessonIndex) Lookup(slug string) (IndexedLesson, bool) {
	if i == nil {
		return IndexedLesson{}, false
	}
	l, ok := i.lessons[slug]
	return l, ok
}

func (i *LessonIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.lessons)
}
