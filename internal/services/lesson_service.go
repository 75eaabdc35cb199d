package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"gorm.io/gorm"
)

var ErrLessonNotFound = errors.New("lesson not found")

type LessonService struct {
	db *gorm.DB
}

func NewLessonService(db *gorm.DB) *LessonService {
	return &LessonService{db: db}
}

// List returns published lessons, newest first.
func (s *LessonService) List(ctx context.Context) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.LessonStatusPublished).
		Order("published_at DESC").
		Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (s *LessonService) Get(ctx context.Context, lessonID string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := s.db.WithContext(ctx).Where("lesson_id = ?", lessonID).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

func (s *LessonService) Delete(ctx context.Context, lessonID string) error {
	result := s.db.WithContext(ctx).Where("lesson_id = ?", lessonID).Delete(&models.Lesson{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete lesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

// upsertLesson writes lesson keyed by its external id. Existing rows keep
// their primary key and creation time.
func upsertLesson(tx *gorm.DB, lesson *models.Lesson) error {
	var existing models.Lesson
	err := tx.Where("lesson_id = ?", lesson.LessonID).First(&existing).Error
	switch {
	case err == nil:
		lesson.ID = existing.ID
		lesson.CreatedAt = existing.CreatedAt
		return tx.Save(lesson).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return tx.Create(lesson).Error
	default:
		return err
	}
}
