package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMissingLessonData = errors.New("missing lesson data")

type ProgressService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db, now: time.Now}
}

// RecordView stores the lesson the user last opened and stamps activity.
func (s *ProgressService) RecordView(ctx context.Context, userID uuid.UUID, req *dto.ProgressViewRequest) error {
	if err := validation.Struct(req); err != nil {
		return ErrMissingLessonData
	}

	now := s.now().UTC()
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"stats_last_viewed_id":        req.LessonID,
			"stats_last_viewed_title":     req.Title,
			"stats_last_viewed_url":       req.URL,
			"stats_last_viewed_timestamp": now,
			"stats_last_activity":         now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record progress: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
