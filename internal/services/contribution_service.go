package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/validation"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrContributionNotFound = errors.New("contribution not found")
	ErrInvalidID            = errors.New("invalid id")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidContribution  = errors.New("invalid data")
)

type ContributionService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewContributionService(db *gorm.DB) *ContributionService {
	return &ContributionService{db: db, now: time.Now}
}

func (s *ContributionService) List(ctx context.Context) ([]models.Contribution, error) {
	return s.find(ctx, "")
}

func (s *ContributionService) ListPending(ctx context.Context) ([]models.Contribution, error) {
	return s.find(ctx, models.ContributionPending)
}

func (s *ContributionService) find(ctx context.Context, status string) ([]models.Contribution, error) {
	q := s.db.WithContext(ctx).Order("submitted_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var items []models.Contribution
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	return items, nil
}

// Create stores a new pending contribution. When claims is non-nil the
// submitter snapshot comes from the token instead of the body.
func (s *ContributionService) Create(ctx context.Context, claims *authctx.Claims, req *dto.CreateContributionRequest) (*models.Contribution, error) {
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContribution, err)
	}

	data := datatypes.JSON("{}")
	if len(req.Data) > 0 && string(req.Data) != "null" {
		var probe map[string]interface{}
		if err := json.Unmarshal(req.Data, &probe); err != nil {
			return nil, fmt.Errorf("%w: data must be an object", ErrInvalidContribution)
		}
		data = datatypes.JSON(req.Data)
	}

	item := &models.Contribution{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.ContributionPending,
		Data:        data,
		SubmittedAt: s.now().UTC(),
	}
	switch {
	case claims != nil:
		item.SubmittedBy = models.Submitter{
			ID:       claims.UserID.String(),
			Username: claims.Username,
			Email:    claims.Email,
		}
	case req.SubmittedBy != nil:
		item.SubmittedBy = *req.SubmittedBy
	}

	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create contribution: %w", err)
	}
	return item, nil
}

func (s *ContributionService) Delete(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return ErrInvalidID
	}
	result := s.db.WithContext(ctx).Delete(&models.Contribution{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete contribution: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrContributionNotFound
	}
	return nil
}

// UpdateStatus moves a contribution to req.Status. Approving a lesson_edit
// publishes its lesson in the same transaction as the status write.
func (s *ContributionService) UpdateStatus(ctx context.Context, rawID string, req *dto.UpdateStatusRequest) (*models.Contribution, *models.Lesson, error) {
	if !slices.Contains(models.ContributionStatuses, req.Status) {
		return nil, nil, ErrInvalidStatus
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, nil, ErrInvalidID
	}

	var (
		item   models.Contribution
		lesson *models.Lesson
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContributionNotFound
			}
			return err
		}

		now := s.now().UTC()
		item.Status = req.Status
		item.ProcessedAt = &now
		if req.Reason != "" {
			item.ReviewNote = req.Reason
		}
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		if req.Status != models.ContributionApproved || item.Type != models.ContributionLessonEdit {
			return nil
		}
		built, err := lessonFromContribution(&item, req.FinalContent, now)
		if err != nil {
			return err
		}
		if err := upsertLesson(tx, built); err != nil {
			return fmt.Errorf("failed to publish lesson: %w", err)
		}
		lesson = built
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrContributionNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to update contribution: %w", err)
	}
	return &item, lesson, nil
}

func lessonFromContribution(item *models.Contribution, finalContent string, now time.Time) (*models.Lesson, error) {
	data, err := decodeLessonEdit(item.Data)
	if err != nil {
		return nil, err
	}

	lessonID := data.LessonID
	if lessonID == "" {
		lessonID = fmt.Sprintf("lesson-%d", now.UnixMilli())
	}
	content := data.NewContent
	if finalContent != "" {
		content = finalContent
	}
	author := item.SubmittedBy.Username
	if author == "" {
		author = "Community"
	}
	title := data.LessonTitle
	if title == "" {
		title = item.Title
	}

	return &models.Lesson{
		LessonID:    lessonID,
		Title:       title,
		Level:       lessonLevel(data.Level),
		Author:      author,
		Description: data.Description,
		Content:     content,
		Status:      models.LessonStatusPublished,
		Source:      models.LessonSourceCommunity,
		PublishedAt: now,
	}, nil
}

// decodeLessonEdit reads a stored lesson_edit payload. Scalar values are
// accepted for the string fields so a numeric lessonId still approves.
func decodeLessonEdit(raw []byte) (dto.LessonEditData, error) {
	var data dto.LessonEditData
	if len(raw) == 0 {
		return data, nil
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return data, fmt.Errorf("failed to decode lesson data: %w", err)
	}
	data.LessonID = scalarString(fields["lessonId"])
	data.LessonTitle = scalarString(fields["lessonTitle"])
	data.Level = scalarString(fields["level"])
	data.Description = scalarString(fields["description"])
	data.NewContent = scalarString(fields["newContent"])
	return data, nil
}

func scalarString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64, bool:
		return fmt.Sprint(x)
	default:
		return ""
	}
}

// lessonLevel keeps level only when it is one of the CEFR codes lessons use.
func lessonLevel(level string) string {
	level = strings.ToUpper(strings.TrimSpace(level))
	if slices.Contains(models.ValidLevels, level) {
		return level
	}
	return ""
}
