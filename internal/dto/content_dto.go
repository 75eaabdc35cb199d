package dto

import (
	"encoding/json"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
)

type CreateContributionRequest struct {
	Type        string            `json:"type" validate:"required,oneof=lesson_edit book_upload"`
	Title       string            `json:"title" validate:"required,max=255"`
	Description string            `json:"description"`
	SubmittedBy *models.Submitter `json:"submittedBy"`
	Data        json.RawMessage   `json:"data"`
}

type UpdateStatusRequest struct {
	Status       string `json:"status"`
	Reason       string `json:"reason"`
	FinalContent string `json:"finalContent"`
}

type ContributionStatusResponse struct {
	Success      bool                 `json:"success"`
	Contribution *models.Contribution `json:"contribution"`
	Lesson       *models.Lesson       `json:"lesson,omitempty"`
}

// LessonEditData is the data payload of a lesson_edit contribution.
type LessonEditData struct {
	LessonID    string `json:"lessonId"`
	LessonTitle string `json:"lessonTitle"`
	Level       string `json:"level"`
	Description string `json:"description"`
	NewContent  string `json:"newContent"`
}

type ProgressViewRequest struct {
	LessonID string `json:"lessonId" validate:"required"`
	Title    string `json:"title" validate:"required"`
	URL      string `json:"url" validate:"required"`
}
