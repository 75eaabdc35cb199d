package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ContributionLessonEdit = "lesson_edit"
	ContributionBookUpload = "book_upload"

	ContributionPending  = "pending"
	ContributionApproved = "approved"
	ContributionRejected = "rejected"
)

var (
	ContributionTypes    = []string{ContributionLessonEdit, ContributionBookUpload}
	ContributionStatuses = []string{ContributionPending, ContributionApproved, ContributionRejected}
)

// Contribution is a user proposal awaiting review. SubmittedBy is a copy of
// the submitter at submission time, not a reference.
type Contribution struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"_id"`
	Type        string         `gorm:"size:20;not null;index" json:"type"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	SubmittedBy Submitter      `gorm:"embedded;embeddedPrefix:submitted_by_" json:"submittedBy"`
	Data        datatypes.JSON `json:"data"`
	ReviewNote  string         `gorm:"type:text" json:"reviewNote,omitempty"`
	SubmittedAt time.Time      `gorm:"index" json:"submittedAt"`
	ProcessedAt *time.Time     `json:"processedAt,omitempty"`
}

type Submitter struct {
	ID       string `gorm:"size:64" json:"id"`
	Username string `gorm:"size:255" json:"username"`
	Email    string `gorm:"size:255" json:"email"`
}

func (c *Contribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ContributionPending
	}
	if c.SubmittedAt.IsZero() {
		c.SubmittedAt = time.Now().UTC()
	}
	if len(c.Data) == 0 {
		c.Data = datatypes.JSON("{}")
	}
	return nil
}
