package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LessonStatusPublished = "published"
	LessonSourceCommunity = "community"
)

// Lesson is addressed externally by LessonID (serialized as "id"); the
// primary key is internal.
type Lesson struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	LessonID    string    `gorm:"column:lesson_id;size:255;not null;uniqueIndex" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Level       string    `gorm:"size:2;index" json:"level"`
	Author      string    `gorm:"size:255" json:"author"`
	Description string    `gorm:"type:text" json:"description"`
	Content     string    `gorm:"type:text" json:"content"`
	Status      string    `gorm:"size:20;not null;default:'published';index" json:"status"`
	Source      string    `gorm:"size:30" json:"source,omitempty"`
	PublishedAt time.Time `gorm:"index" json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = LessonStatusPublished
	}
	if l.PublishedAt.IsZero() {
		l.PublishedAt = time.Now().UTC()
	}
	return nil
}
