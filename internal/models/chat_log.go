package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatLog is a snapshot of one chat turn.
type ChatLog struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID        *uuid.UUID      `gorm:"type:uuid;index" json:"userId"`
	Username      string          `gorm:"size:255;default:'Guest'" json:"username"`
	UserMessage   string          `gorm:"type:text;not null" json:"userMessage"`
	AIResponse    string          `gorm:"type:text;not null" json:"aiResponse"`
	Context       datatypes.JSON  `json:"context"`
	LessonContext string          `gorm:"type:text" json:"lessonContext"`
	Metadata      ChatLogMetadata `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`
	Timestamp     time.Time       `gorm:"not null;index" json:"timestamp"`
}

type ChatLogMetadata struct {
	IP        string `gorm:"size:64" json:"ip"`
	UserAgent string `gorm:"type:text" json:"userAgent"`
}

func (l *ChatLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	if l.Username == "" {
		l.Username = "Guest"
	}
	return nil
}
