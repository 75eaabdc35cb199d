package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalyticsEvent is a schemaless client event. Type, SessionID and URL are
// copied out of Payload when present so they can be indexed.
type AnalyticsEvent struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"_id"`
	Type            string         `gorm:"size:100;index" json:"type,omitempty"`
	SessionID       string         `gorm:"size:255;index" json:"sessionId,omitempty"`
	URL             string         `gorm:"type:text" json:"url,omitempty"`
	Payload         datatypes.JSON `gorm:"not null" json:"payload"`
	ServerTimestamp time.Time      `gorm:"not null;index" json:"serverTimestamp"`
}

func (AnalyticsEvent) TableName() string { return "analytics" }

func (e *AnalyticsEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
