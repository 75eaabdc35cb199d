package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription is a browser web-push endpoint.
type Subscription struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID    *uuid.UUID       `gorm:"type:uuid;index" json:"userId"`
	Endpoint  string           `gorm:"type:text;not null;uniqueIndex" json:"endpoint"`
	Keys      SubscriptionKeys `gorm:"embedded;embeddedPrefix:key_" json:"keys"`
	UserAgent string           `gorm:"type:text" json:"userAgent"`
	CreatedAt time.Time        `json:"createdAt"`
}

type SubscriptionKeys struct {
	P256dh string `gorm:"size:255;not null" json:"p256dh"`
	Auth   string `gorm:"size:255;not null" json:"auth"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
