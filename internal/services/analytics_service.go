package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db, now: time.Now}
}

// Sanitize drops top-level keys starting with "$" so stored payloads can
// never carry query operators.
func Sanitize(event map[string]interface{}) map[string]interface{} {
	clean := make(map[string]interface{}, len(event))
	for k, v := range event {
		if strings.HasPrefix(k, "$") {
			continue
		}
		clean[k] = v
	}
	return clean
}

// Record stores one client event.
func (s *AnalyticsService) Record(ctx context.Context, event map[string]interface{}) (*models.AnalyticsEvent, error) {
	clean := Sanitize(event)
	now := s.now().UTC()
	clean["serverTimestamp"] = now

	payload, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}

	row := &models.AnalyticsEvent{
		Payload:         datatypes.JSON(payload),
		ServerTimestamp: now,
	}
	row.Type, _ = clean["type"].(string)
	row.SessionID, _ = clean["sessionId"].(string)
	row.URL, _ = clean["url"].(string)

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to save event: %w", err)
	}
	return row, nil
}
