package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"gorm.io/gorm"
)

const DefaultRetention = 30 * 24 * time.Hour

// PurgeOlderThan deletes system log rows written before now minus retention.
func PurgeOlderThan(db *gorm.DB, retention time.Duration, now time.Time) (int64, error) {
	result := db.Where("timestamp < ?", now.Add(-retention)).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup purges expired system logs once a day until done is closed.
func StartCleanup(db *gorm.DB, retention time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := PurgeOlderThan(db, retention, time.Now())
				if err != nil {
					slog.Warn("log cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}
