package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/database"
)

// DB returns a migrated in-memory SQLite database private to tb.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}

	// SQLite allows one writer; a single connection avoids "table is locked".
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// Config returns a configuration suitable for tests: no external services,
// a fixed JWT secret.
func Config() *config.Config {
	return &config.Config{
		AppEnv:        "test",
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		GroqModel:     "llama-3.3-70b-versatile",
		AITimeout:     5 * time.Second,
		VAPIDSubject:  "mailto:test@example.com",
		CORSOrigins:   "*",
		SiteDir:       "_site",
		LessonDataDir: "testdata",
	}
}
