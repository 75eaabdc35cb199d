package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/testutil"
)

func TestSanitizeDropsOperatorKeys(t *testing.T) {
	got := Sanitize(map[string]interface{}{
		"type":   "page_view",
		"$where": "sleep(1000)",
		"$set":   map[string]interface{}{"role": "admin"},
		"a$b":    1,
	})

	assert.Equal(t, map[string]interface{}{"type": "page_view", "a$b": 1}, got)
}

func TestRecordAnalyticsEvent(t *testing.T) {
	db := testutil.DB(t)
	svc := NewAnalyticsService(db)
	now := time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	row, err := svc.Record(context.Background(), map[string]interface{}{
		"type":      "lesson_open",
		"sessionId": "s-1",
		"url":       "/Lesson/a1/alfabeto/",
		"$where":    "1==1",
		"extra":     map[string]interface{}{"n": 2},
	})
	require.NoError(t, err)

	var stored models.AnalyticsEvent
	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	assert.Equal(t, "lesson_open", stored.Type)
	assert.Equal(t, "s-1", stored.SessionID)
	assert.Equal(t, "/Lesson/a1/alfabeto/", stored.URL)
	assert.True(t, stored.ServerTimestamp.Equal(now))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(stored.Payload, &payload))
	assert.NotContains(t, payload, "$where")
	assert.Contains(t, payload, "serverTimestamp")
	assert.Equal(t, map[string]interface{}{"n": float64(2)}, payload["extra"])
}

func TestRecordView(t *testing.T) {
	db := testutil.DB(t)
	auth := NewAuthService(db, testutil.Config(), nil)
	resp, err := auth.Register(context.Background(), &dto.RegisterRequest{Username: "mateo", Email: "mateo@example.com", Password: "secret123"})
	require.NoError(t, err)

	svc := NewProgressService(db)
	now := time.Date(2024, 4, 2, 18, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	err = svc.RecordView(context.Background(), resp.User.ID, &dto.ProgressViewRequest{LessonID: "alfabeto", Title: "El alfabeto"})
	assert.ErrorIs(t, err, ErrMissingLessonData)

	require.NoError(t, svc.RecordView(context.Background(), resp.User.ID, &dto.ProgressViewRequest{
		LessonID: "alfabeto", Title: "El alfabeto", URL: "/Lesson/a1/alfabeto/",
	}))

	user, err := auth.GetUser(context.Background(), resp.User.ID)
	require.NoError(t, err)
	last := user.Stats.LastViewedLesson
	assert.Equal(t, "alfabeto", last.LessonID)
	assert.Equal(t, "El alfabeto", last.Title)
	assert.Equal(t, "/Lesson/a1/alfabeto/", last.URL)
	require.NotNil(t, last.Timestamp)
	assert.True(t, last.Timestamp.Equal(now))
	require.NotNil(t, user.Stats.LastActivity)
	assert.True(t, user.Stats.LastActivity.Equal(now))
}
