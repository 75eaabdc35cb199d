package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/testutil"
)

func TestPGHandlerPersistsErrors(t *testing.T) {
	db := testutil.DB(t)
	h := NewPGHandler(db)
	logger := slog.New(h).With("trace_id", "req-1")

	logger.Info("ignored")
	logger.Error("chat failed",
		"action", "chat",
		"path", "/api/chat",
		"error", "upstream timeout",
		"latency_ms", 1250,
		"model", "llama",
	)
	h.Stop()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "ERROR", row.Level)
	assert.Equal(t, "chat failed", row.Message)
	assert.Equal(t, "req-1", row.TraceID)
	assert.Equal(t, "chat", row.Action)
	assert.Equal(t, "/api/chat", row.Path)
	assert.Equal(t, "upstream timeout", row.Error)
	assert.Equal(t, 1250, row.LatencyMs)
	assert.JSONEq(t, `{"model":"llama"}`, string(row.Extra))
}

func TestPGHandlerStopIsIdempotent(t *testing.T) {
	h := NewPGHandler(testutil.DB(t))
	h.Stop()
	assert.NotPanics(t, h.Stop)
}

type recordingHandler struct {
	level   slog.Level
	err     error
	records []slog.Record
}

func (r *recordingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= r.level }
func (r *recordingHandler) Handle(_ context.Context, rec slog.Record) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}
func (r *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recordingHandler) WithGroup(string) slog.Handler      { return r }

func TestCombineRoutesByLevel(t *testing.T) {
	info := &recordingHandler{level: slog.LevelInfo}
	errs := &recordingHandler{level: slog.LevelError}
	logger := slog.New(Combine(info, errs))

	logger.Debug("dropped")
	logger.Info("hello")
	logger.Error("boom")

	assert.Len(t, info.records, 2)
	require.Len(t, errs.records, 1)
	assert.Equal(t, "boom", errs.records[0].Message)
}

func TestCombineKeepsWritingAfterHandlerFailure(t *testing.T) {
	stdoutErr := errors.New("stdout closed")
	broken := &recordingHandler{level: slog.LevelInfo, err: stdoutErr}
	store := &recordingHandler{level: slog.LevelError}
	h := Combine(broken, store)

	rec := slog.NewRecord(time.Now(), slog.LevelError, "chat failed", 0)
	err := h.Handle(context.Background(), rec)

	assert.ErrorIs(t, err, stdoutErr)
	require.Len(t, store.records, 1)
	assert.Equal(t, "chat failed", store.records[0].Message)
}

func TestCombineSkipsNilHandlers(t *testing.T) {
	only := &recordingHandler{level: slog.LevelInfo}
	assert.Same(t, only, Combine(nil, only))
}

func TestPurgeOlderThan(t *testing.T) {
	db := testutil.DB(t)
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -31), Level: "ERROR", Message: "old"}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -1), Level: "ERROR", Message: "recent"}).Error)

	deleted, err := PurgeOlderThan(db, DefaultRetention, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "recent", rows[0].Message)
}
