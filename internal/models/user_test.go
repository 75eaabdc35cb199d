package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestUpdateStreak(t *testing.T) {
	tests := []struct {
		name         string
		stats        UserStats
		now          time.Time
		wantStreak   int
		wantLongest  int
		wantTotalDay int
	}{
		{
			name:         "first activity",
			now:          day(2024, 3, 10, 9),
			wantStreak:   1,
			wantLongest:  1,
			wantTotalDay: 1,
		},
		{
			name:         "same day keeps streak",
			stats:        UserStats{Streak: 4, LongestStreak: 6, TotalDays: 9, LastActivity: ptr(day(2024, 3, 10, 1))},
			now:          day(2024, 3, 10, 23),
			wantStreak:   4,
			wantLongest:  6,
			wantTotalDay: 9,
		},
		{
			name:         "same day lifts zero streak to one",
			stats:        UserStats{Streak: 0, TotalDays: 3, LastActivity: ptr(day(2024, 3, 10, 1))},
			now:          day(2024, 3, 10, 5),
			wantStreak:   1,
			wantLongest:  1,
			wantTotalDay: 3,
		},
		{
			name:         "next day extends streak",
			stats:        UserStats{Streak: 4, LongestStreak: 4, TotalDays: 9, LastActivity: ptr(day(2024, 3, 10, 23))},
			now:          day(2024, 3, 11, 0),
			wantStreak:   5,
			wantLongest:  5,
			wantTotalDay: 10,
		},
		{
			name:         "gap resets streak",
			stats:        UserStats{Streak: 7, LongestStreak: 7, TotalDays: 20, LastActivity: ptr(day(2024, 3, 1, 12))},
			now:          day(2024, 3, 3, 12),
			wantStreak:   1,
			wantLongest:  7,
			wantTotalDay: 21,
		},
		{
			name:         "month boundary counts as next day",
			stats:        UserStats{Streak: 2, LongestStreak: 3, TotalDays: 5, LastActivity: ptr(day(2024, 2, 29, 18))},
			now:          day(2024, 3, 1, 6),
			wantStreak:   3,
			wantLongest:  3,
			wantTotalDay: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Stats: tt.stats}
			got := u.UpdateStreak(tt.now)

			assert.Equal(t, tt.wantStreak, got)
			assert.Equal(t, tt.wantStreak, u.Stats.Streak)
			assert.Equal(t, tt.wantLongest, u.Stats.LongestStreak)
			assert.Equal(t, tt.wantTotalDay, u.Stats.TotalDays)
			if assert.NotNil(t, u.Stats.LastActivity) {
				assert.True(t, u.Stats.LastActivity.Equal(tt.now))
			}
		})
	}
}

func TestUpdateStreakUsesUTCDays(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 23:00 EST on the 10th is 04:00 UTC on the 11th.
	last := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	u := &User{Stats: UserStats{Streak: 1, LongestStreak: 1, TotalDays: 1, LastActivity: &last}}

	got := u.UpdateStreak(time.Date(2024, 3, 10, 23, 0, 0, 0, est))

	assert.Equal(t, 2, got)
	assert.Equal(t, 2, u.Stats.TotalDays)
}

func TestNewUserDefaults(t *testing.T) {
	u := NewUser("ana", "ana@example.com", "hash")

	assert.Equal(t, "user", u.Role)
	assert.True(t, u.IsActive)
	assert.Equal(t, "A1", u.Profile.Level)
	assert.Equal(t, "es", u.Preferences.Language)
	assert.Equal(t, "medium", u.Preferences.FontSize)
	assert.Equal(t, 10, u.Preferences.DailyGoal)
	assert.False(t, u.IsAdmin())
}

func ptr(t time.Time) *time.Time { return &t }
