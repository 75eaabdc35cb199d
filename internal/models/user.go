package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ValidLevels = []string{"A1", "A2", "B1", "B2", "C1"}

// User is a learner account. Username and email are stored lowercase so the
// unique indexes enforce case-insensitive uniqueness.
type User struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"_id"`
	Username    string          `gorm:"size:20;not null;uniqueIndex" json:"username"`
	Email       string          `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password    string          `gorm:"not null" json:"-"`
	GoogleID    *string         `gorm:"size:255;uniqueIndex" json:"-"`
	Role        string          `gorm:"size:20;not null;default:'user'" json:"role"`
	IsActive    bool            `gorm:"not null;default:true" json:"isActive"`
	Profile     UserProfile     `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
	Preferences UserPreferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	Stats       UserStats       `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type UserProfile struct {
	FirstName string `gorm:"size:50" json:"firstName"`
	LastName  string `gorm:"size:50" json:"lastName"`
	Level     string `gorm:"size:2;default:'A1'" json:"level"`
	Avatar    string `gorm:"type:text" json:"avatar"`
	Bio       string `gorm:"size:500" json:"bio"`
}

type UserPreferences struct {
	DarkMode      bool   `gorm:"default:false" json:"darkMode"`
	Language      string `gorm:"size:2;default:'es'" json:"language"`
	FontSize      string `gorm:"size:10;default:'medium'" json:"fontSize"`
	Notifications bool   `gorm:"default:true" json:"notifications"`
	Sound         bool   `gorm:"default:true" json:"sound"`
	DailyGoal     int    `gorm:"default:10" json:"dailyGoal"`
}

type UserStats struct {
	Streak           int              `gorm:"default:0" json:"streak"`
	LongestStreak    int              `gorm:"default:0" json:"longestStreak"`
	TotalDays        int              `gorm:"default:0" json:"totalDays"`
	LastActivity     *time.Time       `json:"lastActivity"`
	LastViewedLesson LastViewedLesson `gorm:"embedded;embeddedPrefix:last_viewed_" json:"lastViewedLesson"`
}

type LastViewedLesson struct {
	LessonID  string     `gorm:"column:id;size:255" json:"id"`
	Title     string     `gorm:"size:255" json:"title"`
	URL       string     `gorm:"type:text" json:"url"`
	Timestamp *time.Time `json:"timestamp"`
}

// StreakInfo is the client-facing streak summary.
type StreakInfo struct {
	Current      int        `json:"current"`
	Longest      int        `json:"longest"`
	TotalDays    int        `json:"totalDays"`
	LastActivity *time.Time `json:"lastActivity"`
}

// NewUser returns a user with the default profile and preferences set.
func NewUser(username, email, passwordHash string) *User {
	return &User{
		Username: username,
		Email:    email,
		Password: passwordHash,
		Role:     "user",
		IsActive: true,
		Profile:  UserProfile{Level: "A1"},
		Preferences: UserPreferences{
			Language:      "es",
			FontSize:      "medium",
			Notifications: true,
			Sound:         true,
			DailyGoal:     10,
		},
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if u.Profile.Level == "" {
		u.Profile.Level = "A1"
	}
	return nil
}

// UpdateStreak records activity at now and returns the current streak.
// Days are compared as UTC calendar dates.
func (u *User) UpdateStreak(now time.Time) int {
	today := truncateDay(now)
	s := &u.Stats

	switch {
	case s.LastActivity == nil:
		s.Streak = 1
		s.TotalDays++
	default:
		last := truncateDay(*s.LastActivity)
		days := int(today.Sub(last).Hours() / 24)
		switch {
		case days <= 0:
			if s.Streak == 0 {
				s.Streak = 1
			}
		case days == 1:
			s.Streak++
			s.TotalDays++
		default:
			s.Streak = 1
			s.TotalDays++
		}
	}

	if s.Streak > s.LongestStreak {
		s.LongestStreak = s.Streak
	}
	ts := now.UTC()
	s.LastActivity = &ts
	return s.Streak
}

func (u *User) StreakInfo() StreakInfo {
	return StreakInfo{
		Current:      u.Stats.Streak,
		Longest:      u.Stats.LongestStreak,
		TotalDays:    u.Stats.TotalDays,
		LastActivity: u.Stats.LastActivity,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
