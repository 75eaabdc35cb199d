package dto

import "github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// UpdateProfileRequest carries partial updates; nil fields are left unchanged.
type UpdateProfileRequest struct {
	Profile     *ProfileUpdate     `json:"profile"`
	Preferences *PreferencesUpdate `json:"preferences"`
}

type ProfileUpdate struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,max=50"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	Level     *string `json:"level" validate:"omitempty,oneof=A1 A2 B1 B2 C1"`
	Avatar    *string `json:"avatar" validate:"omitempty,max=2048"`
}

type PreferencesUpdate struct {
	DarkMode      *bool   `json:"darkMode"`
	Language      *string `json:"language" validate:"omitempty,oneof=es en tr"`
	FontSize      *string `json:"fontSize" validate:"omitempty,oneof=small medium large"`
	Notifications *bool   `json:"notifications"`
	Sound         *bool   `json:"sound"`
	DailyGoal     *int    `json:"dailyGoal" validate:"omitempty,min=1,max=100"`
}

type AuthResponse struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    *models.User       `json:"user"`
	Streak  *models.StreakInfo `json:"streak,omitempty"`
}

type UserResponse struct {
	Message string             `json:"message,omitempty"`
	User    *models.User       `json:"user"`
	Streak  *models.StreakInfo `json:"streak,omitempty"`
}

type StreakResponse struct {
	Message       string            `json:"message,omitempty"`
	Streak        models.StreakInfo `json:"streak"`
	CurrentStreak int               `json:"currentStreak,omitempty"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	DB          string `json:"db"`
	LessonCount int    `json:"lesson_count"`
}
