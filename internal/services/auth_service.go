package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found or inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrGoogleNotEnabled   = errors.New("google sign-in is not configured")
	ErrInvalidGoogleToken = errors.New("invalid google token")
)

var nonWordChars = regexp.MustCompile(`\W+`)

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	google GoogleVerifier
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, google GoogleVerifier) *AuthService {
	return &AuthService{
		db:     db,
		cfg:    cfg,
		google: google,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(req.Username, req.Email, string(hash))
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent registration.
			if cerr := s.checkAvailable(ctx, req.Username, req.Email); cerr != nil {
				return nil, cerr
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Message: "User registered successfully", Token: token, User: user}, nil
}

func (s *AuthService) checkAvailable(ctx context.Context, username, email string) error {
	var existing models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", email, username).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing.Email == email {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	identifier := strings.ToLower(strings.TrimSpace(req.Identifier))
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", identifier, identifier).
		First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.completeLogin(ctx, &user, "Login successful")
}

// LoginWithGoogle signs in with a Google ID token, linking by email or creating
// the account on first use.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*dto.AuthResponse, error) {
	if s.cfg.GoogleClientID == "" || s.google == nil {
		return nil, ErrGoogleNotEnabled
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrInvalidGoogleToken
	}

	identity, err := s.google.Verify(ctx, idToken, s.cfg.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, ErrInvalidGoogleToken
	}
	email := strings.ToLower(identity.Email)

	var user models.User
	err = s.db.WithContext(ctx).Where("google_id = ?", identity.Subject).First(&user).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
		switch {
		case err == nil:
			if err := s.linkGoogle(ctx, &user, identity); err != nil {
				return nil, err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			created, cerr := s.createGoogleUser(ctx, identity, email)
			if cerr != nil {
				return nil, cerr
			}
			user = *created
		default:
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return s.completeLogin(ctx, &user, "Google login successful")
}

func (s *AuthService) createGoogleUser(ctx context.Context, identity *GoogleIdentity, email string) (*models.User, error) {
	throwaway, err := randomString(24)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(throwaway), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	firstName, lastName := "User", ""
	if name := strings.TrimSpace(identity.Name); name != "" {
		parts := strings.SplitN(name, " ", 2)
		firstName = parts[0]
		if len(parts) == 2 {
			lastName = parts[1]
		}
	}

	base := nonWordChars.ReplaceAllString(strings.Split(email, "@")[0], "")
	if len(base) > 16 {
		base = base[:16]
	}
	if len(base) < 3 {
		base = "user" + base
	}

	subject := identity.Subject
	for attempt := 0; attempt < 5; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(1000))
		if err != nil {
			return nil, err
		}
		user := models.NewUser(fmt.Sprintf("%s%d", base, n.Int64()), email, string(hash))
		user.GoogleID = &subject
		user.Profile.FirstName = firstName
		user.Profile.LastName = lastName
		user.Profile.Avatar = identity.Picture

		err = s.db.WithContext(ctx).Create(user).Error
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create google user: %w", err)
		}

		// A concurrent sign-in or registration may have claimed the email
		// or subject; use that account instead of picking another username.
		var existing models.User
		err = s.db.WithContext(ctx).
			Where("email = ? OR google_id = ?", email, subject).
			First(&existing).Error
		if err == nil {
			if existing.GoogleID == nil {
				if err := s.linkGoogle(ctx, &existing, identity); err != nil {
					return nil, err
				}
			}
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
	}
	return nil, ErrUsernameTaken
}

func (s *AuthService) linkGoogle(ctx context.Context, user *models.User, identity *GoogleIdentity) error {
	subject := identity.Subject
	user.GoogleID = &subject
	if user.Profile.Avatar == "" {
		user.Profile.Avatar = identity.Picture
	}
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to link google account: %w", err)
	}
	return nil
}

func (s *AuthService) completeLogin(ctx context.Context, user *models.User, message string) (*dto.AuthResponse, error) {
	user.UpdateStreak(s.now())
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	streak := user.StreakInfo()
	return &dto.AuthResponse{Message: message, Token: token, User: user, Streak: &streak}, nil
}

// GetUser returns an active user by id.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("stats_last_activity", s.now().UTC()).Error
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if p := req.Profile; p != nil {
		setString(&user.Profile.FirstName, p.FirstName)
		setString(&user.Profile.LastName, p.LastName)
		setString(&user.Profile.Bio, p.Bio)
		setString(&user.Profile.Level, p.Level)
		setString(&user.Profile.Avatar, p.Avatar)
	}
	if p := req.Preferences; p != nil {
		setBool(&user.Preferences.DarkMode, p.DarkMode)
		setString(&user.Preferences.Language, p.Language)
		setString(&user.Preferences.FontSize, p.FontSize)
		setBool(&user.Preferences.Notifications, p.Notifications)
		setBool(&user.Preferences.Sound, p.Sound)
		if p.DailyGoal != nil {
			user.Preferences.DailyGoal = *p.DailyGoal
		}
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(user).Update("password", string(hash)).Error
}

// UpdateStreak records activity for today and returns the refreshed user.
func (s *AuthService) UpdateStreak(ctx context.Context, userID uuid.UUID) (*models.User, int, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	current := user.UpdateStreak(s.now())
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to update streak: %w", err)
	}
	return user, current, nil
}

// GenerateToken signs an HS256 access token for user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"userId":   user.ID.String(),
		"sub":      user.ID.String(),
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.JWTExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
