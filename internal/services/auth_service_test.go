package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/testutil"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/validation"
)

type fakeGoogleVerifier struct {
	identity *GoogleIdentity
	err      error
	audience string
}

func (f *fakeGoogleVerifier) Verify(_ context.Context, _ string, audience string) (*GoogleIdentity, error) {
	f.audience = audience
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func newAuthService(t *testing.T, google GoogleVerifier) *AuthService {
	t.Helper()
	cfg := testutil.Config()
	cfg.GoogleClientID = "client-123.apps.googleusercontent.com"
	return NewAuthService(testutil.DB(t), cfg, google)
}

func register(t *testing.T, svc *AuthService, username, email string) *dto.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: username, Email: email, Password: "secret123",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	svc := newAuthService(t, nil)

	resp := register(t, svc, "Ana_Maria", "Ana@Example.com")

	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "ana_maria", resp.User.Username)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, "user", resp.User.Role)
	assert.True(t, resp.User.IsActive)
	assert.NotEqual(t, "secret123", resp.User.Password)
}

func TestRegisterRejectsDuplicatesCaseInsensitively(t *testing.T) {
	svc := newAuthService(t, nil)
	register(t, svc, "carlos", "carlos@example.com")

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "other", Email: "CARLOS@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "Carlos", Email: "new@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t, nil)

	tests := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{"short username", dto.RegisterRequest{Username: "ab", Email: "a@b.com", Password: "secret123"}},
		{"username with symbols", dto.RegisterRequest{Username: "ana-maria", Email: "a@b.com", Password: "secret123"}},
		{"bad email", dto.RegisterRequest{Username: "anamaria", Email: "nope", Password: "secret123"}},
		{"short password", dto.RegisterRequest{Username: "anamaria", Email: "a@b.com", Password: "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.Register(context.Background(), &req)
			_, ok := validation.Message(err)
			assert.True(t, ok, "got %v", err)
		})
	}
}

func TestLoginTokenCarriesUserID(t *testing.T) {
	svc := newAuthService(t, nil)
	registered := register(t, svc, "lucia", "lucia@example.com")

	for _, identifier := range []string{"lucia", "LUCIA@example.com"} {
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{Identifier: identifier, Password: "secret123"})
		require.NoError(t, err, identifier)

		token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
			return []byte(svc.cfg.JWTSecret), nil
		})
		require.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, registered.User.ID.String(), claims["userId"])
		assert.Equal(t, registered.User.ID.String(), claims["sub"])
		assert.Equal(t, "lucia", claims["username"])
		assert.Equal(t, "user", claims["role"])
		require.NotNil(t, resp.Streak)
		assert.Equal(t, 1, resp.Streak.Current)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t, nil)
	registered := register(t, svc, "pedro", "pedro@example.com")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Identifier: "pedro", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Identifier: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", registered.User.ID).Update("is_active", false).Error)
	_, err = svc.Login(context.Background(), &dto.LoginRequest{Identifier: "pedro", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUpdatesStreakAcrossDays(t *testing.T) {
	svc := newAuthService(t, nil)
	register(t, svc, "sofia", "sofia@example.com")

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	login := func() *dto.AuthResponse {
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{Identifier: "sofia", Password: "secret123"})
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, 1, login().Streak.Current)
	now = now.Add(24 * time.Hour)
	assert.Equal(t, 2, login().Streak.Current)
	now = now.Add(72 * time.Hour)
	resp := login()
	assert.Equal(t, 1, resp.Streak.Current)
	assert.Equal(t, 2, resp.Streak.Longest)
	assert.Equal(t, 3, resp.Streak.TotalDays)
}

func TestLoginWithGoogle(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		svc := newAuthService(t, nil)
		_, err := svc.LoginWithGoogle(ctx, "token")
		assert.ErrorIs(t, err, ErrGoogleNotEnabled)
	})

	t.Run("invalid token", func(t *testing.T) {
		svc := newAuthService(t, &fakeGoogleVerifier{err: errors.New("bad signature")})
		_, err := svc.LoginWithGoogle(ctx, "token")
		assert.ErrorIs(t, err, ErrInvalidGoogleToken)
	})

	t.Run("creates account on first use", func(t *testing.T) {
		verifier := &fakeGoogleVerifier{identity: &GoogleIdentity{
			Subject: "g-1", Email: "Maria.Lopez@gmail.com", Name: "Maria Lopez Diaz", Picture: "https://img/p.png",
		}}
		svc := newAuthService(t, verifier)

		resp, err := svc.LoginWithGoogle(ctx, "token")
		require.NoError(t, err)

		assert.Equal(t, svc.cfg.GoogleClientID, verifier.audience)
		assert.Equal(t, "maria.lopez@gmail.com", resp.User.Email)
		assert.Regexp(t, `^marialopez\d{1,3}$`, resp.User.Username)
		assert.Equal(t, "Maria", resp.User.Profile.FirstName)
		assert.Equal(t, "Lopez Diaz", resp.User.Profile.LastName)
		assert.Equal(t, "https://img/p.png", resp.User.Profile.Avatar)
		assert.NotEmpty(t, resp.Token)

		again, err := svc.LoginWithGoogle(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, again.User.ID)
	})

	t.Run("links existing email account", func(t *testing.T) {
		verifier := &fakeGoogleVerifier{identity: &GoogleIdentity{Subject: "g-2", Email: "juan@example.com", Picture: "pic"}}
		svc := newAuthService(t, verifier)
		registered := register(t, svc, "juan", "juan@example.com")

		resp, err := svc.LoginWithGoogle(ctx, "token")
		require.NoError(t, err)

		assert.Equal(t, registered.User.ID, resp.User.ID)
		require.NotNil(t, resp.User.GoogleID)
		assert.Equal(t, "g-2", *resp.User.GoogleID)
		assert.Equal(t, "pic", resp.User.Profile.Avatar)
	})

	t.Run("reuses account created concurrently", func(t *testing.T) {
		identity := &GoogleIdentity{Subject: "g-3", Email: "rosa@example.com", Name: "Rosa"}
		svc := newAuthService(t, &fakeGoogleVerifier{identity: identity})

		// The other sign-in already inserted the row after this one's lookups missed.
		winner, err := svc.createGoogleUser(ctx, identity, "rosa@example.com")
		require.NoError(t, err)

		loser, err := svc.createGoogleUser(ctx, identity, "rosa@example.com")
		require.NoError(t, err)
		assert.Equal(t, winner.ID, loser.ID)

		var count int64
		require.NoError(t, svc.db.Model(&models.User{}).Where("email = ?", "rosa@example.com").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("links account registered concurrently", func(t *testing.T) {
		identity := &GoogleIdentity{Subject: "g-4", Email: "pablo@example.com", Picture: "pic"}
		svc := newAuthService(t, &fakeGoogleVerifier{identity: identity})
		registered := register(t, svc, "pablo", "pablo@example.com")

		user, err := svc.createGoogleUser(ctx, identity, "pablo@example.com")
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, user.ID)
		require.NotNil(t, user.GoogleID)
		assert.Equal(t, "g-4", *user.GoogleID)
	})
}

func TestUpdateProfileMergesFields(t *testing.T) {
	svc := newAuthService(t, nil)
	registered := register(t, svc, "elena", "elena@example.com")

	level, lang := "B1", "tr"
	dark := true
	user, err := svc.UpdateProfile(context.Background(), registered.User.ID, &dto.UpdateProfileRequest{
		Profile:     &dto.ProfileUpdate{Level: &level},
		Preferences: &dto.PreferencesUpdate{Language: &lang, DarkMode: &dark},
	})
	require.NoError(t, err)

	assert.Equal(t, "B1", user.Profile.Level)
	assert.Equal(t, "tr", user.Preferences.Language)
	assert.True(t, user.Preferences.DarkMode)
	assert.Equal(t, "medium", user.Preferences.FontSize)
	assert.Equal(t, 10, user.Preferences.DailyGoal)

	bad := "Z9"
	_, err = svc.UpdateProfile(context.Background(), registered.User.ID, &dto.UpdateProfileRequest{
		Profile: &dto.ProfileUpdate{Level: &bad},
	})
	_, ok := validation.Message(err)
	assert.True(t, ok)
}

func TestChangePassword(t *testing.T) {
	svc := newAuthService(t, nil)
	registered := register(t, svc, "diego", "diego@example.com")
	ctx := context.Background()

	err := svc.ChangePassword(ctx, registered.User.ID, &dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, registered.User.ID, &dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newpass1"}))

	_, err = svc.Login(ctx, &dto.LoginRequest{Identifier: "diego", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &dto.LoginRequest{Identifier: "diego", Password: "newpass1"})
	assert.NoError(t, err)
}

func TestLogoutStampsLastActivity(t *testing.T) {
	svc := newAuthService(t, nil)
	registered := register(t, svc, "rosa", "rosa@example.com")
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.Logout(context.Background(), registered.User.ID))

	user, err := svc.GetUser(context.Background(), registered.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.Stats.LastActivity)
	assert.True(t, user.Stats.LastActivity.Equal(now))
}
