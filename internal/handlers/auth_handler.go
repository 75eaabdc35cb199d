package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			return respondError(c, fiber.StatusBadRequest, msg)
		}
		if errors.Is(err, services.ErrEmailTaken) || errors.Is(err, services.ErrUsernameTaken) {
			return respondError(c, fiber.StatusBadRequest, err.Error())
		}
		return respondInternal(c, "register", err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		if _, ok := validationMessage(err); ok {
			return respondError(c, fiber.StatusBadRequest, "Identifier and password are required")
		}
		if errors.Is(err, services.ErrInvalidCredentials) {
			return respondError(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		return respondInternal(c, "login", err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Google(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.LoginWithGoogle(c.UserContext(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGoogleNotEnabled):
			return respondError(c, fiber.StatusServiceUnavailable, "Google sign-in is not configured")
		case errors.Is(err, services.ErrInvalidGoogleToken), errors.Is(err, services.ErrInvalidCredentials):
			return respondError(c, fiber.StatusUnauthorized, "Invalid Google token")
		case errors.Is(err, services.ErrUsernameTaken):
			return respondError(c, fiber.StatusConflict, "Could not create account, please try again")
		}
		return respondInternal(c, "google_login", err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	if err := h.authService.Logout(c.UserContext(), userID); err != nil {
		return respondInternal(c, "logout", err)
	}

	return c.JSON(dto.MessageResponse{Success: true, Message: "Logged out successfully"})
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.authService.GetUser(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondInternal(c, "verify", err)
	}

	streak := user.StreakInfo()
	return c.JSON(dto.UserResponse{User: user, Streak: &streak})
}

func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.authService.GetUser(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondInternal(c, "get_profile", err)
	}

	streak := user.StreakInfo()
	return c.JSON(dto.UserResponse{User: user, Streak: &streak})
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			return respondError(c, fiber.StatusBadRequest, msg)
		}
		if errors.Is(err, services.ErrUserNotFound) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondInternal(c, "update_profile", err)
	}

	return c.JSON(dto.UserResponse{Message: "Profile updated successfully", User: user})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.authService.ChangePassword(c.UserContext(), userID, &req); err != nil {
		if msg, ok := validationMessage(err); ok {
			return respondError(c, fiber.StatusBadRequest, msg)
		}
		switch {
		case errors.Is(err, services.ErrWrongPassword):
			return respondError(c, fiber.StatusBadRequest, "Current password is incorrect")
		case errors.Is(err, services.ErrUserNotFound):
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondInternal(c, "change_password", err)
	}

	return c.JSON(dto.MessageResponse{Success: true, Message: "Password changed successfully"})
}

func (h *AuthHandler) UpdateStreak(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, current, err := h.authService.UpdateStreak(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondInternal(c, "update_streak", err)
	}

	return c.JSON(dto.StreakResponse{
		Message:       "Streak updated",
		Streak:        user.StreakInfo(),
		CurrentStreak: current,
	})
}

func (h *AuthHandler) GetStreak(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.authService.GetUser(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondInternal(c, "get_streak", err)
	}

	return c.JSON(dto.StreakResponse{Streak: user.StreakInfo()})
}
