package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProgressHandler struct {
	progressService *services.ProgressService
}

func NewProgressHandler(progressService *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

func (h *ProgressHandler) View(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ProgressViewRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Missing lesson data")
	}

	if err := h.progressService.RecordView(c.UserContext(), userID, &req); err != nil {
		switch {
		case errors.Is(err, services.ErrMissingLessonData):
			return respondError(c, fiber.StatusBadRequest, "Missing lesson data")
		case errors.Is(err, services.ErrUserNotFound):
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondInternal(c, "progress_view", err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Progress saved"})
}
