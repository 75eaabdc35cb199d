package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/validation"
	"github.com/gofiber/fiber/v2"
)

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// respondInternal logs err with request context and hides it from the client.
func respondInternal(c *fiber.Ctx, action string, err error) error {
	slog.Error("request failed",
		"action", action,
		"error", err.Error(),
		"trace_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"path", c.Path(),
	)
	return respondError(c, fiber.StatusInternalServerError, "Internal server error")
}

// validationMessage returns the client-facing text of a validation failure.
func validationMessage(err error) (string, bool) {
	return validation.Message(err)
}
