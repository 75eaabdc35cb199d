package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ChatHandler struct {
	chatService *services.ChatService
	cfg         *config.Config
}

func NewChatHandler(chatService *services.ChatService, cfg *config.Config) *ChatHandler {
	return &ChatHandler{chatService: chatService, cfg: cfg}
}

func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ChatErrorResponse{
			Error: "Invalid request body",
		})
	}

	var userID *uuid.UUID
	if claims := authctx.OptionalClaims(c); claims != nil {
		userID = &claims.UserID
	}

	resp, err := h.chatService.Reply(c.UserContext(), userID, &req, models.ChatLogMetadata{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAINotConfigured):
			slog.Error("chat requested but GROQ_API_KEY is missing", "action", "chat")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ChatErrorResponse{
				Error:   "Service unavailable",
				Message: "AI service is not configured on the server.",
			})
		case errors.Is(err, services.ErrEmptyMessage):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ChatErrorResponse{
				Error: "Message is required",
			})
		}

		slog.Error("chat completion failed", "action", "chat", "error", err.Error(), "path", c.Path())
		body := dto.ChatErrorResponse{
			Error:   "AI Error",
			Message: "Hubo un error al conectar con el asistente.",
		}
		if !h.cfg.IsProduction() {
			body.Details = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
	return c.JSON(resp)
}
