package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) PublicKey(c *fiber.Ctx) error {
	return c.JSON(dto.PublicKeyResponse{PublicKey: h.notificationService.PublicKey()})
}

func (h *NotificationHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid subscription")
	}

	var userID *uuid.UUID
	if claims := authctx.OptionalClaims(c); claims != nil {
		userID = &claims.UserID
	}

	created, err := h.notificationService.Subscribe(c.UserContext(), &req, userID, c.Get(fiber.HeaderUserAgent))
	if err != nil {
		if errors.Is(err, services.ErrInvalidSubscription) {
			return respondError(c, fiber.StatusBadRequest, "Invalid subscription")
		}
		return respondInternal(c, "subscribe", err)
	}

	if !created {
		return c.JSON(dto.MessageResponse{Success: true, Message: "Subscription updated"})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Success: true, Message: "Subscribed successfully"})
}

func (h *NotificationHandler) Send(c *fiber.Ctx) error {
	var req dto.PushPayload
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.notificationService.Send(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrPushNotConfigured) {
			return respondError(c, fiber.StatusServiceUnavailable, "Push notifications are not configured")
		}
		return respondInternal(c, "send_notifications", err)
	}
	return c.JSON(result)
}
