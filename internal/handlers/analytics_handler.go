package handlers

import (
	"encoding/json"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Track always answers 200 so a failing collector never breaks the client.
func (h *AnalyticsHandler) Track(c *fiber.Ctx) error {
	var event map[string]interface{}
	if err := json.Unmarshal(c.Body(), &event); err != nil || event == nil {
		slog.Warn("analytics payload rejected", "path", c.Path())
		return c.JSON(dto.AnalyticsResponse{Status: "error", Message: "partial failure"})
	}

	if _, err := h.analyticsService.Record(c.UserContext(), event); err != nil {
		slog.Error("failed to save analytics", "error", err.Error(), "action", "analytics")
		return c.JSON(dto.AnalyticsResponse{Status: "error", Message: "partial failure"})
	}
	return c.JSON(dto.AnalyticsResponse{Status: "received"})
}
