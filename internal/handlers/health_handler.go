package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	lessons *services.LessonIndex
}

func NewHealthHandler(db *gorm.DB, lessons *services.LessonIndex) *HealthHandler {
	return &HealthHandler{db: db, lessons: lessons}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		DB:          dbStatus,
		LessonCount: h.lessons.Len(),
	})
}
