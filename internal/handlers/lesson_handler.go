package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type LessonHandler struct {
	lessonService *services.LessonService
}

func NewLessonHandler(lessonService *services.LessonService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService}
}

func (h *LessonHandler) List(c *fiber.Ctx) error {
	lessons, err := h.lessonService.List(c.UserContext())
	if err != nil {
		return respondInternal(c, "list_lessons", err)
	}
	return c.JSON(lessons)
}

func (h *LessonHandler) Get(c *fiber.Ctx) error {
	lesson, err := h.lessonService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrLessonNotFound) {
			return respondError(c, fiber.StatusNotFound, "Lesson not found")
		}
		return respondInternal(c, "get_lesson", err)
	}
	return c.JSON(lesson)
}

func (h *LessonHandler) Delete(c *fiber.Ctx) error {
	if err := h.lessonService.Delete(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, services.ErrLessonNotFound) {
			return respondError(c, fiber.StatusNotFound, "Lesson not found")
		}
		return respondInternal(c, "delete_lesson", err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Lesson deleted"})
}
