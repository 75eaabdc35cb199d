package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ContributionHandler struct {
	contributionService *services.ContributionService
}

func NewContributionHandler(contributionService *services.ContributionService) *ContributionHandler {
	return &ContributionHandler{contributionService: contributionService}
}

func (h *ContributionHandler) List(c *fiber.Ctx) error {
	items, err := h.contributionService.List(c.UserContext())
	if err != nil {
		return respondInternal(c, "list_contributions", err)
	}
	return c.JSON(items)
}

func (h *ContributionHandler) ListPending(c *fiber.Ctx) error {
	items, err := h.contributionService.ListPending(c.UserContext())
	if err != nil {
		return respondInternal(c, "list_pending_contributions", err)
	}
	return c.JSON(items)
}

func (h *ContributionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateContributionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid data")
	}

	item, err := h.contributionService.Create(c.UserContext(), authctx.OptionalClaims(c), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidContribution) {
			return respondError(c, fiber.StatusBadRequest, "Invalid data")
		}
		return respondInternal(c, "create_contribution", err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ContributionHandler) Delete(c *fiber.Ctx) error {
	if err := h.contributionService.Delete(c.UserContext(), c.Params("id")); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidID):
			return respondError(c, fiber.StatusBadRequest, "Invalid contribution id")
		case errors.Is(err, services.ErrContributionNotFound):
			return respondError(c, fiber.StatusNotFound, "Contribution not found")
		}
		return respondInternal(c, "delete_contribution", err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Contribution deleted"})
}

func (h *ContributionHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	item, lesson, err := h.contributionService.UpdateStatus(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return respondError(c, fiber.StatusBadRequest, "Invalid status")
		case errors.Is(err, services.ErrInvalidID):
			return respondError(c, fiber.StatusBadRequest, "Invalid contribution id")
		case errors.Is(err, services.ErrContributionNotFound):
			return respondError(c, fiber.StatusNotFound, "Contribution not found")
		}
		return respondInternal(c, "update_contribution_status", err)
	}
	return c.JSON(dto.ContributionStatusResponse{Success: true, Contribution: item, Lesson: lesson})
}
