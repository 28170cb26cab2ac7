package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot/internal/service"
)

type DashboardHandler struct {
	s service.AnalyticsService
}

func NewDashboardHandler(service service.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{s: service}
}

func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	userID := GetUserID(c)

	stats, err := h.s.DashboardStats(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load dashboard stats",
		})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
