package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	config "github.com/postpilot/postpilot/configs"
	"github.com/postpilot/postpilot/internal/service"
)

// CronHandler exposes the publish pipeline over HTTP so an external
// scheduler can drive it in addition to the in-process cron.
type CronHandler struct {
	s   service.SchedulingService
	cfg *config.Config
}

func NewCronHandler(cfg *config.Config, service service.SchedulingService) *CronHandler {
	return &CronHandler{s: service, cfg: cfg}
}

func (h *CronHandler) ProcessScheduledPosts(c *fiber.Ctx) error {
	auth := c.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || h.cfg.CronSecret == "" || token != h.cfg.CronSecret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	result, err := h.s.RunBatch(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Publish run failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// TriggerManual is a development convenience; production deployments only
// take the authenticated GET.
func (h *CronHandler) TriggerManual(c *fiber.Ctx) error {
	if h.cfg.Environment == "production" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not available in production",
		})
	}

	result, err := h.s.RunBatch(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Publish run failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
