package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/postpilot/postpilot/internal/queue"
	"github.com/postpilot/postpilot/internal/service"
)

type AnalyticsHandler struct {
	s           service.AnalyticsService
	AsynqClient *asynq.Client
}

func NewAnalyticsHandler(service service.AnalyticsService, asynqClient *asynq.Client) *AnalyticsHandler {
	return &AnalyticsHandler{s: service, AsynqClient: asynqClient}
}

func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	userID := GetUserID(c)
	days := c.QueryInt("days", 30)

	summary, err := h.s.Summary(c.Context(), userID, days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load analytics summary",
		})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

func (h *AnalyticsHandler) PostMetrics(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	metrics, err := h.s.PostMetrics(c.Context(), userID, int64(postID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No metrics for post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(metrics)
}

func (h *AnalyticsHandler) TopPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	limit := c.QueryInt("limit", 10)

	posts, err := h.s.TopPosts(c.Context(), userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load top posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *AnalyticsHandler) OptimalTimes(c *fiber.Ctx) error {
	userID := GetUserID(c)

	times, err := h.s.OptimalPostingTimes(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to compute optimal posting times",
		})
	}

	return c.Status(fiber.StatusOK).JSON(times)
}

// Sync enqueues a background metrics pull instead of doing it inline; the
// Twitter calls are too slow for a request cycle.
func (h *AnalyticsHandler) Sync(c *fiber.Ctx) error {
	userID := GetUserID(c)

	err := queue.EnqueueAnalyticsSync(h.AsynqClient, queue.AnalyticsSyncPayload{UserID: userID}, 0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to schedule sync",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Sync scheduled",
	})
}
