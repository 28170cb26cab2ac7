package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot/internal/service"
	"github.com/postpilot/postpilot/internal/transfer"
)

type ContentHandler struct {
	s service.ContentService
}

func NewContentHandler(service service.ContentService) *ContentHandler {
	return &ContentHandler{s: service}
}

func (h *ContentHandler) GenerateContent(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	variations, err := h.s.GenerateVariations(c.Context(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Content generation failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(variations)
}

func (h *ContentHandler) GenerateHashtags(c *fiber.Ctx) error {
	content := c.Query("content")
	if content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content is required",
		})
	}

	hashtags, err := h.s.GenerateHashtags(c.Context(), content, c.Query("target_audience"), c.Query("product_name"))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Hashtag generation failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"hashtags": hashtags})
}

func (h *ContentHandler) ImproveContent(c *fiber.Ctx) error {
	var req transfer.ImproveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content is required",
		})
	}

	improved, err := h.s.ImproveContent(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Content improvement failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"content": improved})
}
