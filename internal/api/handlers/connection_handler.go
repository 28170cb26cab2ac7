package handlers

import (
	"github.com/gofiber/fiber/v2"

	config "github.com/postpilot/postpilot/configs"
	"github.com/postpilot/postpilot/internal/service"
)

type ConnectionHandler struct {
	s   service.ConnectionService
	cfg *config.Config
}

func NewConnectionHandler(cfg *config.Config, service service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{s: service, cfg: cfg}
}

func (h *ConnectionHandler) Connect(c *fiber.Ctx) error {
	userID := GetUserID(c)

	authURL, err := h.s.ConnectURL(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start Twitter connection",
		})
	}

	return c.Redirect(authURL)
}

func (h *ConnectionHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if _, err := h.s.ConnectCallback(c.Context(), code, state); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to connect Twitter account",
		})
	}

	return c.Redirect(h.cfg.FrontendURL+"/settings", fiber.StatusTemporaryRedirect)
}

func (h *ConnectionHandler) Info(c *fiber.Ctx) error {
	userID := GetUserID(c)

	info, err := h.s.Info(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to get connection info",
		})
	}

	return c.Status(fiber.StatusOK).JSON(info)
}

func (h *ConnectionHandler) Disconnect(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.s.Disconnect(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to disconnect account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
