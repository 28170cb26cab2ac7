package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/service"
)

type ProductHandler struct {
	s service.ProductService
}

func NewProductHandler(service service.ProductService) *ProductHandler {
	return &ProductHandler{s: service}
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	product.UserID = userID
	product.IsActive = true

	id, err := h.s.Create(c.Context(), &product)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	product.ID = id

	return c.Status(fiber.StatusOK).JSON(product)
}

func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	productID := c.QueryInt("id", 0)

	if productID != 0 {
		product, err := h.s.Get(c.Context(), userID, int64(productID))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusOK).JSON(product)
	}

	products, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list products",
		})
	}

	return c.Status(fiber.StatusOK).JSON(products)
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	product.UserID = userID

	if err := h.s.Update(c.Context(), &product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ProductHandler) RemoveProduct(c *fiber.Ctx) error {
	userID := GetUserID(c)
	productID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userID, int64(productID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove product",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
