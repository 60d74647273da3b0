package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bubblebliss/internal/services"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// GET /catalog
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	cv, err := h.Catalog.Catalog(c.UserContext())
	if err != nil {
		return respondError(c, "catalog.list", err)
	}
	return c.JSON(cv)
}
