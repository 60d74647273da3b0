package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	applog "bubblebliss/internal/log"
	"bubblebliss/internal/services"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

type stockRequest struct {
	InStock *bool `json:"inStock" validate:"required"`
}

type activeRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// toggle reads the id and flag, applies set and writes the updated entity.
func toggle[R any, V any](c *fiber.Ctx, action string, req *R, flag func(*R) bool, set func(context.Context, int64, bool) (V, error)) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, action, err)
	}
	if err := bind(c, req); err != nil {
		return respondError(c, action, err)
	}
	v := flag(req)
	out, err := set(c.UserContext(), id, v)
	if err != nil {
		return respondError(c, action, err)
	}
	applog.Audit(c, action, map[string]any{"id": id, "value": v})
	return c.JSON(out)
}

func inStock(r *stockRequest) bool   { return *r.InStock }
func isActive(r *activeRequest) bool { return *r.IsActive }

// PATCH /admin/products/:id/stock
func (h *InventoryHandler) ProductStock(c *fiber.Ctx) error {
	return toggle(c, "admin.products.stock", &stockRequest{}, inStock, h.Inv.SetProductStock)
}

// PATCH /admin/products/:id/active
func (h *InventoryHandler) ProductActive(c *fiber.Ctx) error {
	return toggle(c, "admin.products.active", &activeRequest{}, isActive, h.Inv.SetProductActive)
}

// PATCH /admin/toppings/:id/stock
func (h *InventoryHandler) ToppingStock(c *fiber.Ctx) error {
	return toggle(c, "admin.toppings.stock", &stockRequest{}, inStock, h.Inv.SetToppingStock)
}

// PATCH /admin/toppings/:id/active
func (h *InventoryHandler) ToppingActive(c *fiber.Ctx) error {
	return toggle(c, "admin.toppings.active", &activeRequest{}, isActive, h.Inv.SetToppingActive)
}
