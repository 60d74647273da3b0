package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bubblebliss/internal/log"
	"bubblebliss/internal/services"
)

type AdminHandler struct {
	Admin *services.AdminService
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// GET /admin/orders
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}
	ords, err := h.Admin.ListOrders(c.UserContext(), limit)
	if err != nil {
		return respondError(c, "admin.orders.list", err)
	}
	return c.JSON(ords)
}

// PATCH /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, "admin.orders.update", err)
	}
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, "admin.orders.update", err)
	}
	o, err := h.Admin.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return respondError(c, "admin.orders.update", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": o.Status})
	return c.JSON(o)
}
