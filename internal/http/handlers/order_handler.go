package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "bubblebliss/internal/log"
	"bubblebliss/internal/services"
	"bubblebliss/internal/validate"
)

type OrderHandler struct {
	Orders    *services.OrderService
	Callbacks *services.CallbackService
}

type toppingRef struct {
	ToppingID int64 `json:"toppingId" validate:"required,min=1"`
}

type checkoutItem struct {
	ProductID  int64        `json:"productId" validate:"required,min=1"`
	VariantID  *int64       `json:"variantId" validate:"omitempty,min=1"`
	Quantity   int          `json:"quantity" validate:"min=1,max=100"`
	Toppings   []toppingRef `json:"toppings" validate:"max=20,dive"`
	SugarLevel *string      `json:"sugarLevel" validate:"omitempty,level"`
	SpiceLevel *string      `json:"spiceLevel" validate:"omitempty,level"`
	Note       *string      `json:"note" validate:"omitempty,max=300"`
}

type checkoutRequest struct {
	Phone        string         `json:"phone" validate:"required,phone"`
	LocationText string         `json:"locationText" validate:"required,max=500"`
	Notes        *string        `json:"notes" validate:"omitempty,max=500"`
	PayeeName    *string        `json:"payeeName" validate:"omitempty,max=100"`
	PayeeEmail   *string        `json:"payeeEmail" validate:"omitempty,email"`
	Items        []checkoutItem `json:"items" validate:"required,min=1,dive"`
}

func (r checkoutRequest) input() services.CheckoutInput {
	phone, _ := validate.Phone(r.Phone)
	in := services.CheckoutInput{
		Phone:        phone,
		LocationText: strings.TrimSpace(r.LocationText),
		Notes:        r.Notes,
		PayeeName:    r.PayeeName,
		PayeeEmail:   r.PayeeEmail,
		Lines:        make([]services.LineRequest, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		ids := make([]int64, len(it.Toppings))
		for i, t := range it.Toppings {
			ids[i] = t.ToppingID
		}
		in.Lines = append(in.Lines, services.LineRequest{
			ProductID:  it.ProductID,
			VariantID:  it.VariantID,
			Quantity:   it.Quantity,
			ToppingIDs: ids,
			SugarLevel: it.SugarLevel,
			SpiceLevel: it.SpiceLevel,
			Note:       it.Note,
		})
	}
	return in
}

// POST /orders/checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, "order.checkout", err)
	}
	if strings.TrimSpace(req.LocationText) == "" {
		return respondError(c, "order.checkout", &services.ValidationError{Msg: "locationText is required"})
	}

	res, err := h.Orders.Checkout(c.UserContext(), req.input())
	if err != nil {
		return respondError(c, "order.checkout", err)
	}
	applog.Audit(c, "order.checkout", map[string]any{
		"order_id": res.OrderID, "client_reference": res.ClientReference, "total_pesewas": int64(res.TotalPesewas),
	})
	return c.Status(fiber.StatusCreated).JSON(res)
}

// POST /orders/callback always acknowledges; the provider must not retry
// because of anything on our side.
func (h *OrderHandler) Callback(c *fiber.Ctx) error {
	outcome, err := h.Callbacks.Handle(c.UserContext(), c.Body())
	if err != nil {
		applog.Error(c, "payment.callback.fail", err, nil)
	} else {
		applog.Info(c, "payment.callback.received", map[string]any{"outcome": string(outcome)})
	}
	return c.JSON(fiber.Map{"received": true})
}

// GET /orders/:reference/status
func (h *OrderHandler) Status(c *fiber.Ctx) error {
	ref := strings.TrimSpace(c.Params("reference"))
	if ref == "" || len(ref) > 64 {
		return respondError(c, "order.status", services.ErrNotFound)
	}
	st, err := h.Orders.Status(c.UserContext(), ref)
	if err != nil {
		return respondError(c, "order.status", err)
	}
	return c.JSON(st)
}
