package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "bubblebliss/internal/log"
	"bubblebliss/internal/services"
	"bubblebliss/internal/validate"
)

const genericError = "Something went wrong. Please try again."

// bind decodes a JSON body, refusing unknown fields, and checks the DTO's
// validate tags.
func bind(c *fiber.Ctx, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &services.ValidationError{Msg: "invalid request body: " + strings.TrimPrefix(err.Error(), "json: ")}
	}
	if err := validate.Struct(dst); err != nil {
		return &services.ValidationError{Msg: err.Error()}
	}
	return nil
}

// respondError maps service errors to status codes. Anything it does not
// recognise goes to the app ErrorHandler as a 500.
func respondError(c *fiber.Ctx, action string, err error) error {
	switch {
	case services.IsValidation(err):
		applog.Security(c, action+".invalid", map[string]any{"error": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		applog.Security(c, action+".unauthorized", nil)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, services.ErrGateway):
		applog.Error(c, action+".gateway", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment provider unavailable. Please try again."})
	}
	applog.Error(c, action+".fail", err, nil)
	return err
}

// ErrorHandler is the app-wide fallback. Client errors raised by fiber keep
// their code; everything else is a 500 that never echoes internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericError})
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return 0, &services.ValidationError{Msg: "invalid id"}
	}
	return id, nil
}
