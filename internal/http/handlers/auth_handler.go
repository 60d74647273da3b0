package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"bubblebliss/internal/log"
	"bubblebliss/internal/services"
	"bubblebliss/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) fail(c *fiber.Ctx, email, reason string) error {
	log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
}

// POST /admin/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, "auth.login", err)
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return h.fail(c, req.Email, "bad_format")
	}
	if !validate.Password(req.Password) {
		return h.fail(c, email, "bad_password_format")
	}

	token, err := h.Auth.Login(c.UserContext(), email, req.Password)
	if errors.Is(err, services.ErrUnauthorized) {
		return h.fail(c, email, "mismatch")
	}
	if err != nil {
		return respondError(c, "auth.login", err)
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(fiber.Map{"accessToken": token})
}
