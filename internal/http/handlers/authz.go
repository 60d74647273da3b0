package handlers

import (
	"strings"

	applog "bubblebliss/internal/log"
	"bubblebliss/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin admits requests carrying a valid admin bearer token.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		scheme, raw, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "missing_token"})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		u, err := auth.Authenticate(c.UserContext(), strings.TrimSpace(raw))
		if err != nil {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "invalid_token"})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		c.Locals("admin", u)
		c.Locals("adminID", u.ID)
		return c.Next()
	}
}
