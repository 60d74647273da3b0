package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "bubblebliss/internal/log"
)

// Limits are per-IP request budgets. A zero Max disables that limiter.
type Limits struct {
	GlobalMax      int
	GlobalWindow   time.Duration
	CheckoutMax    int
	CheckoutWindow time.Duration
	LoginMax       int
	LoginWindow    time.Duration
	AccessLog      bool
}

func DefaultLimits() Limits {
	return Limits{
		GlobalMax:      120,
		GlobalWindow:   time.Minute,
		CheckoutMax:    10,
		CheckoutWindow: time.Minute,
		LoginMax:       5,
		LoginWindow:    10 * time.Minute,
		AccessLog:      true,
	}
}

func rateLimit(max int, window time.Duration, key, action string, skip func(*fiber.Ctx) bool) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Next:       skip,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + key
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, action, nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
}

// NewApp builds the fiber app with middleware and every route mounted.
func NewApp(d *Deps, lim Limits) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "bubblebliss",
		ErrorHandler: ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	if lim.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(rateLimit(lim.GlobalMax, lim.GlobalWindow, "all", "rate.global.hit", func(c *fiber.Ctx) bool {
		p := c.Path()
		// the provider's callbacks and the scraper are never throttled
		return p == "/orders/callback" || p == "/metrics" || p == "/healthz"
	}))

	// ---------- Ops ----------
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := d.DB.PingContext(c.UserContext()); err != nil {
			applog.Error(c, "health.db.fail", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	// ---------- Public ----------
	app.Get("/catalog", d.CatalogHandler.List)

	orders := app.Group("/orders")
	orders.Post("/checkout", rateLimit(lim.CheckoutMax, lim.CheckoutWindow, "checkout", "rate.checkout.hit", nil), d.OrderHandler.Checkout)
	orders.Post("/callback", d.OrderHandler.Callback)
	orders.Get("/:reference/status", d.OrderHandler.Status)

	// ---------- Admin ----------
	app.Post("/admin/auth/login", rateLimit(lim.LoginMax, lim.LoginWindow, "login", "rate.login.hit", nil), d.AuthHandler.Login)

	// login is registered above the guard, so it never reaches it
	admin := app.Group("/admin", RequireAdmin(d.Auth))
	admin.Get("/orders", d.AdminHandler.Orders)
	admin.Patch("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.Patch("/products/:id/stock", d.InventoryHandler.ProductStock)
	admin.Patch("/products/:id/active", d.InventoryHandler.ProductActive)
	admin.Patch("/toppings/:id/stock", d.InventoryHandler.ToppingStock)
	admin.Patch("/toppings/:id/active", d.InventoryHandler.ToppingActive)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})
	return app
}
