package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bubblebliss/internal/http/handlers"
)

func TestRateLimits(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{
		CheckoutMax: 3, CheckoutWindow: time.Minute,
		LoginMax: 2, LoginWindow: time.Minute,
	})

	for i := 0; i < 4; i++ {
		resp := ta.do(t, "POST", "/orders/checkout", `{}`, "")
		if i < 3 {
			assert.NotEqual(t, http.StatusTooManyRequests, resp.StatusCode, "checkout limited too early at %d", i)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		}
	}

	bad := map[string]string{"email": adminEmail, "password": "wrongpass!"}
	for i := 0; i < 3; i++ {
		resp := ta.do(t, "POST", "/admin/auth/login", bad, "")
		if i < 2 {
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		}
	}

	// the provider is never throttled
	for i := 0; i < 10; i++ {
		resp := ta.do(t, "POST", "/orders/callback", `{}`, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestGlobalLimitSkipsCallbacks(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{GlobalMax: 2, GlobalWindow: time.Minute})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, ta.do(t, "GET", "/catalog", nil, "").StatusCode)
	}
	assert.Equal(t, http.StatusTooManyRequests, ta.do(t, "GET", "/catalog", nil, "").StatusCode)
	assert.Equal(t, http.StatusOK, ta.do(t, "POST", "/orders/callback", `{}`, "").StatusCode)
	assert.Equal(t, http.StatusOK, ta.do(t, "GET", "/healthz", nil, "").StatusCode)
}

func TestBodySizeLimit(t *testing.T) {
	ta := newTestApp(t, noLimits())

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest("POST", "/orders/checkout", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ta.app.Test(req, -1)
	// fasthttp may refuse the body before a response is written
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Empty(t, ta.gw.checkouts)
}

func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Get("/err", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return assert.AnError
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	for _, path := range []string{"/err", "/boom"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, "Something went wrong")
		assert.NotContains(t, body, "secret")
		assert.NotContains(t, body, assert.AnError.Error())
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "short and stout")
}
