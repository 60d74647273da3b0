package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"bubblebliss/internal/config"
	"bubblebliss/internal/http/handlers"
	"bubblebliss/internal/hubtel"
	"bubblebliss/internal/metrics"
	"bubblebliss/internal/repos"
)

const (
	adminEmail    = "admin@bubblebliss.test"
	adminPassword = "Passw0rd!"
)

type stubGateway struct {
	mu          sync.Mutex
	checkoutErr error
	checkouts   []hubtel.CheckoutRequest
	sms         int
}

func (g *stubGateway) InitiateCheckout(_ context.Context, req hubtel.CheckoutRequest) (hubtel.CheckoutResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkouts = append(g.checkouts, req)
	if g.checkoutErr != nil {
		return hubtel.CheckoutResult{}, g.checkoutErr
	}
	return hubtel.CheckoutResult{
		CheckoutURL:       "https://pay.test/c/" + req.ClientReference,
		CheckoutID:        "chk",
		ClientReference:   req.ClientReference,
		CheckoutDirectURL: "https://pay.test/d/" + req.ClientReference,
	}, nil
}

func (g *stubGateway) SendSMS(context.Context, string, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sms++
}

func (g *stubGateway) TransactionStatus(_ context.Context, ref string) (hubtel.TxnStatus, error) {
	return hubtel.TxnStatus{State: hubtel.TxnUnpaid, ClientReference: ref}, nil
}

type testApp struct {
	app *fiber.App
	db  *sqlx.DB
	gw  *stubGateway
}

// noLimits keeps throttling out of tests that are not about it.
func noLimits() handlers.Limits {
	return handlers.Limits{}
}

func newTestApp(t *testing.T, lim handlers.Limits) *testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.Seed(context.Background(), db, adminEmail, adminPassword))

	cfg := config.Config{
		Hubtel:         config.Hubtel{MerchantAccount: "2020", CallbackURL: "https://shop.test/orders/callback"},
		JWTSecret:      "test-secret-test-secret-test-secret",
		AccessTokenTTL: time.Hour,
		OrderTxTimeout: 5 * time.Second,
		ReconcileGrace: 15 * time.Minute,
	}
	gw := &stubGateway{}
	deps := handlers.NewDeps(db, cfg, gw, metrics.New())
	return &testApp{app: handlers.NewApp(deps, lim), db: db, gw: gw}
}

func (ta *testApp) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (ta *testApp) login(t *testing.T) string {
	t.Helper()
	resp := ta.do(t, "POST", "/admin/auth/login", map[string]string{"email": adminEmail, "password": adminPassword}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[map[string]string](t, resp)
	require.NotEmpty(t, out["accessToken"])
	return out["accessToken"]
}

func (ta *testApp) id(t *testing.T, query string, args ...any) int64 {
	t.Helper()
	var id int64
	require.NoError(t, ta.db.Get(&id, query, args...))
	return id
}

// cart is a valid checkout body: one large chicken shawarma with two
// toppings, quantity 2 (134.00).
func (ta *testApp) cart(t *testing.T) map[string]any {
	t.Helper()
	pid := ta.id(t, `SELECT id FROM products WHERE slug = 'chicken-shawarma'`)
	vid := ta.id(t, `SELECT id FROM product_variants WHERE product_id = ? AND key = 'large'`, pid)
	choc := ta.id(t, `SELECT id FROM toppings WHERE name = 'Chocolate'`)
	foam := ta.id(t, `SELECT id FROM toppings WHERE name = 'Cheese Foam'`)
	return map[string]any{
		"phone":        "024 123 4567",
		"locationText": "East Legon",
		"items": []map[string]any{{
			"productId": pid,
			"variantId": vid,
			"quantity":  2,
			"toppings":  []map[string]any{{"toppingId": choc}, {"toppingId": foam}},
		}},
	}
}

type logEntry struct {
	Level   string         `json:"level"`
	Action  string         `json:"action"`
	ReqID   string         `json:"req_id"`
	AdminID int64          `json:"admin_id"`
	Fields  map[string]any `json:"fields"`
}

// captureLogs temporarily replaces the standard logger output.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0) // remove timestamps to make JSON parseable
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
