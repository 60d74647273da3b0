package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"bubblebliss/internal/config"
	"bubblebliss/internal/hubtel"
	"bubblebliss/internal/repos"
	"bubblebliss/internal/services"
)

type sentSMS struct{ phone, msg string }

// fakeGateway stands in for Hubtel.
type fakeGateway struct {
	mu          sync.Mutex
	checkoutErr error
	checkouts   []hubtel.CheckoutRequest
	sms         []sentSMS
	statuses    map[string]hubtel.TxnStatus
	statusErr   error
}

func (f *fakeGateway) InitiateCheckout(_ context.Context, req hubtel.CheckoutRequest) (hubtel.CheckoutResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, req)
	if f.checkoutErr != nil {
		return hubtel.CheckoutResult{}, f.checkoutErr
	}
	return hubtel.CheckoutResult{
		CheckoutURL:       "https://pay.test/c/" + req.ClientReference,
		CheckoutID:        "chk-" + req.ClientReference,
		ClientReference:   req.ClientReference,
		CheckoutDirectURL: "https://pay.test/d/" + req.ClientReference,
	}, nil
}

func (f *fakeGateway) SendSMS(_ context.Context, phone, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sms = append(f.sms, sentSMS{phone, msg})
}

func (f *fakeGateway) TransactionStatus(_ context.Context, ref string) (hubtel.TxnStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return hubtel.TxnStatus{}, f.statusErr
	}
	if st, ok := f.statuses[ref]; ok {
		return st, nil
	}
	return hubtel.TxnStatus{State: hubtel.TxnUnpaid, ClientReference: ref}, nil
}

func (f *fakeGateway) smsCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sms)
}

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.Seed(context.Background(), db, "admin@test.local", "Passw0rd!"))
	return db
}

func testConfig() config.Config {
	return config.Config{
		Hubtel: config.Hubtel{
			MerchantAccount: "2020",
			CallbackURL:     "https://shop.test/orders/callback",
			ReturnURL:       "https://shop.test/payment/success",
			CancelURL:       "https://shop.test/payment/cancelled",
		},
		OrderTxTimeout: 5 * time.Second,
		ReconcileGrace: 15 * time.Minute,
	}
}

type fixture struct {
	db        *sqlx.DB
	gw        *fakeGateway
	orders    *services.OrderService
	callbacks *services.CallbackService
	recon     *services.Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memdb(t)
	gw := &fakeGateway{statuses: map[string]hubtel.TxnStatus{}}
	cfg := testConfig()
	pricer := services.NewPricer(repos.NewProductRepo(db), repos.NewToppingRepo(db))
	cbs := services.NewCallbackService(repos.NewOrderRepo(db), repos.NewCallbackRepo(db), gw, nil)
	return &fixture{
		db:        db,
		gw:        gw,
		orders:    services.NewOrderService(db, cfg, pricer, gw, nil),
		callbacks: cbs,
		recon:     services.NewReconciler(db, cbs, gw, cfg.ReconcileGrace, cfg.OrderTxTimeout, nil),
	}
}

func productID(t *testing.T, db *sqlx.DB, slug string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.Get(&id, `SELECT id FROM products WHERE slug = ?`, slug))
	return id
}

func variantID(t *testing.T, db *sqlx.DB, productID int64, key string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.Get(&id, `SELECT id FROM product_variants WHERE product_id = ? AND key = ?`, productID, key))
	return id
}

func toppingID(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.Get(&id, `SELECT id FROM toppings WHERE name = ?`, name))
	return id
}

func ptr[T any](v T) *T { return &v }

// shawarmaCart is the worked example: a large chicken shawarma with two
// toppings (5.00 then 7.00), quantity 2.
func shawarmaCart(t *testing.T, db *sqlx.DB) services.CheckoutInput {
	t.Helper()
	pid := productID(t, db, "chicken-shawarma")
	return services.CheckoutInput{
		Phone:        "0241234567",
		LocationText: "East Legon, near the mall",
		Notes:        ptr("ring twice"),
		PayeeName:    ptr("Ama"),
		Lines: []services.LineRequest{{
			ProductID:  pid,
			VariantID:  ptr(variantID(t, db, pid, "large")),
			Quantity:   2,
			ToppingIDs: []int64{toppingID(t, db, "Chocolate"), toppingID(t, db, "Cheese Foam")},
			SpiceLevel: ptr("mild"),
		}},
	}
}
