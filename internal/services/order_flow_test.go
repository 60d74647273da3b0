package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bubblebliss/internal/domain"
	"bubblebliss/internal/hubtel"
	"bubblebliss/internal/money"
	"bubblebliss/internal/repos"
	"bubblebliss/internal/services"
)

func TestCheckout_PersistsAfterGatewayAccepts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.orders.Checkout(ctx, shawarmaCart(t, f.db))
	require.NoError(t, err)

	assert.Len(t, res.ClientReference, 32)
	assert.Equal(t, money.Pesewas(13400), res.TotalPesewas)
	assert.Equal(t, "134.00", res.TotalGHS.String())
	assert.Equal(t, "https://pay.test/c/"+res.ClientReference, res.CheckoutURL)
	assert.Equal(t, "Proceed to payment.", res.Message)

	require.Len(t, f.gw.checkouts, 1)
	req := f.gw.checkouts[0]
	assert.Equal(t, "134.00", req.TotalAmount.String())
	assert.Equal(t, "Bubble Bliss Order", req.Description)
	assert.Equal(t, "2020", req.MerchantAccountNumber)
	assert.Equal(t, "https://shop.test/orders/callback", req.CallbackURL)
	assert.Equal(t, "0241234567", req.PayeeMobileNumber)
	assert.Equal(t, "Ama", req.PayeeName)
	assert.Empty(t, req.PayeeEmail)

	o, err := repos.NewOrderRepo(f.db).ByReference(ctx, res.ClientReference)
	require.NoError(t, err)
	assert.Equal(t, res.OrderID, o.ID)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Equal(t, domain.PaymentUnpaid, o.PaymentStatus)
	assert.Equal(t, "chk-"+res.ClientReference, o.HubtelCheckoutID)
	assert.Equal(t, "ring twice", o.Notes.String)

	items, err := repos.NewOrderRepo(f.db).ItemsForOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Chicken Shawarma", items[0].ProductName)
	assert.Equal(t, "Large", items[0].VariantLabel.String)
	assert.Equal(t, "mild", items[0].SpiceLevel.String)

	s, err := repos.NewPaymentSessionRepo(f.db).Get(ctx, res.ClientReference)
	require.NoError(t, err)
	assert.Equal(t, repos.SessionPersisted, s.State)
	assert.Equal(t, "chk-"+res.ClientReference, s.CheckoutID)
}

func TestCheckout_SnapshotSurvivesCatalogEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.orders.Checkout(ctx, shawarmaCart(t, f.db))
	require.NoError(t, err)

	_, err = f.db.Exec(`UPDATE product_variants SET price_pesewas = 9999, label = 'XL'`)
	require.NoError(t, err)
	_, err = f.db.Exec(`UPDATE products SET name = 'Renamed'`)
	require.NoError(t, err)

	items, err := repos.NewOrderRepo(f.db).ItemsForOrder(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Chicken Shawarma", items[0].ProductName)
	assert.Equal(t, "Large", items[0].VariantLabel.String)
	assert.Equal(t, money.Pesewas(6000), items[0].UnitPesewas)
}

func TestCheckout_ValidationFailsBeforeGateway(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := shawarmaCart(t, f.db)
	in.Lines[0].VariantID = nil

	_, err := f.orders.Checkout(ctx, in)
	require.Error(t, err)
	assert.True(t, services.IsValidation(err))
	assert.Equal(t, "Chicken Shawarma requires a variant selection", err.Error())
	assert.Empty(t, f.gw.checkouts, "no external call on invalid carts")

	var n int
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM orders`))
	assert.Zero(t, n)
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM payment_sessions`))
	assert.Zero(t, n)
}

func TestCheckout_SoldOutToppingFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := shawarmaCart(t, f.db)
	_, err := repos.NewInventoryRepo(f.db).SetToppingFlag(ctx, in.Lines[0].ToppingIDs[1], repos.FlagInStock, false)
	require.NoError(t, err)

	_, err = f.orders.Checkout(ctx, in)
	assert.True(t, services.IsValidation(err))
	assert.Equal(t, `Topping "Cheese Foam" is out of stock`, err.Error())
	assert.Empty(t, f.gw.checkouts)
}

func TestCheckout_GatewayFailureWritesNoOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gw.checkoutErr = fmt.Errorf("%w: http 500", hubtel.ErrGateway)

	_, err := f.orders.Checkout(ctx, shawarmaCart(t, f.db))
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrGateway))

	var n int
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM orders`))
	assert.Zero(t, n)

	var state string
	require.NoError(t, f.db.Get(&state, `SELECT state FROM payment_sessions`))
	assert.Equal(t, string(repos.SessionRejected), state)
}

func TestCheckout_PersistFailureLeavesSessionForSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart := shawarmaCart(t, f.db)
	_, err := f.db.Exec(`DROP TABLE order_item_toppings`)
	require.NoError(t, err)

	_, err = f.orders.Checkout(ctx, cart)
	require.Error(t, err)
	assert.False(t, services.IsValidation(err))
	assert.False(t, errors.Is(err, services.ErrGateway))
	require.Len(t, f.gw.checkouts, 1, "the provider session was opened")

	var orders, items int
	require.NoError(t, f.db.Get(&orders, `SELECT COUNT(*) FROM orders`))
	require.NoError(t, f.db.Get(&items, `SELECT COUNT(*) FROM order_items`))
	assert.Zero(t, orders)
	assert.Zero(t, items)

	s, err := repos.NewPaymentSessionRepo(f.db).Get(ctx, f.gw.checkouts[0].ClientReference)
	require.NoError(t, err)
	assert.Equal(t, repos.SessionAccepted, s.State)
	assert.Equal(t, "chk-"+s.ClientReference, s.CheckoutID)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.orders.Checkout(ctx, shawarmaCart(t, f.db))
	require.NoError(t, err)

	st, err := f.orders.Status(ctx, res.ClientReference)
	require.NoError(t, err)
	assert.Equal(t, res.OrderID, st.OrderID)
	assert.Equal(t, "pending", st.Status)
	assert.Equal(t, "unpaid", st.PaymentStatus)
	assert.True(t, st.TotalGHS.Equal(money.Pesewas(13400).GHS()))
	assert.NotEmpty(t, st.CreatedAt)

	_, err = f.orders.Status(ctx, "does-not-exist")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestNewReference(t *testing.T) {
	a, b := services.NewReference(), services.NewReference()
	assert.Len(t, a, 32)
	assert.NotContains(t, a, "-")
	assert.NotEqual(t, a, b)
}
