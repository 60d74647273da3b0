package domain

import (
	"database/sql"

	"bubblebliss/internal/money"
)

// OrderStatus is the fulfilment state.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// AdminSettableStatuses are the values an administrator may assign.
var AdminSettableStatuses = []OrderStatus{
	OrderPending, OrderPreparing, OrderReady, OrderDelivered, OrderCancelled,
}

// PaymentStatus is the payment lifecycle state.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
	PaymentFailed PaymentStatus = "failed"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

type Order struct {
	ID               int64          `db:"id"`
	Phone            string         `db:"phone"`
	LocationText     string         `db:"location_text"`
	Notes            sql.NullString `db:"notes"`
	TotalPesewas     money.Pesewas  `db:"total_pesewas"`
	Status           OrderStatus    `db:"status"`
	PaymentStatus    PaymentStatus  `db:"payment_status"`
	ClientReference  string         `db:"client_reference"`
	HubtelCheckoutID string         `db:"hubtel_checkout_id"`
	CreatedAt        string         `db:"created_at"`
	UpdatedAt        string         `db:"updated_at"`
}

// OrderItem snapshots product name, variant label and unit price so later
// catalog edits never change a historical order.
type OrderItem struct {
	ID           int64          `db:"id"`
	OrderID      int64          `db:"order_id"`
	ProductID    int64          `db:"product_id"`
	VariantID    sql.NullInt64  `db:"variant_id"`
	ProductName  string         `db:"product_name"`
	VariantLabel sql.NullString `db:"variant_label"`
	UnitPesewas  money.Pesewas  `db:"unit_pesewas"`
	Quantity     int            `db:"quantity"`
	SugarLevel   sql.NullString `db:"sugar_level"`
	SpiceLevel   sql.NullString `db:"spice_level"`
	Note         sql.NullString `db:"note"`
}

type OrderItemTopping struct {
	ID                  int64         `db:"id"`
	OrderItemID         int64         `db:"order_item_id"`
	ToppingID           int64         `db:"topping_id"`
	ToppingName         string        `db:"topping_name"`
	ToppingBasePesewas  money.Pesewas `db:"topping_base_pesewas"`
	PriceAppliedPesewas money.Pesewas `db:"price_applied_pesewas"`
}
