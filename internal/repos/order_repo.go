package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"bubblebliss/internal/domain"
	"bubblebliss/internal/money"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// NewOrder is a fully priced order ready to be written. It is also the
// payload kept on the payment session so the sweep can write it later.
type NewOrder struct {
	Phone           string         `json:"phone"`
	LocationText    string         `json:"locationText"`
	Notes           *string        `json:"notes,omitempty"`
	TotalPesewas    money.Pesewas  `json:"totalPesewas"`
	ClientReference string         `json:"clientReference"`
	CheckoutID      string         `json:"checkoutId"`
	Items           []NewOrderItem `json:"items"`
}

type NewOrderItem struct {
	ProductID    int64             `json:"productId"`
	VariantID    *int64            `json:"variantId,omitempty"`
	ProductName  string            `json:"productName"`
	VariantLabel *string           `json:"variantLabel,omitempty"`
	UnitPesewas  money.Pesewas     `json:"unitPesewas"`
	Quantity     int               `json:"quantity"`
	SugarLevel   *string           `json:"sugarLevel,omitempty"`
	SpiceLevel   *string           `json:"spiceLevel,omitempty"`
	Note         *string           `json:"note,omitempty"`
	Toppings     []NewOrderTopping `json:"toppings"`
}

type NewOrderTopping struct {
	ToppingID      int64         `json:"toppingId"`
	ToppingName    string        `json:"toppingName"`
	BasePesewas    money.Pesewas `json:"basePesewas"`
	AppliedPesewas money.Pesewas `json:"appliedPesewas"`
}

// InsertTx writes the order header as pending/unpaid, then its items, then
// all item toppings in one batch.
func (r *OrderRepo) InsertTx(ctx context.Context, tx *sqlx.Tx, o NewOrder) (int64, error) {
	ts := now()
	res, err := tx.ExecContext(ctx, `
	  INSERT INTO orders
	    (phone, location_text, notes, total_pesewas, status, payment_status, client_reference, hubtel_checkout_id, created_at, updated_at)
	  VALUES
	    (?,     ?,             ?,     ?,             ?,      ?,              ?,                ?,                  ?,          ?)
	`, o.Phone, o.LocationText, o.Notes, o.TotalPesewas, domain.OrderPending, domain.PaymentUnpaid,
		o.ClientReference, o.CheckoutID, ts, ts)
	if err != nil {
		return 0, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	var toppings []domain.OrderItemTopping
	for _, it := range o.Items {
		res, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items
		    (order_id, product_id, variant_id, product_name, variant_label, unit_pesewas, quantity, sugar_level, spice_level, note)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, orderID, it.ProductID, it.VariantID, it.ProductName, it.VariantLabel, it.UnitPesewas, it.Quantity,
			it.SugarLevel, it.SpiceLevel, it.Note)
		if err != nil {
			return 0, err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		for _, t := range it.Toppings {
			toppings = append(toppings, domain.OrderItemTopping{
				OrderItemID:         itemID,
				ToppingID:           t.ToppingID,
				ToppingName:         t.ToppingName,
				ToppingBasePesewas:  t.BasePesewas,
				PriceAppliedPesewas: t.AppliedPesewas,
			})
		}
	}

	if len(toppings) > 0 {
		if _, err := tx.NamedExecContext(ctx, `
		  INSERT INTO order_item_toppings
		    (order_item_id, topping_id, topping_name, topping_base_pesewas, price_applied_pesewas)
		  VALUES (:order_item_id, :topping_id, :topping_name, :topping_base_pesewas, :price_applied_pesewas)
		`, toppings); err != nil {
			return 0, err
		}
	}
	return orderID, nil
}

const orderCols = `id, phone, location_text, notes, total_pesewas, status, payment_status,
	client_reference, hubtel_checkout_id, created_at, updated_at`

func (r *OrderRepo) ByReference(ctx context.Context, ref string) (domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, `SELECT `+orderCols+` FROM orders WHERE client_reference = ?`, ref)
	return o, notFound(err)
}

func (r *OrderRepo) Get(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id)
	return o, notFound(err)
}

// ExistsByReference reports whether an order row was written for ref.
func (r *OrderRepo) ExistsByReference(ctx context.Context, ref string) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders WHERE client_reference = ?`, ref); err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkPaid moves an order to paid/confirmed. It reports false when the
// order was already paid, which makes duplicate callbacks no-ops even when
// they race.
func (r *OrderRepo) MarkPaid(ctx context.Context, id int64) (bool, error) {
	return r.transition(ctx, id, domain.PaymentPaid, domain.OrderConfirmed)
}

// MarkFailed moves an unpaid order to failed/cancelled. Paid orders are
// never downgraded.
func (r *OrderRepo) MarkFailed(ctx context.Context, id int64) (bool, error) {
	return r.transition(ctx, id, domain.PaymentFailed, domain.OrderCancelled)
}

func (r *OrderRepo) transition(ctx context.Context, id int64, pay domain.PaymentStatus, st domain.OrderStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET payment_status = ?, status = ?, updated_at = ?
		WHERE id = ? AND payment_status <> ?
	`, pay, st, now(), id, domain.PaymentPaid)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, status, now(), id)
	if err != nil {
		return domain.Order{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Order{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

// ---------- Admin listing ----------

type ItemDetail struct {
	domain.OrderItem
	Toppings []domain.OrderItemTopping
}

type OrderDetail struct {
	domain.Order
	Items []ItemDetail
}

// ListDetailed returns the newest orders with their items and toppings.
func (r *OrderRepo) ListDetailed(ctx context.Context, limit int) ([]OrderDetail, error) {
	if limit <= 0 {
		limit = 100
	}
	var orders []domain.Order
	if err := r.db.SelectContext(ctx, &orders, `
		SELECT `+orderCols+`
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []OrderDetail{}, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	query, args, err := sqlx.In(`
		SELECT id, order_id, product_id, variant_id, product_name, variant_label, unit_pesewas,
		       quantity, sugar_level, spice_level, note
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, err
	}
	var items []domain.OrderItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	toppingsByItem := map[int64][]domain.OrderItemTopping{}
	if len(items) > 0 {
		itemIDs := make([]int64, len(items))
		for i, it := range items {
			itemIDs[i] = it.ID
		}
		query, args, err = sqlx.In(`
			SELECT id, order_item_id, topping_id, topping_name, topping_base_pesewas, price_applied_pesewas
			FROM order_item_toppings
			WHERE order_item_id IN (?)
			ORDER BY id
		`, itemIDs)
		if err != nil {
			return nil, err
		}
		var tops []domain.OrderItemTopping
		if err := r.db.SelectContext(ctx, &tops, r.db.Rebind(query), args...); err != nil {
			return nil, err
		}
		for _, t := range tops {
			toppingsByItem[t.OrderItemID] = append(toppingsByItem[t.OrderItemID], t)
		}
	}

	itemsByOrder := map[int64][]ItemDetail{}
	for _, it := range items {
		itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], ItemDetail{OrderItem: it, Toppings: toppingsByItem[it.ID]})
	}

	out := make([]OrderDetail, len(orders))
	for i, o := range orders {
		out[i] = OrderDetail{Order: o, Items: itemsByOrder[o.ID]}
	}
	return out, nil
}

// ItemsForOrder returns the snapshotted lines of one order.
func (r *OrderRepo) ItemsForOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, order_id, product_id, variant_id, product_name, variant_label, unit_pesewas,
		       quantity, sugar_level, spice_level, note
		FROM order_items WHERE order_id = ? ORDER BY id
	`, orderID)
	return items, err
}

// ToppingsForItem returns the toppings recorded against one order line.
func (r *OrderRepo) ToppingsForItem(ctx context.Context, itemID int64) ([]domain.OrderItemTopping, error) {
	var tops []domain.OrderItemTopping
	err := r.db.SelectContext(ctx, &tops, `
		SELECT id, order_item_id, topping_id, topping_name, topping_base_pesewas, price_applied_pesewas
		FROM order_item_toppings WHERE order_item_id = ? ORDER BY id
	`, itemID)
	return tops, err
}
