package repos

import (
	"context"
	"fmt"

	"bubblebliss/internal/domain"

	"github.com/jmoiron/sqlx"
)

// InventoryRepo flips the availability flags the checkout engine checks:
// in_stock (sold out for now) and is_active (hidden from the menu).
type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

type flagColumn string

const (
	FlagInStock  flagColumn = "in_stock"
	FlagIsActive flagColumn = "is_active"
)

func (r *InventoryRepo) setFlag(ctx context.Context, table string, col flagColumn, id int64, v bool) error {
	if col != FlagInStock && col != FlagIsActive {
		return fmt.Errorf("unknown flag %q", col)
	}
	extra := ""
	if table == "products" {
		extra = ", updated_at = ?"
	}
	q := `UPDATE ` + table + ` SET ` + string(col) + ` = ?` + extra + ` WHERE id = ?`
	args := []any{v}
	if extra != "" {
		args = append(args, now())
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProductFlag updates one flag and returns the product as stored.
func (r *InventoryRepo) SetProductFlag(ctx context.Context, id int64, col flagColumn, v bool) (domain.Product, error) {
	if err := r.setFlag(ctx, "products", col, id, v); err != nil {
		return domain.Product{}, err
	}
	return NewProductRepo(r.db).Get(ctx, id)
}

func (r *InventoryRepo) SetToppingFlag(ctx context.Context, id int64, col flagColumn, v bool) (domain.Topping, error) {
	if err := r.setFlag(ctx, "toppings", col, id, v); err != nil {
		return domain.Topping{}, err
	}
	return NewToppingRepo(r.db).Get(ctx, id)
}
