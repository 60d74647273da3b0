package repos

import (
	"context"

	"bubblebliss/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ToppingRepo struct{ db *sqlx.DB }

func NewToppingRepo(db *sqlx.DB) *ToppingRepo { return &ToppingRepo{db: db} }

func (r *ToppingRepo) ListActive(ctx context.Context) ([]domain.Topping, error) {
	var out []domain.Topping
	err := r.db.SelectContext(ctx, &out, `
  SELECT id, name, price_pesewas, is_active, in_stock, sort_order
  FROM toppings
  WHERE is_active = 1
  ORDER BY sort_order, id
`)
	return out, err
}

func (r *ToppingRepo) Get(ctx context.Context, id int64) (domain.Topping, error) {
	var t domain.Topping
	err := r.db.GetContext(ctx, &t, `
  SELECT id, name, price_pesewas, is_active, in_stock, sort_order
  FROM toppings
  WHERE id = ?
`, id)
	return t, notFound(err)
}

func (r *ToppingRepo) ByIDs(ctx context.Context, ids []int64) ([]domain.Topping, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
  SELECT id, name, price_pesewas, is_active, in_stock, sort_order
  FROM toppings
  WHERE id IN (?)
`, ids)
	if err != nil {
		return nil, err
	}
	var out []domain.Topping
	err = r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...)
	return out, err
}
