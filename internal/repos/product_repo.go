package repos

import (
	"context"

	"bubblebliss/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
    p.id, p.slug, p.name, p.description, p.category_id, c.slug AS category_slug,
    p.price_pesewas, p.sort_order, p.is_active, p.in_stock, p.image`

// ListActive returns the products visible in the catalog, in menu order.
func (r *ProductRepo) ListActive(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out, `
  SELECT`+productCols+`
  FROM products p
  JOIN categories c ON c.id = p.category_id
  WHERE p.is_active = 1
  ORDER BY p.sort_order, p.id
`)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `
  SELECT`+productCols+`
  FROM products p
  JOIN categories c ON c.id = p.category_id
  WHERE p.id = ?
`, id)
	return p, notFound(err)
}

// ByIDs loads every listed product regardless of flags; missing ids are
// simply absent from the result.
func (r *ProductRepo) ByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
  SELECT`+productCols+`
  FROM products p
  JOIN categories c ON c.id = p.category_id
  WHERE p.id IN (?)
`, ids)
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	err = r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...)
	return out, err
}

func (r *ProductRepo) VariantsByIDs(ctx context.Context, ids []int64) ([]domain.ProductVariant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
  SELECT id, product_id, key, label, price_pesewas, sort_order
  FROM product_variants
  WHERE id IN (?)
`, ids)
	if err != nil {
		return nil, err
	}
	var out []domain.ProductVariant
	err = r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...)
	return out, err
}

// VariantsByProduct groups the variants of the given products, each group
// in sort order.
func (r *ProductRepo) VariantsByProduct(ctx context.Context, productIDs []int64) (map[int64][]domain.ProductVariant, error) {
	out := map[int64][]domain.ProductVariant{}
	if len(productIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`
  SELECT id, product_id, key, label, price_pesewas, sort_order
  FROM product_variants
  WHERE product_id IN (?)
  ORDER BY product_id, sort_order, id
`, productIDs)
	if err != nil {
		return nil, err
	}
	var rows []domain.ProductVariant
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, v := range rows {
		out[v.ProductID] = append(out[v.ProductID], v)
	}
	return out, nil
}
