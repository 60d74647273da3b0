package domain

import (
	"database/sql"

	"bubblebliss/internal/money"
)

type Category struct {
	ID        int64  `db:"id"`
	Slug      string `db:"slug"`
	Name      string `db:"name"`
	SortOrder int    `db:"sort_order"`
}

// Product is a menu entry. PricePesewas is NULL when the price comes from
// the selected variant.
type Product struct {
	ID           int64          `db:"id"`
	Slug         string         `db:"slug"`
	Name         string         `db:"name"`
	Description  string         `db:"description"`
	CategoryID   int64          `db:"category_id"`
	CategorySlug string         `db:"category_slug"`
	PricePesewas sql.NullInt64  `db:"price_pesewas"`
	SortOrder    int            `db:"sort_order"`
	IsActive     bool           `db:"is_active"`
	InStock      bool           `db:"in_stock"`
	Image        sql.NullString `db:"image"`
}

// DirectPrice reports the product's own price, if it has one.
func (p Product) DirectPrice() (money.Pesewas, bool) {
	if !p.PricePesewas.Valid {
		return 0, false
	}
	return money.Pesewas(p.PricePesewas.Int64), true
}

type ProductVariant struct {
	ID           int64         `db:"id"`
	ProductID    int64         `db:"product_id"`
	Key          string        `db:"key"`
	Label        string        `db:"label"`
	PricePesewas money.Pesewas `db:"price_pesewas"`
	SortOrder    int           `db:"sort_order"`
}

type Topping struct {
	ID           int64         `db:"id"`
	Name         string        `db:"name"`
	PricePesewas money.Pesewas `db:"price_pesewas"`
	IsActive     bool          `db:"is_active"`
	InStock      bool          `db:"in_stock"`
	SortOrder    int           `db:"sort_order"`
}

type AdminUser struct {
	ID    int64  `db:"id"`
	Email string `db:"email"`
	Hash  string `db:"password_hash"`
}
