package services

import (
	"context"

	"bubblebliss/internal/domain"
	"bubblebliss/internal/money"
	"bubblebliss/internal/repos"
)

// LineRequest is one cart line as submitted.
type LineRequest struct {
	ProductID  int64
	VariantID  *int64
	Quantity   int
	ToppingIDs []int64
	SugarLevel *string
	SpiceLevel *string
	Note       *string
}

// UnitPrice is resolved once per line: either the product's own price or
// the selected variant's.
type UnitPrice interface {
	Pesewas() money.Pesewas
	unitPrice()
}

type DirectPrice struct{ Amount money.Pesewas }

func (d DirectPrice) Pesewas() money.Pesewas { return d.Amount }
func (DirectPrice) unitPrice()               {}

type VariantPrice struct{ Variant domain.ProductVariant }

func (v VariantPrice) Pesewas() money.Pesewas { return v.Variant.PricePesewas }
func (VariantPrice) unitPrice()               {}

type PricedTopping struct {
	Topping domain.Topping
	Applied money.Pesewas
}

type PricedLine struct {
	Product    domain.Product
	Unit       UnitPrice
	Quantity   int
	Toppings   []PricedTopping
	SugarLevel *string
	SpiceLevel *string
	Note       *string
	Total      money.Pesewas
}

type Quote struct {
	Lines []PricedLine
	Total money.Pesewas
}

// CatalogSnapshot is the catalog rows a cart refers to, keyed by id.
type CatalogSnapshot struct {
	Products map[int64]domain.Product
	Variants map[int64]domain.ProductVariant
	Toppings map[int64]domain.Topping
}

// PriceOrder validates every line against the snapshot and prices it. The
// first topping of a line, in submitted order, is free; every other topping
// costs its base price. Line total is (unit + toppings) * quantity.
func PriceOrder(lines []LineRequest, snap CatalogSnapshot) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, invalid("items must contain at least 1 entries")
	}
	q := Quote{Lines: make([]PricedLine, 0, len(lines))}
	for _, l := range lines {
		if l.Quantity < 1 {
			return Quote{}, invalid("quantity must be at least 1")
		}
		p, ok := snap.Products[l.ProductID]
		if !ok {
			return Quote{}, invalid("Product %d not found", l.ProductID)
		}
		if !p.IsActive {
			return Quote{}, invalid("%s is not available", p.Name)
		}
		if !p.InStock {
			return Quote{}, invalid("%s is out of stock", p.Name)
		}

		var unit UnitPrice
		if l.VariantID != nil {
			v, ok := snap.Variants[*l.VariantID]
			if !ok || v.ProductID != p.ID {
				return Quote{}, invalid("Variant %d is not valid for %s", *l.VariantID, p.Name)
			}
			unit = VariantPrice{Variant: v}
		} else {
			price, ok := p.DirectPrice()
			if !ok {
				return Quote{}, invalid("%s requires a variant selection", p.Name)
			}
			unit = DirectPrice{Amount: price}
		}

		line := PricedLine{
			Product:    p,
			Unit:       unit,
			Quantity:   l.Quantity,
			Toppings:   make([]PricedTopping, 0, len(l.ToppingIDs)),
			SugarLevel: l.SugarLevel,
			SpiceLevel: l.SpiceLevel,
			Note:       l.Note,
		}
		each := unit.Pesewas()
		for i, tid := range l.ToppingIDs {
			t, ok := snap.Toppings[tid]
			if !ok {
				return Quote{}, invalid("Topping %d not found", tid)
			}
			if !t.IsActive {
				return Quote{}, invalid("Topping %q is not available", t.Name)
			}
			if !t.InStock {
				return Quote{}, invalid("Topping %q is out of stock", t.Name)
			}
			applied := t.PricePesewas
			if i == 0 {
				applied = 0
			}
			line.Toppings = append(line.Toppings, PricedTopping{Topping: t, Applied: applied})
			each += applied
		}
		line.Total = each.Times(l.Quantity)
		q.Total += line.Total
		q.Lines = append(q.Lines, line)
	}
	return q, nil
}

// Pricer loads the rows a cart refers to and prices it.
type Pricer struct {
	Products *repos.ProductRepo
	Toppings *repos.ToppingRepo
}

func NewPricer(products *repos.ProductRepo, toppings *repos.ToppingRepo) *Pricer {
	return &Pricer{Products: products, Toppings: toppings}
}

func (p *Pricer) Quote(ctx context.Context, lines []LineRequest) (Quote, error) {
	var productIDs, variantIDs, toppingIDs []int64
	for _, l := range lines {
		productIDs = append(productIDs, l.ProductID)
		if l.VariantID != nil {
			variantIDs = append(variantIDs, *l.VariantID)
		}
		toppingIDs = append(toppingIDs, l.ToppingIDs...)
	}

	products, err := p.Products.ByIDs(ctx, productIDs)
	if err != nil {
		return Quote{}, err
	}
	variants, err := p.Products.VariantsByIDs(ctx, variantIDs)
	if err != nil {
		return Quote{}, err
	}
	toppings, err := p.Toppings.ByIDs(ctx, toppingIDs)
	if err != nil {
		return Quote{}, err
	}

	snap := CatalogSnapshot{
		Products: make(map[int64]domain.Product, len(products)),
		Variants: make(map[int64]domain.ProductVariant, len(variants)),
		Toppings: make(map[int64]domain.Topping, len(toppings)),
	}
	for _, x := range products {
		snap.Products[x.ID] = x
	}
	for _, x := range variants {
		snap.Variants[x.ID] = x
	}
	for _, x := range toppings {
		snap.Toppings[x.ID] = x
	}
	return PriceOrder(lines, snap)
}

// NewOrder turns a quote into the rows the order transaction writes.
func (q Quote) NewOrder(phone, location string, notes *string, ref string) repos.NewOrder {
	o := repos.NewOrder{
		Phone:           phone,
		LocationText:    location,
		Notes:           notes,
		TotalPesewas:    q.Total,
		ClientReference: ref,
		Items:           make([]repos.NewOrderItem, 0, len(q.Lines)),
	}
	for _, l := range q.Lines {
		it := repos.NewOrderItem{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			UnitPesewas: l.Unit.Pesewas(),
			Quantity:    l.Quantity,
			SugarLevel:  l.SugarLevel,
			SpiceLevel:  l.SpiceLevel,
			Note:        l.Note,
			Toppings:    make([]repos.NewOrderTopping, 0, len(l.Toppings)),
		}
		if vp, ok := l.Unit.(VariantPrice); ok {
			id, label := vp.Variant.ID, vp.Variant.Label
			it.VariantID = &id
			it.VariantLabel = &label
		}
		for _, t := range l.Toppings {
			it.Toppings = append(it.Toppings, repos.NewOrderTopping{
				ToppingID:      t.Topping.ID,
				ToppingName:    t.Topping.Name,
				BasePesewas:    t.Topping.PricePesewas,
				AppliedPesewas: t.Applied,
			})
		}
		o.Items = append(o.Items, it)
	}
	return o
}
