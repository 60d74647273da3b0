package services

import (
	"context"

	"bubblebliss/internal/money"
	"bubblebliss/internal/repos"
)

type CategoryView struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type OptionView struct {
	ID       int64     `json:"id"`
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	PriceGHS money.GHS `json:"priceGhs"`
}

type MenuItemView struct {
	ID          int64        `json:"id"`
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	PriceGHS    *money.GHS   `json:"priceGhs"`
	Options     []OptionView `json:"options"`
	Image       *string      `json:"image"`
	InStock     bool         `json:"inStock"`
}

type ToppingView struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	PriceGHS money.GHS `json:"priceGhs"`
	InStock  bool      `json:"inStock"`
}

type CatalogView struct {
	Categories []CategoryView `json:"categories"`
	Items      []MenuItemView `json:"items"`
	Toppings   []ToppingView  `json:"toppings"`
}

type CatalogService struct {
	Cats     *repos.CategoryRepo
	Prods    *repos.ProductRepo
	Toppings *repos.ToppingRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, toppings *repos.ToppingRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Toppings: toppings}
}

// Catalog lists categories, active products with their options and active
// toppings. Sold out entries stay listed with inStock false.
func (s *CatalogService) Catalog(ctx context.Context) (CatalogView, error) {
	cats, err := s.Cats.List(ctx)
	if err != nil {
		return CatalogView{}, err
	}
	prods, err := s.Prods.ListActive(ctx)
	if err != nil {
		return CatalogView{}, err
	}
	ids := make([]int64, len(prods))
	for i, p := range prods {
		ids[i] = p.ID
	}
	variants, err := s.Prods.VariantsByProduct(ctx, ids)
	if err != nil {
		return CatalogView{}, err
	}
	tops, err := s.Toppings.ListActive(ctx)
	if err != nil {
		return CatalogView{}, err
	}

	out := CatalogView{
		Categories: make([]CategoryView, 0, len(cats)),
		Items:      make([]MenuItemView, 0, len(prods)),
		Toppings:   make([]ToppingView, 0, len(tops)),
	}
	for _, c := range cats {
		out.Categories = append(out.Categories, CategoryView{Slug: c.Slug, Name: c.Name})
	}
	for _, p := range prods {
		item := MenuItemView{
			ID:          p.ID,
			Slug:        p.Slug,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.CategorySlug,
			Options:     []OptionView{},
			InStock:     p.InStock,
		}
		if price, ok := p.DirectPrice(); ok {
			g := price.GHS()
			item.PriceGHS = &g
		}
		if p.Image.Valid {
			img := p.Image.String
			item.Image = &img
		}
		for _, v := range variants[p.ID] {
			item.Options = append(item.Options, OptionView{ID: v.ID, Key: v.Key, Label: v.Label, PriceGHS: v.PricePesewas.GHS()})
		}
		out.Items = append(out.Items, item)
	}
	for _, t := range tops {
		out.Toppings = append(out.Toppings, ToppingView{ID: t.ID, Name: t.Name, PriceGHS: t.PricePesewas.GHS(), InStock: t.InStock})
	}
	return out, nil
}
