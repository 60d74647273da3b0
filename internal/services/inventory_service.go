package services

import (
	"context"

	"bubblebliss/internal/domain"
	"bubblebliss/internal/repos"
)

type ProductAdminView struct {
	ID       int64  `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Category string `json:"category"`
	IsActive bool   `json:"isActive"`
	InStock  bool   `json:"inStock"`
}

type ToppingAdminView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
	InStock  bool   `json:"inStock"`
}

// InventoryService is the admin switchboard for what the menu offers.
type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

func (s *InventoryService) SetProductStock(ctx context.Context, id int64, inStock bool) (ProductAdminView, error) {
	p, err := s.Inv.SetProductFlag(ctx, id, repos.FlagInStock, inStock)
	return productView(p), err
}

func (s *InventoryService) SetProductActive(ctx context.Context, id int64, active bool) (ProductAdminView, error) {
	p, err := s.Inv.SetProductFlag(ctx, id, repos.FlagIsActive, active)
	return productView(p), err
}

func (s *InventoryService) SetToppingStock(ctx context.Context, id int64, inStock bool) (ToppingAdminView, error) {
	t, err := s.Inv.SetToppingFlag(ctx, id, repos.FlagInStock, inStock)
	return toppingView(t), err
}

func (s *InventoryService) SetToppingActive(ctx context.Context, id int64, active bool) (ToppingAdminView, error) {
	t, err := s.Inv.SetToppingFlag(ctx, id, repos.FlagIsActive, active)
	return toppingView(t), err
}

func productView(p domain.Product) ProductAdminView {
	return ProductAdminView{ID: p.ID, Slug: p.Slug, Name: p.Name, Category: p.CategorySlug, IsActive: p.IsActive, InStock: p.InStock}
}

func toppingView(t domain.Topping) ToppingAdminView {
	return ToppingAdminView{ID: t.ID, Name: t.Name, IsActive: t.IsActive, InStock: t.InStock}
}
