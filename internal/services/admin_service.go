package services

import (
	"context"

	"bubblebliss/internal/domain"
	"bubblebliss/internal/money"
	"bubblebliss/internal/repos"
	"bubblebliss/internal/validate"
)

type AdminToppingView struct {
	ToppingID  int64     `json:"toppingId"`
	Name       string    `json:"toppingName"`
	BaseGHS    money.GHS `json:"toppingBaseGhs"`
	AppliedGHS money.GHS `json:"priceAppliedGhs"`
}

type AdminItemView struct {
	ID           int64              `json:"id"`
	ProductID    int64              `json:"productId"`
	VariantID    *int64             `json:"variantId"`
	ProductName  string             `json:"productName"`
	VariantLabel *string            `json:"variantLabel"`
	UnitGHS      money.GHS          `json:"unitGhs"`
	Quantity     int                `json:"quantity"`
	SugarLevel   *string            `json:"sugarLevel"`
	SpiceLevel   *string            `json:"spiceLevel"`
	Note         *string            `json:"note"`
	Toppings     []AdminToppingView `json:"toppings"`
}

type AdminOrderView struct {
	ID               int64           `json:"id"`
	Phone            string          `json:"phone"`
	LocationText     string          `json:"locationText"`
	Notes            *string         `json:"notes"`
	TotalGHS         money.GHS       `json:"totalGhs"`
	TotalPesewas     money.Pesewas   `json:"totalPesewas"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"paymentStatus"`
	ClientReference  string          `json:"clientReference"`
	HubtelCheckoutID string          `json:"hubtelCheckoutId"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
	Items            []AdminItemView `json:"items"`
}

// AdminService covers the order side of the admin surface.
type AdminService struct {
	Orders *repos.OrderRepo
}

func NewAdminService(orders *repos.OrderRepo) *AdminService {
	return &AdminService{Orders: orders}
}

func (s *AdminService) ListOrders(ctx context.Context, limit int) ([]AdminOrderView, error) {
	rows, err := s.Orders.ListDetailed(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]AdminOrderView, 0, len(rows))
	for _, r := range rows {
		v := orderView(r.Order)
		for _, it := range r.Items {
			iv := AdminItemView{
				ID:           it.ID,
				ProductID:    it.ProductID,
				ProductName:  it.ProductName,
				VariantLabel: nullStr(it.VariantLabel.String, it.VariantLabel.Valid),
				UnitGHS:      it.UnitPesewas.GHS(),
				Quantity:     it.Quantity,
				SugarLevel:   nullStr(it.SugarLevel.String, it.SugarLevel.Valid),
				SpiceLevel:   nullStr(it.SpiceLevel.String, it.SpiceLevel.Valid),
				Note:         nullStr(it.Note.String, it.Note.Valid),
				Toppings:     make([]AdminToppingView, 0, len(it.Toppings)),
			}
			if it.VariantID.Valid {
				id := it.VariantID.Int64
				iv.VariantID = &id
			}
			for _, t := range it.Toppings {
				iv.Toppings = append(iv.Toppings, AdminToppingView{
					ToppingID:  t.ToppingID,
					Name:       t.ToppingName,
					BaseGHS:    t.ToppingBasePesewas.GHS(),
					AppliedGHS: t.PriceAppliedPesewas.GHS(),
				})
			}
			v.Items = append(v.Items, iv)
		}
		out = append(out, v)
	}
	return out, nil
}

// UpdateStatus sets the fulfilment status. Only the admin-settable values
// are accepted; payment status is never touched here.
func (s *AdminService) UpdateStatus(ctx context.Context, id int64, status string) (AdminOrderView, error) {
	st, ok := validate.OrderStatus(status)
	if !ok {
		return AdminOrderView{}, invalid("status must be one of: %s", validate.OrderStatusList())
	}
	o, err := s.Orders.UpdateStatus(ctx, id, st)
	if err != nil {
		return AdminOrderView{}, err
	}
	return orderView(o), nil
}

func orderView(o domain.Order) AdminOrderView {
	return AdminOrderView{
		ID:               o.ID,
		Phone:            o.Phone,
		LocationText:     o.LocationText,
		Notes:            nullStr(o.Notes.String, o.Notes.Valid),
		TotalGHS:         o.TotalPesewas.GHS(),
		TotalPesewas:     o.TotalPesewas,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		ClientReference:  o.ClientReference,
		HubtelCheckoutID: o.HubtelCheckoutID,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Items:            []AdminItemView{},
	}
}

func nullStr(s string, valid bool) *string {
	if !valid {
		return nil
	}
	return &s
}
