package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bubblebliss/internal/config"
	"bubblebliss/internal/hubtel"
	applog "bubblebliss/internal/log"
	"bubblebliss/internal/metrics"
	"bubblebliss/internal/money"
	"bubblebliss/internal/repos"
)

const checkoutDescription = "Bubble Bliss Order"

// Gateway is the part of the payment provider the order flow depends on.
type Gateway interface {
	InitiateCheckout(ctx context.Context, req hubtel.CheckoutRequest) (hubtel.CheckoutResult, error)
	SendSMS(ctx context.Context, phone, message string)
	TransactionStatus(ctx context.Context, clientReference string) (hubtel.TxnStatus, error)
}

// NewReference returns a fresh idempotency reference: a v4 uuid without
// dashes.
func NewReference() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

type CheckoutInput struct {
	Phone        string
	LocationText string
	Notes        *string
	PayeeName    *string
	PayeeEmail   *string
	Lines        []LineRequest
}

type CheckoutResult struct {
	OrderID           int64         `json:"orderId"`
	ClientReference   string        `json:"clientReference"`
	TotalGHS          money.GHS     `json:"totalGhs"`
	TotalPesewas      money.Pesewas `json:"totalPesewas"`
	CheckoutURL       string        `json:"checkoutUrl"`
	CheckoutDirectURL string        `json:"checkoutDirectUrl"`
	Message           string        `json:"message"`
}

type StatusView struct {
	OrderID       int64     `json:"orderId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	TotalGHS      money.GHS `json:"totalGhs"`
	CreatedAt     string    `json:"createdAt"`
}

type OrderService struct {
	DB       *sqlx.DB
	Pricer   *Pricer
	Orders   *repos.OrderRepo
	Sessions *repos.PaymentSessionRepo
	Gateway  Gateway
	Hubtel   config.Hubtel
	TxTime   time.Duration
	Metrics  *metrics.Metrics
}

func NewOrderService(db *sqlx.DB, cfg config.Config, pricer *Pricer, gw Gateway, m *metrics.Metrics) *OrderService {
	return &OrderService{
		DB:       db,
		Pricer:   pricer,
		Orders:   repos.NewOrderRepo(db),
		Sessions: repos.NewPaymentSessionRepo(db),
		Gateway:  gw,
		Hubtel:   cfg.Hubtel,
		TxTime:   cfg.OrderTxTimeout,
		Metrics:  m,
	}
}

// Checkout prices the cart, opens a provider session and only then writes
// the order as pending/unpaid. The payment session row brackets the gateway
// call so the sweep can recover an order whose transaction failed.
func (s *OrderService) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	quote, err := s.Pricer.Quote(ctx, in.Lines)
	if err != nil {
		if IsValidation(err) {
			s.Metrics.Checkout("invalid")
		} else {
			s.Metrics.Checkout("error")
		}
		return CheckoutResult{}, err
	}

	ref := NewReference()
	order := quote.NewOrder(in.Phone, in.LocationText, in.Notes, ref)
	if err := s.Sessions.Begin(ctx, order); err != nil {
		s.Metrics.Checkout("error")
		return CheckoutResult{}, fmt.Errorf("open payment session: %w", err)
	}

	req := hubtel.CheckoutRequest{
		TotalAmount:           quote.Total.GHS(),
		Description:           checkoutDescription,
		CallbackURL:           s.Hubtel.CallbackURL,
		ReturnURL:             s.Hubtel.ReturnURL,
		CancellationURL:       s.Hubtel.CancelURL,
		MerchantAccountNumber: s.Hubtel.MerchantAccount,
		ClientReference:       ref,
		PayeeMobileNumber:     in.Phone,
		PayeeName:             deref(in.PayeeName),
		PayeeEmail:            deref(in.PayeeEmail),
	}
	res, err := s.Gateway.InitiateCheckout(ctx, req)
	if err != nil {
		if serr := s.Sessions.MarkRejected(ctx, ref); serr != nil {
			applog.Warn(nil, "order.checkout.session_update_fail", serr, map[string]any{"client_reference": ref})
		}
		s.Metrics.Checkout("gateway_error")
		return CheckoutResult{}, err
	}

	order.CheckoutID = res.CheckoutID
	if err := s.Sessions.MarkAccepted(ctx, order); err != nil {
		// the transaction below still accepts an initiated session
		applog.Warn(nil, "order.checkout.session_update_fail", err, map[string]any{"client_reference": ref})
	}

	var orderID int64
	start := time.Now()
	err = repos.WithTx(ctx, s.DB, s.TxTime, func(tx *sqlx.Tx) error {
		id, err := s.Orders.InsertTx(ctx, tx, order)
		if err != nil {
			return err
		}
		orderID = id
		return s.Sessions.MarkPersistedTx(ctx, tx, ref, repos.SessionPersisted)
	})
	s.Metrics.ObserveOrderTx(float64(time.Since(start).Milliseconds()))
	if err != nil {
		applog.Error(nil, "order.checkout.persist_fail", err, map[string]any{
			"client_reference": ref, "checkout_id": res.CheckoutID, "total_pesewas": int64(quote.Total),
		})
		s.Metrics.Checkout("persist_error")
		return CheckoutResult{}, fmt.Errorf("persist order %s: %w", ref, err)
	}

	applog.Info(nil, "order.checkout.created", map[string]any{
		"order_id": orderID, "client_reference": ref, "total_pesewas": int64(quote.Total),
	})
	s.Metrics.Checkout("created")

	return CheckoutResult{
		OrderID:           orderID,
		ClientReference:   ref,
		TotalGHS:          quote.Total.GHS(),
		TotalPesewas:      quote.Total,
		CheckoutURL:       res.CheckoutURL,
		CheckoutDirectURL: res.CheckoutDirectURL,
		Message:           "Proceed to payment.",
	}, nil
}

// Status looks an order up by its idempotency reference.
func (s *OrderService) Status(ctx context.Context, ref string) (StatusView, error) {
	o, err := s.Orders.ByReference(ctx, ref)
	if err != nil {
		return StatusView{}, err
	}
	return StatusView{
		OrderID:       o.ID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalGHS:      o.TotalPesewas.GHS(),
		CreatedAt:     o.CreatedAt,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
