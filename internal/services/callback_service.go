package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bubblebliss/internal/domain"
	applog "bubblebliss/internal/log"
	"bubblebliss/internal/metrics"
	"bubblebliss/internal/money"
	"bubblebliss/internal/repos"
)

// PaymentSuccess is the only callback status that marks an order paid.
const PaymentSuccess = "Success"

// Callback is the provider notification after the tolerant field lookup.
type Callback struct {
	ClientReference string
	Status          string
	Amount          *money.GHS
	CustomerPhone   string
}

// ParseCallback reads a provider payload. Hubtel has sent both PascalCase
// and camelCase keys; either is accepted. ok is false when the body or its
// data object is missing.
func ParseCallback(body []byte) (Callback, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return Callback{}, false
	}
	data, ok := pick(root, "Data", "data").(map[string]any)
	if !ok {
		return Callback{}, false
	}
	cb := Callback{
		ClientReference: asString(pick(data, "ClientReference", "clientReference")),
		Status:          asString(pick(data, "Status", "status")),
		CustomerPhone:   asString(pick(data, "CustomerPhoneNumber", "customerPhoneNumber")),
	}
	if d, ok := asDecimal(pick(data, "Amount", "amount")); ok {
		g := money.FromDecimal(d)
		cb.Amount = &g
	}
	return cb, true
}

func pick(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	}
	return ""
}

func asDecimal(v any) (decimal.Decimal, bool) {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	default:
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	return d, err == nil
}

// ConfirmationSMS is the text sent once an order is paid.
func ConfirmationSMS(orderID int64, amount money.GHS) string {
	return fmt.Sprintf("Thank you for your order at Bubble Bliss!\nOrder #%d confirmed — GHS %s.\nWe'll have it ready for you soon!",
		orderID, amount.String())
}

// CallbackService applies provider notifications to orders. Every outcome
// is acknowledged to the provider; only the audit row records what
// happened.
type CallbackService struct {
	Orders    *repos.OrderRepo
	Callbacks *repos.CallbackRepo
	Gateway   Gateway
	Metrics   *metrics.Metrics
}

func NewCallbackService(orders *repos.OrderRepo, callbacks *repos.CallbackRepo, gw Gateway, m *metrics.Metrics) *CallbackService {
	return &CallbackService{Orders: orders, Callbacks: callbacks, Gateway: gw, Metrics: m}
}

// Handle processes one raw callback body. The returned error is for logging
// only; callers still acknowledge.
func (s *CallbackService) Handle(ctx context.Context, body []byte) (repos.CallbackOutcome, error) {
	cb, ok := ParseCallback(body)
	if !ok {
		applog.Warn(nil, "payment.callback.no_data", nil, map[string]any{"body": string(body)})
		return s.record(ctx, "", "", repos.CallbackMalformed, body), nil
	}
	if cb.ClientReference == "" {
		applog.Warn(nil, "payment.callback.no_reference", nil, map[string]any{"body": string(body)})
		return s.record(ctx, "", cb.Status, repos.CallbackMalformed, body), nil
	}

	o, err := s.Orders.ByReference(ctx, cb.ClientReference)
	if errors.Is(err, repos.ErrNotFound) {
		applog.Warn(nil, "payment.callback.unknown_ref", nil, map[string]any{"client_reference": cb.ClientReference})
		return s.record(ctx, cb.ClientReference, cb.Status, repos.CallbackUnknownRef, body), nil
	}
	if err != nil {
		s.Metrics.Callback("error")
		return "", err
	}
	if o.PaymentStatus == domain.PaymentPaid {
		applog.Info(nil, "payment.callback.duplicate", map[string]any{"order_id": o.ID})
		return s.record(ctx, cb.ClientReference, cb.Status, repos.CallbackDuplicate, body), nil
	}

	var outcome repos.CallbackOutcome
	if cb.Status == PaymentSuccess {
		applied, err := s.ConfirmPaid(ctx, o, cb.Amount, cb.CustomerPhone)
		if err != nil {
			s.Metrics.Callback("error")
			return "", err
		}
		outcome = repos.CallbackAppliedPaid
		if !applied {
			outcome = repos.CallbackDuplicate
		}
	} else {
		applied, err := s.Orders.MarkFailed(ctx, o.ID)
		if err != nil {
			s.Metrics.Callback("error")
			return "", err
		}
		outcome = repos.CallbackAppliedFailed
		if !applied {
			outcome = repos.CallbackDuplicate
		} else {
			applog.Warn(nil, "payment.callback.failed", nil, map[string]any{"order_id": o.ID, "status": cb.Status})
		}
	}
	return s.record(ctx, cb.ClientReference, cb.Status, outcome, body), nil
}

// ConfirmPaid marks the order paid and, when this call made the change,
// texts the customer. amount and phone fall back to the stored order.
func (s *CallbackService) ConfirmPaid(ctx context.Context, o domain.Order, amount *money.GHS, phone string) (bool, error) {
	applied, err := s.Orders.MarkPaid(ctx, o.ID)
	if err != nil || !applied {
		return false, err
	}
	applog.Info(nil, "payment.callback.paid", map[string]any{"order_id": o.ID, "client_reference": o.ClientReference})

	total := o.TotalPesewas.GHS()
	if amount != nil {
		total = *amount
	}
	if phone == "" {
		phone = o.Phone
	}
	// the provider's request may be gone by now; the text still goes out
	s.Gateway.SendSMS(context.WithoutCancel(ctx), phone, ConfirmationSMS(o.ID, total))
	return true, nil
}

func (s *CallbackService) record(ctx context.Context, ref, status string, outcome repos.CallbackOutcome, body []byte) repos.CallbackOutcome {
	s.Metrics.Callback(string(outcome))
	if err := s.Callbacks.Record(ctx, ref, status, outcome, body); err != nil {
		applog.Error(nil, "payment.callback.audit_fail", err, map[string]any{"client_reference": ref, "outcome": string(outcome)})
	}
	return outcome
}
