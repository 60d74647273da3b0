package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"bubblebliss/internal/hubtel"
	applog "bubblebliss/internal/log"
	"bubblebliss/internal/metrics"
	"bubblebliss/internal/repos"
)

// ReconcileReport summarises one sweep.
type ReconcileReport struct {
	Scanned      int `json:"scanned"`
	Recovered    int `json:"recovered"`
	Paid         int `json:"paid"`
	Abandoned    int `json:"abandoned"`
	OrphanedPaid int `json:"orphanedPaid"`
}

// Reconciler is the compensating step for checkouts whose provider session
// was created but whose order transaction never committed.
type Reconciler struct {
	DB        *sqlx.DB
	Orders    *repos.OrderRepo
	Sessions  *repos.PaymentSessionRepo
	Callbacks *CallbackService
	Gateway   Gateway
	Grace     time.Duration
	TxTime    time.Duration
	Metrics   *metrics.Metrics
}

func NewReconciler(db *sqlx.DB, callbacks *CallbackService, gw Gateway, grace, txTime time.Duration, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		DB:        db,
		Orders:    repos.NewOrderRepo(db),
		Sessions:  repos.NewPaymentSessionRepo(db),
		Callbacks: callbacks,
		Gateway:   gw,
		Grace:     grace,
		TxTime:    txTime,
		Metrics:   m,
	}
}

// Sweep handles every open session older than the grace period:
//   - accepted sessions are written from their stored payload (recovered)
//   - initiated sessions are written only when the provider reports Paid
//   - a Paid status is then applied like a success callback
//
// Sessions that cannot be written become abandoned, or orphaned_paid when the
// customer was charged and needs a manual refund.
func (r *Reconciler) Sweep(ctx context.Context, now time.Time) (ReconcileReport, error) {
	var rep ReconcileReport
	stale, err := r.Sessions.ListStale(ctx, now.Add(-r.Grace))
	if err != nil {
		return rep, err
	}
	for _, s := range stale {
		rep.Scanned++
		r.one(ctx, s, &rep)
	}
	if rep.Scanned > 0 {
		applog.Info(nil, "reconcile.sweep.done", map[string]any{
			"scanned": rep.Scanned, "recovered": rep.Recovered, "paid": rep.Paid,
			"abandoned": rep.Abandoned, "orphaned_paid": rep.OrphanedPaid,
		})
	}
	return rep, nil
}

func (r *Reconciler) one(ctx context.Context, s repos.PaymentSession, rep *ReconcileReport) {
	ref := s.ClientReference
	fields := map[string]any{"client_reference": ref, "session_state": string(s.State), "amount_pesewas": int64(s.AmountPesewas)}

	st, serr := r.Gateway.TransactionStatus(ctx, ref)
	paid := serr == nil && st.State == hubtel.TxnPaid
	if serr != nil {
		applog.Warn(nil, "reconcile.status.unavailable", serr, fields)
	}

	if s.State == repos.SessionInitiated && !paid {
		r.settle(ctx, ref, repos.SessionAbandoned, fields)
		rep.Abandoned++
		return
	}

	payload, err := s.Order()
	if err == nil {
		err = repos.WithTx(ctx, r.DB, r.TxTime, func(tx *sqlx.Tx) error {
			if _, err := r.Orders.InsertTx(ctx, tx, payload); err != nil {
				return err
			}
			return r.Sessions.MarkPersistedTx(ctx, tx, ref, repos.SessionRecovered)
		})
	}
	if err != nil {
		if paid {
			applog.Error(nil, "reconcile.orphan.paid", err, fields)
			r.settle(ctx, ref, repos.SessionOrphanedPaid, fields)
			rep.OrphanedPaid++
		} else {
			applog.Warn(nil, "reconcile.orphan.abandoned", err, fields)
			r.settle(ctx, ref, repos.SessionAbandoned, fields)
			rep.Abandoned++
		}
		return
	}
	applog.Info(nil, "reconcile.orphan.persisted", fields)
	r.Metrics.Reconciled(string(repos.SessionRecovered))
	rep.Recovered++

	if !paid {
		return
	}
	o, err := r.Orders.ByReference(ctx, ref)
	if err != nil {
		applog.Error(nil, "reconcile.orphan.reload_fail", err, fields)
		return
	}
	applied, err := r.Callbacks.ConfirmPaid(ctx, o, nil, "")
	if err != nil {
		applog.Error(nil, "reconcile.orphan.confirm_fail", err, fields)
		return
	}
	if applied {
		r.Callbacks.record(ctx, ref, string(st.State), repos.CallbackReconciledPaid, []byte(`{"source":"reconcile"}`))
		r.Metrics.Reconciled("paid")
		rep.Paid++
	}
}

func (r *Reconciler) settle(ctx context.Context, ref string, state repos.SessionState, fields map[string]any) {
	if err := r.Sessions.SetState(ctx, ref, state); err != nil {
		applog.Error(nil, "reconcile.session.update_fail", err, fields)
		return
	}
	r.Metrics.Reconciled(string(state))
}

// Run sweeps every interval until ctx is done. A zero interval disables it.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if _, err := r.Sweep(ctx, now); err != nil {
				applog.Error(nil, "reconcile.sweep.fail", err, nil)
			}
		}
	}
}
