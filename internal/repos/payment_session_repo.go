package repos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"bubblebliss/internal/money"
)

// SessionState tracks a checkout attempt across the gateway call and the
// order transaction.
type SessionState string

const (
	SessionInitiated    SessionState = "initiated"
	SessionRejected     SessionState = "rejected"
	SessionAccepted     SessionState = "accepted"
	SessionPersisted    SessionState = "persisted"
	SessionRecovered    SessionState = "recovered"
	SessionAbandoned    SessionState = "abandoned"
	SessionOrphanedPaid SessionState = "orphaned_paid"
)

type PaymentSession struct {
	ClientReference string        `db:"client_reference"`
	AmountPesewas   money.Pesewas `db:"amount_pesewas"`
	State           SessionState  `db:"state"`
	CheckoutID      string        `db:"checkout_id"`
	Payload         string        `db:"payload"`
	CreatedAt       string        `db:"created_at"`
	UpdatedAt       string        `db:"updated_at"`
}

// Order decodes the priced order stored when the session was opened.
func (s PaymentSession) Order() (NewOrder, error) {
	var o NewOrder
	err := json.Unmarshal([]byte(s.Payload), &o)
	return o, err
}

type PaymentSessionRepo struct{ db *sqlx.DB }

func NewPaymentSessionRepo(db *sqlx.DB) *PaymentSessionRepo { return &PaymentSessionRepo{db: db} }

// Begin records the attempt before the provider is called.
func (r *PaymentSessionRepo) Begin(ctx context.Context, o NewOrder) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return err
	}
	ts := now()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO payment_sessions (client_reference, amount_pesewas, state, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, o.ClientReference, o.TotalPesewas, SessionInitiated, string(payload), ts, ts)
	return err
}

func (r *PaymentSessionRepo) MarkRejected(ctx context.Context, ref string) error {
	return r.SetState(ctx, ref, SessionRejected)
}

// MarkAccepted stores the provider session id and folds it into the payload
// so a later recovery writes the same order the checkout would have.
func (r *PaymentSessionRepo) MarkAccepted(ctx context.Context, o NewOrder) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_sessions SET state = ?, checkout_id = ?, payload = ?, updated_at = ?
		WHERE client_reference = ?
	`, SessionAccepted, o.CheckoutID, string(payload), now(), o.ClientReference)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPersistedTx flips an open session inside the order transaction. It
// fails with ErrNotFound when the session was already settled, so an order
// is never written twice for one reference.
func (r *PaymentSessionRepo) MarkPersistedTx(ctx context.Context, tx *sqlx.Tx, ref string, state SessionState) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE payment_sessions SET state = ?, updated_at = ?
		WHERE client_reference = ? AND state IN (?, ?)
	`, state, now(), ref, SessionInitiated, SessionAccepted)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PaymentSessionRepo) SetState(ctx context.Context, ref string, state SessionState) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_sessions SET state = ?, updated_at = ? WHERE client_reference = ?
	`, state, now(), ref)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PaymentSessionRepo) Get(ctx context.Context, ref string) (PaymentSession, error) {
	var s PaymentSession
	err := r.db.GetContext(ctx, &s, `
		SELECT client_reference, amount_pesewas, state, checkout_id, payload, created_at, updated_at
		FROM payment_sessions WHERE client_reference = ?
	`, ref)
	return s, notFound(err)
}

// ListStale returns open sessions (initiated or accepted) that never reached
// the orders table and were opened before cutoff, oldest first.
func (r *PaymentSessionRepo) ListStale(ctx context.Context, cutoff time.Time) ([]PaymentSession, error) {
	var out []PaymentSession
	err := r.db.SelectContext(ctx, &out, `
		SELECT client_reference, amount_pesewas, state, checkout_id, payload, created_at, updated_at
		FROM payment_sessions
		WHERE state IN (?, ?) AND created_at <= ?
		ORDER BY created_at, client_reference
	`, SessionInitiated, SessionAccepted, cutoff.UTC().Format(time.RFC3339))
	return out, err
}
