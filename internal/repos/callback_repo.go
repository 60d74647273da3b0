package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// CallbackOutcome is what the reconciler did with an inbound notification.
type CallbackOutcome string

const (
	CallbackAppliedPaid    CallbackOutcome = "applied_paid"
	CallbackAppliedFailed  CallbackOutcome = "applied_failed"
	CallbackDuplicate      CallbackOutcome = "duplicate"
	CallbackUnknownRef     CallbackOutcome = "unknown_reference"
	CallbackMalformed      CallbackOutcome = "malformed"
	CallbackReconciledPaid CallbackOutcome = "reconciled_paid"
)

type CallbackRecord struct {
	ID              int64           `db:"id"`
	ClientReference string          `db:"client_reference"`
	Status          string          `db:"status"`
	Outcome         CallbackOutcome `db:"outcome"`
	Body            string          `db:"body"`
	ReceivedAt      string          `db:"received_at"`
}

type CallbackRepo struct{ db *sqlx.DB }

func NewCallbackRepo(db *sqlx.DB) *CallbackRepo { return &CallbackRepo{db: db} }

func (r *CallbackRepo) Record(ctx context.Context, ref, status string, outcome CallbackOutcome, body []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_callbacks (client_reference, status, outcome, body, received_at)
		VALUES (?, ?, ?, ?, ?)
	`, ref, status, outcome, string(body), now())
	return err
}

func (r *CallbackRepo) ByReference(ctx context.Context, ref string) ([]CallbackRecord, error) {
	var out []CallbackRecord
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, client_reference, status, outcome, body, received_at
		FROM payment_callbacks WHERE client_reference = ? ORDER BY id
	`, ref)
	return out, err
}
