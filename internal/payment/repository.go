package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// Repository records every provider callback for audit and replay
// detection. The (provider, event_id) unique key makes redelivered
// callbacks observable without processing them twice.
type Repository interface {
	SaveWebhook(ctx context.Context, provider, eventID, orderID string,
		payload json.RawMessage, signatureValid bool) (webhookID int64, isDuplicate bool, err error)
	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SaveWebhook(ctx context.Context, provider, eventID, orderID string,
	payload json.RawMessage, signatureValid bool) (int64, bool, error) {

	const q = `
	INSERT INTO payment_webhooks (provider, event_id, order_id, signature_valid, payload)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (provider, event_id)
	DO NOTHING
	RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, q, provider, eventID, orderID, signatureValid, payload).Scan(&id)
	if err != nil {
		// Conflict path: the insert matched an existing delivery.
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}
	return id, false, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE payment_webhooks SET processed_at = NOW() WHERE id = $1`, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE payment_webhooks SET process_error = $2 WHERE id = $1`, webhookID, reason)
	return err
}
