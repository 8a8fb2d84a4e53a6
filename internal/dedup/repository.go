package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repository stores completed checkout attempts keyed by idempotency key, so
// a retried request replays the recorded summary instead of settling twice.
// Failed settlements record nothing: the insert rolls back with the rest of
// the transaction.
type Repository interface {
	Find(ctx context.Context, userID, key string) (json.RawMessage, bool, error)
	RecordWithTx(ctx context.Context, tx pgx.Tx, userID, key string, response any) error
}

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repo struct {
	pool DBPool
}

// NewRepository creates a checkout attempt repository.
func NewRepository(pool DBPool) Repository {
	return &repo{pool: pool}
}

func (r *repo) Find(ctx context.Context, userID, key string) (json.RawMessage, bool, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT response
		FROM checkout_attempts
		WHERE user_id = $1 AND idempotency_key = $2
	`, userID, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select checkout attempt: %w", err)
	}
	return raw, true, nil
}

func (r *repo) RecordWithTx(ctx context.Context, tx pgx.Tx, userID, key string, response any) error {
	body, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("marshal attempt response: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO checkout_attempts (user_id, idempotency_key, response, created_at)
		VALUES ($1, $2, $3, NOW())
	`, userID, key, body); err != nil {
		return fmt.Errorf("insert checkout attempt: %w", err)
	}
	return nil
}
