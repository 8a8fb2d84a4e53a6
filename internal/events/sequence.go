package events

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SequenceRepository manages producer-side sequences for events.
type SequenceRepository interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

// SeqDBPool matches the methods from *pgxpool.Pool that we use.
type SeqDBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type sequenceRepo struct {
	pool SeqDBPool
}

// NewSequenceRepository creates a new sequence repository.
func NewSequenceRepository(pool SeqDBPool) SequenceRepository {
	return &sequenceRepo{pool: pool}
}

func (r *sequenceRepo) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, `
		INSERT INTO event_sequence (partition_key, last_sequence, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (partition_key)
		DO UPDATE SET last_sequence = event_sequence.last_sequence + 1, updated_at = NOW()
		RETURNING last_sequence
	`, partitionKey).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
