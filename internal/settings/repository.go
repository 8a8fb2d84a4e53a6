package settings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type Repository interface {
	LoadWithTx(ctx context.Context, tx pgx.Tx) (Settings, error)
}

type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

// LoadWithTx reads all settings rows and folds them over the defaults.
func (r *PostgresRepository) LoadWithTx(ctx context.Context, tx pgx.Tx) (Settings, error) {
	rows, err := tx.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return Settings{}, fmt.Errorf("select settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Settings{}, fmt.Errorf("scan setting: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return Settings{}, fmt.Errorf("rows: %w", err)
	}

	return FromValues(values), nil
}
