package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

// User carries the two fields settlement reads and the one it mutates.
type User struct {
	ID            string  `json:"userId"`
	Email         string  `json:"email"`
	LifetimeSpend float64 `json:"lifetimeSpend"`
	PointsBalance int64   `json:"pointsBalance"`
}

type Repository interface {
	GetWithTx(ctx context.Context, tx pgx.Tx, userID string) (User, error)
	AdjustPointsWithTx(ctx context.Context, tx pgx.Tx, userID string, delta int64) error
	AddLifetimeSpendWithTx(ctx context.Context, tx pgx.Tx, userID string, amount float64) error
}

type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

func (r *PostgresRepository) GetWithTx(ctx context.Context, tx pgx.Tx, userID string) (User, error) {
	var u User
	row := tx.QueryRow(ctx,
		`SELECT id, email, lifetime_spend, points_balance FROM users WHERE id=$1`, userID)
	if err := row.Scan(&u.ID, &u.Email, &u.LifetimeSpend, &u.PointsBalance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) AdjustPointsWithTx(ctx context.Context, tx pgx.Tx, userID string, delta int64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE users SET points_balance = points_balance + $2 WHERE id=$1 AND points_balance + $2 >= 0`,
		userID, delta)
	if err != nil {
		return fmt.Errorf("adjust points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("adjust points for %s: %w", userID, ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) AddLifetimeSpendWithTx(ctx context.Context, tx pgx.Tx, userID string, amount float64) error {
	if _, err := tx.Exec(ctx,
		`UPDATE users SET lifetime_spend = lifetime_spend + $2 WHERE id=$1`, userID, amount); err != nil {
		return fmt.Errorf("add lifetime spend: %w", err)
	}
	return nil
}
