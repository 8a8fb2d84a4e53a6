package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

// Type enumerates the accepted payment types at checkout.
type Type string

const (
	TypeCreditCard     Type = "credit_card"
	TypeCashOnDelivery Type = "cash_on_delivery"
)

// Valid reports whether t is a known payment type.
func (t Type) Valid() bool {
	return t == TypeCreditCard || t == TypeCashOnDelivery
}

// RequiresInstrument reports whether the type needs a stored payment method.
func (t Type) RequiresInstrument() bool {
	return t == TypeCreditCard
}

// Method is a stored payment instrument, snapshotted onto orders.
type Method struct {
	ID      string `json:"paymentMethodId"`
	UserID  string `json:"userId"`
	Kind    string `json:"kind"`
	Brand   string `json:"brand,omitempty"`
	Last4   string `json:"last4,omitempty"`
	Expires string `json:"expires,omitempty"`
}

type Repository interface {
	GetOwnedWithTx(ctx context.Context, tx pgx.Tx, userID, methodID string) (Method, error)
}

type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

func (r *PostgresRepository) GetOwnedWithTx(ctx context.Context, tx pgx.Tx, userID, methodID string) (Method, error) {
	var m Method
	row := tx.QueryRow(ctx, `
		SELECT id, user_id, kind, brand, last4, expires
		FROM payment_methods WHERE id = $1 AND user_id = $2
	`, methodID, userID)
	if err := row.Scan(&m.ID, &m.UserID, &m.Kind, &m.Brand, &m.Last4, &m.Expires); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Method{}, ErrNotFound
		}
		return Method{}, fmt.Errorf("select payment method: %w", err)
	}
	return m, nil
}
