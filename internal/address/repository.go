package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

// Address is read-only here. Its fields get copied onto the order at
// settlement time so later edits never rewrite order history.
type Address struct {
	ID         string `json:"addressId"`
	UserID     string `json:"userId"`
	Recipient  string `json:"recipient"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type Repository interface {
	GetOwnedWithTx(ctx context.Context, tx pgx.Tx, userID, addressID string) (Address, error)
}

type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

// GetOwnedWithTx returns the address only when it belongs to the given user.
func (r *PostgresRepository) GetOwnedWithTx(ctx context.Context, tx pgx.Tx, userID, addressID string) (Address, error) {
	var a Address
	row := tx.QueryRow(ctx, `
		SELECT id, user_id, recipient, line1, line2, city, postal_code, country, phone
		FROM addresses WHERE id = $1 AND user_id = $2
	`, addressID, userID)
	if err := row.Scan(&a.ID, &a.UserID, &a.Recipient, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Country, &a.Phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Address{}, ErrNotFound
		}
		return Address{}, fmt.Errorf("select address: %w", err)
	}
	return a, nil
}
