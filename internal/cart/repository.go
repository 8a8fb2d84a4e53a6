package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var ErrEmptyCart = errors.New("cart is empty")

type Repository interface {
	SnapshotWithTx(ctx context.Context, tx pgx.Tx, userID string) (*Cart, error)
	ClearWithTx(ctx context.Context, tx pgx.Tx, userID string) error
}

type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

// SnapshotWithTx loads the user's active cart with each line joined to its
// product. Returns ErrEmptyCart when the user has no cart or no lines.
func (r *PostgresRepository) SnapshotWithTx(ctx context.Context, tx pgx.Tx, userID string) (*Cart, error) {
	var c Cart
	err := tx.QueryRow(ctx,
		`SELECT id, user_id, updated_at FROM carts WHERE user_id = $1`, userID).
		Scan(&c.ID, &c.UserID, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT ci.id, ci.product_id, p.name, p.price, p.stock_quantity, ci.quantity, ci.options
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Stock, &it.Quantity, &it.Options); err != nil {
			return nil, fmt.Errorf("scan cart_item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}
	return &c, nil
}

// ClearWithTx destroys the user's cart; cart_items cascade.
func (r *PostgresRepository) ClearWithTx(ctx context.Context, tx pgx.Tx, userID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
