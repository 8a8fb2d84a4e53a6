package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Get(ctx context.Context, productID string) (Product, error)
	GetGiftWrapOptionWithTx(ctx context.Context, tx pgx.Tx, optionID string) (GiftWrapOption, error)
	DecrementStockWithTx(ctx context.Context, tx pgx.Tx, productID string, quantity int) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Get(ctx context.Context, productID string) (Product, error) {
	var p Product
	row := r.pool.QueryRow(ctx,
		`SELECT id, store_id, name, price, stock_quantity FROM products WHERE id=$1`, productID)
	if err := row.Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.StockQuantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) GetGiftWrapOptionWithTx(ctx context.Context, tx pgx.Tx, optionID string) (GiftWrapOption, error) {
	var o GiftWrapOption
	row := tx.QueryRow(ctx, `SELECT id, name, price FROM gift_wrap_options WHERE id=$1`, optionID)
	if err := row.Scan(&o.ID, &o.Name, &o.Price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GiftWrapOption{}, ErrNotFound
		}
		return GiftWrapOption{}, err
	}
	return o, nil
}

// DecrementStockWithTx takes quantity units off a product's stock inside the
// caller's transaction. The decrement is conditional on enough stock still
// being there, so a concurrent checkout that drained the row fails here
// instead of driving stock negative.
func (r *PostgresRepository) DecrementStockWithTx(ctx context.Context, tx pgx.Tx, productID string, quantity int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at=now()
		WHERE id=$1 AND stock_quantity >= $2
	`, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock %s: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productID, ErrInsufficientStock)
	}
	return nil
}
