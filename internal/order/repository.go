package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repository interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// CreateWithTx inserts the order and its items inside the caller's
// transaction. Commit stays with the caller so a whole settlement lands or
// rolls back as one.
func (r *PostgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return fmt.Errorf("marshal shipping snapshot: %w", err)
	}
	paySnap, err := json.Marshal(o.Payment)
	if err != nil {
		return fmt.Errorf("marshal payment snapshot: %w", err)
	}

	var groupTx *string
	if o.GroupTransactionID != "" {
		groupTx = &o.GroupTransactionID
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, group_transaction_id, status, payment_status, payment_type,
			sub_total, member_discount, voucher_discount, points_discount, points_redeemed,
			gift_wrap_price, total_amount, is_gift, gift_message,
			shipping_snapshot, payment_snapshot, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		o.ID, o.UserID, groupTx, o.Status, o.PaymentStatus, o.PaymentType,
		o.SubTotal, o.MemberDiscount, o.VoucherDiscount, o.PointsDiscount, o.PointsRedeemed,
		o.GiftWrapPrice, o.TotalAmount, o.IsGift, o.GiftMessage,
		shipping, paySnap, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		opts, err := json.Marshal(it.Options)
		if err != nil {
			return fmt.Errorf("marshal item options: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity, options)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, it.ID, o.ID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity, opts)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	var groupTx *string
	var shipping, paySnap []byte
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, group_transaction_id, status, payment_status, payment_type,
		       sub_total, member_discount, voucher_discount, points_discount, points_redeemed,
		       gift_wrap_price, total_amount, is_gift, gift_message,
		       shipping_snapshot, payment_snapshot, created_at
		FROM orders WHERE id = $1
	`, orderID).Scan(
		&o.ID, &o.UserID, &groupTx, &o.Status, &o.PaymentStatus, &o.PaymentType,
		&o.SubTotal, &o.MemberDiscount, &o.VoucherDiscount, &o.PointsDiscount, &o.PointsRedeemed,
		&o.GiftWrapPrice, &o.TotalAmount, &o.IsGift, &o.GiftMessage,
		&shipping, &paySnap, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	if groupTx != nil {
		o.GroupTransactionID = *groupTx
	}
	if err := json.Unmarshal(shipping, &o.Shipping); err != nil {
		return nil, fmt.Errorf("unmarshal shipping snapshot: %w", err)
	}
	if err := json.Unmarshal(paySnap, &o.Payment); err != nil {
		return nil, fmt.Errorf("unmarshal payment snapshot: %w", err)
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, group_transaction_id, status, payment_status, payment_type,
		       sub_total, member_discount, voucher_discount, points_discount, points_redeemed,
		       gift_wrap_price, total_amount, is_gift, gift_message, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		var groupTx *string
		if err := rows.Scan(
			&o.ID, &o.UserID, &groupTx, &o.Status, &o.PaymentStatus, &o.PaymentType,
			&o.SubTotal, &o.MemberDiscount, &o.VoucherDiscount, &o.PointsDiscount, &o.PointsRedeemed,
			&o.GiftWrapPrice, &o.TotalAmount, &o.IsGift, &o.GiftMessage, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if groupTx != nil {
			o.GroupTransactionID = *groupTx
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, product_name, unit_price, quantity, options
		FROM order_items WHERE order_id = $1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var opts []byte
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity, &opts); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		if len(opts) > 0 {
			if err := json.Unmarshal(opts, &it.Options); err != nil {
				return nil, fmt.Errorf("unmarshal item options: %w", err)
			}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}
