package voucher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrUsageConflict means the usage-count precondition no longer held when
	// the redemption UPDATE ran: another settlement got there first.
	ErrUsageConflict = errors.New("voucher usage conflict")
)

type Repository interface {
	FindClaimWithTx(ctx context.Context, tx pgx.Tx, userID, code string) (Claim, error)
	FindActiveByCodeWithTx(ctx context.Context, tx pgx.Tx, code string, now time.Time) (Voucher, error)
	RedeemClaimWithTx(ctx context.Context, tx pgx.Tx, claimID string, maxUsesPerUser int) error
	ClaimAndRedeemWithTx(ctx context.Context, tx pgx.Tx, userID string, v Voucher) error
}

type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

// FindClaimWithTx looks up the user's claim for a code, voucher included.
func (r *PostgresRepository) FindClaimWithTx(ctx context.Context, tx pgx.Tx, userID, code string) (Claim, error) {
	var c Claim
	row := tx.QueryRow(ctx, `
		SELECT uv.id, uv.user_id, uv.voucher_id, uv.usage_count, uv.claimed_at,
		       v.id, v.code, v.store_id, v.discount_type, v.value,
		       v.starts_at, v.ends_at, v.max_uses, v.max_uses_per_user, v.used_count, v.active
		FROM user_vouchers uv
		JOIN vouchers v ON v.id = uv.voucher_id
		WHERE uv.user_id = $1 AND v.code = $2
	`, userID, code)
	err := row.Scan(
		&c.ID, &c.UserID, &c.VoucherID, &c.UsageCount, &c.ClaimedAt,
		&c.Voucher.ID, &c.Voucher.Code, &c.Voucher.StoreID, &c.Voucher.DiscountType, &c.Voucher.Value,
		&c.Voucher.StartsAt, &c.Voucher.EndsAt, &c.Voucher.MaxUses, &c.Voucher.MaxUsesPerUser,
		&c.Voucher.UsedCount, &c.Voucher.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Claim{}, ErrNotFound
		}
		return Claim{}, fmt.Errorf("select claim: %w", err)
	}
	return c, nil
}

// FindActiveByCodeWithTx finds a voucher that is active and inside its
// validity window at now.
func (r *PostgresRepository) FindActiveByCodeWithTx(ctx context.Context, tx pgx.Tx, code string, now time.Time) (Voucher, error) {
	var v Voucher
	row := tx.QueryRow(ctx, `
		SELECT id, code, store_id, discount_type, value,
		       starts_at, ends_at, max_uses, max_uses_per_user, used_count, active
		FROM vouchers
		WHERE code = $1 AND active AND starts_at <= $2 AND ends_at >= $2
	`, code, now)
	err := row.Scan(&v.ID, &v.Code, &v.StoreID, &v.DiscountType, &v.Value,
		&v.StartsAt, &v.EndsAt, &v.MaxUses, &v.MaxUsesPerUser, &v.UsedCount, &v.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, ErrNotFound
		}
		return Voucher{}, fmt.Errorf("select voucher: %w", err)
	}
	return v, nil
}

// RedeemClaimWithTx bumps an existing claim's usage count. The per-user cap
// is re-checked in the UPDATE itself; zero rows means a concurrent settlement
// consumed the remaining use.
func (r *PostgresRepository) RedeemClaimWithTx(ctx context.Context, tx pgx.Tx, claimID string, maxUsesPerUser int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE user_vouchers
		SET usage_count = usage_count + 1
		WHERE id = $1 AND usage_count < $2
	`, claimID, maxUsesPerUser)
	if err != nil {
		return fmt.Errorf("redeem claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUsageConflict
	}
	return nil
}

// ClaimAndRedeemWithTx records a first-time claim as already used once and
// consumes one global use. max_uses of zero means uncapped.
func (r *PostgresRepository) ClaimAndRedeemWithTx(ctx context.Context, tx pgx.Tx, userID string, v Voucher) error {
	tag, err := tx.Exec(ctx, `
		UPDATE vouchers
		SET used_count = used_count + 1
		WHERE id = $1 AND (max_uses = 0 OR used_count < max_uses)
	`, v.ID)
	if err != nil {
		return fmt.Errorf("consume voucher use: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUsageConflict
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_vouchers (id, user_id, voucher_id, usage_count, claimed_at)
		VALUES ($1, $2, $3, 1, NOW())
	`, uuid.NewString(), userID, v.ID); err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}
