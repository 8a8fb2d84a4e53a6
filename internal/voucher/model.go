package voucher

import "time"

// DiscountType says how a voucher's value is interpreted.
type DiscountType string

const (
	DiscountFixed   DiscountType = "fixed"
	DiscountPercent DiscountType = "percent"
)

// Voucher is a global or store-scoped discount definition.
type Voucher struct {
	ID             string       `json:"voucherId"`
	Code           string       `json:"code"`
	StoreID        string       `json:"storeId,omitempty"`
	DiscountType   DiscountType `json:"discountType"`
	Value          float64      `json:"value"`
	StartsAt       time.Time    `json:"startsAt"`
	EndsAt         time.Time    `json:"endsAt"`
	MaxUses        int          `json:"maxUses"`
	MaxUsesPerUser int          `json:"maxUsesPerUser"`
	UsedCount      int          `json:"usedCount"`
	Active         bool         `json:"active"`
}

// Expired reports whether the voucher's validity window has passed.
func (v Voucher) Expired(now time.Time) bool {
	return now.After(v.EndsAt)
}

// Claim is a user's hold on a voucher, with how often they have used it.
type Claim struct {
	ID         string    `json:"claimId"`
	UserID     string    `json:"userId"`
	VoucherID  string    `json:"voucherId"`
	UsageCount int       `json:"usageCount"`
	ClaimedAt  time.Time `json:"claimedAt"`
	Voucher    Voucher   `json:"voucher"`
}

// Exhausted reports whether the claim has no uses left.
func (c Claim) Exhausted() bool {
	return c.UsageCount >= c.Voucher.MaxUsesPerUser
}
