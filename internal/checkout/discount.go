package checkout

import (
	"math"

	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/voucher"
)

// Discounts is the resolved global discount applied once across all groups.
type Discounts struct {
	VoucherDiscount  float64
	PointsDiscount   float64
	PointsRedeemed   int64
	FinalAmountToPay float64
}

// VoucherAmount computes the discount a voucher grants against the combined
// totals. Percentage vouchers cut from the grand subtotal; the result is
// clamped so the payable amount never goes below zero.
func VoucherAmount(v voucher.Voucher, grandSubTotal, grandTotalAfterMember float64) float64 {
	var amount float64
	switch v.DiscountType {
	case voucher.DiscountPercent:
		amount = grandSubTotal * v.Value / 100
	default:
		amount = v.Value
	}
	if amount > grandTotalAfterMember {
		amount = grandTotalAfterMember
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

// PointsRedemption converts a points balance into a discount against the
// remaining payable amount. When the balance covers the rest, only as many
// points as needed are redeemed; otherwise the whole balance goes.
func PointsRedemption(balance int64, remaining, rate float64) (redeemed int64, discount float64) {
	if balance <= 0 || remaining <= 0 || rate <= 0 {
		return 0, 0
	}

	balanceValue := float64(balance) * rate
	if balanceValue >= remaining {
		redeemed = int64(math.Ceil(remaining / rate))
		if redeemed > balance {
			redeemed = balance
		}
		return redeemed, remaining
	}
	return balance, balanceValue
}

// Combine folds voucher and points discounts into the final payable amount.
func Combine(grandTotalAfterMember, voucherDiscount float64, pointsRedeemed int64, pointsDiscount float64) Discounts {
	final := grandTotalAfterMember - voucherDiscount - pointsDiscount
	if final < 0 {
		final = 0
	}
	return Discounts{
		VoucherDiscount:  voucherDiscount,
		PointsDiscount:   pointsDiscount,
		PointsRedeemed:   pointsRedeemed,
		FinalAmountToPay: final,
	}
}
