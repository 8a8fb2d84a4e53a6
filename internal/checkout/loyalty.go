package checkout

import "math"

// pointsPerCurrencyUnit is the base accrual rate before the configurable
// multiplier is applied.
const pointsPerCurrencyUnit = 10

// PointsEarned computes loyalty accrual from the final payable amount.
func PointsEarned(finalAmount, multiplier float64) int64 {
	if finalAmount <= 0 || multiplier <= 0 {
		return 0
	}
	return int64(math.Floor(finalAmount * pointsPerCurrencyUnit * multiplier))
}
