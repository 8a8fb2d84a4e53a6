package settings

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Settings are the business tunables the settlement engine depends on. They
// are loaded from the settings table and passed into the engine as a value,
// so the engine itself never reads ambient state.
type Settings struct {
	// PointsMultiplier scales loyalty accrual.
	PointsMultiplier float64
	// PointsRate is the currency value of one loyalty point.
	PointsRate float64
	// MemberTiers maps lifetime spend to a membership discount percentage.
	MemberTiers []MemberTier
	// AllowPartialCheckout keeps the legacy behavior of silently dropping
	// cart items missing from a multi-address mapping. Off by default: the
	// whole request is rejected instead.
	AllowPartialCheckout bool
}

// MemberTier grants DiscountPercent once lifetime spend reaches MinSpend.
type MemberTier struct {
	MinSpend        float64 `json:"minSpend"`
	DiscountPercent float64 `json:"discountPercent"`
}

// Defaults returns the settings used when the store has no override.
func Defaults() Settings {
	return Settings{
		PointsMultiplier: 1.0,
		PointsRate:       0.001,
		MemberTiers: []MemberTier{
			{MinSpend: 0, DiscountPercent: 0},
			{MinSpend: 500, DiscountPercent: 5},
			{MinSpend: 1000, DiscountPercent: 10},
		},
		AllowPartialCheckout: false,
	}
}

// MemberDiscountPercent returns the discount percentage for a lifetime spend.
func (s Settings) MemberDiscountPercent(lifetimeSpend float64) float64 {
	tiers := make([]MemberTier, len(s.MemberTiers))
	copy(tiers, s.MemberTiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinSpend < tiers[j].MinSpend })

	percent := 0.0
	for _, t := range tiers {
		if lifetimeSpend >= t.MinSpend {
			percent = t.DiscountPercent
		}
	}
	return percent
}

// Setting keys as stored in the settings table.
const (
	KeyPointsMultiplier     = "points_multiplier"
	KeyPointsRate           = "points_rate"
	KeyMemberTiers          = "member_tiers"
	KeyAllowPartialCheckout = "allow_partial_checkout"
)

// FromValues builds Settings from raw key/value rows. Unknown keys are
// ignored and unparsable values fall back to the default for that key.
func FromValues(values map[string]string) Settings {
	s := Defaults()

	if raw, ok := values[KeyPointsMultiplier]; ok {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 {
			s.PointsMultiplier = f
		}
	}
	if raw, ok := values[KeyPointsRate]; ok {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
			s.PointsRate = f
		}
	}
	if raw, ok := values[KeyMemberTiers]; ok {
		var tiers []MemberTier
		if err := json.Unmarshal([]byte(raw), &tiers); err == nil && len(tiers) > 0 {
			s.MemberTiers = tiers
		}
	}
	if raw, ok := values[KeyAllowPartialCheckout]; ok {
		if b, err := strconv.ParseBool(raw); err == nil {
			s.AllowPartialCheckout = b
		}
	}
	return s
}
