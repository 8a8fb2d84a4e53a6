package checkout

import (
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/catalog"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/settings"
)

// GroupPricing is one group's computed charges before global discounts.
type GroupPricing struct {
	Group            Group
	SubTotal         float64
	MemberDiscount   float64
	GiftWrapPrice    float64
	TotalAfterMember float64
}

// PricingTotals accumulates every group plus the two running sums the global
// discount step works against.
type PricingTotals struct {
	Groups                []GroupPricing
	GrandSubTotal         float64
	GrandTotalAfterMember float64
}

// PriceGroups computes subtotal, membership discount, and gift-wrap cost per
// group. The membership percentage comes from the caller's lifetime spend as
// it stands now, before this settlement adds to it.
func PriceGroups(groups []Group, lifetimeSpend float64, cfg settings.Settings, wrap *catalog.GiftWrapOption) PricingTotals {
	percent := cfg.MemberDiscountPercent(lifetimeSpend)

	totals := PricingTotals{Groups: make([]GroupPricing, 0, len(groups))}
	for _, g := range groups {
		gp := GroupPricing{Group: g}
		for _, it := range g.Items {
			gp.SubTotal += it.UnitPrice * float64(it.Quantity)
		}
		gp.MemberDiscount = gp.SubTotal * percent / 100
		gp.TotalAfterMember = gp.SubTotal - gp.MemberDiscount
		if wrap != nil {
			gp.GiftWrapPrice = wrap.Price
			gp.TotalAfterMember += wrap.Price
		}

		totals.GrandSubTotal += gp.SubTotal
		totals.GrandTotalAfterMember += gp.TotalAfterMember
		totals.Groups = append(totals.Groups, gp)
	}
	return totals
}
