// Package pricing computes quote prices from the fixed plan and add-on catalog.
// Every caller (price preview, form state, submission payload) goes through
// CalculatePrice so the customer never sees two different totals.
package pricing

import (
	"github.com/samber/lo"

	"github.com/beautysoda/quoteapi/internal/domain"
)

// CalculatePrice prices a selection. Add-ons are charged for every store,
// the primary one included; the plan surcharge applies to additional stores only.
func CalculatePrice(plan domain.PlanType, selected []domain.AddonType, multiStore bool, additionalStores int) domain.PriceBreakdown {
	p := LookupPlan(plan)

	if !multiStore || additionalStores < 0 {
		additionalStores = 0
	}
	totalStores := int64(additionalStores + 1)

	var addonPrice int64
	for _, a := range lo.Uniq(selected) {
		addonPrice += LookupAddon(a).Price * totalStores
	}

	var multiStorePrice int64
	if multiStore {
		multiStorePrice = p.MultiStorePrice * int64(additionalStores)
	}

	return domain.PriceBreakdown{
		PlanPrice:       p.Price,
		AddonPrice:      addonPrice,
		MultiStorePrice: multiStorePrice,
		TotalPrice:      p.Price + addonPrice + multiStorePrice,
	}
}

// PriceSelection is CalculatePrice over a Selection value
func PriceSelection(s domain.Selection) domain.PriceBreakdown {
	return CalculatePrice(s.Plan, s.Addons, s.MultiStore, s.AdditionalStores)
}
