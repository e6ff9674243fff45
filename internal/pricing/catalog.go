package pricing

import (
	"fmt"

	"github.com/beautysoda/quoteapi/internal/domain"
)

// Plan is a listing tier with its per-additional-store surcharge
type Plan struct {
	Type            domain.PlanType `json:"id"`
	Name            string          `json:"name"`
	Price           int64           `json:"price"`
	MultiStorePrice int64           `json:"multiStorePrice"`
}

// Addon is an optional service charged once per store
type Addon struct {
	Type  domain.AddonType `json:"id"`
	Name  string           `json:"name"`
	Price int64            `json:"price"`
}

var plans = []Plan{
	{Type: domain.PlanPromo1Year, Name: "活動價-1年 (限時限量)", Price: 999, MultiStorePrice: 999},
	{Type: domain.PlanListing1Y, Name: "店家刊登-1年", Price: 9000, MultiStorePrice: 2000},
	{Type: domain.PlanListing2Y, Name: "店家刊登-2年", Price: 15000, MultiStorePrice: 2000},
	{Type: domain.PlanListing3Y, Name: "店家刊登-3年", Price: 20000, MultiStorePrice: 2000},
}

var addons = []Addon{
	{Type: domain.AddonRecommendation, Name: "店家推薦文", Price: 3500},
	{Type: domain.AddonInfoCard, Name: "主題文店家資訊卡", Price: 1500},
	{Type: domain.AddonListingBundle, Name: "店家刊登+店家推薦文", Price: 10000},
}

// Plans lists the catalog plans in display order
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// Addons lists the catalog add-ons in display order
func Addons() []Addon {
	out := make([]Addon, len(addons))
	copy(out, addons)
	return out
}

// LookupPlan panics on an unknown plan: callers validate enums at the edge.
func LookupPlan(t domain.PlanType) Plan {
	for _, p := range plans {
		if p.Type == t {
			return p
		}
	}
	panic(fmt.Sprintf("pricing: unknown plan %q", t))
}

// LookupAddon panics on an unknown add-on.
func LookupAddon(t domain.AddonType) Addon {
	for _, a := range addons {
		if a.Type == t {
			return a
		}
	}
	panic(fmt.Sprintf("pricing: unknown addon %q", t))
}
