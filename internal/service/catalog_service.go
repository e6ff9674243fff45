package service

import (
	"github.com/samber/lo"

	"github.com/beautysoda/quoteapi/internal/config"
	"github.com/beautysoda/quoteapi/internal/pricing"
)

// PlanView is a catalog plan with display prices
type PlanView struct {
	pricing.Plan
	FormattedPrice           string `json:"formattedPrice"`
	FormattedMultiStorePrice string `json:"formattedMultiStorePrice"`
}

// AddonView is a catalog add-on with its display price
type AddonView struct {
	pricing.Addon
	FormattedPrice string `json:"formattedPrice"`
}

// CatalogResponse is what the form needs to render step 2
type CatalogResponse struct {
	Plans   []PlanView     `json:"plans"`
	Addons  []AddonView    `json:"addons"`
	Company CompanyContact `json:"company"`
}

type CompanyContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type catalogService struct {
	company config.CompanyConfig
}

// NewCatalogService creates a new catalog service
func NewCatalogService(company config.CompanyConfig) *catalogService {
	return &catalogService{company: company}
}

// Catalog lists plans and add-ons in display order
func (s *catalogService) Catalog() CatalogResponse {
	return CatalogResponse{
		Plans: lo.Map(pricing.Plans(), func(p pricing.Plan, _ int) PlanView {
			return PlanView{
				Plan:                     p,
				FormattedPrice:           pricing.FormatCurrency(p.Price),
				FormattedMultiStorePrice: pricing.FormatCurrency(p.MultiStorePrice),
			}
		}),
		Addons: lo.Map(pricing.Addons(), func(a pricing.Addon, _ int) AddonView {
			return AddonView{Addon: a, FormattedPrice: pricing.FormatCurrency(a.Price)}
		}),
		Company: CompanyContact{
			Name:  s.company.Name,
			Email: s.company.SupportEmail,
			Phone: s.company.Phone,
		},
	}
}

// PreviewPrice prices a selection. The request must already be bound, so the enums are valid.
func (s *catalogService) PreviewPrice(req SelectionRequest) PriceResponse {
	sel := req.Selection()
	breakdown := pricing.PriceSelection(sel)
	additional := sel.EffectiveAdditionalStores()
	return PriceResponse{
		PriceBreakdown:   breakdown,
		AdditionalStores: additional,
		TotalStores:      additional + 1,
		FormattedTotal:   pricing.FormatCurrency(breakdown.TotalPrice),
	}
}
