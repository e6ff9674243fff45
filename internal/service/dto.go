package service

import "github.com/beautysoda/quoteapi/internal/domain"

// QuoteSubmitRequest represents the full quote form payload
type QuoteSubmitRequest struct {
	Customer      CustomerInfo      `json:"customer" binding:"required"`
	Selection     SelectionRequest  `json:"selection" binding:"required"`
	Authorization AuthorizationInfo `json:"authorization" binding:"required"`
}

type CustomerInfo struct {
	CustomerType   domain.CustomerType `json:"customerType" binding:"required,oneof=company individual"`
	CompanyName    string              `json:"companyName"`
	TaxID          string              `json:"taxId"`
	IndividualName string              `json:"individualName"`
	Address        string              `json:"companyAddress"`
	Website        string              `json:"website"`
	ContactName    string              `json:"contactName"`
	Phone          string              `json:"phone"`
	Email          string              `json:"email"`
	InvoiceEmail   string              `json:"invoiceEmail"`
}

// SelectionRequest is also the body of the price preview
type SelectionRequest struct {
	Plan             domain.PlanType    `json:"selectedPlan" binding:"required,oneof=plan1 plan2 plan3 plan4"`
	Addons           []domain.AddonType `json:"addons" binding:"omitempty,dive,oneof=addon1 addon2 addon3"`
	MultiStore       bool               `json:"multiStore"`
	AdditionalStores int                `json:"additionalStores" binding:"min=0,max=100"`
}

type AuthorizationInfo struct {
	StampMethod domain.StampMethod `json:"stampMethod" binding:"required,oneof=signature upload contact"`
	Signature   string             `json:"signature"`
	StampFile   string             `json:"stampFile"`
	AgreeTerms  bool               `json:"agreeTerms"`
}

func (c CustomerInfo) Identity() domain.Identity {
	return domain.Identity{
		CustomerType:   c.CustomerType,
		CompanyName:    c.CompanyName,
		TaxID:          c.TaxID,
		IndividualName: c.IndividualName,
		Address:        c.Address,
		Website:        c.Website,
		ContactName:    c.ContactName,
		Phone:          c.Phone,
		Email:          c.Email,
		InvoiceEmail:   c.InvoiceEmail,
	}
}

func (s SelectionRequest) Selection() domain.Selection {
	return domain.Selection{
		Plan:             s.Plan,
		Addons:           s.Addons,
		MultiStore:       s.MultiStore,
		AdditionalStores: s.AdditionalStores,
	}
}

func (a AuthorizationInfo) Images() domain.Images {
	return domain.Images{
		StampMethod: a.StampMethod,
		Signature:   a.Signature,
		StampFile:   a.StampFile,
	}
}

// PriceResponse is the price preview
type PriceResponse struct {
	domain.PriceBreakdown
	AdditionalStores int    `json:"additionalStores"`
	TotalStores      int    `json:"totalStores"`
	FormattedTotal   string `json:"formattedTotal"`
}

// QuoteSubmitResponse is returned for every pipeline run, successful or not
type QuoteSubmitResponse struct {
	SubmissionID string                 `json:"submission_id,omitempty"`
	State        domain.SubmissionState `json:"state"`
	domain.SubmissionResult
	Pricing  domain.PriceBreakdown `json:"pricing"`
	Warnings []string              `json:"warnings,omitempty"`
}
