package domain

import (
	"time"

	"github.com/google/uuid"
)

// Selection is the plan, add-ons and store count chosen in step 2 of the form
type Selection struct {
	Plan             PlanType    `json:"selectedPlan"`
	Addons           []AddonType `json:"addons"`
	MultiStore       bool        `json:"multiStore"`
	AdditionalStores int         `json:"additionalStores"`
}

// EffectiveAdditionalStores is AdditionalStores when MultiStore is set, otherwise 0
func (s Selection) EffectiveAdditionalStores() int {
	if !s.MultiStore || s.AdditionalStores < 0 {
		return 0
	}
	return s.AdditionalStores
}

// PriceBreakdown holds whole NT$ amounts; TotalPrice is always the sum of the parts
type PriceBreakdown struct {
	PlanPrice       int64 `json:"planPrice"`
	AddonPrice      int64 `json:"addonPrice"`
	MultiStorePrice int64 `json:"multiStorePrice"`
	TotalPrice      int64 `json:"totalPrice"`
}

// Identity is the customer data collected in step 1 of the form
type Identity struct {
	CustomerType   CustomerType `json:"customerType"`
	CompanyName    string       `json:"companyName"`
	TaxID          string       `json:"taxId"`
	IndividualName string       `json:"individualName"`
	Address        string       `json:"companyAddress"`
	Website        string       `json:"website"`
	ContactName    string       `json:"contactName"`
	Phone          string       `json:"phone"`
	Email          string       `json:"email"`
	InvoiceEmail   string       `json:"invoiceEmail"`
}

// Images carries the authorization method and the base64 data URLs captured in step 3
type Images struct {
	StampMethod StampMethod `json:"stampMethod"`
	Signature   string      `json:"signature"`
	StampFile   string      `json:"stampFile"`
}

// QuoteSnapshot is the full form at submit time
type QuoteSnapshot struct {
	QuoteNumber string
	Timestamp   time.Time
	Identity    Identity
	Selection   Selection
	Pricing     PriceBreakdown
	Images      Images
	DriveFolder string
}

// SubmissionResult is what a caller sees once the pipeline returns
type SubmissionResult struct {
	Success     bool      `json:"success"`
	QuoteNumber string    `json:"quoteNumber,omitempty"`
	Transport   Transport `json:"transport,omitempty"`
	Attempts    int       `json:"attempts"`
	Message     string    `json:"message"`
	Error       string    `json:"error,omitempty"`
}

// Submission is the audit record of one pipeline run
type Submission struct {
	ID           uuid.UUID
	QuoteNumber  string
	CustomerType CustomerType
	Plan         PlanType
	TotalPrice   int64
	Transport    *Transport
	Attempts     int
	State        SubmissionState
	Message      string
	ErrorDetail  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SubmissionEvent represents an audit event for a submission
type SubmissionEvent struct {
	ID           uuid.UUID
	SubmissionID uuid.UUID
	EventType    string
	EventData    map[string]interface{} // JSONB
	CreatedAt    time.Time
}

// Operator is a staff member allowed to use the admin routes
type Operator struct {
	ID         uuid.UUID
	Name       string
	APIKeyHash string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
