package domain

// PlanType identifies a listing tier
type PlanType string

const (
	PlanPromo1Year PlanType = "plan1"
	PlanListing1Y  PlanType = "plan2"
	PlanListing2Y  PlanType = "plan3"
	PlanListing3Y  PlanType = "plan4"
)

// IsValid checks if the plan is part of the catalog
func (p PlanType) IsValid() bool {
	switch p {
	case PlanPromo1Year, PlanListing1Y, PlanListing2Y, PlanListing3Y:
		return true
	default:
		return false
	}
}

// AddonType identifies an optional per-store service
type AddonType string

const (
	AddonRecommendation AddonType = "addon1"
	AddonInfoCard       AddonType = "addon2"
	AddonListingBundle  AddonType = "addon3"
)

// IsValid checks if the add-on is part of the catalog
func (a AddonType) IsValid() bool {
	switch a {
	case AddonRecommendation, AddonInfoCard, AddonListingBundle:
		return true
	default:
		return false
	}
}

// CustomerType distinguishes company and individual customers
type CustomerType string

const (
	CustomerTypeCompany    CustomerType = "company"
	CustomerTypeIndividual CustomerType = "individual"
)

func (c CustomerType) IsValid() bool {
	return c == CustomerTypeCompany || c == CustomerTypeIndividual
}

// StampMethod is how the customer authorizes the quote
type StampMethod string

const (
	StampMethodSignature StampMethod = "signature"
	StampMethodUpload    StampMethod = "upload"
	StampMethodContact   StampMethod = "contact"
)

func (m StampMethod) IsValid() bool {
	switch m {
	case StampMethodSignature, StampMethodUpload, StampMethodContact:
		return true
	default:
		return false
	}
}

// Transport is how a payload is delivered to the sheets endpoint
type Transport string

const (
	TransportQuery Transport = "QUERY"
	TransportBody  Transport = "BODY"
)

// Method returns the HTTP method used by the transport
func (t Transport) Method() string {
	if t == TransportBody {
		return "POST"
	}
	return "GET"
}

// SubmissionState represents the progress of a single submission run
type SubmissionState string

const (
	SubmissionStateIdle              SubmissionState = "IDLE"
	SubmissionStateValidating        SubmissionState = "VALIDATING"
	SubmissionStateInvalid           SubmissionState = "INVALID"
	SubmissionStatePreparing         SubmissionState = "PREPARING"
	SubmissionStateCompressing       SubmissionState = "COMPRESSING"
	SubmissionStateTransportDecision SubmissionState = "TRANSPORT_DECISION"
	SubmissionStateAttempting        SubmissionState = "ATTEMPTING"
	SubmissionStateRetrying          SubmissionState = "RETRYING"
	SubmissionStateSucceeded         SubmissionState = "SUCCEEDED"
	SubmissionStateExhausted         SubmissionState = "EXHAUSTED"
)

func (s SubmissionState) IsValid() bool {
	switch s {
	case SubmissionStateIdle, SubmissionStateValidating, SubmissionStateInvalid,
		SubmissionStatePreparing, SubmissionStateCompressing, SubmissionStateTransportDecision,
		SubmissionStateAttempting, SubmissionStateRetrying, SubmissionStateSucceeded,
		SubmissionStateExhausted:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible
func (s SubmissionState) IsTerminal() bool {
	switch s {
	case SubmissionStateInvalid, SubmissionStateSucceeded, SubmissionStateExhausted:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a state transition is valid
func (s SubmissionState) CanTransitionTo(next SubmissionState) bool {
	switch s {
	case SubmissionStateIdle:
		return next == SubmissionStateValidating
	case SubmissionStateValidating:
		return next == SubmissionStateInvalid ||
			next == SubmissionStatePreparing
	case SubmissionStatePreparing:
		return next == SubmissionStateCompressing
	case SubmissionStateCompressing:
		return next == SubmissionStateTransportDecision
	case SubmissionStateTransportDecision:
		return next == SubmissionStateAttempting
	case SubmissionStateAttempting:
		return next == SubmissionStateSucceeded ||
			next == SubmissionStateRetrying ||
			next == SubmissionStateExhausted
	case SubmissionStateRetrying:
		// Exhausted when the caller's context ends during the backoff
		return next == SubmissionStateAttempting ||
			next == SubmissionStateExhausted
	case SubmissionStateInvalid, SubmissionStateSucceeded, SubmissionStateExhausted:
		return false // Terminal states
	default:
		return false
	}
}
