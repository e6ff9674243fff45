package service

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/pricing"
)

// Wire keys read by the sheet script
const (
	KeyQuoteNumber      = "quoteNumber"
	KeyTimestamp        = "timestamp"
	KeyCustomerType     = "customerType"
	KeyCompanyName      = "companyName"
	KeyTaxID            = "taxId"
	KeyIndividualName   = "individualName"
	KeyAddress          = "address"
	KeyWebsite          = "website"
	KeyContactName      = "contactName"
	KeyPhone            = "phone"
	KeyEmail            = "email"
	KeyInvoiceEmail     = "invoiceEmail"
	KeySelectedPlan     = "selectedPlan"
	KeyPlanName         = "planName"
	KeyAddons           = "addons"
	KeyAddonNames       = "addonNames"
	KeyMultiStore       = "multiStore"
	KeyAdditionalStores = "additionalStores"
	KeyStampMethod      = "stampMethod"
	KeyPlanPrice        = "planPrice"
	KeyAddonPrice       = "addonPrice"
	KeyMultiStorePrice  = "multiStorePrice"
	KeyTotalPrice       = "totalPrice"
	KeySignature        = "signature"
	KeyStampFile        = "stampFile"
	KeyDriveFolder      = "driveFolder"
)

// imageKeys are the payload fields holding base64 data URLs
var imageKeys = []string{KeySignature, KeyStampFile}

// PrepareFormPayload flattens a snapshot into the wire mapping. Every key is
// always present; missing text is "" and missing numbers are 0.
func PrepareFormPayload(snap domain.QuoteSnapshot) domain.Payload {
	sel := snap.Selection
	addons := lo.Uniq(sel.Addons)

	timestamp := ""
	if !snap.Timestamp.IsZero() {
		timestamp = snap.Timestamp.UTC().Format(time.RFC3339)
	}

	planName := ""
	if sel.Plan.IsValid() {
		planName = pricing.LookupPlan(sel.Plan).Name
	}

	addonCodes := lo.Map(addons, func(a domain.AddonType, _ int) string { return string(a) })
	addonNames := lo.FilterMap(addons, func(a domain.AddonType, _ int) (string, bool) {
		if !a.IsValid() {
			return "", false
		}
		return pricing.LookupAddon(a).Name, true
	})

	multiStore := "No"
	if sel.MultiStore {
		multiStore = "Yes"
	}

	id := snap.Identity
	return domain.Payload{
		KeyQuoteNumber:      snap.QuoteNumber,
		KeyTimestamp:        timestamp,
		KeyCustomerType:     string(id.CustomerType),
		KeyCompanyName:      id.CompanyName,
		KeyTaxID:            id.TaxID,
		KeyIndividualName:   id.IndividualName,
		KeyAddress:          id.Address,
		KeyWebsite:          id.Website,
		KeyContactName:      id.ContactName,
		KeyPhone:            id.Phone,
		KeyEmail:            id.Email,
		KeyInvoiceEmail:     id.InvoiceEmail,
		KeySelectedPlan:     string(sel.Plan),
		KeyPlanName:         planName,
		KeyAddons:           strings.Join(addonCodes, ", "),
		KeyAddonNames:       strings.Join(addonNames, ", "),
		KeyMultiStore:       multiStore,
		KeyAdditionalStores: sel.EffectiveAdditionalStores(),
		KeyStampMethod:      string(snap.Images.StampMethod),
		KeyPlanPrice:        snap.Pricing.PlanPrice,
		KeyAddonPrice:       snap.Pricing.AddonPrice,
		KeyMultiStorePrice:  snap.Pricing.MultiStorePrice,
		KeyTotalPrice:       snap.Pricing.TotalPrice,
		KeySignature:        snap.Images.Signature,
		KeyStampFile:        snap.Images.StampFile,
		KeyDriveFolder:      snap.DriveFolder,
	}
}
