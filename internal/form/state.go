// Package form models the three-step quote form as an immutable value.
// Every transition returns a new State; a State handed to another caller
// never changes underneath it.
package form

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/pricing"
	"github.com/beautysoda/quoteapi/internal/rules"
)

// Step is a page of the form
type Step int

const (
	StepCustomer Step = 1
	StepPlan     Step = 2
	StepConfirm  Step = 3
)

// Data is everything the customer entered
type Data struct {
	Identity   domain.Identity
	Selection  domain.Selection
	Images     domain.Images
	AgreeTerms bool
}

// Patch is a partial update; nil fields are left alone
type Patch struct {
	Identity   *domain.Identity
	Selection  *domain.Selection
	Images     *domain.Images
	AgreeTerms *bool
}

// State is the form at a given step
type State struct {
	step      Step
	data      Data
	maxUpload int
}

// StepError lists the fields that block leaving a step, keyed by field name
type StepError struct {
	Step   Step
	Fields map[string]string
}

func (e *StepError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range e.fieldNames() {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("step %d incomplete: %s", e.Step, strings.Join(parts, ", "))
}

// Messages returns the field messages in field-name order
func (e *StepError) Messages() []string {
	out := make([]string, 0, len(e.Fields))
	for _, k := range e.fieldNames() {
		out = append(out, e.Fields[k])
	}
	return out
}

func (e *StepError) fieldNames() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// New returns the form as first shown
func New() State {
	return State{
		step:      StepCustomer,
		maxUpload: rules.DefaultMaxUploadBytes,
		data: Data{
			Identity:  domain.Identity{CustomerType: domain.CustomerTypeCompany},
			Selection: domain.Selection{Plan: domain.PlanPromo1Year},
			Images:    domain.Images{StampMethod: domain.StampMethodUpload},
		},
	}
}

func (s State) Step() Step { return s.step }

// WithMaxUpload sets the decoded size limit for an uploaded stamp image.
// Non-positive values keep the current limit.
func (s State) WithMaxUpload(n int) State {
	next := s.with(s.step)
	if n > 0 {
		next.maxUpload = n
	}
	return next
}

func (s State) with(step Step) State {
	return State{step: step, data: s.Data(), maxUpload: s.maxUpload}
}

// Data returns a copy of the entered data
func (s State) Data() Data {
	d := s.data
	d.Selection.Addons = cloneAddons(s.data.Selection.Addons)
	return d
}

// Update applies a patch and returns the new state
func (s State) Update(p Patch) State {
	next := s.with(s.step)
	if p.Identity != nil {
		next.data.Identity = *p.Identity
	}
	if p.Selection != nil {
		sel := *p.Selection
		sel.Addons = cloneAddons(sel.Addons)
		if !sel.MultiStore {
			sel.AdditionalStores = 0
		}
		next.data.Selection = sel
	}
	if p.Images != nil {
		next.data.Images = *p.Images
	}
	if p.AgreeTerms != nil {
		next.data.AgreeTerms = *p.AgreeTerms
	}
	return next
}

// Next validates the current step and moves forward. On the last step it only validates.
func (s State) Next() (State, error) {
	if err := s.validateStep(); err != nil {
		return s, err
	}
	next := s.with(s.step)
	if next.step < StepConfirm {
		next.step++
	}
	return next, nil
}

// Prev moves back one step without validation
func (s State) Prev() State {
	prev := s.with(s.step)
	if prev.step > StepCustomer {
		prev.step--
	}
	return prev
}

// Price recomputes the breakdown for the current selection
func (s State) Price() domain.PriceBreakdown {
	return pricing.PriceSelection(s.data.Selection)
}

// Ready reports whether every step passes validation
func (s State) Ready() error {
	for step := StepCustomer; step <= StepConfirm; step++ {
		if err := s.with(step).validateStep(); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot freezes the form for submission. The form must be on the last step and Ready.
func (s State) Snapshot(quoteNumber string, at time.Time) (domain.QuoteSnapshot, error) {
	if s.step != StepConfirm {
		return domain.QuoteSnapshot{}, fmt.Errorf("form is on step %d, submission needs step %d", s.step, StepConfirm)
	}
	if err := s.Ready(); err != nil {
		return domain.QuoteSnapshot{}, err
	}
	d := s.Data()
	return domain.QuoteSnapshot{
		QuoteNumber: quoteNumber,
		Timestamp:   at,
		Identity:    d.Identity,
		Selection:   d.Selection,
		Pricing:     pricing.PriceSelection(d.Selection),
		Images:      d.Images,
	}, nil
}

func (s State) validateStep() error {
	var fields map[string]string
	switch s.step {
	case StepCustomer:
		fields = validateCustomer(s.data.Identity)
	case StepPlan:
		fields = validatePlan(s.data.Selection)
	case StepConfirm:
		fields = validateConfirm(s.data, s.maxUpload)
	}
	if len(fields) > 0 {
		return &StepError{Step: s.step, Fields: fields}
	}
	return nil
}

func validateCustomer(id domain.Identity) map[string]string {
	errs := map[string]string{}

	switch id.CustomerType {
	case domain.CustomerTypeCompany:
		if strings.TrimSpace(id.CompanyName) == "" {
			errs["companyName"] = "請輸入公司名稱"
		}
		if strings.TrimSpace(id.TaxID) == "" {
			errs["taxId"] = "請輸入統一編號"
		} else if !rules.IsTaxID(id.TaxID) {
			errs["taxId"] = "統一編號必須是8位數字"
		}
	case domain.CustomerTypeIndividual:
		if strings.TrimSpace(id.IndividualName) == "" {
			errs["individualName"] = "請輸入姓名"
		}
	default:
		errs["customerType"] = "請選擇客戶類型"
	}

	if strings.TrimSpace(id.Address) == "" {
		errs["companyAddress"] = "請輸入地址"
	}
	if strings.TrimSpace(id.ContactName) == "" {
		errs["contactName"] = "請輸入承辦人姓名"
	}
	if strings.TrimSpace(id.Phone) == "" {
		errs["phone"] = "請輸入電話"
	} else if !rules.IsTaiwanPhone(id.Phone) {
		errs["phone"] = "電話格式不正確"
	}
	if strings.TrimSpace(id.Email) == "" {
		errs["email"] = "請輸入 Email"
	} else if !rules.IsEmail(id.Email) {
		errs["email"] = "Email 格式不正確"
	}
	if strings.TrimSpace(id.InvoiceEmail) == "" {
		errs["invoiceEmail"] = "請輸入發票信箱"
	} else if !rules.IsEmail(id.InvoiceEmail) {
		errs["invoiceEmail"] = "Email 格式不正確"
	}
	return errs
}

func validatePlan(sel domain.Selection) map[string]string {
	errs := map[string]string{}
	if !sel.Plan.IsValid() {
		errs["selectedPlan"] = "請選擇方案"
	}
	for _, a := range sel.Addons {
		if !a.IsValid() {
			errs["addons"] = fmt.Sprintf("未知的加購項目: %s", a)
			break
		}
	}
	if sel.MultiStore && sel.AdditionalStores < 1 {
		errs["additionalStores"] = "多店刊登請輸入額外分店數"
	}
	return errs
}

func validateConfirm(d Data, maxUpload int) map[string]string {
	errs := map[string]string{}
	if !d.AgreeTerms {
		errs["agreeTerms"] = "請勾選同意服務聲明及帳款規則"
	}
	if !d.Images.StampMethod.IsValid() {
		errs["stampMethod"] = "請選擇用印方式"
	}
	switch d.Identity.CustomerType {
	case domain.CustomerTypeIndividual:
		if d.Images.Signature == "" {
			errs["signature"] = "個人客戶必須完成簽名"
		}
	case domain.CustomerTypeCompany:
		if d.Images.StampMethod == domain.StampMethodUpload && d.Images.StampFile == "" {
			errs["stampFile"] = "請上傳印章圖片，或選擇「專人聯繫」"
		}
	}
	if d.Images.StampFile != "" {
		if maxUpload <= 0 {
			maxUpload = rules.DefaultMaxUploadBytes
		}
		switch rules.CheckStampImage(d.Images.StampFile, maxUpload) {
		case rules.ErrStampType:
			errs["stampFile"] = "印章圖片僅支援 PNG 或 JPG 格式"
		case rules.ErrStampTooLarge:
			errs["stampFile"] = fmt.Sprintf("印章圖片不可超過 %s", rules.SizeLabel(maxUpload))
		}
	}
	return errs
}

func cloneAddons(in []domain.AddonType) []domain.AddonType {
	if in == nil {
		return nil
	}
	out := make([]domain.AddonType, len(in))
	copy(out, in)
	return out
}
