package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/rules"
)

// ValidationResult is the outcome of the pre-submit structural check.
// Warnings never block a submission.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type fieldRule struct {
	key     string
	tag     string
	message string
}

var commonRules = []fieldRule{
	{KeyQuoteNumber, "required", "缺少報價單號"},
	{KeyTimestamp, "required", "缺少時間戳記"},
	{KeyCustomerType, "customertype", "客戶類型不正確"},
	{KeyContactName, "required", "缺少聯絡人姓名"},
	{KeyPhone, "required", "缺少電話"},
	{KeyPhone, "omitempty,twphone", "電話格式不正確"},
	{KeyEmail, "required", "缺少 Email"},
	{KeyEmail, "omitempty,basicemail", "Email 格式不正確"},
	{KeyInvoiceEmail, "required", "缺少發票信箱"},
	{KeyInvoiceEmail, "omitempty,basicemail", "發票信箱格式不正確"},
	{KeyAddress, "required", "缺少地址"},
	{KeySelectedPlan, "required", "未選擇方案"},
	{KeySelectedPlan, "omitempty,plan", "方案不存在"},
	{KeyStampMethod, "stampmethod", "用印方式不正確"},
}

var companyRules = []fieldRule{
	{KeyCompanyName, "required", "公司名稱為必填"},
	{KeyTaxID, "required", "統一編號為必填"},
	{KeyTaxID, "omitempty,taxid", "統一編號必須是 8 位數字"},
}

var individualRules = []fieldRule{
	{KeyIndividualName, "required", "個人姓名為必填"},
}

var imageWarnings = map[string]string{
	KeySignature: "簽名圖片較大，可能影響傳輸速度",
	KeyStampFile: "印章圖片較大，可能影響傳輸速度",
}

// PayloadValidator runs the structural checks on a prepared payload
type PayloadValidator struct {
	validate      *validator.Validate
	warnThreshold int
	stampRule     fieldRule
}

// NewPayloadValidator registers the payload tags. Images longer than
// warnThreshold encoded bytes produce a warning. An uploaded stamp must be
// a PNG or JPEG of at most uploadMaxBytes decoded bytes.
func NewPayloadValidator(warnThreshold, uploadMaxBytes int) (*PayloadValidator, error) {
	if uploadMaxBytes <= 0 {
		uploadMaxBytes = rules.DefaultMaxUploadBytes
	}
	v := validator.New()

	custom := map[string]validator.Func{
		"twphone":    func(fl validator.FieldLevel) bool { return rules.IsTaiwanPhone(fl.Field().String()) },
		"taxid":      func(fl validator.FieldLevel) bool { return rules.IsTaxID(fl.Field().String()) },
		"basicemail": func(fl validator.FieldLevel) bool { return rules.IsEmail(fl.Field().String()) },
		"plan": func(fl validator.FieldLevel) bool {
			return domain.PlanType(fl.Field().String()).IsValid()
		},
		"stampmethod": func(fl validator.FieldLevel) bool {
			return domain.StampMethod(fl.Field().String()).IsValid()
		},
		"customertype": func(fl validator.FieldLevel) bool {
			return domain.CustomerType(fl.Field().String()).IsValid()
		},
		"stampimage": func(fl validator.FieldLevel) bool {
			return rules.CheckStampImage(fl.Field().String(), uploadMaxBytes) == nil
		},
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %s validation: %w", tag, err)
		}
	}

	return &PayloadValidator{
		validate:      v,
		warnThreshold: warnThreshold,
		stampRule: fieldRule{
			KeyStampFile,
			"omitempty,stampimage",
			fmt.Sprintf("印章圖片須為 PNG 或 JPG 且不超過 %s", rules.SizeLabel(uploadMaxBytes)),
		},
	}, nil
}

// Validate checks required identity fields, formats and the company tax ID
func (pv *PayloadValidator) Validate(p domain.Payload) ValidationResult {
	result := ValidationResult{Errors: []string{}, Warnings: []string{}}

	set := append([]fieldRule{}, commonRules...)
	set = append(set, pv.stampRule)
	switch domain.CustomerType(p.String(KeyCustomerType)) {
	case domain.CustomerTypeCompany:
		set = append(set, companyRules...)
	case domain.CustomerTypeIndividual:
		set = append(set, individualRules...)
	}

	for _, r := range set {
		value := strings.TrimSpace(p.String(r.key))
		if err := pv.validate.Var(value, r.tag); err != nil {
			result.Errors = append(result.Errors, r.message)
		}
	}

	for _, key := range imageKeys {
		if len(p.String(key)) > pv.warnThreshold {
			result.Warnings = append(result.Warnings, imageWarnings[key])
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}
