package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/pricing"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

// CheckStatus is the outcome of one diagnostic check
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckWarn CheckStatus = "warning"
	CheckFail CheckStatus = "fail"
)

// sample payloads above this many JSON bytes get a warning
const largePayloadBytes = 50000

// DiagnosticCheck is one line of the diagnostics report
type DiagnosticCheck struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Duration string      `json:"duration,omitempty"`
}

// DiagnosticsReport is the result of a full diagnostics run
type DiagnosticsReport struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Endpoint    string                   `json:"endpoint"`
	Checks      []DiagnosticCheck        `json:"checks"`
	TestSubmit  *domain.SubmissionResult `json:"test_submit,omitempty"`
	Passed      int                      `json:"passed"`
	Warnings    int                      `json:"warnings"`
	Failed      int                      `json:"failed"`
}

// OK reports whether no check failed
func (r DiagnosticsReport) OK() bool {
	return r.Failed == 0
}

// Text renders the report for a terminal or a support ticket
func (r DiagnosticsReport) Text() string {
	var b strings.Builder
	rule := strings.Repeat("=", 50)

	fmt.Fprintf(&b, "表單後端診斷報告\n%s\n", rule)
	fmt.Fprintf(&b, "時間: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "端點: %s\n\n", r.Endpoint)

	for i, c := range r.Checks {
		fmt.Fprintf(&b, "[%s] 測試 %d: %s\n", strings.ToUpper(string(c.Status)), i+1, c.Name)
		fmt.Fprintf(&b, "    %s\n", c.Message)
		if c.Details != "" {
			fmt.Fprintf(&b, "    %s\n", c.Details)
		}
		if c.Duration != "" {
			fmt.Fprintf(&b, "    耗時: %s\n", c.Duration)
		}
	}

	fmt.Fprintf(&b, "\n%s\n總計: %d 通過, %d 失敗, %d 警告\n%s\n", rule, r.Passed, r.Failed, r.Warnings, rule)
	switch {
	case r.Failed > 0:
		b.WriteString("發現問題，請檢查端點部署設定\n")
	case r.Warnings > 0:
		b.WriteString("發現警告，建議檢查相關設定\n")
	default:
		b.WriteString("所有測試通過\n")
	}
	return b.String()
}

type diagnosticsService struct {
	pipeline *SubmissionPipeline
	endpoint string
	logger   *zap.Logger
	now      func() time.Time
}

// NewDiagnosticsService creates a new diagnostics service
func NewDiagnosticsService(pipeline *SubmissionPipeline, endpoint string, logger *zap.Logger) *diagnosticsService {
	return &diagnosticsService{
		pipeline: pipeline,
		endpoint: endpoint,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes every check. testSubmit also sends a sample row through the full retry path.
func (s *diagnosticsService) Run(ctx context.Context, testSubmit bool) DiagnosticsReport {
	report := DiagnosticsReport{
		GeneratedAt: s.now(),
		Endpoint:    s.endpoint,
	}

	report.Checks = append(report.Checks, s.checkConfiguration())
	report.Checks = append(report.Checks, s.checkEndpoint(ctx))
	report.Checks = append(report.Checks, s.checkDataFormat())

	if testSubmit {
		check, result := s.checkTestSubmit(ctx)
		report.Checks = append(report.Checks, check)
		report.TestSubmit = &result
	}

	report.Passed = lo.CountBy(report.Checks, func(c DiagnosticCheck) bool { return c.Status == CheckPass })
	report.Warnings = lo.CountBy(report.Checks, func(c DiagnosticCheck) bool { return c.Status == CheckWarn })
	report.Failed = lo.CountBy(report.Checks, func(c DiagnosticCheck) bool { return c.Status == CheckFail })

	s.logger.Info("Diagnostics finished",
		zap.Int("passed", report.Passed),
		zap.Int("warnings", report.Warnings),
		zap.Int("failed", report.Failed),
	)
	return report
}

func (s *diagnosticsService) checkConfiguration() DiagnosticCheck {
	check := DiagnosticCheck{Name: "配置檢查", Details: s.endpoint}

	if s.endpoint == "" {
		check.Status = CheckFail
		check.Message = "SHEETS_ENDPOINT 未設定"
		return check
	}
	u, err := url.Parse(s.endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		check.Status = CheckFail
		check.Message = "SHEETS_ENDPOINT 格式不正確"
		return check
	}
	if u.Host != "script.google.com" {
		check.Status = CheckWarn
		check.Message = "端點不是 Google Apps Script 部署網址"
		return check
	}
	if !strings.HasSuffix(u.Path, "/exec") {
		check.Status = CheckWarn
		check.Message = "URL 不是以 /exec 結尾，建議使用部署後的 /exec 網址而非 /dev"
		return check
	}

	check.Status = CheckPass
	check.Message = "端點配置正確"
	return check
}

func (s *diagnosticsService) checkEndpoint(ctx context.Context) DiagnosticCheck {
	check := DiagnosticCheck{Name: "端點連線測試"}

	start := time.Now()
	resp, err := s.pipeline.ProbeEndpoint(ctx)
	check.Duration = time.Since(start).Round(time.Millisecond).String()

	if err != nil {
		var server *errors.ErrServer
		if stderrors.As(err, &server) && server.StatusCode < 300 {
			check.Status = CheckWarn
			check.Message = "收到回應但狀態異常"
			check.Details = server.Message
			return check
		}
		check.Status = CheckFail
		check.Message = errors.Classify(err, s.pipeline.cfg.SupportContact)
		check.Details = err.Error()
		return check
	}

	check.Status = CheckPass
	check.Message = "端點回應正常"
	check.Details = resp.Message
	return check
}

func (s *diagnosticsService) checkDataFormat() DiagnosticCheck {
	check := DiagnosticCheck{Name: "資料格式測試"}

	payload := PrepareFormPayload(SampleSnapshot("TEST001", s.now()))
	if v := s.pipeline.ValidatePayload(payload); !v.Valid {
		check.Status = CheckFail
		check.Message = "範例資料未通過驗證"
		check.Details = strings.Join(v.Errors, ", ")
		return check
	}

	body, err := json.Marshal(payload)
	if err != nil {
		check.Status = CheckFail
		check.Message = "JSON 序列化失敗"
		check.Details = err.Error()
		return check
	}

	check.Details = fmt.Sprintf("資料大小: %d bytes, 傳輸方式: %s", len(body), s.pipeline.ChooseTransport(payload))
	if len(body) > largePayloadBytes {
		check.Status = CheckWarn
		check.Message = "資料大小較大，可能影響傳輸"
		return check
	}

	check.Status = CheckPass
	check.Message = "資料格式正確"
	return check
}

func (s *diagnosticsService) checkTestSubmit(ctx context.Context) (DiagnosticCheck, domain.SubmissionResult) {
	check := DiagnosticCheck{Name: "測試送出"}

	now := s.now()
	payload := PrepareFormPayload(SampleSnapshot("TEST"+now.Format("20060102150405"), now))

	start := time.Now()
	result := s.pipeline.Submit(ctx, payload)
	check.Duration = time.Since(start).Round(time.Millisecond).String()
	check.Details = fmt.Sprintf("傳輸方式: %s, 嘗試次數: %d", result.Transport, result.Attempts)

	if result.Success {
		check.Status = CheckPass
		check.Message = "測試資料已送出: " + result.QuoteNumber
	} else {
		check.Status = CheckFail
		check.Message = result.Message
	}
	return check, result
}

// SampleSnapshot is a well-formed company quote used by diagnostics
func SampleSnapshot(quoteNumber string, at time.Time) domain.QuoteSnapshot {
	sel := domain.Selection{
		Plan:   domain.PlanListing1Y,
		Addons: []domain.AddonType{domain.AddonRecommendation},
	}
	return domain.QuoteSnapshot{
		QuoteNumber: quoteNumber,
		Timestamp:   at,
		Identity: domain.Identity{
			CustomerType: domain.CustomerTypeCompany,
			CompanyName:  "測試公司",
			TaxID:        "12345678",
			Address:      "測試地址",
			ContactName:  "測試聯絡人",
			Phone:        "0912345678",
			Email:        "test@example.com",
			InvoiceEmail: "invoice@example.com",
		},
		Selection: sel,
		Pricing:   pricing.PriceSelection(sel),
		Images:    domain.Images{StampMethod: domain.StampMethodContact},
	}
}
