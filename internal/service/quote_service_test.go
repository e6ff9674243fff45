package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/form"
	"github.com/beautysoda/quoteapi/internal/repository"
	"github.com/beautysoda/quoteapi/internal/repository/memory"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

func validRequest() QuoteSubmitRequest {
	return QuoteSubmitRequest{
		Customer: CustomerInfo{
			CustomerType: domain.CustomerTypeCompany,
			CompanyName:  "蘇打美學有限公司",
			TaxID:        "12345678",
			Address:      "台北市大同區南京西路288號",
			ContactName:  "王小明",
			Phone:        "0912-345-678",
			Email:        "owner@shop.tw",
			InvoiceEmail: "billing@shop.tw",
		},
		Selection: SelectionRequest{
			Plan:             domain.PlanListing1Y,
			Addons:           []domain.AddonType{domain.AddonRecommendation},
			MultiStore:       true,
			AdditionalStores: 2,
		},
		Authorization: AuthorizationInfo{
			StampMethod: domain.StampMethodContact,
			AgreeTerms:  true,
		},
	}
}

func newTestQuoteService(t *testing.T, sender Sender) (*quoteService, *repository.Repositories) {
	t.Helper()
	pipeline, _ := newTestPipeline(t, sender, testPipelineConfig())
	repos := memory.NewRepositories()
	svc := NewQuoteService(pipeline, repos, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }
	return svc, repos
}

func TestBuildFormReachesConfirm(t *testing.T) {
	state, err := BuildForm(validRequest(), 0)
	require.NoError(t, err)
	assert.Equal(t, form.StepConfirm, state.Step())
	assert.Equal(t, int64(23500), state.Price().TotalPrice)
}

func TestBuildFormStopsAtFirstBlockingStep(t *testing.T) {
	req := validRequest()
	req.Customer.Email = "not-an-email"

	state, err := BuildForm(req, 0)
	var stepErr *form.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, form.StepCustomer, stepErr.Step)
	assert.Equal(t, form.StepCustomer, state.Step())

	req = validRequest()
	req.Authorization.AgreeTerms = false
	_, err = BuildForm(req, 0)
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, form.StepConfirm, stepErr.Step)
}

func TestSubmitQuoteRecordsSuccess(t *testing.T) {
	sender := newFakeSender(func(context.Context, domain.Transport, domain.Payload) error { return nil })
	svc, repos := newTestQuoteService(t, sender)
	ctx := context.Background()

	resp, err := svc.SubmitQuote(ctx, validRequest())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, domain.SubmissionStateSucceeded, resp.State)
	assert.Regexp(t, `^BS20261019\d{3}$`, resp.QuoteNumber)
	assert.Equal(t, int64(23500), resp.Pricing.TotalPrice)
	require.NotEmpty(t, resp.SubmissionID)

	list, err := repos.Submission.List(ctx, repository.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	sub := list[0]
	assert.Equal(t, resp.SubmissionID, sub.ID.String())
	assert.Equal(t, domain.PlanListing1Y, sub.Plan)
	require.NotNil(t, sub.Transport)
	assert.Equal(t, domain.TransportQuery, *sub.Transport)
	assert.Nil(t, sub.ErrorDetail)

	events, err := repos.SubmissionEvent.GetBySubmissionID(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "attempt", events[0].EventType)
	assert.Equal(t, "submission_succeeded", events[1].EventType)
}

func TestSubmitQuoteRecordsExhaustedRun(t *testing.T) {
	sender := newFakeSender(func(context.Context, domain.Transport, domain.Payload) error {
		return errors.NewNetworkError("submit", stderrors.New("no route to host"))
	})
	svc, repos := newTestQuoteService(t, sender)
	ctx := context.Background()

	resp, err := svc.SubmitQuote(ctx, validRequest())
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, domain.SubmissionStateExhausted, resp.State)
	assert.Equal(t, errors.MessageNetwork, resp.Message)
	assert.Equal(t, 3, resp.Attempts)

	list, err := repos.Submission.List(ctx, repository.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ErrorDetail)
	assert.Contains(t, *list[0].ErrorDetail, "no route to host")

	events, err := repos.SubmissionEvent.GetBySubmissionID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Len(t, events, 4)
	assert.Equal(t, "submission_exhausted", events[3].EventType)
}

func TestSubmitQuoteFormErrorIsNotRecorded(t *testing.T) {
	sender := newFakeSender(func(context.Context, domain.Transport, domain.Payload) error { return nil })
	svc, repos := newTestQuoteService(t, sender)

	req := validRequest()
	req.Customer.TaxID = "1234567"
	_, err := svc.SubmitQuote(context.Background(), req)

	var stepErr *form.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Empty(t, sender.calls)

	list, err := repos.Submission.List(context.Background(), repository.SubmissionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmitQuoteRejectsUnsupportedStampUpload(t *testing.T) {
	sender := newFakeSender(func(context.Context, domain.Transport, domain.Payload) error { return nil })
	svc, _ := newTestQuoteService(t, sender)

	req := validRequest()
	req.Authorization.StampMethod = domain.StampMethodUpload
	req.Authorization.StampFile = "data:application/pdf;base64,JVBERi0xLjQK"
	_, err := svc.SubmitQuote(context.Background(), req)

	var stepErr *form.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, form.StepConfirm, stepErr.Step)
	assert.Contains(t, stepErr.Fields, "stampFile")
	assert.Empty(t, sender.calls)
}
