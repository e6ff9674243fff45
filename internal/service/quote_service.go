package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/form"
	"github.com/beautysoda/quoteapi/internal/repository"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

type quoteService struct {
	pipeline *SubmissionPipeline
	repos    *repository.Repositories
	logger   *zap.Logger
	now      func() time.Time
}

// NewQuoteService creates a new quote service
func NewQuoteService(pipeline *SubmissionPipeline, repos *repository.Repositories, logger *zap.Logger) *quoteService {
	return &quoteService{
		pipeline: pipeline,
		repos:    repos,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildForm replays a request through the three form steps. It returns the
// first *form.StepError that blocks a step. maxUpload caps the decoded stamp
// upload; zero keeps the form default.
func BuildForm(req QuoteSubmitRequest, maxUpload int) (form.State, error) {
	identity := req.Customer.Identity()
	selection := req.Selection.Selection()
	images := req.Authorization.Images()
	agree := req.Authorization.AgreeTerms

	state := form.New().WithMaxUpload(maxUpload).Update(form.Patch{
		Identity:   &identity,
		Selection:  &selection,
		Images:     &images,
		AgreeTerms: &agree,
	})

	for state.Step() < form.StepConfirm {
		next, err := state.Next()
		if err != nil {
			return state, err
		}
		state = next
	}
	// validates the confirm step
	return state.Next()
}

// SubmitQuote runs the form checks and the pipeline, then records the run.
// A form or payload validation failure is returned as an error after the run is recorded.
func (s *quoteService) SubmitQuote(ctx context.Context, req QuoteSubmitRequest) (*QuoteSubmitResponse, error) {
	state, err := BuildForm(req, s.pipeline.cfg.UploadMaxBytes)
	if err != nil {
		return nil, err
	}

	now := s.now()
	snap, err := state.Snapshot(form.NewQuoteNumber(now, nil), now)
	if err != nil {
		return nil, err
	}

	result, trace := s.pipeline.Process(ctx, snap)
	submission := s.record(ctx, snap, result, trace)

	resp := &QuoteSubmitResponse{
		State:            trace.State(),
		SubmissionResult: result,
		Pricing:          snap.Pricing,
		Warnings:         trace.Validation.Warnings,
	}
	if submission != nil {
		resp.SubmissionID = submission.ID.String()
	}

	if trace.State() == domain.SubmissionStateInvalid {
		return resp, &errors.ErrValidation{Errors: trace.Validation.Errors}
	}
	return resp, nil
}

// record stores the audit trail. Failures are logged and never affect the customer result.
func (s *quoteService) record(ctx context.Context, snap domain.QuoteSnapshot, result domain.SubmissionResult, trace *Trace) *domain.Submission {
	submission := &domain.Submission{
		QuoteNumber:  snap.QuoteNumber,
		CustomerType: snap.Identity.CustomerType,
		Plan:         snap.Selection.Plan,
		TotalPrice:   snap.Pricing.TotalPrice,
		Attempts:     result.Attempts,
		State:        trace.State(),
		Message:      result.Message,
	}
	if result.Transport != "" {
		transport := result.Transport
		submission.Transport = &transport
	}
	if result.Error != "" {
		detail := result.Error
		submission.ErrorDetail = &detail
	}

	if err := s.repos.Submission.Create(ctx, submission); err != nil {
		s.logger.Error("Failed to record submission",
			zap.String("quote_number", snap.QuoteNumber),
			zap.Error(err),
		)
		return nil
	}

	events := make([]*domain.SubmissionEvent, 0, len(trace.Attempts)+1)
	for _, a := range trace.Attempts {
		data := map[string]interface{}{
			"attempt":     a.Number,
			"transport":   a.Transport,
			"duration_ms": a.Duration.Milliseconds(),
		}
		if a.Err != nil {
			data["category"] = errors.CategoryOf(a.Err)
			data["error"] = a.Err.Error()
		}
		events = append(events, &domain.SubmissionEvent{
			SubmissionID: submission.ID,
			EventType:    "attempt",
			EventData:    data,
		})
	}

	final := map[string]interface{}{
		"states": lo.Map(trace.States, func(st domain.SubmissionState, _ int) string { return string(st) }),
	}
	if len(trace.Validation.Errors) > 0 {
		final["errors"] = trace.Validation.Errors
	}
	if len(trace.Validation.Warnings) > 0 {
		final["warnings"] = trace.Validation.Warnings
	}
	events = append(events, &domain.SubmissionEvent{
		SubmissionID: submission.ID,
		EventType:    "submission_" + lowerState(trace.State()),
		EventData:    final,
	})

	for _, event := range events {
		if err := s.repos.SubmissionEvent.Create(ctx, event); err != nil {
			s.logger.Warn("Failed to record submission event",
				zap.String("submission_id", submission.ID.String()),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
		}
	}

	return submission
}

func lowerState(st domain.SubmissionState) string {
	switch st {
	case domain.SubmissionStateSucceeded:
		return "succeeded"
	case domain.SubmissionStateExhausted:
		return "exhausted"
	case domain.SubmissionStateInvalid:
		return "invalid"
	default:
		return "incomplete"
	}
}
