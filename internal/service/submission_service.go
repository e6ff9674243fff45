package service

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/config"
	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/imaging"
	"github.com/beautysoda/quoteapi/internal/sheets"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

const messageSubmitted = "報價單已成功送出"

// Sender is the single-exchange transport to the sheets endpoint
type Sender interface {
	QueryURL(payload domain.Payload) (string, error)
	SubmitQuery(ctx context.Context, payload domain.Payload) (*sheets.Response, error)
	SubmitBody(ctx context.Context, payload domain.Payload) (*sheets.Response, error)
	Probe(ctx context.Context) (*sheets.Response, error)
}

// PipelineConfig holds the knobs of the submission pipeline
type PipelineConfig struct {
	MaxAttempts       int
	RetryDelay        time.Duration
	AttemptTimeout    time.Duration
	ProbeTimeout      time.Duration
	MaxURLLength      int
	CompressThreshold int
	WarnThreshold     int
	UploadMaxBytes    int
	Image             imaging.Options
	SupportContact    string
	DriveFolder       string
}

// PipelineConfigFrom maps service configuration onto the pipeline
func PipelineConfigFrom(cfg *config.Config) PipelineConfig {
	return PipelineConfig{
		MaxAttempts:       cfg.Submission.MaxAttempts,
		RetryDelay:        cfg.Submission.RetryDelay,
		AttemptTimeout:    cfg.Sheets.Timeout,
		ProbeTimeout:      cfg.Sheets.ProbeTimeout,
		MaxURLLength:      cfg.Submission.MaxURLLength,
		CompressThreshold: cfg.Images.CompressThreshold,
		WarnThreshold:     cfg.Images.WarnThreshold,
		UploadMaxBytes:    cfg.Images.UploadMaxBytes,
		Image:             imaging.Options{MaxDimension: cfg.Images.MaxDimension, Quality: cfg.Images.Quality},
		SupportContact:    cfg.Company.SupportEmail,
		DriveFolder:       cfg.Sheets.DriveFolder,
	}
}

// AttemptRecord describes one HTTP attempt
type AttemptRecord struct {
	Number    int
	Transport domain.Transport
	Duration  time.Duration
	Err       error
}

// Trace is what happened during one run, for the audit log
type Trace struct {
	States     []domain.SubmissionState
	Attempts   []AttemptRecord
	Validation ValidationResult
}

func (t *Trace) State() domain.SubmissionState {
	if len(t.States) == 0 {
		return domain.SubmissionStateIdle
	}
	return t.States[len(t.States)-1]
}

// SubmissionPipeline validates, prepares, compresses and delivers a quote.
// Attempts are strictly sequential and nothing is shared between runs.
type SubmissionPipeline struct {
	sender    Sender
	validator *PayloadValidator
	cfg       PipelineConfig
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
	compress  func(dataURL string, opts imaging.Options) (string, error)
}

// NewSubmissionPipeline creates a new submission pipeline
func NewSubmissionPipeline(sender Sender, cfg PipelineConfig, logger *zap.Logger) (*SubmissionPipeline, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	v, err := NewPayloadValidator(cfg.WarnThreshold, cfg.UploadMaxBytes)
	if err != nil {
		return nil, err
	}
	return &SubmissionPipeline{
		sender:    sender,
		validator: v,
		cfg:       cfg,
		logger:    logger,
		sleep:     sleepContext,
		compress:  imaging.CompressDataURL,
	}, nil
}

// ValidatePayload runs the structural checks without sending anything
func (p *SubmissionPipeline) ValidatePayload(payload domain.Payload) ValidationResult {
	return p.validator.Validate(payload)
}

// CompressImages returns a copy of the payload with oversized images recompressed.
// A failed compression keeps the original image.
func (p *SubmissionPipeline) CompressImages(payload domain.Payload) domain.Payload {
	out := payload.Clone()
	for _, key := range imageKeys {
		original := payload.String(key)
		if len(original) <= p.cfg.CompressThreshold {
			continue
		}
		compressed, err := p.compress(original, p.cfg.Image)
		if err != nil {
			p.logger.Warn("Image compression failed, sending original",
				zap.String("field", key),
				zap.Int("bytes", len(original)),
				zap.Error(err),
			)
			continue
		}
		p.logger.Info("Compressed image",
			zap.String("field", key),
			zap.Int("before", len(original)),
			zap.Int("after", len(compressed)),
		)
		out[key] = compressed
	}
	return out
}

// ChooseTransport picks QUERY while the full GET URL stays within MaxURLLength, BODY otherwise
func (p *SubmissionPipeline) ChooseTransport(payload domain.Payload) domain.Transport {
	target, err := p.sender.QueryURL(payload)
	if err != nil {
		p.logger.Warn("Cannot build query URL, using body transport", zap.Error(err))
		return domain.TransportBody
	}
	if len(target) > p.cfg.MaxURLLength {
		p.logger.Debug("URL too long for query transport",
			zap.Int("url_length", len(target)),
			zap.Int("limit", p.cfg.MaxURLLength),
		)
		return domain.TransportBody
	}
	return domain.TransportQuery
}

// Submit delivers an already prepared payload with retries
func (p *SubmissionPipeline) Submit(ctx context.Context, payload domain.Payload) domain.SubmissionResult {
	run := p.newRun(domain.SubmissionStateTransportDecision)
	result := p.deliver(ctx, payload, p.ChooseTransport(payload), run)
	result.QuoteNumber = payload.String(KeyQuoteNumber)
	return result
}

// Process runs the whole pipeline for one snapshot
func (p *SubmissionPipeline) Process(ctx context.Context, snap domain.QuoteSnapshot) (domain.SubmissionResult, *Trace) {
	run := p.newRun(domain.SubmissionStateIdle)
	logger := p.logger.With(zap.String("quote_number", snap.QuoteNumber))

	run.to(domain.SubmissionStateValidating)
	if snap.DriveFolder == "" {
		snap.DriveFolder = p.cfg.DriveFolder
	}
	payload := PrepareFormPayload(snap)
	validation := p.validator.Validate(payload)
	run.trace.Validation = validation
	if len(validation.Warnings) > 0 {
		logger.Warn("Submission has warnings", zap.Strings("warnings", validation.Warnings))
	}
	if !validation.Valid {
		run.to(domain.SubmissionStateInvalid)
		err := &errors.ErrValidation{Errors: validation.Errors}
		logger.Info("Submission rejected by validation", zap.Strings("errors", validation.Errors))
		return domain.SubmissionResult{
			Success:     false,
			QuoteNumber: snap.QuoteNumber,
			Message:     errors.Classify(err, p.cfg.SupportContact),
			Error:       err.Error(),
		}, run.trace
	}

	run.to(domain.SubmissionStatePreparing)
	logger.Debug("Prepared payload", zap.Int("fields", len(payload)))

	run.to(domain.SubmissionStateCompressing)
	payload = p.CompressImages(payload)

	run.to(domain.SubmissionStateTransportDecision)
	transport := p.ChooseTransport(payload)
	logger.Info("Submitting quote", zap.String("transport", string(transport)))

	result := p.deliver(ctx, payload, transport, run)
	result.QuoteNumber = snap.QuoteNumber
	return result, run.trace
}

// ProbeEndpoint checks the endpoint answers the liveness GET with an accepted status
func (p *SubmissionPipeline) ProbeEndpoint(ctx context.Context) (*sheets.Response, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()
	return p.sender.Probe(probeCtx)
}

func (p *SubmissionPipeline) deliver(ctx context.Context, payload domain.Payload, transport domain.Transport, run *run) domain.SubmissionResult {
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		run.to(domain.SubmissionStateAttempting)
		attempts = attempt

		start := time.Now()
		err := p.attempt(ctx, transport, payload)
		run.trace.Attempts = append(run.trace.Attempts, AttemptRecord{
			Number:    attempt,
			Transport: transport,
			Duration:  time.Since(start),
			Err:       err,
		})

		if err == nil {
			run.to(domain.SubmissionStateSucceeded)
			p.logger.Info("Submission accepted",
				zap.String("transport", string(transport)),
				zap.Int("attempt", attempt),
			)
			return domain.SubmissionResult{
				Success:   true,
				Transport: transport,
				Attempts:  attempt,
				Message:   messageSubmitted,
			}
		}

		lastErr = err
		p.logger.Warn("Submission attempt failed",
			zap.String("transport", string(transport)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.cfg.MaxAttempts),
			zap.String("category", string(errors.CategoryOf(err))),
			zap.Error(err),
		)

		if attempt == p.cfg.MaxAttempts || !errors.IsRetryable(err) {
			break
		}

		run.to(domain.SubmissionStateRetrying)
		if err := p.sleep(ctx, time.Duration(attempt)*p.cfg.RetryDelay); err != nil {
			p.logger.Warn("Submission abandoned during backoff", zap.Error(err))
			break
		}
	}

	run.to(domain.SubmissionStateExhausted)
	p.logger.Error("Submission failed",
		zap.String("transport", string(transport)),
		zap.Int("attempts", attempts),
		zap.Error(lastErr),
	)
	return domain.SubmissionResult{
		Success:   false,
		Transport: transport,
		Attempts:  attempts,
		Message:   errors.Classify(lastErr, p.cfg.SupportContact),
		Error:     lastErr.Error(),
	}
}

func (p *SubmissionPipeline) attempt(ctx context.Context, transport domain.Transport, payload domain.Payload) error {
	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
	defer cancel()

	var err error
	switch transport {
	case domain.TransportQuery:
		_, err = p.sender.SubmitQuery(attemptCtx, payload)
	default:
		_, err = p.sender.SubmitBody(attemptCtx, payload)
	}
	if err != nil && stderrors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		var netErr *errors.ErrNetwork
		if !stderrors.As(err, &netErr) {
			err = errors.NewNetworkError("submit", attemptCtx.Err())
		}
	}
	return err
}

type run struct {
	trace  *Trace
	logger *zap.Logger
}

func (p *SubmissionPipeline) newRun(start domain.SubmissionState) *run {
	return &run{
		trace:  &Trace{States: []domain.SubmissionState{start}},
		logger: p.logger,
	}
}

func (r *run) to(next domain.SubmissionState) {
	current := r.trace.State()
	if !current.CanTransitionTo(next) {
		r.logger.DPanic("Invalid submission state transition",
			zap.String("from", string(current)),
			zap.String("to", string(next)),
		)
	}
	r.trace.States = append(r.trace.States, next)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
