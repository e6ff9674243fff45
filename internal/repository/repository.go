package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/beautysoda/quoteapi/internal/domain"
)

// SubmissionFilter narrows a submission listing
type SubmissionFilter struct {
	State       *domain.SubmissionState
	QuoteNumber string
	Limit       int
	Offset      int
}

// SubmissionRepository stores one audit record per pipeline run
type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]*domain.Submission, error)
}

// SubmissionEventRepository stores the per-attempt audit trail
type SubmissionEventRepository interface {
	Create(ctx context.Context, event *domain.SubmissionEvent) error
	GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) ([]*domain.SubmissionEvent, error)
}

// OperatorRepository resolves staff API keys
type OperatorRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Operator, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error)
	Create(ctx context.Context, operator *domain.Operator) error
	Update(ctx context.Context, operator *domain.Operator) error
}

// Repositories groups the stores used by the API and the CLI tools
type Repositories struct {
	Submission      SubmissionRepository
	SubmissionEvent SubmissionEventRepository
	Operator        OperatorRepository
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// NormalizeLimit clamps a listing limit into [1, MaxListLimit]
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
