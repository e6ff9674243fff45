// Package memory keeps the audit log in process when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/repository"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

// NewRepositories returns empty in-memory repositories
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Submission:      NewSubmissionRepository(),
		SubmissionEvent: NewSubmissionEventRepository(),
		Operator:        NewOperatorRepository(),
	}
}

type submissionRepository struct {
	mu          sync.RWMutex
	submissions map[uuid.UUID]domain.Submission
}

func NewSubmissionRepository() *submissionRepository {
	return &submissionRepository{submissions: map[uuid.UUID]domain.Submission{}}
}

func (r *submissionRepository) Create(_ context.Context, s *domain.Submission) error {
	now := time.Now()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions[s.ID] = *s
	return nil
}

func (r *submissionRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.submissions[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "submission", ID: id.String()}
	}
	return &s, nil
}

func (r *submissionRepository) List(_ context.Context, filter repository.SubmissionFilter) ([]*domain.Submission, error) {
	r.mu.RLock()
	all := lo.Values(r.submissions)
	r.mu.RUnlock()

	matched := lo.Filter(all, func(s domain.Submission, _ int) bool {
		if filter.State != nil && s.State != *filter.State {
			return false
		}
		return filter.QuoteNumber == "" || s.QuoteNumber == filter.QuoteNumber
	})
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	offset := max(filter.Offset, 0)
	if offset >= len(matched) {
		return []*domain.Submission{}, nil
	}
	end := min(offset+repository.NormalizeLimit(filter.Limit), len(matched))

	return lo.Map(matched[offset:end], func(s domain.Submission, _ int) *domain.Submission {
		return &s
	}), nil
}

type submissionEventRepository struct {
	mu     sync.RWMutex
	events map[uuid.UUID][]domain.SubmissionEvent
}

func NewSubmissionEventRepository() *submissionEventRepository {
	return &submissionEventRepository{events: map[uuid.UUID][]domain.SubmissionEvent{}}
}

func (r *submissionEventRepository) Create(_ context.Context, event *domain.SubmissionEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.SubmissionID] = append(r.events[event.SubmissionID], *event)
	return nil
}

func (r *submissionEventRepository) GetBySubmissionID(_ context.Context, submissionID uuid.UUID) ([]*domain.SubmissionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(r.events[submissionID], func(e domain.SubmissionEvent, _ int) *domain.SubmissionEvent {
		return &e
	}), nil
}

type operatorRepository struct {
	mu        sync.RWMutex
	operators map[uuid.UUID]domain.Operator
}

func NewOperatorRepository() *operatorRepository {
	return &operatorRepository{operators: map[uuid.UUID]domain.Operator{}}
}

func (r *operatorRepository) GetByAPIKey(_ context.Context, apiKey string) (*domain.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, op := range r.operators {
		if !op.IsActive {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(op.APIKeyHash), []byte(apiKey)) == nil {
			return &op, nil
		}
	}
	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (r *operatorRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.operators[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "operator", ID: id.String()}
	}
	return &op, nil
}

func (r *operatorRepository) Create(_ context.Context, op *domain.Operator) error {
	now := time.Now()
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = now
	}
	if op.UpdatedAt.IsZero() {
		op.UpdatedAt = now
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.operators[op.ID] = *op
	return nil
}

func (r *operatorRepository) Update(_ context.Context, op *domain.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.operators[op.ID]; !ok {
		return &errors.ErrNotFound{Resource: "operator", ID: op.ID.String()}
	}
	op.UpdatedAt = time.Now()
	r.operators[op.ID] = *op
	return nil
}
