package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/repository"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

func TestSubmissionCreateAndGet(t *testing.T) {
	repo := NewSubmissionRepository()
	ctx := context.Background()

	s := &domain.Submission{QuoteNumber: "BS20261019001", State: domain.SubmissionStateSucceeded}
	require.NoError(t, repo.Create(ctx, s))
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.False(t, s.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "BS20261019001", got.QuoteNumber)

	_, err = repo.GetByID(ctx, uuid.New())
	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestSubmissionListFiltersAndPages(t *testing.T) {
	repo := NewSubmissionRepository()
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		state := domain.SubmissionStateSucceeded
		if i%2 == 1 {
			state = domain.SubmissionStateExhausted
		}
		require.NoError(t, repo.Create(ctx, &domain.Submission{
			QuoteNumber: "BS" + string(rune('A'+i)),
			State:       state,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := repo.List(ctx, repository.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "BSE", all[0].QuoteNumber, "newest first")

	exhausted := domain.SubmissionStateExhausted
	failed, err := repo.List(ctx, repository.SubmissionFilter{State: &exhausted})
	require.NoError(t, err)
	assert.Len(t, failed, 2)

	page, err := repo.List(ctx, repository.SubmissionFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "BSC", page[0].QuoteNumber)

	empty, err := repo.List(ctx, repository.SubmissionFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEventsAreKeptInOrder(t *testing.T) {
	repo := NewSubmissionEventRepository()
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, repo.Create(ctx, &domain.SubmissionEvent{SubmissionID: id, EventType: "attempt"}))
	require.NoError(t, repo.Create(ctx, &domain.SubmissionEvent{SubmissionID: id, EventType: "submission_succeeded"}))
	require.NoError(t, repo.Create(ctx, &domain.SubmissionEvent{SubmissionID: uuid.New(), EventType: "attempt"}))

	events, err := repo.GetBySubmissionID(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "attempt", events[0].EventType)
	assert.Equal(t, "submission_succeeded", events[1].EventType)
}

func TestOperatorLookupByAPIKey(t *testing.T) {
	repo := NewOperatorRepository()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("ops-key"), bcrypt.MinCost)
	require.NoError(t, err)
	op := &domain.Operator{Name: "ops", APIKeyHash: string(hash), IsActive: true}
	require.NoError(t, repo.Create(ctx, op))

	got, err := repo.GetByAPIKey(ctx, "ops-key")
	require.NoError(t, err)
	assert.Equal(t, op.ID, got.ID)

	_, err = repo.GetByAPIKey(ctx, "wrong")
	var unauthorized *errors.ErrUnauthorized
	assert.ErrorAs(t, err, &unauthorized)

	op.IsActive = false
	require.NoError(t, repo.Update(ctx, op))
	_, err = repo.GetByAPIKey(ctx, "ops-key")
	assert.Error(t, err)
}
