package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/repository"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

const submissionColumns = `id, quote_number, customer_type, plan, total_price, transport, attempts, state, message, error_detail, created_at, updated_at`

type submissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB, logger *zap.Logger) *submissionRepository {
	return &submissionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *submissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

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

	var transport sql.NullString
	if s.Transport != nil {
		transport = sql.NullString{String: string(*s.Transport), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.QuoteNumber,
		s.CustomerType,
		s.Plan,
		s.TotalPrice,
		transport,
		s.Attempts,
		s.State,
		s.Message,
		s.ErrorDetail,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create submission", zap.Error(err))
		return err
	}

	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "submission", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get submission by ID", zap.Error(err))
		return nil, err
	}

	return s, nil
}

func (r *submissionRepository) List(ctx context.Context, filter repository.SubmissionFilter) ([]*domain.Submission, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.State != nil {
		args = append(args, *filter.State)
		where = append(where, fmt.Sprintf("state = $%d", len(args)))
	}
	if filter.QuoteNumber != "" {
		args = append(args, filter.QuoteNumber)
		where = append(where, fmt.Sprintf("quote_number = $%d", len(args)))
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, repository.NormalizeLimit(filter.Limit), max(filter.Offset, 0))
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list submissions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	submissions := []*domain.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			r.logger.Error("Failed to scan submission", zap.Error(err))
			return nil, err
		}
		submissions = append(submissions, s)
	}

	return submissions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	var (
		s           domain.Submission
		transport   sql.NullString
		errorDetail sql.NullString
	)
	err := row.Scan(
		&s.ID,
		&s.QuoteNumber,
		&s.CustomerType,
		&s.Plan,
		&s.TotalPrice,
		&transport,
		&s.Attempts,
		&s.State,
		&s.Message,
		&errorDetail,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if transport.Valid {
		t := domain.Transport(transport.String)
		s.Transport = &t
	}
	if errorDetail.Valid {
		s.ErrorDetail = &errorDetail.String
	}

	return &s, nil
}
