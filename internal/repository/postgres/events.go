package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/domain"
)

type submissionEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionEventRepository creates a new submission event repository
func NewSubmissionEventRepository(db *sql.DB, logger *zap.Logger) *submissionEventRepository {
	return &submissionEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *submissionEventRepository) Create(ctx context.Context, event *domain.SubmissionEvent) error {
	query := `
		INSERT INTO submission_events (id, submission_id, event_type, event_data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var data []byte
	if event.EventData != nil {
		var err error
		data, err = json.Marshal(event.EventData)
		if err != nil {
			return err
		}
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.SubmissionID,
		event.EventType,
		data,
		event.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create submission event", zap.Error(err))
		return err
	}

	return nil
}

func (r *submissionEventRepository) GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) ([]*domain.SubmissionEvent, error) {
	query := `
		SELECT id, submission_id, event_type, event_data, created_at
		FROM submission_events
		WHERE submission_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		r.logger.Error("Failed to query submission events", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	events := []*domain.SubmissionEvent{}
	for rows.Next() {
		var (
			event domain.SubmissionEvent
			data  []byte
		)
		if err := rows.Scan(&event.ID, &event.SubmissionID, &event.EventType, &data, &event.CreatedAt); err != nil {
			r.logger.Error("Failed to scan submission event", zap.Error(err))
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &event.EventData); err != nil {
				r.logger.Warn("Failed to decode event data", zap.String("event_id", event.ID.String()), zap.Error(err))
			}
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}
