package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/config"
	"github.com/beautysoda/quoteapi/internal/repository"
)

// NewConnection opens and pings the audit database
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS operators (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	api_key_hash TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
	id UUID PRIMARY KEY,
	quote_number TEXT NOT NULL,
	customer_type TEXT NOT NULL,
	plan TEXT NOT NULL,
	total_price BIGINT NOT NULL,
	transport TEXT,
	attempts INTEGER NOT NULL DEFAULT 0,
	state TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	error_detail TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_quote_number ON submissions (quote_number);
CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions (created_at DESC);

CREATE TABLE IF NOT EXISTS submission_events (
	id UUID PRIMARY KEY,
	submission_id UUID NOT NULL REFERENCES submissions (id) ON DELETE CASCADE,
	event_type TEXT NOT NULL,
	event_data JSONB,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submission_events_submission_id ON submission_events (submission_id);
`

// Migrate creates the audit tables when missing
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}
	return nil
}

// NewRepositories wires the postgres-backed repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Submission:      NewSubmissionRepository(db, logger),
		SubmissionEvent: NewSubmissionEventRepository(db, logger),
		Operator:        NewOperatorRepository(db, logger),
	}
}
