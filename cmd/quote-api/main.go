package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/api"
	"github.com/beautysoda/quoteapi/internal/config"
	"github.com/beautysoda/quoteapi/internal/logger"
	"github.com/beautysoda/quoteapi/internal/repository"
	"github.com/beautysoda/quoteapi/internal/repository/memory"
	"github.com/beautysoda/quoteapi/internal/repository/postgres"
	"github.com/beautysoda/quoteapi/internal/service"
	"github.com/beautysoda/quoteapi/internal/sheets"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	repos, db, err := openRepositories(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize repositories", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	client := sheets.NewClient(cfg.Sheets, log)
	pipeline, err := service.NewSubmissionPipeline(client, service.PipelineConfigFrom(cfg), log)
	if err != nil {
		log.Fatal("Failed to initialize submission pipeline", zap.Error(err))
	}

	router := api.NewRouter(cfg, api.Services{
		Quotes:      service.NewQuoteService(pipeline, repos, log),
		Catalog:     service.NewCatalogService(cfg.Company),
		Diagnostics: service.NewDiagnosticsService(pipeline, cfg.Sheets.Endpoint, log),
	}, repos, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.Bool("database", db != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// In-flight submissions may still be retrying, so wait out a full run
	shutdownTimeout := cfg.SubmissionBudget() + 5*time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down server", zap.Duration("timeout", shutdownTimeout))
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}

// openRepositories uses postgres when DB_HOST is set and falls back to memory otherwise
func openRepositories(cfg *config.Config, log *zap.Logger) (*repository.Repositories, *sql.DB, error) {
	if !cfg.Database.Enabled() {
		log.Warn("DB_HOST not set, submissions are kept in memory only")
		return memory.NewRepositories(), nil, nil
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return postgres.NewRepositories(db, log), db, nil
}
