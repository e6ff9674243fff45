package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/beautysoda/quoteapi/internal/config"
	"github.com/beautysoda/quoteapi/internal/service"
	"github.com/beautysoda/quoteapi/internal/sheets"
	"go.uber.org/zap"
)

func main() {
	testSubmit := flag.Bool("test-submit", false, "also send a sample TEST row through the full retry path")
	flag.Usage = func() {
		fmt.Println("Usage: go run cmd/probe-endpoint/main.go [--test-submit]")
		fmt.Println("Checks SHEETS_ENDPOINT and prints the diagnostics report.")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := sheets.NewClient(cfg.Sheets, logger)
	pipeline, err := service.NewSubmissionPipeline(client, service.PipelineConfigFrom(cfg), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize pipeline: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("🔍 Probing %s\n\n", cfg.Sheets.Endpoint)

	diagnostics := service.NewDiagnosticsService(pipeline, cfg.Sheets.Endpoint, logger)
	report := diagnostics.Run(context.Background(), *testSubmit)

	fmt.Print(report.Text())

	if !report.OK() {
		os.Exit(1)
	}
}
