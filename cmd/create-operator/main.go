package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/beautysoda/quoteapi/internal/config"
	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/internal/repository/postgres"
)

const minKeyLength = 16

func main() {
	name := flag.String("name", "", "display name of the operator, e.g. \"Sales Desk\"")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: go run cmd/create-operator/main.go --name <operator-name>")
		fmt.Fprintln(os.Stderr, "The API key is read from OPERATOR_API_KEY or the first line of stdin.")
		fmt.Fprintln(os.Stderr, "When neither is given a random key is generated and printed once.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*name) == "" {
		flag.Usage()
		os.Exit(2)
	}

	apiKey, generated, err := resolveKey(os.Getenv("OPERATOR_API_KEY"), os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid API key: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Database.Enabled() {
		fmt.Fprintln(os.Stderr, "DB_HOST is required: operators are only stored in postgres")
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if err := createOperator(cfg, logger, strings.TrimSpace(*name), apiKey); err != nil {
		logger.Fatal("Failed to create operator", zap.Error(err))
	}

	if generated {
		// shown once, only the bcrypt hash is stored
		fmt.Printf("Generated API key: %s\n", apiKey)
	}
	fmt.Println("Send it on /v1/admin requests as: Authorization: Bearer <api-key>")
}

func createOperator(cfg *config.Config, logger *zap.Logger, name, apiKey string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash api key: %w", err)
	}

	operator := &domain.Operator{
		Name:       name,
		APIKeyHash: string(hash),
		IsActive:   true,
	}
	repos := postgres.NewRepositories(db, logger)
	if err := repos.Operator.Create(ctx, operator); err != nil {
		return err
	}

	logger.Info("Operator created",
		zap.String("operator_id", operator.ID.String()),
		zap.String("name", operator.Name),
	)
	return nil
}

// resolveKey prefers the environment, then piped stdin, and generates a key
// when neither supplies one. Keys never come from argv.
func resolveKey(fromEnv string, stdin *os.File) (key string, generated bool, err error) {
	key = strings.TrimSpace(fromEnv)
	if key == "" && stdin != nil && isPiped(stdin) {
		if key, err = firstLine(stdin); err != nil {
			return "", false, err
		}
	}
	if key == "" {
		return "op_" + strings.ReplaceAll(uuid.NewString(), "-", ""), true, nil
	}
	if len(key) < minKeyLength {
		return "", false, fmt.Errorf("must be at least %d characters", minKeyLength)
	}
	return key, false, nil
}

func isPiped(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice == 0
}

func firstLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}
