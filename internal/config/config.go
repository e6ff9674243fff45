package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Sheets      SheetsConfig
	Submission  SubmissionConfig
	Images      ImageConfig
	Company     CompanyConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Enabled reports whether a database was configured. Without one the
// service keeps its audit log in memory.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type SheetsConfig struct {
	Endpoint     string
	Timeout      time.Duration
	ProbeTimeout time.Duration
	// DriveFolder is passed through to the sheet script, which picks the Drive
	// folder for signature and stamp files. Empty lets the script decide.
	DriveFolder string
}

type SubmissionConfig struct {
	MaxAttempts  int
	RetryDelay   time.Duration
	MaxURLLength int
}

type ImageConfig struct {
	UploadMaxBytes    int
	CompressThreshold int
	WarnThreshold     int
	MaxDimension      int
	Quality           int
}

type CompanyConfig struct {
	Name         string
	SupportEmail string
	Phone        string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := fromLookup(getEnvOrViper)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.Sheets.Endpoint == "" {
		return nil, fmt.Errorf("SHEETS_ENDPOINT is required")
	}

	return cfg, nil
}

// fromLookup builds a Config from a key lookup, applying defaults for anything unset
func fromLookup(get func(key, defaultValue string) string) (*Config, error) {
	timeout, err := time.ParseDuration(get("SHEETS_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHEETS_TIMEOUT: %w", err)
	}
	probeTimeout, err := time.ParseDuration(get("SHEETS_PROBE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHEETS_PROBE_TIMEOUT: %w", err)
	}
	retryDelay, err := time.ParseDuration(get("SUBMIT_RETRY_DELAY", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUBMIT_RETRY_DELAY: %w", err)
	}

	ints := map[string]int{
		"SUBMIT_MAX_ATTEMPTS":      3,
		"SUBMIT_MAX_URL_LENGTH":    2000,
		"UPLOAD_MAX_BYTES":         2 * 1024 * 1024,
		"IMAGE_COMPRESS_THRESHOLD": 500 * 1024,
		"IMAGE_WARN_THRESHOLD":     1024 * 1024,
		"IMAGE_MAX_DIMENSION":      800,
		"IMAGE_QUALITY":            70,
	}
	for key, def := range ints {
		raw := get(key, strconv.Itoa(def))
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %d", key, v)
		}
		ints[key] = v
	}

	return &Config{
		Port:        get("PORT", "8080"),
		Environment: get("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     get("DB_HOST", ""),
			Port:     get("DB_PORT", "5432"),
			User:     get("DB_USER", "postgres"),
			Password: get("DB_PASSWORD", "postgres"),
			DBName:   get("DB_NAME", "quoteapi"),
			SSLMode:  get("DB_SSLMODE", "disable"),
		},
		Sheets: SheetsConfig{
			Endpoint:     get("SHEETS_ENDPOINT", ""),
			Timeout:      timeout,
			ProbeTimeout: probeTimeout,
			DriveFolder:  get("SHEETS_DRIVE_FOLDER", ""),
		},
		Submission: SubmissionConfig{
			MaxAttempts:  ints["SUBMIT_MAX_ATTEMPTS"],
			RetryDelay:   retryDelay,
			MaxURLLength: ints["SUBMIT_MAX_URL_LENGTH"],
		},
		Images: ImageConfig{
			UploadMaxBytes:    ints["UPLOAD_MAX_BYTES"],
			CompressThreshold: ints["IMAGE_COMPRESS_THRESHOLD"],
			WarnThreshold:     ints["IMAGE_WARN_THRESHOLD"],
			MaxDimension:      ints["IMAGE_MAX_DIMENSION"],
			Quality:           ints["IMAGE_QUALITY"],
		},
		Company: CompanyConfig{
			Name:         get("COMPANY_NAME", "和吉家行銷有限公司"),
			SupportEmail: get("SUPPORT_EMAIL", "service@harmoney.com"),
			Phone:        get("COMPANY_PHONE", "02-2558-5880"),
		},
		LogLevel: get("LOG_LEVEL", "info"),
	}, nil
}

// SubmissionBudget is the longest one submission can take: every attempt
// timing out plus the linear backoff between them.
func (c *Config) SubmissionBudget() time.Duration {
	n := c.Submission.MaxAttempts
	backoff := time.Duration(n*(n-1)/2) * c.Submission.RetryDelay
	return time.Duration(n)*c.Sheets.Timeout + backoff
}

// FromMap builds a Config from an explicit key/value map. Used by tests and tools
// that must not depend on the process environment.
func FromMap(values map[string]string) (*Config, error) {
	return fromLookup(func(key, defaultValue string) string {
		if v, ok := values[key]; ok && v != "" {
			return v
		}
		return defaultValue
	})
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
