package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration
	MaxRetries  int
	NDBCBaseURL string

	// FetchWorkers bounds concurrent outbound fetches per operation,
	// respecting the provider's fair-use expectations.
	FetchWorkers int

	// Store selection: "dynamo", "s3", or "memory" (dry runs).
	StoreBackend  string
	DatasetsTable string
	S3Bucket      string

	// DynamoEndpoint overrides the DynamoDB endpoint for local runs.
	DynamoEndpoint string
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithFetchWorkers allows setting the outbound fetch concurrency
func WithFetchWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.FetchWorkers = n
		}
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:   "production",
		LogLevel:      zerolog.InfoLevel,
		HTTPTimeout:   30 * time.Second,
		MaxRetries:    3,
		NDBCBaseURL:   "https://www.ndbc.noaa.gov",
		FetchWorkers:  4,
		StoreBackend:  "dynamo",
		DatasetsTable: "buoy-datasets",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 30*time.Second)),
		WithFetchWorkers(getIntEnvOrDefault("FETCH_WORKERS", 4)),
	)
	cfg.NDBCBaseURL = getEnvOrDefault("NDBC_BASE_URL", cfg.NDBCBaseURL)
	cfg.StoreBackend = getEnvOrDefault("STORE_BACKEND", cfg.StoreBackend)
	cfg.DatasetsTable = getEnvOrDefault("DATASETS_TABLE", cfg.DatasetsTable)
	cfg.S3Bucket = getEnvOrDefault("DATASETS_BUCKET", cfg.S3Bucket)
	cfg.DynamoEndpoint = getEnvOrDefault("DYNAMODB_ENDPOINT", cfg.DynamoEndpoint)
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
