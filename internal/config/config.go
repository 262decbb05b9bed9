package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters; services receive
// the sections they need at construction time instead of reading the
// environment themselves.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB        DatabaseConfig
	Redis     RedisConfig
	Razorpay  RazorpayConfig
	Extractor ExtractorConfig
	Storage   StorageConfig
	Worker    WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RazorpayConfig contains credentials for the payment gateway.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// ExtractorConfig contains the endpoint of the external PDF extraction service.
type ExtractorConfig struct {
	BaseURL string
	APIKey  string
}

// StorageConfig contains S3-compatible object storage configuration for
// uploaded question PDFs.
type StorageConfig struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	PaymentCheckInterval   time.Duration
	PaymentStaleAfter      time.Duration
	PaymentExpireAfter     time.Duration
	ExtractionPollInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Razorpay
	cfg.Razorpay = RazorpayConfig{
		KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
		KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
		WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
	}

	// PDF extraction service
	cfg.Extractor = ExtractorConfig{
		BaseURL: getEnv("EXTRACTOR_BASE_URL", ""),
		APIKey:  getEnv("EXTRACTOR_API_KEY", ""),
	}

	// Object storage for uploaded PDFs
	cfg.Storage = StorageConfig{
		Region:          getEnv("S3_REGION", "ap-south-1"),
		Bucket:          getEnv("S3_BUCKET", "prepstack-uploads"),
		Endpoint:        getEnv("S3_ENDPOINT", "https://s3.ap-south-1.amazonaws.com"),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	// Workers (durations)
	var err error
	if cfg.Worker.PaymentCheckInterval, err = parseDurationEnv("PAYMENT_CHECK_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_CHECK_INTERVAL: %w", err)
	}
	if cfg.Worker.PaymentStaleAfter, err = parseDurationEnv("PAYMENT_STALE_AFTER", "10m"); err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_STALE_AFTER: %w", err)
	}
	if cfg.Worker.PaymentExpireAfter, err = parseDurationEnv("PAYMENT_EXPIRE_AFTER", "24h"); err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_EXPIRE_AFTER: %w", err)
	}
	if cfg.Worker.ExtractionPollInterval, err = parseDurationEnv("EXTRACTION_POLL_INTERVAL", "30s"); err != nil {
		return nil, fmt.Errorf("invalid EXTRACTION_POLL_INTERVAL: %w", err)
	}

	// Basic validation for DB parameters.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
