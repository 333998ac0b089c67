package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the service
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	SourceBaseURL          string
	SourceTimeout          time.Duration
	SourceRateLimit        int
	SourceFetchConcurrency int
	SourceMaxRetries       int
	SourceInitialBackoff   time.Duration
	BreakerThreshold       int
	BreakerResetTimeout    time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	MongoURI      string
	MongoDatabase string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "catalog_hub"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SourceBaseURL:          getEnv("SOURCE_BASE_URL", ""),
		SourceTimeout:          getEnvAsDuration("SOURCE_TIMEOUT", 30*time.Second),
		SourceRateLimit:        getEnvAsInt("SOURCE_RATE_LIMIT", 10),
		SourceFetchConcurrency: getEnvAsInt("SOURCE_FETCH_CONCURRENCY", 1),
		SourceMaxRetries:       getEnvAsInt("SOURCE_MAX_RETRIES", 3),
		SourceInitialBackoff:   getEnvAsDuration("SOURCE_INITIAL_BACKOFF", 500*time.Millisecond),
		BreakerThreshold:       getEnvAsInt("BREAKER_THRESHOLD", 5),
		BreakerResetTimeout:    getEnvAsDuration("BREAKER_RESET_TIMEOUT", 30*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvAsDuration("TOKEN_TTL", 24*time.Hour),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "catalog_hub_audit"),
	}

	if cfg.SourceBaseURL == "" {
		return nil, fmt.Errorf("SOURCE_BASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		if cfg.Environment == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	return cfg, nil
}

// DSN builds the PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
