package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	AuthRedirectURL   string
	AdminRole         string

	StorageBucket      string
	StorageS3Endpoint  string
	StorageS3Region    string
	StorageS3AccessKey string
	StorageS3SecretKey string
	StoragePublicURL   string

	DatabaseURL string // Direct Postgres access; PostgREST is used when empty
	RedisURL    string

	PollInterval             time.Duration
	EnforceStatusTransitions bool
	Timezone                 string
	PhoneRegion              string
}

// Load loads configuration from environment variables. Missing backend
// settings are a startup error.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),

		SupabaseURL:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:   getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		AuthRedirectURL:   getEnv("AUTH_REDIRECT_URL", "http://localhost:5173/auth/callback"),
		AdminRole:         getEnv("ADMIN_ROLE", "admin"),

		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		StorageS3Endpoint:  getEnv("STORAGE_S3_ENDPOINT", ""),
		StorageS3Region:    getEnv("STORAGE_S3_REGION", "auto"),
		StorageS3AccessKey: getEnv("STORAGE_S3_ACCESS_KEY_ID", ""),
		StorageS3SecretKey: getEnv("STORAGE_S3_SECRET_ACCESS_KEY", ""),
		StoragePublicURL:   getEnv("STORAGE_PUBLIC_URL", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		PollInterval:             getDurationEnv("POLL_INTERVAL", 30*time.Second),
		EnforceStatusTransitions: getBoolEnv("ENFORCE_STATUS_TRANSITIONS", false),
		Timezone:                 getEnv("TIMEZONE", "UTC"),
		PhoneRegion:              getEnv("PHONE_REGION", "IN"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot run without
func (c *Config) Validate() error {
	var missing []string
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseAnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if c.StorageBucket == "" {
		missing = append(missing, "STORAGE_BUCKET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// UsesS3Storage reports whether uploads go through the S3-compatible API
func (c *Config) UsesS3Storage() bool {
	return c.StorageS3AccessKey != "" && c.StorageS3SecretKey != ""
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDurationEnv accepts Go durations ("45s") or plain seconds ("45")
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
