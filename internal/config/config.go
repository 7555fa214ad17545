package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig

	// Storage locations for templates and rendered artifacts
	Storage StorageConfig

	// HR policy bounds
	Policy PolicyConfig

	// Background jobs
	Cron CronConfig

	// Failed-login throttling
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	AutoMigrate        bool
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost         int
	TempPasswordLength int
	EnableRequestLog   bool
	EnableAuditLog     bool
}

// StorageConfig holds filesystem locations
type StorageConfig struct {
	TemplatesDir   string // DOCX templates and manifest.yaml
	DocumentsDir   string // final signed renders
	PreviewDir     string // draft and preview renders
	CredentialsDir string // generated login/password exports
}

// PolicyConfig holds the HR rule thresholds
type PolicyConfig struct {
	AnnualLeaveSoftLimitDays     int
	InternshipDefaultMonths      int
	InternshipMinMonths          int
	InternshipMaxMonths          int
	InternshipMaxExtensionMonths int
}

// CronConfig holds scheduler configuration (robfig/cron expressions with seconds)
type CronConfig struct {
	Enabled                 bool
	InternshipSweepSchedule string
	AuditCleanupSchedule    string
	AuditRetentionDays      int
}

// RateLimitConfig bounds failed logins per username and per client IP
type RateLimitConfig struct {
	Enabled         bool
	MaxUserFailures int
	UserWindow      time.Duration
	MaxIPFailures   int
	IPWindow        time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			AutoMigrate:        getEnvAsBool("AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:         getEnvAsInt("BCRYPT_COST", 12),
			TempPasswordLength: getEnvAsInt("TEMP_PASSWORD_LENGTH", 12),
			EnableRequestLog:   getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
			EnableAuditLog:     getEnvAsBool("ENABLE_AUDIT_LOGGING", true),
		},
		Storage: StorageConfig{
			TemplatesDir:   getEnv("TEMPLATES_DIR", "templates"),
			DocumentsDir:   getEnv("DOCUMENTS_DIR", "data/documents"),
			PreviewDir:     getEnv("PREVIEW_DIR", os.TempDir()),
			CredentialsDir: getEnv("CREDENTIALS_DIR", "data/credentials"),
		},
		Policy: PolicyConfig{
			AnnualLeaveSoftLimitDays:     getEnvAsInt("ANNUAL_LEAVE_SOFT_LIMIT_DAYS", 24),
			InternshipDefaultMonths:      getEnvAsInt("INTERNSHIP_DEFAULT_MONTHS", 3),
			InternshipMinMonths:          getEnvAsInt("INTERNSHIP_MIN_MONTHS", 1),
			InternshipMaxMonths:          getEnvAsInt("INTERNSHIP_MAX_MONTHS", 3),
			InternshipMaxExtensionMonths: getEnvAsInt("INTERNSHIP_MAX_EXTENSION_MONTHS", 12),
		},
		Cron: CronConfig{
			Enabled:                 getEnvAsBool("CRON_ENABLED", true),
			InternshipSweepSchedule: getEnv("INTERNSHIP_SWEEP_SCHEDULE", "0 5 0 * * *"),
			AuditCleanupSchedule:    getEnv("AUDIT_CLEANUP_SCHEDULE", "0 0 3 * * 0"),
			AuditRetentionDays:      getEnvAsInt("AUDIT_RETENTION_DAYS", 365),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getEnvAsBool("LOGIN_RATE_LIMIT_ENABLED", true),
			MaxUserFailures: getEnvAsInt("LOGIN_MAX_USER_FAILURES", 5),
			UserWindow:      time.Duration(getEnvAsInt("LOGIN_USER_WINDOW", 900)) * time.Second,
			MaxIPFailures:   getEnvAsInt("LOGIN_MAX_IP_FAILURES", 20),
			IPWindow:        time.Duration(getEnvAsInt("LOGIN_IP_WINDOW", 3600)) * time.Second,
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultPolicy returns the policy values used when nothing is configured.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		AnnualLeaveSoftLimitDays:     24,
		InternshipDefaultMonths:      3,
		InternshipMinMonths:          1,
		InternshipMaxMonths:          3,
		InternshipMaxExtensionMonths: 12,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	p := c.Policy
	if p.InternshipMinMonths < 1 || p.InternshipMaxMonths < p.InternshipMinMonths {
		return fmt.Errorf("invalid internship bounds: %d..%d months", p.InternshipMinMonths, p.InternshipMaxMonths)
	}
	if p.InternshipDefaultMonths < p.InternshipMinMonths || p.InternshipDefaultMonths > p.InternshipMaxMonths {
		return fmt.Errorf("INTERNSHIP_DEFAULT_MONTHS must be within %d..%d", p.InternshipMinMonths, p.InternshipMaxMonths)
	}
	if p.AnnualLeaveSoftLimitDays <= 0 {
		return fmt.Errorf("ANNUAL_LEAVE_SOFT_LIMIT_DAYS must be positive")
	}

	if c.Security.TempPasswordLength < 8 {
		return fmt.Errorf("TEMP_PASSWORD_LENGTH must be at least 8")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
