package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	CORSOrigin   string

	SMTP SMTPConfig

	// Background removal of unverified accounts whose code expired long ago.
	// Disabled by default: expired pending signups persist until re-registered.
	CleanupEnabled   bool
	CleanupSchedule  string // standard cron expression
	CleanupRetention time.Duration
}

// SMTPConfig holds the mail delivery settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Addr returns the host:port address of the SMTP server.
func (c SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	retention, err := time.ParseDuration(getEnv("CLEANUP_RETENTION", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLEANUP_RETENTION: %w", err)
	}

	return &Config{
		ServerPort:   port,
		DatabasePath: getEnv("DATABASE_PATH", "./whisperbox.db"),
		CORSOrigin:   getEnv("CORS_ORIGIN", "http://localhost:3000"),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "onboarding@whisperbox.dev"),
			FromName: getEnv("SMTP_FROM_NAME", "WhisperBox"),
		},
		CleanupEnabled:   getEnv("CLEANUP_ENABLED", "false") == "true",
		CleanupSchedule:  getEnv("CLEANUP_SCHEDULE", "@hourly"),
		CleanupRetention: retention,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
