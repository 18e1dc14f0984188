// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/castboard/castboard/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Auth configuration
	Auth AuthConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// CORS allowed origins
	CORSOrigins []string
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// AuthConfig holds identity provider settings
type AuthConfig struct {
	// IssuerURL is the OIDC issuer, e.g. https://tenant.us.auth0.com/
	IssuerURL string
	// Audience is the API identifier expected in the token's aud claim
	Audience string

	// Optional login-exchange settings. The /login route is disabled
	// when ClientID is empty.
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// ObservabilityConfig holds logging and metrics settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Auth:          loadAuthConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("CASTBOARD_HOST", "0.0.0.0"),
		Port:            getEnv("CASTBOARD_PORT", "8080"),
		ReadTimeout:     getEnvDuration("CASTBOARD_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("CASTBOARD_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("CASTBOARD_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("CASTBOARD_SHUTDOWN_TIMEOUT", 30*time.Second),
		CORSOrigins:     splitList(getEnv("CASTBOARD_CORS_ORIGINS", "*")),
	}
}

// loadDatabaseConfig loads database configuration from environment
func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:          getEnv("DATABASE_URL", ""),
		MaxOpenConns: getEnvInt("CASTBOARD_DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvInt("CASTBOARD_DB_MAX_IDLE_CONNS", 5),
	}
}

// loadAuthConfig loads identity provider configuration from environment
func loadAuthConfig() AuthConfig {
	return AuthConfig{
		IssuerURL:    getEnv("CASTBOARD_AUTH_ISSUER_URL", ""),
		Audience:     getEnv("CASTBOARD_AUTH_AUDIENCE", ""),
		ClientID:     getEnv("CASTBOARD_AUTH_CLIENT_ID", ""),
		ClientSecret: getEnv("CASTBOARD_AUTH_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("CASTBOARD_AUTH_REDIRECT_URL", ""),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       parseLogLevel(getEnv("CASTBOARD_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("CASTBOARD_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Auth.IssuerURL == "" {
		return fmt.Errorf("auth issuer URL is required")
	}
	if c.Auth.Audience == "" {
		return fmt.Errorf("auth audience is required")
	}

	// Login exchange needs the full client triple when enabled
	if c.Auth.ClientID != "" {
		if c.Auth.ClientSecret == "" {
			return fmt.Errorf("auth client secret is required when client ID is set")
		}
		if c.Auth.RedirectURL == "" {
			return fmt.Errorf("auth redirect URL is required when client ID is set")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// splitList splits a comma-separated list, trimming whitespace
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
