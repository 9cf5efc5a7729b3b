// Copyright 2026 The PulseFit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	OAuth         OAuthConfig
	Mail          MailConfig
	Paymob        PaymobConfig
	Upload        UploadConfig
	Observability ObservabilityConfig
	RateLimit     RateLimitConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// TokenConfig is one (secret, lifetime) pair. The auth core requires four of
// these: access and refresh for each of the two realms.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// RealmTokens holds the access and refresh token configuration for one realm.
type RealmTokens struct {
	Access  TokenConfig
	Refresh TokenConfig
}

// AuthConfig holds the per-realm token signing configuration.
type AuthConfig struct {
	Admin RealmTokens
	User  RealmTokens
}

// OAuthConfig holds federated login provider configuration
type OAuthConfig struct {
	GoogleClientID string
	FacebookAppID  string
}

// MailConfig holds SMTP configuration for outbound mail
type MailConfig struct {
	Host          string
	Port          string
	Username      string
	Password      string
	From          string
	ResetTemplate string
}

// PaymobConfig holds payment-link integration configuration
type PaymobConfig struct {
	AuthURL       string
	QuickLinkURL  string
	Username      string
	Password      string
	IntegrationID string
	Currency      string
	HMACSecret    string
}

// UploadConfig holds file upload configuration
type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	OTELEnabled    bool
	ServiceName    string
	ServiceVersion string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  parseDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: parseDuration("SERVER_WRITE_TIMEOUT", "15s"),
			IdleTimeout:  parseDuration("SERVER_IDLE_TIMEOUT", "60s"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "pulsefit"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "pulsefit"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    parseInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
		},
		Auth: AuthConfig{
			Admin: RealmTokens{
				Access: TokenConfig{
					Secret: os.Getenv("ADMIN_JWT_SECRET"),
					TTL:    parseDuration("ADMIN_JWT_EXPIRES_IN", "1h"),
				},
				Refresh: TokenConfig{
					Secret: os.Getenv("ADMIN_REFRESH_TOKEN_SECRET"),
					TTL:    parseDuration("ADMIN_REFRESH_TOKEN_EXPIRES_IN", "168h"),
				},
			},
			User: RealmTokens{
				Access: TokenConfig{
					Secret: os.Getenv("USER_JWT_SECRET"),
					TTL:    parseDuration("USER_JWT_EXPIRES_IN", "1h"),
				},
				Refresh: TokenConfig{
					Secret: os.Getenv("USER_REFRESH_TOKEN_SECRET"),
					TTL:    parseDuration("USER_REFRESH_TOKEN_EXPIRES_IN", "168h"),
				},
			},
		},
		OAuth: OAuthConfig{
			GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
			FacebookAppID:  getEnv("FACEBOOK_APP_ID", ""),
		},
		Mail: MailConfig{
			Host:          getEnv("SMTP_HOST", ""),
			Port:          getEnv("SMTP_PORT", "587"),
			Username:      getEnv("SMTP_USERNAME", ""),
			Password:      getEnv("SMTP_PASSWORD", ""),
			From:          getEnv("MAIL_FROM", "no-reply@pulsefit.app"),
			ResetTemplate: getEnv("MAIL_RESET_TEMPLATE", "password-reset"),
		},
		Paymob: PaymobConfig{
			AuthURL:       getEnv("PAYMOB_AUTH_URL", "https://accept.paymob.com/api/auth/tokens"),
			QuickLinkURL:  getEnv("PAYMOB_QUICK_LINK_URL", "https://accept.paymob.com/api/ecommerce/payment-links"),
			Username:      getEnv("PAYMOB_USERNAME", ""),
			Password:      getEnv("PAYMOB_PASSWORD", ""),
			IntegrationID: getEnv("PAYMOB_INTEGRATION_ID", ""),
			Currency:      getEnv("PAYMOB_CURRENCY", "EGP"),
			HMACSecret:    getEnv("PAYMOB_HMAC", ""),
		},
		Upload: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "./uploads"),
			MaxSizeBytes: int64(parseInt("UPLOAD_MAX_SIZE_BYTES", 10<<20)),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			OTELEnabled:    parseBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "pulsefit"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: float64(parseInt("RATELIMIT_RPS", 10)),
			Burst:             parseInt("RATELIMIT_BURST", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration. A missing auth secret is fatal here:
// the token service must never start with a partially configured realm.
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	required := []struct {
		name  string
		value string
	}{
		{"ADMIN_JWT_SECRET", c.Auth.Admin.Access.Secret},
		{"ADMIN_REFRESH_TOKEN_SECRET", c.Auth.Admin.Refresh.Secret},
		{"USER_JWT_SECRET", c.Auth.User.Access.Secret},
		{"USER_REFRESH_TOKEN_SECRET", c.Auth.User.Refresh.Secret},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	d, err := time.ParseDuration(value)
	if err != nil {
		// Fallback to default
		d, _ = time.ParseDuration(defaultValue)
	}
	return d
}
