// Package config loads the server configuration from the environment.
//
// A .env file in the working directory is loaded first when present; real
// environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the API server and tools.
type Config struct {
	Port        string   `env:"PORT" envDefault:"8787"`
	Environment string   `env:"ENVIRONMENT" envDefault:"development"`
	BaseURL     string   `env:"BASE_URL" envDefault:"http://localhost:8787"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Services whose startup probe must pass: database, redis, s3
	RequiredServices []string `env:"REQUIRED_SERVICES" envSeparator:","`

	Database  DatabaseConfig
	Auth      AuthConfig
	AWS       AWSConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig selects and locates the relational store.
type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"` // postgres or sqlite
	URL        string `env:"DATABASE_URL"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       string `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"postgres"`
	Password   string `env:"DB_PASSWORD"`
	Name       string `env:"DB_NAME" envDefault:"verity"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"verity.db"`
	LogQueries bool   `env:"DB_LOG_QUERIES" envDefault:"false"`
}

// DSN returns the Postgres connection string, preferring DATABASE_URL.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// AWSConfig covers media hosting (S3) and email delivery (SES). Empty bucket or
// sender disables the corresponding integration.
type AWSConfig struct {
	Region       string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Bucket     string `env:"S3_BUCKET"`
	CDNURL       string `env:"CDN_URL"`
	SESFromEmail string `env:"SES_FROM_EMAIL"`
	SESFromName  string `env:"SES_FROM_NAME" envDefault:"Verity"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type RateLimitConfig struct {
	AuthRequests   int           `env:"RATE_LIMIT_AUTH_REQUESTS" envDefault:"10"`
	AuthWindow     time.Duration `env:"RATE_LIMIT_AUTH_WINDOW" envDefault:"1m"`
	APIRequests    int           `env:"RATE_LIMIT_API_REQUESTS" envDefault:"120"`
	APIWindow      time.Duration `env:"RATE_LIMIT_API_WINDOW" envDefault:"1m"`
	UploadRequests int           `env:"RATE_LIMIT_UPLOAD_REQUESTS" envDefault:"20"`
	UploadWindow   time.Duration `env:"RATE_LIMIT_UPLOAD_WINDOW" envDefault:"1m"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	File  string `env:"LOG_FILE" envDefault:"server.log"`
	JSON  bool   `env:"LOG_JSON" envDefault:"false"`
}

type TelemetryConfig struct {
	Enabled      bool    `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName  string  `env:"OTEL_SERVICE_NAME" envDefault:"verity-backend"`
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	SamplingRate float64 `env:"OTEL_SAMPLING_RATE" envDefault:"1.0"`
}

const devJWTSecret = "verity-development-secret"

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("config: JWT_SECRET is required outside development")
		}
		c.Auth.JWTSecret = devJWTSecret
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	return nil
}
