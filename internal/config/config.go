// Package config defines the global configuration structure for the TideCast
// service. Configuration is loaded once at process initialization and is
// immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes the application to fail
// immediately on startup (fail fast).
package config

import (
	"time"

	"tidecast/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the TideCast service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require
// (Least Privilege principle).
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"tidecast-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server    ServerConfig
	Providers ProvidersConfig
	Cache     CacheConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// ProvidersConfig holds upstream data provider credentials, endpoints and
// client tuning parameters. Base URL overrides exist primarily for local
// development against stub servers; empty values fall back to the provider
// defaults.
type ProvidersConfig struct {
	// MET Norway requires an identifying User-Agent with contact info.
	UserAgent string        `envconfig:"PROVIDER_USER_AGENT" default:"tidecast/1.0 ops@tidecast.io"`
	Timeout   time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"4s"`

	// Credentials
	OpenWeatherAPIKey SecretString `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	StormglassAPIKey  SecretString `envconfig:"STORMGLASS_API_KEY" validate:"required"`

	// Endpoint Overrides (Empty in Prod)
	MetNoBaseURL           string `envconfig:"METNO_BASE_URL"`
	NWSBaseURL             string `envconfig:"NWS_BASE_URL"`
	OpenWeatherBaseURL     string `envconfig:"OPENWEATHER_BASE_URL"`
	OpenMeteoBaseURL       string `envconfig:"OPENMETEO_BASE_URL"`
	OpenMeteoMarineBaseURL string `envconfig:"OPENMETEO_MARINE_BASE_URL"`
	StormglassBaseURL      string `envconfig:"STORMGLASS_BASE_URL"`
	MarineBioBaseURL       string `envconfig:"MARINEBIO_BASE_URL"`
}

// CacheConfig holds coordinate cache tuning parameters.
type CacheConfig struct {
	// SweepSchedule is a cron expression controlling how often expired
	// entries are evicted in bulk. Reads already evict lazily; the sweep
	// only bounds memory for keys that are never read again.
	SweepSchedule string `envconfig:"CACHE_SWEEP_SCHEDULE" default:"@every 15m"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
