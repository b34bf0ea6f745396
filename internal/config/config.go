// Package config loads process configuration from the environment and an
// optional .env file. It is read once at startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Log      LogConfig
	Cache    CacheConfig
	Provider ProviderConfig
	Limits   LimitsConfig
	Metrics  MetricsConfig
	Tracing  TracingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	ShutdownTimeout time.Duration
}

// AuthConfig holds the shared secret for the credential gate.
type AuthConfig struct {
	SecretAPIKey string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig holds translation cache configuration.
type CacheConfig struct {
	Backend    string
	RedisURL   string
	TTLSeconds int
	Timeout    time.Duration
}

// ProviderConfig holds translation provider configuration.
type ProviderConfig struct {
	Type           string
	URL            string
	APIKey         string
	Model          string
	SourceLanguage string
	FunctionPrefix string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Concurrency    int
}

// LimitsConfig holds request limits.
type LimitsConfig struct {
	MaxTexts int
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool
}

// TracingConfig holds OpenTelemetry export configuration.
type TracingConfig struct {
	ServiceName string
	Endpoint    string
	Insecure    bool
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 5000)
	v.SetDefault("ENVIRONMENT", "dev")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CACHE_BACKEND", "redis")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("CACHE_TTL_SECONDS", 0)
	v.SetDefault("CACHE_TIMEOUT", "500ms")
	v.SetDefault("PROVIDER", "http")
	v.SetDefault("PROVIDER_URL", "")
	v.SetDefault("PROVIDER_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("PROVIDER_SOURCE_LANGUAGE", "en")
	v.SetDefault("LAMBDA_FUNCTION_PREFIX", "pricofy-translator")
	v.SetDefault("PROVIDER_TIMEOUT", "10s")
	v.SetDefault("PROVIDER_MAX_ATTEMPTS", 3)
	v.SetDefault("PROVIDER_INITIAL_BACKOFF", "200ms")
	v.SetDefault("PROVIDER_MAX_BACKOFF", "2s")
	v.SetDefault("PROVIDER_CONCURRENCY", 8)
	v.SetDefault("MAX_TEXTS", 100)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("SECRET_API_KEY", "")
	v.SetDefault("OTEL_SERVICE_NAME", "translate-gateway")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
}

// Load loads configuration from environment variables, reading envFile first
// when it exists. Real environment variables win over the file.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("HOST"),
			Port:            v.GetInt("PORT"),
			Environment:     v.GetString("ENVIRONMENT"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Auth: AuthConfig{
			SecretAPIKey: v.GetString("SECRET_API_KEY"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Cache: CacheConfig{
			Backend:    v.GetString("CACHE_BACKEND"),
			RedisURL:   v.GetString("REDIS_URL"),
			TTLSeconds: v.GetInt("CACHE_TTL_SECONDS"),
			Timeout:    v.GetDuration("CACHE_TIMEOUT"),
		},
		Provider: ProviderConfig{
			Type:           v.GetString("PROVIDER"),
			URL:            v.GetString("PROVIDER_URL"),
			APIKey:         v.GetString("PROVIDER_API_KEY"),
			Model:          v.GetString("OPENAI_MODEL"),
			SourceLanguage: v.GetString("PROVIDER_SOURCE_LANGUAGE"),
			FunctionPrefix: v.GetString("LAMBDA_FUNCTION_PREFIX"),
			Timeout:        v.GetDuration("PROVIDER_TIMEOUT"),
			MaxAttempts:    v.GetInt("PROVIDER_MAX_ATTEMPTS"),
			InitialBackoff: v.GetDuration("PROVIDER_INITIAL_BACKOFF"),
			MaxBackoff:     v.GetDuration("PROVIDER_MAX_BACKOFF"),
			Concurrency:    v.GetInt("PROVIDER_CONCURRENCY"),
		},
		Limits: LimitsConfig{
			MaxTexts: v.GetInt("MAX_TEXTS"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		Tracing: TracingConfig{
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:    v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration.
func (c *Config) validate() error {
	if c.Auth.SecretAPIKey == "" {
		return fmt.Errorf("SECRET_API_KEY is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	switch c.Cache.Backend {
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis cache backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND: %s", c.Cache.Backend)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must not be negative")
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if c.Provider.MaxAttempts < 1 {
		return fmt.Errorf("PROVIDER_MAX_ATTEMPTS must be at least 1")
	}
	if c.Provider.Concurrency < 1 {
		return fmt.Errorf("PROVIDER_CONCURRENCY must be at least 1")
	}
	if c.Limits.MaxTexts < 1 {
		return fmt.Errorf("MAX_TEXTS must be at least 1")
	}
	return nil
}
