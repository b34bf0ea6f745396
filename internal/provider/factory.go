package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// BackendType names a provider wire protocol.
type BackendType string

const (
	BackendHTTP   BackendType = "http"   // LibreTranslate-compatible JSON API
	BackendOpenAI BackendType = "openai" // OpenAI-compatible chat completions
	BackendLambda BackendType = "lambda" // translator Lambda functions
)

// BackendConfig selects and configures a backend.
type BackendConfig struct {
	Type           BackendType
	URL            string
	APIKey         string
	Model          string
	SourceLanguage string
	FunctionPrefix string
}

// NewBackend creates the backend named by cfg.Type. Empty defaults to HTTP.
func NewBackend(ctx context.Context, cfg BackendConfig, logger *zap.Logger) (Translator, error) {
	switch cfg.Type {
	case BackendHTTP, "":
		if cfg.URL == "" {
			return nil, fmt.Errorf("PROVIDER_URL is required for the http provider")
		}
		logger.Info("Creating HTTP translation backend", zap.String("url", cfg.URL))
		return NewHTTPBackend(cfg.URL, cfg.APIKey, nil), nil

	case BackendOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("PROVIDER_API_KEY is required for the openai provider")
		}
		logger.Info("Creating OpenAI translation backend",
			zap.String("model", cfg.Model),
			zap.String("base_url", cfg.URL),
		)
		return NewOpenAIBackend(cfg.APIKey, cfg.URL, cfg.Model, nil), nil

	case BackendLambda:
		logger.Info("Creating Lambda translation backend",
			zap.String("source_language", cfg.SourceLanguage),
			zap.String("function_prefix", cfg.FunctionPrefix),
		)
		return NewLambdaBackend(ctx, cfg.SourceLanguage, cfg.FunctionPrefix)

	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", cfg.Type)
	}
}
