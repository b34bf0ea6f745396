// Package app wires configuration into a running translate gateway.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pricofy/translate-gateway/internal/auth"
	"github.com/pricofy/translate-gateway/internal/cache"
	"github.com/pricofy/translate-gateway/internal/config"
	"github.com/pricofy/translate-gateway/internal/handler"
	"github.com/pricofy/translate-gateway/internal/metrics"
	"github.com/pricofy/translate-gateway/internal/provider"
	"github.com/pricofy/translate-gateway/internal/router"
	"github.com/pricofy/translate-gateway/internal/service"
	"github.com/pricofy/translate-gateway/internal/telemetry"
)

// App holds the long-lived components shared by every request.
type App struct {
	Engine  *gin.Engine
	Service *service.Service
	Cache   *cache.TranslationCache
	Metrics *metrics.Metrics

	logger          *zap.Logger
	shutdownTracing telemetry.ShutdownFunc
}

// New builds the application from cfg. The backend is constructed eagerly so
// misconfiguration fails at startup rather than on the first request.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	store, err := newStore(cfg.Cache)
	if err != nil {
		return nil, err
	}
	translationCache := cache.New(store, cache.Config{
		TTL:     cfg.Cache.TTL(),
		Timeout: cfg.Cache.Timeout,
	}, logger, m)

	if err := translationCache.Ping(ctx); err != nil {
		// The cache is optional for correctness; start anyway.
		logger.Warn("Translation cache unreachable at startup", zap.Error(err))
	}

	backend, err := provider.NewBackend(ctx, provider.BackendConfig{
		Type:           provider.BackendType(cfg.Provider.Type),
		URL:            cfg.Provider.URL,
		APIKey:         cfg.Provider.APIKey,
		Model:          cfg.Provider.Model,
		SourceLanguage: cfg.Provider.SourceLanguage,
		FunctionPrefix: cfg.Provider.FunctionPrefix,
	}, logger)
	if err != nil {
		_ = translationCache.Close()
		return nil, fmt.Errorf("failed to create translation backend: %w", err)
	}

	clientCfg := provider.DefaultClientConfig()
	clientCfg.Timeout = cfg.Provider.Timeout
	clientCfg.MaxAttempts = cfg.Provider.MaxAttempts
	clientCfg.InitialBackoff = cfg.Provider.InitialBackoff
	clientCfg.MaxBackoff = cfg.Provider.MaxBackoff
	client := provider.NewClient(backend, clientCfg, logger, m)

	tp, shutdownTracing, err := telemetry.SetupProvider(ctx, telemetry.Config{
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Environment: cfg.Server.Environment,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		_ = translationCache.Close()
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	svc := service.New(translationCache, client, service.Config{
		Concurrency:    cfg.Provider.Concurrency,
		TracerProvider: tp,
	}, logger)

	h := handler.New(svc, cfg.Limits.MaxTexts, logger)
	engine := router.New(h, auth.NewGate(cfg.Auth.SecretAPIKey), m, logger)

	logger.Info("Translate gateway initialized",
		zap.String("environment", cfg.Server.Environment),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("provider", cfg.Provider.Type),
		zap.Bool("metrics", m != nil),
		zap.Bool("tracing", cfg.Tracing.Endpoint != ""),
	)

	return &App{
		Engine:  engine,
		Service: svc,
		Cache:   translationCache,
		Metrics: m,

		logger:          logger,
		shutdownTracing: shutdownTracing,
	}, nil
}

func newStore(cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case "memory":
		return cache.NewMemoryStore(), nil
	case "redis", "":
		store, err := cache.NewRedisStore(cfg.RedisURL, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

// Close drains pending cache writes, flushes spans, then releases the cache store.
func (a *App) Close(ctx context.Context) error {
	if err := a.Service.Wait(ctx); err != nil {
		a.logger.Warn("Pending cache writes abandoned", zap.Error(err))
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			a.logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return a.Cache.Close()
}
