package provider

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/pricofy/translate-gateway/internal/domain"
	"github.com/pricofy/translate-gateway/internal/metrics"
)

// ClientConfig defines timeout, retry and breaker behavior for provider calls.
type ClientConfig struct {
	// Timeout bounds a single attempt.
	Timeout time.Duration
	// MaxAttempts is the total number of attempts for transient failures.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// BreakerThreshold is the number of consecutive transient failures that opens the breaker.
	BreakerThreshold uint32
	// BreakerCooldown is how long the breaker stays open before probing again.
	BreakerCooldown time.Duration
}

// DefaultClientConfig returns the defaults used when a field is left zero.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:          10 * time.Second,
		MaxAttempts:      3,
		InitialBackoff:   200 * time.Millisecond,
		MaxBackoff:       2 * time.Second,
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
	}
}

// Client wraps a backend with per-call timeout, bounded retry and a circuit breaker.
// It is safe for concurrent use.
type Client struct {
	backend Translator
	cfg     ClientConfig
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewClient creates a provider client around backend.
func NewClient(backend Translator, cfg ClientConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	def := DefaultClientConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = def.BreakerThreshold
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = def.BreakerCooldown
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	threshold := cfg.BreakerThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "translation-provider",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// Rejections and caller cancellations say nothing about provider health.
			return err == nil || errors.Is(err, ErrRejected) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Provider circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		backend: backend,
		cfg:     cfg,
		breaker: breaker,
		logger:  logger,
		metrics: m,
	}
}

// Translate translates one text. Failures are always *domain.ProviderError.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	start := time.Now()

	out, err := backoff.Retry(ctx,
		func() (string, error) {
			return c.attempt(ctx, text, targetLanguage)
		},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.cfg.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Debug("Retrying provider call",
				zap.String("target_language", targetLanguage),
				zap.Duration("backoff", wait),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		perr := classify(err)
		c.metrics.RecordProviderCall(string(perr.Kind), time.Since(start))
		return "", perr
	}

	c.metrics.RecordProviderCall("success", time.Since(start))
	return out, nil
}

// attempt makes one bounded call through the breaker. Errors that must not be
// retried are returned as backoff.Permanent.
func (c *Client) attempt(ctx context.Context, text, targetLanguage string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.backend.Translate(callCtx, text, targetLanguage)
	})
	if err == nil {
		return res.(string), nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "", backoff.Permanent(&domain.ProviderError{Kind: domain.ProviderUnavailable, Err: err})
	case errors.Is(err, ErrRejected):
		return "", backoff.Permanent(&domain.ProviderError{Kind: domain.ProviderRejected, Err: err})
	case ctx.Err() != nil:
		return "", backoff.Permanent(ctx.Err())
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		// The per-call bound is hard: a timed-out call is not retried.
		return "", backoff.Permanent(&domain.ProviderError{Kind: domain.ProviderTimeout, Err: err})
	}

	return "", err
}

func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0.25
	return b
}

// classify maps whatever ended the retry loop onto a provider error.
func classify(err error) *domain.ProviderError {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return perr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.ProviderError{Kind: domain.ProviderTimeout, Err: err}
	}
	return &domain.ProviderError{Kind: domain.ProviderUnavailable, Err: err}
}
