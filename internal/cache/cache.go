// Package cache implements the translation cache: a bulk lookup/population
// layer over a networked key-value store. Store failures degrade to cache
// misses and never fail a translation request.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/pricofy/translate-gateway/internal/domain"
	"github.com/pricofy/translate-gateway/internal/metrics"
)

// DefaultTimeout bounds every store call when no timeout is configured.
const DefaultTimeout = 500 * time.Millisecond

// Config configures the translation cache.
type Config struct {
	// TTL is the time-to-live for cached entries. Zero means no expiry.
	TTL time.Duration
	// Timeout bounds every store round-trip.
	Timeout time.Duration
}

// Lookup is the result of a bulk read. Err is set when the store could not be
// read; Hits then holds whatever was resolved, usually nothing.
type Lookup struct {
	Hits map[Key]domain.TranslationRecord
	Err  *domain.CacheError
}

// Degraded reports whether the lookup fell back to all-miss because of a store failure.
func (l Lookup) Degraded() bool {
	return l.Err != nil
}

// TranslationCache maps (text, target language) pairs to stored translations.
type TranslationCache struct {
	store   Store
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a translation cache over store.
func New(store Store, cfg Config, logger *zap.Logger, m *metrics.Metrics) *TranslationCache {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranslationCache{
		store:   store,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// GetMany looks up every key. It never fails: an unreachable store yields an
// empty Hits map with Err set, and undecodable entries count as misses.
func (c *TranslationCache) GetMany(ctx context.Context, keys []Key) Lookup {
	lookup := Lookup{Hits: make(map[Key]domain.TranslationRecord, len(keys))}
	if len(keys) == 0 {
		return lookup
	}

	raw := make([]string, len(keys))
	for i, k := range keys {
		raw[i] = string(k)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	values, err := c.store.GetMany(ctx, raw)
	if err != nil {
		lookup.Err = &domain.CacheError{Op: "get", Err: err}
		c.metrics.RecordCacheError("get")
		c.metrics.RecordCacheLookup(0, len(keys))
		c.logger.Warn("Cache unavailable, treating lookup as all-miss",
			zap.Int("keys", len(keys)),
			zap.Error(err),
		)
		return lookup
	}

	for _, k := range keys {
		v, ok := values[string(k)]
		if !ok {
			continue
		}
		var record domain.TranslationRecord
		if err := json.Unmarshal([]byte(v), &record); err != nil {
			c.metrics.RecordCacheError("decode")
			c.logger.Warn("Discarding undecodable cache entry", zap.String("key", string(k)), zap.Error(err))
			continue
		}
		lookup.Hits[k] = record
	}

	c.metrics.RecordCacheLookup(len(lookup.Hits), len(keys)-len(lookup.Hits))
	return lookup
}

// PutMany stores records. It is best-effort: failures are logged and counted,
// never returned.
func (c *TranslationCache) PutMany(ctx context.Context, records map[Key]domain.TranslationRecord) {
	if len(records) == 0 {
		return
	}

	entries := make(map[string]string, len(records))
	for k, record := range records {
		b, err := json.Marshal(record)
		if err != nil {
			c.logger.Warn("Skipping unencodable cache entry", zap.String("key", string(k)), zap.Error(err))
			continue
		}
		entries[string(k)] = string(b)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.store.SetMany(ctx, entries, c.cfg.TTL); err != nil {
		c.metrics.RecordCacheError("put")
		c.logger.Warn("Failed to populate cache",
			zap.Int("entries", len(entries)),
			zap.Error(&domain.CacheError{Op: "put", Err: err}),
		)
	}
}

// Ping checks that the underlying store is reachable.
func (c *TranslationCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		return &domain.CacheError{Op: "ping", Err: err}
	}
	return nil
}

// Close closes the underlying store.
func (c *TranslationCache) Close() error {
	return c.store.Close()
}
