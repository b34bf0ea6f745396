// Package service runs the translation pipeline: cache-first lookup, provider
// fan-out for misses, best-effort cache population and response assembly.
package service

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pricofy/translate-gateway/internal/cache"
	"github.com/pricofy/translate-gateway/internal/domain"
	"github.com/pricofy/translate-gateway/internal/provider"
)

// DefaultConcurrency bounds parallel provider calls per request.
const DefaultConcurrency = 8

const tracerName = "github.com/pricofy/translate-gateway/internal/service"

// Config configures the pipeline.
type Config struct {
	// Concurrency bounds parallel provider calls within one request.
	Concurrency int
	// TracerProvider records pipeline spans. Nil uses the global provider.
	TracerProvider trace.TracerProvider
}

// Service translates validated requests.
type Service struct {
	cache    *cache.TranslationCache
	provider provider.Translator
	cfg      Config
	logger   *zap.Logger
	tracer   trace.Tracer

	// writes tracks detached cache population so shutdown can drain it.
	writes sync.WaitGroup
}

// New creates a pipeline service.
func New(c *cache.TranslationCache, p provider.Translator, cfg Config, logger *zap.Logger) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Service{
		cache:    c,
		provider: p,
		cfg:      cfg,
		logger:   logger,
		tracer:   tp.Tracer(tracerName),
	}
}

// pending is one distinct text still needing a translation.
type pending struct {
	key  cache.Key
	text string
}

// Translate resolves every text of req. The result is all-or-nothing: if any
// provider call fails the whole request fails with that *domain.ProviderError,
// even though cache hits are resolved per item.
func (s *Service) Translate(ctx context.Context, req domain.TranslationRequest) ([]domain.TranslationRecord, error) {
	ctx, span := s.tracer.Start(ctx, "translate")
	defer span.End()
	span.SetAttributes(
		attribute.String("translate.target_language", req.TargetLanguage),
		attribute.Int("translate.texts", len(req.Texts)),
	)

	resolved := make(map[cache.Key]string, len(req.Texts))

	// Distinct keys in first-seen order; blank texts need no lookup.
	var keys []cache.Key
	texts := make(map[cache.Key]string)
	for _, text := range req.Texts {
		k := cache.NewKey(text, req.TargetLanguage)
		if _, seen := texts[k]; seen {
			continue
		}
		normalized := cache.NormalizeText(text)
		texts[k] = normalized
		if normalized == "" {
			resolved[k] = ""
			continue
		}
		keys = append(keys, k)
	}

	lookup := s.cache.GetMany(ctx, keys)
	if lookup.Degraded() {
		span.AddEvent("cache degraded")
	}

	var misses []pending
	for _, k := range keys {
		if record, ok := lookup.Hits[k]; ok {
			resolved[k] = record.TranslateText
			continue
		}
		misses = append(misses, pending{key: k, text: texts[k]})
	}
	span.SetAttributes(
		attribute.Int("translate.cache_hits", len(lookup.Hits)),
		attribute.Int("translate.cache_misses", len(misses)),
	)

	fresh, err := s.translateMisses(ctx, req.TargetLanguage, misses)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider failed")
		return nil, err
	}

	records := make(map[cache.Key]domain.TranslationRecord, len(fresh))
	for _, m := range misses {
		resolved[m.key] = fresh[m.key]
		records[m.key] = domain.TranslationRecord{MainText: m.text, TranslateText: fresh[m.key]}
	}
	s.populate(ctx, records)

	return Assemble(req.Texts, req.TargetLanguage, resolved)
}

// translateMisses calls the provider once per miss, in parallel up to the
// configured concurrency. The first failure cancels the remaining calls.
func (s *Service) translateMisses(ctx context.Context, targetLanguage string, misses []pending) (map[cache.Key]string, error) {
	out := make(map[cache.Key]string, len(misses))
	if len(misses) == 0 {
		return out, nil
	}

	results := make([]string, len(misses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, m := range misses {
		g.Go(func() error {
			translated, err := s.provider.Translate(gctx, m.text, targetLanguage)
			if err != nil {
				return err
			}
			results[i] = translated
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warn("Provider failed, aborting request",
			zap.String("target_language", targetLanguage),
			zap.Int("misses", len(misses)),
			zap.Error(err),
		)
		return nil, err
	}

	for i, m := range misses {
		out[m.key] = results[i]
	}
	return out, nil
}

// populate writes fresh translations in the background. The write outlives the
// request but is bounded by the cache timeout.
func (s *Service) populate(ctx context.Context, records map[cache.Key]domain.TranslationRecord) {
	if len(records) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		s.cache.PutMany(detached, records)
	}()
}

// Wait blocks until pending cache writes finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.writes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
