// SPDX-License-Identifier: Apache-2.0

// Package verify wires the verification pipeline to its host concerns:
// media type detection, result caching and statistics.
package verify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aletheiaproj/aletheia/internal/cache"
	"github.com/aletheiaproj/aletheia/internal/engine"
	"github.com/aletheiaproj/aletheia/internal/media"
	"github.com/aletheiaproj/aletheia/internal/provenance"
	"github.com/aletheiaproj/aletheia/internal/stats"
)

// Service verifies media. Its methods are safe for concurrent use.
type Service struct {
	pipeline *provenance.Pipeline
	cache    cache.Cache
	cacheTTL time.Duration
	stats    stats.Store
	fetcher  *media.Fetcher
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithStats(store stats.Store) Option {
	return func(s *Service) {
		s.stats = store
	}
}

// WithFetcher sets the fetcher used by VerifyURL.
func WithFetcher(f *media.Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service over e. Without options it neither caches
// nor records statistics.
func NewService(e engine.Engine, opts ...Option) *Service {
	s := &Service{
		pipeline: provenance.NewPipeline(e),
		cache:    cache.Nop{},
		stats:    nil,
		fetcher:  media.NewFetcher(nil),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify runs one verification. Cache and statistics failures are logged
// and never change the result.
func (s *Service) Verify(ctx context.Context, src provenance.MediaSource) provenance.VerificationResult {
	src.MediaType = media.Resolve(src.MediaType, src.Content, src.ID)
	log := s.logger.With(
		zap.String("source", src.ID),
		zap.String("media_type", src.MediaType),
		zap.String("engine", s.pipeline.EngineName()),
	)

	key := cache.Key(src.Content, src.MediaType)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Warn("cache lookup failed", zap.Error(err))
	} else if ok {
		log.Debug("cache hit", zap.String("status", string(cached.Status)))
		s.record(ctx, log, cached.Status)
		return *cached
	}

	start := time.Now()
	result := s.pipeline.Run(engine.WithSourcePath(ctx, src.ID), src)
	log.Info("verified",
		zap.String("status", string(result.Status)),
		zap.Int("history_events", len(result.History)),
		zap.Bool("thumbnail", result.Thumbnail != nil),
		zap.Duration("elapsed", time.Since(start)),
	)

	if cache.Cacheable(result) {
		if err := s.cache.Put(ctx, key, result, s.cacheTTL); err != nil {
			log.Warn("cache store failed", zap.Error(err))
		}
	}
	s.record(ctx, log, result.Status)
	return result
}

// VerifyURL fetches rawURL and verifies the body, using the URL for media
// type detection. A failed fetch yields an error result and, since nothing
// was verified, is not counted in the statistics.
func (s *Service) VerifyURL(ctx context.Context, rawURL, mediaType string) provenance.VerificationResult {
	content, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.logger.Warn("fetch failed", zap.String("source", rawURL), zap.Error(err))
		return provenance.ErrorResult(media.FailureMessage(err))
	}
	return s.Verify(ctx, provenance.MediaSource{
		Content:   content,
		MediaType: mediaType,
		ID:        rawURL,
	})
}

// Stats returns the current totals, zero when no store is configured.
func (s *Service) Stats(ctx context.Context) (stats.Stats, error) {
	if s.stats == nil {
		return stats.Stats{}, nil
	}
	return s.stats.Load(ctx)
}

func (s *Service) record(ctx context.Context, log *zap.Logger, status provenance.StatusCode) {
	if s.stats == nil {
		return
	}
	if _, err := s.stats.Record(ctx, status); err != nil {
		log.Warn("stats update failed", zap.Error(err))
	}
}
