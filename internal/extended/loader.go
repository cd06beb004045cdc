// Package extended loads off-chain extended metadata on demand, backed by a
// persistent cache and gated on view visibility.
package extended

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/fetch"
	"solana-art-lab/internal/observability"
	"solana-art-lab/internal/storage"
)

// Loader owns the collaborators shared by every Gate.
type Loader struct {
	ctx      context.Context
	uris     URISource
	cache    storage.ExtendedMetadataCache
	fetcher  fetch.Fetcher
	rewriter Rewriter
	recorder fetch.Recorder
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// Option configures Loader.
type Option func(*Loader)

// WithRewriter sets the CDN rewriter.
func WithRewriter(r Rewriter) Option {
	return func(l *Loader) {
		l.rewriter = r
	}
}

// WithRecorder sets the fetch event recorder.
func WithRecorder(r fetch.Recorder) Option {
	return func(l *Loader) {
		l.recorder = r
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(lg *zap.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader creates a Loader. Fetches started by gates run under ctx, so
// cancelling it stops in-flight work at shutdown.
func NewLoader(ctx context.Context, uris URISource, cache storage.ExtendedMetadataCache, f fetch.Fetcher, opts ...Option) *Loader {
	l := &Loader{
		ctx:      ctx,
		uris:     uris,
		cache:    cache,
		fetcher:  f,
		rewriter: DefaultRewriter(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FetchExtended mounts a visible gate for id and waits for its delivery.
// ok is false when there is no result or the record is not known.
func (l *Loader) FetchExtended(ctx context.Context, id string) (*domain.ExtendedMetadata, bool, error) {
	g := l.Mount(id)
	g.SetVisible(true)
	if !g.Started() {
		return nil, false, nil
	}

	select {
	case <-g.Done():
		meta, ok := g.Result()
		return meta, ok, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// load runs the read, fetch, write sequence for one mount.
func (l *Loader) load(recordURI string) (*domain.ExtendedMetadata, bool) {
	ctx := l.ctx
	key := l.rewriter.Rewrite(recordURI)

	raw, err := l.cache.Get(ctx, key)
	if err == nil {
		l.metrics.RecordExtendedLookup(true)
		return l.process(raw, recordURI)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		l.logger.Warn("extended cache read failed", zap.String("uri", key), zap.Error(err))
	}
	l.metrics.RecordExtendedLookup(false)

	start := time.Now()
	body, err := fetch.FetchJSON(ctx, l.fetcher, key, fetch.ModePreferCache)
	outcome := domain.FetchOutcomeOK
	switch {
	case errors.Is(err, fetch.ErrMalformedJSON):
		outcome = domain.FetchOutcomeMalformed
	case err != nil:
		outcome = domain.FetchOutcomeError
	}
	l.metrics.RecordExtendedFetch(outcome, time.Since(start))
	if l.recorder != nil {
		l.recorder.RecordFetch(ctx, fetch.NewEvent(key, domain.FetchKindExtended, fetch.ModePreferCache, outcome, len(body), start))
	}
	if err != nil {
		l.logger.Debug("extended metadata fetch failed", zap.String("uri", key), zap.Error(err))
		return nil, false
	}

	if err := l.cache.Set(ctx, key, string(body)); err != nil {
		l.metrics.RecordPersistFailure()
		l.logger.Debug("extended cache write failed", zap.String("uri", key), zap.Error(err))
	}

	return l.process(string(body), recordURI)
}
