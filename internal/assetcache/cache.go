// Package assetcache keeps fetched off-chain assets in process memory and
// hands out local handles for them.
package assetcache

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/fetch"
	"solana-art-lab/internal/observability"
)

// HandlePrefix marks handles that dereference to a local blob.
const HandlePrefix = "blob:"

// Cache maps asset URIs to local handles. Entries are never evicted.
type Cache struct {
	fetcher  fetch.Fetcher
	recorder fetch.Recorder
	metrics  *observability.Metrics
	logger   *zap.Logger

	mu      sync.RWMutex
	handles map[string]string // uri -> handle
	blobs   map[string][]byte // handle -> bytes
	mesh    map[string][]byte // uri -> bytes, populated by mesh requests

	inflight singleflight.Group
}

// Option configures Cache.
type Option func(*Cache)

// WithRecorder sets the fetch event recorder.
func WithRecorder(r fetch.Recorder) Option {
	return func(c *Cache) {
		c.recorder = r
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty Cache that fetches through f.
func New(f fetch.Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: f,
		logger:  zap.NewNop(),
		handles: make(map[string]string),
		blobs:   make(map[string][]byte),
		mesh:    make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type outcome struct {
	handle   string
	ok       bool
	degraded bool
}

// GetOrFetch returns a request for uri. A cached uri completes immediately
// without a fetch. Otherwise the asset is fetched preferring intermediary
// caches, then once more bypassing them. If both attempts fail and uri is an
// http(s) URI, the request completes with uri itself as a degraded handle,
// which is not stored.
//
// Concurrent first-time requests for the same uri share one fetch.
func (c *Cache) GetOrFetch(ctx context.Context, uri string) *Request {
	return c.get(ctx, uri, false)
}

// GetOrFetchMesh behaves like GetOrFetch and additionally keeps the raw
// bytes addressable by the source uri through Mesh.
func (c *Cache) GetOrFetchMesh(ctx context.Context, uri string) *Request {
	return c.get(ctx, uri, true)
}

func (c *Cache) get(ctx context.Context, uri string, mesh bool) *Request {
	if uri == "" {
		return completedRequest(uri, "", false)
	}

	if handle, ok := c.lookup(uri); ok {
		c.metrics.RecordAssetLookup(true)
		if mesh {
			c.promoteMesh(uri, handle)
		}
		return completedRequest(uri, handle, true)
	}
	c.metrics.RecordAssetLookup(false)

	req := newRequest(uri)
	// The shared fetch outlives any single caller's cancellation.
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		v, _, _ := c.inflight.Do(uri, func() (interface{}, error) {
			return c.load(fetchCtx, uri), nil
		})
		res := v.(outcome)
		if mesh && res.ok && !res.degraded {
			c.promoteMesh(uri, res.handle)
		}
		req.complete(res.handle, res.ok, res.degraded)
	}()
	return req
}

func (c *Cache) load(ctx context.Context, uri string) outcome {
	// A collapsed caller may arrive after the previous flight stored the entry.
	if handle, ok := c.lookup(uri); ok {
		return outcome{handle: handle, ok: true}
	}

	body, err := c.attempt(ctx, uri, fetch.ModePreferCache)
	if err != nil {
		c.logger.Debug("asset fetch failed, retrying without cache",
			zap.String("uri", uri), zap.Error(err))
		body, err = c.attempt(ctx, uri, fetch.ModeBypassCache)
	}
	if err != nil {
		if strings.HasPrefix(uri, "http") {
			c.logger.Warn("asset unavailable, serving external uri",
				zap.String("uri", uri), zap.Error(err))
			c.metrics.RecordAssetDegraded()
			return outcome{handle: uri, ok: true, degraded: true}
		}
		c.logger.Warn("asset unavailable", zap.String("uri", uri), zap.Error(err))
		return outcome{}
	}

	return outcome{handle: c.store(uri, body), ok: true}
}

func (c *Cache) attempt(ctx context.Context, uri string, mode fetch.Mode) ([]byte, error) {
	start := time.Now()
	body, err := c.fetcher.Fetch(ctx, uri, mode)

	result := domain.FetchOutcomeOK
	if err != nil {
		result = domain.FetchOutcomeError
	}
	c.metrics.RecordAssetFetch(mode.String(), result, time.Since(start))
	if c.recorder != nil {
		c.recorder.RecordFetch(ctx, fetch.NewEvent(uri, domain.FetchKindAsset, mode, result, len(body), start))
	}
	return body, err
}

func (c *Cache) store(uri string, body []byte) string {
	handle := BlobHandle(body)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.blobs[handle]; !ok {
		c.blobs[handle] = body
	}
	c.handles[uri] = handle
	return handle
}

func (c *Cache) promoteMesh(uri, handle string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.mesh[uri]; ok {
		return
	}
	if body, ok := c.blobs[handle]; ok {
		c.mesh[uri] = body
	}
}

func (c *Cache) lookup(uri string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handles[uri]
	return h, ok
}

// Has reports whether uri has a stored handle. Degraded results are not stored.
func (c *Cache) Has(uri string) bool {
	_, ok := c.lookup(uri)
	return ok
}

// Blob dereferences a local handle. The returned slice must not be modified.
func (c *Cache) Blob(handle string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.blobs[handle]
	return b, ok
}

// Mesh returns the raw bytes kept for uri by GetOrFetchMesh.
func (c *Cache) Mesh(uri string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.mesh[uri]
	return b, ok
}

// Len returns the number of stored uri entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}

// BlobHandle returns the content address of body.
func BlobHandle(body []byte) string {
	sum := blake3.Sum256(body)
	return HandlePrefix + hex.EncodeToString(sum[:])
}

// IsBlobHandle reports whether handle refers to a local blob.
func IsBlobHandle(handle string) bool {
	return strings.HasPrefix(handle, HandlePrefix)
}
