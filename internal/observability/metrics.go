// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solana-art-lab/internal/domain"
)

// Metrics holds all Prometheus metrics for the application.
// All record methods are safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Resolution metrics
	ArtResolved *prometheus.CounterVec

	// Asset cache metrics
	AssetCacheLookups *prometheus.CounterVec
	AssetFetches      *prometheus.CounterVec
	AssetDegraded     prometheus.Counter

	// Extended metadata metrics
	ExtendedCacheLookups *prometheus.CounterVec
	ExtendedFetches      *prometheus.CounterVec
	ExtendedDeliveries   *prometheus.CounterVec
	PersistFailures      prometheus.Counter

	// Latency metrics
	FetchLatency   *prometheus.HistogramVec
	RPCCallLatency *prometheus.HistogramVec

	// Ingestion metrics
	RecordsIngested *prometheus.CounterVec
	DecodeErrors    *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_art_lab"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ArtResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "art",
			Name:      "resolved_total",
			Help:      "Total number of Art resolutions by type",
		}, []string{"type"}),

		AssetCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "asset_cache",
			Name:      "lookups_total",
			Help:      "Total number of asset cache lookups by result",
		}, []string{"result"}),
		AssetFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "asset_cache",
			Name:      "fetches_total",
			Help:      "Total number of asset fetch attempts by mode and outcome",
		}, []string{"mode", "outcome"}),
		AssetDegraded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "asset_cache",
			Name:      "degraded_total",
			Help:      "Total number of assets served as external references after both fetches failed",
		}),

		ExtendedCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extended",
			Name:      "cache_lookups_total",
			Help:      "Total number of persistent cache lookups by result",
		}, []string{"result"}),
		ExtendedFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extended",
			Name:      "fetches_total",
			Help:      "Total number of extended metadata fetches by outcome",
		}, []string{"outcome"}),
		ExtendedDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extended",
			Name:      "deliveries_total",
			Help:      "Total number of gate deliveries by result",
		}, []string{"result"}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extended",
			Name:      "persist_failures_total",
			Help:      "Total number of swallowed cache write failures",
		}),

		FetchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "latency",
			Name:      "fetch_seconds",
			Help:      "Off-chain fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "latency",
			Name:      "rpc_call_seconds",
			Help:      "RPC call latency in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),

		RecordsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_total",
			Help:      "Total number of decoded records stored by kind",
		}, []string{"kind"}),
		DecodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "decode_errors_total",
			Help:      "Total number of account decode failures by owner",
		}, []string{"owner"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests, extra collectors).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveArt records a resolution.
func (m *Metrics) ObserveArt(t domain.ArtType) {
	if m == nil {
		return
	}
	m.ArtResolved.WithLabelValues(string(t)).Inc()
}

// RecordAssetLookup records an asset cache hit or miss.
func (m *Metrics) RecordAssetLookup(hit bool) {
	if m == nil {
		return
	}
	m.AssetCacheLookups.WithLabelValues(hitLabel(hit)).Inc()
}

// RecordAssetFetch records one asset fetch attempt.
func (m *Metrics) RecordAssetFetch(mode string, outcome domain.FetchOutcome, d time.Duration) {
	if m == nil {
		return
	}
	m.AssetFetches.WithLabelValues(mode, string(outcome)).Inc()
	m.FetchLatency.WithLabelValues(string(domain.FetchKindAsset)).Observe(d.Seconds())
}

// RecordAssetDegraded records a fallback to the raw external URI.
func (m *Metrics) RecordAssetDegraded() {
	if m == nil {
		return
	}
	m.AssetDegraded.Inc()
}

// RecordExtendedLookup records a persistent cache hit or miss.
func (m *Metrics) RecordExtendedLookup(hit bool) {
	if m == nil {
		return
	}
	m.ExtendedCacheLookups.WithLabelValues(hitLabel(hit)).Inc()
}

// RecordExtendedFetch records one extended metadata fetch.
func (m *Metrics) RecordExtendedFetch(outcome domain.FetchOutcome, d time.Duration) {
	if m == nil {
		return
	}
	m.ExtendedFetches.WithLabelValues(string(outcome)).Inc()
	m.FetchLatency.WithLabelValues(string(domain.FetchKindExtended)).Observe(d.Seconds())
}

// RecordExtendedDelivery records a gate delivery.
func (m *Metrics) RecordExtendedDelivery(delivered bool) {
	if m == nil {
		return
	}
	result := "empty"
	if delivered {
		result = "delivered"
	}
	m.ExtendedDeliveries.WithLabelValues(result).Inc()
}

// RecordPersistFailure records a swallowed cache write failure.
func (m *Metrics) RecordPersistFailure() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

// RecordRPCLatency records RPC call latency.
func (m *Metrics) RecordRPCLatency(method string, d time.Duration) {
	if m == nil {
		return
	}
	m.RPCCallLatency.WithLabelValues(method).Observe(d.Seconds())
}

// RecordIngested records a stored record.
func (m *Metrics) RecordIngested(kind string) {
	if m == nil {
		return
	}
	m.RecordsIngested.WithLabelValues(kind).Inc()
}

// RecordDecodeError records an account that could not be decoded.
func (m *Metrics) RecordDecodeError(owner string) {
	if m == nil {
		return
	}
	m.DecodeErrors.WithLabelValues(owner).Inc()
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
