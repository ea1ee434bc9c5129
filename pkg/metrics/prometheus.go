// Package metrics provides Prometheus metrics for the livetable service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// upstreamBuckets covers typical third-party API latencies in milliseconds.
var upstreamBuckets = []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Upstream
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Cache
	cacheLookups *prometheus.CounterVec
	cacheEntries prometheus.Gauge

	// Live enhancement
	liveMatches       prometheus.Gauge
	liveApplied       prometheus.Counter
	liveSkipped       prometheus.Counter
	liveFallbacks     prometheus.Counter
	liveDegraded      prometheus.Counter
	tableBuilds       *prometheus.CounterVec
	tableBuildLatency *prometheus.HistogramVec
	tableRows         prometheus.Gauge

	// Warmer
	warmRuns *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "livetable",
		subsystem:        "standings",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.upstreamRequests = m.counterVec("upstream_requests_total",
		"Upstream API requests by provider, endpoint and status code", "provider", "endpoint", "status_code")
	m.upstreamLatency = m.histogramVec("upstream_request_duration_milliseconds",
		"Upstream API latency in milliseconds", upstreamBuckets, "provider", "endpoint")

	m.cacheLookups = m.counterVec("cache_lookups_total",
		"Cache lookups by key and result (hit, miss, stale)", "key", "result")
	m.cacheEntries = m.gauge("cache_entries", "Number of keys held in the cache")

	m.liveMatches = m.gauge("live_matches", "Live matches returned by the last live fetch")
	m.liveApplied = m.counter("live_matches_applied_total", "Live matches folded into a provisional table")
	m.liveSkipped = m.counter("live_matches_skipped_total", "Live matches skipped because a participant is not in the table")
	m.liveFallbacks = m.counter("live_fallback_queries_total", "Times the fallback live query was issued")
	m.liveDegraded = m.counter("live_degraded_total", "Live fetches that failed and were treated as no live matches")
	m.tableBuilds = m.counterVec("table_builds_total", "Tables built by kind (base, live) and result", "kind", "result")
	m.tableBuildLatency = m.histogramVec("table_build_duration_milliseconds",
		"Time to build a table including upstream fetches", m.histogramBuckets, "kind")
	m.tableRows = m.gauge("table_rows", "Rows in the last built table")

	m.warmRuns = m.counterVec("warm_runs_total", "Cache warmer runs by result", "result")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordUpstreamRequest counts an upstream call and observes its latency.
func RecordUpstreamRequest(provider, endpoint, statusCode string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(provider, endpoint, statusCode).Inc()
	globalManager.upstreamLatency.WithLabelValues(provider, endpoint).Observe(latencyMs)
}

// RecordCacheLookup counts a cache read. result is hit, miss or stale.
func RecordCacheLookup(key, result string) {
	globalManager.cacheLookups.WithLabelValues(key, result).Inc()
}

// UpdateCacheEntries sets the number of cached keys.
func UpdateCacheEntries(n int) {
	globalManager.cacheEntries.Set(float64(n))
}

// UpdateLiveMatches sets the size of the last live match list.
func UpdateLiveMatches(n int) {
	globalManager.liveMatches.Set(float64(n))
}

// RecordLiveAdjustment counts applied and skipped live matches of one pass.
func RecordLiveAdjustment(applied, skipped int) {
	globalManager.liveApplied.Add(float64(applied))
	globalManager.liveSkipped.Add(float64(skipped))
}

// RecordLiveFallback counts a fallback live query.
func RecordLiveFallback() {
	globalManager.liveFallbacks.Inc()
}

// RecordLiveDegraded counts a live fetch failure absorbed as "no live matches".
func RecordLiveDegraded() {
	globalManager.liveDegraded.Inc()
}

// RecordTableBuild counts a table build and observes its duration.
func RecordTableBuild(kind, result string, durationMs float64) {
	globalManager.tableBuilds.WithLabelValues(kind, result).Inc()
	globalManager.tableBuildLatency.WithLabelValues(kind).Observe(durationMs)
}

// UpdateTableRows sets the row count of the last built table.
func UpdateTableRows(n int) {
	globalManager.tableRows.Set(float64(n))
}

// RecordWarmRun counts a cache warmer run.
func RecordWarmRun(result string) {
	globalManager.warmRuns.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
