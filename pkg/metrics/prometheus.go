// Package metrics provides Prometheus metrics for the pulse telemetry service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pulse service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion metrics
	recordsIngested prometheus.Counter
	ingestRejected  *prometheus.CounterVec
	ingestBlank     prometheus.Counter
	appendErrors    prometheus.Counter
	appendLatency   prometheus.Histogram

	// Broadcast metrics
	broadcastDeliveries prometheus.Counter
	broadcastDropped    prometheus.Counter
	subscriberCount     prometheus.Gauge

	// Live stream metrics
	streamSessions   prometheus.Counter
	streamKeepAlives prometheus.Counter

	// Query/export metrics
	historyQueries prometheus.Counter
	exportRequests *prometheus.CounterVec
	scanLatency    prometheus.Histogram

	// Storage metrics
	logSizeBytes prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByComponent   *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pulse",
		subsystem:        "telemetry",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_ingested_total",
		Help:      "Total number of records durably appended to the log",
	})

	m.ingestRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_rejected_total",
		Help:      "Total number of rejected ingest calls by reason",
	}, []string{"reason"})

	m.ingestBlank = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_blank_total",
		Help:      "Total number of blank ingest payloads treated as no-ops",
	})

	m.appendErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "append_errors_total",
		Help:      "Total number of failed log appends",
	})

	m.appendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "append_latency_milliseconds",
		Help:      "Histogram of log append latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.broadcastDeliveries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcast_deliveries_total",
		Help:      "Total number of lines enqueued to subscriber buffers",
	})

	m.broadcastDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcast_dropped_total",
		Help:      "Total number of subscribers dropped during fan-out",
	})

	m.subscriberCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "subscribers",
		Help:      "Current number of registered live-stream subscribers",
	})

	m.streamSessions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_sessions_total",
		Help:      "Total number of live-stream sessions opened",
	})

	m.streamKeepAlives = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_keepalives_total",
		Help:      "Total number of idle keep-alive events emitted",
	})

	m.historyQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_queries_total",
		Help:      "Total number of windowed history queries served",
	})

	m.exportRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "export_requests_total",
		Help:      "Total number of export downloads by kind",
	}, []string{"kind"})

	m.scanLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scan_latency_milliseconds",
		Help:      "Histogram of full log scan latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.logSizeBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "log_size_bytes",
		Help:      "Current size of the append-only log file in bytes",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Total number of errors by component and reason",
	}, []string{"component", "reason"})
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers operating on the global manager.

// RecordIngested increments the ingested-records counter.
func RecordIngested() { globalManager.recordsIngested.Inc() }

// RecordIngestRejected increments the rejected-ingest counter for a reason.
func RecordIngestRejected(reason string) { globalManager.ingestRejected.WithLabelValues(reason).Inc() }

// RecordIngestBlank increments the blank-payload no-op counter.
func RecordIngestBlank() { globalManager.ingestBlank.Inc() }

// RecordAppendError increments the failed-append counter.
func RecordAppendError() { globalManager.appendErrors.Inc() }

// RecordAppendLatency observes one append latency sample in milliseconds.
func RecordAppendLatency(ms float64) { globalManager.appendLatency.Observe(ms) }

// RecordBroadcastDelivery adds n to the delivered-lines counter.
func RecordBroadcastDelivery(n int) { globalManager.broadcastDeliveries.Add(float64(n)) }

// RecordBroadcastDropped increments the dropped-subscriber counter.
func RecordBroadcastDropped() { globalManager.broadcastDropped.Inc() }

// UpdateSubscriberCount sets the current subscriber gauge.
func UpdateSubscriberCount(n int) { globalManager.subscriberCount.Set(float64(n)) }

// RecordStreamSession increments the opened-sessions counter.
func RecordStreamSession() { globalManager.streamSessions.Inc() }

// RecordStreamKeepAlive increments the keep-alive counter.
func RecordStreamKeepAlive() { globalManager.streamKeepAlives.Inc() }

// RecordHistoryQuery increments the history-query counter.
func RecordHistoryQuery() { globalManager.historyQueries.Inc() }

// RecordExport increments the export counter for a kind ("full" or "range").
func RecordExport(kind string) { globalManager.exportRequests.WithLabelValues(kind).Inc() }

// RecordScanLatency observes one full-scan latency sample in milliseconds.
func RecordScanLatency(ms float64) { globalManager.scanLatency.Observe(ms) }

// UpdateLogSize sets the log-size gauge in bytes.
func UpdateLogSize(bytes int64) { globalManager.logSizeBytes.Set(float64(bytes)) }

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}

// RecordErrorByComponent increments the per-component error counter.
func RecordErrorByComponent(component, reason string) {
	globalManager.errorsByComponent.WithLabelValues(component, reason).Inc()
}
