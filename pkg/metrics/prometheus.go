// Package metrics provides Prometheus metrics for the pubcompass tracker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Sensor ingestion
	fixesTotal       prometheus.Counter
	headingsTotal    prometheus.Counter
	selectionsTotal  prometheus.Counter
	eventsDropped    prometheus.Counter
	queueSize        prometheus.Gauge

	// Refresh policy and candidate fetches
	refreshTriggered  prometheus.Counter
	refreshSuppressed prometheus.Counter
	fetchFailures     prometheus.Counter
	fetchDuration     prometheus.Histogram

	// Derived display
	framesRendered prometheus.Counter
	candidateCount prometheus.Gauge
	trackerState   *prometheus.GaugeVec
	wsClients      prometheus.Gauge

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process health
	sysMemoryBytes prometheus.Gauge
	sysGoroutines  prometheus.Gauge
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets custom buckets for the latency histograms.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry sets the Prometheus registry the metrics register on.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// NewManager creates a metrics manager and registers all metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pubcompass",
		subsystem:        "tracker",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.fixesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "location_fixes_total",
		Help: "Total location fixes processed",
	})
	m.headingsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "heading_events_total",
		Help: "Total orientation events processed",
	})
	m.selectionsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "selections_total",
		Help: "Total user selection events processed",
	})
	m.eventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_dropped_total",
		Help: "Events rejected because the queue was full",
	})
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "event_queue_size",
		Help: "Events currently waiting in the tracker queue",
	})

	m.refreshTriggered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_triggered_total",
		Help: "Candidate refreshes started by the refresh policy",
	})
	m.refreshSuppressed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_suppressed_total",
		Help: "Refreshes skipped while another fetch was in flight",
	})
	m.fetchFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "fetch_failures_total",
		Help: "Candidate fetches that ended in error",
	})
	m.fetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "fetch_duration_seconds",
		Help:    "Candidate fetch round-trip duration",
		Buckets: m.histogramBuckets,
	})

	m.framesRendered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "frames_rendered_total",
		Help: "Display frames pushed to renderers",
	})
	m.candidateCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "candidate_count",
		Help: "Pubs in the current candidate set",
	})
	m.trackerState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "state",
		Help: "Current tracker state (1 for the active state, 0 otherwise)",
	}, []string{"state"})
	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "ws_clients",
		Help: "Connected websocket render clients",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name: "requests_total",
		Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name:    "request_duration_seconds",
		Help:    "HTTP request duration by endpoint, method and status",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.sysMemoryBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "memory_bytes",
		Help: "Allocated heap bytes",
	})
	m.sysGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "goroutines",
		Help: "Current goroutine count",
	})
}

// Registry returns the registry all metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager()
}

// GetRegistry returns the global metrics registry for serving /healthz.
func GetRegistry() *prometheus.Registry { return globalManager.Registry() }

// RecordFix counts a processed location fix.
func RecordFix() { globalManager.fixesTotal.Inc() }

// RecordHeadingEvent counts a processed orientation event.
func RecordHeadingEvent() { globalManager.headingsTotal.Inc() }

// RecordSelection counts a processed user selection.
func RecordSelection() { globalManager.selectionsTotal.Inc() }

// RecordEventDropped counts an event rejected by a full queue.
func RecordEventDropped() { globalManager.eventsDropped.Inc() }

// UpdateQueueSize sets the current tracker queue depth.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

// RecordRefreshTriggered counts a refresh started by the policy.
func RecordRefreshTriggered() { globalManager.refreshTriggered.Inc() }

// RecordRefreshSuppressed counts a refresh dropped by the in-flight guard.
func RecordRefreshSuppressed() { globalManager.refreshSuppressed.Inc() }

// RecordFetchFailure counts a failed candidate fetch.
func RecordFetchFailure() { globalManager.fetchFailures.Inc() }

// RecordFetchDuration observes a candidate fetch round trip.
func RecordFetchDuration(seconds float64) { globalManager.fetchDuration.Observe(seconds) }

// RecordFrameRendered counts a frame pushed to renderers.
func RecordFrameRendered() { globalManager.framesRendered.Inc() }

// UpdateCandidateCount sets the size of the current candidate set.
func UpdateCandidateCount(n int) { globalManager.candidateCount.Set(float64(n)) }

// UpdateTrackerState flips the state gauge to the named state.
func UpdateTrackerState(state string) {
	for _, s := range []string{"awaiting_fix", "awaiting_candidates", "ready"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		globalManager.trackerState.WithLabelValues(s).Set(v)
	}
}

// UpdateWSClients sets the connected websocket client count.
func UpdateWSClients(n int) { globalManager.wsClients.Set(float64(n)) }

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(seconds)
}

// UpdateSystemMemoryUsage sets the allocated heap bytes gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.sysMemoryBytes.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(n int) { globalManager.sysGoroutines.Set(float64(n)) }
