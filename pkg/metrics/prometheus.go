// Package metrics provides Prometheus metrics for the Celest scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// scoreBuckets cover the 0-100 score range in steps of ten.
var scoreBuckets = prometheus.LinearBuckets(10, 10, 10) //nolint:gochecknoglobals // static bucket layout

// Manager manages all Prometheus metrics for the Celest service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer
	auto             promauto.Factory

	// Scoring
	sectorWheels      prometheus.Counter
	sectorScore       *prometheus.HistogramVec
	harmonyScore      prometheus.Histogram
	dimensionScores   *prometheus.CounterVec
	dimensionScore    *prometheus.HistogramVec
	scoringLatency    prometheus.Histogram
	planetaryHours    *prometheus.CounterVec
	oracleDegradation *prometheus.CounterVec

	// Natal cache
	natalCache *prometheus.CounterVec

	// Snapshot queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	queueLatency       prometheus.Histogram
	snapshotDuplicates prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Snapshot store
	snapshotsStored  prometheus.Counter
	snapshotsTotal   prometheus.Gauge
	snapshotsPruned  prometheus.Counter
	refreshRuns      prometheus.Counter
	refreshLastUnix  prometheus.Gauge
	refreshScheduled prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "celest",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.auto = promauto.With(m.registry)
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return m.auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return m.auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return m.auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return m.auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return m.auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.sectorWheels = m.counter("sector_wheels_total", "Total number of sector wheels computed")
	m.sectorScore = m.histogramVec("sector_score", "Distribution of sector scores", scoreBuckets, "sector")
	m.harmonyScore = m.histogram("harmony_score", "Distribution of wheel harmony scores", scoreBuckets)
	m.dimensionScores = m.counterVec("dimension_scores_total", "Total number of dimension scores computed", "dimension")
	m.dimensionScore = m.histogramVec("dimension_score", "Distribution of dimension scores", scoreBuckets, "dimension")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Latency of a full scoring request including chart builds", m.histogramBuckets)
	m.planetaryHours = m.counterVec("planetary_hours_total", "Planetary hour lookups by outcome", "outcome")
	m.oracleDegradation = m.counterVec("oracle_degradations_total", "Oracle failures absorbed by a neutral fallback", "component")

	m.natalCache = m.counterVec("natal_cache_requests_total", "Natal cache lookups by result", "result")

	m.queueSize = m.gauge("queue_size", "Current size of the snapshot job queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the snapshot job queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (0-1)")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")
	m.queueLatency = m.histogram("queue_latency_milliseconds", "Time jobs spend waiting in the queue", m.histogramBuckets)
	m.snapshotDuplicates = m.counter("snapshot_duplicates_total", "Snapshot requests already queued for the same subject and day")

	m.workerCount = m.gauge("worker_count", "Configured number of snapshot workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently computing a snapshot")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time to compute and store one snapshot", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of failed snapshot jobs")

	m.snapshotsStored = m.counter("snapshots_stored_total", "Total number of snapshots written")
	m.snapshotsTotal = m.gauge("snapshots", "Number of snapshots currently held")
	m.snapshotsPruned = m.counter("snapshots_pruned_total", "Total number of snapshots removed by retention")
	m.refreshRuns = m.counter("refresh_runs_total", "Total number of scheduled refresh runs")
	m.refreshLastUnix = m.gauge("refresh_last_unix", "Unix time of the last scheduled refresh")
	m.refreshScheduled = m.counter("refresh_jobs_total", "Total number of jobs scheduled by refresh runs")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")
	m.rateLimited = m.counterVec("http_rate_limited_total", "Requests rejected by the rate limiter", "endpoint")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.gauge("system_gc_pause_milliseconds", "Average GC pause time")
}

// RecordSectorWheel records one computed wheel and its sector scores.
func RecordSectorWheel(harmony int, sectors map[string]int) {
	globalManager.sectorWheels.Inc()
	globalManager.harmonyScore.Observe(float64(harmony))
	for label, score := range sectors {
		globalManager.sectorScore.WithLabelValues(label).Observe(float64(score))
	}
}

// RecordDimensionScore records one dimension score.
func RecordDimensionScore(dimension string, score int) {
	globalManager.dimensionScores.WithLabelValues(dimension).Inc()
	globalManager.dimensionScore.WithLabelValues(dimension).Observe(float64(score))
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordPlanetaryHour records a planetary hour lookup; fallback is true when
// the default ruler was used.
func RecordPlanetaryHour(fallback bool) {
	outcome := "computed"
	if fallback {
		outcome = "fallback"
	}
	globalManager.planetaryHours.WithLabelValues(outcome).Inc()
}

// RecordOracleDegradation counts an oracle failure replaced by a neutral value.
func RecordOracleDegradation(component string) {
	globalManager.oracleDegradation.WithLabelValues(component).Inc()
}

// RecordNatalCache records a natal cache hit or miss.
func RecordNatalCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.natalCache.WithLabelValues(result).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueLatency records how long a job waited in the queue.
func RecordQueueLatency(latencyMs float64) {
	globalManager.queueLatency.Observe(latencyMs)
}

// RecordSnapshotDuplicate counts a snapshot request for an already queued day.
func RecordSnapshotDuplicate() {
	globalManager.snapshotDuplicates.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordSnapshotStored counts a written snapshot.
func RecordSnapshotStored() {
	globalManager.snapshotsStored.Inc()
}

// UpdateSnapshotsTotal sets the number of held snapshots.
func UpdateSnapshotsTotal(count int) {
	globalManager.snapshotsTotal.Set(float64(count))
}

// RecordSnapshotsPruned counts snapshots dropped by retention.
func RecordSnapshotsPruned(count int) {
	globalManager.snapshotsPruned.Add(float64(count))
}

// RecordRefreshRun records a scheduled refresh and how many jobs it queued.
func RecordRefreshRun(unix float64, scheduled int) {
	globalManager.refreshRuns.Inc()
	globalManager.refreshLastUnix.Set(unix)
	globalManager.refreshScheduled.Add(float64(scheduled))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime sets the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Set(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
