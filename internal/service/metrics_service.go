package service

import (
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
)

const metricsNamespace = "course_planner"

// tally accumulates a count and a total duration for average reporting.
type tally struct {
	count uint64
	nanos uint64
}

func (t *tally) add(d time.Duration) {
	atomic.AddUint64(&t.count, 1)
	atomic.AddUint64(&t.nanos, uint64(d.Nanoseconds()))
}

func (t *tally) load() (uint64, float64) {
	n := atomic.LoadUint64(&t.count)
	if n == 0 {
		return 0, 0
	}
	return n, float64(atomic.LoadUint64(&t.nanos)) / float64(n) / float64(time.Millisecond)
}

// MetricsService owns the Prometheus registry and keeps running totals for
// the JSON summary.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	httpDuration    *prometheus.HistogramVec
	cacheLatency    *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	dbDuration      *prometheus.HistogramVec
	catalogDuration *prometheus.HistogramVec
	catalogTotal    *prometheus.CounterVec
	catalogLookups  *prometheus.CounterVec
	scheduleOps     *prometheus.CounterVec
	prefetchJobs    *prometheus.CounterVec

	requests        tally
	dbQueries       tally
	cacheHits       uint64
	cacheMisses     uint64
	catalogRequests uint64
	catalogFailures uint64
	scheduleOpCount uint64

	queues *queueCollector
}

// NewMetricsService builds a private registry with every planner collector.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Name: "http_request_duration_seconds",
			Help: "HTTP request latency by route and status.",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Name: "cache_operation_seconds",
			Help:    "Catalog cache latency by operation.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"op"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "cache_lookups_total",
			Help: "Catalog cache lookups by result.",
		}, []string{"result"}),
		dbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Name: "db_query_duration_seconds",
			Help: "Postgres query latency by query label.",
		}, []string{"query"}),
		catalogDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Name: "catalog_request_duration_seconds",
			Help: "Upstream catalog request latency.",
		}, []string{"source", "endpoint"}),
		catalogTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "catalog_requests_total",
			Help: "Upstream catalog requests by status. Status 0 is a transport failure.",
		}, []string{"source", "endpoint", "status"}),
		catalogLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "catalog_lookups_total",
			Help: "Catalog lookups served to the planner by kind and result.",
		}, []string{"kind", "result"}),
		scheduleOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "schedule_operations_total",
			Help: "Schedule operations by type and outcome.",
		}, []string{"operation", "outcome"}),
		prefetchJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "catalog_prefetch_jobs_total",
			Help: "Finished catalog prefetch jobs by result.",
		}, []string{"result"}),
		queues: newQueueCollector(),
	}

	m.registry.MustRegister(
		m.httpDuration, m.cacheLatency, m.cacheLookups, m.dbDuration,
		m.catalogDuration, m.catalogTotal, m.catalogLookups, m.scheduleOps, m.prefetchJobs,
		m.queues,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus text format. A nil service
// answers 503.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
	m.requests.add(duration)
}

// RecordCacheOperation records one catalog cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("get").Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHits, 1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	atomic.AddUint64(&m.cacheMisses, 1)
}

func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("set").Observe(duration.Seconds())
}

func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.dbQueries.add(duration)
}

// ObserveCatalogRequest records one upstream catalog request. Status 0 marks a
// transport failure.
func (m *MetricsService) ObserveCatalogRequest(source, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.catalogDuration.WithLabelValues(source, endpoint).Observe(duration.Seconds())
	m.catalogTotal.WithLabelValues(source, endpoint, strconv.Itoa(status)).Inc()
	atomic.AddUint64(&m.catalogRequests, 1)
	if status == 0 || status >= http.StatusInternalServerError {
		atomic.AddUint64(&m.catalogFailures, 1)
	}
}

func (m *MetricsService) RecordCatalogLookup(kind, result string) {
	if m == nil {
		return
	}
	m.catalogLookups.WithLabelValues(kind, result).Inc()
}

func (m *MetricsService) RecordScheduleOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.scheduleOps.WithLabelValues(operation, outcome).Inc()
	atomic.AddUint64(&m.scheduleOpCount, 1)
}

func (m *MetricsService) RecordPrefetch(result string) {
	if m == nil {
		return
	}
	m.prefetchJobs.WithLabelValues(result).Inc()
}

// TrackQueue exports a job queue's counters under its name. Tracking the same
// name again replaces the previous source.
func (m *MetricsService) TrackQueue(name string, stats func() jobs.Stats) {
	if m == nil || stats == nil {
		return
	}
	m.queues.track(name, stats)
}

// Snapshot returns aggregated metrics for the summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHits)
	misses := atomic.LoadUint64(&m.cacheMisses)
	requests, avgRequest := m.requests.load()
	queries, avgQuery := m.dbQueries.load()

	out := models.SystemMetrics{
		Cache: models.CacheMetrics{Hits: hits, Misses: misses},
		HTTP:  models.LatencyMetrics{Count: requests, AverageMs: avgRequest},
		DB:    models.LatencyMetrics{Count: queries, AverageMs: avgQuery},
		Catalog: models.CatalogMetrics{
			Requests: atomic.LoadUint64(&m.catalogRequests),
			Failures: atomic.LoadUint64(&m.catalogFailures),
		},
		ScheduleOperations: atomic.LoadUint64(&m.scheduleOpCount),
		Queues:             m.queues.snapshot(),
		Goroutines:         runtime.NumGoroutine(),
		GeneratedAt:        time.Now().UTC(),
	}
	if total := hits + misses; total > 0 {
		out.Cache.HitRatio = float64(hits) / float64(total)
	}
	return out
}

// queueCollector reads queue stats at scrape time.
type queueCollector struct {
	mu      sync.RWMutex
	sources map[string]func() jobs.Stats

	pending  *prometheus.Desc
	outcomes *prometheus.Desc
}

func newQueueCollector() *queueCollector {
	return &queueCollector{
		sources: map[string]func() jobs.Stats{},
		pending: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "queue", "pending_jobs"),
			"Distinct job keys queued, running or waiting to retry.",
			[]string{"queue"}, nil),
		outcomes: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "queue", "jobs_total"),
			"Queue job outcomes since start.",
			[]string{"queue", "outcome"}, nil),
	}
}

func (c *queueCollector) track(name string, stats func() jobs.Stats) {
	c.mu.Lock()
	c.sources[name] = stats
	c.mu.Unlock()
}

func (c *queueCollector) snapshot() map[string]jobs.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.sources) == 0 {
		return nil
	}
	out := make(map[string]jobs.Stats, len(c.sources))
	for name, stats := range c.sources {
		out[name] = stats()
	}
	return out
}

func (c *queueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pending
	ch <- c.outcomes
}

func (c *queueCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := snap[name]
		ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(s.Pending), name)
		for outcome, v := range map[string]uint64{
			"succeeded": s.Succeeded,
			"retried":   s.Retried,
			"failed":    s.Failed,
			"dropped":   s.Dropped,
		} {
			ch <- prometheus.MustNewConstMetric(c.outcomes, prometheus.CounterValue, float64(v), name, outcome)
		}
	}
}
