package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the scheduling
// pipeline. Every observer is nil-safe so services can run without metrics
// wired, e.g. in tests.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	coverageAssigned   prometheus.Counter
	coveragePending    prometheus.Counter
	coverageConfirmed  prometheus.Counter
	conflictsDetected  prometheus.Counter
	transfersApplied   prometheus.Counter
	transfersDeclined  prometheus.Counter
	conflictsOverriden prometheus.Counter
	sessionsGenerated  prometheus.Counter
	undosPerformed     prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	coverageAssigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverage_assignments_total",
		Help: "Total coverage slots filled by the allocator",
	})

	coveragePending := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverage_pending_total",
		Help: "Total coverage slots left unfilled by the allocator",
	})

	coverageConfirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverage_confirmed_total",
		Help: "Total coverage assignments persisted on confirmation",
	})

	conflictsDetected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_conflicts_detected_total",
		Help: "Total conflicts detected during transfer checks",
	})

	transfersApplied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_transfers_applied_total",
		Help: "Total session transfers applied",
	})

	transfersDeclined := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_transfers_declined_total",
		Help: "Total session transfers declined after conflict review",
	})

	conflictsOverriden := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_conflicts_overridden_total",
		Help: "Total conflicts overridden by confirmed transfers",
	})

	sessionsGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_sessions_generated_total",
		Help: "Total sessions created by class regeneration",
	})

	undosPerformed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_undos_total",
		Help: "Total regenerations rolled back via undo",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal, cacheHitRatio, cacheHits, cacheMisses,
		coverageAssigned, coveragePending, coverageConfirmed,
		conflictsDetected, transfersApplied, transfersDeclined, conflictsOverriden,
		sessionsGenerated, undosPerformed, goroutines,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheHitRatio:      cacheHitRatio,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		coverageAssigned:   coverageAssigned,
		coveragePending:    coveragePending,
		coverageConfirmed:  coverageConfirmed,
		conflictsDetected:  conflictsDetected,
		transfersApplied:   transfersApplied,
		transfersDeclined:  transfersDeclined,
		conflictsOverriden: conflictsOverriden,
		sessionsGenerated:  sessionsGenerated,
		undosPerformed:     undosPerformed,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request duration and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup outcome and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCoveragePass records the outcome of one allocation pass.
func (m *MetricsService) ObserveCoveragePass(assigned, pending int) {
	if m == nil {
		return
	}
	m.coverageAssigned.Add(float64(assigned))
	m.coveragePending.Add(float64(pending))
}

// ObserveCoverageConfirm records how many assignments a confirmation persisted.
func (m *MetricsService) ObserveCoverageConfirm(count int) {
	if m == nil {
		return
	}
	m.coverageConfirmed.Add(float64(count))
}

// ObserveConflictsDetected records conflicts found by a transfer check.
func (m *MetricsService) ObserveConflictsDetected(count int) {
	if m == nil || count == 0 {
		return
	}
	m.conflictsDetected.Add(float64(count))
}

// ObserveTransferApplied records an applied transfer and any overridden conflicts.
func (m *MetricsService) ObserveTransferApplied(overridden int) {
	if m == nil {
		return
	}
	m.transfersApplied.Inc()
	if overridden > 0 {
		m.conflictsOverriden.Add(float64(overridden))
	}
}

// ObserveTransferDeclined records a declined transfer.
func (m *MetricsService) ObserveTransferDeclined() {
	if m == nil {
		return
	}
	m.transfersDeclined.Inc()
}

// ObserveRegeneration records sessions created by a class rebuild.
func (m *MetricsService) ObserveRegeneration(placed int) {
	if m == nil {
		return
	}
	m.sessionsGenerated.Add(float64(placed))
}

// ObserveUndo records a successful rollback.
func (m *MetricsService) ObserveUndo() {
	if m == nil {
		return
	}
	m.undosPerformed.Inc()
}
