package providers

import (
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncSubmissions(result string)
	IncDecisions(action string)
	IncBroadcastFailures()
	IncLedgerFailures()
	IncPromotions()
	ObserveSweep(duration time.Duration, deleted int)
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	submissionsTotal    *prometheus.CounterVec
	decisionsTotal      *prometheus.CounterVec
	broadcastFailures   prometheus.Counter
	ledgerFailures      prometheus.Counter
	promotionsTotal     prometheus.Counter
	sweepDuration       prometheus.Histogram
	sweepDeleted        prometheus.Counter
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncSubmissions(result string) {
	m.submissionsTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) IncDecisions(action string) {
	m.decisionsTotal.WithLabelValues(action).Inc()
}

func (m *MetricsProvider) IncBroadcastFailures() {
	m.broadcastFailures.Inc()
}

func (m *MetricsProvider) IncLedgerFailures() {
	m.ledgerFailures.Inc()
}

func (m *MetricsProvider) IncPromotions() {
	m.promotionsTotal.Inc()
}

func (m *MetricsProvider) ObserveSweep(duration time.Duration, deleted int) {
	m.sweepDuration.Observe(duration.Seconds())
	m.sweepDeleted.Add(float64(deleted))
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, queue *models.PendingQueue) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_http_requests_total",
			Help: "Total number of operator HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vouch_http_request_duration_seconds",
			Help:    "Operator HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_asset_cache_hits_total",
			Help: "Watermark asset cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_asset_cache_misses_total",
			Help: "Watermark asset cache misses",
		}),

		submissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_submissions_total",
			Help: "Submissions by outcome (pending, failed, rejected)",
		}, []string{"result"}),

		decisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_decisions_total",
			Help: "Moderator decisions by action",
		}, []string{"action"}),

		broadcastFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_broadcast_failures_total",
			Help: "Approved vouches that could not be published",
		}),

		ledgerFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_ledger_failures_total",
			Help: "Ledger updates that failed after a broadcast",
		}),

		promotionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_promotions_total",
			Help: "Users granted privileged group membership",
		}),

		sweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vouch_sweep_duration_seconds",
			Help:    "Duration of activity ledger sweeps",
			Buckets: prometheus.DefBuckets,
		}),

		sweepDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_sweep_deleted_records_total",
			Help: "Activity records reclaimed by the sweep",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vouch_store_write_duration_seconds",
			Help:    "Duration of activity record read-modify-write calls",
			Buckets: prometheus.DefBuckets,
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "vouch_pending_submissions",
		Help: "Submissions waiting for a moderator decision",
	}, func() float64 {
		return float64(queue.Len())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncSubmissions(_ string)                          {}
func (n *noopMetrics) IncDecisions(_ string)                            {}
func (n *noopMetrics) IncBroadcastFailures()                            {}
func (n *noopMetrics) IncLedgerFailures()                               {}
func (n *noopMetrics) IncPromotions()                                   {}
func (n *noopMetrics) ObserveSweep(_ time.Duration, _ int)              {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
