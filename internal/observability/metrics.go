package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_http_requests_total",
			Help: "Total number of HTTP requests processed by the insights service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	snapshotLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_snapshot_loads_total",
			Help: "Snapshot loads by outcome.",
		},
		[]string{"status"},
	)
	snapshotLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insights_snapshot_load_duration_seconds",
			Help:    "Time to fetch and normalize a snapshot.",
			Buckets: prometheus.DefBuckets,
		},
	)
	snapshotRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insights_snapshot_rows",
			Help: "Rows per entity in the current snapshot.",
		},
		[]string{"entity"},
	)
	malformedRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_malformed_rows_total",
			Help: "Rows degraded or dropped during normalization.",
		},
		[]string{"table", "field", "reason"},
	)
	sourceCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_source_cache_total",
			Help: "Raw table cache lookups by result.",
		},
		[]string{"result"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insights_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		snapshotLoadsTotal,
		snapshotLoadDuration,
		snapshotRows,
		malformedRowsTotal,
		sourceCacheTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveSnapshotLoad records one load attempt. status is "ok", "schema_error" or "error".
func ObserveSnapshotLoad(status string, took time.Duration) {
	snapshotLoadsTotal.WithLabelValues(status).Inc()
	snapshotLoadDuration.Observe(took.Seconds())
}

func SetSnapshotRows(counts map[string]int) {
	for entity, n := range counts {
		snapshotRows.WithLabelValues(entity).Set(float64(n))
	}
}

func AddMalformedRows(table, field, reason string, rows int) {
	malformedRowsTotal.WithLabelValues(table, field, reason).Add(float64(rows))
}

// IncSourceCache counts a cache lookup. result is "hit", "miss" or "error".
func IncSourceCache(result string) {
	sourceCacheTotal.WithLabelValues(result).Inc()
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
