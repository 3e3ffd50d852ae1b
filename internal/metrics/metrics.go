// Package metrics provides Prometheus metrics for the FileHub server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filehub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filehub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Directory load metrics
	scanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filehub_scan_duration_seconds",
			Help:    "Time to list, sort and summarize a directory",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	scanEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filehub_scan_entries",
			Help:    "Number of entries returned per directory scan",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	staleResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filehub_stale_results_discarded_total",
			Help: "Directory loads discarded because a newer load was submitted",
		},
	)

	loadQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filehub_load_queue_depth",
			Help: "Directory loads waiting for the background worker",
		},
	)

	// File operation metrics
	fileOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filehub_file_operations_total",
			Help: "Total number of file operations",
		},
		[]string{"op", "status"},
	)

	bytesCopied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filehub_bytes_copied_total",
			Help: "Total bytes written by copy and move operations",
		},
	)

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filehub_ws_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordScan records one completed directory load.
func RecordScan(status string, entries int, duration time.Duration) {
	scanDuration.WithLabelValues(status).Observe(duration.Seconds())
	scanEntries.Observe(float64(entries))
}

// RecordStaleResult records a load result dropped before delivery.
func RecordStaleResult() {
	staleResultsTotal.Inc()
}

// SetLoadQueueDepth sets the number of pending directory loads.
func SetLoadQueueDepth(n int) {
	loadQueueDepth.Set(float64(n))
}

// RecordFileOp records a file operation outcome.
func RecordFileOp(op string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	fileOpsTotal.WithLabelValues(op, status).Inc()
}

// RecordBytesCopied records bytes written by a copy.
func RecordBytesCopied(n int64) {
	bytesCopied.Add(float64(n))
}

// SetWSConnectionsActive sets the active WebSocket connection count.
func SetWSConnectionsActive(count int) {
	wsConnectionsActive.Set(float64(count))
}

// Middleware returns gin middleware that records request metrics. The
// route template is used as the path label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
