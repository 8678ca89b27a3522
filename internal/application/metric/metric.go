package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request handling time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	sessionActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "room_session_active_connections",
			Help: "Number of live room session connections",
		},
	)

	roomBroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_broadcasts_total",
			Help: "Total number of room broadcast fan-outs",
		},
		[]string{"type"},
	)
)

// RecordHTTPMetrics records counters and latency for one HTTP request.
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func IncrementSessionConnections() { sessionActiveConnections.Inc() }
func DecrementSessionConnections() { sessionActiveConnections.Dec() }

func RecordRoomBroadcast(messageType string) {
	roomBroadcastsTotal.WithLabelValues(messageType).Inc()
}
