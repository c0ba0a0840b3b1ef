package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var HttpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HttpRateLimitRejectionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "http_rate_limit_rejections_total",
		Help: "Total number of HTTP requests rejected due to rate limiting",
	},
)

var ChannelAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broadcast_channel_attempts_total",
		Help: "Per-recipient channel attempts by outcome",
	},
	[]string{"channel", "status"},
)

var DispatchDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "broadcast_dispatch_duration_seconds",
		Help:    "Wall time of a full broadcast fan-out",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	},
)

var DispatchTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broadcast_dispatch_total",
		Help: "Dispatch attempts by result",
	},
	[]string{"result"},
)

var SweeperRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broadcast_sweeper_runs_total",
		Help: "Broadcasts handled by the sweeper by kind and result",
	},
	[]string{"kind", "result"},
)

var (
	apiOnce    sync.Once
	workerOnce sync.Once
)

// InitAPIMetrics registers the HTTP collectors
func InitAPIMetrics() {
	apiOnce.Do(func() {
		prometheus.MustRegister(HttpRequestsTotal)
		prometheus.MustRegister(HttpRequestDuration)
		prometheus.MustRegister(HttpRateLimitRejectionsTotal)
	})
}

// InitWorkerMetrics registers the dispatch collectors
func InitWorkerMetrics() {
	workerOnce.Do(func() {
		prometheus.MustRegister(ChannelAttemptsTotal)
		prometheus.MustRegister(DispatchDuration)
		prometheus.MustRegister(DispatchTotal)
		prometheus.MustRegister(SweeperRunsTotal)
	})
}
