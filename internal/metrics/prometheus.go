package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AI provider metrics
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "midas_provider_calls_total",
			Help: "Total number of AI provider calls",
		},
		[]string{"provider", "status"}, // status: success|error
	)

	ProviderFailovers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "midas_provider_failovers_total",
			Help: "Total number of AI provider failovers",
		},
		[]string{"from", "to"},
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "midas_provider_latency_seconds",
			Help:    "AI provider call latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	// Strategy metrics
	StrategiesBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "midas_strategies_built_total",
			Help: "Total number of strategies synthesized",
		},
		[]string{"source"}, // source: ai|algorithm-fallback
	)

	// Portfolio metrics
	AggregationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "midas_aggregation_runs_total",
			Help: "Total number of portfolio aggregation runs",
		},
		[]string{"status"}, // status: success|partial|error
	)

	AggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "midas_aggregation_duration_seconds",
			Help:    "Portfolio aggregation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// Broker metrics
	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "midas_orders_placed_total",
			Help: "Total number of orders submitted to the broker",
		},
		[]string{"direction", "status"}, // status: accepted|rejected
	)
)

// Register registers all metrics with Prometheus
func Register() {
	prometheus.MustRegister(
		ProviderCalls,
		ProviderFailovers,
		ProviderLatency,
		StrategiesBuilt,
		AggregationRuns,
		AggregationDuration,
		OrdersPlaced,
	)
}

// Handler returns the HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts the metrics HTTP server on the given address
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}
