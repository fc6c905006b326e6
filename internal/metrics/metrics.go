package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	gatewayCalls   *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec

	reviewDecisions *prometheus.CounterVec
	transformRuns   *prometheus.CounterVec

	llmCalls   *prometheus.CounterVec
	llmLatency *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	warehouseUp    prometheus.Gauge
	reviewSessions prometheus.Gauge
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		gatewayCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steward",
			Name:      "gateway_calls_total",
			Help:      "Warehouse gateway calls by operation and result.",
		}, []string{"op", "result"}),
		gatewayLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "steward",
			Name:      "gateway_latency_seconds",
			Help:      "Latency distribution for warehouse gateway calls.",
			Buckets: []float64{
				0.01, 0.05, 0.1, 0.25, 0.5,
				1, 2.5, 5, 10, 30,
			},
		}, []string{"op"}),
		reviewDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steward",
			Name:      "review_decisions_total",
			Help:      "Steward match decisions by decision and result.",
		}, []string{"decision", "result"}),
		transformRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steward",
			Name:      "transform_runs_total",
			Help:      "Transformation runs by result.",
		}, []string{"result"}),
		llmCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steward",
			Name:      "llm_calls_total",
			Help:      "Language model completions by provider and result.",
		}, []string{"provider", "result"}),
		llmLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "steward",
			Name:      "llm_latency_seconds",
			Help:      "Language model completion latency by provider.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"provider"}),
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steward",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "method", "status"}),
		httpLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "steward",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		warehouseUp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "steward",
			Name:      "warehouse_up",
			Help:      "Whether the last connectivity check succeeded (1/0).",
		}),
		reviewSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "steward",
			Name:      "review_sessions",
			Help:      "Number of live review sessions.",
		}),
	}
})

func get() *metrics {
	return metricsSingleton()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ObserveGateway(op string, started time.Time, err error) {
	m := get()
	m.gatewayCalls.WithLabelValues(op, result(err)).Inc()
	m.gatewayLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func ObserveDecision(decision string, err error) {
	get().reviewDecisions.WithLabelValues(decision, result(err)).Inc()
}

func ObserveTransform(err error) {
	get().transformRuns.WithLabelValues(result(err)).Inc()
}

func ObserveLLM(provider string, started time.Time, err error) {
	m := get()
	m.llmCalls.WithLabelValues(provider, result(err)).Inc()
	m.llmLatency.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}

func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	m := get()
	m.httpRequests.WithLabelValues(route, method, statusLabel(status)).Inc()
	m.httpLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func SetWarehouseUp(up bool) {
	if up {
		get().warehouseUp.Set(1)
		return
	}
	get().warehouseUp.Set(0)
}

func SetReviewSessions(n int) {
	get().reviewSessions.Set(float64(n))
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
