package flow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus-compatible metrics for node execution.
//
// Metrics exposed (namespace "nodecanvas"):
//
//  1. node_executions_total (counter): completed executions.
//     Labels: kind, status (success/error/stale).
//
//  2. node_latency_ms (histogram): execution duration in milliseconds.
//     Labels: kind, status. Buckets 1ms to 60s, sized for network-bound
//     collaborator calls.
//
//  3. inflight_nodes (gauge): nodes currently executing.
//
//  4. connect_rejections_total (counter): edges refused by validation.
//     Labels: reason (error code from the rejection).
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := flow.NewMetrics(registry)
//	exec := flow.NewExecutor(wf, services, flow.ExecutorOptions{Metrics: metrics})
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
type Metrics struct {
	executions        *prometheus.CounterVec
	latency           *prometheus.HistogramVec
	inflight          prometheus.Gauge
	connectRejections *prometheus.CounterVec
}

// NewMetrics creates and registers all execution metrics with the given
// registry (prometheus.DefaultRegisterer when nil).
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		executions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodecanvas",
			Name:      "node_executions_total",
			Help:      "Completed node executions by kind and outcome",
		}, []string{"kind", "status"}),

		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nodecanvas",
			Name:      "node_latency_ms",
			Help:      "Node execution duration in milliseconds",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 15000, 60000},
		}, []string{"kind", "status"}),

		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nodecanvas",
			Name:      "inflight_nodes",
			Help:      "Nodes currently executing",
		}),

		connectRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodecanvas",
			Name:      "connect_rejections_total",
			Help:      "Edges refused by connection validation",
		}, []string{"reason"}),
	}
}

// RecordExecution records one completed execution.
// Status is "success", "error", or "stale" (commit dropped as superseded).
func (m *Metrics) RecordExecution(kind Kind, status string, latency time.Duration) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(string(kind), status).Inc()
	m.latency.WithLabelValues(string(kind), status).Observe(float64(latency.Milliseconds()))
}

// ExecutionStarted increments the in-flight gauge.
func (m *Metrics) ExecutionStarted() {
	if m == nil {
		return
	}
	m.inflight.Inc()
}

// ExecutionFinished decrements the in-flight gauge.
func (m *Metrics) ExecutionFinished() {
	if m == nil {
		return
	}
	m.inflight.Dec()
}

// RecordConnectRejection counts a refused edge by rejection reason.
func (m *Metrics) RecordConnectRejection(reason string) {
	if m == nil {
		return
	}
	m.connectRejections.WithLabelValues(reason).Inc()
}
