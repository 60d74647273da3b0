package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use through a nil pointer; every method becomes a no-op.
type Metrics struct {
	reg       *prometheus.Registry
	checkouts *prometheus.CounterVec
	gateway   *prometheus.CounterVec
	callbacks *prometheus.CounterVec
	reconcile *prometheus.CounterVec
	txLatency prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bubblebliss",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		gateway: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bubblebliss",
			Name:      "gateway_calls_total",
			Help:      "Calls to the payment provider by operation and outcome.",
		}, []string{"op", "outcome"}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bubblebliss",
			Name:      "payment_callbacks_total",
			Help:      "Inbound payment callbacks by outcome.",
		}, []string{"outcome"}),
		reconcile: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bubblebliss",
			Name:      "reconcile_sessions_total",
			Help:      "Orphaned payment sessions handled by the sweep, by result.",
		}, []string{"result"}),
		txLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bubblebliss",
			Name:      "order_tx_duration_ms",
			Help:      "Order persistence transaction latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000, 30000},
		}),
	}
	reg.MustRegister(
		m.checkouts, m.gateway, m.callbacks, m.reconcile, m.txLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Checkout(outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) GatewayCall(op, outcome string) {
	if m == nil {
		return
	}
	m.gateway.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Callback(outcome string) {
	if m == nil {
		return
	}
	m.callbacks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Reconciled(result string) {
	if m == nil {
		return
	}
	m.reconcile.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveOrderTx(ms float64) {
	if m == nil {
		return
	}
	m.txLatency.Observe(ms)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
