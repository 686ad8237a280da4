package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the signal pipeline.
type Metrics struct {
	SignalsTotal       *prometheus.CounterVec // labels: signal_type
	FailuresTotal      *prometheus.CounterVec // labels: kind
	NotificationsSent  prometheus.Counter
	NotificationsMuted prometheus.Counter
	AIRequestDur       prometheus.Histogram
	AIRetriesTotal     prometheus.Counter
	AIUnavailableTotal prometheus.Counter
	CycleDur           prometheus.Histogram
	InstrumentsPerRun  prometheus.Gauge
}

// NewMetrics registers and returns all pipeline metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigbot_signals_total",
			Help: "Signals classified, by signal type",
		}, []string{"signal_type"}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigbot_failures_total",
			Help: "Per-instrument analysis failures, by error kind",
		}, []string{"kind"}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigbot_notifications_sent_total",
			Help: "Notifications that passed the gate and were delivered",
		}),
		NotificationsMuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigbot_notifications_muted_total",
			Help: "Notifications suppressed by the dedup gate",
		}),
		AIRequestDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sigbot_ai_request_duration_seconds",
			Help:    "AI confirmation request latency",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		AIRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigbot_ai_retries_total",
			Help: "AI confirmation retry attempts",
		}),
		AIUnavailableTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigbot_ai_unavailable_total",
			Help: "AI confirmations that fell back to the caution sentinel",
		}),
		CycleDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sigbot_cycle_duration_seconds",
			Help:    "Wall time of one full analysis cycle",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		InstrumentsPerRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sigbot_instruments_per_run",
			Help: "Universe size of the most recent cycle",
		}),
	}

	prometheus.MustRegister(
		m.SignalsTotal,
		m.FailuresTotal,
		m.NotificationsSent,
		m.NotificationsMuted,
		m.AIRequestDur,
		m.AIRetriesTotal,
		m.AIUnavailableTotal,
		m.CycleDur,
		m.InstrumentsPerRun,
	)
	return m
}
