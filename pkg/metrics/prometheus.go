package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	snapshots     *prometheus.CounterVec
	optimizations *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		snapshots: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradetuner_snapshots_total",
				Help: "Market snapshots produced, by pair and recommendation",
			},
			[]string{"pair", "recommended"},
		),
		optimizations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradetuner_optimizations_total",
				Help: "Parameter optimizations performed, by pair and strategy",
			},
			[]string{"pair", "strategy"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradetuner_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradetuner_last_price",
				Help: "Last recorded price for a pair",
			},
			[]string{"pair"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradetuner_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSnapshot records one produced market snapshot.
func (r *Recorder) RecordSnapshot(pair string, recommended bool) {
	label := "false"
	if recommended {
		label = "true"
	}
	r.snapshots.WithLabelValues(pair, label).Inc()
}

// RecordOptimization records one optimization decision.
func (r *Recorder) RecordOptimization(pair, strategy string) {
	r.optimizations.WithLabelValues(pair, strategy).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a pair.
func (r *Recorder) RecordLastPrice(pair string, price float64) {
	r.lastPrice.WithLabelValues(pair).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
