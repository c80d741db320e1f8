package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal  *prometheus.CounterVec
	edgeScore     *prometheus.GaugeVec
	trainingTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finedge_signals_generated_total",
				Help: "Total number of signals generated",
			},
			[]string{"symbol", "class"},
		),
		edgeScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finedge_edge_score",
				Help: "Latest edge score for a symbol",
			},
			[]string{"symbol"},
		),
		trainingTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finedge_training_runs_total",
				Help: "Total number of model training runs",
			},
			[]string{"symbol", "result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finedge_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finedge_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSignal counts a generated signal by class.
func (r *Recorder) RecordSignal(symbol, class string) {
	r.signalsTotal.WithLabelValues(symbol, class).Inc()
}

// RecordEdgeScore publishes the latest edge score for a symbol.
func (r *Recorder) RecordEdgeScore(symbol string, score float64) {
	r.edgeScore.WithLabelValues(symbol).Set(score)
}

// RecordTrainingRun counts a training run by outcome.
func (r *Recorder) RecordTrainingRun(symbol, result string) {
	r.trainingTotal.WithLabelValues(symbol, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records the duration of an operation.
func (r *Recorder) RecordLatency(operation string, seconds float64) {
	r.latency.WithLabelValues(operation).Observe(seconds)
}
