// Package metrics exposes Prometheus collectors for validation and compilation
// runs. Collectors live on a caller-supplied registry so tests and the CLI
// never share global state.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blueprint"

// Outcome label values.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder holds the collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	validations      *prometheus.CounterVec
	validationErrors prometheus.Counter
	estimatedCost    prometheus.Histogram
	compilations     *prometheus.CounterVec
	compileDuration  prometheus.Histogram
	planLevels       prometheus.Histogram
	planNodes        prometheus.Histogram
}

// NewRecorder creates and registers the collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total workflow validations by outcome",
			},
			[]string{"outcome"},
		),
		validationErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_errors_total",
				Help:      "Total validation error messages produced",
			},
		),
		estimatedCost: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "estimated_cost_dollars",
				Help:      "Estimated per-execution workflow cost in USD",
				Buckets:   []float64{0.001, 0.01, 0.1, 1, 10, 100},
			},
		),
		compilations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compilations_total",
				Help:      "Total workflow compilations by outcome",
			},
			[]string{"outcome"},
		),
		compileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compile_duration_seconds",
				Help:      "Wall-clock time spent compiling a workflow",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		planLevels: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_levels",
				Help:      "Number of parallel levels in compiled plans",
				Buckets:   prometheus.LinearBuckets(1, 2, 10),
			},
		),
		planNodes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_nodes",
				Help:      "Number of nodes in compiled plans",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
	}
}

// RecordValidation counts one validation run.
func (r *Recorder) RecordValidation(valid bool, errorCount int, estimatedCost float64) {
	if r == nil {
		return
	}
	outcome := OutcomeValid
	if !valid {
		outcome = OutcomeInvalid
	}
	r.validations.WithLabelValues(outcome).Inc()
	r.validationErrors.Add(float64(errorCount))
	r.estimatedCost.Observe(estimatedCost)
}

// RecordCompilation counts a successful compilation and its plan shape.
func (r *Recorder) RecordCompilation(elapsed time.Duration, levels, nodes int) {
	if r == nil {
		return
	}
	r.compilations.WithLabelValues(OutcomeSuccess).Inc()
	r.compileDuration.Observe(elapsed.Seconds())
	r.planLevels.Observe(float64(levels))
	r.planNodes.Observe(float64(nodes))
}

// RecordCompilationFailure counts a compilation that returned an error.
func (r *Recorder) RecordCompilationFailure(elapsed time.Duration) {
	if r == nil {
		return
	}
	r.compilations.WithLabelValues(OutcomeFailure).Inc()
	r.compileDuration.Observe(elapsed.Seconds())
}
