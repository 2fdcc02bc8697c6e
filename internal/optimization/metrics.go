package optimization

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes used as the "outcome" label.
const (
	outcomeConverged     = "converged"
	outcomeMaxIterations = "max_iterations"
	outcomeDegenerate    = "degenerate_gradient"
	outcomeCancelled     = "cancelled"
	outcomeInvalid       = "invalid_parameter"
)

// Metrics exposes Prometheus collectors for minimizer runs. A nil *Metrics
// records nothing.
type Metrics struct {
	runs        *prometheus.CounterVec
	iterations  *prometheus.HistogramVec
	evaluations *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. Collectors
// that are already registered are reused, so calling NewMetrics twice with
// the same registerer is safe. A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlsearch",
			Name:      "runs_total",
			Help:      "Number of minimizer runs by method and outcome.",
		}, []string{"method", "outcome"}),
		iterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nlsearch",
			Name:      "iterations",
			Help:      "Outer iterations performed per minimizer run.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"method"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlsearch",
			Name:      "objective_evaluations_total",
			Help:      "Objective value and gradient evaluations by method.",
		}, []string{"method"}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.runs, err = register(reg, m.runs); err != nil {
		return nil, err
	}
	if m.iterations, err = register(reg, m.iterations); err != nil {
		return nil, err
	}
	if m.evaluations, err = register(reg, m.evaluations); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(method Method, outcome string, iterations, evaluations int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(method), outcome).Inc()
	if outcome == outcomeInvalid {
		return
	}
	m.iterations.WithLabelValues(string(method)).Observe(float64(iterations))
	m.evaluations.WithLabelValues(string(method)).Add(float64(evaluations))
}
