// Package optimization implements the two-dimensional minimizers: gradient
// descent, the discrete Fibonacci line search and the alternating-axis edge
// search built on top of it.
package optimization

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/copyleftdev/nlsearch/internal/geometry"
	"github.com/copyleftdev/nlsearch/internal/objective"
)

// Minimizer defines the interface for the search strategies
type Minimizer interface {
	// Minimize searches obj for a minimum starting from start. A non-nil
	// Result accompanies ErrMaxIterationsExceeded and context errors so the
	// caller can inspect the last iterate.
	Minimize(ctx context.Context, obj objective.Objective, start geometry.Point) (*Result, error)

	// Method identifies the strategy.
	Method() Method
}

// Method names a search strategy.
type Method string

const (
	// MethodGradient steps along the negative normalized gradient.
	MethodGradient Method = "gradient"
	// MethodEdge alternates Fibonacci line searches across the two axes.
	MethodEdge Method = "edge"
)

// ParseMethod accepts the canonical method names and their long forms.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gradient", "gradient-descent", "gd":
		return MethodGradient, nil
	case "edge", "edge-search":
		return MethodEdge, nil
	default:
		return "", NewErrorf(ErrInvalidParameter, "unknown method %q", s).WithOperation("parse method")
	}
}

const (
	// DefaultTolerance is the convergence distance between consecutive iterates.
	DefaultTolerance = 0.01
	// DefaultStepFactor is the initial gradient descent step length.
	DefaultStepFactor = 0.1
	// DefaultSteps is the Fibonacci line search depth.
	DefaultSteps = 30
	// DefaultMaxIterations caps the outer loop of both minimizers.
	DefaultMaxIterations = 10000
)

// Settings holds the numeric parameters of a search.
type Settings struct {
	// Tolerance is the largest distance between consecutive iterates that
	// still counts as converged.
	Tolerance float64

	// StepFactor is the length of a gradient descent step. Used by
	// MethodGradient only.
	StepFactor float64

	// Steps sets the line search grid to Fibonacci(Steps+2)+1 samples. Used by
	// MethodEdge only.
	Steps int

	// MaxIterations bounds the number of outer iterations.
	MaxIterations int
}

// DefaultSettings returns the parameters the command line uses when nothing
// is configured.
func DefaultSettings() Settings {
	return Settings{
		Tolerance:     DefaultTolerance,
		StepFactor:    DefaultStepFactor,
		Steps:         DefaultSteps,
		MaxIterations: DefaultMaxIterations,
	}
}

// Validate checks the settings that method depends on.
func (s Settings) Validate(method Method) error {
	if !positiveFinite(s.Tolerance) {
		return NewErrorf(ErrInvalidParameter, "tolerance must be positive and finite, got %v", s.Tolerance)
	}
	if s.MaxIterations < 1 {
		return NewErrorf(ErrInvalidParameter, "max iterations must be at least 1, got %d", s.MaxIterations)
	}

	switch method {
	case MethodGradient:
		if !positiveFinite(s.StepFactor) {
			return NewErrorf(ErrInvalidParameter, "step factor must be positive and finite, got %v", s.StepFactor)
		}
	case MethodEdge:
		if err := validateSteps(s.Steps); err != nil {
			return err
		}
	default:
		return NewErrorf(ErrInvalidParameter, "unknown method %q", method)
	}
	return nil
}

func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}

// Evaluation is one accepted iterate.
type Evaluation struct {
	Iteration int
	Point     geometry.Point
	Value     float64
}

// Result contains the outcome of a search.
type Result struct {
	Method    Method
	Objective string

	// Minimum is the returned iterate; on failure it is the last one reached.
	Minimum  geometry.Point
	Value    float64
	Gradient geometry.Vector

	Iterations          int
	Evaluations         int
	GradientEvaluations int
	Converged           bool

	// History lists the start point followed by every accepted iterate.
	History []Evaluation
	Elapsed time.Duration
}

// Option configures a minimizer.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *Metrics
}

// WithLogger sets the logger used to report search progress.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records every run in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the minimizer for method configured with settings.
func New(method Method, settings Settings, opts ...Option) (Minimizer, error) {
	switch method {
	case MethodGradient:
		return NewGradientDescent(settings, opts...)
	case MethodEdge:
		return NewEdgeSearch(settings, opts...)
	default:
		return nil, NewErrorf(ErrInvalidParameter, "unknown method %q", method).WithOperation("new minimizer")
	}
}

// run tracks the bookkeeping shared by both minimizers.
type run struct {
	component string
	method    Method
	obj       objective.Objective
	opts      options
	result    *Result
	began     time.Time
}

func newRun(component string, method Method, obj objective.Objective, start geometry.Point, maxIterations int, opts options) *run {
	r := &run{
		component: component,
		method:    method,
		obj:       obj,
		opts:      opts,
		began:     time.Now(),
		result: &Result{
			Method:    method,
			Objective: obj.Name(),
			Minimum:   start,
			History:   make([]Evaluation, 0, min(maxIterations, 64)+1),
		},
	}
	r.record(0, start, r.value(start))
	opts.logger.Debug("search started",
		zap.String("method", string(method)),
		zap.String("objective", obj.Name()),
		zap.Stringer("start", start),
	)
	return r
}

func (r *run) value(p geometry.Point) float64 {
	r.result.Evaluations++
	return objective.ValueAt(r.obj, p)
}

func (r *run) gradient(p geometry.Point) geometry.Vector {
	r.result.GradientEvaluations++
	return objective.GradientAt(r.obj, p)
}

// iterate marks the start of outer iteration i.
func (r *run) iterate(i int) {
	r.result.Iterations = i
}

func (r *run) record(iteration int, p geometry.Point, value float64) {
	r.result.Minimum = p
	r.result.Value = value
	r.result.History = append(r.result.History, Evaluation{Iteration: iteration, Point: p, Value: value})
}

func (r *run) converged(iteration int, p geometry.Point) (*Result, error) {
	r.record(iteration, p, r.value(p))
	r.result.Converged = true
	r.finish(outcomeConverged)
	r.opts.logger.Info("search converged",
		zap.String("method", string(r.method)),
		zap.String("objective", r.obj.Name()),
		zap.Stringer("minimum", p),
		zap.Float64("value", r.result.Value),
		zap.Int("iterations", iteration),
		zap.Int("evaluations", r.result.Evaluations),
		zap.Duration("elapsed", r.result.Elapsed),
	)
	return r.result, nil
}

func (r *run) fail(outcome string, err *Error) (*Result, error) {
	err = err.WithOperation("minimize").WithComponent(r.component)
	r.finish(outcome)
	r.opts.logger.Warn("search failed",
		zap.String("method", string(r.method)),
		zap.String("objective", r.obj.Name()),
		zap.Stringer("last", r.result.Minimum),
		zap.Int("iterations", r.result.Iterations),
		zap.Error(err),
	)
	return r.result, err
}

func (r *run) exhausted(limit int) (*Result, error) {
	return r.fail(outcomeMaxIterations,
		NewErrorf(ErrMaxIterationsExceeded, "no convergence after %d iterations", limit).WithPoint(r.result.Minimum))
}

func (r *run) interrupted(err error) (*Result, error) {
	return r.fail(outcomeCancelled, WrapError(err, "search interrupted").WithPoint(r.result.Minimum))
}

func (r *run) finish(outcome string) {
	r.result.Gradient = objective.GradientAt(r.obj, r.result.Minimum)
	r.result.Elapsed = time.Since(r.began)
	r.opts.metrics.observe(r.method, outcome, r.result.Iterations, r.result.Evaluations+r.result.GradientEvaluations)
}

// checkInput performs the validation shared by both minimizers before any
// iteration starts.
func checkInput(component string, method Method, settings Settings, obj objective.Objective, start geometry.Point, m *Metrics) error {
	fail := func(err error) error {
		m.observe(method, outcomeInvalid, 0, 0)
		e, ok := IsOptimizationError(err)
		if !ok {
			e = WrapError(err, "invalid input")
		}
		return e.WithOperation("minimize").WithComponent(component)
	}

	if err := settings.Validate(method); err != nil {
		return fail(err)
	}
	if obj == nil {
		return fail(NewErrorf(ErrInvalidParameter, "objective is nil"))
	}
	if d := obj.Domain(); !d.Contains(start) {
		return fail(NewErrorf(ErrInvalidParameter, "start point %v lies outside the domain %v", start, d))
	}
	return nil
}

func (m Method) String() string { return string(m) }
