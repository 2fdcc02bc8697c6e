package optimization

import (
	"context"

	"github.com/copyleftdev/nlsearch/internal/geometry"
	"github.com/copyleftdev/nlsearch/internal/objective"
)

const componentGradient = "gradient-descent"

// GradientDescent walks along the negative normalized gradient. Every step
// has the same length, so the step is halved whenever it would not lower the
// objective; the search converges once the unclamped step is no longer than
// the tolerance. Iterates are clamped onto the objective's domain.
type GradientDescent struct {
	settings Settings
	opts     options
}

// NewGradientDescent creates a gradient descent minimizer.
func NewGradientDescent(settings Settings, opts ...Option) (*GradientDescent, error) {
	if err := settings.Validate(MethodGradient); err != nil {
		return nil, err.(*Error).WithOperation("new minimizer").WithComponent(componentGradient)
	}
	return &GradientDescent{settings: settings, opts: buildOptions(opts)}, nil
}

// Method returns MethodGradient.
func (gd *GradientDescent) Method() Method { return MethodGradient }

// Minimize runs gradient descent on obj from start.
func (gd *GradientDescent) Minimize(ctx context.Context, obj objective.Objective, start geometry.Point) (*Result, error) {
	if err := checkInput(componentGradient, MethodGradient, gd.settings, obj, start, gd.opts.metrics); err != nil {
		return nil, err
	}

	r := newRun(componentGradient, MethodGradient, obj, start, gd.settings.MaxIterations, gd.opts)
	domain := obj.Domain()
	tol := gd.settings.Tolerance
	step := gd.settings.StepFactor

	current := start
	currentValue := r.result.Value
	for i := 1; i <= gd.settings.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return r.interrupted(err)
		}
		r.iterate(i)

		dir, ok := r.gradient(current).Normalize()
		if !ok {
			return r.fail(outcomeDegenerate,
				NewErrorf(ErrDegenerateGradient, "gradient has no direction").WithPoint(current))
		}
		// Convergence is judged on the full step. A step shortened by the
		// domain boundary says nothing about the slope along the edge.
		proposed := current.Translate(dir.Negate(), step)
		next := domain.Clamp(proposed)

		if current.InRange(proposed, tol) {
			return r.converged(i, next)
		}

		nextValue := r.value(next)
		if nextValue >= currentValue {
			step /= 2
			continue
		}
		current, currentValue = next, nextValue
		r.record(i, current, currentValue)
	}
	return r.exhausted(gd.settings.MaxIterations)
}

// Descend runs gradient descent with the default iteration cap and returns
// only the minimum.
func Descend(ctx context.Context, obj objective.Objective, start geometry.Point, tolerance, stepFactor float64) (geometry.Point, error) {
	gd, err := NewGradientDescent(Settings{
		Tolerance:     tolerance,
		StepFactor:    stepFactor,
		MaxIterations: DefaultMaxIterations,
	})
	if err != nil {
		return geometry.Point{}, err
	}
	res, err := gd.Minimize(ctx, obj, start)
	if err != nil {
		return geometry.Point{}, err
	}
	return res.Minimum, nil
}
