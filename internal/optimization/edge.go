package optimization

import (
	"context"

	"github.com/copyleftdev/nlsearch/internal/geometry"
	"github.com/copyleftdev/nlsearch/internal/objective"
)

const componentEdge = "edge-search"

// EdgeSearch is coordinate descent driven by Fibonacci line searches. The
// first pass holds x and searches y, every following pass flips the held
// axis, until a pass moves the iterate by no more than the tolerance.
type EdgeSearch struct {
	settings Settings
	opts     options
}

// NewEdgeSearch creates an edge search minimizer.
func NewEdgeSearch(settings Settings, opts ...Option) (*EdgeSearch, error) {
	if err := settings.Validate(MethodEdge); err != nil {
		return nil, err.(*Error).WithOperation("new minimizer").WithComponent(componentEdge)
	}
	return &EdgeSearch{settings: settings, opts: buildOptions(opts)}, nil
}

// Method returns MethodEdge.
func (es *EdgeSearch) Method() Method { return MethodEdge }

// Minimize runs edge search on obj from start.
func (es *EdgeSearch) Minimize(ctx context.Context, obj objective.Objective, start geometry.Point) (*Result, error) {
	if err := checkInput(componentEdge, MethodEdge, es.settings, obj, start, es.opts.metrics); err != nil {
		return nil, err
	}

	r := newRun(componentEdge, MethodEdge, obj, start, es.settings.MaxIterations, es.opts)
	current := start
	held := geometry.X
	for i := 1; i <= es.settings.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return r.interrupted(err)
		}
		r.iterate(i)

		ls, lerr := newLineSearch(obj, es.settings.Steps, held, current)
		if lerr != nil {
			return r.fail(outcomeInvalid, lerr)
		}
		candidate, err := ls.run()
		r.result.Evaluations += ls.evaluations
		if err != nil {
			e, _ := IsOptimizationError(err)
			return r.fail(outcomeMaxIterations, e)
		}

		if current.InRange(candidate, es.settings.Tolerance) {
			return r.converged(i, candidate)
		}
		held = held.Other()
		current = candidate
		r.record(i, current, r.value(current))
	}
	return r.exhausted(es.settings.MaxIterations)
}

// SearchEdges runs edge search with the default iteration cap and returns
// only the minimum.
func SearchEdges(ctx context.Context, obj objective.Objective, start geometry.Point, tolerance float64, steps int) (geometry.Point, error) {
	es, err := NewEdgeSearch(Settings{
		Tolerance:     tolerance,
		Steps:         steps,
		MaxIterations: DefaultMaxIterations,
	})
	if err != nil {
		return geometry.Point{}, err
	}
	res, err := es.Minimize(ctx, obj, start)
	if err != nil {
		return geometry.Point{}, err
	}
	return res.Minimum, nil
}
