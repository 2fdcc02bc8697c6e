package optimization

import (
	"github.com/copyleftdev/nlsearch/internal/geometry"
	"github.com/copyleftdev/nlsearch/internal/objective"
)

// MaxFibonacciSteps is the deepest line search supported: Fibonacci(92) is
// the largest Fibonacci number that fits in an int64.
const MaxFibonacciSteps = 90

// Fibonacci returns the nth Fibonacci number with Fibonacci(0) = 0 and
// Fibonacci(1) = 1. Non-positive n yields 0.
func Fibonacci(n int) int {
	if n <= 0 {
		return 0
	}
	prev, cur := 0, 1
	for i := 1; i < n; i++ {
		prev, cur = cur, prev+cur
	}
	return cur
}

func validateSteps(steps int) *Error {
	if steps < 1 || steps > MaxFibonacciSteps {
		return NewErrorf(ErrInvalidParameter, "steps must be in [1, %d], got %d", MaxFibonacciSteps, steps)
	}
	return nil
}

// FibonacciSearch holds the held coordinate of anchor fixed and searches the
// other axis of the objective's domain on a grid of Fibonacci(steps+2)+1
// evenly spaced samples, returning the sample left inside the final bracket.
// An anchor outside the domain is clamped onto it first.
func FibonacciSearch(obj objective.Objective, steps int, held geometry.Axis, anchor geometry.Point) (geometry.Point, error) {
	ls, err := newLineSearch(obj, steps, held, anchor)
	if err != nil {
		return geometry.Point{}, err.WithOperation("fibonacci search").WithComponent("line-search")
	}
	return ls.run()
}

// lineSearch is the state of one discrete Fibonacci search. Index i maps to
// the sample lower + span*i/n on the free axis.
type lineSearch struct {
	obj    objective.Objective
	free   geometry.Axis
	anchor geometry.Point
	lower  float64
	span   float64
	steps  int
	n      int

	// low and high bound the bracket, left and right are the interior samples.
	// left-low == high-right holds throughout.
	low, high   int
	left, right int

	values      map[int]float64
	iterations  int
	evaluations int

	// onShrink, if set, observes the bracket after every iteration.
	onShrink func(low, high int)
}

func newLineSearch(obj objective.Objective, steps int, held geometry.Axis, anchor geometry.Point) (*lineSearch, *Error) {
	if obj == nil {
		return nil, NewErrorf(ErrInvalidParameter, "objective is nil")
	}
	if held != geometry.X && held != geometry.Y {
		return nil, NewErrorf(ErrInvalidParameter, "unknown axis %v", held)
	}
	if err := validateSteps(steps); err != nil {
		return nil, err
	}

	domain := obj.Domain()
	free := held.Other()
	n := Fibonacci(steps + 2)
	left := Fibonacci(steps)
	return &lineSearch{
		obj:    obj,
		free:   free,
		anchor: domain.Clamp(anchor),
		lower:  domain.Lower(free),
		span:   domain.Span(free),
		steps:  steps,
		n:      n,
		low:    0,
		high:   n,
		left:   left,
		right:  n - left,
		values: make(map[int]float64, 2*steps),
	}, nil
}

// point returns sample i of the grid.
func (ls *lineSearch) point(i int) geometry.Point {
	return ls.anchor.With(ls.free, ls.lower+ls.span*float64(i)/float64(ls.n))
}

// value evaluates the objective at sample i, reusing earlier evaluations.
func (ls *lineSearch) value(i int) float64 {
	if v, ok := ls.values[i]; ok {
		return v
	}
	v := objective.ValueAt(ls.obj, ls.point(i))
	ls.values[i] = v
	ls.evaluations++
	return v
}

// shrink discards the side of the bracket behind the worse sample.
func (ls *lineSearch) shrink() {
	if ls.value(ls.left) < ls.value(ls.right) {
		ls.high = ls.right
		ls.right = ls.high - (ls.left - ls.low)
	} else {
		ls.low = ls.left
		ls.left = ls.low + (ls.high - ls.right)
	}
	// The kept sample can end up past the new one once the bracket is
	// shorter than twice the sample offset.
	if ls.right < ls.left {
		ls.left, ls.right = ls.right, ls.left
	}
	ls.iterations++
	if ls.onShrink != nil {
		ls.onShrink(ls.low, ls.high)
	}
}

func (ls *lineSearch) run() (geometry.Point, error) {
	for ls.high-ls.low != 2 {
		if ls.iterations >= ls.steps || ls.high-ls.low < 2 {
			return geometry.Point{}, NewErrorf(ErrMaxIterationsExceeded,
				"bracket [%d, %d] did not close after %d shrinks", ls.low, ls.high, ls.iterations).
				WithOperation("fibonacci search").WithComponent("line-search")
		}
		ls.shrink()
	}
	return ls.point(ls.low + 1), nil
}
