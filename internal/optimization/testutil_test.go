package optimization

import (
	"testing"

	"github.com/copyleftdev/nlsearch/internal/geometry"
	"github.com/copyleftdev/nlsearch/internal/objective"
)

var bowlMinimum = geometry.Pt(-1, 0.5)

// assertPointNear checks that got lies within tol of want.
func assertPointNear(t *testing.T, want, got geometry.Point, tol float64) {
	t.Helper()

	if d := want.Distance(got); d > tol {
		t.Fatalf("got %v, want within %v of %v (distance %v)", got, tol, want, d)
	}
}

// countingObjective wraps an objective and counts value evaluations.
type countingObjective struct {
	objective.Objective
	values int
}

func (c *countingObjective) Evaluate(x, y float64) float64 {
	c.values++
	return c.Objective.Evaluate(x, y)
}

// boundedBowl is the bowl restricted to a rectangle that excludes its minimum.
func boundedBowl(t *testing.T, min, max geometry.Point) objective.Objective {
	t.Helper()

	d, err := geometry.NewDomain(min, max)
	if err != nil {
		t.Fatalf("invalid domain: %v", err)
	}
	return objective.WithDomain(objective.NewBowl(), d)
}
