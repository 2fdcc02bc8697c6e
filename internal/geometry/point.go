// Package geometry provides the two-dimensional value types shared by the
// objectives and the minimizers.
package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Axis identifies one coordinate of the plane.
type Axis int

const (
	// X is the horizontal coordinate.
	X Axis = iota
	// Y is the vertical coordinate.
	Y
)

// Other returns the remaining axis.
func (a Axis) Other() Axis {
	if a == X {
		return Y
	}
	return X
}

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Point is a location in the plane. Points are values: every operation
// returns a new Point.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return floats.Distance(p.slice(), q.slice(), 2)
}

// InRange reports whether q lies within tol of p.
func (p Point) InRange(q Point, tol float64) bool {
	return p.Distance(q) <= tol
}

// Translate moves p along v scaled by factor.
func (p Point) Translate(v Vector, factor float64) Point {
	d := v.Scale(factor)
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Coord returns the coordinate of p on the given axis.
func (p Point) Coord(a Axis) float64 {
	if a == X {
		return p.X
	}
	return p.Y
}

// With returns p with the coordinate on axis a replaced by v.
func (p Point) With(a Axis, v float64) Point {
	if a == X {
		return Point{X: v, Y: p.Y}
	}
	return Point{X: p.X, Y: v}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

func (p Point) slice() []float64 {
	return []float64{p.X, p.Y}
}
