package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is a displacement or gradient in the plane.
type Vector struct {
	X, Y float64
}

// Vec is a convenience function to create a Vector.
func Vec(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	return floats.Norm([]float64{v.X, v.Y}, 2)
}

// IsZero reports whether both components are exactly zero.
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Normalize returns v scaled to unit length. The boolean is false when v has
// no direction (zero or non-finite norm), in which case the zero vector is
// returned.
func (v Vector) Normalize() (Vector, bool) {
	n := v.Norm()
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Vector{}, false
	}
	return Vector{X: v.X / n, Y: v.Y / n}, true
}

// Negate flips the direction of v.
func (v Vector) Negate() Vector {
	return Vector{X: -v.X, Y: -v.Y}
}

// Scale multiplies both components by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{X: v.X * s, Y: v.Y * s}
}

func (v Vector) String() string {
	return fmt.Sprintf("<%g, %g>", v.X, v.Y)
}
