package geometry

import (
	"fmt"
	"math"
)

// Domain is the closed rectangle spanned by two corner points.
type Domain struct {
	Min Point
	Max Point
}

// NewDomain returns the rectangle with the given corners. Min must not exceed
// Max on either axis.
func NewDomain(min, max Point) (Domain, error) {
	if min.X > max.X || min.Y > max.Y {
		return Domain{}, fmt.Errorf("inverted domain corners %v and %v", min, max)
	}
	if !finite(min.X) || !finite(min.Y) || !finite(max.X) || !finite(max.Y) {
		return Domain{}, fmt.Errorf("domain corners must be finite, got %v and %v", min, max)
	}
	return Domain{Min: min, Max: max}, nil
}

// Square returns the domain [-half, half] on both axes.
func Square(half float64) Domain {
	return Domain{Min: Pt(-half, -half), Max: Pt(half, half)}
}

// Contains reports whether p lies inside d, borders included.
func (d Domain) Contains(p Point) bool {
	return p.X >= d.Min.X && p.X <= d.Max.X && p.Y >= d.Min.Y && p.Y <= d.Max.Y
}

// Clamp maps p onto the nearest point of d.
func (d Domain) Clamp(p Point) Point {
	return Point{
		X: math.Max(d.Min.X, math.Min(p.X, d.Max.X)),
		Y: math.Max(d.Min.Y, math.Min(p.Y, d.Max.Y)),
	}
}

// Lower returns the lower bound of d on axis a.
func (d Domain) Lower(a Axis) float64 {
	return d.Min.Coord(a)
}

// Span returns the width of d along axis a.
func (d Domain) Span(a Axis) float64 {
	return d.Max.Coord(a) - d.Min.Coord(a)
}

func (d Domain) String() string {
	return fmt.Sprintf("[%g, %g] x [%g, %g]", d.Min.X, d.Max.X, d.Min.Y, d.Max.Y)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
