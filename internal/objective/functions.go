package objective

import (
	"math"

	"github.com/copyleftdev/nlsearch/internal/geometry"
)

// Polynomial is
//
//	f(x, y) = x(x+5)(x+1)(x-2)(x+4) * (y-1)(y+2)(y-3)(y+5)
//
// searched over [-2, 2]^2 by default.
type Polynomial struct {
	domain geometry.Domain
}

// NewPolynomial returns the polynomial objective on its default domain.
func NewPolynomial() *Polynomial {
	return &Polynomial{domain: geometry.Square(2)}
}

func (p *Polynomial) Name() string { return "polynomial" }

func (p *Polynomial) Domain() geometry.Domain { return p.domain }

func (p *Polynomial) Evaluate(x, y float64) float64 {
	return polyX(x) * polyY(y)
}

func (p *Polynomial) Gradient(x, y float64) geometry.Vector {
	return geometry.Vec(
		polyY(y)*(5*x*x*x*x+32*x*x*x+27*x*x-76*x-40),
		polyX(x)*(4*y*y*y+9*y*y-30*y-19),
	)
}

func polyX(x float64) float64 {
	return (x + 5) * (x + 1) * (x - 2) * (x + 4) * x
}

func polyY(y float64) float64 {
	return (y - 1) * (y + 2) * (y - 3) * (y + 5)
}

// degree converts degrees to radians.
const degree = math.Pi / 180

// Trigonometric is
//
//	f(x, y) = sin((x^2 + y)°) - cos((y^2 - x)°)
//
// with both arguments measured in degrees, searched over [-5π, 5π]^2 by
// default.
type Trigonometric struct {
	domain geometry.Domain
}

// NewTrigonometric returns the trigonometric objective on its default domain.
func NewTrigonometric() *Trigonometric {
	return &Trigonometric{domain: geometry.Square(5 * math.Pi)}
}

func (t *Trigonometric) Name() string { return "trigonometric" }

func (t *Trigonometric) Domain() geometry.Domain { return t.domain }

func (t *Trigonometric) Evaluate(x, y float64) float64 {
	return math.Sin(degree*(x*x+y)) - math.Cos(degree*(y*y-x))
}

// Gradient includes the degree-to-radian chain factor so it matches Evaluate.
func (t *Trigonometric) Gradient(x, y float64) geometry.Vector {
	a := degree * (x*x + y)
	b := degree * (y*y - x)
	return geometry.Vec(
		degree*(2*x*math.Cos(a)-math.Sin(b)),
		degree*(math.Cos(a)+2*y*math.Sin(b)),
	)
}

// Bowl is the quadratic f(x, y) = (x+1)^2 + (y-0.5)^2 with its unique
// minimum at (-1, 0.5), searched over [-2, 2]^2 by default.
type Bowl struct {
	domain geometry.Domain
}

// NewBowl returns the quadratic bowl on its default domain.
func NewBowl() *Bowl {
	return &Bowl{domain: geometry.Square(2)}
}

func (b *Bowl) Name() string { return "bowl" }

func (b *Bowl) Domain() geometry.Domain { return b.domain }

func (b *Bowl) Evaluate(x, y float64) float64 {
	return (x+1)*(x+1) + (y-0.5)*(y-0.5)
}

func (b *Bowl) Gradient(x, y float64) geometry.Vector {
	return geometry.Vec(2*x+2, 2*y-1)
}
