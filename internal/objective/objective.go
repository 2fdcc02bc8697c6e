// Package objective defines the closed-form two-variable functions the
// minimizers operate on.
package objective

import (
	"fmt"
	"sort"
	"strings"

	"github.com/copyleftdev/nlsearch/internal/geometry"
)

// Objective is a twice-differentiable function of two variables with an
// analytical gradient, defined over a closed rectangle. Implementations must
// be stateless so a single value can be shared across goroutines.
type Objective interface {
	// Name returns the registry name of the function.
	Name() string

	// Evaluate returns f(x, y).
	Evaluate(x, y float64) float64

	// Gradient returns (df/dx, df/dy) at (x, y).
	Gradient(x, y float64) geometry.Vector

	// Domain returns the rectangle the function is searched over.
	Domain() geometry.Domain
}

// ValueAt evaluates obj at p.
func ValueAt(obj Objective, p geometry.Point) float64 {
	return obj.Evaluate(p.X, p.Y)
}

// GradientAt returns the gradient of obj at p.
func GradientAt(obj Objective, p geometry.Point) geometry.Vector {
	return obj.Gradient(p.X, p.Y)
}

type bounded struct {
	Objective
	domain geometry.Domain
}

func (b bounded) Domain() geometry.Domain { return b.domain }

// WithDomain returns obj restricted to a different rectangle.
func WithDomain(obj Objective, d geometry.Domain) Objective {
	if b, ok := obj.(bounded); ok {
		obj = b.Objective
	}
	return bounded{Objective: obj, domain: d}
}

var registry = map[string]func() Objective{
	"polynomial":    func() Objective { return NewPolynomial() },
	"trigonometric": func() Objective { return NewTrigonometric() },
	"bowl":          func() Objective { return NewBowl() },
}

// aliases maps the numeric names the functions are also known by.
var aliases = map[string]string{
	"1": "polynomial",
	"2": "trigonometric",
	"3": "bowl",
}

// Lookup returns the registered objective with the given name or numeric
// alias.
func Lookup(name string) (Objective, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	ctor, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown objective %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names returns the registered objective names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
