package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointDistance(t *testing.T) {
	tests := []struct {
		name string
		p, q Point
		want float64
	}{
		{"same point", Pt(1, 1), Pt(1, 1), 0},
		{"pythagorean", Pt(0, 0), Pt(3, 4), 5},
		{"negative coords", Pt(-1, 0.5), Pt(1, 1), math.Sqrt(4.25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.p.Distance(tt.q), 1e-12)
			assert.InDelta(t, tt.want, tt.q.Distance(tt.p), 1e-12, "distance should be symmetric")
		})
	}
}

func TestPointInRange(t *testing.T) {
	p := Pt(0, 0)
	assert.True(t, p.InRange(Pt(3, 4), 5), "boundary distance is in range")
	assert.False(t, p.InRange(Pt(3, 4.01), 5))
}

func TestPointTranslateDoesNotMutate(t *testing.T) {
	p := Pt(1, 1)
	q := p.Translate(Vec(-1, 0.5), 0.1)

	assert.Equal(t, Pt(1, 1), p)
	assert.InDelta(t, 0.9, q.X, 1e-12)
	assert.InDelta(t, 1.05, q.Y, 1e-12)
}

func TestPointAxisAccess(t *testing.T) {
	p := Pt(2, -3)

	assert.Equal(t, 2.0, p.Coord(X))
	assert.Equal(t, -3.0, p.Coord(Y))
	assert.Equal(t, Pt(7, -3), p.With(X, 7))
	assert.Equal(t, Pt(2, 7), p.With(Y, 7))
	assert.Equal(t, Y, X.Other())
	assert.Equal(t, X, Y.Other())
	assert.Equal(t, "x", X.String())
	assert.Equal(t, "y", Y.String())
}

func TestVectorNormalize(t *testing.T) {
	tests := []struct {
		name   string
		v      Vector
		want   Vector
		wantOK bool
	}{
		{"axis aligned", Vec(0, -4), Vec(0, -1), true},
		{"diagonal", Vec(3, 4), Vec(0.6, 0.8), true},
		{"zero vector", Vec(0, 0), Vector{}, false},
		{"infinite component", Vec(math.Inf(1), 1), Vector{}, false},
		{"nan component", Vec(math.NaN(), 1), Vector{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.Normalize()
			require.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want.X, got.X, 1e-12)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-12)
			if ok {
				assert.InDelta(t, 1.0, got.Norm(), 1e-12)
			}
		})
	}
}

func TestVectorArithmetic(t *testing.T) {
	v := Vec(2, -1)

	assert.Equal(t, Vec(-2, 1), v.Negate())
	assert.Equal(t, Vec(4, -2), v.Scale(2))
	assert.True(t, Vec(0, 0).IsZero())
	assert.False(t, v.IsZero())
	assert.InDelta(t, math.Sqrt(5), v.Norm(), 1e-12)
}

func TestDomain(t *testing.T) {
	_, err := NewDomain(Pt(1, 0), Pt(0, 1))
	assert.Error(t, err, "inverted corners should be rejected")

	_, err = NewDomain(Pt(0, 0), Pt(math.Inf(1), 1))
	assert.Error(t, err, "infinite corners should be rejected")

	d, err := NewDomain(Pt(-2, -1), Pt(2, 3))
	require.NoError(t, err)

	assert.True(t, d.Contains(Pt(-2, 3)), "corners belong to the domain")
	assert.False(t, d.Contains(Pt(2.1, 0)))
	assert.Equal(t, Pt(2, -1), d.Clamp(Pt(5, -4)))
	assert.Equal(t, Pt(0, 0), d.Clamp(Pt(0, 0)))
	assert.Equal(t, 4.0, d.Span(X))
	assert.Equal(t, 4.0, d.Span(Y))
	assert.Equal(t, -1.0, d.Lower(Y))
	assert.Equal(t, Square(2), Domain{Min: Pt(-2, -2), Max: Pt(2, 2)})
}
