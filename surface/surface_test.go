package surface

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaces(t *testing.T) {
	var s Surface2D
	{
		s = Constant(0.25)
		assert.Equal(t, 0.25, s.Value(3, -1))
	}
	{
		f := NewFunctional("t+x", func(t, x float64) float64 { return t + x })
		s = f
		assert.Equal(t, 3., s.Value(1, 2))
		assert.Equal(t, "t+x", f.String())
		s = NewShifted(f, 0.5)
		assert.Equal(t, 3.5, s.Value(1, 2))
	}
}

func TestInterpolated(t *testing.T) {
	var (
		ts = []float64{0, 1, 2}
		xs = []float64{0, 1, 2, 4}
		f  = func(t, x float64) float64 { return 1 + 2*t + 3*x }
	)
	s, err := Tabulate(NewFunctional("plane", f), ts, xs)
	require.NoError(t, err)
	// Bilinear interpolation is exact for a plane
	for _, tt := range []float64{0, 0.3, 1, 1.75, 2} {
		for _, x := range []float64{0, 0.5, 1.2, 3, 4} {
			assert.InDeltaf(t, f(tt, x), s.Value(tt, x), 1.e-12, "t = %v, x = %v", tt, x)
		}
	}
	// Clamped outside the grid
	assert.InDelta(t, f(0, 0), s.Value(-1, -5), 1.e-12)
	assert.InDelta(t, f(2, 4), s.Value(10, 50), 1.e-12)
	assert.InDelta(t, f(1, 4), s.Value(1, 6), 1.e-12)

	_, err = NewInterpolated(ts, xs, [][]float64{{1, 2, 3, 4}})
	assert.True(t, errors.Is(err, ErrBadGrid))
	_, err = NewInterpolated([]float64{0, 0}, xs, [][]float64{{1, 2, 3, 4}, {1, 2, 3, 4}})
	assert.True(t, errors.Is(err, ErrBadGrid))
	_, err = NewInterpolated([]float64{0}, xs, [][]float64{{1, 2, 3}})
	assert.True(t, errors.Is(err, ErrBadGrid))
	single, err := NewInterpolated([]float64{0.5}, xs, [][]float64{{1, 2, 3, 5}})
	require.NoError(t, err)
	assert.InDelta(t, 4., single.Value(7, 3), 1.e-12)
}

func TestSmoothInterpolated(t *testing.T) {
	var (
		ts = []float64{1, 2}
		xs = []float64{70, 85, 100, 115, 130}
		z  = [][]float64{{0.30, 0.25, 0.21, 0.19, 0.185}, {0.28, 0.24, 0.21, 0.195, 0.19}}
	)
	s, err := NewSmoothInterpolated(ts, xs, z)
	require.NoError(t, err)
	lin, err := NewInterpolated(ts, xs, z)
	require.NoError(t, err)
	for i, tt := range ts {
		for j, x := range xs {
			assert.InDelta(t, z[i][j], s.Value(tt, x), 1.e-14)
		}
	}
	assert.InDelta(t, 0.5*(s.Value(1, 92)+s.Value(2, 92)), s.Value(1.5, 92), 1.e-14)
	assert.InDelta(t, 0.30, s.Value(1, 50), 1.e-14)

	// The centred second difference at a node settles for the spline and
	// blows up like 1/h at the kinks of the linear rows
	d2 := func(sf Surface2D, x, h float64) float64 {
		return (sf.Value(1, x-h) - 2*sf.Value(1, x) + sf.Value(1, x+h)) / (h * h)
	}
	for _, x := range xs[1:4] {
		assert.InDeltaf(t, d2(s, x, 0.01), d2(s, x, 0.001), 1.e-7, "x = %v", x)
		assert.Lessf(t, math.Abs(d2(s, x, 0.01)), 1.e-3, "x = %v", x)
		assert.Greaterf(t, d2(lin, x, 0.001), 5*d2(lin, x, 0.01), "x = %v", x)
	}

	// A straight line is reproduced exactly
	line, err := NewSmoothInterpolated([]float64{0}, xs, [][]float64{{7, 8, 9, 10, 11}})
	require.NoError(t, err)
	assert.InDelta(t, 8.6, line.Value(0, 94), 1.e-12)
}
