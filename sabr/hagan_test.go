package sabr

import (
	"math"
	"testing"

	"github.com/notargets/golocalvol/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaganVolatility(t *testing.T) {
	var (
		f, expiry = 0.04, 5.
		p         = Parameters{Beta: 0.5, Rho: -0.2, Nu: 0.3}
	)
	p.Alpha = ATMAlpha(0.2, f, expiry, p)
	assert.InDelta(t, 0.2, HaganVolatility(f, f, expiry, p), 1.e-12)
	assert.InDelta(t, 0.2*math.Sqrt(f), p.Alpha, 0.01)

	// Continuous through the money
	atm := HaganVolatility(f, f, expiry, p)
	assert.InDelta(t, atm, HaganVolatility(f, f*(1+1.e-9), expiry, p), 1.e-8)
	assert.InDelta(t, atm, HaganVolatility(f, f*(1+1.e-5), expiry, p), 1.e-5)

	// Negative skew
	assert.Greater(t, HaganVolatility(f, 0.8*f, expiry, p), HaganVolatility(f, 1.25*f, expiry, p))

	// Lognormal limit
	ln := Parameters{Alpha: 0.3, Beta: 1, Rho: 0, Nu: 0}
	for _, k := range []float64{50, 100, 150} {
		assert.InDelta(t, 0.3, HaganVolatility(100, k, 2, ln), 1.e-14)
	}

	assert.True(t, math.IsNaN(HaganVolatility(f, 0, expiry, p)))
	assert.True(t, math.IsNaN(HaganVolatility(-f, 0.05, expiry, p)))
}

func TestSmileSurface(t *testing.T) {
	var (
		p = Parameters{Alpha: 0.04, Beta: 0.5, Rho: -0.2, Nu: 0.3}
	)
	fc, err := curve.NewForwardCurve(0.04, 0.01)
	require.NoError(t, err)
	s := NewSmileSurface(fc, Flat(p))
	for _, tt := range []float64{0, 1, 5} {
		for _, k := range []float64{0.02, 0.05} {
			assert.Equal(t, HaganVolatility(fc.Forward(tt), k, tt, p), s.Value(tt, k))
		}
	}
}
