package volatility

import (
	"math"
	"testing"

	"github.com/notargets/golocalvol/curve"
	"github.com/notargets/golocalvol/sabr"
	"github.com/notargets/golocalvol/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceConverters(t *testing.T) {
	fc, err := curve.NewForwardCurve(100, 0.05)
	require.NoError(t, err)
	skew := surface.NewFunctional("skew", func(t, k float64) float64 { return 0.2 + 0.001*(100-k) + 0.01*t })
	vol := NewBlackVolatilitySurfaceStrike(skew)

	assert.InDelta(t, vol.Volatility(1, 90)+0.01, vol.WithShift(0.01).Volatility(1, 90), 1.e-15)

	volM := vol.ToMoneyness(fc)
	assert.Same(t, fc, volM.ForwardCurve())
	assert.InDelta(t, vol.Volatility(2, 1.1*fc.Forward(2)), volM.Volatility(2, 1.1), 1.e-14)
	assert.InDelta(t, vol.Volatility(2, 80), volM.VolatilityForStrike(2, 80), 1.e-14)
	assert.InDelta(t, vol.Volatility(2, 80), volM.ToStrike().Volatility(2, 80), 1.e-14)

	lv := NewLocalVolatilitySurfaceStrike(skew)
	assert.InDelta(t, skew.Value(1, 90)*90, lv.ToAbsolute().Volatility(1, 90), 1.e-13)
	assert.InDelta(t, skew.Value(1, 90), lv.ToAbsolute().ToRelative().Volatility(1, 90), 1.e-14)
	lvM := lv.ToMoneyness(fc)
	assert.InDelta(t, skew.Value(3, 120), lvM.ToStrike().Volatility(3, 120), 1.e-13)
	assert.InDelta(t, skew.Value(1, 90)-0.02, lv.WithShift(-0.02).Volatility(1, 90), 1.e-15)

	ps := PriceSurfaceFromBlack(NewBlackVolatilitySurfaceStrike(surface.Constant(0.2)), fc)
	// Undiscounted call at zero time is intrinsic on the spot
	assert.Equal(t, 10., ps.Price(0, 90))
	assert.Greater(t, ps.Price(1, 100), fc.Forward(1)-100)
}

func TestDupireFlatAndTermStructure(t *testing.T) {
	var (
		dc = NewDupireCalculator()
	)
	assert.Equal(t, DefaultEpsilon, dc.Epsilon)
	assert.Equal(t, 0.01, NewDupireCalculator(0.01).Epsilon)
	fc, err := curve.NewForwardCurve(100, 0.03)
	require.NoError(t, err)

	flat := NewBlackVolatilitySurfaceStrike(surface.Constant(0.25))
	for _, tt := range []float64{0, 1.e-4, 0.5, 3} {
		for _, k := range []float64{40, 100, 250} {
			assert.InDeltaf(t, 0.25, dc.LocalVolatility(flat, fc, tt, k), 1.e-12, "t %v k %v", tt, k)
			assert.InDelta(t, 0.25, dc.LocalVolatilityMoneyness(flat.ToMoneyness(fc), tt, k/100), 1.e-12)
		}
	}
	lvs := dc.LocalVolatilitySurface(flat, fc)
	assert.InDelta(t, 0.25, lvs.Volatility(2, 130), 1.e-12)
	lvm := dc.LocalVolatilitySurfaceMoneyness(flat.ToMoneyness(fc))
	assert.InDelta(t, 0.25, lvm.Volatility(2, 1.3), 1.e-12)
	assert.Same(t, fc, lvm.ForwardCurve())

	// Forward variance of a pure term structure, d(σ²t)/dt
	term := NewBlackVolatilitySurfaceStrike(surface.NewFunctional("term", func(t, k float64) float64 { return 0.2 + 0.05*t }))
	assert.InDelta(t, math.Sqrt(0.25*0.25+2*0.25*0.05), dc.LocalVolatility(term, fc, 1, 110), 1.e-9)
	// Inside ε of zero the time derivative steps forward only
	for _, tt := range []float64{0, 1.e-4, 5.e-4} {
		s := 0.2 + 0.05*tt
		assert.InDeltaf(t, math.Sqrt(s*s+2*s*tt*0.05), dc.LocalVolatility(term, fc, tt, 110), 1.e-9, "t %v", tt)
	}
}

func TestDupireFromPrices(t *testing.T) {
	fc, err := curve.NewForwardCurve(100, 0.03)
	require.NoError(t, err)
	dc := NewDupireCalculator()
	ps := PriceSurfaceFromBlack(NewBlackVolatilitySurfaceStrike(surface.Constant(0.2)), fc)
	lv := dc.LocalVolatilityFromPrice(ps, fc)
	abs := dc.AbsoluteLocalVolatilityFromPrice(ps, fc)
	for _, k := range []float64{80, 100, 120} {
		assert.InDeltaf(t, 0.2, lv.Volatility(1, k), 1.e-4, "k = %v", k)
		assert.InDeltaf(t, 0.2*k, abs.Volatility(1, k), 1.e-4*k, "k = %v", k)
	}
}

func TestDupireSABR(t *testing.T) {
	var (
		dc = NewDupireCalculator()
		p  = sabr.Parameters{Alpha: 0.04, Beta: 0.5, Rho: -0.2, Nu: 0.3}
	)
	fc, err := curve.NewForwardCurve(0.04, 0.02)
	require.NoError(t, err)
	vol := NewBlackVolatilitySurfaceStrike(sabr.NewSmileSurface(fc, sabr.Flat(p)))
	volM := vol.ToMoneyness(fc)
	for _, tt := range []float64{0.5, 2, 5} {
		for _, m := range []float64{0.7, 1, 1.5} {
			k := m * fc.Forward(tt)
			lvK := dc.LocalVolatility(vol, fc, tt, k)
			lvM := dc.LocalVolatilityMoneyness(volM, tt, m)
			assert.Falsef(t, math.IsNaN(lvK), "t %v m %v", tt, m)
			assert.Greater(t, lvK, 0.)
			// Strike and moneyness forms describe the same surface
			assert.InDeltaf(t, lvK, lvM, 1.e-4, "t %v m %v", tt, m)
		}
	}
}

func TestDupireTableSmile(t *testing.T) {
	fc, err := curve.NewForwardCurve(100, 0)
	require.NoError(t, err)
	table, err := surface.NewSmoothInterpolated([]float64{1}, []float64{70, 85, 100, 115, 130},
		[][]float64{{0.30, 0.25, 0.21, 0.19, 0.185}})
	require.NoError(t, err)
	var (
		dc  = NewDupireCalculator()
		vol = NewBlackVolatilitySurfaceStrike(table)
	)
	// Local vol passes through the table's nodes without a dip
	for _, k := range []float64{85, 100, 115} {
		lv := dc.LocalVolatility(vol, fc, 1, k)
		left, right := dc.LocalVolatility(vol, fc, 1, k-0.5), dc.LocalVolatility(vol, fc, 1, k+0.5)
		require.Falsef(t, math.IsNaN(lv), "k = %v", k)
		assert.InDeltaf(t, 0.5*(left+right), lv, 1.e-3, "k = %v", k)
		assert.Greaterf(t, lv, 0.15, "k = %v", k)
	}
}

func TestDupireDegenerate(t *testing.T) {
	fc, err := curve.NewForwardCurve(100, 0)
	require.NoError(t, err)
	dc := NewDupireCalculator()
	// Strong negative curvature drives the denominator negative
	frown := NewBlackVolatilitySurfaceStrike(surface.NewFunctional("frown", func(t, k float64) float64 {
		return 0.2 - 50*(k/100-1)*(k/100-1)
	}))
	assert.True(t, math.IsNaN(dc.LocalVolatility(frown, fc, 1, 100)))
	assert.True(t, math.IsNaN(dc.LocalVolatility(frown, fc, 1, 0)))
	assert.True(t, math.IsNaN(dc.LocalVolatility(frown, fc, 1, -5)))
	assert.True(t, math.IsNaN(dc.LocalVolatilityMoneyness(frown.ToMoneyness(fc), 1, 0)))
	// Zero vol has no Dupire solution
	zero := NewBlackVolatilitySurfaceStrike(surface.Constant(0))
	assert.True(t, math.IsNaN(dc.LocalVolatility(zero, fc, 1, 100)))
	// Out of the money intrinsic prices carry no density
	ps := PriceSurfaceFromBlack(zero, fc)
	assert.True(t, math.IsNaN(dc.AbsoluteLocalVolatility(ps, fc, 1, 120)))
}
