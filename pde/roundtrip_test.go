package pde

import (
	"context"
	"math"
	"testing"

	"github.com/notargets/golocalvol/black"
	"github.com/notargets/golocalvol/boundary"
	"github.com/notargets/golocalvol/curve"
	"github.com/notargets/golocalvol/sabr"
	"github.com/notargets/golocalvol/types"
	"github.com/notargets/golocalvol/volatility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SABR smile to Dupire local vol, then back to implied vols through the
// forward moneyness equation
func TestSABRLocalVolRoundTrip(t *testing.T) {
	var (
		spot, atmVol, expiry, strike = 0.04, 0.2, 5., 0.05
		p                            = sabr.Parameters{Beta: 0.5, Rho: -0.2, Nu: 0.3}
	)
	p.Alpha = sabr.ATMAlpha(atmVol, spot, expiry, p)
	fc, err := curve.NewForwardCurve(spot, 0)
	require.NoError(t, err)
	vol := volatility.NewBlackVolatilitySurfaceStrike(sabr.NewSmileSurface(fc, sabr.Flat(p)))
	lvM := volatility.NewDupireCalculator().LocalVolatilitySurfaceMoneyness(vol.ToMoneyness(fc))

	maxM := math.Exp(5 * atmVol * math.Sqrt(expiry))
	gs := GridSpec{
		TimeNodes: 201, SpaceNodes: 401, TimeBunching: 4,
		SpaceMesh: types.Hyperbolic, SpaceBunching: 0.05,
		MinX: 1 / maxM, MaxX: maxM, CenterX: 1,
	}
	db, err := ForwardMoneynessBundle(lvM, expiry, true, gs)
	require.NoError(t, err)
	db.Lower = boundary.NewNeumann(boundary.Lower, -1)
	ts, err := NewThetaSolver(0.55, false)
	require.NoError(t, err)
	res, err := ts.Solve(context.Background(), db)
	require.NoError(t, err)

	for k, tol := range map[float64]float64{0.03: 2.e-4, 0.04: 2.e-4, strike: 1.e-4} {
		m := k / fc.Forward(expiry)
		pdeVol, err := black.ImpliedVolatility(res.Interpolate(m), 1, m, expiry, true)
		require.NoError(t, err)
		assert.InDeltaf(t, vol.Volatility(expiry, k), pdeVol, tol, "k = %v", k)
	}
}
