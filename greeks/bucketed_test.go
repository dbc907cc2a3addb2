package greeks

import (
	"context"
	"testing"

	"github.com/notargets/golocalvol/black"
	"github.com/notargets/golocalvol/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestBucketedVega(t *testing.T) {
	var (
		expiry = 1.
		nodes  = VolNodes{
			Times:   []float64{1},
			Strikes: []float64{70, 85, 100, 115, 130},
			Vols:    [][]float64{{0.30, 0.25, 0.21, 0.19, 0.185}},
		}
		strikes = []float64{90, 100, 110}
	)
	fc, err := curve.NewForwardCurve(100, 0)
	require.NoError(t, err)
	c := NewCalculator()
	c.ParallelDegree = 3
	rows, err := c.BucketedVega(context.Background(), nodes, fc, expiry, true, strikes)
	require.NoError(t, err)
	require.Len(t, rows, len(strikes))

	for _, r := range rows {
		k := r.Strike
		require.NoError(t, r.Err, "k = %v", k)
		nr, nc := r.Sensitivity.Dims()
		require.Equal(t, 1, nr)
		require.Equal(t, 5, nc)
		sens := mat.Row(nil, 0, r.Sensitivity)
		// Moving every node moves the whole smile, and the implied vol with it
		assert.InDeltaf(t, 1., floats.Sum(sens), 0.03, "k = %v", k)
		// Price vega is Black vega times the implied vol response
		vega := black.Vega(100, k, expiry, r.ImpliedVol)
		assert.InDeltaf(t, floats.Sum(sens), floats.Sum(mat.Row(nil, 0, r.Vega))/vega, 1.e-3, "k = %v", k)
	}
	// An at the money strike on a node responds to that node alone
	atm := mat.Row(nil, 0, rows[1].Sensitivity)
	assert.InDelta(t, 1., atm[2], 0.01)
	for _, j := range []int{0, 1, 3, 4} {
		assert.Less(t, atm[j], 0.05)
	}
	// Off node strikes lean on their neighbours
	assert.Equal(t, 1, floats.MaxIdx(mat.Row(nil, 0, rows[0].Sensitivity)))
	assert.Equal(t, 3, floats.MaxIdx(mat.Row(nil, 0, rows[2].Sensitivity)))

	// The unbumped fit is the smile itself
	vol, err := nodes.Surface(0, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.21, vol.Volatility(expiry, 100), 1.e-14)
	bumped, err := nodes.Surface(0, 2, 0.01)
	require.NoError(t, err)
	assert.InDelta(t, 0.22, bumped.Volatility(expiry, 100), 1.e-14)
	assert.Equal(t, 0.21, nodes.Vols[0][2])
	_, err = nodes.Surface(0, 5, 0.01)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = c.BucketedVega(context.Background(), VolNodes{}, fc, expiry, true, strikes)
	assert.Error(t, err)
	_, err = c.BucketedVega(context.Background(), nodes, fc, expiry, true, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
