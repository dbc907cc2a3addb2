package greeks

import (
	"context"
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/notargets/golocalvol/black"
	"github.com/notargets/golocalvol/curve"
	"github.com/notargets/golocalvol/surface"
	"github.com/notargets/golocalvol/utils"
	"github.com/notargets/golocalvol/volatility"
	"gonum.org/v1/gonum/mat"
)

// VolNodes is a strike smile quoted on a grid, Vols[i][j] at Times[i] and
// Strikes[j]. Rows are joined by natural cubic splines in strike.
type VolNodes struct {
	Times, Strikes []float64
	Vols           [][]float64
}

// Surface fits the nodes with the (i, j) node moved by shift
func (vn VolNodes) Surface(i, j int, shift float64) (vol *volatility.BlackVolatilitySurfaceStrike, err error) {
	z := make([][]float64, len(vn.Vols))
	for r := range vn.Vols {
		z[r] = append([]float64(nil), vn.Vols[r]...)
	}
	if shift != 0 {
		if i < 0 || i >= len(z) || j < 0 || j >= len(z[i]) {
			err = fmt.Errorf("%w: no node (%d, %d)", ErrInvalidInput, i, j)
			return
		}
		z[i][j] += shift
	}
	var s *surface.Interpolated
	if s, err = surface.NewSmoothInterpolated(vn.Times, vn.Strikes, z); err != nil {
		return
	}
	return volatility.NewBlackVolatilitySurfaceStrike(s), nil
}

func (vn VolNodes) numNodes() int { return len(vn.Times) * len(vn.Strikes) }

// BucketedVega holds one strike's response to each smile node.
// Sensitivity.At(i, j) is the move in the strike's implied vol per unit move of
// node (i, j) and Vega.At(i, j) is the same for the undiscounted price.
type BucketedVega struct {
	Strike, ImpliedVol float64
	Sensitivity, Vega  *mat.Dense
	Err                error
}

/*
BucketedVega moves each smile node by VolShift in turn, refits the smile, runs
Dupire and reprices the strip on the forward moneyness grid of the unbumped
smile. Differences are one-sided against the base solve. The base and the
bumped solves are spread over ParallelDegree goroutines.
*/
func (c *Calculator) BucketedVega(ctx context.Context, nodes VolNodes, fwd *curve.ForwardCurve,
	expiry float64, isCall bool, strikes []float64) (rows []BucketedVega, err error) {
	if err = c.validate(); err != nil {
		return
	}
	if fwd == nil || !(expiry > 0) || len(strikes) == 0 {
		err = fmt.Errorf("%w: need a forward curve, a positive expiry and strikes", ErrInvalidInput)
		return
	}
	var (
		nt, nk = len(nodes.Times), len(nodes.Strikes)
		vol    *volatility.BlackVolatilitySurfaceStrike
	)
	if vol, err = nodes.Surface(0, 0, 0); err != nil {
		return
	}
	var (
		fT     = fwd.Forward(expiry)
		atmVol = vol.Volatility(expiry, fT)
		out    = make([]scenarioResult, 1+nodes.numNodes())
	)
	if !(atmVol > 0) || !utils.IsFinite(atmVol) {
		err = fmt.Errorf("%w: ATM volatility %g at expiry %g", ErrInvalidInput, atmVol, expiry)
		return
	}
	gs := c.gridSpec(1, atmVol, expiry)
	err = runParallel(ctx, c.ParallelDegree, len(out), func(ctx context.Context, n int) (err error) {
		v := vol
		if n > 0 {
			if v, err = nodes.Surface((n-1)/nk, (n-1)%nk, c.VolShift); err != nil {
				return
			}
		}
		if out[n], err = c.solveScenario(ctx, scenarios[base], v, fwd, expiry, isCall, strikes, gs); err != nil {
			err = fmt.Errorf("node %d: %w", n-1, err)
		}
		return
	})
	if err != nil {
		return nil, err
	}

	g := out[0].res.Grid()
	rows = make([]BucketedVega, len(strikes))
	for s, k := range strikes {
		r := &rows[s]
		r.Strike = k
		if m := k / fT; m < g.SpaceNode(0) || m > g.SpaceNode(g.NumSpaceNodes()-1) {
			r.Err = fmt.Errorf("%w: moneyness %g", ErrStrikeOutsideGrid, m)
			continue
		}
		p0 := out[0].prices[s]
		if r.ImpliedVol, r.Err = black.ImpliedVolatility(p0, fT, k, expiry, isCall); r.Err != nil {
			glog.V(1).Infof("bucketed vega: strike %g: %v", k, r.Err)
			continue
		}
		r.Sensitivity = mat.NewDense(nt, nk, nil)
		r.Vega = mat.NewDense(nt, nk, nil)
		for n := 1; n < len(out); n++ {
			i, j := (n-1)/nk, (n-1)%nk
			p := out[n].prices[s]
			r.Vega.Set(i, j, (p-p0)/c.VolShift)
			iv, ivErr := black.ImpliedVolatility(p, fT, k, expiry, isCall)
			if ivErr != nil {
				iv = math.NaN()
			}
			r.Sensitivity.Set(i, j, (iv-r.ImpliedVol)/c.VolShift)
		}
	}
	return
}
