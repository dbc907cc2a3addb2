// Package greeks computes option sensitivities by bump and reprice through the
// local volatility PDE solves.
package greeks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/golang/glog"
	"github.com/notargets/golocalvol/black"
	"github.com/notargets/golocalvol/boundary"
	"github.com/notargets/golocalvol/curve"
	"github.com/notargets/golocalvol/pde"
	"github.com/notargets/golocalvol/types"
	"github.com/notargets/golocalvol/utils"
	"github.com/notargets/golocalvol/volatility"
)

var (
	ErrInvalidInput      = errors.New("invalid greeks input")
	ErrStrikeOutsideGrid = errors.New("strike outside the moneyness grid")
)

const (
	DefaultTheta         = 0.55
	DefaultTimeSteps     = 100
	DefaultSpaceSteps    = 200
	DefaultTimeBunching  = 3.
	DefaultSpaceBunching = 0.05
	DefaultMaxProxyDelta = 5.
	DefaultForwardShift  = 1.e-2
	DefaultVolShift      = 1.e-4
)

/*
Calculator holds the grid and bump sizes for Greek batches. The moneyness grid
runs over [1/M, M] with M = exp(MaxProxyDelta σ_ATM √T). ForwardShift is
relative to the forward and VolShift is an absolute parallel move of the
implied volatility surface. ParallelDegree caps the goroutines of a batch, zero
means one per CPU.
*/
type Calculator struct {
	Theta                  float64
	TimeSteps, SpaceSteps  int
	TimeBunching           float64
	SpaceBunching          float64
	MaxProxyDelta          float64
	ForwardShift, VolShift float64
	ParallelDegree         int
	NeumannLowerBoundary   bool
	Dupire                 *volatility.DupireCalculator
}

func NewCalculator() *Calculator {
	return &Calculator{
		Theta:         DefaultTheta,
		TimeSteps:     DefaultTimeSteps,
		SpaceSteps:    DefaultSpaceSteps,
		TimeBunching:  DefaultTimeBunching,
		SpaceBunching: DefaultSpaceBunching,
		MaxProxyDelta: DefaultMaxProxyDelta,
		ForwardShift:  DefaultForwardShift,
		VolShift:      DefaultVolShift,
		Dupire:        volatility.NewDupireCalculator(),
	}
}

func (c *Calculator) validate() (err error) {
	switch {
	case !(c.Theta >= 0 && c.Theta <= 1):
		err = fmt.Errorf("%w: theta %g", pde.ErrInvalidTheta, c.Theta)
	case c.TimeSteps < 1 || c.SpaceSteps < 2:
		err = fmt.Errorf("%w: %d time and %d space steps", ErrInvalidInput, c.TimeSteps, c.SpaceSteps)
	case !(c.MaxProxyDelta > 0):
		err = fmt.Errorf("%w: max proxy delta %g", ErrInvalidInput, c.MaxProxyDelta)
	case !(c.ForwardShift > 0 && c.ForwardShift < 1) || !(c.VolShift > 0):
		err = fmt.Errorf("%w: shifts %g and %g", ErrInvalidInput, c.ForwardShift, c.VolShift)
	}
	return
}

func (c *Calculator) dupire() *volatility.DupireCalculator {
	if c.Dupire == nil {
		return volatility.NewDupireCalculator()
	}
	return c.Dupire
}

// gridSpec centres a log-symmetric grid of half-width MaxProxyDelta·σ√T on center
func (c *Calculator) gridSpec(center, sigma, expiry float64) pde.GridSpec {
	maxM := math.Exp(c.MaxProxyDelta * sigma * math.Sqrt(expiry))
	return pde.GridSpec{
		TimeNodes:     c.TimeSteps + 1,
		SpaceNodes:    c.SpaceSteps + 1,
		TimeBunching:  c.TimeBunching,
		SpaceMesh:     types.Hyperbolic,
		SpaceBunching: c.SpaceBunching,
		MinX:          center / maxM,
		MaxX:          center * maxM,
		CenterX:       center,
	}
}

// StrikeGreeks is one row of a forward batch. Prices and Greeks are
// undiscounted and taken against the forward to expiry. Model Greeks move the
// strike smile sticky strike; dual and fixed-surface Greeks are read off the
// base solve.
type StrikeGreeks struct {
	Strike, Moneyness                       float64
	Price, ImpliedVol                       float64
	BlackDelta, BlackGamma, BlackVega       float64
	Delta, Gamma, Vega, Vanna, Vomma        float64
	DualDelta, DualGamma, FixedSurfaceDelta float64
	Err                                     error
}

type scenario struct {
	fwdBump, volBump int
}

func (s scenario) String() string {
	return fmt.Sprintf("forward %+d, vol %+d", s.fwdBump, s.volBump)
}

const (
	base = iota
	fwdUp
	fwdDown
	volUp
	volDown
	upUp
	upDown
	downUp
	downDown
)

var scenarios = [...]scenario{
	base:     {0, 0},
	fwdUp:    {1, 0},
	fwdDown:  {-1, 0},
	volUp:    {0, 1},
	volDown:  {0, -1},
	upUp:     {1, 1},
	upDown:   {1, -1},
	downUp:   {-1, 1},
	downDown: {-1, -1},
}

type scenarioResult struct {
	prices []float64
	res    pde.PDEResults
}

func (c *Calculator) solveScenario(ctx context.Context, sc scenario, vol *volatility.BlackVolatilitySurfaceStrike,
	fwd *curve.ForwardCurve, expiry float64, isCall bool, strikes []float64, gs pde.GridSpec) (sr scenarioResult, err error) {
	var (
		fwdS = fwd
		volS = vol
		db   *pde.DataBundle
		ts   *pde.ThetaSolver
	)
	if sc.fwdBump != 0 {
		if fwdS, err = fwd.WithFractionalShift(float64(sc.fwdBump) * c.ForwardShift); err != nil {
			return
		}
	}
	if sc.volBump != 0 {
		volS = vol.WithShift(float64(sc.volBump) * c.VolShift)
	}
	lvM := c.dupire().LocalVolatilitySurfaceMoneyness(volS.ToMoneyness(fwdS))
	if db, err = pde.ForwardMoneynessBundle(lvM, expiry, isCall, gs); err != nil {
		return
	}
	if c.NeumannLowerBoundary {
		slope := 0.
		if isCall {
			slope = -1
		}
		db.Lower = boundary.NewNeumann(boundary.Lower, slope)
	}
	if ts, err = pde.NewThetaSolver(c.Theta, false); err != nil {
		return
	}
	if sr.res, err = ts.Solve(ctx, db); err != nil {
		return
	}
	fT := fwdS.Forward(expiry)
	sr.prices = make([]float64, len(strikes))
	for i, k := range strikes {
		sr.prices[i] = fT * sr.res.Interpolate(k/fT)
	}
	return
}

// runParallel calls job(n) for n in [0, nJobs) over a partitioned set of
// goroutines. The first failure cancels the context the others see.
func runParallel(ctx context.Context, procLimit, nJobs int, job func(ctx context.Context, n int) error) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		pm   = utils.NewPartitionMap(utils.ParallelDegree(procLimit, nJobs), nJobs)
		errs = make([]error, pm.ParallelDegree)
		wg   sync.WaitGroup
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				if errs[np] = job(ctx, k); errs[np] != nil {
					cancel()
					return
				}
			}
		}(np)
	}
	wg.Wait()
	for _, e := range errs {
		if e == nil {
			continue
		}
		if err == nil || (errors.Is(err, context.Canceled) && !errors.Is(e, context.Canceled)) {
			err = e
		}
	}
	return
}

/*
ForwardGreeks prices a strip of strikes on one expiry with the forward
moneyness equation and bumps the inputs around it. Nine solves run: the base,
the forward up and down, the volatility up and down and the four cross bumps.
Every solve shares one moneyness grid so discretisation error cancels in the
differences.
*/
func (c *Calculator) ForwardGreeks(ctx context.Context, vol *volatility.BlackVolatilitySurfaceStrike,
	fwd *curve.ForwardCurve, expiry float64, isCall bool, strikes []float64) (rows []StrikeGreeks, err error) {
	if err = c.validate(); err != nil {
		return
	}
	if vol == nil || fwd == nil {
		err = fmt.Errorf("%w: need a volatility surface and a forward curve", ErrInvalidInput)
		return
	}
	if !(expiry > 0) || len(strikes) == 0 {
		err = fmt.Errorf("%w: expiry %g with %d strikes", ErrInvalidInput, expiry, len(strikes))
		return
	}
	var (
		fT     = fwd.Forward(expiry)
		atmVol = vol.Volatility(expiry, fT)
		out    = make([]scenarioResult, len(scenarios))
	)
	if !(atmVol > 0) || !utils.IsFinite(atmVol) {
		err = fmt.Errorf("%w: ATM volatility %g at expiry %g", ErrInvalidInput, atmVol, expiry)
		return
	}
	gs := c.gridSpec(1, atmVol, expiry)
	err = runParallel(ctx, c.ParallelDegree, len(scenarios), func(ctx context.Context, n int) (err error) {
		if out[n], err = c.solveScenario(ctx, scenarios[n], vol, fwd, expiry, isCall, strikes, gs); err != nil {
			err = fmt.Errorf("scenario %s: %w", scenarios[n], err)
		}
		return
	})
	if err != nil {
		return nil, err
	}

	var (
		p       = func(s, i int) float64 { return out[s].prices[i] }
		dF      = fT * c.ForwardShift
		dv      = c.VolShift
		res     = out[base].res
		g       = res.Grid()
		m, dUdm float64
	)
	rows = make([]StrikeGreeks, len(strikes))
	for i, k := range strikes {
		m = k / fT
		r := &rows[i]
		r.Strike, r.Moneyness = k, m
		if m < g.SpaceNode(0) || m > g.SpaceNode(g.NumSpaceNodes()-1) {
			r.Err = fmt.Errorf("%w: moneyness %g", ErrStrikeOutsideGrid, m)
			glog.V(1).Infof("greeks: strike %g: %v", k, r.Err)
			continue
		}
		r.Price = p(base, i)
		r.Delta = (p(fwdUp, i) - p(fwdDown, i)) / (2 * dF)
		r.Gamma = (p(fwdUp, i) - 2*p(base, i) + p(fwdDown, i)) / (dF * dF)
		r.Vega = (p(volUp, i) - p(volDown, i)) / (2 * dv)
		r.Vomma = (p(volUp, i) - 2*p(base, i) + p(volDown, i)) / (dv * dv)
		r.Vanna = (p(upUp, i) - p(upDown, i) - p(downUp, i) + p(downDown, i)) / (4 * dF * dv)

		dUdm = res.InterpolateDerivative(m)
		r.DualDelta = dUdm
		r.DualGamma = SecondDerivativeAt(res, m) / fT
		r.FixedSurfaceDelta = res.Interpolate(m) - m*dUdm

		if r.ImpliedVol, r.Err = black.ImpliedVolatility(r.Price, fT, k, expiry, isCall); r.Err != nil {
			r.ImpliedVol, r.BlackDelta, r.BlackGamma, r.BlackVega = math.NaN(), math.NaN(), math.NaN(), math.NaN()
			glog.V(1).Infof("greeks: strike %g: %v", k, r.Err)
			continue
		}
		r.BlackDelta = black.Delta(fT, k, expiry, r.ImpliedVol, isCall)
		r.BlackGamma = black.Gamma(fT, k, expiry, r.ImpliedVol)
		r.BlackVega = black.Vega(fT, k, expiry, r.ImpliedVol)
	}
	return
}

// SecondDerivativeAt interpolates the grid's second difference linearly
// between the interior nodes either side of x
func SecondDerivativeAt(res pde.PDEResults, x float64) float64 {
	var (
		g  = res.Grid()
		nx = g.NumSpaceNodes()
		j  = g.LowerBoundIndexForSpace(x)
	)
	if nx < 4 {
		return res.SecondSpatialDerivative(1)
	}
	j = max(1, min(j, nx-3))
	var (
		x0, x1 = g.SpaceNode(j), g.SpaceNode(j + 1)
		w      = utils.Clamp((x-x0)/(x1-x0), 0, 1)
	)
	return (1-w)*res.SecondSpatialDerivative(j) + w*res.SecondSpatialDerivative(j+1)
}

// BackwardGreeks is a single option priced on a spot grid
type BackwardGreeks struct {
	Spot, Strike, Expiry float64
	Price, Delta, Gamma  float64
	BumpDelta, BumpGamma float64
}

/*
BackwardGreeks solves the backward equation for one option and reads price,
delta and gamma off the grid at today's spot. It also reprices with the spot
shifted up and down by ForwardShift, each on a grid recentred on its own spot,
and reports the differenced delta and gamma alongside.
*/
func (c *Calculator) BackwardGreeks(ctx context.Context, lv *volatility.LocalVolatilitySurfaceStrike,
	fwd *curve.ForwardCurve, yc *curve.YieldCurve, expiry, strike float64, isCall bool) (bg BackwardGreeks, err error) {
	if err = c.validate(); err != nil {
		return
	}
	if lv == nil || fwd == nil || yc == nil {
		err = fmt.Errorf("%w: need local volatility, forward and yield curves", ErrInvalidInput)
		return
	}
	if !(expiry > 0) || !(strike > 0) {
		err = fmt.Errorf("%w: expiry %g, strike %g", ErrInvalidInput, expiry, strike)
		return
	}
	var (
		spot   = fwd.Spot()
		sigma  = lv.Volatility(0, spot)
		shifts = []float64{0, c.ForwardShift, -c.ForwardShift}
		values = make([]float64, len(shifts))
		baseR  pde.PDEResults
	)
	if !(sigma > 0) || !utils.IsFinite(sigma) {
		err = fmt.Errorf("%w: local volatility %g at spot", ErrInvalidInput, sigma)
		return
	}
	ts, err := pde.NewThetaSolver(c.Theta, false)
	if err != nil {
		return
	}
	err = runParallel(ctx, c.ParallelDegree, len(shifts), func(ctx context.Context, n int) (err error) {
		var (
			s  = spot * (1 + shifts[n])
			fc *curve.ForwardCurve
			db *pde.DataBundle
			r  pde.PDEResults
		)
		if fc, err = fwd.WithShiftedSpot(s); err != nil {
			return
		}
		gs := c.gridSpec(s, sigma, expiry)
		gs.MaxX = math.Max(gs.MaxX, strike*2)
		if db, err = pde.BackwardBundle(lv, fc, yc, strike, expiry, isCall, gs); err != nil {
			return
		}
		if r, err = ts.Solve(ctx, db); err != nil {
			return fmt.Errorf("spot %g: %w", s, err)
		}
		values[n] = r.Interpolate(s)
		if n == 0 {
			baseR = r
		}
		return
	})
	if err != nil {
		return
	}
	dS := spot * c.ForwardShift
	bg = BackwardGreeks{
		Spot:      spot,
		Strike:    strike,
		Expiry:    expiry,
		Price:     values[0],
		Delta:     baseR.InterpolateDerivative(spot),
		Gamma:     SecondDerivativeAt(baseR, spot),
		BumpDelta: (values[1] - values[2]) / (2 * dS),
		BumpGamma: (values[1] - 2*values[0] + values[2]) / (dS * dS),
	}
	return
}
