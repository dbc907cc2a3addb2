package curve

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/golocalvol/utils"
	"gonum.org/v1/gonum/interp"
)

var ErrBadCurve = errors.New("invalid curve")

// driftStep is the time step used to differentiate a forward curve numerically
const driftStep = 1.e-5

/*
ForwardCurve gives the forward price F(t) of the underlying, with F(0) equal
to the spot. Drift is the instantaneous growth rate d ln F / dt, which is
r - q for a stock. Curves are immutable; the shifted variants return new
curves.
*/
type ForwardCurve struct {
	spot    float64
	ratio   func(t float64) float64 // F(t)/spot
	drift   func(t float64) float64 // nil means differentiate ratio numerically
	shifted bool
}

func NewForwardCurve(spot, drift float64) (fc *ForwardCurve, err error) {
	if err = checkSpot(spot); err != nil {
		return
	}
	fc = &ForwardCurve{
		spot:  spot,
		ratio: func(t float64) float64 { return math.Exp(drift * t) },
		drift: func(float64) float64 { return drift },
	}
	return
}

func NewForwardCurveFromRates(spot, rate, yield float64) (*ForwardCurve, error) {
	return NewForwardCurve(spot, rate-yield)
}

// NewForwardCurveFromFunc uses forward(t) directly; its value at zero is the spot
func NewForwardCurveFromFunc(forward func(t float64) float64) (fc *ForwardCurve, err error) {
	if forward == nil {
		err = fmt.Errorf("%w: nil forward function", ErrBadCurve)
		return
	}
	spot := forward(0)
	if err = checkSpot(spot); err != nil {
		return
	}
	fc = &ForwardCurve{
		spot:  spot,
		ratio: func(t float64) float64 { return forward(t) / spot },
	}
	return
}

// NewInterpolatedForwardCurve interpolates ln F linearly in time between the
// given nodes. A node at t = 0 is added from the spot when missing.
func NewInterpolatedForwardCurve(spot float64, ts, fs []float64) (fc *ForwardCurve, err error) {
	var (
		pl       interp.PiecewiseLinear
		xs, ys   []float64
		tMax     float64
		lastRate float64
	)
	if err = checkSpot(spot); err != nil {
		return
	}
	if len(ts) != len(fs) || len(ts) == 0 {
		err = fmt.Errorf("%w: %d times and %d forwards", ErrBadCurve, len(ts), len(fs))
		return
	}
	if ts[0] < 0 {
		err = fmt.Errorf("%w: negative time %g", ErrBadCurve, ts[0])
		return
	}
	if ts[0] > 0 {
		xs, ys = append(xs, 0), append(ys, 0)
	}
	for i := range ts {
		if fs[i] <= 0 {
			err = fmt.Errorf("%w: non-positive forward %g at t = %g", ErrBadCurve, fs[i], ts[i])
			return
		}
		if len(xs) > 0 && !(ts[i] > xs[len(xs)-1]) {
			err = fmt.Errorf("%w: times not increasing at %g", ErrBadCurve, ts[i])
			return
		}
		xs, ys = append(xs, ts[i]), append(ys, math.Log(fs[i]/spot))
	}
	if len(xs) < 2 {
		// A single node at t = 0 is a flat curve
		xs, ys = append(xs, 1), append(ys, ys[0])
	}
	if err = pl.Fit(xs, ys); err != nil {
		return
	}
	tMax = xs[len(xs)-1]
	lastRate = (ys[len(ys)-1] - ys[len(ys)-2]) / (xs[len(xs)-1] - xs[len(xs)-2])
	fc = &ForwardCurve{
		spot: spot,
		ratio: func(t float64) float64 {
			if t > tMax {
				// Flat forward rate beyond the last node
				return math.Exp(ys[len(ys)-1] + lastRate*(t-tMax))
			}
			return math.Exp(pl.Predict(math.Max(t, 0)))
		},
	}
	return
}

func checkSpot(spot float64) (err error) {
	if !(spot > 0) || math.IsInf(spot, 0) {
		err = fmt.Errorf("%w: spot must be positive and finite, have %g", ErrBadCurve, spot)
	}
	return
}

func (fc *ForwardCurve) Spot() float64 { return fc.spot }

func (fc *ForwardCurve) Forward(t float64) float64 { return fc.spot * fc.ratio(t) }

// Drift is d ln F / dt
func (fc *ForwardCurve) Drift(t float64) float64 {
	if fc.drift != nil {
		return fc.drift(t)
	}
	var (
		h      = driftStep
		lo, hi = t - h, t + h
	)
	if lo < 0 {
		lo = 0
	}
	return (math.Log(fc.ratio(hi)) - math.Log(fc.ratio(lo))) / (hi - lo)
}

// WithShiftedSpot keeps the drift and moves the spot
func (fc *ForwardCurve) WithShiftedSpot(spot float64) (*ForwardCurve, error) {
	if err := checkSpot(spot); err != nil {
		return nil, err
	}
	return &ForwardCurve{spot: spot, ratio: fc.ratio, drift: fc.drift, shifted: true}, nil
}

// WithFractionalShift moves every forward by the factor (1 + shift)
func (fc *ForwardCurve) WithFractionalShift(shift float64) (*ForwardCurve, error) {
	return fc.WithShiftedSpot(fc.spot * (1 + shift))
}

func (fc *ForwardCurve) IsShifted() bool { return fc.shifted }

/*
YieldCurve gives continuously compounded zero rates r(t) with discount
factors exp(-r(t) t). ShortRate is d(r t)/dt.
*/
type YieldCurve struct {
	zero func(t float64) float64
}

func NewConstantYieldCurve(rate float64) *YieldCurve {
	return &YieldCurve{zero: func(float64) float64 { return rate }}
}

// NewYieldCurveFromZeroRates interpolates zero rates linearly, flat outside the nodes
func NewYieldCurveFromZeroRates(ts, rates []float64) (yc *YieldCurve, err error) {
	var (
		pl interp.PiecewiseLinear
	)
	if len(ts) != len(rates) || len(ts) == 0 {
		err = fmt.Errorf("%w: %d times and %d rates", ErrBadCurve, len(ts), len(rates))
		return
	}
	for i := 1; i < len(ts); i++ {
		if !(ts[i] > ts[i-1]) {
			err = fmt.Errorf("%w: times not increasing at %g", ErrBadCurve, ts[i])
			return
		}
	}
	if len(ts) == 1 {
		return NewConstantYieldCurve(rates[0]), nil
	}
	if err = pl.Fit(ts, rates); err != nil {
		return
	}
	yc = &YieldCurve{
		zero: func(t float64) float64 {
			return pl.Predict(utils.Clamp(t, ts[0], ts[len(ts)-1]))
		},
	}
	return
}

func (yc *YieldCurve) ZeroRate(t float64) float64 { return yc.zero(t) }

func (yc *YieldCurve) DiscountFactor(t float64) float64 { return math.Exp(-yc.zero(t) * t) }

func (yc *YieldCurve) ShortRate(t float64) float64 {
	var (
		h      = driftStep
		lo, hi = t - h, t + h
	)
	if lo < 0 {
		lo = 0
	}
	return (yc.zero(hi)*hi - yc.zero(lo)*lo) / (hi - lo)
}
