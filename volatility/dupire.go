package volatility

import (
	"math"

	"github.com/notargets/golocalvol/curve"
	"github.com/notargets/golocalvol/surface"
	"gonum.org/v1/gonum/diff/fd"
)

const DefaultEpsilon = 1.e-3

/*
DupireCalculator differentiates a surface with gonum diff/fd and applies
Dupire's formula. Epsilon is relative in strike (dk = ε k) and absolute in
time. Where the formula is degenerate (non-positive denominator, negative
local variance, non-positive strike) the result is NaN and callers decide
what to do with the point.
*/
type DupireCalculator struct {
	Epsilon float64
}

func NewDupireCalculator(epsilon ...float64) (dc *DupireCalculator) {
	dc = &DupireCalculator{Epsilon: DefaultEpsilon}
	if len(epsilon) > 0 && epsilon[0] > 0 {
		dc.Epsilon = epsilon[0]
	}
	return
}

// timeSettings is central in time unless t is within ε of zero, where it
// steps forward only
func (dc *DupireCalculator) timeSettings(t, origin float64) *fd.Settings {
	formula := fd.Central
	if t < dc.Epsilon {
		formula = fd.Forward
	}
	return &fd.Settings{Formula: formula, Step: dc.Epsilon, OriginKnown: true, OriginValue: origin}
}

// strikeSettings uses the relative step ε k
func (dc *DupireCalculator) strikeSettings(formula fd.Formula, k, origin float64) *fd.Settings {
	return &fd.Settings{Formula: formula, Step: dc.Epsilon * k, OriginKnown: true, OriginValue: origin}
}

// sections returns the surface along k at fixed t, and along t at fixed k
func sections(s surface.Surface2D, t, k float64) (inK, inT func(float64) float64) {
	inK = func(x float64) float64 { return s.Value(t, x) }
	inT = func(x float64) float64 { return s.Value(x, k) }
	return
}

type smileDerivs struct {
	sig, sigT, sigK, sigKK float64
}

func (dc *DupireCalculator) derivatives(s surface.Surface2D, t, k float64) (d smileDerivs) {
	inK, inT := sections(s, t, k)
	d.sig = s.Value(t, k)
	d.sigK = fd.Derivative(inK, k, dc.strikeSettings(fd.Central, k, d.sig))
	d.sigKK = fd.Derivative(inK, k, dc.strikeSettings(fd.Central2nd, k, d.sig))
	d.sigT = fd.Derivative(inT, t, dc.timeSettings(t, d.sig))
	return
}

/*
gatheral combines the smile derivatives at (t, k):

	σ_LV² = (σ² + 2σt(σ_t + μkσ_k)) / ((1 + k d1√t σ_k)² + k²tσ(σ_kk - d1√t σ_k²))

lnFK is ln(F/k), so d1√t = lnFK/σ + σt/2, which stays finite as t goes to zero.
*/
func gatheral(d smileDerivs, t, k, lnFK, mu float64) float64 {
	if !(d.sig > 0) || !(k > 0) {
		return math.NaN()
	}
	var (
		d1RootT = lnFK/d.sig + 0.5*d.sig*t
		a       = 1 + k*d1RootT*d.sigK
		num     = d.sig*d.sig + 2*d.sig*t*(d.sigT+mu*k*d.sigK)
		den     = a*a + k*k*t*d.sig*(d.sigKK-d1RootT*d.sigK*d.sigK)
	)
	if !(den > 0) || num < 0 {
		return math.NaN()
	}
	return math.Sqrt(num / den)
}

// LocalVolatility at one (t, k) from a strike space implied vol surface
func (dc *DupireCalculator) LocalVolatility(vol *BlackVolatilitySurfaceStrike, fwd *curve.ForwardCurve, t, k float64) float64 {
	if !(k > 0) {
		return math.NaN()
	}
	d := dc.derivatives(vol.Surface2D, t, k)
	return gatheral(d, t, k, math.Log(fwd.Forward(t)/k), fwd.Drift(t))
}

// LocalVolatilitySurface evaluates Dupire lazily at each query
func (dc *DupireCalculator) LocalVolatilitySurface(vol *BlackVolatilitySurfaceStrike, fwd *curve.ForwardCurve) *LocalVolatilitySurfaceStrike {
	return NewLocalVolatilitySurfaceStrike(surface.NewFunctional("dupire", func(t, k float64) float64 {
		return dc.LocalVolatility(vol, fwd, t, k)
	}))
}

// LocalVolatilityMoneyness uses the drift free form in m = k/F(t), where the
// forward is identically one
func (dc *DupireCalculator) LocalVolatilityMoneyness(vol *BlackVolatilitySurfaceMoneyness, t, m float64) float64 {
	if !(m > 0) {
		return math.NaN()
	}
	d := dc.derivatives(vol.Surface2D, t, m)
	return gatheral(d, t, m, -math.Log(m), 0)
}

func (dc *DupireCalculator) LocalVolatilitySurfaceMoneyness(vol *BlackVolatilitySurfaceMoneyness) *LocalVolatilitySurfaceMoneyness {
	return NewLocalVolatilitySurfaceMoneyness(surface.NewFunctional("dupire moneyness", func(t, m float64) float64 {
		return dc.LocalVolatilityMoneyness(vol, t, m)
	}), vol.ForwardCurve())
}

/*
AbsoluteLocalVolatility works on undiscounted call prices U(t, k), which obey

	U_t = ½σ_abs² U_kk - μ k U_k + μ U

so σ_abs² = 2(U_t + μkU_k - μU) / U_kk.
*/
func (dc *DupireCalculator) AbsoluteLocalVolatility(price *PriceSurface, fwd *curve.ForwardCurve, t, k float64) float64 {
	if !(k > 0) {
		return math.NaN()
	}
	var (
		inK, inT = sections(price.Surface2D, t, k)
		mu       = fwd.Drift(t)
		u        = price.Value(t, k)
		uK       = fd.Derivative(inK, k, dc.strikeSettings(fd.Central, k, u))
		uKK      = fd.Derivative(inK, k, dc.strikeSettings(fd.Central2nd, k, u))
		uT       = fd.Derivative(inT, t, dc.timeSettings(t, u))
		num      = 2 * (uT + mu*k*uK - mu*u)
	)
	if !(uKK > 0) || num < 0 {
		return math.NaN()
	}
	return math.Sqrt(num / uKK)
}

func (dc *DupireCalculator) AbsoluteLocalVolatilityFromPrice(price *PriceSurface, fwd *curve.ForwardCurve) *AbsoluteLocalVolatilitySurface {
	return NewAbsoluteLocalVolatilitySurface(surface.NewFunctional("dupire price", func(t, k float64) float64 {
		return dc.AbsoluteLocalVolatility(price, fwd, t, k)
	}))
}

func (dc *DupireCalculator) LocalVolatilityFromPrice(price *PriceSurface, fwd *curve.ForwardCurve) *LocalVolatilitySurfaceStrike {
	return dc.AbsoluteLocalVolatilityFromPrice(price, fwd).ToRelative()
}
