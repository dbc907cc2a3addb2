// Package pde holds the convection-diffusion data bundle, the coefficient
// providers for the forward (Dupire) and backward (Black-Scholes type)
// problems, the theta method solver and its results.
package pde

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/golocalvol/curve"
	"github.com/notargets/golocalvol/surface"
	"github.com/notargets/golocalvol/volatility"
)

var ErrNilInput = errors.New("required input is nil")

/*
Coefficients define the parabolic equation

	∂u/∂t = a(t,x) ∂²u/∂x² + b(t,x) ∂u/∂x + c(t,x) u

in the solver's own time variable. For backward problems that variable is time
to expiry τ, and the providers map it back to calendar time themselves.
*/
type Coefficients struct {
	A, B, C surface.Surface2D
}

func NewCoefficients(a, b, c surface.Surface2D) (coef *Coefficients, err error) {
	if a == nil || b == nil || c == nil {
		err = fmt.Errorf("%w: coefficients need a, b and c", ErrNilInput)
		return
	}
	coef = &Coefficients{A: a, B: b, C: c}
	return
}

func newCoefficients(name string, a, b, c func(t, x float64) float64) *Coefficients {
	return &Coefficients{
		A: surface.NewFunctional(name+" a", a),
		B: surface.NewFunctional(name+" b", b),
		C: surface.NewFunctional(name+" c", c),
	}
}

// HeatEquation is ∂u/∂t = a ∂²u/∂x²
func HeatEquation(a float64) *Coefficients {
	return &Coefficients{A: surface.Constant(a), B: surface.Constant(0), C: surface.Constant(0)}
}

// BlackScholesCoefficients is the backward equation in spot for constant rates and vol
func BlackScholesCoefficients(r, q, sigma float64) *Coefficients {
	return newCoefficients("black scholes",
		func(_, x float64) float64 { return 0.5 * sigma * sigma * x * x },
		func(_, x float64) float64 { return (r - q) * x },
		func(_, _ float64) float64 { return -r },
	)
}

// LogBlackScholesCoefficients is the same problem in y = ln(spot)
func LogBlackScholesCoefficients(r, q, sigma float64) *Coefficients {
	return &Coefficients{
		A: surface.Constant(0.5 * sigma * sigma),
		B: surface.Constant(r - q - 0.5*sigma*sigma),
		C: surface.Constant(-r),
	}
}

// CEVCoefficients has diffusion σ x^β
func CEVCoefficients(r, beta, sigma float64) *Coefficients {
	return newCoefficients("cev",
		func(_, x float64) float64 { return 0.5 * sigma * sigma * math.Pow(x, 2*beta) },
		func(_, x float64) float64 { return r * x },
		func(_, _ float64) float64 { return -r },
	)
}

/*
BackwardLocalVolCoefficients prices in spot x at time to expiry τ:

	a = ½σ(T-τ, x)² x², b = μ(T-τ) x, c = -r(T-τ)

with μ the forward curve drift and r the short rate of yc.
*/
func BackwardLocalVolCoefficients(lv *volatility.LocalVolatilitySurfaceStrike, fwd *curve.ForwardCurve,
	yc *curve.YieldCurve, expiry float64) (coef *Coefficients, err error) {
	if lv == nil || fwd == nil || yc == nil {
		err = fmt.Errorf("%w: local vol, forward curve and yield curve are required", ErrNilInput)
		return
	}
	coef = newCoefficients("backward local vol",
		func(tau, x float64) float64 {
			sig := lv.Value(expiry-tau, x)
			return 0.5 * sig * sig * x * x
		},
		func(tau, x float64) float64 { return fwd.Drift(expiry-tau) * x },
		func(tau, _ float64) float64 { return -yc.ShortRate(expiry - tau) },
	)
	return
}

// LogBackwardLocalVolCoefficients is BackwardLocalVolCoefficients in y = ln(spot)
func LogBackwardLocalVolCoefficients(lv *volatility.LocalVolatilitySurfaceStrike, fwd *curve.ForwardCurve,
	yc *curve.YieldCurve, expiry float64) (coef *Coefficients, err error) {
	if lv == nil || fwd == nil || yc == nil {
		err = fmt.Errorf("%w: local vol, forward curve and yield curve are required", ErrNilInput)
		return
	}
	coef = newCoefficients("log backward local vol",
		func(tau, y float64) float64 {
			sig := lv.Value(expiry-tau, math.Exp(y))
			return 0.5 * sig * sig
		},
		func(tau, y float64) float64 {
			sig := lv.Value(expiry-tau, math.Exp(y))
			return fwd.Drift(expiry-tau) - 0.5*sig*sig
		},
		func(tau, _ float64) float64 { return -yc.ShortRate(expiry - tau) },
	)
	return
}

/*
BackwardLocalVolForwardCoefficients prices undiscounted values in f, the
forward to expiry seen at T-τ. The matching spot is f F(T-τ)/F(T), which is
where the local vol is read. The forward is a martingale so b = c = 0.
*/
func BackwardLocalVolForwardCoefficients(lv *volatility.LocalVolatilitySurfaceStrike, fwd *curve.ForwardCurve,
	expiry float64) (coef *Coefficients, err error) {
	if lv == nil || fwd == nil {
		err = fmt.Errorf("%w: local vol and forward curve are required", ErrNilInput)
		return
	}
	fT := fwd.Forward(expiry)
	coef = &Coefficients{
		A: surface.NewFunctional("backward local vol forward a", func(tau, f float64) float64 {
			t := expiry - tau
			sig := lv.Value(t, f*fwd.Forward(t)/fT)
			return 0.5 * sig * sig * f * f
		}),
		B: surface.Constant(0),
		C: surface.Constant(0),
	}
	return
}

/*
ForwardLocalVolCoefficients is the Dupire equation for undiscounted call
prices in strike:

	a = ½σ(t, k)² k², b = -μ(t) k, c = μ(t)
*/
func ForwardLocalVolCoefficients(lv *volatility.LocalVolatilitySurfaceStrike, fwd *curve.ForwardCurve) (coef *Coefficients, err error) {
	if lv == nil || fwd == nil {
		err = fmt.Errorf("%w: local vol and forward curve are required", ErrNilInput)
		return
	}
	coef = newCoefficients("forward local vol",
		func(t, k float64) float64 {
			sig := lv.Value(t, k)
			return 0.5 * sig * sig * k * k
		},
		func(t, k float64) float64 { return -fwd.Drift(t) * k },
		func(t, _ float64) float64 { return fwd.Drift(t) },
	)
	return
}

// ForwardLocalVolMoneynessCoefficients is the driftless Dupire equation for
// call prices in units of the forward, in moneyness m = k/F(t)
func ForwardLocalVolMoneynessCoefficients(lv *volatility.LocalVolatilitySurfaceMoneyness) (coef *Coefficients, err error) {
	if lv == nil {
		err = fmt.Errorf("%w: local vol is required", ErrNilInput)
		return
	}
	coef = &Coefficients{
		A: surface.NewFunctional("forward moneyness a", func(t, m float64) float64 {
			sig := lv.Value(t, m)
			return 0.5 * sig * sig * m * m
		}),
		B: surface.Constant(0),
		C: surface.Constant(0),
	}
	return
}
