// Package black holds the undiscounted Black formula on a forward, its Greeks
// and the implied volatility inversion used to report PDE prices as vols.
package black

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	MaxIterations = 100
	Tolerance     = 1.e-12
	maxVol        = 10.
	minVol        = 1.e-8
)

var (
	ErrPriceOutOfBounds = errors.New("price outside no-arbitrage bounds")
	ErrNoConvergence    = errors.New("implied volatility failed to converge")
)

func normCDF(x float64) float64 { return distuv.UnitNormal.CDF(x) }
func normPDF(x float64) float64 { return distuv.UnitNormal.Prob(x) }

// D1D2 for forward f, strike k, expiry t and volatility sigma
func D1D2(f, k, t, sigma float64) (d1, d2 float64) {
	var (
		sigRootT = sigma * math.Sqrt(t)
	)
	d1 = (math.Log(f/k) + 0.5*sigRootT*sigRootT) / sigRootT
	d2 = d1 - sigRootT
	return
}

func intrinsic(f, k float64, isCall bool) float64 {
	if isCall {
		return math.Max(f-k, 0)
	}
	return math.Max(k-f, 0)
}

// Price is the undiscounted Black price
func Price(f, k, t, sigma float64, isCall bool) float64 {
	if k <= 0 {
		if isCall {
			return f - k
		}
		return 0
	}
	if t <= 0 || sigma <= 0 {
		return intrinsic(f, k, isCall)
	}
	d1, d2 := D1D2(f, k, t, sigma)
	if isCall {
		return f*normCDF(d1) - k*normCDF(d2)
	}
	return k*normCDF(-d2) - f*normCDF(-d1)
}

// Delta is dV/df
func Delta(f, k, t, sigma float64, isCall bool) float64 {
	d1, _ := D1D2(f, k, t, sigma)
	if isCall {
		return normCDF(d1)
	}
	return normCDF(d1) - 1
}

// DualDelta is dV/dk
func DualDelta(f, k, t, sigma float64, isCall bool) float64 {
	_, d2 := D1D2(f, k, t, sigma)
	if isCall {
		return -normCDF(d2)
	}
	return normCDF(-d2)
}

func Gamma(f, k, t, sigma float64) float64 {
	d1, _ := D1D2(f, k, t, sigma)
	return normPDF(d1) / (f * sigma * math.Sqrt(t))
}

func DualGamma(f, k, t, sigma float64) float64 {
	_, d2 := D1D2(f, k, t, sigma)
	return normPDF(d2) / (k * sigma * math.Sqrt(t))
}

func Vega(f, k, t, sigma float64) float64 {
	d1, _ := D1D2(f, k, t, sigma)
	return f * normPDF(d1) * math.Sqrt(t)
}

// Vanna is d2V/df dsigma
func Vanna(f, k, t, sigma float64) float64 {
	d1, d2 := D1D2(f, k, t, sigma)
	return -normPDF(d1) * d2 / sigma
}

// Vomma is d2V/dsigma2
func Vomma(f, k, t, sigma float64) float64 {
	d1, d2 := D1D2(f, k, t, sigma)
	return Vega(f, k, t, sigma) * d1 * d2 / sigma
}

/*
ImpliedVolatility inverts the undiscounted Black price. Newton steps are taken
inside a shrinking bracket and replaced by bisection whenever they leave it or
the vega vanishes.
*/
func ImpliedVolatility(price, f, k, t float64, isCall bool) (sigma float64, err error) {
	var (
		lo, hi    = minVol, maxVol
		upper     = f
		intr      = intrinsic(f, k, isCall)
		tol       = Tolerance * math.Max(f, k)
		diff, vg  float64
		sigmaNext float64
	)
	if !isCall {
		upper = k
	}
	if t <= 0 || k <= 0 || !(price > intr) || !(price < upper) {
		err = fmt.Errorf("%w: price %g, intrinsic %g, limit %g", ErrPriceOutOfBounds, price, intr, upper)
		glog.V(1).Infof("implied vol: %v", err)
		return
	}
	// Brenner-Subrahmanyam start, kept inside the bracket
	sigma = math.Sqrt(2*math.Pi/t) * price / f
	if isCall && k < f || !isCall && k > f {
		sigma = math.Sqrt(2*math.Pi/t) * (price - intr) / f
	}
	sigma = math.Max(0.05, math.Min(sigma, 2))
	for it := 0; it < MaxIterations; it++ {
		diff = Price(f, k, t, sigma, isCall) - price
		if math.Abs(diff) < tol {
			return
		}
		if diff > 0 {
			hi = sigma
		} else {
			lo = sigma
		}
		vg = Vega(f, k, t, sigma)
		sigmaNext = sigma - diff/vg
		if vg < 1.e-300 || !(sigmaNext > lo && sigmaNext < hi) {
			sigmaNext = 0.5 * (lo + hi)
		}
		if math.Abs(sigmaNext-sigma) < 1.e-15 {
			sigma = sigmaNext
			return
		}
		sigma = sigmaNext
	}
	err = fmt.Errorf("%w: f %g, k %g, t %g, price %g", ErrNoConvergence, f, k, t, price)
	glog.Warningf("implied vol: %v", err)
	return
}
