// Package sabr supplies smile values from Hagan's SABR expansion. It is a
// volatility source for the local vol engine, there is no calibration here.
package sabr

import (
	"fmt"
	"math"

	"github.com/notargets/golocalvol/curve"
	"github.com/notargets/golocalvol/surface"
)

// Below this |z| the ratio z/x(z) uses its series expansion
const zTol = 1.e-8

type Parameters struct {
	Alpha, Beta, Rho, Nu float64
}

func (p Parameters) String() string {
	return fmt.Sprintf("alpha=%g beta=%g rho=%g nu=%g", p.Alpha, p.Beta, p.Rho, p.Nu)
}

// timeCorrection is the bracketed O(t) term of the expansion evaluated at fk
func (p Parameters) timeCorrection(fk float64) float64 {
	var (
		b1 = 1 - p.Beta
		fb = math.Pow(fk, 0.5*b1)
	)
	return b1*b1*p.Alpha*p.Alpha/(24*fb*fb) +
		p.Rho*p.Beta*p.Nu*p.Alpha/(4*fb) +
		(2-3*p.Rho*p.Rho)*p.Nu*p.Nu/24
}

/*
HaganVolatility is the lognormal (Black) implied volatility of Hagan et al.

	σ = α / ((fk)^((1-β)/2) (1 + (1-β)²/24 ln²(f/k) + (1-β)⁴/1920 ln⁴(f/k)))
	    · z/x(z) · (1 + [(1-β)²α²/(24(fk)^(1-β)) + ρβνα/(4(fk)^((1-β)/2)) + (2-3ρ²)ν²/24] t)

with z = ν/α (fk)^((1-β)/2) ln(f/k) and x(z) = ln((√(1-2ρz+z²)+z-ρ)/(1-ρ)).
Non-positive forwards or strikes give NaN.
*/
func HaganVolatility(f, k, t float64, p Parameters) float64 {
	if !(f > 0 && k > 0) {
		return math.NaN()
	}
	var (
		b1     = 1 - p.Beta
		fk     = f * k
		fb     = math.Pow(fk, 0.5*b1)
		lnfk   = math.Log(f / k)
		lnfk2  = lnfk * lnfk
		denom  = fb * (1 + b1*b1*lnfk2/24 + b1*b1*b1*b1*lnfk2*lnfk2/1920)
		z      = p.Nu / p.Alpha * fb * lnfk
		zOverX float64
	)
	if math.Abs(z) < zTol {
		zOverX = 1 - 0.5*p.Rho*z
	} else {
		x := math.Log((math.Sqrt(1-2*p.Rho*z+z*z) + z - p.Rho) / (1 - p.Rho))
		zOverX = z / x
	}
	return p.Alpha / denom * zOverX * (1 + p.timeCorrection(fk)*t)
}

// ATMAlpha finds the α that reproduces atmVol at k = f, by fixed point
// iteration on the ATM form of the expansion
func ATMAlpha(atmVol, f, t float64, p Parameters) float64 {
	var (
		fb = math.Pow(f, 1-p.Beta)
		q  = p
	)
	q.Alpha = atmVol * fb
	for i := 0; i < 50; i++ {
		next := atmVol * fb / (1 + q.timeCorrection(f*f)*t)
		if math.Abs(next-q.Alpha) < 1.e-15*fb {
			q.Alpha = next
			break
		}
		q.Alpha = next
	}
	return q.Alpha
}

// NewSmileSurface is the strike space Black vol surface σ(t, k) from the
// SABR parameters valid at each expiry, evaluated on the curve's forwards
func NewSmileSurface(fwd *curve.ForwardCurve, paramsAt func(t float64) Parameters) surface.Surface2D {
	return surface.NewFunctional("SABR", func(t, k float64) float64 {
		return HaganVolatility(fwd.Forward(t), k, t, paramsAt(t))
	})
}

// Flat uses the same parameters at every expiry
func Flat(p Parameters) func(t float64) Parameters {
	return func(float64) Parameters { return p }
}
