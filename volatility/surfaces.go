// Package volatility holds the typed volatility and price surfaces and the
// Dupire calculator that turns an implied volatility surface into a local
// volatility surface.
package volatility

import (
	"github.com/notargets/golocalvol/black"
	"github.com/notargets/golocalvol/curve"
	"github.com/notargets/golocalvol/surface"
)

// BlackVolatilitySurfaceStrike is the implied vol σ(t, k) by expiry and strike
type BlackVolatilitySurfaceStrike struct {
	surface.Surface2D
}

func NewBlackVolatilitySurfaceStrike(s surface.Surface2D) *BlackVolatilitySurfaceStrike {
	return &BlackVolatilitySurfaceStrike{Surface2D: s}
}

func (v *BlackVolatilitySurfaceStrike) Volatility(t, k float64) float64 { return v.Value(t, k) }

// WithShift is a parallel bump of the whole surface
func (v *BlackVolatilitySurfaceStrike) WithShift(shift float64) *BlackVolatilitySurfaceStrike {
	return NewBlackVolatilitySurfaceStrike(surface.NewShifted(v.Surface2D, shift))
}

// ToMoneyness reads the same smile against the forwards of fwd, with m = k/F(t)
func (v *BlackVolatilitySurfaceStrike) ToMoneyness(fwd *curve.ForwardCurve) *BlackVolatilitySurfaceMoneyness {
	s := v.Surface2D
	return &BlackVolatilitySurfaceMoneyness{
		Surface2D: surface.NewFunctional("moneyness", func(t, m float64) float64 {
			return s.Value(t, m*fwd.Forward(t))
		}),
		fwd: fwd,
	}
}

// BlackVolatilitySurfaceMoneyness is σ(t, m) with m = k/F(t) on its own forward curve
type BlackVolatilitySurfaceMoneyness struct {
	surface.Surface2D
	fwd *curve.ForwardCurve
}

func NewBlackVolatilitySurfaceMoneyness(s surface.Surface2D, fwd *curve.ForwardCurve) *BlackVolatilitySurfaceMoneyness {
	return &BlackVolatilitySurfaceMoneyness{Surface2D: s, fwd: fwd}
}

func (v *BlackVolatilitySurfaceMoneyness) ForwardCurve() *curve.ForwardCurve { return v.fwd }

func (v *BlackVolatilitySurfaceMoneyness) Volatility(t, m float64) float64 { return v.Value(t, m) }

// VolatilityForStrike converts the strike to moneyness on the surface's curve
func (v *BlackVolatilitySurfaceMoneyness) VolatilityForStrike(t, k float64) float64 {
	return v.Value(t, k/v.fwd.Forward(t))
}

func (v *BlackVolatilitySurfaceMoneyness) ToStrike() *BlackVolatilitySurfaceStrike {
	return NewBlackVolatilitySurfaceStrike(
		surface.NewFunctional("strike", v.VolatilityForStrike))
}

// LocalVolatilitySurfaceStrike is σ_LV(t, k) in strike (or spot) space
type LocalVolatilitySurfaceStrike struct {
	surface.Surface2D
}

func NewLocalVolatilitySurfaceStrike(s surface.Surface2D) *LocalVolatilitySurfaceStrike {
	return &LocalVolatilitySurfaceStrike{Surface2D: s}
}

func (lv *LocalVolatilitySurfaceStrike) Volatility(t, k float64) float64 { return lv.Value(t, k) }

func (lv *LocalVolatilitySurfaceStrike) WithShift(shift float64) *LocalVolatilitySurfaceStrike {
	return NewLocalVolatilitySurfaceStrike(surface.NewShifted(lv.Surface2D, shift))
}

func (lv *LocalVolatilitySurfaceStrike) ToMoneyness(fwd *curve.ForwardCurve) *LocalVolatilitySurfaceMoneyness {
	s := lv.Surface2D
	return &LocalVolatilitySurfaceMoneyness{
		Surface2D: surface.NewFunctional("moneyness", func(t, m float64) float64 {
			return s.Value(t, m*fwd.Forward(t))
		}),
		fwd: fwd,
	}
}

// ToAbsolute is the normal local vol σ_abs(t, k) = σ_LV(t, k) k
func (lv *LocalVolatilitySurfaceStrike) ToAbsolute() *AbsoluteLocalVolatilitySurface {
	s := lv.Surface2D
	return NewAbsoluteLocalVolatilitySurface(surface.NewFunctional("absolute", func(t, k float64) float64 {
		return s.Value(t, k) * k
	}))
}

type LocalVolatilitySurfaceMoneyness struct {
	surface.Surface2D
	fwd *curve.ForwardCurve
}

func NewLocalVolatilitySurfaceMoneyness(s surface.Surface2D, fwd *curve.ForwardCurve) *LocalVolatilitySurfaceMoneyness {
	return &LocalVolatilitySurfaceMoneyness{Surface2D: s, fwd: fwd}
}

func (lv *LocalVolatilitySurfaceMoneyness) ForwardCurve() *curve.ForwardCurve { return lv.fwd }

func (lv *LocalVolatilitySurfaceMoneyness) Volatility(t, m float64) float64 { return lv.Value(t, m) }

func (lv *LocalVolatilitySurfaceMoneyness) ToStrike() *LocalVolatilitySurfaceStrike {
	s, fwd := lv.Surface2D, lv.fwd
	return NewLocalVolatilitySurfaceStrike(surface.NewFunctional("strike", func(t, k float64) float64 {
		return s.Value(t, k/fwd.Forward(t))
	}))
}

// AbsoluteLocalVolatilitySurface is the normal local vol σ_abs(t, x), the
// diffusion coefficient of dS = σ_abs dW
type AbsoluteLocalVolatilitySurface struct {
	surface.Surface2D
}

func NewAbsoluteLocalVolatilitySurface(s surface.Surface2D) *AbsoluteLocalVolatilitySurface {
	return &AbsoluteLocalVolatilitySurface{Surface2D: s}
}

func (a *AbsoluteLocalVolatilitySurface) Volatility(t, x float64) float64 { return a.Value(t, x) }

// ToRelative divides by the level, σ_LV = σ_abs / x
func (a *AbsoluteLocalVolatilitySurface) ToRelative() *LocalVolatilitySurfaceStrike {
	s := a.Surface2D
	return NewLocalVolatilitySurfaceStrike(surface.NewFunctional("relative", func(t, x float64) float64 {
		return s.Value(t, x) / x
	}))
}

// PriceSurface is the undiscounted (forward) call price by expiry and strike
type PriceSurface struct {
	surface.Surface2D
}

func NewPriceSurface(s surface.Surface2D) *PriceSurface {
	return &PriceSurface{Surface2D: s}
}

func (p *PriceSurface) Price(t, k float64) float64 { return p.Value(t, k) }

// PriceSurfaceFromBlack prices forward calls off the implied vol surface
func PriceSurfaceFromBlack(vol *BlackVolatilitySurfaceStrike, fwd *curve.ForwardCurve) *PriceSurface {
	return NewPriceSurface(surface.NewFunctional("black price", func(t, k float64) float64 {
		return black.Price(fwd.Forward(t), k, t, vol.Value(t, k), true)
	}))
}
