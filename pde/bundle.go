package pde

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/golocalvol/boundary"
	"github.com/notargets/golocalvol/curve"
	"github.com/notargets/golocalvol/grid"
	"github.com/notargets/golocalvol/mesh"
	"github.com/notargets/golocalvol/surface"
	"github.com/notargets/golocalvol/types"
	"github.com/notargets/golocalvol/volatility"
)

var ErrBoundarySide = errors.New("boundary condition on the wrong side")

/*
DataBundle is everything one solve needs. Coefficients, boundary values and
the free boundary are all functions of grid time; CalendarTime converts.
FreeBoundary is only read by the PSOR solve mode, as the obstacle the solution
is held above.
*/
type DataBundle struct {
	Coefficients *Coefficients
	Initial      InitialCondition
	Grid         *grid.PDEGrid1D
	Lower, Upper boundary.Condition
	Direction    types.Direction
	Expiry       float64
	FreeBoundary surface.Surface2D
}

func NewDataBundle(coef *Coefficients, initial InitialCondition, g *grid.PDEGrid1D,
	lower, upper boundary.Condition, dir types.Direction, expiry float64) (db *DataBundle, err error) {
	if coef == nil || initial == nil || g == nil {
		err = fmt.Errorf("%w: data bundle needs coefficients, initial condition and grid", ErrNilInput)
		return
	}
	if coef.A == nil || coef.B == nil || coef.C == nil {
		err = fmt.Errorf("%w: incomplete coefficients", ErrNilInput)
		return
	}
	if lower.Side != boundary.Lower {
		err = fmt.Errorf("%w: lower condition is %s", ErrBoundarySide, lower)
		return
	}
	if upper.Side != boundary.Upper {
		err = fmt.Errorf("%w: upper condition is %s", ErrBoundarySide, upper)
		return
	}
	if expiry < 0 || math.IsNaN(expiry) {
		err = fmt.Errorf("invalid expiry %g", expiry)
		return
	}
	db = &DataBundle{
		Coefficients: coef,
		Initial:      initial,
		Grid:         g,
		Lower:        lower,
		Upper:        upper,
		Direction:    dir,
		Expiry:       expiry,
	}
	return
}

// WithFreeBoundary returns a copy carrying an obstacle for PSOR
func (db *DataBundle) WithFreeBoundary(fb surface.Surface2D) *DataBundle {
	out := *db
	out.FreeBoundary = fb
	return &out
}

// CalendarTime maps grid time to calendar time
func (db *DataBundle) CalendarTime(tau float64) float64 {
	if db.Direction == types.Backward {
		return db.Expiry - tau
	}
	return tau
}

/*
GridSpec holds the grid parameters that do not depend on the scheme. The time
mesh is exponential from zero to the expiry with TimeBunching as λ, so positive
values cluster steps at the initial condition. The space mesh is built by
SpaceMesh type between MinX and MaxX, bunched around CenterX.
*/
type GridSpec struct {
	TimeNodes, SpaceNodes int
	TimeBunching          float64
	SpaceMesh             types.MeshType
	SpaceBunching         float64
	MinX, MaxX, CenterX   float64
}

func (gs GridSpec) NewGrid(expiry float64) (g *grid.PDEGrid1D, err error) {
	var (
		tm *mesh.Exponential
		sm mesh.MeshingFunction
	)
	if tm, err = mesh.NewExponential(0, expiry, gs.TimeNodes, gs.TimeBunching); err != nil {
		return
	}
	if sm, err = mesh.NewMesh(gs.SpaceMesh, gs.MinX, gs.MaxX, gs.CenterX, gs.SpaceNodes, gs.SpaceBunching); err != nil {
		return
	}
	return grid.NewPDEGrid1D(tm, sm)
}

// ForwardStrikeBundle prices undiscounted calls across strikes. A call struck
// at MinX is worth F(t) - MinX, which is exact at zero strike.
func ForwardStrikeBundle(lv *volatility.LocalVolatilitySurfaceStrike, fwd *curve.ForwardCurve,
	expiry float64, gs GridSpec) (db *DataBundle, err error) {
	var (
		coef *Coefficients
		g    *grid.PDEGrid1D
	)
	if coef, err = ForwardLocalVolCoefficients(lv, fwd); err != nil {
		return
	}
	if g, err = gs.NewGrid(expiry); err != nil {
		return
	}
	lower := boundary.NewDirichletFunc(boundary.Lower, func(t float64) float64 {
		return fwd.Forward(t) - gs.MinX
	})
	upper := boundary.NewDirichlet(boundary.Upper, 0)
	return NewDataBundle(coef, ForwardCallInitial{Spot: fwd.Spot()}, g, lower, upper, types.Forward, expiry)
}

/*
ForwardMoneynessBundle prices calls or puts in units of the forward across
moneyness. A low moneyness call is worth 1 - m and a put is worthless; at high
moneyness the call vanishes and the put has unit slope. Callers can swap the
call's lower row for the Neumann form, boundary.NewNeumann(boundary.Lower, -1).
*/
func ForwardMoneynessBundle(lv *volatility.LocalVolatilitySurfaceMoneyness, expiry float64,
	isCall bool, gs GridSpec) (db *DataBundle, err error) {
	var (
		coef         *Coefficients
		g            *grid.PDEGrid1D
		lower, upper boundary.Condition
	)
	if coef, err = ForwardLocalVolMoneynessCoefficients(lv); err != nil {
		return
	}
	if !(gs.MinX > 0) {
		err = fmt.Errorf("%w: moneyness grid must start above zero, have %g", mesh.ErrInvalidRange, gs.MinX)
		return
	}
	if g, err = gs.NewGrid(expiry); err != nil {
		return
	}
	if isCall {
		lower = boundary.NewDirichlet(boundary.Lower, 1-gs.MinX)
		upper = boundary.NewDirichlet(boundary.Upper, 0)
	} else {
		lower = boundary.NewDirichlet(boundary.Lower, 0)
		upper = boundary.NewNeumann(boundary.Upper, 1)
	}
	return NewDataBundle(coef, MoneynessInitial(isCall), g, lower, upper, types.Forward, expiry)
}

// forwardIntrinsic is the discounted intrinsic value at spot x and time to
// expiry tau, read on the forward the spot implies at expiry
func forwardIntrinsic(fwd *curve.ForwardCurve, yc *curve.YieldCurve, payoff InitialCondition,
	expiry float64) func(x, tau float64) float64 {
	var (
		fT = fwd.Forward(expiry)
		dT = yc.DiscountFactor(expiry)
	)
	return func(x, tau float64) float64 {
		t := expiry - tau
		return dT / yc.DiscountFactor(t) * payoff.Value(x*fT/fwd.Forward(t))
	}
}

/*
BackwardBundle prices one European option in spot, marching time to expiry
from the payoff. Both boundaries are Dirichlet at the discounted intrinsic
value on the forward, which is exact far from the strike.
*/
func BackwardBundle(lv *volatility.LocalVolatilitySurfaceStrike, fwd *curve.ForwardCurve, yc *curve.YieldCurve,
	strike, expiry float64, isCall bool, gs GridSpec) (db *DataBundle, err error) {
	var (
		coef *Coefficients
		g    *grid.PDEGrid1D
	)
	if coef, err = BackwardLocalVolCoefficients(lv, fwd, yc, expiry); err != nil {
		return
	}
	if g, err = gs.NewGrid(expiry); err != nil {
		return
	}
	payoff := Payoff(strike, isCall)
	intr := forwardIntrinsic(fwd, yc, payoff, expiry)
	lower := boundary.NewDirichletFunc(boundary.Lower, func(tau float64) float64 { return intr(gs.MinX, tau) })
	upper := boundary.NewDirichletFunc(boundary.Upper, func(tau float64) float64 { return intr(gs.MaxX, tau) })
	return NewDataBundle(coef, payoff, g, lower, upper, types.Backward, expiry)
}

// AmericanBackwardBundle adds early exercise, the payoff is the free boundary
// and the boundary values are never below immediate exercise
func AmericanBackwardBundle(lv *volatility.LocalVolatilitySurfaceStrike, fwd *curve.ForwardCurve, yc *curve.YieldCurve,
	strike, expiry float64, isCall bool, gs GridSpec) (db *DataBundle, err error) {
	if db, err = BackwardBundle(lv, fwd, yc, strike, expiry, isCall, gs); err != nil {
		return
	}
	var (
		payoff = Payoff(strike, isCall)
		intr   = forwardIntrinsic(fwd, yc, payoff, expiry)
	)
	db.Lower = boundary.NewDirichletFunc(boundary.Lower, func(tau float64) float64 {
		return math.Max(intr(gs.MinX, tau), payoff.Value(gs.MinX))
	})
	db.Upper = boundary.NewDirichletFunc(boundary.Upper, func(tau float64) float64 {
		return math.Max(intr(gs.MaxX, tau), payoff.Value(gs.MaxX))
	})
	db.FreeBoundary = surface.NewFunctional("exercise", func(_, x float64) float64 { return payoff.Value(x) })
	return
}
