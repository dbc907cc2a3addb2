package pde

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/notargets/golocalvol/grid"
	"github.com/notargets/golocalvol/types"
	"github.com/notargets/golocalvol/utils"
)

var (
	ErrInvalidTheta     = errors.New("theta must be in [0, 1]")
	ErrPSORNotConverged = errors.New("projected SOR did not converge")
	ErrNoFreeBoundary   = errors.New("PSOR needs a free boundary")
)

const (
	DefaultPSORTolerance     = 1.e-8
	DefaultPSORMaxIterations = 100000
	DefaultPSOROmega         = 1.
)

/*
ThetaSolver marches a DataBundle with the theta method

	(I - θΔt L_{n+1}) u_{n+1} = (I + (1-θ)Δt L_n) u_n

θ = 0 is explicit Euler, θ = 1 implicit Euler and θ = 0.5 Crank-Nicolson.
Boundary rows are replaced by the bundle's conditions. A solver holds no
state between calls and can be shared by goroutines.
*/
type ThetaSolver struct {
	Theta             float64
	Mode              types.SolverMode
	FullResults       bool
	PSORTolerance     float64
	PSORMaxIterations int
	PSOROmega         float64
}

type Option func(ts *ThetaSolver)

func WithMode(mode types.SolverMode) Option {
	return func(ts *ThetaSolver) { ts.Mode = mode }
}

func WithPSOR(tolerance float64, maxIterations int, omega float64) Option {
	return func(ts *ThetaSolver) {
		ts.Mode = types.PSOR
		ts.PSORTolerance, ts.PSORMaxIterations, ts.PSOROmega = tolerance, maxIterations, omega
	}
}

func NewThetaSolver(theta float64, fullResults bool, opts ...Option) (ts *ThetaSolver, err error) {
	if !(theta >= 0 && theta <= 1) {
		err = fmt.Errorf("%w: have %g", ErrInvalidTheta, theta)
		return
	}
	ts = &ThetaSolver{
		Theta:             theta,
		Mode:              types.Tridiagonal,
		FullResults:       fullResults,
		PSORTolerance:     DefaultPSORTolerance,
		PSORMaxIterations: DefaultPSORMaxIterations,
		PSOROmega:         DefaultPSOROmega,
	}
	for _, opt := range opts {
		opt(ts)
	}
	if ts.Mode == types.PSOR && !(ts.PSOROmega > 0 && ts.PSOROmega < 2) {
		err = fmt.Errorf("PSOR relaxation must be in (0, 2), have %g", ts.PSOROmega)
		return nil, err
	}
	return
}

// operator holds the bands of L at one time: L u_j = lo_j u_{j-1} + di_j u_j + up_j u_{j+1}.
// Boundary entries stay zero.
type operator struct {
	lo, di, up []float64
}

func newOperator(nx int) operator {
	return operator{lo: make([]float64, nx), di: make([]float64, nx), up: make([]float64, nx)}
}

func (op operator) assemble(coef *Coefficients, g *grid.PDEGrid1D, t float64) {
	var (
		nx      = g.NumSpaceNodes()
		a, b, c float64
		x       float64
	)
	for j := 1; j < nx-1; j++ {
		x = g.SpaceNode(j)
		a, b, c = coef.A.Value(t, x), coef.B.Value(t, x), coef.C.Value(t, x)
		w1, w2 := g.FirstDerivative(j).Weights, g.SecondDerivative(j).Weights
		op.lo[j] = a*w2[0] + b*w1[0]
		op.di[j] = a*w2[1] + b*w1[1] + c
		op.up[j] = a*w2[2] + b*w1[2]
	}
}

// Solve runs the march. The context is checked between time steps.
func (ts *ThetaSolver) Solve(ctx context.Context, db *DataBundle) (res PDEResults, err error) {
	if db == nil || db.Grid == nil || db.Coefficients == nil || db.Initial == nil {
		err = fmt.Errorf("%w: incomplete data bundle", ErrNilInput)
		return
	}
	if ts.Mode == types.PSOR && db.FreeBoundary == nil {
		err = ErrNoFreeBoundary
		return
	}
	var (
		g           = db.Grid
		nx, nt      = g.NumSpaceNodes(), g.NumTimeNodes()
		u           = make([]float64, nx)
		rhs         = make([]float64, nx)
		explicit    = newOperator(nx)
		implicit    = newOperator(nx)
		td          = utils.NewTridiagonal(nx)
		rhsOp       = utils.NewTridiagonal(nx)
		theta       = ts.Theta
		slices      [][]float64
		t0, t1, dt  float64
		psorIterSum int
	)
	for j := range u {
		u[j] = db.Initial.Value(g.SpaceNode(j))
	}
	if ts.FullResults {
		slices = make([][]float64, 0, nt)
		slices = append(slices, append([]float64(nil), u...))
	}
	glog.V(2).Infof("theta solve: %s, %s, θ=%g, %d time by %d space nodes",
		db.Direction, ts.Mode, theta, nt, nx)
	explicit.assemble(db.Coefficients, g, g.TimeNode(0))
	for n := 0; n < nt-1; n++ {
		if err = ctx.Err(); err != nil {
			return
		}
		t0, t1 = g.TimeNode(n), g.TimeNode(n+1)
		dt = t1 - t0
		implicit.assemble(db.Coefficients, g, t1)
		for j := 1; j < nx-1; j++ {
			td.D[j] = 1 - theta*dt*implicit.di[j]
			td.L[j-1] = -theta * dt * implicit.lo[j]
			td.U[j] = -theta * dt * implicit.up[j]
		}

		if ts.Mode == types.LUDecomp {
			// Explicit side through the assembled sparse operator
			for j := 1; j < nx-1; j++ {
				rhsOp.D[j] = 1 + (1-theta)*dt*explicit.di[j]
				rhsOp.L[j-1] = (1 - theta) * dt * explicit.lo[j]
				rhsOp.U[j] = (1 - theta) * dt * explicit.up[j]
			}
			rhs = rhsOp.ToOperator().MulVec(u)
		} else {
			for j := 1; j < nx-1; j++ {
				rhs[j] = u[j] + (1-theta)*dt*(explicit.lo[j]*u[j-1]+explicit.di[j]*u[j]+explicit.up[j]*u[j+1])
			}
		}
		db.Lower.SetRow(td, rhs, g, t1)
		db.Upper.SetRow(td, rhs, g, t1)

		switch ts.Mode {
		case types.LUDecomp:
			u, err = td.SolveLU(rhs)
		case types.PSOR:
			var iters int
			u, iters, err = ts.psor(td, rhs, db, t1)
			psorIterSum += iters
		default:
			u, err = td.Solve(rhs)
		}
		if err != nil {
			err = fmt.Errorf("time step %d (t = %g): %w", n+1, t1, err)
			return
		}
		if ts.FullResults {
			slices = append(slices, u)
		}
		// L_{n+1} is the explicit operator of the next step
		explicit, implicit = implicit, explicit
	}
	if ts.Mode == types.PSOR {
		glog.V(2).Infof("theta solve: %d PSOR sweeps over %d steps", psorIterSum, nt-1)
	}
	if glog.V(3) {
		t1 = g.TimeNode(nt - 1)
		glog.Infof("theta solve: boundary residuals %g (lower), %g (upper)",
			db.Lower.Residual(g, u, t1), db.Upper.Residual(g, u, t1))
	}
	if ts.FullResults {
		return NewPDEFullResults1D(g, db.Direction, slices)
	}
	return NewPDEResults1D(g, db.Direction, u)
}

/*
psor solves the linear complementarity problem

	A u >= rhs, u >= obstacle, (A u - rhs)(u - obstacle) = 0

by projected Gauss-Seidel with relaxation, starting from the unconstrained
solution lifted onto the obstacle. Boundary rows are not projected.
*/
func (ts *ThetaSolver) psor(td *utils.Tridiagonal, rhs []float64, db *DataBundle, t float64) (x []float64, iters int, err error) {
	var (
		nx       = len(rhs)
		g        = db.Grid
		obstacle = make([]float64, nx)
		omega    = ts.PSOROmega
		sum, v   float64
		errSq    float64
		tolSq    = ts.PSORTolerance * ts.PSORTolerance
	)
	for j := range obstacle {
		if td.D[j] == 0 {
			err = fmt.Errorf("%w: PSOR row %d", utils.ErrZeroPivot, j)
			return
		}
		obstacle[j] = db.FreeBoundary.Value(t, g.SpaceNode(j))
	}
	if x, err = td.Solve(rhs); err != nil {
		return
	}
	for j := 1; j < nx-1; j++ {
		x[j] = math.Max(x[j], obstacle[j])
	}
	for iters = 1; iters <= ts.PSORMaxIterations; iters++ {
		errSq = 0
		for j := 0; j < nx; j++ {
			sum = rhs[j]
			if j > 0 {
				sum -= td.L[j-1] * x[j-1]
			}
			if j < nx-1 {
				sum -= td.U[j] * x[j+1]
			}
			v = (1-omega)*x[j] + omega*sum/td.D[j]
			if j > 0 && j < nx-1 {
				v = math.Max(v, obstacle[j])
			}
			errSq += (v - x[j]) * (v - x[j])
			x[j] = v
		}
		if errSq < tolSq {
			return
		}
	}
	err = fmt.Errorf("%w: residual %g after %d iterations", ErrPSORNotConverged, math.Sqrt(errSq), ts.PSORMaxIterations)
	glog.Warning(err)
	return
}
