package boundary

import (
	"fmt"

	"github.com/notargets/golocalvol/grid"
	"github.com/notargets/golocalvol/utils"
)

type Kind uint8

const (
	Dirichlet Kind = iota
	Neumann
)

func (k Kind) String() string {
	switch k {
	case Dirichlet:
		return "Dirichlet"
	case Neumann:
		return "Neumann"
	}
	return "Unknown"
}

type Side uint8

const (
	Lower Side = iota
	Upper
)

func (s Side) String() string {
	if s == Lower {
		return "Lower"
	}
	return "Upper"
}

/*
Condition is a boundary condition on the lower (index 0) or upper (index
Nx-1) space boundary. A Dirichlet condition fixes u, a Neumann condition fixes
du/dx. The target is either constant or a function of time.

A Neumann row is the three point one-sided difference, which is second order
on a non-uniform grid. SetRow folds its third node into the neighbouring
interior row so the theta system stays tri-diagonal.
*/
type Condition struct {
	Kind  Kind
	Side  Side
	value float64
	fn    func(t float64) float64
}

func NewDirichlet(side Side, value float64) Condition {
	return Condition{Kind: Dirichlet, Side: side, value: value}
}

func NewDirichletFunc(side Side, fn func(t float64) float64) Condition {
	return Condition{Kind: Dirichlet, Side: side, fn: fn}
}

func NewNeumann(side Side, derivative float64) Condition {
	return Condition{Kind: Neumann, Side: side, value: derivative}
}

func NewNeumannFunc(side Side, fn func(t float64) float64) Condition {
	return Condition{Kind: Neumann, Side: side, fn: fn}
}

// Value is the right hand side of the boundary row at time t
func (bc Condition) Value(t float64) float64 {
	if bc.fn != nil {
		return bc.fn(t)
	}
	return bc.value
}

// Index is the space node the condition applies to
func (bc Condition) Index(g *grid.PDEGrid1D) int {
	if bc.Side == Lower {
		return 0
	}
	return g.NumSpaceNodes() - 1
}

// Stencil is the condition's row over three nodes at the boundary
func (bc Condition) Stencil(g *grid.PDEGrid1D) grid.Stencil {
	nx := g.NumSpaceNodes()
	switch bc.Kind {
	case Dirichlet:
		if bc.Side == Lower {
			return grid.Stencil{Start: 0, Weights: [3]float64{1, 0, 0}}
		}
		return grid.Stencil{Start: nx - 3, Weights: [3]float64{0, 0, 1}}
	case Neumann:
		if bc.Side == Lower {
			return g.FirstDerivativeForward(0)
		}
		return g.FirstDerivativeBackward(nx - 1)
	}
	panic(fmt.Sprintf("unknown boundary kind %d", bc.Kind))
}

// MatrixRow is the two point row on the boundary node and its neighbour. It
// is first order for Neumann and only used when SetRow cannot fold.
func (bc Condition) MatrixRow(g *grid.PDEGrid1D) (diag, off float64) {
	switch bc.Kind {
	case Dirichlet:
		return 1, 0
	case Neumann:
		if bc.Side == Lower {
			dx := g.SpaceStep(0)
			return -1 / dx, 1 / dx
		}
		dx := g.SpaceStep(g.NumSpaceNodes() - 2)
		return 1 / dx, -1 / dx
	}
	panic(fmt.Sprintf("unknown boundary kind %d", bc.Kind))
}

/*
SetRow writes the boundary row of the system td x = rhs at time t, with the
interior rows and rhs already in place. The node two in from the edge is
eliminated with the adjacent interior row,

	lower: row0 -= (w2 / U1) row1
	upper: row(n-1) -= (w(n-3) / L(n-2)) row(n-2)

When that row does not reach the node (an explicit step has a diagonal
interior) the two point row is used instead.
*/
func (bc Condition) SetRow(td *utils.Tridiagonal, rhs []float64, g *grid.PDEGrid1D, t float64) {
	var (
		nx = len(td.D)
		w  = bc.Stencil(g).Weights
		v  = bc.Value(t)
	)
	if bc.Side == Lower {
		if c := td.U[1]; w[2] != 0 && c != 0 {
			f := w[2] / c
			td.D[0], td.U[0] = w[0]-f*td.L[0], w[1]-f*td.D[1]
			rhs[0] = v - f*rhs[1]
			return
		}
		td.D[0], td.U[0] = bc.MatrixRow(g)
		rhs[0] = v
		return
	}
	if c := td.L[nx-3]; w[0] != 0 && c != 0 {
		f := w[0] / c
		td.L[nx-2], td.D[nx-1] = w[1]-f*td.D[nx-2], w[2]-f*td.U[nx-2]
		rhs[nx-1] = v - f*rhs[nx-2]
		return
	}
	td.D[nx-1], td.L[nx-2] = bc.MatrixRow(g)
	rhs[nx-1] = v
}

// Coefficients returns (offset, weight) pairs relative to the boundary node
func (bc Condition) Coefficients(g *grid.PDEGrid1D) (offsets []int, weights []float64) {
	if bc.Kind == Dirichlet {
		return []int{0}, []float64{1}
	}
	st := bc.Stencil(g)
	j := bc.Index(g)
	for k, w := range st.Weights {
		offsets = append(offsets, st.Start+k-j)
		weights = append(weights, w)
	}
	return
}

// Residual is how far u misses the condition at time t
func (bc Condition) Residual(g *grid.PDEGrid1D, u []float64, t float64) float64 {
	return bc.Stencil(g).Apply(u) - bc.Value(t)
}

func (bc Condition) String() string {
	if bc.fn != nil {
		return fmt.Sprintf("%s %s (time dependent)", bc.Side, bc.Kind)
	}
	return fmt.Sprintf("%s %s = %g", bc.Side, bc.Kind, bc.value)
}
