package boundary

import (
	"testing"

	"github.com/notargets/golocalvol/grid"
	"github.com/notargets/golocalvol/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundaryConditions(t *testing.T) {
	g, err := grid.NewPDEGrid1DFromNodes([]float64{0, 0.5, 1}, []float64{0, 0.5, 1.5, 3, 5})
	require.NoError(t, err)
	{ // Dirichlet, constant and time dependent
		bc := NewDirichlet(Lower, 2.5)
		assert.Equal(t, 2.5, bc.Value(0.3))
		assert.Equal(t, 0, bc.Index(g))
		diag, off := bc.MatrixRow(g)
		assert.Equal(t, 1., diag)
		assert.Equal(t, 0., off)
		offs, w := bc.Coefficients(g)
		assert.Equal(t, []int{0}, offs)
		assert.Equal(t, []float64{1}, w)

		fwd := NewDirichletFunc(Upper, func(t float64) float64 { return 1 + t })
		assert.Equal(t, 4, fwd.Index(g))
		assert.Equal(t, 1.5, fwd.Value(0.5))
		u := []float64{0, 0, 0, 0, 1.5}
		assert.Equal(t, 0., fwd.Residual(g, u, 0.5))
	}
	{ // Neumann rows are three point one-sided differences, exact for quadratics
		u := make([]float64, g.NumSpaceNodes())
		for j := range u {
			x := g.SpaceNode(j)
			u[j] = x*x - x + 1
		}
		lo := NewNeumann(Lower, -1)
		assert.InDelta(t, 0., lo.Residual(g, u, 0), 1.e-12)
		offs, w := lo.Coefficients(g)
		assert.Equal(t, []int{0, 1, 2}, offs)
		assert.InDeltaSlice(t, []float64{-8. / 3, 3, -1. / 3}, w, 1.e-14)
		diag, off := lo.MatrixRow(g)
		assert.Equal(t, -2., diag)
		assert.Equal(t, 2., off)

		hi := NewNeumannFunc(Upper, func(t float64) float64 { return t })
		offs, _ = hi.Coefficients(g)
		assert.Equal(t, []int{-2, -1, 0}, offs)
		assert.InDelta(t, 0., hi.Residual(g, u, 9), 1.e-12)
		diag, off = hi.MatrixRow(g)
		assert.Equal(t, 0.5, diag)
		assert.Equal(t, -0.5, off)
	}
	assert.Equal(t, "Lower Dirichlet = 2.5", NewDirichlet(Lower, 2.5).String())
	assert.Equal(t, "Upper Neumann (time dependent)", NewNeumannFunc(Upper, func(float64) float64 { return 0 }).String())
}

func TestSetRowKeepsTridiagonal(t *testing.T) {
	g, err := grid.NewPDEGrid1DFromNodes([]float64{0, 0.5, 1}, []float64{0, 0.5, 1.5, 3, 5})
	require.NoError(t, err)
	var (
		nx = g.NumSpaceNodes()
		u  = make([]float64, nx)
		td = utils.NewTridiagonal(nx)
	)
	for j := range u {
		x := g.SpaceNode(j)
		u[j] = x*x - x + 1
	}
	for j := 1; j < nx-1; j++ {
		td.L[j-1], td.D[j], td.U[j] = -0.3*float64(j), 1+0.7*float64(j), -0.4
	}
	rhs := td.MulVec(u)
	lo, hi := NewNeumann(Lower, -1), NewNeumann(Upper, 9)
	lo.SetRow(td, rhs, g, 0)
	hi.SetRow(td, rhs, g, 0)
	// Folding is exact, so the quadratic solves the boundary rows
	assert.InDelta(t, rhs[0], td.D[0]*u[0]+td.U[0]*u[1], 1.e-12)
	assert.InDelta(t, rhs[nx-1], td.L[nx-2]*u[nx-2]+td.D[nx-1]*u[nx-1], 1.e-12)
	x, err := td.Solve(rhs)
	require.NoError(t, err)
	assert.InDeltaSlice(t, u, x, 1.e-10)

	// A diagonal interior falls back to the two point row
	diag := utils.NewTridiagonal(nx)
	for j := range diag.D {
		diag.D[j] = 1
	}
	rhs = make([]float64, nx)
	lo.SetRow(diag, rhs, g, 0)
	assert.Equal(t, -2., diag.D[0])
	assert.Equal(t, 2., diag.U[0])
	assert.Equal(t, -1., rhs[0])

	dir := NewDirichlet(Upper, 3)
	dir.SetRow(td, rhs, g, 0)
	assert.Equal(t, 1., td.D[nx-1])
	assert.Equal(t, 0., td.L[nx-2])
	assert.Equal(t, 3., rhs[nx-1])
}
