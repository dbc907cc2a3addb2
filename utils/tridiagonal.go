package utils

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var ErrZeroPivot = errors.New("zero pivot in tri-diagonal solve")

/*
Tridiagonal stores a square tri-diagonal matrix as three bands:

	D[i] = A[i][i], U[i] = A[i][i+1], L[i] = A[i+1][i]
*/
type Tridiagonal struct {
	D, U, L []float64
}

func NewTridiagonal(n int) (td *Tridiagonal) {
	td = &Tridiagonal{
		D: make([]float64, n),
		U: make([]float64, n-1),
		L: make([]float64, n-1),
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (td *Tridiagonal) Dims() (r, c int) { return len(td.D), len(td.D) }
func (td *Tridiagonal) T() mat.Matrix     { return mat.Transpose{Matrix: td} }
func (td *Tridiagonal) At(i, j int) float64 {
	switch j - i {
	case 0:
		return td.D[i]
	case 1:
		return td.U[i]
	case -1:
		return td.L[j]
	}
	return 0
}

func (td *Tridiagonal) MulVec(x []float64) (y []float64) {
	var (
		n = len(td.D)
	)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = td.D[i] * x[i]
		if i > 0 {
			y[i] += td.L[i-1] * x[i-1]
		}
		if i < n-1 {
			y[i] += td.U[i] * x[i+1]
		}
	}
	return
}

// Solve uses the Thomas algorithm, forward elimination then back substitution
func (td *Tridiagonal) Solve(b []float64) (x []float64, err error) {
	var (
		n      = len(td.D)
		cp, dp = make([]float64, n), make([]float64, n)
		m      float64
	)
	if len(b) != n {
		err = fmt.Errorf("dimension mismatch: matrix is %d, rhs is %d", n, len(b))
		return
	}
	if td.D[0] == 0 {
		err = fmt.Errorf("%w: row 0", ErrZeroPivot)
		return
	}
	if n > 1 {
		cp[0] = td.U[0] / td.D[0]
	}
	dp[0] = b[0] / td.D[0]
	for i := 1; i < n; i++ {
		m = td.D[i] - td.L[i-1]*cp[i-1]
		if m == 0 {
			err = fmt.Errorf("%w: row %d", ErrZeroPivot, i)
			return
		}
		if i < n-1 {
			cp[i] = td.U[i] / m
		}
		dp[i] = (b[i] - td.L[i-1]*dp[i-1]) / m
	}
	x = make([]float64, n)
	x[n-1] = dp[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = dp[i] - cp[i]*x[i+1]
	}
	return
}

// SolveLU factors a dense copy with partial pivoting
func (td *Tridiagonal) SolveLU(b []float64) (x []float64, err error) {
	var (
		n  = len(td.D)
		lu mat.LU
		xv mat.VecDense
	)
	if len(b) != n {
		err = fmt.Errorf("dimension mismatch: matrix is %d, rhs is %d", n, len(b))
		return
	}
	lu.Factorize(mat.DenseCopyOf(td))
	if math.IsInf(lu.Cond(), 1) {
		err = fmt.Errorf("%w: singular matrix in LU", ErrZeroPivot)
		return
	}
	if err = lu.SolveVecTo(&xv, false, mat.NewVecDense(n, b)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return
		}
		// Ill conditioned but solved
		err = nil
	}
	x = make([]float64, n)
	copy(x, xv.RawVector().Data)
	return
}

// ToOperator copies the bands into a sparse operator
func (td *Tridiagonal) ToOperator() (op *Operator) {
	var (
		n = len(td.D)
	)
	op = NewOperator(n)
	for i := 0; i < n; i++ {
		op.Set(i, i, td.D[i])
		if i < n-1 {
			op.Set(i, i+1, td.U[i])
			op.Set(i+1, i, td.L[i])
		}
	}
	op.Freeze()
	return
}
