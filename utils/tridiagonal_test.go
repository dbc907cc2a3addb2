package utils

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTridiagonal() (td *Tridiagonal) {
	td = NewTridiagonal(5)
	copy(td.D, []float64{4, 4, 4, 4, 4})
	copy(td.U, []float64{1, -1, 2, 0.5})
	copy(td.L, []float64{-1, 2, 1, 3})
	return
}

func TestTridiagonal(t *testing.T) {
	{ // Thomas solve recovers a known solution
		td := newTestTridiagonal()
		xe := []float64{1, -2, 3, 0.5, -1}
		b := td.MulVec(xe)
		x, err := td.Solve(b)
		require.NoError(t, err)
		for i := range xe {
			assert.InDeltaf(t, xe[i], x[i], 1.e-12, "index %d", i)
		}
	}
	{ // LU and Thomas agree
		td := newTestTridiagonal()
		b := []float64{1, 2, 3, 4, 5}
		x1, err := td.Solve(b)
		require.NoError(t, err)
		x2, err := td.SolveLU(b)
		require.NoError(t, err)
		for i := range b {
			assert.InDeltaf(t, x1[i], x2[i], 1.e-12, "index %d", i)
		}
	}
	{ // Exact zero pivot is a hard failure
		td := NewTridiagonal(3)
		copy(td.D, []float64{0, 1, 1})
		_, err := td.Solve([]float64{1, 1, 1})
		assert.True(t, errors.Is(err, ErrZeroPivot))

		td = NewTridiagonal(3)
		copy(td.D, []float64{1, 1, 1})
		copy(td.U, []float64{1, 0})
		copy(td.L, []float64{1, 0})
		_, err = td.Solve([]float64{1, 1, 1})
		assert.True(t, errors.Is(err, ErrZeroPivot))
	}
	{ // Dimension mismatch
		td := newTestTridiagonal()
		_, err := td.Solve([]float64{1, 2})
		assert.Error(t, err)
	}
	{ // Dense view and sparse operator reproduce the band product
		td := newTestTridiagonal()
		nr, nc := td.Dims()
		assert.Equal(t, 5, nr)
		assert.Equal(t, 5, nc)
		assert.Equal(t, 0., td.At(0, 3))
		assert.Equal(t, -1., td.At(1, 0))
		assert.Equal(t, 1., td.At(0, 1))
		op := td.ToOperator()
		assert.Equal(t, 13, op.NNZ())
		x := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
		y1, y2 := td.MulVec(x), op.MulVec(x)
		for i := range x {
			assert.InDeltaf(t, y1[i], y2[i], 1.e-14, "index %d", i)
		}
	}
	{ // NaN detection on bands
		td := newTestTridiagonal()
		assert.False(t, IsNan(td))
		td.U[2] = math.NaN()
		assert.True(t, IsNan(td))
	}
}

func TestSearchSorted(t *testing.T) {
	xs := []float64{0, 1, 2, 4, 8}
	assert.Equal(t, 0, SearchSorted(xs, -1))
	assert.Equal(t, 0, SearchSorted(xs, 0))
	assert.Equal(t, 0, SearchSorted(xs, 0.5))
	assert.Equal(t, 2, SearchSorted(xs, 2))
	assert.Equal(t, 2, SearchSorted(xs, 3.9))
	assert.Equal(t, 3, SearchSorted(xs, 7.9))
	assert.Equal(t, 4, SearchSorted(xs, 8))
	assert.Equal(t, 4, SearchSorted(xs, 100))
	v := Linspace(0, 1, 5)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, v)
	l2, linf := ErrorNorms([]float64{1, 2, 3}, []float64{1, 2, 5})
	assert.InDelta(t, 2., linf, 1.e-15)
	assert.InDelta(t, 2./1.7320508075688772, l2, 1.e-12)
}
