package utils

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Operator is a spatial difference operator assembled element-wise as a DOK
// and frozen to CSR before it is applied.
type Operator struct {
	dok *sparse.DOK
	csr *sparse.CSR
	n   int
}

func NewOperator(n int) (op *Operator) {
	op = &Operator{
		dok: sparse.NewDOK(n, n),
		n:   n,
	}
	return
}

func (op *Operator) Dims() (r, c int) { return op.n, op.n }

func (op *Operator) Set(i, j int, val float64) {
	if op.csr != nil {
		panic("operator is frozen, unable to set values")
	}
	if val == 0 {
		return
	}
	op.dok.Set(i, j, val)
}

func (op *Operator) At(i, j int) float64 {
	if op.csr != nil {
		return op.csr.At(i, j)
	}
	return op.dok.At(i, j)
}

func (op *Operator) Freeze() {
	if op.csr == nil {
		op.csr = op.dok.ToCSR()
	}
}

func (op *Operator) NNZ() int {
	op.Freeze()
	return op.csr.NNZ()
}

func (op *Operator) MulVec(x []float64) (y []float64) {
	var (
		yv mat.VecDense
	)
	op.Freeze()
	yv.MulVec(op.csr, mat.NewVecDense(len(x), x))
	y = make([]float64, op.n)
	copy(y, yv.RawVector().Data)
	return
}
