// Package surface defines the scalar (t, x) surface abstraction used for PDE
// coefficients, volatilities and prices, with functional, constant, shifted
// and interpolated-grid variants.
package surface

import (
	"errors"
	"fmt"

	"github.com/notargets/golocalvol/utils"
	"gonum.org/v1/gonum/interp"
)

var ErrBadGrid = errors.New("invalid interpolation grid")

type Surface2D interface {
	Value(t, x float64) float64
}

// Functional wraps a pure function of (t, x)
type Functional struct {
	Name string
	F    func(t, x float64) float64
}

func NewFunctional(name string, f func(t, x float64) float64) *Functional {
	return &Functional{Name: name, F: f}
}

func (s *Functional) Value(t, x float64) float64 { return s.F(t, x) }

func (s *Functional) String() string { return s.Name }

type Constant float64

func (c Constant) Value(t, x float64) float64 { return float64(c) }

// Shifted adds a constant to another surface
type Shifted struct {
	Base  Surface2D
	Shift float64
}

func NewShifted(base Surface2D, shift float64) *Shifted {
	return &Shifted{Base: base, Shift: shift}
}

func (s *Shifted) Value(t, x float64) float64 { return s.Base.Value(t, x) + s.Shift }

/*
Interpolated is a surface known on a rectangular (t, x) grid, with Z[i][j] the
value at (T[i], X[j]). Each time row is interpolated in x, then rows are
blended linearly in t. Queries outside the grid are clamped to the nearest
edge.

NewInterpolated fits rows piecewise linearly, which suits tabulated output.
NewSmoothInterpolated fits natural cubic splines, whose second derivative in x
is continuous, for surfaces that get differentiated.
*/
type Interpolated struct {
	T, X []float64
	Z    [][]float64
	rows []interp.FittablePredictor
}

func NewInterpolated(ts, xs []float64, z [][]float64) (*Interpolated, error) {
	return newInterpolated(ts, xs, z, func() interp.FittablePredictor { return &interp.PiecewiseLinear{} })
}

func NewSmoothInterpolated(ts, xs []float64, z [][]float64) (*Interpolated, error) {
	return newInterpolated(ts, xs, z, func() interp.FittablePredictor { return &interp.NaturalCubic{} })
}

func newInterpolated(ts, xs []float64, z [][]float64, newRow func() interp.FittablePredictor) (s *Interpolated, err error) {
	if len(ts) < 1 || len(xs) < 2 {
		err = fmt.Errorf("%w: need at least 1 time and 2 space points", ErrBadGrid)
		return
	}
	if len(z) != len(ts) {
		err = fmt.Errorf("%w: have %d rows for %d times", ErrBadGrid, len(z), len(ts))
		return
	}
	for i := 1; i < len(ts); i++ {
		if !(ts[i] > ts[i-1]) {
			err = fmt.Errorf("%w: times not increasing at %d", ErrBadGrid, i)
			return
		}
	}
	for j := 1; j < len(xs); j++ {
		if !(xs[j] > xs[j-1]) {
			err = fmt.Errorf("%w: space points not increasing at %d", ErrBadGrid, j)
			return
		}
	}
	s = &Interpolated{
		T:    append([]float64(nil), ts...),
		X:    append([]float64(nil), xs...),
		Z:    make([][]float64, len(z)),
		rows: make([]interp.FittablePredictor, len(ts)),
	}
	for i, row := range z {
		if len(row) != len(xs) {
			err = fmt.Errorf("%w: row %d has %d values for %d points", ErrBadGrid, i, len(row), len(xs))
			return nil, err
		}
		s.Z[i] = append([]float64(nil), row...)
		s.rows[i] = newRow()
		if err = s.rows[i].Fit(s.X, s.Z[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadGrid, err)
		}
	}
	return
}

func (s *Interpolated) Value(t, x float64) float64 {
	var (
		nt = len(s.T)
		i  int
	)
	x = utils.Clamp(x, s.X[0], s.X[len(s.X)-1])
	if nt == 1 || t <= s.T[0] {
		return s.rows[0].Predict(x)
	}
	if t >= s.T[nt-1] {
		return s.rows[nt-1].Predict(x)
	}
	i = utils.SearchSorted(s.T, t)
	w := (t - s.T[i]) / (s.T[i+1] - s.T[i])
	return (1-w)*s.rows[i].Predict(x) + w*s.rows[i+1].Predict(x)
}

// Tabulate samples s onto the grid ts by xs
func Tabulate(s Surface2D, ts, xs []float64) (*Interpolated, error) {
	z := make([][]float64, len(ts))
	for i, t := range ts {
		z[i] = make([]float64, len(xs))
		for j, x := range xs {
			z[i][j] = s.Value(t, x)
		}
	}
	return NewInterpolated(ts, xs, z)
}
