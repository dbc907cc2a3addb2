// Package mesh generates strictly increasing node sequences over [min, max],
// optionally concentrating nodes near one end or an interior feature point.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/golocalvol/types"
)

var (
	ErrTooFewPoints     = errors.New("mesh needs at least 2 points")
	ErrInvalidRange     = errors.New("mesh upper bound must exceed lower bound")
	ErrCenterOutOfRange = errors.New("mesh center point outside [min, max]")
	ErrInvalidBunching  = errors.New("mesh bunching parameter must be positive")
	ErrInvalidFraction  = errors.New("mesh point fraction must lie in (0, 1)")
)

// MeshingFunction maps an index in [0, N-1] to a node coordinate
type MeshingFunction interface {
	NumberOfPoints() int
	Evaluate(i int) float64
	Points() []float64
}

type base struct {
	min, max float64
	n        int
}

func (b base) NumberOfPoints() int { return b.n }

func checkRange(min, max float64, n int) (err error) {
	switch {
	case n < 2:
		err = fmt.Errorf("%w: have %d", ErrTooFewPoints, n)
	case !(max > min):
		err = fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, min, max)
	}
	return
}

func points(m MeshingFunction) (x []float64) {
	x = make([]float64, m.NumberOfPoints())
	for i := range x {
		x[i] = m.Evaluate(i)
	}
	return
}

type Uniform struct {
	base
}

func NewUniform(min, max float64, n int) (m *Uniform, err error) {
	if err = checkRange(min, max, n); err != nil {
		return
	}
	m = &Uniform{base{min, max, n}}
	return
}

func (m *Uniform) Evaluate(i int) float64 {
	if i == m.n-1 {
		return m.max
	}
	return m.min + (m.max-m.min)*float64(i)/float64(m.n-1)
}

func (m *Uniform) Points() []float64 { return points(m) }

/*
Exponential places nodes at

	x_i = min + (max-min)(exp(λu_i) - 1)/(exp(λ) - 1), u_i = i/(N-1)

Positive λ bunches nodes toward min, negative toward max. λ = 0 is the
uniform limit.
*/
type Exponential struct {
	base
	lambda float64
	r      float64 // 1/(exp(λ)-1)
}

const (
	uniformLimit = 1.e-8
	// exp(λ) overflows float64 just above 709
	maxExponentialLambda = 700.
)

func NewExponential(min, max float64, n int, lambda float64) (m *Exponential, err error) {
	if err = checkRange(min, max, n); err != nil {
		return
	}
	if math.IsNaN(lambda) || math.Abs(lambda) > maxExponentialLambda {
		err = fmt.Errorf("%w: exponential λ must be finite with |λ| <= %g, have %g",
			ErrInvalidBunching, maxExponentialLambda, lambda)
		return
	}
	m = &Exponential{base: base{min, max, n}, lambda: lambda}
	if math.Abs(lambda) > uniformLimit {
		m.r = 1 / math.Expm1(lambda)
	}
	return
}

func (m *Exponential) Evaluate(i int) float64 {
	var (
		u = float64(i) / float64(m.n-1)
	)
	switch {
	case i == 0:
		return m.min
	case i == m.n-1:
		return m.max
	case math.Abs(m.lambda) <= uniformLimit:
		return m.min + (m.max-m.min)*u
	}
	return m.min + (m.max-m.min)*math.Expm1(m.lambda*u)*m.r
}

func (m *Exponential) Points() []float64 { return points(m) }

/*
Hyperbolic concentrates nodes around an interior feature point fp:

	x_i = fp + β' sinh(c2 u_i + c1 (1 - u_i))

with β' = β(max-min), c1 = asinh((min-fp)/β'), c2 = asinh((max-fp)/β').
Small β gives strong bunching.
*/
type Hyperbolic struct {
	base
	center, beta, c1, c2 float64
}

func NewHyperbolic(min, max, center float64, n int, bunching float64) (m *Hyperbolic, err error) {
	if err = checkRange(min, max, n); err != nil {
		return
	}
	if center < min || center > max {
		err = fmt.Errorf("%w: %g not in [%g, %g]", ErrCenterOutOfRange, center, min, max)
		return
	}
	if !(bunching > 0) {
		err = fmt.Errorf("%w: have %g", ErrInvalidBunching, bunching)
		return
	}
	beta := bunching * (max - min)
	m = &Hyperbolic{
		base:   base{min, max, n},
		center: center,
		beta:   beta,
		c1:     math.Asinh((min - center) / beta),
		c2:     math.Asinh((max - center) / beta),
	}
	return
}

func (m *Hyperbolic) Evaluate(i int) float64 {
	var (
		u = float64(i) / float64(m.n-1)
	)
	switch i {
	case 0:
		return m.min
	case m.n - 1:
		return m.max
	}
	return m.center + m.beta*math.Sinh(m.c2*u+m.c1*(1-u))
}

func (m *Hyperbolic) Points() []float64 { return points(m) }

// DoubleExponential joins two exponential meshes at an interior center node.
// The lower mesh uses lambdaLower and the upper lambdaUpper; a negative
// lambdaLower with a positive lambdaUpper bunches both halves at the center.
type DoubleExponential struct {
	base
	lower, upper *Exponential
	nLower       int
}

func NewDoubleExponential(min, max, center float64, n int, fraction, lambdaLower, lambdaUpper float64) (m *DoubleExponential, err error) {
	var (
		nLower int
	)
	if err = checkRange(min, max, n); err != nil {
		return
	}
	if center <= min || center >= max {
		err = fmt.Errorf("%w: %g not in (%g, %g)", ErrCenterOutOfRange, center, min, max)
		return
	}
	if !(fraction > 0 && fraction < 1) {
		err = fmt.Errorf("%w: have %g", ErrInvalidFraction, fraction)
		return
	}
	if n < 3 {
		err = fmt.Errorf("%w: double exponential needs 3, have %d", ErrTooFewPoints, n)
		return
	}
	nLower = int(math.Round(fraction * float64(n)))
	if nLower < 2 {
		nLower = 2
	}
	if nLower > n-1 {
		nLower = n - 1
	}
	m = &DoubleExponential{base: base{min, max, n}, nLower: nLower}
	if m.lower, err = NewExponential(min, center, nLower, lambdaLower); err != nil {
		return
	}
	// The center node is shared
	if m.upper, err = NewExponential(center, max, n-nLower+1, lambdaUpper); err != nil {
		return
	}
	return
}

func (m *DoubleExponential) Evaluate(i int) float64 {
	if i < m.nLower {
		return m.lower.Evaluate(i)
	}
	return m.upper.Evaluate(i - m.nLower + 1)
}

func (m *DoubleExponential) Points() []float64 { return points(m) }

// NewMesh builds a mesh by type for config driven callers. center is ignored
// by Uniform and Exponential; bunching is λ for Exponential and the width
// scale for Hyperbolic. DoubleExponential places half the points below center
// and bunches both sides toward it.
func NewMesh(kind types.MeshType, min, max, center float64, n int, bunching float64) (m MeshingFunction, err error) {
	switch kind {
	case types.Uniform:
		var u *Uniform
		if u, err = NewUniform(min, max, n); err == nil {
			m = u
		}
	case types.Exponential:
		var e *Exponential
		if e, err = NewExponential(min, max, n, bunching); err == nil {
			m = e
		}
	case types.Hyperbolic:
		var h *Hyperbolic
		if h, err = NewHyperbolic(min, max, center, n, bunching); err == nil {
			m = h
		}
	case types.DoubleExponential:
		var de *DoubleExponential
		if de, err = NewDoubleExponential(min, max, center, n, 0.5, -bunching, bunching); err == nil {
			m = de
		}
	default:
		err = fmt.Errorf("unsupported mesh type %v", kind)
	}
	return
}
