package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/golocalvol/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkMonotone(t *testing.T, m MeshingFunction, min, max float64) {
	x := m.Points()
	require.Equal(t, m.NumberOfPoints(), len(x))
	assert.Equal(t, min, x[0])
	assert.Equal(t, max, x[len(x)-1])
	for i := 1; i < len(x); i++ {
		assert.Truef(t, x[i] > x[i-1], "not increasing at %d: %v <= %v", i, x[i], x[i-1])
	}
}

func TestMeshMonotonicity(t *testing.T) {
	{
		m, err := NewUniform(-1, 3, 9)
		require.NoError(t, err)
		checkMonotone(t, m, -1, 3)
		assert.InDelta(t, 0.5, m.Evaluate(3), 1.e-15)
	}
	for _, lambda := range []float64{-10, -3, -0.5, 0, 1.e-10, 0.5, 3, 10} {
		m, err := NewExponential(0, 5, 50, lambda)
		require.NoError(t, err)
		checkMonotone(t, m, 0, 5)
	}
	for _, center := range []float64{0, 0.3, 1, 4.2, 6} {
		for _, beta := range []float64{0.01, 0.05, 0.5, 5} {
			m, err := NewHyperbolic(0, 6, center, 101, beta)
			require.NoError(t, err)
			checkMonotone(t, m, 0, 6)
		}
	}
	for _, frac := range []float64{0.1, 0.5, 0.9} {
		m, err := NewDoubleExponential(0.1, 10, 1, 40, frac, -2, 2)
		require.NoError(t, err)
		checkMonotone(t, m, 0.1, 10)
	}
}

func TestMeshBunching(t *testing.T) {
	{ // Positive lambda clusters at min, negative at max
		m, err := NewExponential(0, 1, 11, 4)
		require.NoError(t, err)
		x := m.Points()
		assert.True(t, x[1]-x[0] < x[10]-x[9])
		m, err = NewExponential(0, 1, 11, -4)
		require.NoError(t, err)
		x = m.Points()
		assert.True(t, x[1]-x[0] > x[10]-x[9])
	}
	{ // Zero lambda is the uniform limit
		m, err := NewExponential(2, 4, 5, 0)
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 2.5, 3, 3.5, 4}, m.Points())
	}
	{ // Hyperbolic spacing is finest near the center
		m, err := NewHyperbolic(0, 6, 1, 101, 0.05)
		require.NoError(t, err)
		x := m.Points()
		var (
			minDx = 100.
			jMin  int
		)
		for j := 1; j < len(x); j++ {
			if dx := x[j] - x[j-1]; dx < minDx {
				minDx, jMin = dx, j
			}
		}
		assert.InDelta(t, 1., x[jMin], 0.1)
		assert.True(t, minDx < 6./100)
	}
	{ // The double exponential shares the center node
		m, err := NewDoubleExponential(0, 2, 1, 21, 0.5, -3, 3)
		require.NoError(t, err)
		found := false
		for _, x := range m.Points() {
			if x == 1 {
				found = true
			}
		}
		assert.True(t, found)
	}
}

func TestMeshErrors(t *testing.T) {
	var err error
	_, err = NewUniform(0, 1, 1)
	assert.True(t, errors.Is(err, ErrTooFewPoints))
	_, err = NewExponential(1, 1, 10, 2)
	assert.True(t, errors.Is(err, ErrInvalidRange))
	_, err = NewExponential(2, 1, 10, 2)
	assert.True(t, errors.Is(err, ErrInvalidRange))
	_, err = NewHyperbolic(0, 1, 1.5, 10, 0.1)
	assert.True(t, errors.Is(err, ErrCenterOutOfRange))
	_, err = NewHyperbolic(0, 1, -0.1, 10, 0.1)
	assert.True(t, errors.Is(err, ErrCenterOutOfRange))
	_, err = NewHyperbolic(0, 1, 0.5, 1, 0.1)
	assert.True(t, errors.Is(err, ErrTooFewPoints))
	_, err = NewHyperbolic(0, 1, 0.5, 10, 0)
	assert.True(t, errors.Is(err, ErrInvalidBunching))
	for _, lambda := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 800, -800} {
		_, err = NewExponential(0, 1, 10, lambda)
		assert.Truef(t, errors.Is(err, ErrInvalidBunching), "λ = %g", lambda)
	}
	_, err = NewDoubleExponential(0, 1, 0.5, 10, 0.5, math.NaN(), 1)
	assert.True(t, errors.Is(err, ErrInvalidBunching))
	_, err = NewDoubleExponential(0, 1, 0.5, 10, 1.2, 1, 1)
	assert.True(t, errors.Is(err, ErrInvalidFraction))
	_, err = NewDoubleExponential(0, 1, 1, 10, 0.5, 1, 1)
	assert.True(t, errors.Is(err, ErrCenterOutOfRange))
}

func TestNewMesh(t *testing.T) {
	for _, kind := range []types.MeshType{types.Uniform, types.Exponential, types.Hyperbolic, types.DoubleExponential} {
		m, err := NewMesh(kind, 0, 4, 1, 21, 0.5)
		require.NoError(t, err, kind.String())
		checkMonotone(t, m, 0, 4)
	}
	_, err := NewMesh(types.MeshType(99), 0, 4, 1, 21, 0.5)
	assert.Error(t, err)
	m, err := NewMesh(types.Hyperbolic, 0, 4, 5, 21, 0.5)
	assert.Error(t, err)
	assert.Nil(t, m)
}
