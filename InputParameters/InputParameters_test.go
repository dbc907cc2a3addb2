package InputParameters

import (
	"testing"

	"github.com/magiconair/properties/assert"
	"github.com/notargets/golocalvol/types"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	var (
		err error
	)
	fileInput := []byte(`
Title: SABR smile
Spot: 0.04
Drift: 0.01
Expiry: 5.
OptionType: call
Strikes: [0.03, 0.04, 0.05]
Smile:
  Type: SABR
  ATMVol: 0.2
  Beta: 0.5
  Rho: -0.2
  Nu: 0.3
Grid:
  TimeSteps: 200
  SpaceSteps: 400
  SpaceMesh: hyperbolic
Solver:
  Theta: 0.5
  LowerBoundary: neumann # or dirichlet
`)
	var input LocalVolParameters
	if err = input.Parse(fileInput); err != nil {
		panic(err)
	}
	input.SetDefaults()
	require.NoError(t, input.Validate())
	input.Print()
	assert.Equal(t, input.Expiry, 5.)
	assert.Equal(t, input.Strikes[2], 0.05)
	assert.Equal(t, input.Smile.Rho, -0.2)
	assert.Equal(t, input.Grid.SpaceSteps, 400)
	// Left out of the file
	assert.Equal(t, input.Grid.MaxProxyDelta, 5.)
	assert.Equal(t, input.Solver.Mode, "tridiagonal")
	assert.Equal(t, input.IsCall(), true)
	assert.Equal(t, input.NeumannLowerBoundary(), true)

	fc, err := input.ForwardCurve()
	require.NoError(t, err)
	vol, err := input.SmileSurface(fc)
	require.NoError(t, err)
	f := fc.Forward(input.Expiry)
	require.InDelta(t, 0.2, vol.Volatility(input.Expiry, f), 1.e-8)

	gs, err := input.MoneynessGrid(0.2)
	require.NoError(t, err)
	assert.Equal(t, gs.SpaceMesh, types.Hyperbolic)
	assert.Equal(t, gs.TimeNodes, 201)
	require.InDelta(t, 1, gs.MinX*gs.MaxX, 1.e-12)

	ts, err := input.ThetaSolver(true)
	require.NoError(t, err)
	assert.Equal(t, ts.Theta, 0.5)
	assert.Equal(t, ts.FullResults, true)

	c := input.GreekCalculator()
	assert.Equal(t, c.SpaceSteps, 400)
	assert.Equal(t, c.NeumannLowerBoundary, true)
}

func TestValidate(t *testing.T) {
	input := LocalVolParameters{Spot: 100, Expiry: 1, Strikes: []float64{100}}
	input.SetDefaults()
	require.Error(t, input.Validate(), "flat smile without a vol")
	input.Smile.ATMVol = 0.2
	require.NoError(t, input.Validate())

	bad := input
	bad.Solver.Mode = "psor"
	require.ErrorIs(t, bad.Validate(), ErrInvalidParameters)
	bad = input
	bad.Strikes = []float64{-1}
	require.ErrorIs(t, bad.Validate(), ErrInvalidParameters)
	bad = input
	bad.Smile.Type = "svi"
	require.ErrorIs(t, bad.Validate(), ErrInvalidParameters)
	bad = input
	bad.OptionType = "straddle"
	require.ErrorIs(t, bad.Validate(), ErrInvalidParameters)

	table := input
	table.Smile = Smile{
		Type:    "table",
		Times:   []float64{0.5, 1},
		Strikes: []float64{80, 100, 120},
		Vols:    [][]float64{{0.25, 0.2, 0.18}, {0.24, 0.2, 0.19}},
	}
	require.NoError(t, table.Validate())
	fc, err := table.ForwardCurve()
	require.NoError(t, err)
	vol, err := table.SmileSurface(fc)
	require.NoError(t, err)
	require.InDelta(t, 0.2, vol.Volatility(1, 100), 1.e-12)
	nodes, ok := table.VolNodes()
	assert.Equal(t, ok, true)
	assert.Equal(t, nodes.Vols, table.Smile.Vols)
	_, ok = input.VolNodes()
	assert.Equal(t, ok, false)
}
