package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/golocalvol/InputParameters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatRun(t *testing.T) *InputParameters.LocalVolParameters {
	ip := &InputParameters.LocalVolParameters{}
	require.NoError(t, ip.Parse([]byte(`
Title: flat
Spot: 100
Drift: 0.02
Expiry: 1
Strikes: [90, 100, 110]
Smile:
  Type: flat
  ATMVol: 0.2
Solver:
  Theta: 0.5
`)))
	ip.SetDefaults()
	require.NoError(t, ip.Validate())
	return ip
}

func TestConvergenceStudy(t *testing.T) {
	rows, err := ConvergenceStudy(flatRun(t), 3, 20)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, r := range rows {
		assert.Equal(t, 20<<i, r.NT)
		assert.Equal(t, 40<<i, r.NX)
		assert.LessOrEqual(t, r.L2, r.LInf)
		if i > 0 {
			assert.Less(t, r.LInf, rows[i-1].LInf)
		}
	}
	assert.Less(t, rows[2].L2, rows[0].L2/3)
}

func TestRunConvergenceWritesCSV(t *testing.T) {
	file := filepath.Join(t.TempDir(), "conv.csv")
	RunConvergence(flatRun(t), 2, 10, file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Title,nT,nX,Theta,L2,LInf\n")
	assert.Contains(t, string(data), "flat,20,40,0.5,")
}
