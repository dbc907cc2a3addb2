package cmd

import (
	"testing"

	"github.com/notargets/golocalvol/InputParameters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBucketedVega(t *testing.T) {
	ip := &InputParameters.LocalVolParameters{}
	require.NoError(t, ip.Parse([]byte(`
Title: table
Spot: 100
Expiry: 1
Strikes: [90, 100, 110]
Smile:
  Type: table
  Times: [0.5, 1]
  Strikes: [70, 85, 100, 115, 130]
  Vols: [[0.31, 0.26, 0.22, 0.2, 0.195], [0.3, 0.25, 0.21, 0.19, 0.185]]
Grid:
  TimeSteps: 20
  SpaceSteps: 40
`)))
	ip.SetDefaults()
	require.NoError(t, ip.Validate())
	assert.NotPanics(t, func() { RunBucketedVega(ip) })
	assert.NotPanics(t, func() { RunBucketedVega(flatRun(t)) })
}
