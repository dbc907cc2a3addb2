package cmd

import (
	"fmt"
	"os"

	"github.com/notargets/golocalvol/InputParameters"
	"github.com/notargets/golocalvol/boundary"
	"github.com/notargets/golocalvol/curve"
	"github.com/notargets/golocalvol/pde"
	"github.com/notargets/golocalvol/volatility"
	"github.com/spf13/cobra"
)

const exampleFile = `
########################################
Title: "SABR smile"
Spot: 0.04
Drift: 0.0
Rate: 0.0
Expiry: 5
OptionType: call
Strikes: [0.03, 0.035, 0.04, 0.045, 0.05]
Smile:
  Type: SABR # Can be "flat" or "table"
  ATMVol: 0.2
  Beta: 0.5
  Rho: -0.2
  Nu: 0.3
Grid:
  TimeSteps: 200
  SpaceSteps: 400
  TimeBunching: 4
  SpaceMesh: hyperbolic
  SpaceBunching: 0.05
  MaxProxyDelta: 5
Solver:
  Theta: 0.55
  Mode: tridiagonal # or lu
  LowerBoundary: neumann # or dirichlet
########################################
`

func addInputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("inputFile", "I", "", "YAML run file with the market, smile and grid")
}

func processInput(cmd *cobra.Command) (ip *InputParameters.LocalVolParameters) {
	var (
		err  error
		file string
		data []byte
	)
	if file, err = cmd.Flags().GetString("inputFile"); err != nil {
		panic(err)
	}
	if len(file) == 0 {
		fmt.Printf("error: must supply a run file (-I, --inputFile)\n")
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	if data, err = os.ReadFile(file); err != nil {
		panic(err)
	}
	ip = &InputParameters.LocalVolParameters{}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	ip.SetDefaults()
	if err = ip.Validate(); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	if verbose() {
		ip.Print()
	}
	return
}

// market is the run file's curves and smiles built once per command
type market struct {
	fwd    *curve.ForwardCurve
	vol    *volatility.BlackVolatilitySurfaceStrike
	lvM    *volatility.LocalVolatilitySurfaceMoneyness
	fT     float64
	atmVol float64
}

func newMarket(ip *InputParameters.LocalVolParameters) (m *market) {
	var err error
	m = &market{}
	if m.fwd, err = ip.ForwardCurve(); err != nil {
		panic(err)
	}
	if m.vol, err = ip.SmileSurface(m.fwd); err != nil {
		panic(err)
	}
	m.fT = m.fwd.Forward(ip.Expiry)
	m.atmVol = m.vol.Volatility(ip.Expiry, m.fT)
	m.lvM = volatility.NewDupireCalculator().LocalVolatilitySurfaceMoneyness(m.vol.ToMoneyness(m.fwd))
	return
}

func (m *market) moneynessBundle(ip *InputParameters.LocalVolParameters) (db *pde.DataBundle) {
	var (
		gs  pde.GridSpec
		err error
	)
	if gs, err = ip.MoneynessGrid(m.atmVol); err != nil {
		panic(err)
	}
	if db, err = pde.ForwardMoneynessBundle(m.lvM, ip.Expiry, ip.IsCall(), gs); err != nil {
		panic(err)
	}
	if ip.NeumannLowerBoundary() {
		slope := 0.
		if ip.IsCall() {
			slope = -1
		}
		db.Lower = boundary.NewNeumann(boundary.Lower, slope)
	}
	return
}
