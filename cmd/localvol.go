/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math"

	"github.com/notargets/golocalvol/InputParameters"
	"github.com/notargets/golocalvol/mesh"
	"github.com/notargets/golocalvol/surface"
	"github.com/spf13/cobra"
)

// LocalVolCmd represents the localvol command
var LocalVolCmd = &cobra.Command{
	Use:   "localvol",
	Short: "Dupire local volatility from the run file's smile",
	Long: `
Converts the run file's implied smile to moneyness and tabulates the Dupire
local volatility on the PDE grid's moneyness range,

golocalvol localvol -I run.yaml --png localvol.png`,
	Run: func(cmd *cobra.Command, args []string) {
		ip := processInput(cmd)
		nT, _ := cmd.Flags().GetInt("times")
		nM, _ := cmd.Flags().GetInt("points")
		png, _ := cmd.Flags().GetString("png")
		RunLocalVol(ip, nT, nM, png)
	},
}

func init() {
	rootCmd.AddCommand(LocalVolCmd)
	addInputFlag(LocalVolCmd)
	LocalVolCmd.Flags().IntP("times", "t", 50, "number of times in the table, up to the expiry")
	LocalVolCmd.Flags().IntP("points", "n", 101, "number of moneyness points in the table")
	LocalVolCmd.Flags().String("png", "", "write a heat map of the local volatility to this file")
}

func RunLocalVol(ip *InputParameters.LocalVolParameters, nT, nM int, png string) {
	var (
		m      = newMarket(ip)
		ts, ms []float64
		tm, sm mesh.MeshingFunction
		tab    *surface.Interpolated
		err    error
		nanPts int
	)
	gs, err := ip.MoneynessGrid(m.atmVol)
	if err != nil {
		panic(err)
	}
	// Dupire needs t > 0, start one step in
	if tm, err = mesh.NewUniform(ip.Expiry/float64(nT), ip.Expiry, nT); err != nil {
		panic(err)
	}
	if sm, err = mesh.NewMesh(gs.SpaceMesh, gs.MinX, gs.MaxX, gs.CenterX, nM, gs.SpaceBunching); err != nil {
		panic(err)
	}
	ts, ms = tm.Points(), sm.Points()
	if tab, err = surface.Tabulate(m.lvM, ts, ms); err != nil {
		panic(err)
	}
	fmt.Printf("Local volatility, %s smile, forward %g at expiry %g\n", ip.Smile.Type, m.fT, ip.Expiry)
	fmt.Printf("%10s", "t \\ m")
	probes := []int{0, nM / 4, nM / 2, 3 * nM / 4, nM - 1}
	for _, j := range probes {
		fmt.Printf("%10.4f", ms[j])
	}
	fmt.Println()
	for i, t := range ts {
		if nanPts += countNaN(tab.Z[i]); i%max(1, nT/10) != 0 && i != nT-1 {
			continue
		}
		fmt.Printf("%10.4f", t)
		for _, j := range probes {
			fmt.Printf("%10.4f", tab.Z[i][j])
		}
		fmt.Println()
	}
	if nanPts != 0 {
		fmt.Printf("%d of %d points have no local volatility (calendar or butterfly arbitrage)\n", nanPts, nT*nM)
	}
	if len(png) != 0 {
		if err = saveHeatMap(png, "Local volatility", "moneyness", "t", surfaceGrid{tab}); err != nil {
			panic(err)
		}
		reportSaved(png)
	}
}

func countNaN(row []float64) (n int) {
	for _, v := range row {
		if math.IsNaN(v) {
			n++
		}
	}
	return
}
