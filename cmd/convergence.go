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
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/notargets/golocalvol/InputParameters"
	"github.com/notargets/golocalvol/black"
	"github.com/notargets/golocalvol/pde"
	"github.com/notargets/golocalvol/surface"
	"github.com/notargets/golocalvol/utils"
	"github.com/notargets/golocalvol/volatility"
	"github.com/spf13/cobra"
)

// ConvergenceCmd represents the convergence command
var ConvergenceCmd = &cobra.Command{
	Use:   "convergence",
	Short: "Grid refinement study against the Black formula",
	Long: `
Solves the forward moneyness equation with a flat local volatility at the run
file's ATM vol on successively doubled grids and writes the L2 and max errors
against the Black price to a CSV file for tools/convOrder,

golocalvol convergence -I run.yaml -l 5 --csvFile conv.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		ip := processInput(cmd)
		levels, _ := cmd.Flags().GetInt("levels")
		base, _ := cmd.Flags().GetInt("base")
		file, _ := cmd.Flags().GetString("csvFile")
		RunConvergence(ip, levels, base, file)
	},
}

func init() {
	rootCmd.AddCommand(ConvergenceCmd)
	addInputFlag(ConvergenceCmd)
	ConvergenceCmd.Flags().IntP("levels", "l", 5, "number of grid doublings")
	ConvergenceCmd.Flags().Int("base", 20, "time and space steps on the coarsest grid")
	ConvergenceCmd.Flags().String("csvFile", "convergence.csv", "output file")
}

type ConvergenceRow struct {
	NT, NX   int
	L2, LInf float64
}

// ConvergenceStudy runs the refinement and returns one row per level
func ConvergenceStudy(ip *InputParameters.LocalVolParameters, levels, base int) (rows []ConvergenceRow, err error) {
	var (
		m      = newMarket(ip)
		sigma  = m.atmVol
		T      = ip.Expiry
		isCall = ip.IsCall()
		lvM    = volatility.NewLocalVolatilitySurfaceMoneyness(surface.Constant(sigma), m.fwd)
		mLo    = math.Exp(-2 * sigma * math.Sqrt(T))
		mHi    = math.Exp(2 * sigma * math.Sqrt(T))
		gs     pde.GridSpec
		db     *pde.DataBundle
		ts     *pde.ThetaSolver
		res    pde.PDEResults
	)
	if gs, err = ip.MoneynessGrid(sigma); err != nil {
		return
	}
	if ts, err = ip.ThetaSolver(false); err != nil {
		return
	}
	for l := 0; l < levels; l++ {
		n := base << l
		gs.TimeNodes, gs.SpaceNodes = n+1, 2*n+1
		if db, err = pde.ForwardMoneynessBundle(lvM, T, isCall, gs); err != nil {
			return
		}
		if res, err = ts.Solve(context.Background(), db); err != nil {
			return
		}
		var pdeU, exact []float64
		for j := 0; j < res.NumSpaceNodes(); j++ {
			if x := res.SpaceValue(j); x >= mLo && x <= mHi {
				pdeU = append(pdeU, res.FunctionValue(j))
				exact = append(exact, black.Price(1, x, T, sigma, isCall))
			}
		}
		row := ConvergenceRow{NT: n, NX: 2 * n}
		row.L2, row.LInf = utils.ErrorNorms(pdeU, exact)
		rows = append(rows, row)
	}
	return
}

func RunConvergence(ip *InputParameters.LocalVolParameters, levels, base int, file string) {
	rows, err := ConvergenceStudy(ip, levels, base)
	if err != nil {
		panic(err)
	}
	f, err := os.Create(file)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	_ = w.Write([]string{"Title", "nT", "nX", "Theta", "L2", "LInf"})
	theta := strconv.FormatFloat(ip.Solver.Theta, 'g', -1, 64)
	for _, r := range rows {
		fmt.Printf("%6d x %6d  L2 = %10.3e  max = %10.3e\n", r.NT, r.NX, r.L2, r.LInf)
		_ = w.Write([]string{ip.Title, strconv.Itoa(r.NT), strconv.Itoa(r.NX), theta,
			strconv.FormatFloat(r.L2, 'e', 6, 64), strconv.FormatFloat(r.LInf, 'e', 6, 64)})
	}
	w.Flush()
	if err = w.Error(); err != nil {
		panic(err)
	}
	reportSaved(file)
}
