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
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/notargets/golocalvol/InputParameters"
	"github.com/notargets/golocalvol/black"
	"github.com/notargets/golocalvol/pde"
	"github.com/notargets/golocalvol/utils"
	"github.com/spf13/cobra"
)

// PriceCmd represents the price command
var PriceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price the run file's strikes with the forward local volatility PDE",
	Long: `
Builds the Dupire local volatility in moneyness and runs a single forward
solve to the expiry, then reads every strike off that one grid. Reports prices
and the implied volatility the PDE reproduces against the input smile,

golocalvol price -I run.yaml --graph --png price`,
	Run: func(cmd *cobra.Command, args []string) {
		ip := processInput(cmd)
		pm := &PriceMeta{}
		pm.Graph, _ = cmd.Flags().GetBool("graph")
		hold, _ := cmd.Flags().GetInt("hold")
		pm.Hold = time.Duration(hold) * time.Second
		pm.PNG, _ = cmd.Flags().GetString("png")
		RunPrice(ip, pm)
	},
}

func init() {
	rootCmd.AddCommand(PriceCmd)
	addInputFlag(PriceCmd)
	PriceCmd.Flags().BoolP("graph", "g", false, "display the PDE smile against the input smile")
	PriceCmd.Flags().Int("hold", 30, "seconds to keep the graph on screen")
	PriceCmd.Flags().String("png", "", "file prefix for a smile plot and a solution heat map")
}

type PriceMeta struct {
	Graph bool
	Hold  time.Duration
	PNG   string
}

func RunPrice(ip *InputParameters.LocalVolParameters, pm *PriceMeta) {
	var (
		m      = newMarket(ip)
		db     = m.moneynessBundle(ip)
		isCall = ip.IsCall()
		res    pde.PDEResults
		err    error
		start  = time.Now()
	)
	ts, err := ip.ThetaSolver(true)
	if err != nil {
		panic(err)
	}
	if res, err = ts.Solve(context.Background(), db); err != nil {
		panic(err)
	}
	if verbose() {
		fmt.Printf("solved %d x %d grid in %v\n", db.Grid.NumTimeNodes(), db.Grid.NumSpaceNodes(), time.Since(start))
		fmt.Println(utils.GetMemUsage())
	}
	if utils.IsNan(res.TerminalResults()) {
		fmt.Printf("warning: the solution has NaN values, the local volatility is undefined somewhere on the grid\n")
	}
	fmt.Printf("%10s%10s%14s%12s%12s%12s\n", "strike", "m", "price", "pde vol", "input vol", "error")
	for _, k := range ip.Strikes {
		mk := k / m.fT
		price := m.fT * res.Interpolate(mk)
		inVol := m.vol.Volatility(ip.Expiry, k)
		pdeVol, err := black.ImpliedVolatility(price, m.fT, k, ip.Expiry, isCall)
		if err != nil {
			fmt.Printf("%10.4f%10.4f%14.6e  %v\n", k, mk, price, err)
			continue
		}
		fmt.Printf("%10.4f%10.4f%14.6e%12.6f%12.6f%12.2e\n", k, mk, price, pdeVol, inVol, pdeVol-inVol)
	}
	if !pm.Graph && len(pm.PNG) == 0 {
		return
	}

	// Smile across the inner part of the grid
	var (
		ks              []float64
		pdeVols, inVols []float64
		mLo, mHi        = math.Exp(-2 * m.atmVol * math.Sqrt(ip.Expiry)), math.Exp(2 * m.atmVol * math.Sqrt(ip.Expiry))
	)
	for j := 0; j < res.NumSpaceNodes(); j++ {
		mk := res.SpaceValue(j)
		if mk < mLo || mk > mHi {
			continue
		}
		k := mk * m.fT
		v, err := black.ImpliedVolatility(m.fT*res.FunctionValue(j), m.fT, k, ip.Expiry, isCall)
		if err != nil {
			v = math.NaN()
		}
		ks = append(ks, k)
		pdeVols = append(pdeVols, v)
		inVols = append(inVols, m.vol.Volatility(ip.Expiry, k))
	}
	smiles := []series{{"input", inVols}, {"PDE", pdeVols}}
	if len(pm.PNG) != 0 {
		prefix := strings.TrimSuffix(pm.PNG, ".png")
		file := prefix + "_smile.png"
		if err = saveLinePlot(file, ip.Title, "strike", ks, smiles); err != nil {
			panic(err)
		}
		reportSaved(file)
		if full, ok := res.(*pde.PDEFullResults1D); ok {
			file = prefix + "_solution.png"
			if err = saveHeatMap(file, "Forward price in moneyness", "moneyness", "t", full); err != nil {
				panic(err)
			}
			reportSaved(file)
		}
	}
	if pm.Graph {
		showChart(ks, smiles, pm.Hold)
	}
}
