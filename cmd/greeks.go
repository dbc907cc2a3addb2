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
	"time"

	"github.com/notargets/golocalvol/InputParameters"
	"github.com/notargets/golocalvol/greeks"
	"github.com/notargets/golocalvol/volatility"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// GreeksCmd represents the greeks command
var GreeksCmd = &cobra.Command{
	Use:   "greeks",
	Short: "Bump and reprice Greeks for the run file's strikes",
	Long: `
Runs the base forward moneyness solve and eight bumped solves in parallel and
reports model, dual and Black Greeks per strike. With --backward each strike is
also priced on a spot grid with the backward equation. With --bucketed and a
table smile every quote is bumped alone and the implied vol response of each
strike is printed as a times by strikes grid,

golocalvol greeks -I run.yaml --backward --bucketed`,
	Run: func(cmd *cobra.Command, args []string) {
		ip := processInput(cmd)
		backward, _ := cmd.Flags().GetBool("backward")
		bucketed, _ := cmd.Flags().GetBool("bucketed")
		RunGreeks(ip, backward)
		if bucketed {
			RunBucketedVega(ip)
		}
	},
}

func init() {
	rootCmd.AddCommand(GreeksCmd)
	addInputFlag(GreeksCmd)
	GreeksCmd.Flags().BoolP("backward", "b", false, "also run backward spot solves per strike")
	GreeksCmd.Flags().Bool("bucketed", false, "bucketed vega against each table smile quote")
}

func RunGreeks(ip *InputParameters.LocalVolParameters, backward bool) {
	var (
		m     = newMarket(ip)
		c     = ip.GreekCalculator()
		ctx   = context.Background()
		start = time.Now()
	)
	rows, err := c.ForwardGreeks(ctx, m.vol, m.fwd, ip.Expiry, ip.IsCall(), ip.Strikes)
	if err != nil {
		panic(err)
	}
	if verbose() {
		fmt.Printf("nine scenario solves in %v\n", time.Since(start))
	}
	fmt.Printf("%10s%12s%10s%10s%10s%12s%12s%12s%12s%10s%10s%10s\n", "strike", "price", "vol",
		"delta", "bs delta", "gamma", "vega", "vanna", "vomma", "dual d", "dual g", "fixed d")
	for _, r := range rows {
		if r.Err != nil && r.Price == 0 {
			fmt.Printf("%10.4f  %v\n", r.Strike, r.Err)
			continue
		}
		fmt.Printf("%10.4f%12.4e%10.5f%10.5f%10.5f%12.4e%12.4e%12.4e%12.4e%10.5f%10.3g%10.5f\n",
			r.Strike, r.Price, r.ImpliedVol, r.Delta, r.BlackDelta, r.Gamma, r.Vega, r.Vanna, r.Vomma,
			r.DualDelta, r.DualGamma, r.FixedSurfaceDelta)
		if r.Err != nil {
			fmt.Printf("%10s  %v\n", "", r.Err)
		}
	}
	if !backward {
		return
	}
	var (
		lv = volatility.NewDupireCalculator().LocalVolatilitySurface(m.vol, m.fwd)
		yc = ip.YieldCurve()
		bg greeks.BackwardGreeks
	)
	fmt.Printf("\nBackward spot solves, spot %g\n", m.fwd.Spot())
	fmt.Printf("%10s%12s%10s%12s%12s%12s\n", "strike", "price", "delta", "gamma", "bump delta", "bump gamma")
	for _, k := range ip.Strikes {
		if bg, err = c.BackwardGreeks(ctx, lv, m.fwd, yc, ip.Expiry, k, ip.IsCall()); err != nil {
			fmt.Printf("%10.4f  %v\n", k, err)
			continue
		}
		fmt.Printf("%10.4f%12.4e%10.5f%12.4e%12.5f%12.4e\n", k, bg.Price, bg.Delta, bg.Gamma, bg.BumpDelta, bg.BumpGamma)
	}
}

func RunBucketedVega(ip *InputParameters.LocalVolParameters) {
	nodes, ok := ip.VolNodes()
	if !ok {
		fmt.Printf("\nbucketed vega needs a table smile, have %q\n", ip.Smile.Type)
		return
	}
	var (
		m     = newMarket(ip)
		c     = ip.GreekCalculator()
		start = time.Now()
	)
	rows, err := c.BucketedVega(context.Background(), nodes, m.fwd, ip.Expiry, ip.IsCall(), ip.Strikes)
	if err != nil {
		panic(err)
	}
	if verbose() {
		fmt.Printf("%d bucketed solves in %v\n", 1+len(nodes.Times)*len(nodes.Strikes), time.Since(start))
	}
	for _, r := range rows {
		fmt.Printf("\nBucketed vega, strike %g", r.Strike)
		if r.Err != nil {
			fmt.Printf(": %v\n", r.Err)
			continue
		}
		fmt.Printf(", implied vol %.5f, dσ/dσ(i,j) by time and quote strike\n", r.ImpliedVol)
		fmt.Printf("%v\n", mat.Formatted(r.Sensitivity, mat.Prefix(""), mat.Squeeze()))
	}
}
