// Copyright 2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wealthpath/wp-api/common"
	"github.com/wealthpath/wp-api/data"
	"github.com/wealthpath/wp-api/portfolio"
)

var (
	projectBalance  float64
	projectRate     float64
	projectReinvest bool
	projectStart    int
	projectEnd      int
)

func init() {
	projectCmd.Flags().Float64Var(&projectBalance, "balance", 100000, "Initial balance in USD")
	projectCmd.Flags().Float64Var(&projectRate, "rate", 4.0, "Annual withdrawal rate (%)")
	projectCmd.Flags().BoolVar(&projectReinvest, "reinvest", false, "Reinvest dividends")
	projectCmd.Flags().IntVar(&projectStart, "start", 0, "First year of the projection (default: first year with data)")
	projectCmd.Flags().IntVar(&projectEnd, "end", 0, "Last year of the projection (default: last year with data)")

	rootCmd.AddCommand(projectCmd)
}

var projectCmd = &cobra.Command{
	Use:        "project [flags] TICKER:WEIGHT[:CLASS] ...",
	Short:      "Project a portfolio balance over historical years",
	Long:       `Fetch historical data for the given allocations, combine them into a portfolio-level annual series, and project the balance forward under the withdrawal policy.`,
	Args:       cobra.MinimumNArgs(1),
	ArgAliases: []string{"Allocations"},
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()

		allocations, err := parseAllocationArgs(args)
		if err != nil {
			log.Fatal().Err(err).Msg("could not parse allocations")
		}

		manager := data.NewManager()
		combiner := portfolio.NewCombiner(manager)

		series, err := combiner.Combine(context.Background(), allocations)
		if err != nil {
			log.Fatal().Err(err).Msg("could not combine portfolio series")
		}

		start := projectStart
		end := projectEnd
		if start == 0 {
			start = series[0].Year
		}
		if end == 0 {
			end = series[len(series)-1].Year
		}
		selected := portfolio.SliceYears(series, start, end)

		records := portfolio.Simulate(projectBalance, projectRate, selected, projectReinvest)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Year", "Balance", "Change %", "Dividend", "Withdrawal", "Total W+D"})
		for _, rec := range records {
			table.Append([]string{
				strconv.Itoa(rec.Year),
				fmt.Sprintf("%.2f", rec.Balance),
				fmt.Sprintf("%.2f", rec.PctChange),
				fmt.Sprintf("%.2f", rec.Dividend),
				fmt.Sprintf("%.2f", rec.Withdrawal),
				fmt.Sprintf("%.2f", rec.TotalWithdrawalAndDividend),
			})
		}
		table.Render()

		summary := portfolio.Summarize(records, projectBalance)
		fmt.Printf("\nFinal Balance: %.2f\n", summary.FinalBalance)
		fmt.Printf("Total Withdrawals: %.2f\n", summary.TotalWithdrawals)
		fmt.Printf("Total Dividends: %.2f\n", summary.TotalDividends)
		fmt.Printf("CAGR: %.2f%%\n", summary.CAGR)
		fmt.Printf("Mean Change: %.2f%% (stddev %.2f%%)\n", summary.MeanPctChange, summary.StdDevPctChange)
		fmt.Printf("Best Year: %d  Worst Year: %d\n", summary.BestYear, summary.WorstYear)
	},
}

// parseAllocationArgs parses TICKER:WEIGHT[:CLASS] argument triples.
func parseAllocationArgs(args []string) ([]portfolio.Allocation, error) {
	allocations := make([]portfolio.Allocation, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid allocation %q; expected TICKER:WEIGHT[:CLASS]", arg)
		}

		weight, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight in %q: %w", arg, err)
		}

		class := data.AssetStock
		if len(parts) == 3 {
			switch strings.ToLower(parts[2]) {
			case "stock":
				class = data.AssetStock
			case "crypto":
				class = data.AssetCrypto
			default:
				return nil, fmt.Errorf("invalid asset class in %q; expected Stock or Crypto", arg)
			}
		}

		allocations = append(allocations, portfolio.Allocation{
			Ticker: strings.ToUpper(strings.TrimSpace(parts[0])),
			Weight: weight,
			Class:  class,
		})
	}
	return allocations, nil
}
