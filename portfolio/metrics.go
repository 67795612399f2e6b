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

package portfolio

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a projected trajectory into headline figures.
type Summary struct {
	FinalBalance     float64 `json:"finalBalance"`
	TotalWithdrawals float64 `json:"totalWithdrawals"`
	TotalDividends   float64 `json:"totalDividends"`
	CAGR             float64 `json:"cagr"`
	MeanPctChange    float64 `json:"meanPctChange"`
	StdDevPctChange  float64 `json:"stdDevPctChange"`
	BestYear         int     `json:"bestYear"`
	WorstYear        int     `json:"worstYear"`
}

// Summarize computes headline statistics for a simulated trajectory.
// An empty trajectory yields a zero Summary.
func Summarize(records []SimulationRecord, initialBalance float64) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	changes := make([]float64, 0, len(records))
	summary := Summary{
		FinalBalance: records[len(records)-1].Balance,
		BestYear:     records[0].Year,
		WorstYear:    records[0].Year,
	}

	best := records[0].PctChange
	worst := records[0].PctChange
	for _, rec := range records {
		summary.TotalWithdrawals += rec.Withdrawal
		summary.TotalDividends += rec.Dividend
		changes = append(changes, rec.PctChange)
		if rec.PctChange > best {
			best = rec.PctChange
			summary.BestYear = rec.Year
		}
		if rec.PctChange < worst {
			worst = rec.PctChange
			summary.WorstYear = rec.Year
		}
	}

	mean, stdDev := stat.MeanStdDev(changes, nil)
	summary.MeanPctChange = mean
	if !math.IsNaN(stdDev) {
		summary.StdDevPctChange = stdDev
	}

	if initialBalance > 0 && summary.FinalBalance > 0 {
		years := float64(len(records))
		summary.CAGR = (math.Pow(summary.FinalBalance/initialBalance, 1.0/years) - 1.0) * 100.0
	}

	return summary
}
