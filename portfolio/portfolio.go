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
	"errors"

	"github.com/wealthpath/wp-api/data"
)

var (
	ErrInvalidInput = errors.New("enter at least one ticker")
	ErrNoData       = errors.New("no data available for the provided tickers")
)

// Allocation assigns a weight to one asset. Weights are percentages
// but are not required to sum to 100; the combiner trusts the caller.
type Allocation struct {
	Ticker string          `json:"ticker"`
	Weight float64         `json:"allocation"`
	Class  data.AssetClass `json:"assetClass"`
}

// YearPoint is one year of the combined portfolio-level series.
type YearPoint struct {
	Year          int     `json:"year"`
	Return        float64 `json:"return"`
	DividendYield float64 `json:"dividendYield"`
}

// Series is a portfolio-level annual series ordered by year.
type Series []YearPoint

// Years lists the years present in the series, in order.
func (s Series) Years() []int {
	years := make([]int, 0, len(s))
	for _, pt := range s {
		years = append(years, pt.Year)
	}
	return years
}

// SliceYears returns the sub-series with startYear <= year <= endYear,
// both bounds inclusive.
func SliceYears(s Series, startYear, endYear int) Series {
	out := make(Series, 0, len(s))
	for _, pt := range s {
		if pt.Year >= startYear && pt.Year <= endYear {
			out = append(out, pt)
		}
	}
	return out
}

// SimulationRecord is one year of a projected balance trajectory.
type SimulationRecord struct {
	Year                       int     `json:"year"`
	Balance                    float64 `json:"balance"`
	PctChange                  float64 `json:"pctChange"`
	Dividend                   float64 `json:"dividend"`
	Withdrawal                 float64 `json:"withdrawal"`
	TotalWithdrawalAndDividend float64 `json:"totalWithdrawalAndDividend"`
}
