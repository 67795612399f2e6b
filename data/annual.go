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

package data

// ExtractAnnual resamples a daily history into per-calendar-year
// return and dividend-yield percentages. It is deterministic and does
// no I/O; an empty input yields an empty result.
//
// The year-end close is forward-filled to the last available close on
// or before December 31, so a year with no trading data still has a
// defined close and a 0% return. The first observed year has no prior
// year-end to compare against and is dropped. Dividend yield is the
// sum of dividends paid in the year divided by the year-end close;
// crypto assets have no dividend concept and always yield 0.
func ExtractAnnual(daily DailySeries, class AssetClass) AnnualSeries {
	if len(daily) == 0 {
		return AnnualSeries{}
	}

	firstYear := daily[0].Date.Year()
	lastYear := daily[len(daily)-1].Date.Year()

	yearEndClose := make(map[int]float64, lastYear-firstYear+1)
	yearDividends := make(map[int]float64, lastYear-firstYear+1)
	for _, bar := range daily {
		year := bar.Date.Year()
		// bars are date-ordered so the last write wins
		yearEndClose[year] = bar.Close
		yearDividends[year] += bar.Dividend
	}

	// forward-fill closes over years with no trading data
	lastClose := 0.0
	for year := firstYear; year <= lastYear; year++ {
		if yearClose, ok := yearEndClose[year]; ok {
			lastClose = yearClose
		} else {
			yearEndClose[year] = lastClose
		}
	}

	annual := make(AnnualSeries, 0, lastYear-firstYear)
	prevClose := yearEndClose[firstYear]
	for year := firstYear + 1; year <= lastYear; year++ {
		yearClose := yearEndClose[year]

		ret := 0.0
		if prevClose != 0 {
			ret = (yearClose/prevClose - 1) * 100
		}

		yield := 0.0
		if class != AssetCrypto && yearClose != 0 {
			yield = yearDividends[year] / yearClose * 100
		}

		annual = append(annual, AnnualPoint{
			Year:          year,
			Return:        ret,
			DividendYield: yield,
		})
		prevClose = yearClose
	}

	return annual
}
