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

import "time"

// AssetClass categorizes a security and selects how its symbol is
// presented to the upstream provider.
type AssetClass string

const (
	AssetStock  AssetClass = "Stock"
	AssetCrypto AssetClass = "Crypto"
)

// Bar is a single day of price history for one security.
type Bar struct {
	Date     time.Time `json:"date"`
	Close    float64   `json:"close"`
	Dividend float64   `json:"dividend"`
}

// DailySeries is the full price/dividend history of one security,
// ordered by strictly increasing date. An empty series means the
// upstream has no data for the symbol; that is not an error.
type DailySeries []Bar

// AnnualPoint holds the derived figures for one calendar year.
type AnnualPoint struct {
	Year          int     `json:"year"`
	Return        float64 `json:"return"`
	DividendYield float64 `json:"dividendYield"`
}

// AnnualSeries is ordered by strictly increasing year.
type AnnualSeries []AnnualPoint

// SecurityClass identifies a cached history. The same ticker may exist
// as both a stock and a crypto asset under different provider symbols,
// so the class is part of the key.
type SecurityClass struct {
	Symbol string
	Class  AssetClass
}
