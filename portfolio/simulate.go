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

// Simulate projects the balance year by year over the supplied series.
// It is a pure function: identical inputs always produce identical
// output, and degenerate input yields an empty slice.
//
// The order of operations within a year is the defining semantic:
// dividends and withdrawals adjust the balance first, then the annual
// return compounds on the adjusted balance. The first year of the
// selected range never withdraws (it models the deposit year). When
// dividends are not reinvested they are paid out of the account: the
// balance is debited by the dividend and it counts toward the year's
// total withdrawal-plus-dividend figure.
func Simulate(initialBalance, withdrawalRate float64, series Series, reinvestDividends bool) []SimulationRecord {
	records := make([]SimulationRecord, 0, len(series))
	balance := initialBalance

	for i, pt := range series {
		dividend := balance * pt.DividendYield / 100.0

		withdrawal := 0.0
		if i > 0 {
			withdrawal = balance * withdrawalRate / 100.0
		}

		balance -= withdrawal
		if reinvestDividends {
			balance += dividend
		} else {
			balance -= dividend
		}

		total := withdrawal
		if !reinvestDividends {
			total += dividend
		}

		prev := balance
		balance *= 1.0 + pt.Return/100.0

		pctChange := 0.0
		if prev != 0 {
			pctChange = (balance - prev) / prev * 100.0
		}

		records = append(records, SimulationRecord{
			Year:                       pt.Year,
			Balance:                    balance,
			PctChange:                  pctChange,
			Dividend:                   dividend,
			Withdrawal:                 withdrawal,
			TotalWithdrawalAndDividend: total,
		})
	}

	return records
}
