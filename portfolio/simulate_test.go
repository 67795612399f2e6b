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

package portfolio_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wealthpath/wp-api/portfolio"
)

var _ = Describe("Simulate", func() {
	Context("with a single year, 10% return and 2% dividend yield", func() {
		series := portfolio.Series{
			{Year: 2020, Return: 10, DividendYield: 2},
		}

		It("pays the dividend out when not reinvesting", func() {
			records := portfolio.Simulate(100000, 4, series, false)
			Expect(records).To(HaveLen(1))

			rec := records[0]
			Expect(rec.Dividend).Should(BeNumerically("~", 2000, 1e-9))
			Expect(rec.Withdrawal).To(BeZero())
			Expect(rec.TotalWithdrawalAndDividend).Should(BeNumerically("~", 2000, 1e-9))
			// the payout is debited from the balance:
			// 100000 - 2000 = 98000, then the return compounds
			Expect(rec.Balance).Should(BeNumerically("~", 107800, 1e-6))
			Expect(rec.PctChange).Should(BeNumerically("~", 10, 1e-9))
		})

		It("adds the dividend back when reinvesting", func() {
			records := portfolio.Simulate(100000, 4, series, true)
			Expect(records).To(HaveLen(1))

			rec := records[0]
			Expect(rec.Dividend).Should(BeNumerically("~", 2000, 1e-9))
			Expect(rec.Withdrawal).To(BeZero())
			Expect(rec.TotalWithdrawalAndDividend).To(BeZero())
			// 100000 + 2000 = 102000, then the return compounds
			Expect(rec.Balance).Should(BeNumerically("~", 112200, 1e-6))
			Expect(rec.PctChange).Should(BeNumerically("~", 10, 1e-9))
		})
	})

	Context("over multiple years", func() {
		series := portfolio.Series{
			{Year: 2019, Return: 10, DividendYield: 0},
			{Year: 2020, Return: 5, DividendYield: 1},
			{Year: 2021, Return: -20, DividendYield: 1},
		}

		It("never withdraws in the first year regardless of the rate", func() {
			records := portfolio.Simulate(50000, 90, series, true)
			Expect(records[0].Withdrawal).To(BeZero())
			Expect(records[1].Withdrawal).Should(BeNumerically(">", 0))
			Expect(records[2].Withdrawal).Should(BeNumerically(">", 0))
		})

		It("withdraws against the running balance, not the initial balance", func() {
			records := portfolio.Simulate(100000, 4, series, true)
			// year 0: 100000 * 1.10 = 110000
			// year 1 withdrawal: 110000 * 4%
			Expect(records[1].Withdrawal).Should(BeNumerically("~", 4400, 1e-6))
		})

		It("emits one record per year in the selected range", func() {
			records := portfolio.Simulate(100000, 4, series, false)
			Expect(records).To(HaveLen(len(series)))
			Expect(records[0].Year).To(Equal(2019))
			Expect(records[2].Year).To(Equal(2021))
		})

		It("has zero totals when the rate is zero and dividends reinvest", func() {
			records := portfolio.Simulate(100000, 0, series, true)
			for _, rec := range records {
				Expect(rec.TotalWithdrawalAndDividend).To(BeZero())
			}
		})

		It("compounds later years on the dividend-debited balance", func() {
			paid := portfolio.Series{
				{Year: 2019, Return: 10, DividendYield: 2},
				{Year: 2020, Return: 10, DividendYield: 2},
			}
			records := portfolio.Simulate(100000, 0, paid, false)
			// year 0: (100000 - 2000) * 1.10 = 107800
			Expect(records[0].Balance).Should(BeNumerically("~", 107800, 1e-6))
			// year 1: dividend 2156 leaves the account before the return
			Expect(records[1].Dividend).Should(BeNumerically("~", 2156, 1e-6))
			Expect(records[1].Balance).Should(BeNumerically("~", (107800-2156)*1.10, 1e-6))
		})

		It("is a pure function of its inputs", func() {
			first := portfolio.Simulate(100000, 4, series, true)
			second := portfolio.Simulate(100000, 4, series, true)
			Expect(second).To(Equal(first))
		})
	})

	Context("with degenerate input", func() {
		It("yields an empty sequence for an empty series", func() {
			Expect(portfolio.Simulate(100000, 4, portfolio.Series{}, true)).To(BeEmpty())
		})

		It("reports 0% change when the running balance is zero", func() {
			series := portfolio.Series{
				{Year: 2020, Return: 10, DividendYield: 0},
			}
			records := portfolio.Simulate(0, 4, series, true)
			Expect(records).To(HaveLen(1))
			Expect(records[0].Balance).To(BeZero())
			Expect(records[0].PctChange).To(BeZero())
		})
	})
})
