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

var _ = Describe("Summarize", func() {
	It("returns a zero summary for an empty trajectory", func() {
		Expect(portfolio.Summarize(nil, 100000)).To(Equal(portfolio.Summary{}))
	})

	Context("with a two year trajectory", func() {
		records := []portfolio.SimulationRecord{
			{Year: 2020, Balance: 110000, PctChange: 10, Dividend: 2000, Withdrawal: 0},
			{Year: 2021, Balance: 121000, PctChange: 10, Dividend: 2200, Withdrawal: 4400},
		}

		It("totals withdrawals and dividends", func() {
			summary := portfolio.Summarize(records, 100000)
			Expect(summary.TotalWithdrawals).Should(BeNumerically("~", 4400, 1e-9))
			Expect(summary.TotalDividends).Should(BeNumerically("~", 4200, 1e-9))
			Expect(summary.FinalBalance).Should(BeNumerically("~", 121000, 1e-9))
		})

		It("computes the CAGR from initial to final balance", func() {
			summary := portfolio.Summarize(records, 100000)
			// 121000/100000 over 2 years
			Expect(summary.CAGR).Should(BeNumerically("~", 10.0, 1e-9))
		})

		It("averages the yearly changes", func() {
			summary := portfolio.Summarize(records, 100000)
			Expect(summary.MeanPctChange).Should(BeNumerically("~", 10.0, 1e-9))
			Expect(summary.StdDevPctChange).Should(BeNumerically("~", 0.0, 1e-9))
		})
	})

	Context("with mixed years", func() {
		records := []portfolio.SimulationRecord{
			{Year: 2019, Balance: 120000, PctChange: 20},
			{Year: 2020, Balance: 96000, PctChange: -20},
			{Year: 2021, Balance: 105600, PctChange: 10},
		}

		It("identifies the best and worst years", func() {
			summary := portfolio.Summarize(records, 100000)
			Expect(summary.BestYear).To(Equal(2019))
			Expect(summary.WorstYear).To(Equal(2020))
		})
	})

	Context("when the trajectory ends below zero", func() {
		It("leaves the CAGR undefined at zero", func() {
			records := []portfolio.SimulationRecord{
				{Year: 2020, Balance: -500, PctChange: -100.5},
			}
			summary := portfolio.Summarize(records, 100000)
			Expect(summary.CAGR).To(BeZero())
		})
	})
})
