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

package data_test

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wealthpath/wp-api/data"
)

const chartBody = `{"chart":{"result":[{"timestamp":[1609372800,1640908800],` +
	`"indicators":{"quote":[{"close":[100.0,110.0]}]},` +
	`"events":{"dividends":{"1640908800":{"amount":2.0,"date":1640908800}}}}],"error":null}}`

const notFoundBody = `{"chart":{"result":null,` +
	`"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

const nullCloseDividendBody = `{"chart":{"result":[{"timestamp":[1609372800,1625097600,1640908800],` +
	`"indicators":{"quote":[{"close":[100.0,null,110.0]}]},` +
	`"events":{"dividends":{"1625097600":{"amount":1.5,"date":1625097600}}}}],"error":null}}`

var _ = Describe("Manager", func() {
	var (
		ctx     context.Context
		manager *data.Manager
	)

	BeforeEach(func() {
		httpmock.Activate()
		ctx = context.Background()
		manager = data.NewManagerWithProvider(data.NewYahoo(), 8, time.Hour)
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	Context("when the upstream responds with data", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v8/finance/chart/VTI?range=max&interval=1d&events=div",
				httpmock.NewStringResponder(200, chartBody))
		})

		It("returns the parsed daily series", func() {
			series, cached, err := manager.History(ctx, "VTI", data.AssetStock)
			Expect(err).To(BeNil())
			Expect(cached).To(BeFalse())
			Expect(series).To(HaveLen(2))
			Expect(series[0].Close).To(Equal(100.0))
			Expect(series[1].Close).To(Equal(110.0))
			Expect(series[0].Date.Before(series[1].Date)).To(BeTrue())
		})

		It("attaches dividend events to the matching day", func() {
			series, _, err := manager.History(ctx, "VTI", data.AssetStock)
			Expect(err).To(BeNil())
			Expect(series[0].Dividend).To(BeZero())
			Expect(series[1].Dividend).To(Equal(2.0))
		})

		It("serves the second request from cache without a network call", func() {
			_, cached, err := manager.History(ctx, "VTI", data.AssetStock)
			Expect(err).To(BeNil())
			Expect(cached).To(BeFalse())
			Expect(httpmock.GetTotalCallCount()).To(Equal(1))

			series, cached, err := manager.History(ctx, "VTI", data.AssetStock)
			Expect(err).To(BeNil())
			Expect(cached).To(BeTrue())
			Expect(series).To(HaveLen(2))
			Expect(httpmock.GetTotalCallCount()).To(Equal(1))
		})

		It("normalizes the symbol before keying the cache", func() {
			_, _, err := manager.History(ctx, " vti ", data.AssetStock)
			Expect(err).To(BeNil())

			_, cached, err := manager.History(ctx, "VTI", data.AssetStock)
			Expect(err).To(BeNil())
			Expect(cached).To(BeTrue())
			Expect(httpmock.GetTotalCallCount()).To(Equal(1))
		})
	})

	Context("when a dividend falls on a day with a null close", func() {
		It("attaches the payout to the nearest prior bar", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v8/finance/chart/VTI?range=max&interval=1d&events=div",
				httpmock.NewStringResponder(200, nullCloseDividendBody))

			series, _, err := manager.History(ctx, "VTI", data.AssetStock)
			Expect(err).To(BeNil())
			Expect(series).To(HaveLen(2))
			Expect(series[0].Dividend).To(Equal(1.5))
			Expect(series[1].Dividend).To(BeZero())
		})
	})

	Context("when the symbol is a crypto asset", func() {
		It("queries the USD-suffixed provider symbol", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v8/finance/chart/BTC-USD?range=max&interval=1d&events=div",
				httpmock.NewStringResponder(200, chartBody))

			series, _, err := manager.History(ctx, "BTC", data.AssetCrypto)
			Expect(err).To(BeNil())
			Expect(series).To(HaveLen(2))
		})
	})

	Context("when the upstream has no data for the symbol", func() {
		It("returns an empty series, not an error", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v8/finance/chart/NOSUCH?range=max&interval=1d&events=div",
				httpmock.NewStringResponder(404, notFoundBody))

			series, cached, err := manager.History(ctx, "NOSUCH", data.AssetStock)
			Expect(err).To(BeNil())
			Expect(cached).To(BeFalse())
			Expect(series).To(BeEmpty())
			Expect(httpmock.GetTotalCallCount()).To(Equal(1))
		})
	})

	Context("when the upstream throttles then recovers", func() {
		It("retries with backoff and succeeds", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v8/finance/chart/VTI?range=max&interval=1d&events=div",
				httpmock.ResponderFromMultipleResponses([]*http.Response{
					httpmock.NewStringResponse(http.StatusTooManyRequests, "Too Many Requests"),
					httpmock.NewStringResponse(200, chartBody),
				}))

			series, _, err := manager.History(ctx, "VTI", data.AssetStock)
			Expect(err).To(BeNil())
			Expect(series).To(HaveLen(2))
			Expect(httpmock.GetTotalCallCount()).To(Equal(2))
		})
	})

	Context("when every attempt fails", func() {
		It("surfaces a FetchError after six attempts", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v8/finance/chart/VTI?range=max&interval=1d&events=div",
				httpmock.NewErrorResponder(errors.New("connection reset by peer")))

			_, _, err := manager.History(ctx, "VTI", data.AssetStock)
			Expect(err).NotTo(BeNil())
			Expect(errors.Is(err, data.ErrFetchFailed)).To(BeTrue())

			var fetchErr *data.FetchError
			Expect(errors.As(err, &fetchErr)).To(BeTrue())
			Expect(fetchErr.Attempts).To(Equal(6))
			Expect(fetchErr.Kind).To(Equal(data.KindTransient))
			Expect(httpmock.GetTotalCallCount()).To(Equal(6))
		})

		It("stops early when the context is cancelled", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v8/finance/chart/VTI?range=max&interval=1d&events=div",
				httpmock.NewErrorResponder(errors.New("connection reset by peer")))

			cancelCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
			defer cancel()

			_, _, err := manager.History(cancelCtx, "VTI", data.AssetStock)
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})
	})
})
