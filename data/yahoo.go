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

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wealthpath/wp-api/observability/opentelemetry"
)

var yahooAPI = "https://query1.finance.yahoo.com"

// HistoryProvider retrieves the full daily history for one symbol.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol string, class AssetClass) (DailySeries, error)
}

// Yahoo implements HistoryProvider against the Yahoo Finance chart API.
type Yahoo struct {
	client *http.Client
}

type yahooDividend struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]yahooDividend `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewYahoo creates a new Yahoo Finance history provider.
func NewYahoo() *Yahoo {
	return &Yahoo{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// marketDay truncates a bar or event timestamp to its UTC calendar day.
func marketDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ProviderSymbol maps a ticker to the symbol Yahoo expects. Crypto
// assets are quoted against USD under a suffixed symbol.
func ProviderSymbol(symbol string, class AssetClass) string {
	if class == AssetCrypto {
		return fmt.Sprintf("%s-USD", symbol)
	}
	return symbol
}

// FetchHistory downloads the complete daily history for the symbol. A
// symbol unknown to the upstream yields an empty series with no error;
// transport and throttling failures are returned to the caller for
// retry classification.
func (y *Yahoo) FetchHistory(ctx context.Context, symbol string, class AssetClass) (DailySeries, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "yahoo.FetchHistory")
	defer span.End()

	providerSymbol := ProviderSymbol(symbol, class)
	subLog := log.With().Str("Symbol", symbol).Str("ProviderSymbol", providerSymbol).Logger()

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=max&interval=1d&events=div",
		yahooAPI, url.PathEscape(providerSymbol))

	span.SetAttributes(
		attribute.KeyValue{Key: "Url", Value: attribute.StringValue(reqURL)},
		attribute.KeyValue{Key: "Symbol", Value: attribute.StringValue(providerSymbol)},
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.client.Do(req)
	if err != nil {
		span.RecordError(err)
		msg := "yahoo http request failed"
		span.SetStatus(codes.Error, msg)
		subLog.Warn().Err(err).Msg(msg)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		msg := "could not read yahoo body"
		span.SetStatus(codes.Error, msg)
		subLog.Warn().Err(err).Msg(msg)
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		msg := fmt.Sprintf("yahoo rate limit: status 429, body: %s", string(body))
		span.SetStatus(codes.Error, msg)
		subLog.Warn().Int("HTTPResponseStatusCode", resp.StatusCode).Msg("yahoo throttled request")
		return nil, errors.New(msg)
	}

	var chart yahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode >= 400 {
			subLog.Warn().Int("HTTPResponseStatusCode", resp.StatusCode).Msg("yahoo request failed")
			return nil, fmt.Errorf("HTTP request returned invalid status code: %d", resp.StatusCode)
		}
		span.RecordError(err)
		msg := "could not unmarshal json"
		span.SetStatus(codes.Error, msg)
		subLog.Warn().Err(err).Bytes("Body", body).Msg(msg)
		return nil, err
	}

	if chart.Chart.Error != nil {
		// an unknown symbol is an empty history, not a failure
		if strings.EqualFold(chart.Chart.Error.Code, "Not Found") {
			subLog.Debug().Msg("symbol has no history")
			return DailySeries{}, nil
		}
		msg := fmt.Sprintf("yahoo api error: %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
		span.SetStatus(codes.Error, msg)
		subLog.Warn().Str("Code", chart.Chart.Error.Code).Msg("yahoo api returned error")
		return nil, errors.New(msg)
	}

	if resp.StatusCode >= 400 {
		subLog.Warn().Int("HTTPResponseStatusCode", resp.StatusCode).Msg("yahoo request failed")
		return nil, fmt.Errorf("HTTP request returned invalid status code: %d", resp.StatusCode)
	}

	if len(chart.Chart.Result) == 0 {
		return DailySeries{}, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return DailySeries{}, nil
	}

	quote := result.Indicators.Quote[0]
	series := make(DailySeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			// null bars on holidays and halts
			continue
		}
		series = append(series, Bar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *quote.Close[i],
		})
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	// A payout on a day with no surviving bar still counts toward the
	// year's dividend total, so it is attached to the nearest prior bar
	// rather than dropped with the null close.
	for _, div := range result.Events.Dividends {
		if len(series) == 0 {
			break
		}
		day := marketDay(time.Unix(div.Date, 0).UTC())
		idx := sort.Search(len(series), func(i int) bool {
			return marketDay(series[i].Date).After(day)
		})
		if idx > 0 {
			idx--
		}
		series[idx].Dividend += div.Amount
	}

	subLog.Debug().Int("NumBars", len(series)).Msg("loaded history from yahoo")
	return series, nil
}
