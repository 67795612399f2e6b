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

package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wealthpath/wp-api/data"
	"github.com/wealthpath/wp-api/observability/opentelemetry"
	"github.com/wealthpath/wp-api/portfolio"
)

// ProjectionRequest is the caller contract for running a projection.
type ProjectionRequest struct {
	InitialBalance    float64                `json:"initialBalance"`
	WithdrawalRate    float64                `json:"withdrawalRate"`
	ReinvestDividends bool                   `json:"reinvestDividends"`
	StartYear         int                    `json:"startYear"`
	EndYear           int                    `json:"endYear"`
	Assets            []portfolio.Allocation `json:"assets"`
}

// ProjectionResponse carries the year-by-year trajectory plus headline
// statistics.
type ProjectionResponse struct {
	Years   []int                        `json:"years"`
	Records []portfolio.SimulationRecord `json:"records"`
	Summary portfolio.Summary            `json:"summary"`
}

// SeriesResponse carries the combined portfolio-level annual series.
type SeriesResponse struct {
	Years  []int            `json:"years"`
	Series portfolio.Series `json:"series"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RunProjection combines the requested allocations, slices the
// selected year range, and simulates the balance trajectory.
func RunProjection(combiner *portfolio.Combiner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, span := otel.Tracer(opentelemetry.Name).Start(c.Context(), "handler.RunProjection",
			trace.WithAttributes(opentelemetry.SpanAttributesFromFiber(c)...))
		defer span.End()

		var req ProjectionRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			log.Warn().Err(err).Msg("could not parse projection request")
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "malformed request body"})
		}

		if req.InitialBalance < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "initial balance must be >= 0"})
		}

		series, err := combiner.Combine(ctx, req.Assets)
		if err != nil {
			return combineErrorStatus(c, err)
		}

		if req.StartYear != 0 || req.EndYear != 0 {
			start := req.StartYear
			end := req.EndYear
			if start == 0 {
				start = series[0].Year
			}
			if end == 0 {
				end = series[len(series)-1].Year
			}
			series = portfolio.SliceYears(series, start, end)
		}

		records := portfolio.Simulate(req.InitialBalance, req.WithdrawalRate, series, req.ReinvestDividends)
		return c.JSON(ProjectionResponse{
			Years:   series.Years(),
			Records: records,
			Summary: portfolio.Summarize(records, req.InitialBalance),
		})
	}
}

// GetSeries returns the combined annual series for the requested
// allocations so a caller can present valid year bounds before
// projecting.
func GetSeries(combiner *portfolio.Combiner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, span := otel.Tracer(opentelemetry.Name).Start(c.Context(), "handler.GetSeries",
			trace.WithAttributes(opentelemetry.SpanAttributesFromFiber(c)...))
		defer span.End()

		allocations, err := parseAllocationQuery(
			c.Query("tickers"), c.Query("allocations"), c.Query("classes"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
		}

		series, err := combiner.Combine(ctx, allocations)
		if err != nil {
			return combineErrorStatus(c, err)
		}

		return c.JSON(SeriesResponse{
			Years:  series.Years(),
			Series: series,
		})
	}
}

func combineErrorStatus(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, portfolio.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	case errors.Is(err, portfolio.ErrNoData):
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: err.Error()})
	case errors.Is(err, data.ErrFetchFailed):
		return c.Status(fiber.StatusBadGateway).JSON(errorResponse{Error: err.Error()})
	default:
		log.Error().Err(err).Msg("projection request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: err.Error()})
	}
}

// parseAllocationQuery builds allocations from comma-separated query
// params. Omitted weights split 100% evenly; omitted classes default
// to Stock.
func parseAllocationQuery(tickersParam, allocationsParam, classesParam string) ([]portfolio.Allocation, error) {
	if strings.TrimSpace(tickersParam) == "" {
		return nil, portfolio.ErrInvalidInput
	}
	tickers := strings.Split(tickersParam, ",")

	var weights []string
	if allocationsParam != "" {
		weights = strings.Split(allocationsParam, ",")
		if len(weights) != len(tickers) {
			return nil, errors.New("allocations must match tickers")
		}
	}

	var classes []string
	if classesParam != "" {
		classes = strings.Split(classesParam, ",")
		if len(classes) != len(tickers) {
			return nil, errors.New("classes must match tickers")
		}
	}

	allocations := make([]portfolio.Allocation, 0, len(tickers))
	for i, ticker := range tickers {
		weight := 100.0 / float64(len(tickers))
		if weights != nil {
			w, err := strconv.ParseFloat(strings.TrimSpace(weights[i]), 64)
			if err != nil {
				return nil, errors.New("allocations must be numeric")
			}
			weight = w
		}

		class := data.AssetStock
		if classes != nil && strings.EqualFold(strings.TrimSpace(classes[i]), string(data.AssetCrypto)) {
			class = data.AssetCrypto
		}

		allocations = append(allocations, portfolio.Allocation{
			Ticker: strings.TrimSpace(ticker),
			Weight: weight,
			Class:  class,
		})
	}

	return allocations, nil
}
