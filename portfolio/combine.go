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
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"github.com/wealthpath/wp-api/data"
	"github.com/wealthpath/wp-api/observability/opentelemetry"
)

// DefaultPacing is the delay inserted between successive
// network-backed lookups to keep the upstream from throttling us.
const DefaultPacing = 300 * time.Millisecond

// Combiner aligns per-asset annual series and weight-sums them into a
// single portfolio-level series. Assets are resolved strictly
// sequentially in caller order; pacing between uncached lookups is the
// backpressure mechanism that keeps the upstream happy.
type Combiner struct {
	manager *data.Manager
	pacing  time.Duration
}

// NewCombiner creates a Combiner with pacing taken from the
// fetch.pacing setting.
func NewCombiner(manager *data.Manager) *Combiner {
	pacing := viper.GetDuration("fetch.pacing")
	if pacing == 0 {
		pacing = DefaultPacing
	}
	return &Combiner{
		manager: manager,
		pacing:  pacing,
	}
}

// NewCombinerWithPacing creates a Combiner with an explicit pacing
// delay; used by tests.
func NewCombinerWithPacing(manager *data.Manager, pacing time.Duration) *Combiner {
	return &Combiner{
		manager: manager,
		pacing:  pacing,
	}
}

// Combine produces the allocation-weighted annual series across all
// assets. The result is defined over the union of every asset's
// years: a year absent from one asset contributes zero for that asset
// rather than being excluded or interpolated, so an asset whose
// history starts later pulls the combined return toward zero for the
// years it wasn't part of.
//
// A fetch that exhausts its retry budget aborts the whole combination.
// Returns ErrInvalidInput before any network activity when no
// non-blank ticker is supplied, and ErrNoData when the combined
// result is empty.
func (c *Combiner) Combine(ctx context.Context, allocations []Allocation) (Series, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "portfolio.Combine")
	defer span.End()

	clean := make([]Allocation, 0, len(allocations))
	for _, alloc := range allocations {
		if strings.TrimSpace(alloc.Ticker) != "" {
			clean = append(clean, alloc)
		}
	}
	if len(clean) == 0 {
		return nil, ErrInvalidInput
	}

	combinedReturns := make(map[int]float64)
	combinedYields := make(map[int]float64)

	lastHitNetwork := false
	for idx, alloc := range clean {
		if idx > 0 && lastHitNetwork {
			select {
			case <-time.After(c.pacing):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		daily, cached, err := c.manager.History(ctx, alloc.Ticker, alloc.Class)
		if err != nil {
			log.Error().Err(err).Str("Ticker", alloc.Ticker).Msg("combine aborted by failed fetch")
			return nil, err
		}
		lastHitNetwork = !cached

		annual := data.ExtractAnnual(daily, alloc.Class)
		weight := alloc.Weight / 100.0
		for _, pt := range annual {
			combinedReturns[pt.Year] += pt.Return * weight
			combinedYields[pt.Year] += pt.DividendYield * weight
		}
	}

	if len(combinedReturns) == 0 {
		return nil, ErrNoData
	}

	series := make(Series, 0, len(combinedReturns))
	for year, ret := range combinedReturns {
		series = append(series, YearPoint{
			Year:          year,
			Return:        ret,
			DividendYield: combinedYields[year],
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Year < series[j].Year })

	log.Debug().Int("NumAssets", len(clean)).Int("NumYears", len(series)).Msg("combined portfolio series")
	return series, nil
}
