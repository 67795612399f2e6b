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
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	maxFetchAttempts = 6

	transientBackoffCap   = 30 * time.Second
	rateLimitedBackoffCap = 60 * time.Second
)

// ErrKind classifies an upstream failure for backoff purposes.
type ErrKind string

const (
	KindRateLimited ErrKind = "rate-limited"
	KindTransient   ErrKind = "transient"
)

var rateLimitSignatures = []string{
	"too many requests",
	"rate limit",
	"429",
}

// ClassifyErr decides whether an upstream error is a throttling
// response or an ordinary transient failure.
func ClassifyErr(err error) ErrKind {
	msg := strings.ToLower(err.Error())
	for _, sig := range rateLimitSignatures {
		if strings.Contains(msg, sig) {
			return KindRateLimited
		}
	}
	return KindTransient
}

// BackoffDelay returns the sleep before retrying attempt+1. The base
// delay grows 1.5x per attempt with up to one second of jitter and is
// capped at 30s; throttled failures double the delay and raise the
// cap to 60s.
func BackoffDelay(attempt int, kind ErrKind) time.Duration {
	base := math.Pow(1.5, float64(attempt)) + rand.Float64()
	delay := time.Duration(base * float64(time.Second))
	if delay > transientBackoffCap {
		delay = transientBackoffCap
	}
	if kind == KindRateLimited {
		delay *= 2
		if delay > rateLimitedBackoffCap {
			delay = rateLimitedBackoffCap
		}
	}
	return delay
}

// fetchWithRetry runs fn up to maxFetchAttempts times, sleeping the
// backoff delay between failures. Once the budget is spent the last
// error is surfaced as a *FetchError; it is never retried at a higher
// level.
func fetchWithRetry(ctx context.Context, symbol string, fn func() (DailySeries, error)) (DailySeries, error) {
	subLog := log.With().Str("Symbol", symbol).Logger()

	var lastErr error
	var lastKind ErrKind

	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		series, err := fn()
		if err == nil {
			return series, nil
		}

		lastErr = err
		lastKind = ClassifyErr(err)
		delay := BackoffDelay(attempt, lastKind)
		subLog.Warn().Err(err).Int("Attempt", attempt).Str("Kind", string(lastKind)).
			Dur("Backoff", delay).Msg("history fetch attempt failed")

		if attempt == maxFetchAttempts-1 {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, &FetchError{
		Symbol:   symbol,
		Kind:     lastKind,
		Attempts: maxFetchAttempts,
		Err:      lastErr,
	}
}
