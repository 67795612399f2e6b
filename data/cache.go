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
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
)

// DefaultCacheTTL bounds how long a fetched history is served without
// going back to the upstream.
const DefaultCacheTTL = 6 * time.Hour

// DefaultCacheSize is the number of histories kept before LRU
// eviction kicks in.
const DefaultCacheSize = 128

type cacheEntry struct {
	series    DailySeries
	fetchedAt time.Time
}

// HistoryCache memoizes full daily histories keyed by (symbol, class)
// with a fixed time-to-live. Entries are immutable once stored; the
// staleness check happens explicitly on every read.
type HistoryCache struct {
	store *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewHistoryCache creates a cache holding up to size histories that
// expire ttl after they were fetched.
func NewHistoryCache(size int, ttl time.Duration) *HistoryCache {
	store, err := lru.New(size)
	if err != nil {
		// lru.New only fails on a non-positive size
		log.Panic().Err(err).Int("Size", size).Msg("could not create history cache")
	}
	return &HistoryCache{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the cached series for the key if present and fresh.
func (cache *HistoryCache) Get(key SecurityClass) (DailySeries, bool) {
	v, ok := cache.store.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(cacheEntry)
	if cache.now().Sub(entry.fetchedAt) > cache.ttl {
		cache.store.Remove(key)
		return nil, false
	}
	return entry.series, true
}

// Set stores the series for the key stamped with the current time.
func (cache *HistoryCache) Set(key SecurityClass, series DailySeries) {
	cache.store.Add(key, cacheEntry{
		series:    series,
		fetchedAt: cache.now(),
	})
}

// Len returns the number of cached histories, stale entries included.
func (cache *HistoryCache) Len() int {
	return cache.store.Len()
}

// PurgeExpired removes entries past their TTL and returns how many
// were dropped.
func (cache *HistoryCache) PurgeExpired() int {
	purged := 0
	for _, k := range cache.store.Keys() {
		v, ok := cache.store.Peek(k)
		if !ok {
			continue
		}
		if cache.now().Sub(v.(cacheEntry).fetchedAt) > cache.ttl {
			cache.store.Remove(k)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Int("NumPurged", purged).Msg("purged expired history cache entries")
	}
	return purged
}
