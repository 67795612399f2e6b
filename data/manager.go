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
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Manager coordinates the provider, the retry policy, and the history
// cache. Fetches for the same key are serialized so concurrent callers
// never trigger duplicate upstream requests.
type Manager struct {
	provider HistoryProvider
	cache    *HistoryCache

	lockerMu sync.Mutex
	lockers  map[SecurityClass]*sync.Mutex
}

// NewManager creates a Manager backed by the Yahoo provider and a TTL
// cache configured from the cache.ttl and cache.local_size settings.
func NewManager() *Manager {
	ttl := viper.GetDuration("cache.ttl")
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	size := viper.GetInt("cache.local_size")
	if size == 0 {
		size = DefaultCacheSize
	}

	return &Manager{
		provider: NewYahoo(),
		cache:    NewHistoryCache(size, ttl),
		lockers:  map[SecurityClass]*sync.Mutex{},
	}
}

// NewManagerWithProvider creates a Manager with an explicit provider
// and cache settings; used by tests and callers that need a different
// upstream.
func NewManagerWithProvider(provider HistoryProvider, size int, ttl time.Duration) *Manager {
	return &Manager{
		provider: provider,
		cache:    NewHistoryCache(size, ttl),
		lockers:  map[SecurityClass]*sync.Mutex{},
	}
}

// Cache exposes the underlying history cache for maintenance jobs.
func (manager *Manager) Cache() *HistoryCache {
	return manager.cache
}

// History returns the full daily history for the symbol. Fresh cache
// entries bypass the network and the retry budget entirely; cached
// reports whether that happened. An empty series with a nil error
// means the upstream has no data for the symbol.
func (manager *Manager) History(ctx context.Context, symbol string, class AssetClass) (series DailySeries, cached bool, err error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := SecurityClass{Symbol: symbol, Class: class}

	locker := manager.keyLocker(key)
	locker.Lock()
	defer locker.Unlock()

	if series, ok := manager.cache.Get(key); ok {
		return series, true, nil
	}

	subLog := log.With().Str("Symbol", symbol).Str("Class", string(class)).Logger()
	series, err = fetchWithRetry(ctx, symbol, func() (DailySeries, error) {
		return manager.provider.FetchHistory(ctx, symbol, class)
	})
	if err != nil {
		subLog.Error().Err(err).Msg("could not fetch history")
		return nil, false, err
	}

	manager.cache.Set(key, series)
	return series, false, nil
}

func (manager *Manager) keyLocker(key SecurityClass) *sync.Mutex {
	manager.lockerMu.Lock()
	defer manager.lockerMu.Unlock()

	locker, ok := manager.lockers[key]
	if !ok {
		locker = &sync.Mutex{}
		manager.lockers[key] = locker
	}
	return locker
}
