// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wneessen/installer-finder/internal/address"
	"github.com/wneessen/installer-finder/internal/geo"
	"github.com/wneessen/installer-finder/internal/logger"
)

// Entry is a cached lookup outcome. Found is false for addresses the provider had no result for.
type Entry struct {
	Coordinate geo.Coordinate
	Found      bool
}

// Cache stores lookup outcomes by key.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
}

// CachedGeocoder caches the results of another Geocoder. Successful lookups are kept for
// ttlHit and "no result" answers for ttlMiss. Other failures are never cached. A TTL of zero
// disables caching for that kind of answer.
type CachedGeocoder struct {
	coder   Geocoder
	cache   Cache
	logger  *logger.Logger
	ttlHit  time.Duration
	ttlMiss time.Duration
}

func NewCachedGeocoder(coder Geocoder, cache Cache, log *logger.Logger, ttlHit, ttlMiss time.Duration) *CachedGeocoder {
	return &CachedGeocoder{
		coder:   coder,
		cache:   cache,
		logger:  log,
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
	}
}

func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

func (c *CachedGeocoder) Search(ctx context.Context, addr string) (geo.Coordinate, error) {
	key := newKey(c.coder.Name(), addr)

	entry, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("failed to read from geocode cache", logger.Err(err), slog.String("key", key))
	}
	if err == nil && ok {
		if !entry.Found {
			return geo.Coordinate{}, fmt.Errorf("%w for address %q (cached)", ErrNoResult, addr)
		}
		coords := entry.Coordinate
		coords.CacheHit = true
		return coords, nil
	}

	coords, err := c.coder.Search(ctx, addr)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			c.store(ctx, key, Entry{Found: false}, c.ttlMiss)
		}
		return coords, err
	}
	c.store(ctx, key, Entry{Coordinate: coords, Found: true}, c.ttlHit)

	return coords, nil
}

func (c *CachedGeocoder) store(ctx context.Context, key string, entry Entry, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, entry, ttl); err != nil {
		c.logger.Warn("failed to write to geocode cache", logger.Err(err), slog.String("key", key))
	}
}

func newKey(provider, addr string) string {
	return provider + "|" + address.Normalize(addr)
}

type memoryEntry struct {
	Entry  Entry
	Expiry time.Time
}

// MemoryCache is a process local Cache. Expired entries are not returned, but are only
// removed from memory by Purge.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok || !time.Now().Before(entry.Expiry) {
		return Entry{}, false, nil
	}
	return entry.Entry, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, entry Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{Entry: entry, Expiry: time.Now().Add(ttl)}
	return nil
}

// Purge removes all expired entries and returns the number of removed entries.
func (m *MemoryCache) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	removed := 0
	for key, entry := range m.entries {
		if !now.Before(entry.Expiry) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, including expired ones.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
