// Package cache holds the dashboard stats cache. The report service owns the
// cache object; every service that writes to a summarized table calls
// Invalidate, and the TTL is only a backstop for missed invalidations.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// DashboardStatsKey is the one key the write paths invalidate today.
const DashboardStatsKey = "stats:dashboard"

// StatsCache is the contract the report service consumes. Implementations are
// best-effort: a cache failure must never fail the request.
type StatsCache interface {
	// Get unmarshals the cached value into dest; the bool reports a hit.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Noop disables caching entirely.
type Noop struct{}

func (Noop) Get(_ context.Context, _ string, _ interface{}) (bool, error) { return false, nil }
func (Noop) Set(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
	return nil
}
func (Noop) Invalidate(_ context.Context, _ ...string) error { return nil }

// Memory is an in-process StatsCache with an injected clock, used in tests
// and single-instance deployments without Redis.
type Memory struct {
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemory builds an in-memory cache. A nil clock means time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{now: now, entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Invalidate(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}
