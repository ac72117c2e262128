package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Count int `json:"count"`
}

func TestMemoryHitAndMiss(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()

	var out payload
	hit, err := m.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, m.Set(ctx, "k", payload{Count: 7}, time.Minute))

	hit, err = m.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 7, out.Count)
}

func TestMemoryTTLExpiry(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	m := NewMemory(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", payload{Count: 1}, time.Minute))

	var out payload
	hit, err := m.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)

	now = now.Add(61 * time.Second)
	hit, err = m.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryInvalidate(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", payload{Count: 1}, time.Minute))
	require.NoError(t, m.Set(ctx, "b", payload{Count: 2}, time.Minute))
	require.NoError(t, m.Invalidate(ctx, "a", "b"))

	var out payload
	hit, err := m.Get(ctx, "a", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestNoopNeverHits(t *testing.T) {
	var c StatsCache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Count: 1}, time.Minute))
	var out payload
	hit, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}
