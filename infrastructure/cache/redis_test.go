package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) *Cache {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis indisponível em %s: %v", addr, err)
	}

	c := New(client, "test:dashboard:", time.Minute)
	t.Cleanup(func() {
		_ = c.DeletePattern(context.Background(), "*")
		_ = c.Close()
	})

	return c
}

type cachedValue struct {
	Total  float64 `json:"total"`
	Change *int    `json:"change"`
}

func TestCache_GetSet(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	var dest cachedValue
	found, err := c.Get(ctx, "1:week", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "1:week", cachedValue{Total: 80}))

	found, err = c.Get(ctx, "1:week", &dest)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 80.0, dest.Total)
	assert.Nil(t, dest.Change)
}

func TestCache_DeletePattern(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "1:week", cachedValue{Total: 1}))
	require.NoError(t, c.Set(ctx, "1:month", cachedValue{Total: 2}))
	require.NoError(t, c.Set(ctx, "2:week", cachedValue{Total: 3}))

	require.NoError(t, c.DeletePattern(ctx, "1:*"))

	var dest cachedValue
	found, err := c.Get(ctx, "1:week", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = c.Get(ctx, "2:week", &dest)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCache_Generation(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	generation, err := c.Generation(ctx, "gen:1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), generation)

	bumped, err := c.BumpGeneration(ctx, "gen:1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), bumped)

	bumped, err = c.BumpGeneration(ctx, "gen:1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), bumped)

	generation, err = c.Generation(ctx, "gen:1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), generation)
}
