package checkpoint

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisStore_RoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, nil)
	ctx := context.Background()

	in := sample{Messages: []string{"hi", "there"}, Loop: 1}
	require.NoError(t, store.Put(ctx, "s1", in))

	var out sample
	found, err := store.Get(ctx, "s1", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in, out)
}

func TestRedisStore_GetMissing(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, nil)

	var out sample
	found, err := store.Get(context.Background(), "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", sample{Loop: 3}))
	require.NoError(t, store.Delete(ctx, "s1"))

	var out sample
	found, err := store.Get(ctx, "s1", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_CompressesLargePayloads(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, nil)
	ctx := context.Background()

	big := sample{Messages: []string{strings.Repeat("x", compressionThreshold*2)}}
	require.NoError(t, store.Put(ctx, "s1", big))

	var out sample
	found, err := store.Get(ctx, "s1", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, big, out)
}
