package checkpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Messages []string
	Loop     int
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	in := sample{Messages: []string{"hello"}, Loop: 1}
	require.NoError(t, store.Put(ctx, "s1", in))

	var out sample
	found, err := store.Get(ctx, "s1", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in, out)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()
	var out sample
	found, err := store.Get(context.Background(), "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "s1", sample{Loop: 2}))
	require.NoError(t, store.Delete(ctx, "s1"))

	var out sample
	found, err := store.Get(ctx, "s1", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "s1", sample{Loop: 1}))
	require.NoError(t, store.Put(ctx, "s1", sample{Loop: 2}))

	var out sample
	found, err := store.Get(ctx, "s1", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, out.Loop)
}
