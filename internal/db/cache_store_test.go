package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCacheStore(t *testing.T) {
	assert.Nil(t, NewCacheStore(nil))

	store := openTestStore(t)
	cache := NewCacheStore(store)
	require.NotNil(t, cache)
	assert.Equal(t, store.db, cache.db)
}

func TestCacheStore_SaveSummary_ValidationErrors(t *testing.T) {
	cache := NewCacheStore(openTestStore(t))

	tests := []struct {
		name    string
		source  string
		itemID  string
		summary string
	}{
		{"empty_source", "", "e1", "summary"},
		{"empty_item", "rest", "", "summary"},
		{"empty_summary", "rest", "e1", ""},
		{"whitespace_summary", "rest", "e1", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cache.SaveSummary(context.Background(), tt.source, tt.itemID, tt.summary, time.Now().Unix())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid summary inputs")
		})
	}
}

func TestCacheStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheStore(openTestStore(t))

	_, ok, err := cache.LoadSummary(ctx, "rest", "e1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.SaveSummary(ctx, "rest", "e1", "first", 1))
	require.NoError(t, cache.SaveSummary(ctx, "rest", "e1", "second", 2))

	got, ok, err := cache.LoadSummary(ctx, "rest", "e1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", got)

	// sources are isolated
	_, ok, err = cache.LoadSummary(ctx, "gmail", "e1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.DeleteSummary(ctx, "rest", "e1"))
	_, ok, err = cache.LoadSummary(ctx, "rest", "e1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheStore_ClearSource(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheStore(openTestStore(t))

	require.NoError(t, cache.SaveSummary(ctx, "rest", "e1", "a", 1))
	require.NoError(t, cache.SaveSummary(ctx, "rest", "e2", "b", 1))
	require.NoError(t, cache.SaveSummary(ctx, "gmail", "e1", "c", 1))

	n, err := cache.ClearSource(ctx, "rest")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, ok, err := cache.LoadSummary(ctx, "gmail", "e1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheStore_NilReceiver(t *testing.T) {
	var cache *CacheStore
	ctx := context.Background()

	assert.Error(t, cache.SaveSummary(ctx, "rest", "e1", "x", 1))
	_, _, err := cache.LoadSummary(ctx, "rest", "e1")
	assert.Error(t, err)
	assert.Error(t, cache.DeleteSummary(ctx, "rest", "e1"))
	_, err = cache.ClearSource(ctx, "rest")
	assert.Error(t, err)
}
