package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService_NilStore(t *testing.T) {
	svc := NewCacheService(nil, "rest")
	ctx := context.Background()

	_, _, err := svc.GetSummary(ctx, "A")
	assert.Error(t, err)
	assert.Error(t, svc.SaveSummary(ctx, "A", "s"))
	assert.Error(t, svc.InvalidateSummary(ctx, "A"))
	_, err = svc.ClearCache(ctx)
	assert.Error(t, err)
}

func TestCacheService_RoundTrip(t *testing.T) {
	svc := newSummaryCache(t)
	ctx := context.Background()

	_, found, err := svc.GetSummary(ctx, "A")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.SaveSummary(ctx, "A", "sum"))
	got, found, err := svc.GetSummary(ctx, "A")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sum", got)

	require.NoError(t, svc.InvalidateSummary(ctx, "A"))
	_, found, err = svc.GetSummary(ctx, "A")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.SaveSummary(ctx, "A", "a"))
	require.NoError(t, svc.SaveSummary(ctx, "B", "b"))
	n, err := svc.ClearCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCacheService_Validation(t *testing.T) {
	svc := newSummaryCache(t)
	ctx := context.Background()

	_, _, err := svc.GetSummary(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidItemID)
	assert.Error(t, svc.SaveSummary(ctx, "A", "  "))
	assert.ErrorIs(t, svc.InvalidateSummary(ctx, ""), ErrInvalidItemID)
}
