package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefStore(t *testing.T) {
	ctx := context.Background()
	prefs := NewPrefStore(openTestStore(t))

	_, ok, err := prefs.Get(ctx, "darkMode")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, prefs.Set(ctx, "darkMode", "true"))
	require.NoError(t, prefs.Set(ctx, "darkMode", "false"))

	v, ok, err := prefs.Get(ctx, "darkMode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "false", v)

	require.NoError(t, prefs.Delete(ctx, "darkMode"))
	_, ok, err = prefs.Get(ctx, "darkMode")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrefStore_Errors(t *testing.T) {
	assert.Nil(t, NewPrefStore(nil))

	var nilStore *PrefStore
	_, _, err := nilStore.Get(context.Background(), "k")
	assert.Error(t, err)

	prefs := NewPrefStore(openTestStore(t))
	assert.Error(t, prefs.Set(context.Background(), "  ", "v"))
}
