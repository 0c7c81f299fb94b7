package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_ValidationErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		dbPath      string
		expectedErr string
	}{
		{"empty_path", "", "empty database path"},
		{"whitespace_path", "   ", "empty database path"},
		{"tabs_path", "\t\t", "empty database path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.dbPath)
			assert.Nil(t, store)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestOpen_CreatesNestedDirsWithStrictPerms(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "deep", "test.db")

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, filepath.Dir(dbPath))
	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestOpen_MigratesToLatest(t *testing.T) {
	store := openTestStore(t)

	ver, err := store.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(migrations), ver)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, NewPrefStore(store).Set(ctx, "darkMode", "false"))
	require.NoError(t, store.Close())

	store, err = Open(ctx, dbPath)
	require.NoError(t, err)
	defer store.Close()

	v, ok, err := NewPrefStore(store).Get(ctx, "darkMode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "false", v)
}

func TestStore_CloseNil(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
}
