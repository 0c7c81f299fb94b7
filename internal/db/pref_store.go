package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PrefStore persists small key/value preferences such as the theme choice
type PrefStore struct {
	db *sql.DB
}

// NewPrefStore creates a preference store from a base store
func NewPrefStore(store *Store) *PrefStore {
	if store == nil {
		return nil
	}
	return &PrefStore{db: store.DB()}
}

// Get returns the stored value and whether the key exists
func (ps *PrefStore) Get(ctx context.Context, key string) (string, bool, error) {
	if ps == nil || ps.db == nil {
		return "", false, fmt.Errorf("preference store not initialized")
	}
	var out string
	err := ps.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key=?`, key).Scan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// Set upserts a preference value
func (ps *PrefStore) Set(ctx context.Context, key, value string) error {
	if ps == nil || ps.db == nil {
		return fmt.Errorf("preference store not initialized")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty preference key")
	}
	_, err := ps.db.ExecContext(ctx, `INSERT INTO preferences(key, value, updated_at)
VALUES(?,?,?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
`, key, value, time.Now().Unix())
	return err
}

// Delete removes a preference
func (ps *PrefStore) Delete(ctx context.Context, key string) error {
	if ps == nil || ps.db == nil {
		return fmt.Errorf("preference store not initialized")
	}
	_, err := ps.db.ExecContext(ctx, `DELETE FROM preferences WHERE key=?`, key)
	return err
}
