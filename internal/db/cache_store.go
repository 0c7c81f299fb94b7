package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CacheStore handles AI summary cache operations
type CacheStore struct {
	db *sql.DB
}

// NewCacheStore creates a new cache store from a base store
func NewCacheStore(store *Store) *CacheStore {
	if store == nil {
		return nil
	}
	return &CacheStore{db: store.DB()}
}

// SaveSummary upserts a summary for (source, item_id)
func (cs *CacheStore) SaveSummary(ctx context.Context, source, itemID, summary string, updatedAt int64) error {
	if cs == nil || cs.db == nil {
		return fmt.Errorf("cache store not initialized")
	}
	if strings.TrimSpace(source) == "" || strings.TrimSpace(itemID) == "" || strings.TrimSpace(summary) == "" {
		return fmt.Errorf("invalid summary inputs")
	}
	_, err := cs.db.ExecContext(ctx, `INSERT INTO ai_summaries(source, item_id, summary, updated_at)
VALUES(?,?,?,?)
ON CONFLICT(source, item_id) DO UPDATE SET summary=excluded.summary, updated_at=excluded.updated_at;
`, source, itemID, summary, updatedAt)
	return err
}

// LoadSummary returns a cached summary if present
func (cs *CacheStore) LoadSummary(ctx context.Context, source, itemID string) (string, bool, error) {
	if cs == nil || cs.db == nil {
		return "", false, fmt.Errorf("cache store not initialized")
	}
	var out string
	err := cs.db.QueryRowContext(ctx, `SELECT summary FROM ai_summaries WHERE source=? AND item_id=?`, source, itemID).Scan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// DeleteSummary removes a cached summary for (source, item_id)
func (cs *CacheStore) DeleteSummary(ctx context.Context, source, itemID string) error {
	if cs == nil || cs.db == nil {
		return fmt.Errorf("cache store not initialized")
	}
	_, err := cs.db.ExecContext(ctx, `DELETE FROM ai_summaries WHERE source=? AND item_id=?`, source, itemID)
	return err
}

// ClearSource removes every summary stored for a source
func (cs *CacheStore) ClearSource(ctx context.Context, source string) (int64, error) {
	if cs == nil || cs.db == nil {
		return 0, fmt.Errorf("cache store not initialized")
	}
	res, err := cs.db.ExecContext(ctx, `DELETE FROM ai_summaries WHERE source=?`, source)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
