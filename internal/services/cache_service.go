package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/inboxtui/internal/db"
)

// CacheServiceImpl implements CacheService on the local summary store.
// Summaries are kept per backend source so switching backends never mixes ids.
type CacheServiceImpl struct {
	store  *db.CacheStore
	source string
}

// NewCacheService creates a new cache service
func NewCacheService(store *db.CacheStore, source string) *CacheServiceImpl {
	return &CacheServiceImpl{
		store:  store,
		source: source,
	}
}

func (s *CacheServiceImpl) GetSummary(ctx context.Context, itemID string) (string, bool, error) {
	if s.store == nil {
		return "", false, fmt.Errorf("cache store not available")
	}
	if strings.TrimSpace(itemID) == "" {
		return "", false, ErrInvalidItemID
	}

	summary, found, err := s.store.LoadSummary(ctx, s.source, itemID)
	if err != nil {
		return "", false, fmt.Errorf("failed to load summary from cache: %w", err)
	}
	return summary, found, nil
}

func (s *CacheServiceImpl) SaveSummary(ctx context.Context, itemID, summary string) error {
	if s.store == nil {
		return fmt.Errorf("cache store not available")
	}
	if strings.TrimSpace(itemID) == "" || strings.TrimSpace(summary) == "" {
		return fmt.Errorf("itemID and summary cannot be empty")
	}

	if err := s.store.SaveSummary(ctx, s.source, itemID, summary, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save summary to cache: %w", err)
	}
	return nil
}

func (s *CacheServiceImpl) InvalidateSummary(ctx context.Context, itemID string) error {
	if s.store == nil {
		return fmt.Errorf("cache store not available")
	}
	if strings.TrimSpace(itemID) == "" {
		return ErrInvalidItemID
	}

	if err := s.store.DeleteSummary(ctx, s.source, itemID); err != nil {
		return fmt.Errorf("failed to invalidate summary: %w", err)
	}
	return nil
}

func (s *CacheServiceImpl) ClearCache(ctx context.Context) (int64, error) {
	if s.store == nil {
		return 0, fmt.Errorf("cache store not available")
	}
	n, err := s.store.ClearSource(ctx, s.source)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	return n, nil
}
