package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ajramos/inboxtui/internal/mail"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDetailCacheSize bounds the number of cached message details
	DefaultDetailCacheSize = 256
	// SemanticSearchLimit is the number of hits requested per semantic search
	SemanticSearchLimit = 50

	hydrateConcurrency = 8
)

type listEntry struct {
	page  *mail.ItemPage
	stale bool
}

// QueryCache owns the cached reads: one list per filter, message details and
// the label list. Invalidation only marks entries stale; the next read
// re-fetches. Results of a fetch that overlapped an invalidation are returned
// to the caller but not cached.
type QueryCache struct {
	repo     MailRepository
	ai       AIBackend
	pageSize int
	log      zerolog.Logger

	mu          sync.Mutex
	gen         uint64
	lists       map[string]*listEntry
	details     *lru.Cache[string, *mail.Item]
	labels      []mail.Label
	labelsFresh bool
}

// NewQueryCache creates a cache in front of repo. ai may be nil, in which
// case semantic filters fall back to keyword search.
func NewQueryCache(repo MailRepository, ai AIBackend, pageSize int, log zerolog.Logger) (*QueryCache, error) {
	details, err := lru.New[string, *mail.Item](DefaultDetailCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create detail cache: %w", err)
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	return &QueryCache{
		repo:     repo,
		ai:       ai,
		pageSize: pageSize,
		log:      log,
		lists:    make(map[string]*listEntry),
		details:  details,
	}, nil
}

// Attach subscribes the cache to change events on bus
func (c *QueryCache) Attach(bus *EventBus) string {
	return bus.Subscribe(c.onEvent, TopicItemChanged, TopicItemCreated, TopicLabelsChanged)
}

func (c *QueryCache) onEvent(ev Event) {
	switch ev.Topic {
	case TopicItemChanged:
		c.InvalidateLists()
		c.InvalidateItem(ev.Change.ItemID)
		// label counts move with archive, delete and read state
		c.InvalidateLabels()
	case TopicItemCreated:
		c.InvalidateLists()
		c.InvalidateLabels()
	case TopicLabelsChanged:
		c.InvalidateLabels()
		c.InvalidateLists()
	}
}

// List returns the first page for filter f
func (c *QueryCache) List(ctx context.Context, f mail.Filter) (*mail.ItemPage, error) {
	key := f.Key()

	c.mu.Lock()
	if e, ok := c.lists[key]; ok && !e.stale {
		page := copyPage(e.page)
		c.mu.Unlock()
		return page, nil
	}
	gen := c.gen
	c.mu.Unlock()

	var (
		page *mail.ItemPage
		err  error
	)
	if f.Semantic() && c.ai != nil {
		page, err = c.semanticPage(ctx, strings.TrimSpace(f.Query))
	} else {
		page, err = c.repo.ListItems(ctx, ListQuery{
			Label:  f.Label,
			Search: strings.TrimSpace(f.Query),
			Page:   1,
			Limit:  c.pageSize,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}
	if page == nil {
		page = &mail.ItemPage{}
	}

	c.mu.Lock()
	if c.gen == gen {
		c.lists[key] = &listEntry{page: copyPage(page)}
	}
	c.mu.Unlock()

	return copyPage(page), nil
}

// semanticPage runs a semantic search and hydrates each hit in order,
// dropping hits whose message can no longer be read
func (c *QueryCache) semanticPage(ctx context.Context, query string) (*mail.ItemPage, error) {
	hits, err := c.ai.SemanticSearch(ctx, query, SemanticSearchLimit)
	if err != nil {
		return nil, err
	}

	found := make([]*mail.Item, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)
	for i, hit := range hits {
		g.Go(func() error {
			item, err := c.Item(gctx, hit.ItemID)
			if err != nil {
				c.log.Debug().Err(err).Str("item_id", hit.ItemID).Msg("dropping semantic hit")
				return nil
			}
			found[i] = item
			return nil
		})
	}
	_ = g.Wait()

	page := &mail.ItemPage{Total: len(hits), Page: 1, Limit: SemanticSearchLimit}
	for _, it := range found {
		if it != nil {
			page.Items = append(page.Items, it)
		}
	}
	return page, nil
}

// Item returns one message, from cache when fresh
func (c *QueryCache) Item(ctx context.Context, id string) (*mail.Item, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidItemID
	}
	if it, ok := c.PeekItem(id); ok {
		return it, nil
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	it, err := c.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.details.Add(id, it.Clone())
	}
	c.mu.Unlock()
	return it.Clone(), nil
}

// Thread loads a conversation. Threads are not cached.
func (c *QueryCache) Thread(ctx context.Context, id string) (*mail.Thread, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidItemID
	}
	return c.repo.GetThread(ctx, id)
}

// PeekItem returns a cached message without touching the backend
func (c *QueryCache) PeekItem(id string) (*mail.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.details.Get(id)
	if !ok {
		return nil, false
	}
	return it.Clone(), true
}

// Labels returns the label list
func (c *QueryCache) Labels(ctx context.Context) ([]mail.Label, error) {
	c.mu.Lock()
	if c.labelsFresh {
		out := append([]mail.Label(nil), c.labels...)
		c.mu.Unlock()
		return out, nil
	}
	gen := c.gen
	c.mu.Unlock()

	labels, err := c.repo.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}

	c.mu.Lock()
	if c.gen == gen {
		c.labels = append([]mail.Label(nil), labels...)
		c.labelsFresh = true
	}
	c.mu.Unlock()
	return labels, nil
}

// InvalidateLists marks every cached list stale
func (c *QueryCache) InvalidateLists() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for _, e := range c.lists {
		e.stale = true
	}
}

// InvalidateItem drops the cached detail of one message
func (c *QueryCache) InvalidateItem(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.details.Remove(id)
}

// InvalidateLabels marks the label list stale
func (c *QueryCache) InvalidateLabels() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.labelsFresh = false
}

// IsStale reports whether the list for f would be re-fetched on next read
func (c *QueryCache) IsStale(f mail.Filter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lists[f.Key()]
	return !ok || e.stale
}

func copyPage(p *mail.ItemPage) *mail.ItemPage {
	out := *p
	out.Items = make([]*mail.Item, 0, len(p.Items))
	for _, it := range p.Items {
		if it != nil {
			out.Items = append(out.Items, it.Clone())
		}
	}
	return &out
}
