package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockMailRepository implements MailRepository for testing
type MockMailRepository struct {
	mock.Mock
}

func (m *MockMailRepository) ListItems(ctx context.Context, q ListQuery) (*mail.ItemPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.ItemPage), args.Error(1)
}

func (m *MockMailRepository) GetItem(ctx context.Context, id string) (*mail.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Item), args.Error(1)
}

func (m *MockMailRepository) UpdateItem(ctx context.Context, id string, update mail.ItemUpdate) (*mail.Item, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Item), args.Error(1)
}

func (m *MockMailRepository) DeleteItem(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMailRepository) CreateItem(ctx context.Context, draft mail.Draft) (*mail.Item, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Item), args.Error(1)
}

func (m *MockMailRepository) GetThread(ctx context.Context, id string) (*mail.Thread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Thread), args.Error(1)
}

func (m *MockMailRepository) ListLabels(ctx context.Context) ([]mail.Label, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mail.Label), args.Error(1)
}

func (m *MockMailRepository) CreateLabel(ctx context.Context, name, color string) (*mail.Label, error) {
	args := m.Called(ctx, name, color)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Label), args.Error(1)
}

func (m *MockMailRepository) DeleteLabel(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockAIBackend implements AIBackend for testing
type MockAIBackend struct {
	mock.Mock
}

func (m *MockAIBackend) Summarize(ctx context.Context, req SummarizeRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockAIBackend) SuggestCompose(ctx context.Context, req ComposeRequest) ([]string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAIBackend) SemanticSearch(ctx context.Context, query string, limit int) ([]mail.SearchHit, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mail.SearchHit), args.Error(1)
}

func (m *MockAIBackend) Categorize(ctx context.Context, itemID string) (*Categorization, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Categorization), args.Error(1)
}

// memRepo is an in-memory MailRepository with real flag semantics
type memRepo struct {
	mu     sync.Mutex
	items  map[string]*mail.Item
	order  []string
	labels []mail.Label
	fail   error
	gets   int
}

func newMemRepo(items ...*mail.Item) *memRepo {
	r := &memRepo{items: make(map[string]*mail.Item)}
	for _, it := range items {
		r.items[it.ID] = it.Clone()
		r.order = append(r.order, it.ID)
	}
	return r
}

func (r *memRepo) ListItems(_ context.Context, q ListQuery) (*mail.ItemPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	page := &mail.ItemPage{Page: 1, Limit: q.Limit}
	for _, id := range r.order {
		it := r.items[id]
		if q.Label != "" && !it.HasLabel(q.Label) && !(strings.EqualFold(q.Label, mail.LabelStarred) && it.Starred) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(it.Subject), strings.ToLower(q.Search)) {
			continue
		}
		page.Items = append(page.Items, it.Clone())
	}
	page.Total = len(page.Items)
	return page, nil
}

func (r *memRepo) GetItem(_ context.Context, id string) (*mail.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.fail != nil {
		return nil, r.fail
	}
	it, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return it.Clone(), nil
}

func (r *memRepo) UpdateItem(_ context.Context, id string, u mail.ItemUpdate) (*mail.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	it, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if u.Read != nil {
		it.Read = *u.Read
	}
	if u.Starred != nil {
		it.Starred = *u.Starred
	}
	if u.Labels != nil {
		it.Labels = append([]string(nil), u.Labels...)
	}
	return it.Clone(), nil
}

func (r *memRepo) DeleteItem(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memRepo) CreateItem(_ context.Context, d mail.Draft) (*mail.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := "sent-" + d.Subject
	it := &mail.Item{ID: id, Subject: d.Subject, Body: d.Body, Labels: []string{mail.LabelSent}}
	r.items[id] = it
	r.order = append(r.order, id)
	return it.Clone(), nil
}

func (r *memRepo) GetThread(_ context.Context, id string) (*mail.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	th := &mail.Thread{ID: id}
	for _, oid := range r.order {
		if r.items[oid].ThreadID == id {
			th.Items = append(th.Items, r.items[oid].Clone())
		}
	}
	return th, nil
}

func (r *memRepo) ListLabels(context.Context) ([]mail.Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]mail.Label(nil), r.labels...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepo) CreateLabel(_ context.Context, name, color string) (*mail.Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := mail.Label{Name: name, Color: color}
	r.labels = append(r.labels, l)
	return &l, nil
}

func (r *memRepo) DeleteLabel(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.labels {
		if l.Name == name {
			r.labels = append(r.labels[:i], r.labels[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memRepo) setFail(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

func (r *memRepo) getCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}
