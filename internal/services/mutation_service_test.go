package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func newMutationFixture(t *testing.T, repo MailRepository) (*MutationService, *QueryCache, *recorder) {
	t.Helper()
	bus := NewEventBus()
	cache := newTestCache(t, repo, nil)
	cache.Attach(bus)
	rec := &recorder{}
	bus.Subscribe(rec.handle, TopicItemChanged)
	return NewMutationService(repo, cache, bus, zerolog.Nop()), cache, rec
}

func TestMutation_ToggleStarFlipsAndRereadReflectsIt(t *testing.T) {
	repo := newMemRepo(inboxItems()...)
	svc, cache, rec := newMutationFixture(t, repo)
	ctx := context.Background()

	before, err := cache.Item(ctx, "A")
	require.NoError(t, err)
	require.False(t, before.Starred)

	out := svc.Apply(ctx, OpToggleStar, "A")
	require.True(t, out.OK())
	assert.True(t, out.Item.Starred)

	after, err := cache.Item(ctx, "A")
	require.NoError(t, err)
	assert.True(t, after.Starred)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, ItemChanged{ItemID: "A", Operation: OpToggleStar, Fields: []string{"starred"}, Item: out.Item}, events[0].Change)
}

func TestMutation_ToggleStarFailureLeavesValueAndPublishesNothing(t *testing.T) {
	repo := newMemRepo(inboxItems()...)
	svc, cache, rec := newMutationFixture(t, repo)
	ctx := context.Background()

	_, err := cache.Item(ctx, "B")
	require.NoError(t, err)

	repo.setFail(ErrServiceUnavailable)
	out := svc.Apply(ctx, OpToggleStar, "B")
	assert.False(t, out.OK())
	assert.ErrorIs(t, out.Err, ErrServiceUnavailable)
	assert.Empty(t, rec.all())

	repo.setFail(nil)
	cached, ok := cache.PeekItem("B")
	require.True(t, ok)
	assert.True(t, cached.Starred)

	fresh, err := repo.GetItem(ctx, "B")
	require.NoError(t, err)
	assert.True(t, fresh.Starred)
}

func TestMutation_ToggleStarResolvesFromCacheBeforeBackend(t *testing.T) {
	repo := &MockMailRepository{}
	svc, cache, _ := newMutationFixture(t, repo)
	ctx := context.Background()

	repo.On("GetItem", mock.Anything, "A").Return(&mail.Item{ID: "A", Starred: true}, nil).Once()
	_, err := cache.Item(ctx, "A")
	require.NoError(t, err)

	unstar := false
	repo.On("UpdateItem", mock.Anything, "A", mail.ItemUpdate{Starred: &unstar}).
		Return(&mail.Item{ID: "A"}, nil).Once()

	out := svc.Apply(ctx, OpToggleStar, "A")
	require.NoError(t, out.Err)
	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "GetItem", 1)
}

func TestMutation_ToggleStarReadFailureSkipsWrite(t *testing.T) {
	repo := &MockMailRepository{}
	svc, _, rec := newMutationFixture(t, repo)

	repo.On("GetItem", mock.Anything, "A").Return(nil, ErrTimeout)

	out := svc.Apply(context.Background(), OpToggleStar, "A")
	assert.ErrorIs(t, out.Err, ErrTimeout)
	repo.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, rec.all())
}

func TestMutation_MarkReadUnreadAreAbsolute(t *testing.T) {
	repo := &MockMailRepository{}
	svc, _, rec := newMutationFixture(t, repo)
	ctx := context.Background()

	read, unread := true, false
	repo.On("UpdateItem", mock.Anything, "A", mail.ItemUpdate{Read: &read}).Return(nil, nil).Once()
	repo.On("UpdateItem", mock.Anything, "A", mail.ItemUpdate{Read: &unread}).Return(nil, nil).Once()

	assert.True(t, svc.Apply(ctx, OpMarkRead, "A").OK())
	assert.True(t, svc.Apply(ctx, OpMarkUnread, "A").OK())

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
	require.Len(t, rec.all(), 2)
	assert.Equal(t, []string{"read"}, rec.all()[0].Change.Fields)
}

func TestMutation_ArchiveRemovesInbox(t *testing.T) {
	repo := newMemRepo(inboxItems()...)
	svc, _, _ := newMutationFixture(t, repo)
	ctx := context.Background()

	out := svc.Apply(ctx, OpArchive, "C")
	require.NoError(t, out.Err)
	assert.Equal(t, []string{"work"}, out.Item.Labels)

	out = svc.Apply(ctx, OpArchive, "A")
	require.NoError(t, out.Err)
	assert.Empty(t, out.Item.Labels)

	page, err := repo.ListItems(ctx, ListQuery{Label: "INBOX"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, page.IDs())
}

func TestMutation_Delete(t *testing.T) {
	repo := newMemRepo(inboxItems()...)
	svc, cache, rec := newMutationFixture(t, repo)
	ctx := context.Background()

	_, err := cache.Item(ctx, "C")
	require.NoError(t, err)

	out := svc.Apply(ctx, OpDelete, "C")
	require.NoError(t, out.Err)

	events := rec.all()
	require.Len(t, events, 1)
	assert.True(t, events[0].Change.Deleted)
	_, ok := cache.PeekItem("C")
	assert.False(t, ok)

	out = svc.Apply(ctx, OpDelete, "C")
	assert.ErrorIs(t, out.Err, ErrNotFound)
}

func TestMutation_InvalidInputs(t *testing.T) {
	repo := &MockMailRepository{}
	svc, _, rec := newMutationFixture(t, repo)

	assert.ErrorIs(t, svc.Apply(context.Background(), OpDelete, " ").Err, ErrInvalidItemID)
	assert.ErrorIs(t, svc.Apply(context.Background(), Operation("explode"), "A").Err, ErrUnknownOperation)
	assert.Empty(t, rec.all())
	repo.AssertExpectations(t)
}

func TestMutation_PendingTracking(t *testing.T) {
	repo := &MockMailRepository{}
	svc, _, _ := newMutationFixture(t, repo)

	started := make(chan struct{})
	release := make(chan struct{})
	repo.On("DeleteItem", mock.Anything, "A").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(errors.New("boom"))

	done := make(chan Outcome)
	go func() { done <- svc.Apply(context.Background(), OpDelete, "A") }()

	<-started
	assert.True(t, svc.IsPending("A"))
	assert.False(t, svc.IsPending("B"))
	assert.Equal(t, []PendingMutation{{ItemID: "A", Op: OpDelete}}, svc.Pending())

	close(release)
	out := <-done
	assert.Error(t, out.Err)
	assert.False(t, svc.IsPending("A"))
	assert.Empty(t, svc.Pending())
}
