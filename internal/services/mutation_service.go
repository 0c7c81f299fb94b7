package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/rs/zerolog"
)

// Operation is a remote mutation on one message
type Operation string

const (
	OpToggleStar Operation = "toggle-star"
	OpMarkRead   Operation = "mark-read"
	OpMarkUnread Operation = "mark-unread"
	OpDelete     Operation = "delete"
	OpArchive    Operation = "archive"
)

// Outcome reports the result of one mutation
type Outcome struct {
	Op     Operation
	ItemID string
	// Item is the server copy after the write, when available
	Item *mail.Item
	Err  error
}

// OK reports whether the mutation was confirmed by the backend
func (o Outcome) OK() bool { return o.Err == nil }

// PendingMutation identifies an in-flight mutation
type PendingMutation struct {
	ItemID string
	Op     Operation
}

// ItemPeeker exposes already-cached reads
type ItemPeeker interface {
	PeekItem(id string) (*mail.Item, bool)
}

// MutationService applies mutations against the backend. Changes are only
// announced after the backend confirms them; failures are logged and
// returned, never retried. Concurrent mutations on the same message are not
// sequenced: whichever response lands last wins.
type MutationService struct {
	repo MailRepository
	peek ItemPeeker
	bus  *EventBus
	log  zerolog.Logger

	mu      sync.Mutex
	pending map[PendingMutation]int
}

// NewMutationService creates a mutation service. peek may be nil.
func NewMutationService(repo MailRepository, peek ItemPeeker, bus *EventBus, log zerolog.Logger) *MutationService {
	return &MutationService{
		repo:    repo,
		peek:    peek,
		bus:     bus,
		log:     log,
		pending: make(map[PendingMutation]int),
	}
}

// Apply runs op against itemID
func (s *MutationService) Apply(ctx context.Context, op Operation, itemID string) Outcome {
	out := Outcome{Op: op, ItemID: itemID}
	if strings.TrimSpace(itemID) == "" {
		out.Err = ErrInvalidItemID
		return out
	}

	key := PendingMutation{ItemID: itemID, Op: op}
	s.begin(key)
	defer s.end(key)

	var (
		change = ItemChanged{ItemID: itemID, Operation: op}
		err    error
	)
	switch op {
	case OpDelete:
		err = s.repo.DeleteItem(ctx, itemID)
		change.Deleted = true
	case OpToggleStar, OpMarkRead, OpMarkUnread, OpArchive:
		var upd mail.ItemUpdate
		upd, err = s.updateFor(ctx, op, itemID)
		if err == nil {
			change.Fields = upd.Fields()
			change.Item, err = s.repo.UpdateItem(ctx, itemID, upd)
		}
	default:
		err = ErrUnknownOperation
	}

	if err != nil {
		s.log.Warn().Err(err).Str("item_id", itemID).Str("operation", string(op)).Msg("mutation failed")
		out.Err = fmt.Errorf("%s %s: %w", op, itemID, err)
		return out
	}

	s.log.Debug().Str("item_id", itemID).Str("operation", string(op)).Strs("fields", change.Fields).Msg("mutation applied")
	out.Item = change.Item
	if s.bus != nil {
		s.bus.Publish(Event{Topic: TopicItemChanged, Change: change})
	}
	return out
}

// updateFor computes the partial update; toggles resolve the current state first
func (s *MutationService) updateFor(ctx context.Context, op Operation, itemID string) (mail.ItemUpdate, error) {
	switch op {
	case OpMarkRead:
		read := true
		return mail.ItemUpdate{Read: &read}, nil
	case OpMarkUnread:
		read := false
		return mail.ItemUpdate{Read: &read}, nil
	}

	cur, err := s.current(ctx, itemID)
	if err != nil {
		return mail.ItemUpdate{}, err
	}
	if op == OpToggleStar {
		starred := !cur.Starred
		return mail.ItemUpdate{Starred: &starred}, nil
	}

	labels := make([]string, 0, len(cur.Labels))
	for _, l := range cur.Labels {
		if !strings.EqualFold(l, mail.LabelInbox) {
			labels = append(labels, l)
		}
	}
	return mail.ItemUpdate{Labels: labels}, nil
}

func (s *MutationService) current(ctx context.Context, itemID string) (*mail.Item, error) {
	if s.peek != nil {
		if it, ok := s.peek.PeekItem(itemID); ok {
			return it, nil
		}
	}
	it, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("resolve current state: %w", err)
	}
	if it == nil {
		return nil, ErrNotFound
	}
	return it, nil
}

func (s *MutationService) begin(k PendingMutation) {
	s.mu.Lock()
	s.pending[k]++
	s.mu.Unlock()
}

func (s *MutationService) end(k PendingMutation) {
	s.mu.Lock()
	if s.pending[k] <= 1 {
		delete(s.pending, k)
	} else {
		s.pending[k]--
	}
	s.mu.Unlock()
}

// Pending returns the in-flight mutations
func (s *MutationService) Pending() []PendingMutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingMutation, 0, len(s.pending))
	for k := range s.pending {
		out = append(out, k)
	}
	return out
}

// IsPending reports whether any mutation on itemID is in flight
func (s *MutationService) IsPending(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.pending {
		if k.ItemID == itemID {
			return true
		}
	}
	return false
}
