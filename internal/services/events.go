package services

import (
	"sync"

	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/google/uuid"
)

// Topic names an event kind on the bus
type Topic string

const (
	// TopicItemChanged fires after a confirmed write to one message
	TopicItemChanged Topic = "item.changed"
	// TopicItemCreated fires after a message is sent
	TopicItemCreated Topic = "item.created"
	// TopicLabelsChanged fires after a label is created or deleted
	TopicLabelsChanged Topic = "labels.changed"
)

// Event is delivered to subscribers
type Event struct {
	Topic  Topic
	Change ItemChanged
}

// ItemChanged describes a confirmed change to one message
type ItemChanged struct {
	ItemID    string
	Operation Operation
	// Fields lists the flags the write touched ("read", "starred", "labels")
	Fields  []string
	Deleted bool
	// Item is the server copy after the write, when the backend returned one
	Item *mail.Item
}

// EventHandler is invoked for each matching event
type EventHandler func(Event)

type subscription struct {
	topics  map[Topic]bool
	handler EventHandler
}

// EventBus is an in-process publisher. Handlers run synchronously on the
// publishing goroutine, outside the bus lock, in subscription order.
type EventBus struct {
	mu    sync.RWMutex
	order []string
	subs  map[string]*subscription
}

// NewEventBus creates an empty bus
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[string]*subscription)}
}

// Subscribe registers handler for the given topics (all topics when none are
// given) and returns the subscription id
func (b *EventBus) Subscribe(handler EventHandler, topics ...Topic) string {
	id := uuid.NewString()
	sub := &subscription{handler: handler}
	if len(topics) > 0 {
		sub.topics = make(map[Topic]bool, len(topics))
		for _, t := range topics {
			sub.topics[t] = true
		}
	}

	b.mu.Lock()
	b.subs[id] = sub
	b.order = append(b.order, id)
	b.mu.Unlock()
	return id
}

// Unsubscribe removes a subscription; unknown ids are ignored
func (b *EventBus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; !ok {
		return
	}
	delete(b.subs, id)
	for i, sid := range b.order {
		if sid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Publish delivers ev to every matching subscriber
func (b *EventBus) Publish(ev Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.order))
	for _, id := range b.order {
		sub := b.subs[id]
		if sub.topics == nil || sub.topics[ev.Topic] {
			handlers = append(handlers, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// SubscriberCount returns the number of active subscriptions
func (b *EventBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
