package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajramos/inboxtui/internal/mail"
)

// ComposeServiceImpl implements ComposeService
type ComposeServiceImpl struct {
	repo MailRepository
	bus  *EventBus
}

// NewComposeService creates a compose service
func NewComposeService(repo MailRepository, bus *EventBus) *ComposeServiceImpl {
	return &ComposeServiceImpl{repo: repo, bus: bus}
}

// Send validates and sends a draft
func (s *ComposeServiceImpl) Send(ctx context.Context, draft mail.Draft) (*mail.Item, error) {
	if len(draft.To) == 0 {
		return nil, fmt.Errorf("at least one recipient is required: %w", ErrInvalidInput)
	}
	for _, addr := range append(append([]string(nil), draft.To...), draft.CC...) {
		if !strings.Contains(addr, "@") {
			return nil, fmt.Errorf("invalid address %q: %w", addr, ErrInvalidInput)
		}
	}
	if strings.TrimSpace(draft.Subject) == "" && strings.TrimSpace(draft.Body) == "" {
		return nil, fmt.Errorf("empty message: %w", ErrInvalidInput)
	}

	item, err := s.repo.CreateItem(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	if s.bus != nil {
		s.bus.Publish(Event{Topic: TopicItemCreated, Change: ItemChanged{ItemID: itemID(item)}})
	}
	return item, nil
}

func itemID(it *mail.Item) string {
	if it == nil {
		return ""
	}
	return it.ID
}
