package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajramos/inboxtui/internal/mail"
)

// LabelServiceImpl implements LabelService
type LabelServiceImpl struct {
	repo  MailRepository
	cache *QueryCache
	bus   *EventBus
}

// NewLabelService creates a new label service. Reads go through cache when set.
func NewLabelService(repo MailRepository, cache *QueryCache, bus *EventBus) *LabelServiceImpl {
	return &LabelServiceImpl{
		repo:  repo,
		cache: cache,
		bus:   bus,
	}
}

func (s *LabelServiceImpl) ListLabels(ctx context.Context) ([]mail.Label, error) {
	if s.cache != nil {
		return s.cache.Labels(ctx)
	}
	labels, err := s.repo.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

func (s *LabelServiceImpl) CreateLabel(ctx context.Context, name, color string) (*mail.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("label name cannot be empty: %w", ErrInvalidLabel)
	}
	if isSystemLabel(name) {
		return nil, fmt.Errorf("label %q is reserved: %w", name, ErrInvalidLabel)
	}

	label, err := s.repo.CreateLabel(ctx, name, strings.TrimSpace(color))
	if err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	s.publish()
	return label, nil
}

func (s *LabelServiceImpl) DeleteLabel(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("label name cannot be empty: %w", ErrInvalidLabel)
	}
	if isSystemLabel(name) {
		return fmt.Errorf("system label %q cannot be deleted: %w", name, ErrInvalidLabel)
	}

	if err := s.repo.DeleteLabel(ctx, name); err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	s.publish()
	return nil
}

func (s *LabelServiceImpl) publish() {
	if s.bus != nil {
		s.bus.Publish(Event{Topic: TopicLabelsChanged})
	}
}

func isSystemLabel(name string) bool {
	for _, l := range mail.SystemLabels {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}
