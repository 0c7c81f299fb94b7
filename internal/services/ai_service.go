package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/ajramos/inboxtui/internal/render"
	"github.com/rs/zerolog"
)

const maxSummaryInput = 8000

// SummaryResult is a generated or cached summary
type SummaryResult struct {
	Summary   string
	FromCache bool
	Duration  time.Duration
}

// AIServiceImpl implements AIService
type AIServiceImpl struct {
	backend      AIBackend
	cacheService CacheService
	log          zerolog.Logger
}

// NewAIService creates a new AI service. backend may be nil when no AI is
// configured; cacheService may be nil to disable summary caching.
func NewAIService(backend AIBackend, cacheService CacheService, log zerolog.Logger) *AIServiceImpl {
	return &AIServiceImpl{
		backend:      backend,
		cacheService: cacheService,
		log:          log,
	}
}

// Enabled reports whether an AI backend is available
func (s *AIServiceImpl) Enabled() bool {
	return s != nil && s.backend != nil
}

// SummarizeItem returns a summary of item, from the local cache unless force is set
func (s *AIServiceImpl) SummarizeItem(ctx context.Context, item *mail.Item, force bool) (*SummaryResult, error) {
	if !s.Enabled() {
		return nil, ErrAIDisabled
	}
	if item == nil || strings.TrimSpace(item.ID) == "" {
		return nil, ErrInvalidItemID
	}

	start := time.Now()
	if !force && s.cacheService != nil {
		if cached, found, err := s.cacheService.GetSummary(ctx, item.ID); err == nil && found {
			return &SummaryResult{Summary: cached, FromCache: true, Duration: time.Since(start)}, nil
		}
	}

	text := render.PlainText(item.Body)
	if r := []rune(text); len(r) > maxSummaryInput {
		text = string(r[:maxSummaryInput])
	}

	summary, err := s.backend.Summarize(ctx, SummarizeRequest{ItemID: item.ID, Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}
	summary = strings.TrimSpace(summary)

	if s.cacheService != nil && summary != "" {
		if err := s.cacheService.SaveSummary(ctx, item.ID, summary); err != nil {
			s.log.Warn().Err(err).Str("item_id", item.ID).Msg("summary cache save failed")
		}
	}
	return &SummaryResult{Summary: summary, Duration: time.Since(start)}, nil
}

// SuggestDrafts asks for alternative drafts based on the current compose form
func (s *AIServiceImpl) SuggestDrafts(ctx context.Context, draft mail.Draft, prompt string) ([]string, error) {
	if !s.Enabled() {
		return nil, ErrAIDisabled
	}
	req := ComposeRequest{
		Context: strings.TrimSpace(strings.Join([]string{draft.Subject, draft.Body}, "\n\n")),
		ReplyTo: draft.ReplyTo,
		Prompt:  strings.TrimSpace(prompt),
	}
	if req.Context == "" && req.Prompt == "" {
		return nil, fmt.Errorf("nothing to base suggestions on: %w", ErrInvalidInput)
	}

	out, err := s.backend.SuggestCompose(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestions: %w", err)
	}
	suggestions := out[:0]
	for _, sug := range out {
		if sug = strings.TrimSpace(sug); sug != "" {
			suggestions = append(suggestions, sug)
		}
	}
	return suggestions, nil
}

// SuggestLabels asks the backend to categorize one message
func (s *AIServiceImpl) SuggestLabels(ctx context.Context, itemID string) (*Categorization, error) {
	if !s.Enabled() {
		return nil, ErrAIDisabled
	}
	if strings.TrimSpace(itemID) == "" {
		return nil, ErrInvalidItemID
	}
	cat, err := s.backend.Categorize(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to categorize: %w", err)
	}
	return cat, nil
}
