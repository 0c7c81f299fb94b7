package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/inboxtui/internal/config"
)

// NewProviderFromConfig creates the Provider named by cfg
func NewProviderFromConfig(ctx context.Context, cfg config.LLMConfig, timeout time.Duration) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "ollama", "":
		return NewOllama(cfg.Endpoint, cfg.Model, timeout), nil
	case "bedrock":
		return NewBedrock(ctx, cfg.Region, cfg.Model, timeout)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
