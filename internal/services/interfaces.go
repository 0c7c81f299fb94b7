package services

import (
	"context"

	"github.com/ajramos/inboxtui/internal/mail"
)

// ListQuery selects one page of the message list
type ListQuery struct {
	Label   string
	Search  string
	Read    *bool
	Starred *bool
	Page    int
	Limit   int
}

// MailRepository is the remote mail backend
type MailRepository interface {
	ListItems(ctx context.Context, q ListQuery) (*mail.ItemPage, error)
	GetItem(ctx context.Context, id string) (*mail.Item, error)
	UpdateItem(ctx context.Context, id string, update mail.ItemUpdate) (*mail.Item, error)
	DeleteItem(ctx context.Context, id string) error
	CreateItem(ctx context.Context, draft mail.Draft) (*mail.Item, error)
	GetThread(ctx context.Context, id string) (*mail.Thread, error)
	ListLabels(ctx context.Context) ([]mail.Label, error)
	CreateLabel(ctx context.Context, name, color string) (*mail.Label, error)
	DeleteLabel(ctx context.Context, name string) error
}

// SummarizeRequest asks for a summary of a message, a thread or raw text
type SummarizeRequest struct {
	ItemID   string `json:"email_id,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ComposeRequest asks for draft suggestions
type ComposeRequest struct {
	Context string `json:"context,omitempty"`
	ReplyTo string `json:"reply_to,omitempty"`
	Prompt  string `json:"prompt,omitempty"`
}

// Categorization is a suggested set of labels and a priority
type Categorization struct {
	SuggestedLabels []string `json:"suggested_labels"`
	Priority        string   `json:"priority"`
}

// AIBackend provides the AI assist operations
type AIBackend interface {
	Summarize(ctx context.Context, req SummarizeRequest) (string, error)
	SuggestCompose(ctx context.Context, req ComposeRequest) ([]string, error)
	SemanticSearch(ctx context.Context, query string, limit int) ([]mail.SearchHit, error)
	Categorize(ctx context.Context, itemID string) (*Categorization, error)
}

// Mutator applies a remote mutation to one message
type Mutator interface {
	Apply(ctx context.Context, op Operation, itemID string) Outcome
}

// ItemReader is the read side used by the view state
type ItemReader interface {
	List(ctx context.Context, f mail.Filter) (*mail.ItemPage, error)
	Item(ctx context.Context, id string) (*mail.Item, error)
	Labels(ctx context.Context) ([]mail.Label, error)
	InvalidateLists()
}

// ThreadReader is implemented by readers that can load whole conversations
type ThreadReader interface {
	Thread(ctx context.Context, id string) (*mail.Thread, error)
}

// LabelService handles label management
type LabelService interface {
	ListLabels(ctx context.Context) ([]mail.Label, error)
	CreateLabel(ctx context.Context, name, color string) (*mail.Label, error)
	DeleteLabel(ctx context.Context, name string) error
}

// AIService handles AI assistance with local summary caching
type AIService interface {
	Enabled() bool
	SummarizeItem(ctx context.Context, item *mail.Item, force bool) (*SummaryResult, error)
	SuggestDrafts(ctx context.Context, draft mail.Draft, prompt string) ([]string, error)
	SuggestLabels(ctx context.Context, itemID string) (*Categorization, error)
}

// CacheService handles persisted AI summary caching
type CacheService interface {
	GetSummary(ctx context.Context, itemID string) (string, bool, error)
	SaveSummary(ctx context.Context, itemID, summary string) error
	InvalidateSummary(ctx context.Context, itemID string) error
	ClearCache(ctx context.Context) (int64, error)
}

// ThemeService owns the persisted dark/light preference
type ThemeService interface {
	IsDark(ctx context.Context) bool
	Toggle(ctx context.Context) (bool, error)
	SetDark(ctx context.Context, dark bool) error
}

// ComposeService sends new messages
type ComposeService interface {
	Send(ctx context.Context, draft mail.Draft) (*mail.Item, error)
}
