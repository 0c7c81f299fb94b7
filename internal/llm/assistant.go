package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/ajramos/inboxtui/internal/render"
	"github.com/ajramos/inboxtui/internal/services"
)

const maxPromptBody = 8000

// Prompts are the templates the assistant fills in. {{body}}, {{prompt}},
// {{context}} and {{labels}} are replaced before generation.
type Prompts struct {
	Summarize  string
	Compose    string
	Categorize string
}

// DefaultCategorizePrompt asks for a two-line machine readable answer
const DefaultCategorizePrompt = "Suggest labels and a priority for the email below. " +
	"Existing labels: {{labels}}.\n" +
	"Answer with exactly two lines:\nlabels: <comma separated labels>\npriority: <low|normal|high>\n\n{{body}}"

// Assistant adapts a Provider to services.AIBackend for backends without
// server-side AI. Semantic search is not available.
type Assistant struct {
	provider Provider
	repo     services.MailRepository
	prompts  Prompts
}

var _ services.AIBackend = (*Assistant)(nil)

// NewAssistant creates an assistant. repo is used to read message bodies
// for requests that only carry an id.
func NewAssistant(provider Provider, repo services.MailRepository, prompts Prompts) *Assistant {
	if prompts.Categorize == "" {
		prompts.Categorize = DefaultCategorizePrompt
	}
	return &Assistant{provider: provider, repo: repo, prompts: prompts}
}

// Summarize summarizes the request text, or the referenced message or thread
func (a *Assistant) Summarize(ctx context.Context, req services.SummarizeRequest) (string, error) {
	body := req.Text
	if strings.TrimSpace(body) == "" {
		var err error
		if body, err = a.resolveBody(ctx, req); err != nil {
			return "", err
		}
	}
	return a.generate(ctx, strings.ReplaceAll(a.prompts.Summarize, "{{body}}", clip(body)))
}

// SuggestCompose returns one suggestion per non-empty line of the answer
func (a *Assistant) SuggestCompose(ctx context.Context, req services.ComposeRequest) ([]string, error) {
	prompt := strings.ReplaceAll(a.prompts.Compose, "{{prompt}}", req.Prompt)
	prompt = strings.ReplaceAll(prompt, "{{context}}", clip(req.Context))
	out, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var suggestions []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789.)"))
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	return suggestions, nil
}

// SemanticSearch is not available without a search index
func (a *Assistant) SemanticSearch(context.Context, string, int) ([]mail.SearchHit, error) {
	return nil, fmt.Errorf("semantic search via %s: %w", a.provider.Name(), services.ErrUnsupported)
}

// Categorize suggests labels and a priority for one message
func (a *Assistant) Categorize(ctx context.Context, itemID string) (*services.Categorization, error) {
	body, err := a.resolveBody(ctx, services.SummarizeRequest{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	var names []string
	if labels, err := a.repo.ListLabels(ctx); err == nil {
		for _, l := range labels {
			names = append(names, l.Name)
		}
	}
	prompt := strings.ReplaceAll(a.prompts.Categorize, "{{labels}}", strings.Join(names, ", "))
	prompt = strings.ReplaceAll(prompt, "{{body}}", clip(body))
	out, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseCategorization(out), nil
}

func (a *Assistant) generate(ctx context.Context, prompt string) (string, error) {
	out, err := a.provider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", a.provider.Name(), services.ErrAIServiceDown, err)
	}
	return strings.TrimSpace(out), nil
}

func (a *Assistant) resolveBody(ctx context.Context, req services.SummarizeRequest) (string, error) {
	if a.repo == nil {
		return "", fmt.Errorf("no text to work on: %w", services.ErrInvalidInput)
	}
	switch {
	case req.ThreadID != "":
		th, err := a.repo.GetThread(ctx, req.ThreadID)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, it := range th.Items {
			fmt.Fprintf(&b, "From: %s\nSubject: %s\n\n%s\n\n", it.From.Display(), it.Subject, render.PlainText(it.Body))
		}
		return b.String(), nil
	case req.ItemID != "":
		it, err := a.repo.GetItem(ctx, req.ItemID)
		if err != nil {
			return "", err
		}
		return "Subject: " + it.Subject + "\n\n" + render.PlainText(it.Body), nil
	default:
		return "", fmt.Errorf("no text to work on: %w", services.ErrInvalidInput)
	}
}

func parseCategorization(out string) *services.Categorization {
	cat := &services.Categorization{Priority: "normal"}
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "labels":
			for _, l := range strings.Split(value, ",") {
				if l = strings.TrimSpace(l); l != "" {
					cat.SuggestedLabels = append(cat.SuggestedLabels, l)
				}
			}
		case "priority":
			if p := strings.ToLower(strings.TrimSpace(value)); p != "" {
				cat.Priority = p
			}
		}
	}
	return cat
}

func clip(s string) string {
	if r := []rune(s); len(r) > maxPromptBody {
		return string(r[:maxPromptBody])
	}
	return s
}
