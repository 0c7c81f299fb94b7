package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider generates text from a prompt
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// OllamaClient talks to a local Ollama server
type OllamaClient struct {
	Endpoint string
	Model    string
	Timeout  time.Duration

	http *http.Client
}

// NewOllama creates a new Ollama client
func NewOllama(endpoint, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		Endpoint: endpoint,
		Model:    model,
		Timeout:  timeout,
		http:     &http.Client{Timeout: timeout},
	}
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Generate sends a prompt to Ollama and returns the generated text
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	data, err := json.Marshal(ollamaRequest{Model: c.Model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %s", resp.Status)
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}
	return strings.TrimSpace(out.Response), nil
}

// Name returns provider name
func (c *OllamaClient) Name() string { return "ollama" }

// IsAvailable checks if the Ollama service answers
func (c *OllamaClient) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.Replace(c.Endpoint, "/api/generate", "/api/tags", 1), nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
