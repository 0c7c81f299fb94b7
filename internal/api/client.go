// Package api is the REST mail backend client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/ajramos/inboxtui/internal/services"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const maxErrorBody = 4 << 10

// Options configures a Client
type Options struct {
	BaseURL string
	// Token is sent as a bearer token when set
	Token             string
	Timeout           time.Duration
	RequestsPerSecond int
	// HTTPClient overrides the underlying transport client
	HTTPClient *http.Client
	Log        zerolog.Logger
}

// Client talks to the mail REST API. It implements both
// services.MailRepository and services.AIBackend.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

var (
	_ services.MailRepository = (*Client)(nil)
	_ services.AIBackend      = (*Client)(nil)
)

// New creates a client for the API rooted at opts.BaseURL
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", opts.BaseURL)
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		cp := *opts.HTTPClient
		hc = &cp
	}
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.Token,
			TokenType:   "Bearer",
		}))
	}
	if opts.Timeout > 0 {
		hc.Timeout = opts.Timeout
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = opts.RequestsPerSecond
	}

	return &Client{
		base:    base,
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		log:     opts.Log,
	}, nil
}

// ListItems returns one page of messages
func (c *Client) ListItems(ctx context.Context, q services.ListQuery) (*mail.ItemPage, error) {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Label != "" {
		v.Set("label", q.Label)
	}
	if q.Read != nil {
		v.Set("is_read", strconv.FormatBool(*q.Read))
	}
	if q.Starred != nil {
		v.Set("is_starred", strconv.FormatBool(*q.Starred))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}

	var page mail.ItemPage
	if err := c.do(ctx, http.MethodGet, "/emails", v, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetItem returns one message
func (c *Client) GetItem(ctx context.Context, id string) (*mail.Item, error) {
	var it mail.Item
	if err := c.do(ctx, http.MethodGet, "/emails/"+url.PathEscape(id), nil, nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateItem patches the flags of one message
func (c *Client) UpdateItem(ctx context.Context, id string, update mail.ItemUpdate) (*mail.Item, error) {
	var body any = update
	if update.Labels == nil {
		// labels is not omitempty on the type; leave it out when untouched
		body = struct {
			Read    *bool `json:"is_read,omitempty"`
			Starred *bool `json:"is_starred,omitempty"`
		}{update.Read, update.Starred}
	}
	var it mail.Item
	if err := c.do(ctx, http.MethodPatch, "/emails/"+url.PathEscape(id), nil, body, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// DeleteItem removes one message
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/emails/"+url.PathEscape(id), nil, nil, nil)
}

// CreateItem sends a new message
func (c *Client) CreateItem(ctx context.Context, draft mail.Draft) (*mail.Item, error) {
	var it mail.Item
	if err := c.do(ctx, http.MethodPost, "/emails", nil, draft, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// GetThread returns a thread with its messages
func (c *Client) GetThread(ctx context.Context, id string) (*mail.Thread, error) {
	var th mail.Thread
	if err := c.do(ctx, http.MethodGet, "/threads/"+url.PathEscape(id), nil, nil, &th); err != nil {
		return nil, err
	}
	return &th, nil
}

// ListLabels returns every label with its message count
func (c *Client) ListLabels(ctx context.Context) ([]mail.Label, error) {
	var labels []mail.Label
	if err := c.do(ctx, http.MethodGet, "/labels", nil, nil, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// CreateLabel creates a user label
func (c *Client) CreateLabel(ctx context.Context, name, color string) (*mail.Label, error) {
	req := struct {
		Name  string `json:"name"`
		Color string `json:"color,omitempty"`
	}{name, color}
	var l mail.Label
	if err := c.do(ctx, http.MethodPost, "/labels", nil, req, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteLabel removes a user label
func (c *Client) DeleteLabel(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/labels/"+url.PathEscape(name), nil, nil, nil)
}

// Summarize asks the server to summarize a message, thread or text
func (c *Client) Summarize(ctx context.Context, req services.SummarizeRequest) (string, error) {
	var resp struct {
		Summary string `json:"summary"`
	}
	if err := c.do(ctx, http.MethodPost, "/ai/summarize", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// SuggestCompose asks the server for draft suggestions
func (c *Client) SuggestCompose(ctx context.Context, req services.ComposeRequest) ([]string, error) {
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.do(ctx, http.MethodPost, "/ai/compose", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// SemanticSearch runs a server-side semantic search
func (c *Client) SemanticSearch(ctx context.Context, query string, limit int) ([]mail.SearchHit, error) {
	req := struct {
		Query string `json:"query"`
		Limit int    `json:"limit,omitempty"`
	}{query, limit}
	var resp struct {
		Results []mail.SearchHit `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/ai/search", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Categorize asks the server for suggested labels and a priority
func (c *Client) Categorize(ctx context.Context, itemID string) (*services.Categorization, error) {
	req := struct {
		ItemID string `json:"email_id"`
	}{itemID}
	var cat services.Categorization
	if err := c.do(ctx, http.MethodPost, "/ai/categorize", nil, req, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Index rebuilds the semantic search index and returns the number of
// indexed messages
func (c *Client) Index(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"indexed_count"`
	}
	if err := c.do(ctx, http.MethodPost, "/ai/index", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// IndexItem adds one message to the semantic search index
func (c *Client) IndexItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/ai/index/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, services.ErrTimeout, err)
	}

	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w: %w", method, path, services.ErrTimeout, err)
		}
		return fmt.Errorf("%s %s: %w: %w", method, path, services.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(data)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w: %w", method, path, services.ErrInvalidFormat, err)
	}
	return nil
}
