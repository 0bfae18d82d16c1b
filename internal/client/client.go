// Package client talks to the Kindling HTTP API. It is the remote store of a CLI
// session and the CLI's gateway to the AI endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"kindling/internal/domain"
	"kindling/internal/service/llm"
	"kindling/internal/store"
	"kindling/pkg/api"
)

const (
	// DefaultTimeout bounds a single data request.
	DefaultTimeout = 30 * time.Second
	// DefaultAITimeout bounds a suggestion or chat request, which waits on model generation.
	DefaultAITimeout = 3 * time.Minute
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("kindling api: %d %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("kindling api: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Options tune a Client. Zero values pick defaults.
type Options struct {
	HTTPClient *http.Client
	Logger     *zap.Logger
	// Timeout applies to data requests, AITimeout to suggest and chat.
	Timeout   time.Duration
	AITimeout time.Duration
}

// Client is a Kindling API client authenticated with an API key.
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	logger    *zap.Logger
	timeout   time.Duration
	aiTimeout time.Duration
}

var _ store.Remote = (*Client)(nil)

// New creates a client for baseURL. Deadlines are applied per request, so a
// supplied HTTPClient should not carry its own Timeout.
func New(baseURL, apiKey string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = DefaultAITimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		http:      opts.HTTPClient,
		logger:    opts.Logger,
		timeout:   opts.Timeout,
		aiTimeout: opts.AITimeout,
	}, nil
}

// LoadAll reads ideas, themes and learnings.
func (c *Client) LoadAll(ctx context.Context) (domain.AppData, error) {
	var data domain.AppData
	if err := c.do(ctx, http.MethodGet, "/api/data", nil, &data); err != nil {
		return domain.AppData{}, err
	}
	return data, nil
}

// CreateIdea sends idea as a draft. The server assigns the id and timestamps.
func (c *Client) CreateIdea(ctx context.Context, idea domain.Idea) (domain.Idea, error) {
	var created domain.Idea
	if err := c.do(ctx, http.MethodPost, "/api/ideas", draftOf(idea), &created); err != nil {
		return domain.Idea{}, err
	}
	return created, nil
}

// UpdateIdea sends patch for id.
func (c *Client) UpdateIdea(ctx context.Context, id string, patch domain.IdeaPatch) error {
	return c.do(ctx, http.MethodPatch, "/api/ideas/"+url.PathEscape(id), patch, nil)
}

// DeleteIdea removes id on the server.
func (c *Client) DeleteIdea(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/ideas/"+url.PathEscape(id), nil, nil)
}

// Sync pushes ideas the server does not have yet.
func (c *Client) Sync(ctx context.Context, ideas []domain.Idea) (api.SyncResponse, error) {
	if ideas == nil {
		ideas = []domain.Idea{}
	}
	var out api.SyncResponse
	err := c.do(ctx, http.MethodPost, "/api/sync", map[string]any{"ideas": ideas}, &out)
	return out, err
}

// AIStatus reports whether the server reaches its local AI model. A 503 still
// carries a status body, which is returned together with the error.
func (c *Client) AIStatus(ctx context.Context) (llm.Status, error) {
	var status llm.Status
	err := c.do(ctx, http.MethodGet, "/api/suggest", nil, &status)
	return status, err
}

// Suggest asks for a server-built suggestion of kind about ideaID, or completes prompt
// when it is non-empty.
func (c *Client) Suggest(ctx context.Context, req api.SuggestRequest) (llm.Suggestion, error) {
	var out llm.Suggestion
	err := c.doWithin(ctx, c.aiTimeout, http.MethodPost, "/api/suggest", req, &out)
	return out, err
}

// Chat sends message with the supplied context.
func (c *Client) Chat(ctx context.Context, message string, cc *llm.ChatContext) (llm.ChatReply, error) {
	var out llm.ChatReply
	err := c.doWithin(ctx, c.aiTimeout, http.MethodPost, "/api/chat", api.ChatRequest{Message: message, Context: cc}, &out)
	return out, err
}

// Health reads /health.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.doWithin(ctx, c.timeout, method, path, in, out)
}

func (c *Client) doWithin(ctx context.Context, timeout time.Duration, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, api.MaxBodyBytes*8))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body api.ErrorResponse
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			apiErr.Message = body.Error
			apiErr.Details = body.Details
		}
		// Status bodies are meaningful even on failure.
		if out != nil {
			_ = json.Unmarshal(raw, out)
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func draftOf(idea domain.Idea) domain.IdeaDraft {
	return domain.IdeaDraft{
		Title:         idea.Title,
		Description:   idea.Description,
		Stage:         idea.Stage,
		Type:          idea.Type,
		Tags:          idea.Tags,
		Effort:        idea.Effort,
		Notes:         idea.Notes,
		StartedAt:     idea.StartedAt,
		AISuggestions: idea.AISuggestions,
		MemoryLinks:   idea.MemoryLinks,
		ResourceLinks: idea.ResourceLinks,
		PersonLinks:   idea.PersonLinks,
	}
}
