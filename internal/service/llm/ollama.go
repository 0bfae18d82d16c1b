package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "kindling/pkg/errors"
)

// DefaultOllamaHost is the only target used when a configured host is not a loopback address.
const DefaultOllamaHost = "http://localhost:11434"

const maxErrorBody = 4 << 10

// OllamaProvider talks to a local Ollama server.
type OllamaProvider struct {
	host   string
	model  string
	client *http.Client
	logger *zap.Logger
}

var _ Provider = (*OllamaProvider)(nil)

// NewOllamaProvider creates a provider for host. Hosts that do not resolve to a loopback
// address are replaced with DefaultOllamaHost and a warning is logged.
func NewOllamaProvider(host, model string, client *http.Client, logger *zap.Logger) *OllamaProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	safe, ok := LoopbackHost(host)
	if !ok {
		logger.Warn("Ignoring non-loopback Ollama host", zap.String("host", host), zap.String("using", DefaultOllamaHost))
	}
	return &OllamaProvider{host: safe, model: model, client: client, logger: logger}
}

// LoopbackHost normalizes raw and reports whether it points at this machine.
// An empty or rejected host yields DefaultOllamaHost.
func LoopbackHost(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return DefaultOllamaHost, true
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return DefaultOllamaHost, false
	}
	if !isLoopback(u.Hostname()) {
		return DefaultOllamaHost, false
	}
	return u.Scheme + "://" + u.Host, true
}

func isLoopback(hostname string) bool {
	if strings.EqualFold(hostname, "localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

func (p *OllamaProvider) Info() ProviderInfo {
	return ProviderInfo{Host: p.host, Model: p.model}
}

type generateRequest struct {
	Model   string            `json:"model"`
	Prompt  string            `json:"prompt"`
	Stream  bool              `json:"stream"`
	Options CompletionOptions `json:"options"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete runs a single non-streaming generation.
func (p *OllamaProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (Completion, error) {
	body, err := json.Marshal(generateRequest{Model: p.model, Prompt: prompt, Options: options})
	if err != nil {
		return Completion{}, appErrors.NewInternal("failed to encode generate request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return Completion{}, appErrors.NewInternal("failed to build generate request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Error("Ollama unreachable", zap.String("host", p.host), zap.Error(err))
		return Completion{}, appErrors.NewUnavailable("Cannot connect to Ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		p.logger.Error("Ollama request failed", zap.Int("status", resp.StatusCode), zap.ByteString("body", detail))
		return Completion{}, appErrors.NewUpstream("Ollama request failed", errors.New(strings.TrimSpace(string(detail))))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Completion{}, appErrors.NewUpstream("invalid Ollama response", err)
	}
	return Completion{Text: out.Response, Model: out.Model}, nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Models lists installed model names.
func (p *OllamaProvider) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.host+"/api/tags", nil)
	if err != nil {
		return nil, appErrors.NewInternal("failed to build tags request", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, appErrors.NewUnavailable("Cannot connect to Ollama. Make sure it is running.", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, appErrors.NewUnavailable("Ollama not responding", fmt.Errorf("status %d", resp.StatusCode))
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, appErrors.NewUnavailable("Ollama not responding", err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
