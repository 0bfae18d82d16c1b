package llm

import (
	"context"
	"strings"
	"sync"

	appErrors "kindling/pkg/errors"
)

// MockProvider returns canned completions for tests and offline development.
type MockProvider struct {
	mu        sync.Mutex
	available bool
	reply     string
	prompts   []string
	options   []CompletionOptions
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a new mock LLM provider
func NewMockProvider() *MockProvider {
	return &MockProvider{available: true}
}

// SetAvailable toggles whether calls succeed.
func (m *MockProvider) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
}

// SetReply fixes the text of every completion.
func (m *MockProvider) SetReply(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reply = reply
}

// Prompts returns every prompt received so far.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Options returns the options of every completion received so far.
func (m *MockProvider) Options() []CompletionOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompletionOptions(nil), m.options...)
}

func (m *MockProvider) Info() ProviderInfo {
	return ProviderInfo{Host: "mock", Model: "mock-model"}
}

func (m *MockProvider) Models(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return nil, appErrors.NewUnavailable("mock provider is not available", nil)
	}
	return []string{"mock-model"}, nil
}

// Complete echoes a canned reply. Categorization prompts get a well-formed answer.
func (m *MockProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return Completion{}, appErrors.NewUnavailable("mock provider is not available", nil)
	}
	m.prompts = append(m.prompts, prompt)
	m.options = append(m.options, options)

	reply := m.reply
	if reply == "" {
		reply = "Keep going."
		if strings.Contains(prompt, "Respond in EXACTLY this format") {
			reply = "STAGE: exploring\nTAGS: [tools, garden]\nEFFORT: small\nREASONING: Needs a quick prototype."
		}
	}
	return Completion{Text: reply, Model: "mock-model"}, nil
}
