// Package llm provides the local-AI assistance used for suggestions, categorization and chat.
package llm

import "context"

// Provider defines the interface for completion backends.
type Provider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (Completion, error)

	// Models lists the models the backend has installed. An error means the backend is unreachable.
	Models(ctx context.Context) ([]string, error)
	Info() ProviderInfo
}

// CompletionOptions configures completion requests
type CompletionOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"num_predict"`
}

// Completion is the generated text and the model that produced it.
type Completion struct {
	Text  string
	Model string
}

// ProviderInfo describes where completions come from.
type ProviderInfo struct {
	Host  string `json:"host"`
	Model string `json:"model"`
}

var (
	suggestOptions = CompletionOptions{Temperature: 0.7, MaxTokens: 500}
	chatOptions    = CompletionOptions{Temperature: 0.7, MaxTokens: 800}
)
