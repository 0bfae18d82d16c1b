package api

import (
	"encoding/json"

	"kindling/internal/domain"
	"kindling/internal/service/llm"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse acknowledges an operation without a resource body.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// AddLinkRequest is the body for POST /api/ideas/{id}/links.
type AddLinkRequest struct {
	LinkType domain.LinkType `json:"linkType"`
	Data     json.RawMessage `json:"data"`
}

// IdeaResponse wraps an idea returned by the link endpoints.
type IdeaResponse struct {
	Success bool        `json:"success"`
	Idea    domain.Idea `json:"idea"`
}

// SyncRequest is the body for POST /api/sync. Ideas is kept raw so a non-array can be rejected.
type SyncRequest struct {
	Ideas json.RawMessage `json:"ideas"`
}

// SyncResponse reports how many ideas a bulk sync stored.
type SyncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

// SuggestRequest is the body for POST /api/suggest. Either Prompt is set, or Type names a
// server-built prompt and IdeaID selects the idea it is about.
type SuggestRequest struct {
	Prompt string `json:"prompt,omitempty"`
	Type   string `json:"type,omitempty"`
	IdeaID string `json:"ideaId,omitempty"`
}

// ChatRequest is the body for POST /api/chat.
type ChatRequest struct {
	Message string           `json:"message"`
	Context *llm.ChatContext `json:"context,omitempty"`
}

// LoginRequest is the body for POST /api/auth.
type LoginRequest struct {
	Password string `json:"password"`
}

// AuthStatusResponse is returned by GET /api/auth.
type AuthStatusResponse struct {
	Authenticated bool `json:"authenticated"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Version string `json:"version"`
}
