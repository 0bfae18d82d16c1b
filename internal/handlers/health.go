package handlers

import (
	"net/http"

	"kindling/pkg/api"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	storage string
	version string
}

// NewHealthHandler creates a health handler. An empty storage name reports "unconfigured".
func NewHealthHandler(storage, version string) *HealthHandler {
	if storage == "" {
		storage = "unconfigured"
	}
	return &HealthHandler{storage: storage, version: version}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, api.HealthResponse{Status: "ok", Storage: h.storage, Version: h.version})
}
