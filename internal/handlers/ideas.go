package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kindling/internal/domain"
	"kindling/internal/service/ideas"
	"kindling/pkg/api"
)

// IdeaHandler handles idea and link requests.
type IdeaHandler struct {
	ideas  ideas.Service
	logger *zap.Logger
}

// NewIdeaHandler creates a new idea handler.
func NewIdeaHandler(svc ideas.Service, logger *zap.Logger) *IdeaHandler {
	return &IdeaHandler{ideas: svc, logger: logger}
}

// ListIdeas handles GET /api/ideas
func (h *IdeaHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	list, err := h.ideas.ListIdeas(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []domain.Idea{}
	}
	api.Success(w, http.StatusOK, list)
}

// CreateIdea handles POST /api/ideas
func (h *IdeaHandler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	var draft domain.IdeaDraft
	if err := api.DecodeJSON(r, &draft); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	idea, err := h.ideas.CreateIdea(r.Context(), draft)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, idea)
}

// GetIdea handles GET /api/ideas/{id}
func (h *IdeaHandler) GetIdea(w http.ResponseWriter, r *http.Request) {
	idea, err := h.ideas.GetIdea(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, idea)
}

// UpdateIdea handles PATCH /api/ideas/{id}
func (h *IdeaHandler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	var patch domain.IdeaPatch
	if err := api.DecodeJSON(r, &patch); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	idea, err := h.ideas.UpdateIdea(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, idea)
}

// DeleteIdea handles DELETE /api/ideas/{id}
func (h *IdeaHandler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	if err := h.ideas.DeleteIdea(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.SuccessResponse{Success: true})
}

// AddLink handles POST /api/ideas/{id}/links
func (h *IdeaHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	var req api.AddLinkRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	idea, err := h.ideas.AddLink(r.Context(), chi.URLParam(r, "id"), req.LinkType, req.Data)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.IdeaResponse{Success: true, Idea: idea})
}

// RemoveLink handles DELETE /api/ideas/{id}/links?linkType=&linkId=
func (h *IdeaHandler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	idea, err := h.ideas.RemoveLink(r.Context(), chi.URLParam(r, "id"), domain.LinkType(q.Get("linkType")), q.Get("linkId"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.IdeaResponse{Success: true, Idea: idea})
}
