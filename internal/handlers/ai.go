package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"kindling/internal/domain"
	"kindling/internal/service/ideas"
	"kindling/internal/service/llm"
	"kindling/pkg/api"
	appErrors "kindling/pkg/errors"
)

// AIRecorder counts local AI requests.
type AIRecorder interface {
	RecordAI(kind string, err error)
}

// AIHandler handles suggestion and chat requests against the local AI server.
type AIHandler struct {
	llm      *llm.Service
	ideas    ideas.Service
	recorder AIRecorder
	logger   *zap.Logger
}

// NewAIHandler creates a new AI handler. recorder may be nil.
func NewAIHandler(llmSvc *llm.Service, ideaSvc ideas.Service, recorder AIRecorder, logger *zap.Logger) *AIHandler {
	return &AIHandler{llm: llmSvc, ideas: ideaSvc, recorder: recorder, logger: logger}
}

func (h *AIHandler) record(kind string, err error) {
	if h.recorder != nil {
		h.recorder.RecordAI(kind, err)
	}
}

// Status handles GET /api/suggest
func (h *AIHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.llm.Status(r.Context())
	if err != nil {
		h.logger.Warn("Local AI server unavailable", zap.Error(err))
		api.Success(w, http.StatusServiceUnavailable, status)
		return
	}
	api.Success(w, http.StatusOK, status)
}

// Suggest handles POST /api/suggest. A request with a prompt is completed as is; a request
// with only a type gets a prompt built from the stored portfolio.
func (h *AIHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req api.SuggestRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		out llm.Suggestion
		err error
	)
	switch {
	case strings.TrimSpace(req.Prompt) != "":
		out, err = h.llm.Suggest(r.Context(), req.Prompt, req.Type)
	case req.Type != "":
		var data domain.AppData
		if data, err = h.ideas.GetAllData(r.Context()); err == nil {
			out, err = h.llm.SuggestFor(r.Context(), llm.Kind(req.Type), data, req.IdeaID)
		}
	default:
		err = appErrors.NewValidation("Prompt is required")
	}
	h.record(kindLabel(req.Type), err)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, out)
}

// Chat handles POST /api/chat
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var cc llm.ChatContext
	if req.Context != nil {
		cc = *req.Context
	}
	reply, err := h.llm.Chat(r.Context(), req.Message, cc)
	h.record("chat", err)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, reply)
}

// kindLabel bounds metric label values to the known suggestion kinds.
func kindLabel(kind string) string {
	switch llm.Kind(kind) {
	case llm.KindSpark, llm.KindProgress, llm.KindNewIdeas, llm.KindThemeConnection, llm.KindCategorize, llm.KindInsights:
		return kind
	}
	return "custom"
}
