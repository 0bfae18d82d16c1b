package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"kindling/internal/domain"
	"kindling/internal/service/ideas"
	"kindling/pkg/api"
)

// DataHandler handles snapshot, sync and insight requests.
type DataHandler struct {
	ideas  ideas.Service
	logger *zap.Logger
}

// NewDataHandler creates a new data handler.
func NewDataHandler(svc ideas.Service, logger *zap.Logger) *DataHandler {
	return &DataHandler{ideas: svc, logger: logger}
}

// GetData handles GET /api/data
func (h *DataHandler) GetData(w http.ResponseWriter, r *http.Request) {
	data, err := h.ideas.GetAllData(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, data)
}

// InitData handles POST /api/data/init
func (h *DataHandler) InitData(w http.ResponseWriter, r *http.Request) {
	if err := h.ideas.InitializeTables(r.Context()); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.SuccessResponse{Success: true, Message: "Sheets initialized"})
}

// Sync handles POST /api/sync
func (h *DataHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req api.SyncRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var list []domain.Idea
	if len(req.Ideas) == 0 || req.Ideas[0] != '[' || json.Unmarshal(req.Ideas, &list) != nil {
		api.Error(w, http.StatusBadRequest, `Request body must contain an "ideas" array`)
		return
	}

	result, err := h.ideas.BulkSync(r.Context(), list)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.SyncResponse{
		Success: true,
		Message: fmt.Sprintf("Synced %d ideas, skipped %d existing", result.Created, result.Skipped),
		Created: result.Created,
		Skipped: result.Skipped,
	})
}

// CreateTheme handles POST /api/themes
func (h *DataHandler) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var theme domain.Theme
	if err := api.DecodeJSON(r, &theme); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.ideas.CreateTheme(r.Context(), theme)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, created)
}

// CreateLearning handles POST /api/learnings
func (h *DataHandler) CreateLearning(w http.ResponseWriter, r *http.Request) {
	var learning domain.Learning
	if err := api.DecodeJSON(r, &learning); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.ideas.CreateLearning(r.Context(), learning)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, created)
}
