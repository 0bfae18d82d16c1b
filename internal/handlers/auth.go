package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"kindling/internal/auth"
	"kindling/internal/ratelimit"
	"kindling/pkg/api"
)

// AuthHandler handles login, session status and logout.
type AuthHandler struct {
	gate    *auth.Gate
	limiter *ratelimit.FixedWindowLimiter
	logger  *zap.Logger
}

// NewAuthHandler creates a new auth handler. Login attempts count against limiter.
func NewAuthHandler(gate *auth.Gate, limiter *ratelimit.FixedWindowLimiter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{gate: gate, limiter: limiter, logger: logger}
}

// Login handles POST /api/auth
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	client := ratelimit.ClientIP(r)
	if d := h.limiter.Allow(client); !d.Allowed {
		h.logger.Warn("Login throttled", zap.String("client", client))
		api.Error(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	var req api.LoginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	cookie, err := h.gate.Login(req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidPassword):
		h.logger.Info("Login failed", zap.String("client", client))
		api.Success(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid password"})
		return
	case err != nil:
		handleServiceError(w, r, h.logger, err)
		return
	}
	http.SetCookie(w, cookie)
	api.Success(w, http.StatusOK, api.SuccessResponse{Success: true})
}

// Status handles GET /api/auth
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, api.AuthStatusResponse{Authenticated: h.gate.SessionActive(r)})
}

// Logout handles DELETE /api/auth
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.gate.LogoutCookie())
	api.Success(w, http.StatusOK, api.SuccessResponse{Success: true})
}
