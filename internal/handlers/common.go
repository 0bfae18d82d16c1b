// Package handlers provides the HTTP handlers of the Kindling API.
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"kindling/internal/middleware"
	"kindling/pkg/api"
	appErrors "kindling/pkg/errors"
)

// handleServiceError converts service errors to appropriate HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := appErrors.HTTPStatus(err)
	fields := []zap.Field{
		zap.String("requestID", middleware.GetRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}

	switch appErrors.TypeOf(err) {
	case appErrors.ErrorTypeValidation, appErrors.ErrorTypeNotFound, appErrors.ErrorTypeUnauthorized, appErrors.ErrorTypeRateLimited:
		logger.Debug("Request rejected", fields...)
		api.Error(w, status, appErrors.MessageOf(err))
	case appErrors.ErrorTypeUpstream:
		logger.Error("Upstream failure", fields...)
		api.ErrorWithDetails(w, status, appErrors.MessageOf(err), appErrors.DetailOf(err))
	case appErrors.ErrorTypeUnavailable:
		logger.Warn("Dependency unavailable", fields...)
		api.Error(w, status, appErrors.MessageOf(err))
	default:
		// Full detail goes to the log only.
		logger.Error("Internal error", fields...)
		api.Error(w, http.StatusInternalServerError, "An internal error occurred")
	}
}
