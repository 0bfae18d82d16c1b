// Package api provides standardized helper functions for HTTP API responses.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes bounds request bodies accepted by DecodeJSON.
const MaxBodyBytes = 1 << 20

// Success sends a standardized successful HTTP response with optional JSON data.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error sends a standardized error response with consistent JSON format.
func Error(w http.ResponseWriter, statusCode int, message string) {
	Success(w, statusCode, ErrorResponse{Error: message})
}

// ErrorWithDetails adds a details field for upstream failures the caller can act on.
func ErrorWithDetails(w http.ResponseWriter, statusCode int, message, details string) {
	Success(w, statusCode, ErrorResponse{Error: message, Details: details})
}

// DecodeJSON reads a bounded JSON body into dst.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	err := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes)).Decode(dst)
	switch {
	case errors.Is(err, io.EOF):
		return errors.New("request body is required")
	case err != nil:
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
