package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpers(t *testing.T) {
	t.Run("Should write error bodies", func(t *testing.T) {
		w := httptest.NewRecorder()
		ErrorWithDetails(w, http.StatusBadGateway, "Ollama request failed", "model missing")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.JSONEq(t, `{"error":"Ollama request failed","details":"model missing"}`, w.Body.String())
	})

	t.Run("Should reject empty and malformed bodies", func(t *testing.T) {
		var dst map[string]any
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		assert.EqualError(t, DecodeJSON(r, &dst), "request body is required")

		r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
		assert.Error(t, DecodeJSON(r, &dst))
	})
}

func TestOpenAPIHandler(t *testing.T) {
	t.Run("Should serve YAML by default", func(t *testing.T) {
		w := httptest.NewRecorder()
		OpenAPIHandler()(w, httptest.NewRequest(http.MethodGet, "/api/openapi", nil))
		assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
	})

	t.Run("Should convert to JSON on request", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/openapi", nil)
		r.Header.Set("Accept", "application/json")
		OpenAPIHandler()(w, r)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Contains(t, doc["paths"], "/api/ideas")
	})
}
