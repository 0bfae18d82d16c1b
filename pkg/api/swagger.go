package api

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// OpenAPISpec returns the embedded OpenAPI document as YAML.
func OpenAPISpec() []byte {
	return openAPIYAML
}

// OpenAPISpecJSON returns the OpenAPI document converted to JSON.
func OpenAPISpecJSON() ([]byte, error) {
	var spec interface{}
	if err := yaml.Unmarshal(openAPIYAML, &spec); err != nil {
		return nil, err
	}
	return json.Marshal(spec)
}

// OpenAPIHandler serves the document as YAML, or JSON when the client asks for it.
func OpenAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Accept"), "application/json") {
			spec, err := OpenAPISpecJSON()
			if err != nil {
				Error(w, http.StatusInternalServerError, "Failed to convert OpenAPI document to JSON")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write(spec)
			return
		}

		w.Header().Set("Content-Type", "application/yaml")
		w.Write(openAPIYAML)
	}
}
