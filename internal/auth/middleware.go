package auth

import (
	"net/http"

	"kindling/pkg/api"
)

// Require rejects unauthenticated requests with 401.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := g.Check(r)
		if !res.Authenticated {
			api.Error(w, http.StatusUnauthorized, "Authentication required. Provide cookie auth or API key.")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithMethod(r.Context(), res.Method)))
	})
}
