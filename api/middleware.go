/*
middleware.go - Bearer-token authentication middleware

PURPOSE:
  Extracts and validates the Authorization header, then places the
  resulting clinic.Principal into the request context. Handlers never
  re-parse tokens; they read the principal with principalFrom().
*/
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/auratheracare/clinic-engine/clinic"
)

type contextKey string

const principalKey contextKey = "principal"

// RequireAuth rejects requests without a valid bearer token and makes
// the authenticated principal available to downstream handlers.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "Access token required", nil)
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		principal, err := h.Tokens.Validate(token)
		if err != nil {
			writeError(w, http.StatusForbidden, "Invalid token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFrom(ctx context.Context) clinic.Principal {
	p, _ := ctx.Value(principalKey).(clinic.Principal)
	return p
}
