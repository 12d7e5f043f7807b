package middleware

import (
	"net/http"

	"reservio/pkg/logger"
)

// WriteGuard refuses all mutating requests when the deployment has no admin
// credential configured. This is a deployment-mode switch, not per-user
// authorization: either the whole instance accepts writes or none do.
func WriteGuard(writesEnabled bool, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !writesEnabled && isMutating(r.Method) {
				log.Warn("Mutating request rejected: writes are disabled",
					"request_id", RequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"Writes are disabled on this deployment"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
