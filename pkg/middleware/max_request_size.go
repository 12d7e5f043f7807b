package middleware

import "net/http"

// MaxRequestSize caps request body size; oversized bodies fail on read with
// http.MaxBytesError, which JSON decoding surfaces as a bad request.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
