package middleware

import "net/http"

// MaxRequestSize caps the request body size. Oversized bodies cause
// the JSON decoder in the handler to fail with http.MaxBytesError.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
