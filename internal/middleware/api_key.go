package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader is the header checked by APIKeyMiddleware
const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware requires the X-API-Key header to match apiKey.
// An empty apiKey disables the check, which keeps local development open.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(APIKeyHeader)
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid or missing API key"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
