package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyMiddleware guards routes with the X-API-Key header. An empty
// expected key disables the check.
func APIKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expectedKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			apiKey := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expectedKey)) != 1 {
				http.Error(w, "Forbidden: Invalid API Key", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
