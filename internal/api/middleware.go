package api

import (
	"crypto/subtle"
	"net/http"
)

const (
	apiKeyHeader  = "X-API-Key"
	corsMethods   = "GET, POST, OPTIONS"
	corsHeaders   = "Content-Type, Content-Encoding, " + apiKeyHeader
	corsMaxAgeSec = "600"
)

// CORS lets browser dashboards on any origin read run results. Preflight
// requests are answered here and never reach the API key check.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", corsMethods)
		h.Set("Access-Control-Allow-Headers", corsHeaders)

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Max-Age", corsMaxAgeSec)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// APIKeyAuth rejects requests whose X-API-Key header does not match key with
// a JSON 401. An empty key disables the check.
func APIKeyAuth(key string) func(http.Handler) http.Handler {
	want := []byte(key)
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(apiKeyHeader))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				writeError(w, http.StatusUnauthorized, "missing or invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
