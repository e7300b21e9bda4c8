package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders = "Content-Type, Authorization, X-Request-ID, X-Device-ID"
)

var defaultOrigins = []string{"http://localhost:3000"}

func originsOrDefault(allowed []string) []string {
	if len(allowed) == 0 {
		return defaultOrigins
	}
	return allowed
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// CORS echoes the request origin when it is allowed, otherwise the first
// allowed origin. Preflight requests end here with 204.
func CORS(allowed []string) func(http.Handler) http.Handler {
	allowed = originsOrDefault(allowed)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := allowed[0]
			if reqOrigin := r.Header.Get("Origin"); reqOrigin != "" && originAllowed(allowed, reqOrigin) {
				origin = reqOrigin
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OriginChecker applies the CORS allow-list to WebSocket upgrades.
// Requests without an Origin header come from non-browser clients and
// are accepted, as are same-host origins.
func OriginChecker(allowed []string) func(*http.Request) bool {
	allowed = originsOrDefault(allowed)

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return originAllowed(allowed, origin)
	}
}
