package auth

import (
	"net/http"
	"strings"
)

const (
	AccessTokenName = "access_token"

	authorizationHeader = "Authorization"
	bearerScheme        = "Bearer"
)

// SetBearer puts token on an outgoing request's headers. An empty token
// leaves the headers alone.
func SetBearer(h http.Header, token string) {
	if token == "" {
		return
	}
	h.Set(authorizationHeader, bearerScheme+" "+token)
}

// bearerToken parses "Bearer <token>", case-insensitive on the scheme.
func bearerToken(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// ExtractAccessToken reads the Authorization header first. Browser
// WebSocket clients cannot set headers, so the access_token query
// parameter and cookie are accepted after it.
func ExtractAccessToken(r *http.Request) string {
	if token, ok := bearerToken(r.Header.Get(authorizationHeader)); ok {
		return token
	}
	if token := r.URL.Query().Get(AccessTokenName); token != "" {
		return token
	}
	if cookie, err := r.Cookie(AccessTokenName); err == nil {
		return cookie.Value
	}
	return ""
}
