package middleware

import (
	"encoding/json"
	"net/http"

	"foodzz/internal/auth"
	"foodzz/internal/logger"

	"go.uber.org/zap"
)

// Auth puts the claims of a valid token into the request context and
// tags later log lines with the user. A request without a token passes
// through untouched; one with a bad token is rejected.
func Auth(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := issuer.Parse(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejected token", zap.Error(err))
				writeError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}

			ctx := auth.WithClaims(r.Context(), claims)
			ctx = logger.WithFields(ctx, zap.String("user", claims.Username))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
