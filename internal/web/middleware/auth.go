package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/conduit-lang/pgdao/internal/web/auth"
)

// ClaimsKey is the context key for verified token claims
const ClaimsKey ContextKey = "claims"

// Auth requires a valid bearer token on every request. When the token is
// limited to resources, the first path segment after prefix must be one of
// them.
func Auth(service *auth.TokenService, prefix string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization required")
				return
			}

			claims, err := service.ValidateToken(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
				return
			}

			if resource := resourceOf(r.URL.Path, prefix); resource != "" && !claims.Allows(resource) {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Token does not grant access to "+resource)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims extracts the verified claims from the context
func GetClaims(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(auth.Claims)
	return claims, ok
}

func resourceOf(path, prefix string) string {
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok {
		return ""
	}
	rest = strings.TrimPrefix(rest, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  map[string]string{"code": code, "message": message},
		"status": status,
	})
}
