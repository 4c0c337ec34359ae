package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds the request context by timeout. Database calls made with
// the request context are cancelled when it expires. A zero timeout leaves
// the request unbounded.
func Timeout(timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
