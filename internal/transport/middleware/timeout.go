package middleware

import (
	"net/http"
	"time"

	"github.com/tarefa360/tarefa360/internal"
)

// Timeout bounds the context handed to services, and so every store call they make.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := internal.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
