package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/tarefa360/tarefa360/internal"
)

// RecoveryMiddleware turns a panic into a 500 carrying the usual error body and, when known, the
// trace id to quote when reporting it.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic recovered",
						"error", rec,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					body := map[string]interface{}{
						"code":    http.StatusInternalServerError,
						"error":   internal.ErrorTypeInternal,
						"message": "internal server error",
					}
					if traceID := internal.TraceIDFromContext(r.Context()); traceID != "" {
						body["trace_id"] = traceID
					}
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(body)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
