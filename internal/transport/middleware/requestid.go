package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/pkg/logger"
)

const TraceHeader = "X-Trace-ID"

// traceIDPattern bounds what a client may hand us as a trace id before it reaches the logs.
var traceIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID keeps the caller's trace id when it is well formed and mints one otherwise. The id
// goes into the request context, the request logger and the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if !traceIDPattern.MatchString(traceID) {
			traceID = uuid.NewString()
		}

		ctx := internal.ContextWithTraceID(r.Context(), traceID)
		ctx = logger.With(ctx, "trace_id", traceID)
		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
