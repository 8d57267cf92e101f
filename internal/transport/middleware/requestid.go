package middleware

import (
	"net/http"

	"github.com/frahmantamala/courseware-platform/pkg/logger"
	"github.com/google/uuid"
)

const traceHeader = "X-Trace-ID"

// RequestID picks up the caller's trace id or mints one, binds it to the
// context logger, and echoes it on the response so clients can correlate.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		w.Header().Set(traceHeader, traceID)

		ctx := logger.With(r.Context(), "traceID", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
