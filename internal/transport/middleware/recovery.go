package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/courseware-platform/pkg/logger"
)

// RecoveryMiddleware converts handler panics into a 500 response. The panic
// value and stack go to the log only, never to the client.
func RecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				logger.From(r.Context()).Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":{"message":"internal server error"}}`))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
