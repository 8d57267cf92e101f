package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	"github.com/frahmantamala/courseware-platform/internal/transport"
)

// SessionResolver maps an opaque token to a caller. Unknown and expired
// tokens both come back as errors.
type SessionResolver interface {
	ResolveSession(token string) (apperrors.Caller, error)
}

type routeKey struct {
	Method string
	Path   string
}

// publicRoutes is the closed list of routes reachable without a session.
// The payment callback authenticates itself with a provider signature, not a
// session, so it belongs here.
var publicRoutes = map[routeKey]struct{}{
	{http.MethodGet, "/login"}:                       {},
	{http.MethodGet, "/register"}:                    {},
	{http.MethodPost, "/api/auth/login"}:             {},
	{http.MethodPost, "/api/auth/register"}:          {},
	{http.MethodGet, "/api/auth/federated/qr"}:       {},
	{http.MethodGet, "/api/auth/federated/callback"}: {},
	{http.MethodPost, "/api/payment/callback"}:       {},
	{http.MethodGet, "/api/v1/health"}:               {},
	{http.MethodGet, "/api/v1/ping"}:                 {},
	{http.MethodGet, "/openapi.yml"}:                 {},
}

// publicPrefixes cover static assets and the docs UI.
var publicPrefixes = []string{
	"/public/",
	"/swagger/",
}

func IsPublicRoute(method, path string) bool {
	if _, ok := publicRoutes[routeKey{Method: method, Path: path}]; ok {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func isAPIShaped(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// SessionGate authenticates every request before any handler runs. Public
// routes pass through untouched; everything else needs a live session. API
// routes fail with 401 JSON, page routes redirect to the login entry point.
func SessionGate(resolver SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicRoute(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token := base.ExtractSessionToken(r)
			caller, err := resolver.ResolveSession(token)
			if err != nil || caller.Anonymous() {
				if isAPIShaped(r.URL.Path) {
					base.HandleError(w, apperrors.ErrSessionNotFound)
				} else {
					http.Redirect(w, r, "/login", http.StatusFound)
				}
				return
			}

			ctx := apperrors.ContextWithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
