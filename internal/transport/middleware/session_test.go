package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Transport Middleware Suite")
}

type stubResolver struct {
	callers map[string]apperrors.Caller
}

func (s *stubResolver) ResolveSession(token string) (apperrors.Caller, error) {
	if caller, ok := s.callers[token]; ok {
		return caller, nil
	}
	return apperrors.Caller{}, apperrors.ErrSessionNotFound
}

var _ = ginkgo.Describe("SessionGate", func() {
	var (
		gate    func(http.Handler) http.Handler
		next    http.Handler
		reached *apperrors.Caller
	)

	ginkgo.BeforeEach(func() {
		reached = nil
		resolver := &stubResolver{callers: map[string]apperrors.Caller{
			"live-token": {UserID: "u1", Username: "student"},
		}}
		gate = SessionGate(resolver, slog.Default())
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller, ok := apperrors.CallerFromContext(r.Context()); ok {
				reached = &caller
			}
			w.WriteHeader(http.StatusOK)
		})
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		gate(next).ServeHTTP(rec, req)
		return rec
	}

	ginkgo.Context("on public routes", func() {
		ginkgo.It("should pass login and register APIs through without a session", func() {
			for _, path := range []string{"/api/auth/login", "/api/auth/register"} {
				rec := serve(httptest.NewRequest(http.MethodPost, path, nil))
				gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			}
		})

		ginkgo.It("should pass the payment callback through", func() {
			// When
			rec := serve(httptest.NewRequest(http.MethodPost, "/api/payment/callback", nil))

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should pass static assets and docs by prefix", func() {
			for _, path := range []string{"/public/app.css", "/swagger/index.html"} {
				rec := serve(httptest.NewRequest(http.MethodGet, path, nil))
				gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			}
		})

		ginkgo.It("should not extend the allowlist to other methods on the same path", func() {
			// A GET against the POST-only login API is not public.
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/auth/login", nil))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Context("without a session", func() {
		ginkgo.It("should return 401 JSON for API routes", func() {
			// When
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/courseware", nil))

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Header().Get("Content-Type")).To(gomega.ContainSubstring("application/json"))
		})

		ginkgo.It("should redirect page routes to the login entry", func() {
			// When
			rec := serve(httptest.NewRequest(http.MethodGet, "/", nil))

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusFound))
			gomega.Expect(rec.Header().Get("Location")).To(gomega.Equal("/login"))
		})
	})

	ginkgo.Context("with a live session", func() {
		ginkgo.It("should accept the session cookie and bind the caller", func() {
			// Given
			req := httptest.NewRequest(http.MethodGet, "/api/courseware", nil)
			req.AddCookie(&http.Cookie{Name: "session_id", Value: "live-token"})

			// When
			rec := serve(req)

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(reached).ToNot(gomega.BeNil())
			gomega.Expect(reached.UserID).To(gomega.Equal("u1"))
		})

		ginkgo.It("should accept a bearer token as fallback", func() {
			// Given
			req := httptest.NewRequest(http.MethodGet, "/api/courseware", nil)
			req.Header.Set("Authorization", "Bearer live-token")

			// When
			rec := serve(req)

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should reject an expired or unknown token", func() {
			// Given
			req := httptest.NewRequest(http.MethodGet, "/api/courseware", nil)
			req.AddCookie(&http.Cookie{Name: "session_id", Value: "stale-token"})

			// When
			rec := serve(req)

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
