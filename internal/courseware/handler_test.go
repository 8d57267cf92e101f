package courseware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	cwmodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/courseware"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

var _ = ginkgo.Describe("CoursewareHandler", func() {
	var (
		handler    *Handler
		contentDir string
	)

	ginkgo.BeforeEach(func() {
		contentDir = ginkgo.GinkgoT().TempDir()
		gomega.Expect(os.WriteFile(filepath.Join(contentDir, "cw-free.html"), []byte("<h1>algebra</h1>"), 0o644)).To(gomega.Succeed())

		repo := newMockCoursewareRepository(
			&cwmodel.Courseware{ID: "cw-free", Title: "Intro to Algebra", FilePath: "cw-free.html", IsFree: true},
			&cwmodel.Courseware{ID: "cw-paid", Title: "Advanced Calculus", FilePath: "cw-paid.html", PriceCents: 9900},
		)
		handler = NewHandler(NewService(repo, contentDir, slog.Default()))
	})

	getContent := func(caller apperrors.Caller, id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/courseware/"+id+"/content", nil)
		req = withURLParam(req, "id", id)
		req = req.WithContext(apperrors.ContextWithCaller(req.Context(), caller))
		rec := httptest.NewRecorder()
		handler.Content(rec, req)
		return rec
	}

	ginkgo.Describe("Content", func() {
		ginkgo.It("should serve free content with no-cache headers", func() {
			// When
			rec := getContent(basicCaller, "cw-free")

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("algebra"))
			gomega.Expect(rec.Header().Get("Cache-Control")).To(gomega.ContainSubstring("no-store"))
			gomega.Expect(rec.Header().Get("Pragma")).To(gomega.Equal("no-cache"))
		})

		ginkgo.It("should return 403 for paid content and a non-premium caller", func() {
			// When
			rec := getContent(basicCaller, "cw-paid")

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(rec.Header().Get("Content-Type")).To(gomega.ContainSubstring("application/json"))
		})

		ginkgo.It("should return 404 for an unknown courseware", func() {
			// When
			rec := getContent(basicCaller, "missing")

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})
})
