package courseware

import (
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	"github.com/frahmantamala/courseware-platform/internal/transport"
	"github.com/frahmantamala/courseware-platform/pkg/logger"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// List handles GET /api/courseware with an optional category filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	views, err := h.Service.List(category)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"coursewares": views})
}

// Search handles GET /api/courseware/search?q=keyword; without a keyword it
// behaves like List, matching the catalog search contract.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")

	var (
		views []View
		err   error
	)
	if keyword != "" {
		views, err = h.Service.Search(keyword)
	} else {
		views, err = h.Service.List(r.URL.Query().Get("category"))
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"coursewares": views})
}

// Detail handles GET /courseware/{id}. Metadata is visible to every
// authenticated caller; Accessible tells the client whether the body is.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	caller, ok := apperrors.CallerFromContext(r.Context())
	if !ok {
		h.HandleError(w, apperrors.ErrSessionNotFound)
		return
	}

	view, err := h.Service.Get(caller, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

// Content handles GET /courseware/{id}/content and serves the gated body.
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	caller, ok := apperrors.CallerFromContext(r.Context())
	if !ok {
		h.HandleError(w, apperrors.ErrSessionNotFound)
		return
	}

	locator, err := h.Service.ContentLocator(caller, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	// gated bodies must never be cached by intermediaries
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	http.ServeFile(w, r, locator)
}
