package payment

import (
	"encoding/json"
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

// Create handles POST /api/payment/create for the authenticated caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := apperrors.CallerFromContext(r.Context())
	if !ok || caller.Anonymous() {
		h.HandleError(w, apperrors.ErrSessionNotFound)
		return
	}

	var dto CreatePaymentDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.HandleError(w, apperrors.NewValidationError("invalid request body", apperrors.ErrCodeValidationFailed))
			return
		}
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.Create(caller, dto.AmountCents)
	if err != nil {
		h.Logger.Error("payment creation failed", "user_id", caller.UserID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

// SimulateSuccess handles POST /api/payment/{id}/simulate-success; the caller
// must own the payment.
func (h *Handler) SimulateSuccess(w http.ResponseWriter, r *http.Request) {
	caller, ok := apperrors.CallerFromContext(r.Context())
	if !ok || caller.Anonymous() {
		h.HandleError(w, apperrors.ErrSessionNotFound)
		return
	}

	paymentID := chi.URLParam(r, "id")
	if err := h.Service.SimulateSuccess(caller, paymentID); err != nil {
		h.Logger.Error("simulated confirmation failed",
			"payment_id", paymentID, "user_id", caller.UserID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "payment confirmed, premium access granted",
	})
}

// Status handles GET /api/payment/status/{id}.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.Status(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}
