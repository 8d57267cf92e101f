package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	"github.com/frahmantamala/courseware-platform/internal/transport"
	"github.com/frahmantamala/courseware-platform/pkg/logger"
)

// WebhookHandler receives settlement callbacks from the payment provider.
// The route is public; authentication is the signed token in the payload.
type WebhookHandler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	callbackSecret string
}

func NewWebhookHandler(svc ServiceAPI, callbackSecret string) *WebhookHandler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &WebhookHandler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Service:        svc,
		callbackSecret: callbackSecret,
	}
}

// HandleCallback handles POST /api/payment/callback.
func (h *WebhookHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var dto CallbackDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("invalid callback payload", "error", err)
		h.HandleError(w, apperrors.NewValidationError("invalid callback payload", apperrors.ErrCodeValidationFailed))
		return
	}

	subject, err := VerifyCallbackToken(h.callbackSecret, dto.Token)
	if err != nil || subject != dto.PaymentID {
		h.Logger.Warn("rejected callback with bad signature",
			"payment_id", dto.PaymentID, "error", err)
		h.HandleError(w, apperrors.ErrInvalidSignature)
		return
	}

	if dto.Status != CallbackStatusSuccess {
		// only success settles; anything else leaves the row pending
		h.Logger.Info("ignoring non-success callback",
			"payment_id", dto.PaymentID, "status", dto.Status)
		h.HandleError(w, apperrors.NewValidationError("unsupported callback status", apperrors.ErrCodeValidationFailed))
		return
	}

	if err := h.Service.Confirm(dto.PaymentID, SourceProviderCallback); err != nil {
		h.Logger.Error("callback confirmation failed",
			"payment_id", dto.PaymentID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
