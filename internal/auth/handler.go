package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	"github.com/frahmantamala/courseware-platform/internal/transport"
	"github.com/frahmantamala/courseware-platform/pkg/logger"
	"github.com/google/uuid"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI

	// ProviderAuthURL is the federated provider's authorize endpoint; the QR
	// endpoint hands it to the client for rendering.
	ProviderAuthURL string
	CallbackURL     string
}

func NewHandler(svc ServiceAPI, providerAuthURL, callbackURL string) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:     transport.NewBaseHandler(lg),
		Service:         svc,
		ProviderAuthURL: providerAuthURL,
		CallbackURL:     callbackURL,
	}
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, session *SessionInfo) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, apperrors.NewValidationError("invalid request body", apperrors.ErrCodeValidationFailed))
		return
	}

	session, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "username", dto.Username, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session)
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, apperrors.NewValidationError("invalid request body", apperrors.ErrCodeValidationFailed))
		return
	}

	session, err := h.Service.Register(dto)
	if err != nil {
		h.Logger.Error("registration failed", "username", dto.Username, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("user registered", "username", dto.Username)

	h.setSessionCookie(w, session)
	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

// FederatedQR returns the provider authorize URL the client renders as a QR
// code. The provider redirects back to the callback with a code.
func (h *Handler) FederatedQR(w http.ResponseWriter, r *http.Request) {
	state := fmt.Sprintf("%d", time.Now().UnixNano())
	authorizeURL := fmt.Sprintf("%s?redirect_uri=%s&response_type=code&scope=snsapi_login&state=%s",
		h.ProviderAuthURL, url.QueryEscape(h.CallbackURL), state)

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"authorize_url": authorizeURL,
		"state":         state,
	})
}

// FederatedCallback resolves the provider code to a subject id and logs the
// user in, creating a local record on first visit. The provider exchange is
// mocked: the code stands in for the subject.
func (h *Handler) FederatedCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	subjectID := code
	displayName := "federated user"
	if subjectID == "" {
		subjectID = uuid.New().String()
	}

	session, err := h.Service.FederatedLogin("wx-"+subjectID, displayName)
	if err != nil {
		h.Logger.Error("federated login failed", "error", err)
		http.Redirect(w, r, "/login?error=federated_login_failed", http.StatusFound)
		return
	}

	h.setSessionCookie(w, session)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractSessionToken(r)
	if token == "" {
		h.HandleError(w, apperrors.ErrSessionNotFound)
		return
	}

	if err := h.Service.Logout(token); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := apperrors.CallerFromContext(r.Context())
	if !ok || caller.Anonymous() {
		h.HandleError(w, apperrors.ErrSessionNotFound)
		return
	}

	info, err := h.Service.CurrentUser(caller.UserID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, info)
}
