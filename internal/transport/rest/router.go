package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/frahmantamala/courseware-platform/internal"
	"github.com/frahmantamala/courseware-platform/internal/auth"
	"github.com/frahmantamala/courseware-platform/internal/courseware"
	"github.com/frahmantamala/courseware-platform/internal/payment"
	"github.com/frahmantamala/courseware-platform/internal/transport/middleware"
	"github.com/frahmantamala/courseware-platform/internal/transport/swagger"
	"github.com/go-chi/chi"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cfg *internal.Config, authHandler *auth.Handler, authService *auth.Service, coursewareHandler *courseware.Handler, paymentHandler *payment.Handler, webhookHandler *payment.WebhookHandler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	staticDir := cfg.Content.StaticDir

	// Every route passes through the session gate; public routes are the
	// closed allowlist inside the middleware.
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SessionGate(authService, logger))

	// OpenAPI document and docs UI at root
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Pages. The index sits behind the gate so anonymous visitors land on
	// /login via redirect instead of a bare 401.
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	})
	router.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(staticDir, "login.html"))
	})
	router.Get("/register", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(staticDir, "register.html"))
	})

	// Static assets
	router.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(staticDir))))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)
	})

	if authHandler != nil {
		router.Route("/api/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Get("/federated/qr", authHandler.FederatedQR)
			r.Get("/federated/callback", authHandler.FederatedCallback)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	}

	if coursewareHandler != nil {
		router.Route("/api/courseware", func(r chi.Router) {
			r.Get("/", coursewareHandler.List)
			r.Get("/search", coursewareHandler.Search)
			r.Get("/{id}", coursewareHandler.Detail)
			r.Get("/{id}/content", coursewareHandler.Content)
		})
	}

	if paymentHandler != nil {
		router.Route("/api/payment", func(r chi.Router) {
			if webhookHandler != nil {
				r.Post("/callback", webhookHandler.HandleCallback)
			}
			r.Post("/create", paymentHandler.Create)
			r.Post("/{id}/simulate-success", paymentHandler.SimulateSuccess)
			r.Get("/status/{id}", paymentHandler.Status)
		})
	}
}
