package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/courseware-platform/internal"
	"github.com/frahmantamala/courseware-platform/internal/auth"
	authpostgres "github.com/frahmantamala/courseware-platform/internal/auth/postgres"
	"github.com/frahmantamala/courseware-platform/internal/core/events"
	"github.com/frahmantamala/courseware-platform/internal/courseware"
	coursewarepostgres "github.com/frahmantamala/courseware-platform/internal/courseware/postgres"
	"github.com/frahmantamala/courseware-platform/internal/payment"
	paymentpostgres "github.com/frahmantamala/courseware-platform/internal/payment/postgres"
	"github.com/frahmantamala/courseware-platform/internal/paymentgateway"
	"github.com/frahmantamala/courseware-platform/internal/transport/rest"
	"github.com/frahmantamala/courseware-platform/internal/user"
	userpostgres "github.com/frahmantamala/courseware-platform/internal/user/postgres"
	"github.com/frahmantamala/courseware-platform/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config  *internal.Config
	DB      *sqlx.DB
	GormDB  *gorm.DB
	Router  *chi.Mux
	Gateway *paymentgateway.Client
	Logger  *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if deps.Gateway != nil {
			deps.Gateway.Shutdown()
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm rides on the existing pgx connection; TranslateError surfaces
	// unique violations as gorm.ErrDuplicatedKey.
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(appLogger)
	eventBus.Subscribe(events.EventTypePaymentCompleted, func(ctx context.Context, event events.Event) error {
		appLogger.Info("payment completed",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	// Repositories
	userRepo := userpostgres.NewUserRepository(gormDB)
	authUserRepo := authpostgres.NewUserRepository(gormDB)
	sessionRepo := authpostgres.NewSessionRepository(gormDB)
	coursewareRepo := coursewarepostgres.NewCoursewareRepository(gormDB)
	paymentRepo := paymentpostgres.NewPaymentRepository(gormDB)

	// Services
	userService := user.NewService(userRepo, appLogger)
	authService := auth.NewService(authUserRepo, sessionRepo, config.Security.BCryptCost, config.Security.SessionTTL)
	coursewareService := courseware.NewService(coursewareRepo, config.Content.Dir, appLogger)

	webhookURL := config.Payment.WebhookURL
	if webhookURL == "" {
		webhookURL = config.Server.BaseURL + "/api/payment/callback"
	}

	gateway := paymentgateway.NewClient(paymentgateway.Config{
		WebhookURL:      webhookURL,
		CallbackSecret:  config.Payment.CallbackSecret,
		SettlementDelay: config.Payment.SettlementDelay,
		MaxWorkers:      config.Payment.MaxWorkers,
		JobQueueSize:    config.Payment.JobQueueSize,
		WorkerPoolSize:  config.Payment.WorkerPoolSize,
	}, appLogger)

	paymentService := payment.NewService(
		paymentRepo,
		userService,
		eventBus,
		gateway,
		config.Payment.MockGatewayURL,
		config.Payment.DefaultUpgradeAmountCents,
		appLogger,
	)

	// Handlers
	authHandler := auth.NewHandler(
		authService,
		config.Payment.MockGatewayURL+"/connect/qrconnect",
		config.Server.BaseURL+"/api/auth/federated/callback",
	)
	coursewareHandler := courseware.NewHandler(coursewareService)
	paymentHandler := payment.NewHandler(paymentService)
	webhookHandler := payment.NewWebhookHandler(paymentService, config.Payment.CallbackSecret)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, config, authHandler, authService, coursewareHandler, paymentHandler, webhookHandler, appLogger)

	return &Dependencies{
		Config:  config,
		Logger:  appLogger,
		DB:      db,
		GormDB:  gormDB,
		Router:  router,
		Gateway: gateway,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
