package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	httpapi "github.com/threatcombat/threatcombat/internal/api/http"
	"github.com/threatcombat/threatcombat/internal/api/notify"
	"github.com/threatcombat/threatcombat/internal/api/service"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/internal/api/store/drivers/sqlite"
	"github.com/threatcombat/threatcombat/pkg/cryptox"
	"github.com/threatcombat/threatcombat/pkg/httpx"
	"github.com/threatcombat/threatcombat/pkg/idx"
	"github.com/threatcombat/threatcombat/pkg/jwtx"
	"github.com/threatcombat/threatcombat/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the membership service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	signer   *jwtx.HS256
	notifier notify.Notifier

	// Services
	auditService        *service.AuditService
	authService         *service.AuthService
	authzService        *service.AuthzService
	userService         *service.UserService
	chapterService      *service.ChapterService
	catalogService      *service.CatalogService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "threatcombat-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.signer = jwtx.NewHS256([]byte(cfg.JWTSecret), cfg.Issuer)
	app.initNotifier()
	app.initServices()
	app.initHTTP()

	if err := app.seedAdmin(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// seedAdmin creates the configured first super admin unless an account
// already holds the email. Restarts with the same configuration are no-ops.
func (app *Application) seedAdmin(ctx context.Context) error {
	if app.cfg.BootstrapAdminEmail == "" || app.cfg.BootstrapAdminPassword == "" {
		return nil
	}

	email := strings.ToLower(app.cfg.BootstrapAdminEmail)
	_, err := app.db.Users().GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	hash, err := cryptox.HashPassword(app.cfg.BootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := domain.User{
		ID:               idx.New().String(),
		Name:             app.cfg.BootstrapAdminName,
		Email:            email,
		PasswordHash:     hash,
		Role:             domain.RoleSuperAdmin,
		MembershipStatus: domain.MembershipActive,
		EmailVerified:    true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := app.db.Users().Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed bootstrap admin: %w", err)
	}

	app.logger.Info("bootstrap super admin created", "email", email)
	return nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.auditService.Start()
	app.housekeepingService.Start()

	app.logger.Info("membership service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down membership service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server first so no new audit entries are produced
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// Stop drains queued audit writes before the database closes
	app.auditService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("membership service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initNotifier selects SMTP when a relay is configured, or the log-only
// notifier for development.
func (app *Application) initNotifier() {
	if app.cfg.SMTPHost == "" {
		app.logger.Info("no SMTP relay configured, email will be logged")
		app.notifier = notify.NewLogNotifier()
		return
	}

	app.notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
		BaseURL:  app.cfg.BaseURL,
	})
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.auditService = service.NewAuditService(
		app.db,
		app.logger,
		app.cfg.LockoutThreshold,
		app.cfg.LockoutWindow,
	)

	app.authService = &service.AuthService{
		Store:     app.db,
		Audit:     app.auditService,
		Notifier:  app.notifier,
		Signer:    app.signer,
		Logger:    app.logger,
		Issuer:    app.cfg.Issuer,
		TokenTTL:  app.cfg.TokenTTL,
		VerifyTTL: app.cfg.VerifyTTL,
		ResetTTL:  app.cfg.ResetTTL,
	}
	app.authzService = &service.AuthzService{
		Store:    app.db,
		Audit:    app.auditService,
		Notifier: app.notifier,
		Logger:   app.logger,
	}
	app.userService = &service.UserService{
		Store:    app.db,
		Audit:    app.auditService,
		Notifier: app.notifier,
		Logger:   app.logger,
	}
	app.chapterService = &service.ChapterService{
		Store:  app.db,
		Audit:  app.auditService,
		Logger: app.logger,
	}
	app.catalogService = &service.CatalogService{
		Store:  app.db,
		Audit:  app.auditService,
		Logger: app.logger,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	httpx.InitMetrics()

	router := httpapi.NewRouter(
		app.signer,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.AuthzService = app.authzService
	router.UserService = app.userService
	router.ChapterService = app.chapterService
	router.CatalogService = app.catalogService
	router.AuditService = app.auditService
	router.TokenInBody = app.cfg.TokenInBody
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
