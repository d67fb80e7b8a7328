// Package app assembles the server from its parts and owns the process
// lifecycle: serving, the background session sweep, and graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rolo-app/rolo/internal/config"
	"github.com/rolo-app/rolo/internal/database"
	"github.com/rolo-app/rolo/internal/health"
	"github.com/rolo-app/rolo/internal/http/handler"
	"github.com/rolo-app/rolo/internal/http/router"
	"github.com/rolo-app/rolo/internal/observability"
	"github.com/rolo-app/rolo/internal/repository"
	"github.com/rolo-app/rolo/internal/service"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionSweepInterval = time.Hour
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime

	auth *service.AuthService
}

// Build wires the full dependency graph: database, repositories, services,
// handlers, and the HTTP server. It runs migrations so a fresh database is
// usable without a separate step.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, runtime *observability.Runtime) (*App, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	contactRepo := repository.NewContactRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	authService := service.NewAuthService(userRepo, sessionRepo, cfg.SessionTTL)
	contactService := service.NewContactService(contactRepo)
	interactionService := service.NewInteractionService(interactionRepo, contactRepo, contactService)
	exportService := service.NewExportService(contactService, interactionService)

	readiness := health.NewProbeRunner(health.NewDatabaseChecker(db))

	h := router.NewRouter(router.Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, cfg.RegistrationSecret, cfg.SessionTTL, cfg.IsProduction()),
		ContactHandler:     handler.NewContactHandler(contactService, interactionService),
		InteractionHandler: handler.NewInteractionHandler(interactionService, contactService),
		ExportHandler:      handler.NewExportHandler(exportService),
		AuthService:        authService,
		CORSOrigins:        cfg.AllowedOrigins,
		APIRateLimitRPM:    cfg.APIRateLimitRPM,
		AuthRateLimitRPM:   cfg.AuthRateLimitRPM,
		Readiness:          readiness,
		EnableOTelHTTP:     cfg.OTELTracesEnabled,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		Server:        server,
		Observability: runtime,
		auth:          authService,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests. The
// session sweeper runs alongside the server and stops with it.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server listening", "addr", a.Server.Addr, "env", a.Config.Environment)
		if err := a.Server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.sweepSessions(ctx)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.Logger.Info("shutting down")
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := a.auth.SweepExpiredSessions()
			if err != nil {
				a.Logger.Warn("session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				a.Logger.Info("expired sessions removed", "count", removed)
			}
		}
	}
}
