// Package app assembles the auth service: config, logging, storage, cache,
// queue, services and the HTTP server, with graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/campusconnect/campusconnect/internal/auth/cache"
	httpapi "github.com/campusconnect/campusconnect/internal/auth/http"
	"github.com/campusconnect/campusconnect/internal/auth/queue"
	"github.com/campusconnect/campusconnect/internal/auth/service"
	"github.com/campusconnect/campusconnect/internal/auth/store"
	"github.com/campusconnect/campusconnect/internal/auth/store/drivers/sqlite"
	"github.com/campusconnect/campusconnect/pkg/cryptox"
	"github.com/campusconnect/campusconnect/pkg/jwtx"
	"github.com/campusconnect/campusconnect/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	redis *redis.Client
	auth  *service.Auth

	server *http.Server
	router *httpapi.Router

	stopHousekeeping context.CancelFunc
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "campusconnect-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	db, err := sqlite.NewStore(cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	app.db = db

	app.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
	})

	tokens := jwtx.NewService(
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)
	app.auth = service.NewAuth(
		app.db,
		cache.NewRedis(app.redis),
		queue.NewRedisDispatcher(app.redis),
		tokens,
		cryptox.NewHasher(cfg.PasswordPepper),
		cryptox.NewOTPHasher(cfg.OTPPepper),
		service.Config{
			EmailDomain:            cfg.EmailDomain,
			OTPTTL:                 cfg.OTPTTL,
			UsernameReservationTTL: cfg.UsernameReservationTTL,
		},
	)

	app.router = httpapi.NewRouter(
		app.auth, tokens, app.db, cache.NewRedis(app.redis),
		BuildVersion, app.logger,
	)
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: app.router,
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	hkCtx, cancel := context.WithCancel(slogx.WithContext(context.Background(), app.logger))
	app.stopHousekeeping = cancel
	go app.auth.RunHousekeeping(hkCtx, app.cfg.HousekeepingInterval)

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.stopHousekeeping != nil {
		app.stopHousekeeping()
	}

	if err := app.redis.Close(); err != nil {
		app.logger.Error("error closing redis client", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
	}

	app.logger.Info("auth service stopped")
	return nil
}
