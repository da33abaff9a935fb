// Package app wires configuration, storage and the HTTP stack into the
// filmorate commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filmorate/backend/internal/config"
	"github.com/filmorate/backend/internal/handlers"
	"github.com/filmorate/backend/internal/httpserver"
	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/middleware"
)

// Run bootstraps the Filmorate backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve or migrate")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	switch args[0] {
	case "serve":
		return serve(ctx, cfg, logger)
	case "migrate":
		return runMigrations(ctx, cfg, args[1:], os.Stdout)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     logging.ParseLevel(level),
	}))
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	limiter, closeLimiter, err := newRateLimiter(ctx, cfg.RateLimit)
	if err != nil {
		return err
	}
	defer closeLimiter()

	srv := httpserver.New(cfg.AppPort, buildHandler(logger, limiter, deps), cfg.ShutdownTimeout)

	logger.Info("starting http server", "port", cfg.AppPort, "storage", cfg.Storage)

	if err := httpserver.Serve(ctx, srv); err != nil {
		return err
	}

	logger.Info("http server stopped")
	return nil
}

// newRateLimiter returns nil when limiting is disabled. The returned close
// function is never nil on success.
func newRateLimiter(ctx context.Context, cfg config.RateLimitConfig) (middleware.RateLimiter, func(), error) {
	if !cfg.Enabled() {
		return nil, func() {}, nil
	}

	if cfg.RedisURL == "" {
		return middleware.NewClientRateLimiter(cfg.Requests, cfg.Window, cfg.Burst, 10*time.Minute), func() {}, nil
	}

	client, err := middleware.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return middleware.NewRedisRateLimiter(client, cfg.Requests, cfg.Window), func() { _ = client.Close() }, nil
}

// buildHandler assembles the routes behind the request logger and, when
// limiter is set, the per-client rate limiter.
func buildHandler(logger *slog.Logger, limiter middleware.RateLimiter, deps handlers.Dependencies) http.Handler {
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	var handler http.Handler = mux
	if limiter != nil {
		handler = middleware.RateLimit(limiter)(handler)
	}

	return middleware.RequestLogger(logger)(handler)
}
