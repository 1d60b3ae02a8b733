// Package main runs the Veo Studio HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/maauso/veo-studio/internal/bootstrap"
	"github.com/maauso/veo-studio/internal/config"
	"github.com/maauso/veo-studio/internal/server"
	"github.com/maauso/veo-studio/internal/studio"
)

// clipWriteTimeout bounds a single response, including streamed clip content.
const clipWriteTimeout = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "veo-studio: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	router := server.NewRouter(
		server.NewHandlers(deps.Studio, logger),
		logger,
		server.Config{AllowedOrigins: cfg.AllowedOrigins},
	)
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: clipWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("veo studio listening",
		slog.String("addr", srv.Addr),
		slog.Duration("poll_interval", cfg.PollInterval),
		slog.Duration("max_wait", cfg.MaxWait),
		slog.String("temp_dir", cfg.TempDir),
		slog.Bool("s3_enabled", cfg.S3Enabled()),
		slog.Bool("media_probe", cfg.MediaProbe),
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown requested")
	}

	return shutdown(srv, deps.Studio, cfg.ShutdownTimeout, logger)
}

// shutdown drains HTTP traffic first so no new generation can start, then
// lets the studio finish its cycle and release the session's clips.
func shutdown(srv *http.Server, s *studio.Studio, timeout time.Duration, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	if err := s.Close(ctx); err != nil {
		logger.Warn("failed to release stored videos", slog.String("error", err.Error()))
	}

	logger.Info("veo studio stopped")
	return nil
}
