package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ncobase/taskdesk/config"
	"github.com/ncobase/taskdesk/internal/server"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/logging/observes"
	"github.com/ncobase/taskdesk/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	_ "github.com/ncobase/taskdesk/data/all"
)

// NewServeCommand creates the serve command
func NewServeCommand(load func() (*config.Config, func(), error)) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := load()
			if err != nil {
				return err
			}
			defer cleanup()
			return serve(cmd.Context(), cfg, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "create missing tables on start")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := setupObserves(ctx, cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(ctx, cfg, server.Options{Migrate: migrate})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	// Workers outlive the signal so Close can drain them.
	srv.Start(context.WithoutCancel(ctx))

	config.Watch(func(next *config.Config, err error) {
		if err != nil {
			logger.Warn(ctx, "Config reload failed", "error", err)
			return
		}
		if next.Logger != nil {
			logger.StdLogger().SetLevel(logrus.Level(next.Logger.Level))
			logger.Info(ctx, "Log level reloaded", "level", next.Logger.Level)
		}
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info(ctx, "Starting server", "addr", httpServer.Addr, "version", version.GetVersionInfo().Version)
	serveErr := listen(ctx, httpServer)
	if serveErr != nil {
		logger.Error(context.Background(), "Server failed", "error", serveErr)
	} else {
		logger.Info(context.Background(), "Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Server forced to shutdown", "error", err)
	}
	srv.Close(shutdownCtx)
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "Failed to flush traces", "error", err)
	}
	observes.FlushSentry(2 * time.Second)

	logger.Info(context.Background(), "Server exited")
	return serveErr
}

// listen serves until ctx is done or the listener fails. Only a listener
// failure is returned; the caller still shuts the server down.
func listen(ctx context.Context, httpServer *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// setupObserves starts sentry and the tracer when they are configured.
func setupObserves(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if cfg.Observes == nil {
		return noop, nil
	}
	info := version.GetVersionInfo()

	if s := cfg.Observes.Sentry; s != nil && s.Endpoint != "" {
		release := s.Release
		if release == "" {
			release = info.Version
		}
		if err := observes.NewSentry(&observes.SentryOptions{
			Dsn:         s.Endpoint,
			Name:        cfg.AppName,
			Release:     release,
			Environment: s.Environment,
			SampleRate:  s.SampleRate,
		}); err != nil {
			return nil, fmt.Errorf("failed to init sentry: %w", err)
		}
		logger.AddHook(observes.NewSentryHook())
	}

	t := cfg.Observes.Tracer
	if t == nil || t.Endpoint == "" {
		return noop, nil
	}
	name := t.ServiceName
	if name == "" {
		name = cfg.AppName
	}
	shutdown, err := observes.NewTracer(ctx, &observes.TracerOption{
		URL:          t.Endpoint,
		Name:         name,
		Version:      info.Version,
		Revision:     info.Revision,
		Environment:  t.Environment,
		SamplingRate: t.SamplingRate,
		BatchTimeout: t.BatchTimeout,
		Insecure:     t.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init tracer: %w", err)
	}
	return shutdown, nil
}
