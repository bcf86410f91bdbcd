package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/logger"
)

const defaultShutdownTimeout = 15 * time.Second

// server is what serve drives; *http.Server satisfies it.
type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
}

// serve blocks until ctx is done or srv stops on its own. On ctx it drains
// in-flight requests for up to grace, then force-closes.
func serve(ctx context.Context, srv server, grace time.Duration) error {
	if grace <= 0 {
		grace = defaultShutdownTimeout
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	zlog.Info().Dur("grace", grace).Msg("draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	zlog.Info().
		Str("addr", cfg.HTTPAddr).
		Str("env", cfg.AppEnv).
		Str("kudago", cfg.KudaGoBaseURL).
		Msg("explore-service listening")
	return serve(ctx, app.Server, cfg.ShutdownTimeout)
}

func main() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()

	if err != nil {
		zlog.Error().Err(err).Msg("explore-service stopped")
		os.Exit(1)
	}
	zlog.Info().Msg("shutdown complete")
}
