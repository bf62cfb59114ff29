package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anita-ai/anita/internal/config"
	"github.com/anita-ai/anita/internal/db/store"
	httpapp "github.com/anita-ai/anita/internal/http"
	"github.com/anita-ai/anita/internal/lms/canvas"
	"github.com/anita-ai/anita/internal/lms/registry"
	"github.com/anita-ai/anita/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	st := store.New(pool)

	reg := registry.New()
	if err := reg.Register(canvas.Definition{}); err != nil {
		return err
	}

	srv, err := httpapp.NewEchoServer(cfg, st, reg)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	_, metricsErrCh := metrics.StartServer(ctx, cfg.MetricsAddr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		var metricsErr error
		select {
		case <-ctx.Done():
		case metricsErr = <-orNever(metricsErrCh):
			slog.Error("metrics server failed", "error", metricsErr)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return metricsErr
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// orNever turns a possibly-nil channel into one that never fires, so the
// select above works whether or not the metrics listener is enabled.
func orNever(ch <-chan error) <-chan error {
	if ch != nil {
		return ch
	}
	return make(chan error)
}
