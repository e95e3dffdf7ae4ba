package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alphabot-ai/campusboard/internal/api"
	"github.com/alphabot-ai/campusboard/internal/notify"
	"github.com/alphabot-ai/campusboard/internal/ratelimit"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	shutdownTimeout        = 30 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for this profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

// serve runs the API until ctx is cancelled, then drains in-flight
// requests.
func (a *app) serve(ctx context.Context) error {
	limiter := ratelimit.NewMemoryLimiter(a.clock)
	notes := notify.NewQueue(a.cfg.ToastCapacity, a.cfg.ToastTTL, a.clock)
	handler := api.NewHandler(a.posts, a.identity, limiter, notes, a.cfg, a.logger)

	server := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      api.LogRequests(a.logger)(handler.Routes()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting campusboard", zap.String("addr", server.Addr), zap.String("db", a.cfg.DatabasePath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return limiter.RunCleanup(ctx, limiterCleanupInterval)
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("server forced to shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	err := g.Wait()
	a.logger.Info("server stopped")
	return err
}
