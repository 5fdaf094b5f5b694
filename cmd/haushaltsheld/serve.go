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

	"github.com/spf13/cobra"

	"github.com/belphemur/haushaltsheld/internal/handlers"
	"github.com/belphemur/haushaltsheld/internal/logging"
	"github.com/belphemur/haushaltsheld/internal/scheduler"
	"github.com/belphemur/haushaltsheld/internal/session"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic calendar refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	logger := logging.GetLogger("main")
	cfg := a.cfg

	logger.Info().
		Str("version", version).
		Str("commit", commit).
		Str("build_date", date).
		Msg("Starting Haushaltsheld")

	db, service, err := a.openService()
	if err != nil {
		return err
	}
	defer db.Close()

	registry := session.NewRegistry(service, cfg.Palette(), cfg.CalendarOptions(), time.Now)
	registry.Listen()
	defer registry.Close()

	refresher, err := scheduler.New(cfg.Service.RefreshSchedule, cfg.Location(), registry)
	if err != nil {
		return err
	}
	refresher.Start(ctx)
	defer refresher.Stop()

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.App.Port),
		Handler: handlers.NewRouter(handlers.RouterDeps{
			Service:  service,
			Sessions: registry,
			DB:       db,
			Location: cfg.Location(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.App.Port).Msg("Starting web server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg("HTTP server error")
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info().Msg("Context cancelled, initiating shutdown sequence")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
		return err
	}
	logger.Info().Msg("HTTP server shut down gracefully")
	return nil
}
