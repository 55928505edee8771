package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the websocket gateway and the deadline sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *cfg)
		},
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func serve(ctx context.Context, cfg config.Config) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth jwt secret is required")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := newRegistry()
	services, err := setupServices(ctx, cfg, clockwork.NewRealClock(), serviceOptions{
		Realtime: true,
		Registry: reg,
	})
	if err != nil {
		return err
	}
	defer services.Close()

	srv := setupServer(cfg, services, reg)

	errCh := make(chan error, 1)
	done := make(chan struct{}, 2)

	go func() {
		defer func() { done <- struct{}{} }()
		if err := services.Gateway.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway stopped with error")
		}
	}()

	if cfg.Sweeper.Enabled {
		go func() {
			defer func() { done <- struct{}{} }()
			if err := services.Sweeper.Run(ctx); err != nil {
				log.Error().Err(err).Msg("sweeper stopped with error")
			}
		}()
	} else {
		log.Warn().Msg("deadline sweeper disabled")
		done <- struct{}{}
	}

	go func() {
		log.Info().
			Str("addr", cfg.Listen).
			Str("store", cfg.Store).
			Bool("maintenance", cfg.MaintenanceMode).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
		log.Error().Err(serveErr).Msg("server exited unexpectedly")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down server")
	}

	for range 2 {
		select {
		case <-done:
		case <-shutdownCtx.Done():
			log.Warn().Msg("timed out waiting for background loops")
			return serveErr
		}
	}
	log.Info().Msg("graceful shutdown complete")
	return serveErr
}
