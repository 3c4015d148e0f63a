package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	httpserver "github.com/fyrsmithlabs/depthbudget/internal/http"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve runs and sweeps over HTTP",
		Long: `Start the HTTP API. Runs until interrupted.

Endpoints:
  GET  /health
  GET  /metrics
  GET  /api/v1/policies
  POST /api/v1/run
  POST /api/v1/sweep

Examples:
  depthbudget serve --port 9191`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := httpserver.FromSettings(a.cfg.Server)
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			server, err := httpserver.NewServer(a.runner, a.logger, cfg,
				httpserver.WithTelemetry(a.tel),
				httpserver.WithVersion(version),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a, server, cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "listen host")
	cmd.Flags().IntVar(&port, "port", 9191, "listen port")
	return cmd
}

// serve runs server until ctx is done, then shuts it down within the
// configured timeout.
func serve(ctx context.Context, a *app, server *httpserver.Server, cfg *httpserver.Config) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error(shutdownCtx, "http shutdown failed", zap.Error(err))
			return err
		}
		return nil
	})

	return g.Wait()
}
