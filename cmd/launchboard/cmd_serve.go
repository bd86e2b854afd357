package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"

	"github.com/yegors/launchboard/internal/api"
	"github.com/yegors/launchboard/pkg/logger"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and its HTTP API",
		Long: `Loads the launch dataset once and serves the dashboard page, the JSON API,
live websocket sessions and prometheus metrics until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := api.NewMetrics()
	a, err := opts.setup(ctx, cmd, metrics)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	serverCfg := a.cfg.Server
	router := api.NewRouter(a.aggregator, serverCfg, metrics, a.log)
	srv := &http.Server{
		Addr:         serverCfg.Addr(),
		Handler:      router.Routes(),
		ReadTimeout:  serverCfg.ReadTimeout(),
		WriteTimeout: serverCfg.WriteTimeout(),
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}
	if serverCfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, serverCfg.MaxConnections)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Starting HTTP server",
			logger.String("addr", ln.Addr().String()),
			logger.Int("max_connections", serverCfg.MaxConnections),
		)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	a.log.Info("HTTP server stopped")
	return nil
}
