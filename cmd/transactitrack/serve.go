package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Philos250/TransactiTrack/internal/api"
	"github.com/Philos250/TransactiTrack/internal/config"
)

const defaultShutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger as a JSON API",
		Long: `Start the HTTP API for categories, transactions and reports.

The server stops gracefully on SIGINT or SIGTERM, finishing in-flight
requests within the configured shutdown timeout.`,
		RunE: a.runServe,
	}

	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	cmd.Flags().Bool("tls", false, "serve HTTPS (overrides server.tls.enabled)")

	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	addr := a.cfg.Server.Addr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}

	svc, closeLedger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	tlsCfg := a.cfg.Server.TLS
	if cmd.Flags().Changed("tls") {
		tlsCfg.Enabled, _ = cmd.Flags().GetBool("tls")
	}

	listener, err := listen(addr, tlsCfg)
	if err != nil {
		return err
	}

	return serve(ctx, listener, a.newServer(svc), a.cfg.Server.ShutdownTimeout)
}

// listen opens addr, wrapping it in TLS when enabled.
func listen(addr string, tlsCfg config.TLSConfig) (net.Listener, error) {
	var serverTLS *tls.Config
	if tlsCfg.Enabled {
		var err error
		serverTLS, err = tlsCfg.Source().TLSConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if serverTLS == nil {
		return listener, nil
	}
	return tls.NewListener(listener, serverTLS), nil
}

func (a *app) newServer(ledger api.Ledger) *http.Server {
	handler := api.NewRouter(ledger, api.Options{
		Logger:         slog.Default(),
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		RequestTimeout: a.cfg.Server.RequestTimeout,
	})

	return &http.Server{
		Handler:           handler,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}
}

// serve runs srv on listener until ctx is cancelled, then shuts it down,
// waiting up to shutdownTimeout for in-flight requests.
func serve(ctx context.Context, listener net.Listener, srv *http.Server, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", listener.Addr().String())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		slog.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
