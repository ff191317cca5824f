package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long serve-metrics waits for the HTTP
// server to drain active connections during graceful shutdown.
const shutdownTimeout = 10 * time.Second

func serveMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve-metrics",
		Short: "Serve the Prometheus metrics endpoint until interrupted",
		Long:  "serve-metrics exposes the same collector encode/decode increment directly, so counters reflect frame operations performed in this process (for example via the interactive shell) rather than always reading zero.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))

			srv := &http.Server{
				Addr:              cfg.Metrics.Addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("metrics server listening", "addr", cfg.Metrics.Addr, "path", cfg.Metrics.Path)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
					return
				}
				errCh <- nil
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown metrics server: %w", err)
				}

				logger.Info("metrics server stopped")
				return nil
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("metrics server: %w", err)
				}
				return nil
			}
		},
	}
}
