package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/athena-ems/athena/internal/lib/logger/sl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StartMonitoringServer serves /healthz and /metrics on its own listener and
// blocks until ctx is cancelled, then shuts down gracefully.
func StartMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	health *HealthChecker,
	addr string,
) {
	const shutdownTimeout = 5 * time.Second

	mux := http.NewServeMux()
	mux.Handle("/healthz", health)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(shutdownCtx, "Failed to shut down monitoring server", sl.Err(err))
		}
	}()

	log.InfoContext(ctx, "Monitoring server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", sl.Err(err))
	}
}
