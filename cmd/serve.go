package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/UnknownOlympus/meridian/internal/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the customer API and geocode customers in the background",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := loadEnvironment()

			app, err := buildComponents(cfg, logger)
			if err != nil {
				logger.Error("Failed to start", "error", err)
				return err
			}
			defer app.close()

			return serve(cmd.Context(), logger, app, cfg.APIPort, cfg.HealthPort)
		},
	}
}

func serve(parent context.Context, logger *slog.Logger, app *components, apiPort, healthPort int) error {
	ctx, stop := signalContext(parent)
	defer stop()

	var wg sync.WaitGroup
	var status api.QueueStatus
	if app.queue != nil {
		status = app.queue
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.queue.Run(ctx)
		}()
	}

	go startMonitoringServer(ctx, logger, app.registry, app.pinger, healthPort)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", apiPort),
		Handler:      api.NewRouter(logger, app.customers, status),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "Starting API server", "port", apiPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	var serveErr error
	select {
	case <-ctx.Done():
		logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")
	case serveErr = <-errCh:
		logger.ErrorContext(ctx, "API server failed", "error", serveErr)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(ctx, "API server shutdown failed", "error", err)
	}

	wg.Wait()
	logger.InfoContext(ctx, "Application stopped gracefully.")

	return serveErr
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port and logs the server's status and any errors encountered.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - pinger: The storage backend to check, nil when there is nothing to ping.
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	pinger Pinger,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if pinger != nil {
			if err := pinger.Ping(req.Context()); err != nil {
				status, body = http.StatusServiceUnavailable, "DB ping failed"
			}
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}
