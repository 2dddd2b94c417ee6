package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/meridian/internal/search"
	"github.com/spf13/cobra"
)

var errGeocodingDisabled = errors.New("geocoding is disabled, set MERIDIAN_USE_GEOCODING=true")

func newGeocodeCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Load all matching customers once and resolve the missing coordinates",
		Long: "Loads every page of the customer list matching --query, queues customers without " +
			"coordinates and exits after the queue has drained and results are stored.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := loadEnvironment()

			app, err := buildComponents(cfg, logger)
			if err != nil {
				logger.Error("Failed to start", "error", err)
				return err
			}
			defer app.close()

			if app.queue == nil {
				return errGeocodingDisabled
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			runCtx, cancelRun := context.WithCancel(ctx)
			done := make(chan struct{})
			go func() {
				defer close(done)
				app.queue.Run(runCtx)
			}()
			defer func() {
				cancelRun()
				<-done
			}()

			result, err := app.customers.LoadMap(ctx, search.Parse(query))
			if err != nil {
				return err
			}
			logger.InfoContext(ctx, "Backfill started", "total", result.Total, "queued", result.Queued)

			if err = app.queue.Wait(ctx); err != nil {
				logger.WarnContext(ctx, "Backfill interrupted", "remaining", app.queue.Len())
				return nil
			}
			logger.InfoContext(ctx, "Backfill finished", "processed", app.queue.Processed())

			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "search state as URL query, e.g. gebiet=3&farbcode=yellow")

	return cmd
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
