package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/config"
	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/queue"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/UnknownOlympus/meridian/internal/wordpress"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// components is the wired application shared by all commands.
type components struct {
	registry  *prometheus.Registry
	store     repository.Interface
	pinger    Pinger
	queue     *queue.Queue
	customers *service.CustomerService
	close     func()
}

func buildComponents(cfg *config.Config, logger *slog.Logger) (*components, error) {
	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	app := &components{registry: reg, close: func() {}}

	switch cfg.Backend {
	case config.BackendWordPress:
		app.store = wordpress.NewClient(cfg.WordPress.AjaxURL, cfg.WordPress.Nonce, logger)
	default:
		dtb, err := repository.NewDatabase(
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		app.store = repository.NewRepository(dtb, logger)
		app.pinger = dtb
		app.close = closePool(dtb)
	}

	var enqueuer service.Enqueuer
	if cfg.UseGeocoding {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
			Type:     geocoding.ProviderType(cfg.Provider.Type),
			APIKeys:  cfg.Provider.Keys,
			KeyStart: cfg.Provider.KeyStart,
			Region:   cfg.Provider.Region,
			Logger:   logger,
		})
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to create geocoding provider: %w", err)
		}
		logger.Info("Geocoding provider initialized", "type", cfg.Provider.Type, "keys", len(cfg.Provider.Keys))

		app.queue = queue.New(logger, provider, cfg.Provider.Type, app.store, clockwork.NewRealClock(), appMetrics,
			queue.Config{
				Delay:         cfg.Queue.Delay,
				LookupTimeout: cfg.Queue.LookupTimeout,
				FlushEvery:    cfg.Queue.FlushEvery,
			})
		enqueuer = app.queue
	}

	app.customers = service.NewCustomerService(logger, app.store, enqueuer, cfg.UseGeocoding, appMetrics)

	return app, nil
}

func closePool(pool *pgxpool.Pool) func() {
	return func() { pool.Close() }
}
