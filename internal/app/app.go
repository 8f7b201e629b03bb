// Package app assembles the service: it selects the backing store, builds
// the order service and kitchen worker, and runs everything until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/contoso/burger-api/internal/config"
	httpserver "github.com/contoso/burger-api/internal/http"
	"github.com/contoso/burger-api/internal/metrics"
	orderservice "github.com/contoso/burger-api/internal/service/order"
	"github.com/contoso/burger-api/internal/storage"
	"github.com/contoso/burger-api/internal/storage/memory"
	"github.com/contoso/burger-api/internal/storage/pg"
	"github.com/contoso/burger-api/internal/worker"
	"github.com/contoso/burger-api/pkg/kafka"
	"github.com/contoso/burger-api/pkg/outbox"
)

type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    storage.Store
	pgStore  *pg.Storage
	service  *orderservice.Service
	kitchen  *worker.Kitchen
	server   *httpserver.Server
	producer *kafka.Producer
	relay    *outbox.Relay
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}

	ctx := context.Background()

	logger := newLogger(cfg.App.LogLevel, cfg.App.Name)
	slog.SetDefault(logger)
	logger.Info("initialising", slog.String("service", cfg.App.Name))

	store, pgStore := selectStore(ctx, logger, cfg)

	m := metrics.New(prometheus.DefaultRegisterer)

	service := orderservice.NewService(logger, store, m, orderservice.Limits{
		MaxActiveOrders:    cfg.Orders.MaxActivePerUser,
		MaxBurgersPerOrder: cfg.Orders.MaxBurgers,
		RegistrationURL:    cfg.Orders.RegistrationURL,
	})

	kitchen := worker.NewKitchen(logger, store, m, worker.Config{
		Interval: cfg.Worker.Interval,
	})

	server := httpserver.NewServer(logger, httpserver.ServerConfig{
		Port:            cfg.HTTP.Port,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, service, store)

	a := &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		pgStore: pgStore,
		service: service,
		kitchen: kitchen,
		server:  server,
	}

	// Lifecycle events need both the durable store and a broker; without
	// either the API runs fine, it just emits nothing.
	if pgStore != nil && cfg.Kafka.Brokers != "" {
		producer, err := kafka.NewProducer(&kafka.ProducerConfig{
			Brokers:     cfg.Kafka.Brokers,
			Acks:        cfg.Kafka.Acks,
			LingerMs:    cfg.Kafka.LingerMs,
			Compression: cfg.Kafka.Compression,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		a.producer = producer
		a.relay = outbox.NewRelay(pgStore, producer, logger, cfg.Outbox.BatchSize, cfg.Outbox.PollInterval)
	}

	return a, nil
}

// selectStore tries Postgres once and falls back to the in-memory store.
// The fallback is a capability substitution, not an error: the rest of the
// app cannot tell which backing it got.
func selectStore(ctx context.Context, logger *slog.Logger, cfg *config.Config) (storage.Store, *pg.Storage) {
	if cfg.Postgres.DSN != "" {
		pgStore, err := pg.NewPGStorage(ctx, logger, &pg.StorageConfig{
			DSN:             cfg.Postgres.DSN,
			MaxConns:        cfg.Postgres.MaxConns,
			MinConns:        cfg.Postgres.MinConns,
			MaxConnLife:     cfg.Postgres.MaxConnLifetime,
			MaxConnIdleTime: cfg.Postgres.MaxConnIdleTime,
			ConnectTimeout:  cfg.Postgres.ConnectTimeout,
		})
		if err == nil {
			logger.Info("postgres connected")
			return pgStore, pgStore
		}
		logger.Warn("postgres unavailable, falling back to in-memory store", slog.Any("error", err))
	} else {
		logger.Info("no postgres DSN configured, using in-memory store")
	}

	memStore, err := memory.NewStorage(logger)
	if err != nil {
		// Embedded catalog data failed to parse; nothing can run.
		panic(fmt.Sprintf("in-memory store: %v", err))
	}
	return memStore, nil
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.server.Run(ctx) })
	g.Go(func() error { return a.kitchen.Run(ctx) })
	g.Go(func() error { return a.runMetrics(ctx) })
	if a.relay != nil {
		g.Go(func() error { return a.relay.Run(ctx) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) runMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Telemetry.MetricsPort),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("metrics listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		return srv.Close()
	}
}

func (a *App) close() {
	if a.producer != nil {
		a.producer.Close()
	}
	a.store.Close()
}

func newLogger(level, service string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "info":
		lvl = slog.LevelInfo
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})).
		With(slog.String("service", service))
}
