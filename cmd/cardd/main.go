package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bibbank/card-lifecycle/internal/application/usecase"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/internal/domain/service"
	"github.com/bibbank/card-lifecycle/internal/infrastructure/clock"
	"github.com/bibbank/card-lifecycle/internal/infrastructure/config"
	"github.com/bibbank/card-lifecycle/internal/infrastructure/kafka"
	"github.com/bibbank/card-lifecycle/internal/infrastructure/memory"
	"github.com/bibbank/card-lifecycle/internal/infrastructure/postgres"
	"github.com/bibbank/card-lifecycle/internal/infrastructure/scheduler"
	"github.com/bibbank/card-lifecycle/internal/infrastructure/telemetry"
	grpcpresentation "github.com/bibbank/card-lifecycle/internal/presentation/grpc"
	"github.com/bibbank/card-lifecycle/internal/presentation/rest"
	"github.com/bibbank/card-lifecycle/pkg/events"
	pkgkafka "github.com/bibbank/card-lifecycle/pkg/kafka"
	"github.com/bibbank/card-lifecycle/pkg/observability"
	pkgpostgres "github.com/bibbank/card-lifecycle/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.Telemetry.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting card lifecycle service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"store", cfg.StoreDriver,
	)

	// Tracing is optional; spans are dropped when no collector is configured.
	if cfg.Telemetry.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	metrics, err := telemetry.NewLifecycleMetrics(meterProvider.Meter("github.com/bibbank/card-lifecycle"))
	if err != nil {
		logger.Error("failed to create lifecycle metrics", "error", err)
		os.Exit(1)
	}

	cardRepo, outboxRepo, closeStore, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open card store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	producer := pkgkafka.NewProducer(pkgkafka.Config{
		ClientID:     cfg.Telemetry.ServiceName,
		Brokers:      cfg.Kafka.Brokers,
		WriteTimeout: cfg.Lifecycle.PublishTimeout,
	})
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Error("failed to close kafka producer", "error", err)
		}
	}()
	publisher := kafka.NewEventPublisher(producer, cfg.Kafka.Topic, logger)

	systemClock := clock.System{}
	engine := usecase.NewLifecycleEngine(
		cardRepo,
		publisher,
		service.NewRandomCardNumberGenerator(),
		systemClock,
		logger,
		usecase.WithOutbox(outboxRepo),
		usecase.WithMetrics(metrics),
		usecase.WithTimeouts(cfg.Lifecycle.StoreTimeout, cfg.Lifecycle.PublishTimeout),
		usecase.WithRetryLimits(cfg.Lifecycle.MaxConflictRetries, usecase.DefaultMaxNumberAttempts),
	)

	sweepUC := usecase.NewSweepExpiredCardsUseCase(cardRepo, engine, systemClock, metrics, logger, cfg.Jobs.SweepConcurrency)
	relayUC := usecase.NewRelayOutboxUseCase(outboxRepo, publisher, systemClock, metrics, logger, cfg.Jobs.OutboxBatchSize)

	jobs := scheduler.New(logger)
	if err := jobs.Add("expiry-sweep", cfg.Jobs.SweepSchedule, func(ctx context.Context) error {
		_, err := sweepUC.Execute(ctx)
		return err
	}); err != nil {
		logger.Error("failed to schedule expiry sweep", "error", err)
		os.Exit(1)
	}
	if err := jobs.Add("outbox-relay", cfg.Jobs.OutboxRelaySchedule, func(ctx context.Context) error {
		_, err := relayUC.Execute(ctx)
		return err
	}); err != nil {
		logger.Error("failed to schedule outbox relay", "error", err)
		os.Exit(1)
	}
	jobs.Start()

	// gRPC server.
	grpcHandler := grpcpresentation.NewCardServiceHandler(grpcpresentation.UseCases{
		RequestCard:  usecase.NewRequestCardUseCase(engine, cfg.Lifecycle.DefaultCreditLimit),
		IssueCard:    usecase.NewIssueCardUseCase(engine, cfg.Lifecycle.DefaultCreditLimit),
		ChangeStatus: usecase.NewChangeCardStatusUseCase(engine),
		GetCard:      usecase.NewGetCardUseCase(cardRepo),
		ListCards:    usecase.NewListCardsUseCase(cardRepo),
		DeleteCard:   usecase.NewDeleteCardUseCase(cardRepo, logger),
	}, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerOptions{
		TLSCertFile: cfg.GRPC.TLSCertFile,
		TLSKeyFile:  cfg.GRPC.TLSKeyFile,
		Reflection:  cfg.GRPC.Reflection,
	}, logger)
	if err != nil {
		logger.Error("failed to create gRPC server", "error", err)
		os.Exit(1)
	}

	// HTTP server (health checks and metrics).
	httpMux := http.NewServeMux()
	rest.NewHealthHandler(cardRepo, metricsHandler, logger).RegisterRoutes(httpMux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("card lifecycle service is running",
		"grpc_addr", cfg.GRPCAddr(),
		"http_addr", cfg.HTTPAddr(),
	)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := jobs.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown error", "error", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("card lifecycle service stopped")
}

// openStores returns the card and outbox stores for the configured driver.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.CardRepository, events.OutboxRepository, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory card store, data is lost on restart")
		return memory.NewCardRepository(), memory.NewOutboxRepository(), func() {}, nil
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("connected to database", "host", pgCfg.Host, "database", pgCfg.Database)

	if err := postgres.Migrate(pgCfg.DSN()); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return postgres.NewCardRepository(pool), postgres.NewOutboxRepository(pool), pool.Close, nil
}
