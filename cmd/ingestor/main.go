// Command ingestor is the Frigate→Postgres ingestion daemon. It subscribes to
// the Frigate MQTT topic tree, normalizes every payload, and persists events,
// reviews, and availability pings into a multi-tenant schema, provisioning
// tenants and cameras on first sight.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/camwatch/frigate-ingestor/internal/bus"
	"github.com/camwatch/frigate-ingestor/internal/config"
	"github.com/camwatch/frigate-ingestor/internal/ingest"
	"github.com/camwatch/frigate-ingestor/internal/normalize"
	"github.com/camwatch/frigate-ingestor/internal/repository/db"
	"github.com/camwatch/frigate-ingestor/internal/resolver"
	"github.com/camwatch/frigate-ingestor/internal/telemetry"
)

const (
	serviceName   = "frigate-ingestor"
	drainDeadline = 30 * time.Second
	bootTimeout   = 30 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Error("invalid configuration", zap.Error(err))
		fallback.Sync()
		return 1
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry (optional) ---
	if cfg.OTLPEndpoint != "" {
		tp, err := telemetry.InitTracer(ctx, serviceName, cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("tracer init failed", zap.Error(err))
			return 1
		}
		defer tp.Shutdown(context.Background())

		mp, err := telemetry.InitMeterProvider(ctx, serviceName, cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("meter provider init failed", zap.Error(err))
			return 1
		}
		defer mp.Shutdown(context.Background())
	}
	metrics := telemetry.NewIngestMetrics()

	// --- Postgres ---
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL)
	if err != nil {
		logger.Error("invalid postgres url", zap.Error(err))
		return 1
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("postgres pool init failed", zap.Error(err))
		return 1
	}
	defer pool.Close()

	store := db.New(pool)
	probeCtx, cancel := context.WithTimeout(ctx, bootTimeout)
	err = store.Ping(probeCtx)
	cancel()
	if err != nil {
		logger.Error("postgres unreachable", zap.Error(err))
		return 1
	}
	logger.Info("postgres connected")

	// --- Pipeline wiring ---
	res := resolver.New(store, logger)
	handlers := ingest.NewHandlers(res, store, metrics, logger)

	b := bus.New(logger)
	b.Events.Subscribe(func(ctx context.Context, e *normalize.Event) { handlers.HandleEvent(ctx, e) })
	b.Reviews.Subscribe(func(ctx context.Context, r *normalize.Review) { handlers.HandleReview(ctx, r) })
	b.Availability.Subscribe(func(ctx context.Context, a *normalize.Available) { handlers.HandleAvailability(ctx, a) })

	dispatcher := ingest.NewDispatcher(0, 0, logger)
	dispatcher.Start(ctx)

	// --- MQTT (last: nothing arrives before the pipeline can absorb it) ---
	subscriber := ingest.NewSubscriber(cfg, b, dispatcher, metrics, logger)
	if err := subscriber.Start(ctx); err != nil {
		logger.Error("mqtt connect failed", zap.Error(err))
		return 1
	}
	logger.Info("ingestor running", zap.String("env", cfg.Env))

	// --- Wait for shutdown ---
	var fatal error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case fatal = <-dispatcher.Fatal():
		logger.Error("fatal pipeline error", zap.Error(fatal))
	}

	// Stop intake first, then drain what is already queued. A blown drain
	// deadline is a forced but still clean exit; only an uncaught error
	// makes the run a failure.
	subscriber.Stop()
	dispatcher.Drain(drainDeadline)

	if fatal != nil {
		return 1
	}
	logger.Info("shutdown complete")
	return 0
}

// newLogger builds the process logger: production encoding unless running in
// development, level taken from config.
func newLogger(cfg *config.Config) *zap.Logger {
	var zc zap.Config
	if cfg.Env == "development" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
