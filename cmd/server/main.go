// Package main runs the simulation HTTP service:
// - REST API for running, saving, and comparing simulations
// - WebSocket stream of per-period results
// - Replay verification of saved runs
// - Prometheus metrics at /metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Sicakyuz/SCM-simulation/internal/config"
	"github.com/Sicakyuz/SCM-simulation/internal/events"
	"github.com/Sicakyuz/SCM-simulation/internal/logger"
	"github.com/Sicakyuz/SCM-simulation/internal/observability"
	"github.com/Sicakyuz/SCM-simulation/internal/reporting"
	"github.com/Sicakyuz/SCM-simulation/internal/server"
	"github.com/Sicakyuz/SCM-simulation/internal/simulation"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
	"github.com/Sicakyuz/SCM-simulation/internal/storage/clickhouse"
	"github.com/Sicakyuz/SCM-simulation/internal/storage/memory"
	"github.com/Sicakyuz/SCM-simulation/internal/storage/migrations"
	pgstore "github.com/Sicakyuz/SCM-simulation/internal/storage/postgres"
	"github.com/Sicakyuz/SCM-simulation/internal/verification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("Shutdown complete")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runStore, periodStore, cleanup, err := createStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	m := observability.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	var src events.RandomSource = events.CryptoSource{}
	if cfg.RandomSeed != 0 {
		src = events.NewMathSource(cfg.RandomSeed)
	}

	runner := simulation.NewRunner(simulation.RunnerOptions{
		Events:      events.NewGenerator(src, log),
		RunStore:    runStore,
		PeriodStore: periodStore,
		Metrics:     m,
		Logger:      log,
	})

	srv := server.New(server.Config{
		Addr:           cfg.HTTPAddr,
		Log:            log,
		Runner:         runner,
		Reports:        reporting.NewGenerator(runStore, periodStore),
		Verifier:       verification.NewReplayVerifier(runStore),
		Metrics:        m,
		MetricsHandler: observability.Handler(),
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// createStores creates memory or database stores based on config.
// ClickHouse is optional in database mode.
func createStores(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
) (storage.RunStore, storage.PeriodMetricsStore, func(), error) {
	if cfg.UseMemory {
		log.Info().Msg("Using in-memory storage")
		return memory.NewRunStore(), memory.NewPeriodMetricsStore(), func() {}, nil
	}

	pool, err := pgstore.NewPoolWithOptions(ctx, cfg.PostgresDSN, pgstore.PoolOptions{MaxConns: cfg.PostgresMaxConns})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	if cfg.ClickhouseDSN == "" {
		log.Warn().Msg("CLICKHOUSE_DSN not set, per-period analytics rows are not stored")
		return pgstore.NewRunStore(pool), nil, pool.Close, nil
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN, log)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("clickhouse: %w", err)
	}
	log.Info().Msg("Connected to ClickHouse")

	cleanup := func() {
		if err := conn.Close(); err != nil {
			log.Warn().Err(err).Msg("close clickhouse")
		}
		pool.Close()
	}
	return pgstore.NewRunStore(pool), clickhouse.NewPeriodMetricsStore(conn), cleanup, nil
}
