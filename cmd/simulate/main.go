package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/Sicakyuz/SCM-simulation/internal/config"
	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/events"
	"github.com/Sicakyuz/SCM-simulation/internal/logger"
	"github.com/Sicakyuz/SCM-simulation/internal/reporting"
	"github.com/Sicakyuz/SCM-simulation/internal/simulation"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
	"github.com/Sicakyuz/SCM-simulation/internal/storage/clickhouse"
	"github.com/Sicakyuz/SCM-simulation/internal/storage/memory"
	"github.com/Sicakyuz/SCM-simulation/internal/storage/migrations"
	pgstore "github.com/Sicakyuz/SCM-simulation/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Parse flags (config values as defaults)
	scenario := flag.String("scenario", domain.ScenarioStableMarket, "Scenario name")
	decisionsFile := flag.String("decisions", "", "JSON file with period decisions (default: -periods default decisions)")
	periods := flag.Int("periods", 4, "Number of default-decision periods when -decisions is not set")
	seed := flag.Uint64("seed", cfg.RandomSeed, "Random event seed (0 = clock seeded)")
	format := flag.String("format", "table", "Output format: table, csv, markdown, json")
	studentName := flag.String("student-name", "", "Student name")
	studentNumber := flag.String("student-number", "", "Student number")
	save := flag.Bool("save", false, "Save the run for comparison")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string (optional)")
	useMemory := flag.Bool("use-memory", cfg.UseMemory, "Use in-memory storage instead of PostgreSQL")
	flag.Parse()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	// Validate flags
	switch *format {
	case "table", "csv", "markdown", "json":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", *format)
		os.Exit(1)
	}
	if *save && !*useMemory && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required with --save (use --use-memory for in-memory storage)")
		os.Exit(1)
	}

	decisions, err := loadDecisions(*decisionsFile, *periods)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading decisions: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	opts := simulation.RunnerOptions{
		Events: events.NewGenerator(events.NewMathSource(*seed), log),
		Logger: log,
	}
	if *save {
		runStore, periodStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to databases: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		opts.RunStore = runStore
		opts.PeriodStore = periodStore
	}

	runner := simulation.NewRunner(opts)
	run, err := runner.Run(ctx, simulation.RunRequest{
		StudentName:   *studentName,
		StudentNumber: *studentNumber,
		Scenario:      *scenario,
		Decisions:     decisions,
		Save:          *save,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running simulation: %v\n", err)
		os.Exit(1)
	}

	if err := render(ctx, os.Stdout, *format, run); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering output: %v\n", err)
		os.Exit(1)
	}

	if *format == "csv" {
		fmt.Fprintf(os.Stderr, "Suggested file name: %s\n", reporting.ExportFileName(*studentName, *studentNumber))
	}
	if *save {
		fmt.Fprintf(os.Stderr, "Saved run %s\n", run.RunID)
	}
}

// loadDecisions reads a JSON array of decisions, or builds n default ones.
func loadDecisions(path string, n int) ([]domain.PeriodDecision, error) {
	if path == "" {
		if n < 1 {
			return nil, errors.New("--periods must be at least 1")
		}
		return domain.DefaultDecisions(n), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var decisions []domain.PeriodDecision
	if err := json.Unmarshal(data, &decisions); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return decisions, nil
}

func render(ctx context.Context, w io.Writer, format string, run *domain.SimulationRun) error {
	switch format {
	case "csv":
		return reporting.RenderCSV(w, run.Periods)
	case "markdown":
		report, err := reporting.NewGenerator(nil, nil).GenerateFromRun(ctx, run)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, reporting.RenderMarkdown(report))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	default:
		return reporting.RenderTable(w, run.Periods)
	}
}

// createStores opens the stores a saved run is written to.
// The ClickHouse period store is optional.
func createStores(
	ctx context.Context,
	postgresDSN, clickhouseDSN string,
	useMemory bool,
	log zerolog.Logger,
) (storage.RunStore, storage.PeriodMetricsStore, func(), error) {
	if useMemory {
		log.Info().Msg("using in-memory storage")
		return memory.NewRunStore(), memory.NewPeriodMetricsStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	if clickhouseDSN == "" {
		return pgstore.NewRunStore(pool), nil, pool.Close, nil
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN, log)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("clickhouse: %w", err)
	}

	cleanup := func() {
		pool.Close()
		conn.Close()
	}
	return pgstore.NewRunStore(pool), clickhouse.NewPeriodMetricsStore(conn), cleanup, nil
}
