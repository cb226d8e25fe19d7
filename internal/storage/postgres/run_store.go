package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
// A run is stored as one simulation_runs row plus one simulation_periods
// row per period, written in a single transaction.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `run_id, student_name, student_number, scenario, created_at`

const periodColumns = `
	production_capacity_change, inventory_level, transportation_mode,
	number_of_suppliers, pricing_discount,
	period, demand, responsiveness, efficiency, cost, lead_time,
	environmental_impact, customer_satisfaction, sales_revenue, profit_margin,
	score, raw_score, disrupted,
	event_occurred, event_name, event_description, event_effects`

// Insert adds a completed run. Returns ErrDuplicateKey if run_id exists.
// Decisions and periods are paired by position and must have equal length.
func (s *RunStore) Insert(ctx context.Context, run *domain.SimulationRun) error {
	if run == nil || run.RunID == "" || len(run.Decisions) != len(run.Periods) {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO simulation_runs (`+runColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		run.RunID, run.StudentName, run.StudentNumber, run.Scenario, run.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert simulation run: %w", err)
	}

	query := `
		INSERT INTO simulation_periods (run_id, seq, ` + periodColumns + `) VALUES (
			$1, $2,
			$3, $4, $5,
			$6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20,
			$21, $22, $23, $24
		)
	`

	for i, m := range run.Periods {
		d := run.Decisions[i]
		effects := m.Event.Effects
		if effects == nil {
			effects = domain.NoEvent().Effects
		}
		_, err := tx.Exec(ctx, query,
			run.RunID, i,
			d.ProductionCapacityChange, d.InventoryLevel, string(d.TransportationMode),
			d.NumberOfSuppliers, d.PricingDiscount,
			m.Period, m.Demand, m.Responsiveness, m.Efficiency, m.Cost, m.LeadTime,
			m.EnvironmentalImpact, m.CustomerSatisfaction, m.SalesRevenue, m.ProfitMargin,
			m.Score, m.RawScore, m.Disrupted,
			m.Event.Occurred, m.Event.Name, m.Event.Description, effects,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert simulation period: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.SimulationRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM simulation_runs WHERE run_id = $1`, runID)

	run, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get simulation run: %w", err)
	}

	if err := s.loadPeriods(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// GetByStudent retrieves all runs for a student number, ordered by created_at ASC.
func (s *RunStore) GetByStudent(ctx context.Context, studentNumber string) ([]*domain.SimulationRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM simulation_runs
		WHERE student_number = $1
		ORDER BY created_at ASC, run_id ASC
	`
	return s.queryRuns(ctx, query, studentNumber)
}

// GetAll retrieves all runs, ordered by created_at ASC.
func (s *RunStore) GetAll(ctx context.Context) ([]*domain.SimulationRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM simulation_runs
		ORDER BY created_at ASC, run_id ASC
	`
	return s.queryRuns(ctx, query)
}

func (s *RunStore) queryRuns(ctx context.Context, query string, args ...any) ([]*domain.SimulationRun, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query simulation runs: %w", err)
	}

	var result []*domain.SimulationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan simulation run: %w", err)
		}
		result = append(result, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulation runs: %w", err)
	}

	// Periods are loaded after the header cursor is closed; a pooled
	// connection cannot interleave two result sets.
	for _, run := range result {
		if err := s.loadPeriods(ctx, run); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// loadPeriods fills run.Decisions and run.Periods ordered by seq.
func (s *RunStore) loadPeriods(ctx context.Context, run *domain.SimulationRun) error {
	rows, err := s.pool.Query(ctx,
		`SELECT `+periodColumns+` FROM simulation_periods WHERE run_id = $1 ORDER BY seq ASC`,
		run.RunID)
	if err != nil {
		return fmt.Errorf("query simulation periods: %w", err)
	}
	defer rows.Close()

	run.Decisions = []domain.PeriodDecision{}
	run.Periods = []*domain.PeriodMetrics{}
	for rows.Next() {
		var (
			d    domain.PeriodDecision
			m    domain.PeriodMetrics
			mode string
		)
		err := rows.Scan(
			&d.ProductionCapacityChange, &d.InventoryLevel, &mode,
			&d.NumberOfSuppliers, &d.PricingDiscount,
			&m.Period, &m.Demand, &m.Responsiveness, &m.Efficiency, &m.Cost, &m.LeadTime,
			&m.EnvironmentalImpact, &m.CustomerSatisfaction, &m.SalesRevenue, &m.ProfitMargin,
			&m.Score, &m.RawScore, &m.Disrupted,
			&m.Event.Occurred, &m.Event.Name, &m.Event.Description, &m.Event.Effects,
		)
		if err != nil {
			return fmt.Errorf("scan simulation period: %w", err)
		}
		d.Period = m.Period
		d.TransportationMode = domain.TransportMode(mode)
		run.Decisions = append(run.Decisions, d)
		run.Periods = append(run.Periods, &m)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate simulation periods: %w", err)
	}
	return nil
}

// scanRun scans a run header from a row.
func scanRun(row pgx.Row) (*domain.SimulationRun, error) {
	var run domain.SimulationRun
	err := row.Scan(&run.RunID, &run.StudentName, &run.StudentNumber, &run.Scenario, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.CreatedAt = run.CreatedAt.UTC()
	return &run, nil
}
