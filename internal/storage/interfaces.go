package storage

import (
	"context"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
)

// RunStore provides access to saved simulation runs.
type RunStore interface {
	// Insert adds a completed run with its decisions and periods.
	// Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, run *domain.SimulationRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.SimulationRun, error)

	// GetByStudent retrieves all runs for a student number, ordered by created_at ASC.
	GetByStudent(ctx context.Context, studentNumber string) ([]*domain.SimulationRun, error)

	// GetAll retrieves all runs, ordered by created_at ASC.
	GetAll(ctx context.Context) ([]*domain.SimulationRun, error)
}

// PeriodMetricsStore provides access to per-period analytics rows.
type PeriodMetricsStore interface {
	// InsertBulk adds multiple rows. Fails entire batch on duplicate (run_id, seq).
	InsertBulk(ctx context.Context, records []*domain.PeriodRecord) error

	// GetByRunID retrieves all rows for a run, ordered by seq ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.PeriodRecord, error)

	// GetByScenario retrieves all rows for a scenario, ordered by created_at, run_id, seq.
	GetByScenario(ctx context.Context, scenario string) ([]*domain.PeriodRecord, error)
}
