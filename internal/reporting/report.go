package reporting

import (
	"time"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/metrics"
	"github.com/Sicakyuz/SCM-simulation/internal/scoring"
)

// Report is the full view of one simulation run.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	Run     *domain.SimulationRun
	Summary *metrics.RunSummary

	// Radar axes of the final period; empty for a run without periods
	Profile []scoring.Axis

	// Cross-run scores for the same scenario; nil when unavailable
	Benchmark []metrics.PeriodBenchmark
}

// ComparisonReport lists saved runs side by side.
type ComparisonReport struct {
	GeneratedAt   time.Time
	StudentNumber string // empty for all students
	Rows          []metrics.ComparisonRow
}
