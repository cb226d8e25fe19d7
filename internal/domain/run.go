package domain

import "time"

// BaseDemand is the demand level before period 1.
const BaseDemand = 1000.0

// SimulationRun is a completed run as kept by the collaborator for
// history and comparison. Read-only once built.
type SimulationRun struct {
	RunID         string           `json:"run_id"` // deterministic hash
	StudentName   string           `json:"student_name"`
	StudentNumber string           `json:"student_number"`
	Scenario      string           `json:"scenario"`
	CreatedAt     time.Time        `json:"created_at"`
	Decisions     []PeriodDecision `json:"decisions"`
	Periods       []*PeriodMetrics `json:"periods"`
}

// LastPeriod returns the final period's metrics, or nil for an empty run.
func (r *SimulationRun) LastPeriod() *PeriodMetrics {
	if len(r.Periods) == 0 {
		return nil
	}
	return r.Periods[len(r.Periods)-1]
}

// PeriodRecord is one period of a saved run, flattened for analytics storage.
type PeriodRecord struct {
	RunID     string
	Scenario  string
	CreatedAt time.Time
	Seq       int // position within the run, 0-based
	Metrics   PeriodMetrics
}

// Records flattens the run into per-period analytics rows.
func (r *SimulationRun) Records() []*PeriodRecord {
	out := make([]*PeriodRecord, len(r.Periods))
	for i, p := range r.Periods {
		out[i] = &PeriodRecord{
			RunID:     r.RunID,
			Scenario:  r.Scenario,
			CreatedAt: r.CreatedAt,
			Seq:       i,
			Metrics:   *p,
		}
	}
	return out
}
