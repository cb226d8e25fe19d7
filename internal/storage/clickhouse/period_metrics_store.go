package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
)

// PeriodMetricsStore implements storage.PeriodMetricsStore using ClickHouse.
// Event effects are not stored; analytics only needs the event name.
type PeriodMetricsStore struct {
	conn *Conn
}

// NewPeriodMetricsStore creates a new PeriodMetricsStore.
func NewPeriodMetricsStore(conn *Conn) *PeriodMetricsStore {
	return &PeriodMetricsStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PeriodMetricsStore = (*PeriodMetricsStore)(nil)

const periodMetricsColumns = `
	run_id, scenario, created_at, seq, period,
	demand, responsiveness, efficiency, cost, lead_time,
	environmental_impact, customer_satisfaction, sales_revenue, profit_margin,
	score, raw_score, disrupted, event_name, event_description`

// InsertBulk adds multiple rows. Fails entire batch on duplicate (run_id, seq).
func (s *PeriodMetricsStore) InsertBulk(ctx context.Context, records []*domain.PeriodRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		runID string
		seq   int
	}
	seen := make(map[key]struct{})
	for _, r := range records {
		if r == nil || r.RunID == "" || r.Seq < 0 {
			return storage.ErrInvalidInput
		}
		k := key{r.RunID, r.Seq}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// MergeTree does not enforce uniqueness, so check existing rows explicitly
	for _, r := range records {
		exists, err := s.exists(ctx, r.RunID, r.Seq)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO period_metrics (`+periodMetricsColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		m := r.Metrics
		err = batch.Append(
			r.RunID, r.Scenario, r.CreatedAt.UTC(), uint32(r.Seq), int32(m.Period),
			m.Demand, m.Responsiveness, m.Efficiency, m.Cost, m.LeadTime,
			m.EnvironmentalImpact, m.CustomerSatisfaction, m.SalesRevenue, m.ProfitMargin,
			m.Score, m.RawScore, m.Disrupted, m.Event.Name, m.Event.Description,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves all rows for a run, ordered by seq ASC.
func (s *PeriodMetricsStore) GetByRunID(ctx context.Context, runID string) ([]*domain.PeriodRecord, error) {
	query := `
		SELECT ` + periodMetricsColumns + `
		FROM period_metrics
		WHERE run_id = ?
		ORDER BY seq ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	return scanPeriodRecords(rows)
}

// GetByScenario retrieves all rows for a scenario, ordered by created_at, run_id, seq.
func (s *PeriodMetricsStore) GetByScenario(ctx context.Context, scenario string) ([]*domain.PeriodRecord, error) {
	query := `
		SELECT ` + periodMetricsColumns + `
		FROM period_metrics
		WHERE scenario = ?
		ORDER BY created_at ASC, run_id ASC, seq ASC
	`

	rows, err := s.conn.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("query by scenario: %w", err)
	}
	defer rows.Close()

	return scanPeriodRecords(rows)
}

// exists checks if a row with the given key exists.
func (s *PeriodMetricsStore) exists(ctx context.Context, runID string, seq int) (bool, error) {
	query := `
		SELECT count(*) FROM period_metrics
		WHERE run_id = ? AND seq = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, runID, uint32(seq)).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows abstracts driver.Rows for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanPeriodRecords scans multiple rows into a slice.
func scanPeriodRecords(rows chRows) ([]*domain.PeriodRecord, error) {
	var records []*domain.PeriodRecord

	for rows.Next() {
		var (
			r         domain.PeriodRecord
			createdAt time.Time
			seq       uint32
			period    int32
		)
		m := &r.Metrics
		err := rows.Scan(
			&r.RunID, &r.Scenario, &createdAt, &seq, &period,
			&m.Demand, &m.Responsiveness, &m.Efficiency, &m.Cost, &m.LeadTime,
			&m.EnvironmentalImpact, &m.CustomerSatisfaction, &m.SalesRevenue, &m.ProfitMargin,
			&m.Score, &m.RawScore, &m.Disrupted, &m.Event.Name, &m.Event.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.CreatedAt = createdAt.UTC()
		r.Seq = int(seq)
		m.Period = int(period)
		m.Event.Occurred = m.Event.Name != ""
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}
