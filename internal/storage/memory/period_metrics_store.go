package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
)

// periodKey is the unique key for period rows.
type periodKey struct {
	runID string
	seq   int
}

// PeriodMetricsStore is an in-memory implementation of storage.PeriodMetricsStore.
type PeriodMetricsStore struct {
	mu   sync.RWMutex
	data map[periodKey]*domain.PeriodRecord
}

// NewPeriodMetricsStore creates a new in-memory period metrics store.
func NewPeriodMetricsStore() *PeriodMetricsStore {
	return &PeriodMetricsStore{
		data: make(map[periodKey]*domain.PeriodRecord),
	}
}

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *PeriodMetricsStore) InsertBulk(_ context.Context, records []*domain.PeriodRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[periodKey]struct{}, len(records))

	// First pass: check for duplicates (existing + intra-batch)
	for _, r := range records {
		if r == nil || r.RunID == "" {
			return storage.ErrInvalidInput
		}
		key := periodKey{runID: r.RunID, seq: r.Seq}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range records {
		c := *r
		c.Metrics.Event = copyEvent(r.Metrics.Event)
		s.data[periodKey{runID: r.RunID, seq: r.Seq}] = &c
	}

	return nil
}

// GetByRunID retrieves all rows for a run, ordered by seq ASC.
func (s *PeriodMetricsStore) GetByRunID(_ context.Context, runID string) ([]*domain.PeriodRecord, error) {
	return s.filter(func(r *domain.PeriodRecord) bool { return r.RunID == runID }), nil
}

// GetByScenario retrieves all rows for a scenario, ordered by created_at, run_id, seq.
func (s *PeriodMetricsStore) GetByScenario(_ context.Context, scenario string) ([]*domain.PeriodRecord, error) {
	return s.filter(func(r *domain.PeriodRecord) bool { return r.Scenario == scenario }), nil
}

func (s *PeriodMetricsStore) filter(keep func(*domain.PeriodRecord) bool) []*domain.PeriodRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PeriodRecord
	for _, r := range s.data {
		if keep(r) {
			c := *r
			c.Metrics.Event = copyEvent(r.Metrics.Event)
			result = append(result, &c)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.RunID != b.RunID {
			return a.RunID < b.RunID
		}
		return a.Seq < b.Seq
	})
	return result
}

var _ storage.PeriodMetricsStore = (*PeriodMetricsStore)(nil)
