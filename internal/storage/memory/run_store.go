package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SimulationRun // keyed by run_id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.SimulationRun),
	}
}

// Insert adds a completed run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, run *domain.SimulationRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[run.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[run.RunID] = copyRun(run)
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.SimulationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRun(run), nil
}

// GetByStudent retrieves all runs for a student number, ordered by created_at ASC.
func (s *RunStore) GetByStudent(_ context.Context, studentNumber string) ([]*domain.SimulationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SimulationRun
	for _, run := range s.data {
		if run.StudentNumber == studentNumber {
			result = append(result, copyRun(run))
		}
	}
	sortRuns(result)
	return result, nil
}

// GetAll retrieves all runs, ordered by created_at ASC.
func (s *RunStore) GetAll(_ context.Context) ([]*domain.SimulationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SimulationRun, 0, len(s.data))
	for _, run := range s.data {
		result = append(result, copyRun(run))
	}
	sortRuns(result)
	return result, nil
}

// sortRuns orders runs by created_at ASC, run_id ASC.
func sortRuns(runs []*domain.SimulationRun) {
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.Before(runs[j].CreatedAt)
		}
		return runs[i].RunID < runs[j].RunID
	})
}

// copyRun deep-copies a run so callers cannot mutate stored state.
func copyRun(run *domain.SimulationRun) *domain.SimulationRun {
	c := *run
	c.Decisions = append([]domain.PeriodDecision(nil), run.Decisions...)
	c.Periods = make([]*domain.PeriodMetrics, len(run.Periods))
	for i, p := range run.Periods {
		pc := *p
		pc.Event = copyEvent(p.Event)
		c.Periods[i] = &pc
	}
	return &c
}

func copyEvent(ev domain.RandomEvent) domain.RandomEvent {
	if ev.Effects == nil {
		return ev
	}
	effects := make(map[domain.MetricName]float64, len(ev.Effects))
	for k, v := range ev.Effects {
		effects[k] = v
	}
	ev.Effects = effects
	return ev
}

var _ storage.RunStore = (*RunStore)(nil)
