package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
)

func TestPeriodMetricsStore_InsertBulkAndGetByRunID(t *testing.T) {
	ctx := context.Background()
	store := NewPeriodMetricsStore()
	run := newTestRun("run-1", "S1", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	records := run.Records()
	// Insert out of order; reads come back by seq
	require.NoError(t, store.InsertBulk(ctx, []*domain.PeriodRecord{records[1], records[0]}))

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Seq)
	assert.Equal(t, 1, got[1].Seq)
	assert.Equal(t, 4.5, got[1].Metrics.Score)
	assert.Equal(t, domain.EventTransportationStrike, got[1].Metrics.Event.Name)
}

func TestPeriodMetricsStore_EmptyBatch(t *testing.T) {
	assert.NoError(t, NewPeriodMetricsStore().InsertBulk(context.Background(), nil))
}

func TestPeriodMetricsStore_DuplicateRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	store := NewPeriodMetricsStore()
	run := newTestRun("run-1", "S1", time.Now())
	records := run.Records()

	require.NoError(t, store.InsertBulk(ctx, records[:1]))

	err := store.InsertBulk(ctx, records)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Second record must not have been written
	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPeriodMetricsStore_IntraBatchDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewPeriodMetricsStore()
	records := newTestRun("run-1", "S1", time.Now()).Records()

	err := store.InsertBulk(ctx, []*domain.PeriodRecord{records[0], records[0]})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPeriodMetricsStore_InvalidInput(t *testing.T) {
	err := NewPeriodMetricsStore().InsertBulk(context.Background(), []*domain.PeriodRecord{nil})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestPeriodMetricsStore_GetByScenario(t *testing.T) {
	ctx := context.Background()
	store := NewPeriodMetricsStore()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	late := newTestRun("late", "S1", base.Add(time.Hour))
	early := newTestRun("early", "S2", base)
	other := newTestRun("other", "S3", base)
	other.Scenario = domain.ScenarioPriceCompetition

	require.NoError(t, store.InsertBulk(ctx, late.Records()))
	require.NoError(t, store.InsertBulk(ctx, early.Records()))
	require.NoError(t, store.InsertBulk(ctx, other.Records()))

	got, err := store.GetByScenario(ctx, domain.ScenarioStableMarket)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "early", got[0].RunID)
	assert.Equal(t, "early", got[1].RunID)
	assert.Equal(t, "late", got[2].RunID)
	assert.Equal(t, 1, got[3].Seq)
}
