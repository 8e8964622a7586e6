package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/services"
	"github.com/Duffman2k/duffvouchbot/internal/storage"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/Duffman2k/duffvouchbot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(snapshotPath string) *structures.Config {
	return &structures.Config{
		Promotion: structures.PromotionConfig{Threshold: 10, Window: 36 * time.Hour},
		Sweep:     structures.SweepConfig{InitialDelay: 20 * time.Millisecond, Interval: time.Hour},
		Storage: structures.StorageConfig{
			Driver:           "memory",
			SnapshotPath:     snapshotPath,
			SnapshotInterval: time.Hour,
		},
	}
}

func newTestScheduler(t *testing.T, conf *structures.Config) (*Scheduler, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()
	evaluator := services.NewPromotionEvaluator(conf, store, &testutil.MockGranter{}, logger, metrics)
	ledger := services.NewLedgerService(conf, store, evaluator, logger, metrics)
	snap := storage.NewSnapshotter(conf, store, &testutil.MockCompressor{}, logger)
	return NewScheduler(conf, logger, ledger, snap).(*Scheduler), store
}

func staleRecord(id string) *models.ActivityRecord {
	return &models.ActivityRecord{
		UserID:             id,
		ApprovalTimestamps: []time.Time{time.Now().Add(-48 * time.Hour)},
		TotalApprovalsEver: 1,
	}
}

func TestDelayedSchedule(t *testing.T) {
	s := newDelayedSchedule(10*time.Second, time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(10*time.Second), s.Next(now))
	assert.Equal(t, now.Add(time.Hour), s.Next(now))
	assert.Equal(t, now.Add(2*time.Hour), s.Next(now.Add(time.Hour)))
}

func TestScheduler_SweepNow(t *testing.T) {
	s, store := newTestScheduler(t, testConfig(""))
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, staleRecord("u1")))

	require.NoError(t, s.SweepNow(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestScheduler_InitRunsDelayedSweep(t *testing.T) {
	s, store := newTestScheduler(t, testConfig(""))
	require.NoError(t, store.Set(context.Background(), staleRecord("u1")))

	s.Init()
	defer s.Stop()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestScheduler_PersistAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.dat")
	ctx := context.Background()

	s, store := newTestScheduler(t, testConfig(path))
	rec := &models.ActivityRecord{UserID: "u1", DisplayName: "Alice", ApprovalTimestamps: []time.Time{time.Now().UTC()}, TotalApprovalsEver: 4}
	require.NoError(t, store.Set(ctx, rec))
	require.NoError(t, s.Persist())

	restored, restoredStore := newTestScheduler(t, testConfig(path))
	require.NoError(t, restored.Restore())

	got, err := restoredStore.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalApprovalsEver)
	assert.Equal(t, "Alice", got.DisplayName)
}

func TestScheduler_NoSnapshotPathIsNoop(t *testing.T) {
	s, _ := newTestScheduler(t, testConfig(""))
	assert.NoError(t, s.Persist())
	assert.NoError(t, s.Restore())
}

func TestScheduler_SweepNowReportsCancellation(t *testing.T) {
	s, store := newTestScheduler(t, testConfig(""))
	require.NoError(t, store.Set(context.Background(), staleRecord("u1")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.SweepNow(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, store.Len())
}
