package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/storage"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/Duffman2k/duffvouchbot/internal/testutil"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testConfig() *structures.Config {
	return &structures.Config{
		Moderators: []string{"mod-1", " mod-2 "},
		Promotion: structures.PromotionConfig{
			RoleID:    "role-1",
			Threshold: 10,
			Window:    36 * time.Hour,
		},
		Broadcast: structures.BroadcastConfig{Glyph: "⭐"},
	}
}

type harness struct {
	conf        *structures.Config
	clock       *fakeClock
	store       storage.RecordStore
	queue       *models.PendingQueue
	logger      *testutil.MockLogger
	metrics     *testutil.MockMetrics
	granter     *testutil.MockGranter
	broadcaster *testutil.MockBroadcaster
	notifier    *testutil.MockNotifier
	watermarker *testutil.MockWatermarker
	evaluator   *PromotionEvaluator
	ledger      *LedgerService
	approvals   *ApprovalService
	submissions *SubmissionService
}

func newHarness(t *testing.T, tweak func(*structures.Config)) *harness {
	t.Helper()
	return newHarnessWithStore(t, storage.NewMemoryStore(), tweak)
}

func newHarnessWithStore(t *testing.T, store storage.RecordStore, tweak func(*structures.Config)) *harness {
	t.Helper()
	conf := testConfig()
	if tweak != nil {
		tweak(conf)
	}

	h := &harness{
		conf:        conf,
		clock:       &fakeClock{t: epoch},
		store:       store,
		queue:       models.NewPendingQueue(),
		logger:      &testutil.MockLogger{},
		metrics:     testutil.NewMockMetrics(),
		granter:     &testutil.MockGranter{},
		broadcaster: &testutil.MockBroadcaster{},
		notifier:    &testutil.MockNotifier{},
		watermarker: &testutil.MockWatermarker{Output: []byte("jpeg-bytes")},
	}
	h.evaluator = NewPromotionEvaluator(conf, store, h.granter, h.logger, h.metrics)
	h.ledger = NewLedgerService(conf, store, h.evaluator, h.logger, h.metrics)
	h.ledger.now = h.clock.Now
	h.approvals = NewApprovalService(conf, h.queue, h.broadcaster, h.notifier, h.ledger, h.logger, h.metrics)
	h.approvals.now = h.clock.Now
	h.submissions = NewSubmissionService(conf, h.watermarker, h.approvals, h.logger, h.metrics)
	h.submissions.now = h.clock.Now
	return h
}

// submit drives one user through the whole conversation.
func (h *harness) submit(t *testing.T, userID, name, product string) {
	t.Helper()
	ctx := context.Background()
	for _, ev := range []models.ConversationEvent{
		{Kind: models.EventStart, UserID: userID, DisplayName: name},
		{Kind: models.EventText, UserID: userID, Text: product},
		{Kind: models.EventImage, UserID: userID, ImageURL: "https://cdn.example/" + userID + ".png"},
	} {
		if _, err := h.submissions.Handle(ctx, ev); err != nil {
			t.Fatalf("event %s for %s: %v", ev.Kind, userID, err)
		}
	}
}

// failingStore fails every read-modify-write with err.
type failingStore struct {
	storage.RecordStore
	err error
}

func (f *failingStore) Mutate(context.Context, string, storage.MutateFunc) (*models.ActivityRecord, error) {
	return nil, f.err
}

func (f *failingStore) Get(context.Context, string) (*models.ActivityRecord, error) {
	return nil, f.err
}
