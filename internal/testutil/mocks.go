package testutil

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCacheNever drops every write.
type MockCacheNever struct{}

func (m *MockCacheNever) Get(_ string) ([]byte, bool) { return nil, false }
func (m *MockCacheNever) Set(_ string, _ []byte)      {}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts domain events.
type MockMetrics struct {
	mu                sync.Mutex
	Submissions       map[string]int
	Decisions         map[string]int
	BroadcastFailures int
	LedgerFailures    int
	Promotions        int
	Sweeps            int
	SweepDeleted      int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Submissions: map[string]int{}, Decisions: map[string]int{}}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration)       {}

func (m *MockMetrics) IncSubmissions(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submissions[result]++
}

func (m *MockMetrics) IncDecisions(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Decisions[action]++
}

func (m *MockMetrics) IncBroadcastFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BroadcastFailures++
}

func (m *MockMetrics) IncLedgerFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LedgerFailures++
}

func (m *MockMetrics) IncPromotions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Promotions++
}

func (m *MockMetrics) ObserveSweep(_ time.Duration, deleted int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sweeps++
	m.SweepDeleted += deleted
}

// Broadcast is one recorded public post.
type Broadcast struct {
	Caption string
	Image   []byte
}

// MockBroadcaster records public posts; Err makes every post fail.
type MockBroadcaster struct {
	mu    sync.Mutex
	Posts []Broadcast
	Err   error
}

func (m *MockBroadcaster) Broadcast(_ context.Context, caption string, image io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	data, err := io.ReadAll(image)
	if err != nil {
		return err
	}
	m.Posts = append(m.Posts, Broadcast{Caption: caption, Image: data})
	return nil
}

func (m *MockBroadcaster) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Posts)
}

// MockGranter records membership grants.
type MockGranter struct {
	mu     sync.Mutex
	Grants []string
	Err    error
}

func (m *MockGranter) GrantMembership(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Grants = append(m.Grants, userID)
	return nil
}

func (m *MockGranter) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Grants)
}

// MockWatermarker returns Output or Err for every image.
type MockWatermarker struct {
	mu     sync.Mutex
	Output []byte
	Err    error
	URLs   []string
}

func (m *MockWatermarker) Watermark(_ context.Context, imageURL string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.URLs = append(m.URLs, imageURL)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Output, nil
}

// MockNotifier records moderation channel notifications.
type MockNotifier struct {
	mu       sync.Mutex
	Notified []*models.Submission
	Err      error
}

func (m *MockNotifier) NotifyPending(_ context.Context, sub *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notified = append(m.Notified, sub)
	return m.Err
}
