package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Duffman2k/duffvouchbot/internal/models"
)

type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*models.ActivityRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.ActivityRecord)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*models.ActivityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, notFound(userID)
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, rec *models.ActivityRecord) error {
	if rec == nil || rec.UserID == "" {
		return persistenceErr("set", "", errors.New("record without user id"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.UserID] = rec.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Mutate(_ context.Context, userID string, fn MutateFunc) (*models.ActivityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.records[userID]
	next, err := fn(current.Clone())
	if errors.Is(err, ErrSkipWrite) {
		return current.Clone(), nil
	}
	if err != nil {
		return nil, err
	}
	if next == nil {
		delete(s.records, userID)
		return nil, nil
	}
	next.UserID = userID
	s.records[userID] = next.Clone()
	return next.Clone(), nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Snapshot copies every record into its persisted form.
func (s *MemoryStore) Snapshot() map[string]models.RecordV2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.RecordV2, len(s.records))
	for id, rec := range s.records {
		out[id] = models.ToRecordV2(rec)
	}
	return out
}

// PutData replaces the whole content, used when restoring a snapshot.
func (s *MemoryStore) PutData(records map[string]*models.ActivityRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*models.ActivityRecord, len(records))
	for id, rec := range records {
		if rec == nil {
			continue
		}
		c := rec.Clone()
		c.UserID = id
		s.records[id] = c
	}
}

func (s *MemoryStore) Close() error { return nil }
