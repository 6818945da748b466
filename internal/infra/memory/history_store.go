package memory

import (
	"context"
	"sort"
	"sync"

	"quizzer/internal/domain"
)

// HistoryStore is an in-memory history repository. Records are copied on the way in
// and out, like the file store, so callers never share state.
type HistoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]int
	flushes int
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{records: make(map[string]map[string]int)}
}

func (s *HistoryStore) Load(_ context.Context, name string) (*domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts, ok := s.records[name]
	if !ok {
		counts = make(map[string]int)
		s.records[name] = counts
	}
	record := domain.NewUserRecord(name)
	for k, v := range counts {
		record.WrongCounts[k] = v
	}
	return record, nil
}

func (s *HistoryStore) Flush(_ context.Context, record *domain.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Name] = record.Clone().WrongCounts
	s.flushes++
	return nil
}

func (s *HistoryStore) ListUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Flushes counts successful Flush calls.
func (s *HistoryStore) Flushes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flushes
}
