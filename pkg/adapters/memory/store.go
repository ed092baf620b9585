package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/welllit/pkg/domain"
)

// Store implements ports.RecordStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]domain.Record
	runs map[string]domain.Run
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]domain.Record),
		runs: make(map[string]domain.Run),
	}
}

// WriteRecords replaces the log of the run.
func (s *Store) WriteRecords(ctx context.Context, run domain.Run, records []domain.Record) error {
	copied := append([]domain.Record{}, records...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[run.ID] = copied
	s.runs[run.ID] = run
	return nil
}

// ReadRecords returns a copy of the stored log.
func (s *Store) ReadRecords(ctx context.Context, runID string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return append([]domain.Record{}, recs...), nil
}

// ListRuns returns the stored run IDs, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.runs[ids[i]], s.runs[ids[j]]
		if !a.StartedAt.Equal(b.StartedAt) {
			return a.StartedAt.Before(b.StartedAt)
		}
		return ids[i] < ids[j]
	})
	return ids, nil
}

// Run returns the descriptor stored with a log.
func (s *Store) Run(runID string) (domain.Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	return run, ok
}
