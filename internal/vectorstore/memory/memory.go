package memory

import (
	"context"
	"sync"

	"docqa/internal/domain"
)

// Store is an in-memory vector store, used in tests and single-process
// runs. Records are kept per namespace in insertion order; an upsert with
// a known key replaces the stored record in place.
type Store struct {
	mu          sync.RWMutex
	byNamespace map[string][]domain.Record
	index       map[string]int
}

func New() *Store {
	return &Store{
		byNamespace: make(map[string][]domain.Record),
		index:       make(map[string]int),
	}
}

func (s *Store) Upsert(_ context.Context, rec domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rec.Key()
	if i, ok := s.index[key]; ok {
		s.byNamespace[rec.Namespace][i] = rec
		return rec, nil
	}
	s.byNamespace[rec.Namespace] = append(s.byNamespace[rec.Namespace], rec)
	s.index[key] = len(s.byNamespace[rec.Namespace]) - 1
	return rec, nil
}

func (s *Store) FetchAll(_ context.Context, namespace string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.byNamespace[namespace]
	out := make([]domain.Record, len(recs))
	copy(out, recs)
	return out, nil
}
