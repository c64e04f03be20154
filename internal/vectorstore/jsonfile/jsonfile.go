package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"docqa/internal/domain"
)

// Store persists records in a single JSON index file. Every write loads,
// modifies and rewrites the whole file, which is fine for the document
// counts this store is meant for; anything bigger belongs in the mongo or
// qdrant backends.
type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

type record struct {
	Namespace string    `json:"namespace"`
	Filename  string    `json:"filename"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
}

type indexFile struct {
	Index []record `json:"index"`
}

func (s *Store) Upsert(_ context.Context, rec domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.load()
	if err != nil {
		return domain.Record{}, err
	}
	entry := record{
		Namespace: rec.Namespace,
		Filename:  rec.SourceID,
		Text:      rec.Text,
		Embedding: rec.Embedding,
	}
	replaced := false
	for i := range idx.Index {
		e := &idx.Index[i]
		if e.Namespace == rec.Namespace && e.Filename == rec.SourceID && e.Text == rec.Text {
			*e = entry
			replaced = true
			break
		}
	}
	if !replaced {
		idx.Index = append(idx.Index, entry)
	}
	if err := s.save(idx); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

func (s *Store) FetchAll(_ context.Context, namespace string) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.load()
	if err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(idx.Index))
	for _, e := range idx.Index {
		if e.Namespace != namespace {
			continue
		}
		recs = append(recs, domain.Record{
			Namespace: e.Namespace,
			SourceID:  e.Filename,
			Text:      e.Text,
			Embedding: e.Embedding,
		})
	}
	return recs, nil
}

func (s *Store) load() (*indexFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &indexFile{}, nil
		}
		return nil, fmt.Errorf("reading index %s: %w", s.path, err)
	}
	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing index %s: %w", s.path, err)
	}
	return &idx, nil
}

func (s *Store) save(idx *indexFile) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
