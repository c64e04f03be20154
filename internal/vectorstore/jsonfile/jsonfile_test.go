package jsonfile

import (
	"context"
	"path/filepath"
	"testing"

	"docqa/internal/domain"
)

func TestMissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "index.json"))
	got, err := s.FetchAll(context.Background(), "ns")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records from a missing index, want 0", len(got))
	}
}

func TestPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	ctx := context.Background()

	first := New(path)
	rec := domain.Record{Namespace: "ns", SourceID: "a.pdf", Text: "chunk text", Embedding: []float64{0.5, 0.5}}
	if _, err := first.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second := New(path)
	got, err := second.FetchAll(ctx, "ns")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].SourceID != "a.pdf" || got[0].Text != "chunk text" {
		t.Errorf("round-tripped record mismatch: %+v", got[0])
	}
	if len(got[0].Embedding) != 2 || got[0].Embedding[0] != 0.5 {
		t.Errorf("embedding not preserved: %v", got[0].Embedding)
	}
}

func TestUpsertReplacesExistingEntry(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "index.json"))
	ctx := context.Background()

	rec := domain.Record{Namespace: "ns", SourceID: "a.pdf", Text: "chunk", Embedding: []float64{1}}
	s.Upsert(ctx, rec)
	rec.Embedding = []float64{2}
	s.Upsert(ctx, rec)

	got, err := s.FetchAll(ctx, "ns")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Embedding[0] != 2 {
		t.Errorf("upsert did not replace the entry: %v", got[0].Embedding)
	}
}

func TestFetchFiltersByNamespace(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "index.json"))
	ctx := context.Background()
	s.Upsert(ctx, domain.Record{Namespace: "one", SourceID: "a", Text: "x"})
	s.Upsert(ctx, domain.Record{Namespace: "two", SourceID: "b", Text: "y"})

	got, err := s.FetchAll(ctx, "two")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].SourceID != "b" {
		t.Errorf("namespace filter broken: %+v", got)
	}
}
