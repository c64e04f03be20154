package memory

import (
	"context"
	"testing"

	"docqa/internal/domain"
)

func TestUpsertIdempotent(t *testing.T) {
	s := New()
	rec := domain.Record{Namespace: "ns", SourceID: "a.txt", Text: "chunk", Embedding: []float64{1, 0}}

	if _, err := s.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rec.Embedding = []float64{0, 1}
	if _, err := s.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.FetchAll(context.Background(), "ns")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Embedding[0] != 0 || got[0].Embedding[1] != 1 {
		t.Errorf("second upsert did not replace the record: %v", got[0].Embedding)
	}
}

func TestFetchAllUnknownNamespace(t *testing.T) {
	s := New()
	got, err := s.FetchAll(context.Background(), "missing")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records, want 0", len(got))
	}
}

func TestNamespaceIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Upsert(ctx, domain.Record{Namespace: "one", SourceID: "a", Text: "x"})
	s.Upsert(ctx, domain.Record{Namespace: "two", SourceID: "a", Text: "x"})
	s.Upsert(ctx, domain.Record{Namespace: "two", SourceID: "b", Text: "y"})

	one, _ := s.FetchAll(ctx, "one")
	two, _ := s.FetchAll(ctx, "two")
	if len(one) != 1 || len(two) != 2 {
		t.Errorf("got %d/%d records, want 1/2", len(one), len(two))
	}
}

func TestFetchAllReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Upsert(ctx, domain.Record{Namespace: "ns", SourceID: "a", Text: "x"})

	got, _ := s.FetchAll(ctx, "ns")
	got[0].SourceID = "mutated"

	again, _ := s.FetchAll(ctx, "ns")
	if again[0].SourceID != "a" {
		t.Error("FetchAll must return a copy, not the backing slice")
	}
}
