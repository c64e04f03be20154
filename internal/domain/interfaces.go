package domain

import "context"

// Embedder converts free text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// Completer generates text from a prompt using a chat model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// VectorStore persists embedded records and lists them per namespace.
// Upsert is idempotent on the record key; FetchAll of an unknown namespace
// returns an empty slice, not an error.
type VectorStore interface {
	Upsert(ctx context.Context, rec Record) (Record, error)
	FetchAll(ctx context.Context, namespace string) ([]Record, error)
}

// Extractor pulls plain text out of a file on disk.
type Extractor interface {
	Extract(path string) (string, error)
}
