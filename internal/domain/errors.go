package domain

import "errors"

// Collaborator failures are wrapped with these sentinels so callers can
// tell which dependency failed without depending on its package.
var (
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrExtraction         = errors.New("text extraction failed")
	ErrEmbeddingProvider  = errors.New("embedding provider failure")
	ErrCompletionProvider = errors.New("completion provider failure")

	// ErrRewriteParse marks a malformed rewrite payload. The engine
	// recovers from it by falling back to the original question.
	ErrRewriteParse = errors.New("rewrite response parse failure")
)
