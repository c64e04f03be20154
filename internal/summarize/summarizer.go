package summarize

import (
	"context"
	"fmt"

	"docqa/internal/domain"
)

// Summarizer produces a brief model-written summary of extracted document
// text, used by the upload surface to describe what was ingested.
type Summarizer struct {
	completer domain.Completer
}

func New(completer domain.Completer) *Summarizer {
	return &Summarizer{completer: completer}
}

const promptTemplate = `Give a brief summary of the below text extracted from a document. Write it in a way that it represents the whole summary of the document.
Text - <<%s>>
Give point wise summary with well formatted structure.`

func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := s.completer.Complete(ctx, fmt.Sprintf(promptTemplate, text))
	if err != nil {
		return "", fmt.Errorf("summarizing document: %w", err)
	}
	return summary, nil
}
