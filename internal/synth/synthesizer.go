package synth

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/domain"
)

// Synthesizer assembles retrieved chunks into a grounding context, asks
// the chat model to answer from it, and reports which sources contributed.
type Synthesizer struct {
	completer domain.Completer
}

func New(completer domain.Completer) *Synthesizer {
	return &Synthesizer{completer: completer}
}

const promptTemplate = `### Context
%s

### User Query
%s

### Instructions
Using the provided context, answer the user query in a clear and concise manner. If the answer is not explicitly found in the context, provide a reasonable inference or clarification based on your knowledge.`

// Synthesize answers the question from the ranked candidates. Candidate
// texts are joined by blank lines in rank order; source identifiers are
// collected in first-seen order without duplicates. An empty candidate
// list is valid and produces an empty context.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, candidates []domain.ScoredCandidate) (domain.Answer, error) {
	var contexts strings.Builder
	seen := make(map[string]struct{}, len(candidates))
	sources := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.Record.Text != "" {
			contexts.WriteString(c.Record.Text)
			contexts.WriteString("\n\n")
		}
		if c.Record.SourceID == "" {
			continue
		}
		if _, ok := seen[c.Record.SourceID]; !ok {
			seen[c.Record.SourceID] = struct{}{}
			sources = append(sources, c.Record.SourceID)
		}
	}

	answer, err := s.completer.Complete(ctx, fmt.Sprintf(promptTemplate, contexts.String(), question))
	if err != nil {
		return domain.Answer{}, err
	}
	return domain.Answer{Text: answer, SourceIDs: sources}, nil
}
