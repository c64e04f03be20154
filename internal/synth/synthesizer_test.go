package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

type fakeCompleter struct {
	response string
	err      error
	prompt   string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func candidate(sourceID, text string, sim float64) domain.ScoredCandidate {
	return domain.ScoredCandidate{
		Record:     domain.Record{Namespace: "ns", SourceID: sourceID, Text: text},
		Similarity: sim,
	}
}

func TestSynthesize_DeduplicatesSources(t *testing.T) {
	fake := &fakeCompleter{response: "The policy allows it."}
	s := New(fake)
	answer, err := s.Synthesize(context.Background(), "Is it allowed?", []domain.ScoredCandidate{
		candidate("a.pdf", "chunk one", 0.9),
		candidate("a.pdf", "chunk two", 0.85),
		candidate("b.pdf", "chunk three", 0.8),
	})
	require.NoError(t, err)
	assert.Equal(t, "The policy allows it.", answer.Text)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, answer.SourceIDs)
}

func TestSynthesize_PromptLayout(t *testing.T) {
	fake := &fakeCompleter{response: "ok"}
	s := New(fake)
	_, err := s.Synthesize(context.Background(), "What is the limit?", []domain.ScoredCandidate{
		candidate("a.pdf", "first chunk", 0.9),
		candidate("b.pdf", "second chunk", 0.8),
	})
	require.NoError(t, err)
	assert.Contains(t, fake.prompt, "first chunk\n\nsecond chunk\n\n")
	assert.Contains(t, fake.prompt, "What is the limit?")
	assert.Contains(t, fake.prompt, "### Context")
	assert.Contains(t, fake.prompt, "### User Query")
}

func TestSynthesize_EmptyCandidates(t *testing.T) {
	fake := &fakeCompleter{response: "I have no supporting documents for that."}
	s := New(fake)
	answer, err := s.Synthesize(context.Background(), "Anything?", nil)
	require.NoError(t, err)
	assert.Equal(t, "I have no supporting documents for that.", answer.Text)
	assert.Empty(t, answer.SourceIDs)
}

func TestSynthesize_CompleterError(t *testing.T) {
	boom := errors.New("model unavailable")
	fake := &fakeCompleter{err: boom}
	s := New(fake)
	_, err := s.Synthesize(context.Background(), "Anything?", []domain.ScoredCandidate{
		candidate("a.pdf", "text", 0.9),
	})
	require.ErrorIs(t, err, boom)
}
