package rewrite

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
	calls    int
	prompts  []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func history() []domain.Turn {
	return []domain.Turn{
		{Role: domain.RoleUser, Content: "Who wrote the report?"},
		{Role: domain.RoleAssistant, Content: "The report was written by the audit team."},
	}
}

func TestRewrite_EmptyHistorySkipsModel(t *testing.T) {
	fake := &fakeCompleter{}
	r := New(fake)
	got, err := r.Rewrite(context.Background(), nil, "When was it published?")
	require.NoError(t, err)
	assert.Equal(t, "When was it published?", got)
	assert.Zero(t, fake.calls, "model must not be called without history")
}

func TestRewrite_ParsesPayload(t *testing.T) {
	fake := &fakeCompleter{response: `#json{"question":"When was the audit report published?"}#`}
	r := New(fake)
	got, err := r.Rewrite(context.Background(), history(), "When was it published?")
	require.NoError(t, err)
	assert.Equal(t, "When was the audit report published?", got)
	require.Equal(t, 1, fake.calls)
	assert.Contains(t, fake.prompts[0], "When was it published?")
	assert.Contains(t, fake.prompts[0], "audit team", "prompt must carry the serialized history")
}

func TestRewrite_MissingDelimiter(t *testing.T) {
	fake := &fakeCompleter{response: `Sure! Here is the question: When was the report published?`}
	r := New(fake)
	_, err := r.Rewrite(context.Background(), history(), "When was it published?")
	require.ErrorIs(t, err, domain.ErrRewriteParse)
}

func TestRewrite_SingleQuotedPayloadIsRejected(t *testing.T) {
	// Quasi-JSON with single quotes is a parse failure, not something to
	// patch into validity.
	fake := &fakeCompleter{response: `#json{'question':'When was the report published?'}#`}
	r := New(fake)
	_, err := r.Rewrite(context.Background(), history(), "When was it published?")
	require.ErrorIs(t, err, domain.ErrRewriteParse)
}

func TestRewrite_EmptyQuestionField(t *testing.T) {
	fake := &fakeCompleter{response: `#json{"question":""}#`}
	r := New(fake)
	_, err := r.Rewrite(context.Background(), history(), "When was it published?")
	require.ErrorIs(t, err, domain.ErrRewriteParse)
}

func TestRewrite_CompleterErrorPropagates(t *testing.T) {
	boom := errors.New("quota exhausted")
	fake := &fakeCompleter{err: boom}
	r := New(fake)
	_, err := r.Rewrite(context.Background(), history(), "When was it published?")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, domain.ErrRewriteParse)
}

func TestRewrite_MultilinePayload(t *testing.T) {
	fake := &fakeCompleter{response: "#json{\n  \"question\": \"Who audited the 2023 accounts?\"\n}#"}
	r := New(fake)
	got, err := r.Rewrite(context.Background(), history(), "And who audited them?")
	require.NoError(t, err)
	assert.Equal(t, "Who audited the 2023 accounts?", got)
}
