package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"docqa/internal/domain"
)

// Rewriter turns follow-up questions into standalone questions using a
// chat model. It is stateless; the caller supplies the full history on
// every call and gets exactly one rewrite back.
type Rewriter struct {
	completer domain.Completer
}

func New(completer domain.Completer) *Rewriter {
	return &Rewriter{completer: completer}
}

const promptTemplate = `Based on the conversation history and the user's question, modify or enhance the question if it relates to previous answers or questions. If the question is a follow-up, rephrase it so it stands alone. If the question is unrelated to the previous conversation, keep it as is and output it without modifications. Strictly follow the output format and do not include any additional text.

Conversation History - %s
User Question - %s

Output Format - #json{"question":"modified question"}#`

var payloadRe = regexp.MustCompile(`(?s)#json(.*?)#`)

// Rewrite returns a self-contained version of question. With an empty
// history the question is returned unchanged and the model is not called.
// A malformed model response yields ErrRewriteParse; the caller is
// expected to fall back to the original question.
func (r *Rewriter) Rewrite(ctx context.Context, history []domain.Turn, question string) (string, error) {
	if len(history) == 0 {
		return question, nil
	}
	hist, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("encoding history: %w", err)
	}
	resp, err := r.completer.Complete(ctx, fmt.Sprintf(promptTemplate, hist, question))
	if err != nil {
		return "", err
	}
	return parsePayload(resp)
}

// parsePayload extracts the single #json...# block from the model response
// and decodes it strictly. Quasi-JSON (single quotes, stray text) is a
// parse failure, not something to patch up.
func parsePayload(resp string) (string, error) {
	m := payloadRe.FindStringSubmatch(resp)
	if m == nil {
		return "", fmt.Errorf("%w: no #json...# block in model response", domain.ErrRewriteParse)
	}
	var out struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &out); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRewriteParse, err)
	}
	if strings.TrimSpace(out.Question) == "" {
		return "", fmt.Errorf("%w: empty question field", domain.ErrRewriteParse)
	}
	return out.Question, nil
}
