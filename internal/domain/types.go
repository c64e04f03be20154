package domain

// Chunk is a contiguous slice of a document's text produced by the splitter.
type Chunk struct {
	SourceID string
	Text     string
	Seq      int
}

// Record is an embedded chunk persisted in a vector store. Records are
// immutable after upsert; writes with the same (Namespace, SourceID, Text)
// key replace the stored embedding.
type Record struct {
	Namespace string
	SourceID  string
	Text      string
	Embedding []float64
}

// Key returns the upsert identity of the record.
func (r Record) Key() string {
	return r.Namespace + "\x00" + r.SourceID + "\x00" + r.Text
}

// ScoredCandidate pairs a stored record with its cosine similarity to a
// query. Candidates live only for the duration of one query.
type ScoredCandidate struct {
	Record     Record
	Similarity float64
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the conversation history supplied by the caller.
// The engine holds no session state; multi-turn memory is the caller's.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Answer is the synthesized response to a query together with the
// deduplicated list of contributing source identifiers, in first-seen order.
type Answer struct {
	Text      string   `json:"answer"`
	SourceIDs []string `json:"sources"`
}
