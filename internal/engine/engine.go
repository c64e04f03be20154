package engine

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/rank"
	"docqa/internal/rewrite"
	"docqa/internal/synth"
)

// maxConcurrentEmbeds bounds parallel calls to the embedding provider
// during ingestion.
const maxConcurrentEmbeds = 10

// Options carry the retrieval knobs. Zero values are replaced by the
// deployment defaults.
type Options struct {
	SimilarityCutoff float64
	TopK             int
}

// Defaults mirror the deployment configuration defaults.
const (
	DefaultSimilarityCutoff = 0.7
	DefaultTopK             = 10
)

// Engine wires the core retrieval components together. It holds no
// per-request state; every call is a function of its inputs plus the
// store and model collaborators.
type Engine struct {
	embedder domain.Embedder
	store    domain.VectorStore
	rewriter *rewrite.Rewriter
	synth    *synth.Synthesizer
	cutoff   float64
	topK     int
}

func New(embedder domain.Embedder, store domain.VectorStore, completer domain.Completer, opts Options) *Engine {
	if opts.SimilarityCutoff == 0 {
		opts.SimilarityCutoff = DefaultSimilarityCutoff
	}
	if opts.TopK == 0 {
		opts.TopK = DefaultTopK
	}
	return &Engine{
		embedder: embedder,
		store:    store,
		rewriter: rewrite.New(completer),
		synth:    synth.New(completer),
		cutoff:   opts.SimilarityCutoff,
		topK:     opts.TopK,
	}
}

// Ingest chunks every document in docs, embeds the chunks and upserts the
// resulting records into the namespace. Sources are processed one at a
// time in sorted order; a failure aborts the call naming the failing
// source, while sources already ingested in this call stay in the store.
// All of a source's chunks are embedded before its first upsert, so an
// embedding failure writes nothing for that source. A store failure can
// leave a prefix of the failing source's chunks persisted; upserts are
// idempotent on the record key, so re-ingesting the source completes it.
func (e *Engine) Ingest(ctx context.Context, namespace string, docs map[string]string, chunkSize, overlap int) ([]domain.Record, error) {
	if namespace == "" {
		return nil, errors.New("namespace is required")
	}
	if len(docs) == 0 {
		return nil, errors.New("no documents to ingest")
	}
	splitter, err := chunker.NewSplitter(chunkSize, overlap)
	if err != nil {
		return nil, err
	}

	sources := make([]string, 0, len(docs))
	for src := range docs {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	var records []domain.Record
	for _, src := range sources {
		recs, err := e.ingestSource(ctx, namespace, splitter, src, docs[src])
		if err != nil {
			return nil, fmt.Errorf("ingesting %s: %w", src, err)
		}
		records = append(records, recs...)
		log.Info("ingested source", "namespace", namespace, "source", src, "chunks", len(recs))
	}
	return records, nil
}

func (e *Engine) ingestSource(ctx context.Context, namespace string, splitter *chunker.Splitter, sourceID, text string) ([]domain.Record, error) {
	chunks := splitter.SplitDocument(sourceID, text)
	if len(chunks) == 0 {
		return nil, nil
	}

	recs := make([]domain.Record, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEmbeds)
	for i := range chunks {
		i := i
		g.Go(func() error {
			vec, err := e.embedder.Embed(gctx, chunks[i].Text)
			if err != nil {
				return fmt.Errorf("embedding chunk %d: %w", chunks[i].Seq, err)
			}
			recs[i] = domain.Record{
				Namespace: namespace,
				SourceID:  chunks[i].SourceID,
				Text:      chunks[i].Text,
				Embedding: vec,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stored := make([]domain.Record, 0, len(recs))
	for i := range recs {
		rec, err := e.store.Upsert(ctx, recs[i])
		if err != nil {
			return nil, fmt.Errorf("upserting chunk %d: %w", chunks[i].Seq, err)
		}
		stored = append(stored, rec)
	}
	return stored, nil
}

// Query answers a question against the namespace. When history is present
// the question is first rewritten into a standalone one; a malformed
// rewrite payload degrades to the original question instead of failing
// the call. Embedding, store and completion failures fail the query.
func (e *Engine) Query(ctx context.Context, namespace, question string, history []domain.Turn) (domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Answer{}, errors.New("question must not be empty")
	}

	q := question
	if len(history) > 0 {
		rewritten, err := e.rewriter.Rewrite(ctx, history, question)
		switch {
		case err == nil:
			q = rewritten
		case errors.Is(err, domain.ErrRewriteParse):
			log.Warn("rewrite payload unparseable, keeping original question", "error", err)
		default:
			return domain.Answer{}, fmt.Errorf("rewriting question: %w", err)
		}
	}

	vec, err := e.embedder.Embed(ctx, q)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embedding question: %w", err)
	}
	candidates, err := e.store.FetchAll(ctx, namespace)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("fetching namespace %q: %w", namespace, err)
	}
	top, err := rank.Rank(vec, candidates, e.cutoff, e.topK)
	if err != nil {
		return domain.Answer{}, err
	}
	return e.synth.Synthesize(ctx, q, top)
}
