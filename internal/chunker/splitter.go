package chunker

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"docqa/internal/domain"
)

// Splitter cuts document text into overlapping fixed-size chunks. Chunks
// are exact substrings of the source, so stripping the overlaps and
// concatenating them reconstructs the document.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter validates the chunking configuration. The overlap must be
// strictly smaller than the chunk size or the window could never advance.
func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, chunkSize)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split chunks every document in docs, keyed by source identifier.
// Sources are processed in sorted order so the output is deterministic.
// A source with empty text contributes no chunks.
func (s *Splitter) Split(docs map[string]string) []domain.Chunk {
	sources := make([]string, 0, len(docs))
	for src := range docs {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	var chunks []domain.Chunk
	for _, src := range sources {
		chunks = append(chunks, s.SplitDocument(src, docs[src])...)
	}
	return chunks
}

// SplitDocument splits one document with a sliding window of chunkSize
// runes. The window end prefers a natural boundary (paragraph, sentence,
// word) and falls back to a hard cut. Boundary snapping is confined to the
// last overlap-sized tail of the window, which keeps the next window from
// either gapping or stalling: the start always advances by at least
// chunkSize-overlap runes, even on text with no break at all.
func (s *Splitter) SplitDocument(sourceID, text string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	minAdvance := s.chunkSize - s.overlap

	var chunks []domain.Chunk
	start := 0
	seq := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = snap(runes, start+minAdvance, end)
		}
		chunks = append(chunks, domain.Chunk{
			SourceID: sourceID,
			Text:     string(runes[start:end]),
			Seq:      seq,
		})
		seq++
		if end == len(runes) {
			break
		}
		next := end - s.overlap
		if next < start+minAdvance {
			next = start + minAdvance
		}
		start = next
	}
	return chunks
}

// snap moves the cut position hi back to the nearest natural boundary in
// (lo, hi], trying paragraph breaks first, then sentence ends, then word
// breaks. When nothing qualifies it returns hi unchanged (hard cut).
func snap(runes []rune, lo, hi int) int {
	for i := hi; i > lo; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}
	for i := hi; i > lo; i-- {
		switch runes[i-1] {
		case '.', '!', '?':
			return i
		}
	}
	for i := hi; i > lo; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return hi
}
