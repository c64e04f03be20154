package rank

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"docqa/internal/domain"
)

// ErrZeroNorm is returned when either vector has zero magnitude, which
// would otherwise produce a silent NaN similarity.
var ErrZeroNorm = errors.New("zero-norm embedding vector")

// DimensionError reports a candidate embedding whose dimensionality does
// not match the query. It fails the whole ranking call because it
// indicates a corrupted index, not a bad candidate.
type DimensionError struct {
	Want     int
	Got      int
	SourceID string
}

func (e *DimensionError) Error() string {
	if e.SourceID != "" {
		return fmt.Sprintf("embedding dimension mismatch for %s: query %d, candidate %d", e.SourceID, e.Want, e.Got)
	}
	return fmt.Sprintf("embedding dimension mismatch: query %d, candidate %d", e.Want, e.Got)
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionError{Want: len(a), Got: len(b)}
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, ErrZeroNorm
	}
	// Rounding can push the quotient a few ulps past ±1 for parallel
	// vectors, which would break cutoff comparisons at the extremes.
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, sim)), nil
}

// Rank scores every candidate against the query, drops those below cutoff,
// sorts the rest descending by similarity and truncates to k. The sort is
// stable, so ties keep their retrieval order. k <= 0 means unbounded.
// Fewer survivors than k is not an error; they are returned as-is.
func Rank(query []float64, candidates []domain.Record, cutoff float64, k int) ([]domain.ScoredCandidate, error) {
	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		sim, err := Cosine(query, candidates[i].Embedding)
		if err != nil {
			var de *DimensionError
			if errors.As(err, &de) {
				de.SourceID = candidates[i].SourceID
			}
			return nil, err
		}
		if sim >= cutoff {
			scored = append(scored, domain.ScoredCandidate{Record: candidates[i], Similarity: sim})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })
	if k > 0 && k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}
