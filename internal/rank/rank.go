// Package rank computes composite relevance scores and maintains the
// bounded top-K candidate set with a deterministic total order.
package rank

import (
	"math"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/query"
)

// Weights are the fixed coefficients of the composite score, chosen per
// entry kind and search mode.
type Weights struct {
	Exact      float64
	Prefix     float64
	Similarity float64
	Frequency  float64
}

// WeightsFor returns the scoring weights for one sub-query. Exact mode
// leans on the exact-match bonus; fuzzy mode and sentence search lean on
// vector similarity.
func WeightsFor(kind index.Kind, mode query.Mode) Weights {
	if kind == index.KindSentence {
		return Weights{Exact: 1.0, Prefix: 0.3, Similarity: 3.0, Frequency: 0.2}
	}
	switch mode {
	case query.ModeExact:
		return Weights{Exact: 10.0, Prefix: 0.5, Similarity: 1.0, Frequency: 0.5}
	case query.ModeFuzzy:
		return Weights{Exact: 2.0, Prefix: 0.5, Similarity: 4.0, Frequency: 0.5}
	default:
		return Weights{Exact: 5.0, Prefix: 2.0, Similarity: 2.0, Frequency: 0.5}
	}
}

// Score combines the match signals under w. Non-finite similarity or
// frequency inputs are treated as zero so a single bad value cannot
// poison the ordering.
func Score(w Weights, exact, prefix bool, similarity, frequency float64) float64 {
	if math.IsNaN(similarity) || math.IsInf(similarity, 0) {
		similarity = 0
	}
	if math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		frequency = 0
	}
	var s float64
	if exact {
		s += w.Exact
	}
	if prefix {
		s += w.Prefix
	}
	s += w.Similarity * similarity
	s += w.Frequency * frequency
	return s
}

// Candidate is one scored entry inside a sub-query.
type Candidate struct {
	Entry index.Entry
	Score float64
}

// Better reports whether a ranks strictly before b under the total
// order: score descending, then frequency descending, then ID ascending.
// NaN scores sort last. No two distinct candidates of one kind compare
// equal, so result order is reproducible run to run.
func Better(a, b Candidate) bool {
	as, bs := a.Score, b.Score
	if math.IsNaN(as) {
		as = math.Inf(-1)
	}
	if math.IsNaN(bs) {
		bs = math.Inf(-1)
	}
	if as != bs {
		return as > bs
	}
	af, bf := a.Entry.Frequency(), b.Entry.Frequency()
	if math.IsNaN(af) {
		af = math.Inf(-1)
	}
	if math.IsNaN(bf) {
		bf = math.Inf(-1)
	}
	if af != bf {
		return af > bf
	}
	return a.Entry.ID() < b.Entry.ID()
}
