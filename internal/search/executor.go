package search

import (
	"log/slog"
	"strings"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/japanese"
	"github.com/kotoba-dict/kotoba/internal/query"
	"github.com/kotoba-dict/kotoba/internal/rank"
	"github.com/kotoba-dict/kotoba/pkg/metrics"
)

// KindResult is the ranked outcome of one sub-query.
type KindResult struct {
	Kind index.Kind
	// Total counts the candidates that survived mode filtering, before
	// top-K truncation.
	Total      int
	Candidates []rank.Candidate
}

// Executor runs one sub-query against a snapshot and keeps the best
// topK candidates.
type Executor struct {
	topK    int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewExecutor builds an Executor. m may be nil in tests.
func NewExecutor(topK int, m *metrics.Metrics) *Executor {
	return &Executor{
		topK:    topK,
		metrics: m,
		logger:  slog.Default().With("component", "executor"),
	}
}

// Execute resolves candidates for sq from the snapshot's n-gram stage,
// scores them, and returns the ranked top-K. Candidates with missing
// entries are skipped and logged, never fatal.
func (e *Executor) Execute(snap *index.Snapshot, sq query.SubQuery) *KindResult {
	ids := snap.Candidates(sq.Kind, sq.Text)
	if len(ids) == 0 && sq.Mode == query.ModeFuzzy {
		// Fuzzy mode widens to any-gram union when the conjunctive
		// probe finds nothing.
		ids = snap.CandidatesAny(sq.Kind, sq.Text)
	}
	if sq.Kind == index.KindSentence && len(sq.Lemmas) > 0 {
		ids = unionIDs(ids, e.lemmaCandidates(snap, sq))
	}
	if sq.Kind == index.KindKanji && sq.ReadingFilter == "" {
		// A mixed query also surfaces each kanji it contains, so the
		// character breakdown shows up next to word matches.
		for _, r := range japanese.KanjiRunes(sq.Text) {
			if literal := string(r); literal != sq.Text {
				ids = unionIDs(ids, snap.Candidates(sq.Kind, literal))
			}
		}
	}

	qvec := snap.QueryVector(sq.Kind, sq.Text)
	weights := rank.WeightsFor(sq.Kind, sq.Mode)
	topk := rank.NewTopK(e.topK)
	total := 0

	for _, id := range ids {
		entry, ok := snap.Entry(sq.Kind, id)
		if !ok {
			e.logger.Warn("candidate entry missing from store, skipping",
				"kind", sq.Kind.String(), "id", id)
			if e.metrics != nil {
				e.metrics.ScoringSkipsTotal.Inc()
			}
			continue
		}
		if sq.ReadingFilter != "" {
			kanji, isKanji := entry.(*index.KanjiEntry)
			if !isKanji || !kanji.ReadingMatches(sq.ReadingFilter) {
				continue
			}
		}
		exact, prefix := matchRelation(entry, sq.Text)
		if sq.Mode == query.ModeExact && !exact {
			continue
		}
		score := rank.Score(weights, exact, prefix,
			snap.Similarity(sq.Kind, id, qvec), entry.Frequency())
		total++
		topk.Push(rank.Candidate{Entry: entry, Score: score})
	}

	return &KindResult{
		Kind:       sq.Kind,
		Total:      total,
		Candidates: topk.Sorted(),
	}
}

// lemmaCandidates probes the sentence index with each extracted lemma,
// surfacing sentences that contain the query's words in conjugated form.
func (e *Executor) lemmaCandidates(snap *index.Snapshot, sq query.SubQuery) []uint32 {
	var ids []uint32
	for _, lemma := range sq.Lemmas {
		ids = unionIDs(ids, snap.Candidates(sq.Kind, index.NormalizeText(lemma)))
	}
	return ids
}

// matchRelation classifies entry against the normalized query text:
// exact when any search text equals it, prefix when any search text
// starts with it.
func matchRelation(entry index.Entry, text string) (exact, prefix bool) {
	for _, st := range entry.SearchTexts() {
		if st == text {
			return true, true
		}
		if strings.HasPrefix(st, text) {
			prefix = true
		}
	}
	return false, prefix
}

// unionIDs merges two ascending ID slices, deduplicating.
func unionIDs(a, b []uint32) []uint32 {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
