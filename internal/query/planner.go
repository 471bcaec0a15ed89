package query

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/japanese"
	"github.com/kotoba-dict/kotoba/internal/segmenter"
	apperrors "github.com/kotoba-dict/kotoba/pkg/errors"
)

// sentenceLemmaThreshold is the rune count above which Japanese input is
// treated as sentence-like and segmented into lemmas for the sentence
// sub-query.
const sentenceLemmaThreshold = 6

// Planner classifies raw input and produces a Plan. The segmenter is
// optional; without it sentence sub-queries probe on raw grams only.
type Planner struct {
	seg *segmenter.Segmenter
	log *slog.Logger
}

// NewPlanner builds a Planner. seg may be nil.
func NewPlanner(seg *segmenter.Segmenter) *Planner {
	return &Planner{
		seg: seg,
		log: slog.Default().With("component", "planner"),
	}
}

// Plan normalizes raw and produces one sub-query per requested kind.
// Returns ErrInvalidQuery for input that is empty or unusable after
// normalization.
func (p *Planner) Plan(raw string, kinds []index.Kind, mode Mode) (*Plan, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty query", apperrors.ErrInvalidQuery)
	}
	if len(kinds) == 0 {
		kinds = index.Kinds()
	}
	if mode == 0 {
		mode = ModePartial
	}

	// Paired kanji-reading form: a kanji part and a kana part separated
	// by whitespace refine the kanji sub-query by reading.
	kanjiPart, readingPart, paired := splitKanjiReading(trimmed)

	normalized, script := japanese.Normalize(trimmed)
	if normalized == "" || script == japanese.ScriptSymbol {
		return nil, fmt.Errorf("%w: unusable after normalization: %q", apperrors.ErrInvalidQuery, raw)
	}

	plan := &Plan{
		Raw:        raw,
		Normalized: normalized,
		Script:     script,
		Mode:       mode,
	}

	var lemmas []string
	if p.seg != nil && script.IsJapanese() && sentenceLike(trimmed) {
		lemmas = p.seg.Lemmas(trimmed)
	}

	for _, kind := range kinds {
		sq := SubQuery{Kind: kind, Text: normalized, Mode: mode}
		switch kind {
		case index.KindKanji:
			if paired {
				norm, _ := japanese.Normalize(kanjiPart)
				reading, _ := japanese.Normalize(readingPart)
				sq.Text = norm
				sq.ReadingFilter = reading
			}
		case index.KindSentence:
			sq.Lemmas = lemmas
		}
		if sq.Text == "" {
			continue
		}
		plan.SubQueries = append(plan.SubQueries, sq)
	}
	if len(plan.SubQueries) == 0 {
		return nil, fmt.Errorf("%w: no executable sub-queries for %q", apperrors.ErrInvalidQuery, raw)
	}
	p.log.Debug("planned query",
		"script", script.String(),
		"mode", mode.String(),
		"sub_queries", len(plan.SubQueries))
	return plan, nil
}

// sentenceLike reports whether input is long enough, or splits into
// enough sentences, to be worth segmenting into lemmas for the sentence
// sub-query.
func sentenceLike(s string) bool {
	return len([]rune(s)) >= sentenceLemmaThreshold || len(segmenter.SplitSentences(s)) > 1
}

// splitKanjiReading recognizes the two-token form "<kanji> <kana>" used
// to look up a kanji by one of its readings.
func splitKanjiReading(s string) (kanji, reading string, ok bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return "", "", false
	}
	first, second := fields[0], fields[1]
	if !japanese.HasKanji(first) || japanese.HasKana(first) {
		return "", "", false
	}
	for _, r := range second {
		if !japanese.IsKana(r) {
			return "", "", false
		}
	}
	return first, second, true
}
