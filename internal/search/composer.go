package search

import (
	"sort"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/japanese"
	"github.com/kotoba-dict/kotoba/internal/rank"
)

// Composer merges per-kind ranked lists into the final paginated result
// and attaches display metadata to the returned window.
type Composer struct {
	// quota is the number of result slots each kind is guaranteed
	// before the remainder is filled by global score order.
	quota int
}

// NewComposer builds a Composer with the given per-kind quota.
func NewComposer(quota int) *Composer {
	if quota < 0 {
		quota = 0
	}
	return &Composer{quota: quota}
}

// Compose merges the kind results, applies offset/limit pagination over
// the fully ordered merged list, and shapes the window into Items. The
// merged order depends only on the candidates and the quota, never on
// offset or limit, so consecutive pages tile without gaps or overlaps.
func (c *Composer) Compose(normalized string, results []*KindResult, offset, limit int) *Result {
	res := &Result{Items: []Item{}}

	// Keep kind order canonical regardless of sub-query completion
	// order, so the quota head is deterministic.
	sort.Slice(results, func(i, j int) bool { return results[i].Kind < results[j].Kind })

	var head, tail []rank.Candidate
	for _, kr := range results {
		res.Total += kr.Total
		n := min(c.quota, len(kr.Candidates))
		head = append(head, kr.Candidates[:n]...)
		tail = append(tail, kr.Candidates[n:]...)
	}
	sortCandidates(head)
	sortCandidates(tail)
	merged := append(head, tail...)

	if offset < len(merged) {
		end := min(offset+limit, len(merged))
		for _, cand := range merged[offset:end] {
			res.Items = append(res.Items, buildItem(cand, normalized))
		}
		res.HasMore = end < len(merged)
	}
	return res
}

func sortCandidates(cands []rank.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return rank.Better(cands[i], cands[j])
	})
}

// buildItem shapes one scored candidate for display: kind-specific
// fields, highlight spans over the headword, and furigana for words.
func buildItem(cand rank.Candidate, normalized string) Item {
	entry := cand.Entry
	item := Item{
		Kind:     entry.Kind().String(),
		ID:       entry.ID(),
		Headword: entry.Headword(),
		Score:    cand.Score,
	}
	switch e := entry.(type) {
	case *index.WordEntry:
		item.Reading = e.Reading
		for _, s := range e.Senses {
			item.Glosses = append(item.Glosses, s.Glosses...)
		}
		if japanese.HasKanji(e.Written) && e.Reading != "" {
			item.Furigana = e.Furigana()
		}
	case *index.KanjiEntry:
		item.Glosses = e.Meanings
		if len(e.KunReadings) > 0 {
			item.Reading = e.KunReadings[0]
		} else if len(e.OnReadings) > 0 {
			item.Reading = e.OnReadings[0]
		}
	case *index.NameEntry:
		item.Reading = e.Reading
		if japanese.HasKanji(e.Written) && e.Reading != "" {
			item.Furigana = japanese.AlignFurigana(e.Written, e.Reading)
		}
	case *index.SentenceEntry:
		item.Translation = e.Translation
		item.Furigana = e.Furigana
	}
	item.Highlights = highlightSpans(item.Headword, normalized)
	return item
}

// highlightSpans returns the byte ranges of original whose normalized
// form matches the normalized query text. Normalization is rune-for-rune
// (width, case and kana folds), so rune positions map directly back to
// the original; matches do not overlap.
func highlightSpans(original, normText string) []Highlight {
	if original == "" || normText == "" {
		return nil
	}
	origRunes := []rune(original)
	foldRunes := []rune(index.NormalizeText(original))
	if len(foldRunes) != len(origRunes) {
		return nil
	}
	q := []rune(normText)
	if len(q) > len(foldRunes) {
		return nil
	}

	var spans []Highlight
	byteAt := make([]int, len(origRunes)+1)
	pos := 0
	for i, r := range origRunes {
		byteAt[i] = pos
		pos += len(string(r))
	}
	byteAt[len(origRunes)] = pos

	for i := 0; i+len(q) <= len(foldRunes); {
		match := true
		for j := range q {
			if foldRunes[i+j] != q[j] {
				match = false
				break
			}
		}
		if match {
			spans = append(spans, Highlight{Start: byteAt[i], End: byteAt[i+len(q)]})
			i += len(q)
		} else {
			i++
		}
	}
	return spans
}
