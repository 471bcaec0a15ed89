package index

import "github.com/RoaringBitmap/roaring/v2"

// GramIndex maps character n-grams to the set of entry IDs whose search
// texts contain them. Posting sets are roaring bitmaps, so intersection
// over candidate sets stays cheap even for frequent grams. Texts shorter
// than N are additionally indexed under their 1-grams and under the whole
// text, so single-character queries still resolve.
type GramIndex struct {
	N     int
	Grams map[string]*roaring.Bitmap
}

// NewGramIndex returns an empty index over n-character grams. n must be
// at least 1.
func NewGramIndex(n int) *GramIndex {
	if n < 1 {
		n = 1
	}
	return &GramIndex{N: n, Grams: make(map[string]*roaring.Bitmap)}
}

// Grams returns the distinct n-grams of text in first-seen order. For
// text shorter than n the whole text is the single gram.
func Grams(text string, n int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= n {
		return []string{string(runes)}
	}
	seen := make(map[string]struct{}, len(runes))
	out := make([]string, 0, len(runes))
	for i := 0; i+n <= len(runes); i++ {
		g := string(runes[i : i+n])
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// Add indexes text under id. Both n-grams and 1-grams are recorded so
// short queries have posting lists to intersect.
func (g *GramIndex) Add(id uint32, text string) {
	for _, gram := range Grams(text, g.N) {
		g.add(id, gram)
	}
	if g.N > 1 {
		for _, gram := range Grams(text, 1) {
			g.add(id, gram)
		}
	}
}

func (g *GramIndex) add(id uint32, gram string) {
	bm, ok := g.Grams[gram]
	if !ok {
		bm = roaring.New()
		g.Grams[gram] = bm
	}
	bm.Add(id)
}

// queryGrams picks the gram size to probe with: n-grams for text of at
// least n runes, 1-grams otherwise.
func (g *GramIndex) queryGrams(text string) []string {
	runes := []rune(text)
	if len(runes) >= g.N {
		return Grams(text, g.N)
	}
	return Grams(text, 1)
}

// Candidates returns the IDs whose texts contain every gram of text. A
// gram with no posting list short-circuits to the empty set.
func (g *GramIndex) Candidates(text string) *roaring.Bitmap {
	grams := g.queryGrams(text)
	if len(grams) == 0 {
		return roaring.New()
	}
	lists := make([]*roaring.Bitmap, 0, len(grams))
	for _, gram := range grams {
		bm, ok := g.Grams[gram]
		if !ok {
			return roaring.New()
		}
		lists = append(lists, bm)
	}
	return roaring.FastAnd(lists...)
}

// CandidatesAny returns the IDs containing at least one gram of text.
// Used as the widened fallback when the conjunctive probe comes up empty.
func (g *GramIndex) CandidatesAny(text string) *roaring.Bitmap {
	grams := g.queryGrams(text)
	lists := make([]*roaring.Bitmap, 0, len(grams))
	for _, gram := range grams {
		if bm, ok := g.Grams[gram]; ok {
			lists = append(lists, bm)
		}
	}
	if len(lists) == 0 {
		return roaring.New()
	}
	return roaring.FastOr(lists...)
}
