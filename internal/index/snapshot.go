package index

import (
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// KindIndex bundles the per-kind structures: the entries themselves, the
// gram posting lists and the TF-IDF vectors. Fields are exported for the
// snapshot codec; treat a built KindIndex as read-only.
type KindIndex struct {
	Entries map[uint32]Entry
	Grams   *GramIndex
	Vectors *VectorIndex
}

// Snapshot is one immutable build of the whole index. Readers obtain a
// snapshot from a Handle and use it for the full lifetime of a query, so
// a concurrent swap can never mix results from two builds.
type Snapshot struct {
	// Version distinguishes builds; it participates in cache keys so a
	// reload invalidates cached results implicitly.
	Version uint32
	BuiltAt time.Time
	Kinds   map[Kind]*KindIndex
}

func (s *Snapshot) kind(k Kind) *KindIndex {
	if s == nil {
		return nil
	}
	return s.Kinds[k]
}

// Entry returns the entry with the given kind and id.
func (s *Snapshot) Entry(k Kind, id uint32) (Entry, bool) {
	ki := s.kind(k)
	if ki == nil {
		return nil, false
	}
	e, ok := ki.Entries[id]
	return e, ok
}

// Count returns the number of entries of a kind.
func (s *Snapshot) Count(k Kind) int {
	ki := s.kind(k)
	if ki == nil {
		return 0
	}
	return len(ki.Entries)
}

// TotalCount returns the number of entries across all kinds.
func (s *Snapshot) TotalCount() int {
	var n int
	for _, k := range Kinds() {
		n += s.Count(k)
	}
	return n
}

// GramCount returns the number of distinct grams across all kinds.
func (s *Snapshot) GramCount() int {
	var n int
	if s == nil {
		return 0
	}
	for _, ki := range s.Kinds {
		if ki.Grams != nil {
			n += len(ki.Grams.Grams)
		}
	}
	return n
}

// Candidates returns the IDs of kind k whose texts contain every gram of
// the normalized query text, in ascending ID order.
func (s *Snapshot) Candidates(k Kind, text string) []uint32 {
	ki := s.kind(k)
	if ki == nil || ki.Grams == nil {
		return nil
	}
	return bitmapIDs(ki.Grams.Candidates(text))
}

// CandidatesAny returns the IDs of kind k containing at least one gram
// of text, the widened probe used when Candidates is empty.
func (s *Snapshot) CandidatesAny(k Kind, text string) []uint32 {
	ki := s.kind(k)
	if ki == nil || ki.Grams == nil {
		return nil
	}
	return bitmapIDs(ki.Grams.CandidatesAny(text))
}

// QueryVector builds the TF-IDF query vector for text against kind k's
// corpus statistics.
func (s *Snapshot) QueryVector(k Kind, text string) Vector {
	ki := s.kind(k)
	if ki == nil || ki.Vectors == nil || ki.Grams == nil {
		return nil
	}
	return ki.Vectors.QueryVector(Grams(text, ki.Grams.N))
}

// Similarity returns the cosine similarity between entry id of kind k
// and the query vector.
func (s *Snapshot) Similarity(k Kind, id uint32, q Vector) float64 {
	ki := s.kind(k)
	if ki == nil || ki.Vectors == nil {
		return 0
	}
	return ki.Vectors.Similarity(id, q)
}

func bitmapIDs(bm *roaring.Bitmap) []uint32 {
	if bm == nil || bm.IsEmpty() {
		return nil
	}
	return bm.ToArray()
}
