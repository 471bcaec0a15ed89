package index

import (
	"math"
	"sort"
)

// Vector is a sparse, L2-normalized TF-IDF weight vector keyed by gram.
type Vector map[string]float64

// Cosine returns the cosine similarity of two normalized vectors. Since
// both are unit length this is just the dot product over the smaller
// map. Terms are summed in sorted order so repeated queries accumulate
// floating point identically and scores are reproducible.
func Cosine(a, b Vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var dot float64
	for _, term := range sortedTerms(a) {
		if wb, ok := b[term]; ok {
			dot += a[term] * wb
		}
	}
	return dot
}

func sortedTerms(v Vector) []string {
	terms := make([]string, 0, len(v))
	for term := range v {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// VectorIndex holds the TF-IDF document vectors for one entry kind,
// together with the document frequencies needed to weight query vectors
// the same way.
type VectorIndex struct {
	DocCount int
	DF       map[string]int
	Docs     map[uint32]Vector
}

// idf dampens grams that appear in many documents. Grams never seen at
// build time get zero weight, so unknown query grams cannot dominate.
func (vi *VectorIndex) idf(term string) float64 {
	df := vi.DF[term]
	if df == 0 || vi.DocCount == 0 {
		return 0
	}
	return math.Log(1 + float64(vi.DocCount)/float64(df))
}

// QueryVector builds the normalized TF-IDF vector for a bag of query
// grams, weighted with the corpus document frequencies. Returns nil when
// no gram is known to the corpus.
func (vi *VectorIndex) QueryVector(terms []string) Vector {
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t]++
	}
	vec := make(Vector, len(counts))
	for term, tf := range counts {
		if w := float64(tf) * vi.idf(term); w > 0 {
			vec[term] = w
		}
	}
	if len(vec) == 0 {
		return nil
	}
	normalize(vec)
	return vec
}

// normalize scales vec to unit length, summing in sorted term order for
// reproducible rounding.
func normalize(vec Vector) {
	var norm float64
	terms := sortedTerms(vec)
	for _, term := range terms {
		norm += vec[term] * vec[term]
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for _, term := range terms {
		vec[term] /= norm
	}
}

// Similarity returns the cosine similarity between the stored vector of
// id and the query vector, or 0 when either is absent.
func (vi *VectorIndex) Similarity(id uint32, q Vector) float64 {
	if q == nil {
		return 0
	}
	doc, ok := vi.Docs[id]
	if !ok {
		return 0
	}
	return Cosine(doc, q)
}

// vectorBuilder accumulates per-document gram counts and produces a
// VectorIndex once the corpus is complete.
type vectorBuilder struct {
	df   map[string]int
	docs map[uint32]map[string]int
}

func newVectorBuilder() *vectorBuilder {
	return &vectorBuilder{
		df:   make(map[string]int),
		docs: make(map[uint32]map[string]int),
	}
}

func (vb *vectorBuilder) add(id uint32, terms []string) {
	counts, ok := vb.docs[id]
	if !ok {
		counts = make(map[string]int, len(terms))
		vb.docs[id] = counts
	}
	for _, t := range terms {
		if counts[t] == 0 {
			vb.df[t]++
		}
		counts[t]++
	}
}

func (vb *vectorBuilder) build() *VectorIndex {
	vi := &VectorIndex{
		DocCount: len(vb.docs),
		DF:       vb.df,
		Docs:     make(map[uint32]Vector, len(vb.docs)),
	}
	for id, counts := range vb.docs {
		vec := make(Vector, len(counts))
		for term, tf := range counts {
			if w := float64(tf) * vi.idf(term); w > 0 {
				vec[term] = w
			}
		}
		normalize(vec)
		vi.Docs[id] = vec
	}
	return vi
}
