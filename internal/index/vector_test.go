package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildVectors(t *testing.T, docs map[uint32][]string) *VectorIndex {
	t.Helper()
	vb := newVectorBuilder()
	for id, terms := range docs {
		vb.add(id, terms)
	}
	return vb.build()
}

func TestVectorSimilarityOrdersByOverlap(t *testing.T) {
	vi := buildVectors(t, map[uint32][]string{
		1: {"たべ", "べる"},
		2: {"たべ", "べも", "もの"},
		3: {"のむ"},
	})

	q := vi.QueryVector([]string{"たべ", "べる"})
	assert.NotNil(t, q)

	full := vi.Similarity(1, q)
	partial := vi.Similarity(2, q)
	none := vi.Similarity(3, q)

	assert.Greater(t, full, partial)
	assert.Greater(t, partial, none)
	assert.Equal(t, 0.0, none)
	// Identical gram bag scores 1 up to float rounding.
	assert.InDelta(t, 1.0, full, 1e-9)
}

func TestQueryVectorUnknownTerms(t *testing.T) {
	vi := buildVectors(t, map[uint32][]string{1: {"たべ"}})
	assert.Nil(t, vi.QueryVector([]string{"すし"}))
	assert.Equal(t, 0.0, vi.Similarity(1, nil))
}

func TestDocVectorsAreNormalized(t *testing.T) {
	vi := buildVectors(t, map[uint32][]string{
		1: {"たべ", "べる", "たべ"},
		2: {"のむ"},
	})
	for id, vec := range vi.Docs {
		var norm float64
		for _, w := range vec {
			norm += w * w
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9, "doc %d", id)
	}
}

func TestCosineSymmetric(t *testing.T) {
	a := Vector{"x": 0.6, "y": 0.8}
	b := Vector{"y": 1.0}
	assert.InDelta(t, Cosine(a, b), Cosine(b, a), 1e-12)
	assert.InDelta(t, 0.8, Cosine(a, b), 1e-12)
}
