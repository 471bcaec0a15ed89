package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrams(t *testing.T) {
	assert.Equal(t, []string{"たべ", "べる"}, Grams("たべる", 2))
	assert.Equal(t, []string{"た"}, Grams("た", 2))
	assert.Equal(t, []string{"たべ"}, Grams("たべ", 2))
	assert.Nil(t, Grams("", 2))
	// Duplicates collapse.
	assert.Equal(t, []string{"ああ"}, Grams("あああ", 2))
}

func TestGramIndexCandidates(t *testing.T) {
	g := NewGramIndex(2)
	g.Add(1, "たべる")
	g.Add(2, "たべもの")
	g.Add(3, "のむ")

	assert.Equal(t, []uint32{1, 2}, g.Candidates("たべ").ToArray())
	assert.Equal(t, []uint32{1}, g.Candidates("たべる").ToArray())
	assert.True(t, g.Candidates("すし").IsEmpty())
	// Single-rune queries fall back to 1-gram postings.
	assert.Equal(t, []uint32{1, 2}, g.Candidates("た").ToArray())
}

func TestGramIndexCandidatesAny(t *testing.T) {
	g := NewGramIndex(2)
	g.Add(1, "たべる")
	g.Add(2, "のめる")

	// "たむ" matches nothing conjunctively but widens to both grams.
	assert.True(t, g.Candidates("たべのめ").IsEmpty())
	assert.Equal(t, []uint32{1, 2}, g.CandidatesAny("たべのめ").ToArray())
	assert.True(t, g.CandidatesAny("すし").IsEmpty())
}
