package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/japanese"
	apperrors "github.com/kotoba-dict/kotoba/pkg/errors"
)

func TestPlanAllKinds(t *testing.T) {
	p := NewPlanner(nil)
	plan, err := p.Plan("食べる", nil, ModePartial)
	require.NoError(t, err)

	assert.Equal(t, "食べる", plan.Normalized)
	assert.Equal(t, japanese.ScriptJapanese, plan.Script)
	require.Len(t, plan.SubQueries, 4)
	kinds := make([]index.Kind, 0, 4)
	for _, sq := range plan.SubQueries {
		kinds = append(kinds, sq.Kind)
		assert.Equal(t, "食べる", sq.Text)
		assert.Equal(t, ModePartial, sq.Mode)
	}
	assert.Equal(t, index.Kinds(), kinds)
}

func TestPlanRomajiTransliterated(t *testing.T) {
	p := NewPlanner(nil)
	plan, err := p.Plan("taberu", []index.Kind{index.KindWord}, ModeExact)
	require.NoError(t, err)
	assert.Equal(t, "たべる", plan.Normalized)
	assert.Equal(t, japanese.ScriptRomaji, plan.Script)
}

func TestPlanGlossKeptAsLatin(t *testing.T) {
	p := NewPlanner(nil)
	plan, err := p.Plan("To Eat", []index.Kind{index.KindWord}, ModePartial)
	require.NoError(t, err)
	assert.Equal(t, "to eat", plan.Normalized)
}

func TestPlanKanjiReadingPair(t *testing.T) {
	p := NewPlanner(nil)
	plan, err := p.Plan("食 た", []index.Kind{index.KindKanji}, ModePartial)
	require.NoError(t, err)

	require.Len(t, plan.SubQueries, 1)
	sq := plan.SubQueries[0]
	assert.Equal(t, index.KindKanji, sq.Kind)
	assert.Equal(t, "食", sq.Text)
	assert.Equal(t, "た", sq.ReadingFilter)
}

func TestPlanKanjiReadingPairFoldsKatakana(t *testing.T) {
	p := NewPlanner(nil)
	plan, err := p.Plan("食 ショク", []index.Kind{index.KindKanji}, ModePartial)
	require.NoError(t, err)
	assert.Equal(t, "しょく", plan.SubQueries[0].ReadingFilter)
}

func TestPlanInvalid(t *testing.T) {
	p := NewPlanner(nil)

	_, err := p.Plan("", nil, ModePartial)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)

	_, err = p.Plan("   ", nil, ModePartial)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)

	_, err = p.Plan("「」", nil, ModePartial)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)
}

func TestPlanDefaults(t *testing.T) {
	p := NewPlanner(nil)
	plan, err := p.Plan("たべる", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, ModePartial, plan.Mode)
	assert.Len(t, plan.SubQueries, 4)
}

func TestSplitKanjiReading(t *testing.T) {
	tests := []struct {
		input   string
		kanji   string
		reading string
		ok      bool
	}{
		{"食 た", "食", "た", true},
		{"水 ミズ", "水", "ミズ", true},
		{"食べる た", "", "", false},
		{"た 食", "", "", false},
		{"食 eat", "", "", false},
		{"食", "", "", false},
		{"食 た た", "", "", false},
	}
	for _, tt := range tests {
		kanji, reading, ok := splitKanjiReading(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.Equal(t, tt.kanji, kanji, tt.input)
		assert.Equal(t, tt.reading, reading, tt.input)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeExact, ModePartial, ModeFuzzy} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("approximate")
	assert.Error(t, err)
}
