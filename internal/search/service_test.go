package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/japanese"
	"github.com/kotoba-dict/kotoba/internal/query"
	"github.com/kotoba-dict/kotoba/pkg/config"
	apperrors "github.com/kotoba-dict/kotoba/pkg/errors"
)

func testSnapshot(t *testing.T) *index.Snapshot {
	t.Helper()
	b := index.NewBuilder(2).WithVersion(1)

	require.NoError(t, b.Add(&index.WordEntry{
		EntryID: 42,
		Written: "食べる",
		Reading: "たべる",
		Senses:  []index.Sense{{Glosses: []string{"to eat"}, Lang: "en"}},
		Freq:    0.9,
		Common:  true,
	}))
	require.NoError(t, b.Add(&index.WordEntry{
		EntryID: 43,
		Written: "食べ物",
		Reading: "たべもの",
		Senses:  []index.Sense{{Glosses: []string{"food"}, Lang: "en"}},
		Freq:    0.8,
	}))
	require.NoError(t, b.Add(&index.WordEntry{
		EntryID: 44,
		Written: "飲む",
		Reading: "のむ",
		Senses:  []index.Sense{{Glosses: []string{"to drink"}, Lang: "en"}},
		Freq:    0.85,
	}))
	require.NoError(t, b.Add(&index.KanjiEntry{
		EntryID:     1,
		Literal:     "食",
		OnReadings:  []string{"ショク"},
		KunReadings: []string{"た.べる", "く.う"},
		Meanings:    []string{"eat", "food"},
		Freq:        0.7,
	}))
	require.NoError(t, b.Add(&index.KanjiEntry{
		EntryID:     2,
		Literal:     "飲",
		OnReadings:  []string{"イン"},
		KunReadings: []string{"の.む"},
		Meanings:    []string{"drink"},
		Freq:        0.6,
	}))
	require.NoError(t, b.Add(&index.NameEntry{
		EntryID: 1,
		Written: "田中",
		Reading: "たなか",
		Romaji:  "Tanaka",
		Freq:    0.5,
	}))
	require.NoError(t, b.Add(&index.SentenceEntry{
		EntryID:     1,
		Japanese:    "毎日寿司を食べる",
		Translation: "I eat sushi every day",
		Lang:        "en",
		Lemmas:      []string{"毎日", "寿司", "食べる"},
		Freq:        0.1,
	}))
	return b.Build()
}

func testService(t *testing.T, snap *index.Snapshot) *Service {
	t.Helper()
	cfg := config.SearchConfig{
		TopK:            100,
		DefaultLimit:    20,
		MaxResults:      50,
		KindQuota:       5,
		SubQueryTimeout: time.Second,
		QueryTimeout:    2 * time.Second,
	}
	return NewService(index.NewHandle(snap), query.NewPlanner(nil), nil, nil, cfg)
}

func TestSearchExactWord(t *testing.T) {
	svc := testService(t, testSnapshot(t))

	result, err := svc.Search(context.Background(), Request{
		Query: "食べる",
		Kinds: []index.Kind{index.KindWord},
		Mode:  query.ModeExact,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Items)

	first := result.Items[0]
	assert.Equal(t, uint32(42), first.ID)
	assert.Equal(t, "word", first.Kind)
	assert.Equal(t, "食べる", first.Headword)
	assert.Equal(t, "たべる", first.Reading)
	assert.Equal(t, []japanese.FuriganaPair{
		{Written: "食", Reading: "た"},
		{Written: "べる", Reading: "べる"},
	}, first.Furigana)
	assert.False(t, result.Degraded)
}

func TestSearchPartialScoresBelowExact(t *testing.T) {
	svc := testService(t, testSnapshot(t))
	ctx := context.Background()

	exact, err := svc.Search(ctx, Request{
		Query: "食べる", Kinds: []index.Kind{index.KindWord}, Mode: query.ModeExact,
	})
	require.NoError(t, err)
	partial, err := svc.Search(ctx, Request{
		Query: "食べ", Kinds: []index.Kind{index.KindWord}, Mode: query.ModePartial,
	})
	require.NoError(t, err)

	require.NotEmpty(t, exact.Items)
	require.NotEmpty(t, partial.Items)

	var partial42 *Item
	for i := range partial.Items {
		if partial.Items[i].ID == 42 {
			partial42 = &partial.Items[i]
		}
	}
	require.NotNil(t, partial42, "prefix query must still surface the entry")
	assert.Less(t, partial42.Score, exact.Items[0].Score)
}

func TestSearchExactModeFiltersNonExact(t *testing.T) {
	svc := testService(t, testSnapshot(t))

	result, err := svc.Search(context.Background(), Request{
		Query: "食べ", Kinds: []index.Kind{index.KindWord}, Mode: query.ModeExact,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.Total)
}

func TestSearchAllKinds(t *testing.T) {
	svc := testService(t, testSnapshot(t))

	result, err := svc.Search(context.Background(), Request{Query: "食べる"})
	require.NoError(t, err)

	kinds := make(map[string]bool)
	for _, item := range result.Items {
		kinds[item.Kind] = true
	}
	assert.True(t, kinds["word"])
	assert.True(t, kinds["sentence"], "sentence containing the word must surface")
}

func TestSearchRomaji(t *testing.T) {
	svc := testService(t, testSnapshot(t))

	result, err := svc.Search(context.Background(), Request{
		Query: "taberu", Kinds: []index.Kind{index.KindWord}, Mode: query.ModeExact,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Items)
	assert.Equal(t, uint32(42), result.Items[0].ID)
}

func TestSearchGloss(t *testing.T) {
	svc := testService(t, testSnapshot(t))

	result, err := svc.Search(context.Background(), Request{
		Query: "to eat", Kinds: []index.Kind{index.KindWord}, Mode: query.ModeExact,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Items)
	assert.Equal(t, uint32(42), result.Items[0].ID)
}

func TestSearchKanjiReadingPair(t *testing.T) {
	svc := testService(t, testSnapshot(t))

	result, err := svc.Search(context.Background(), Request{
		Query: "食 た", Kinds: []index.Kind{index.KindKanji},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "食", result.Items[0].Headword)

	// A reading the kanji does not carry filters it out.
	result, err = svc.Search(context.Background(), Request{
		Query: "食 の", Kinds: []index.Kind{index.KindKanji},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestSearchInvalidQuery(t *testing.T) {
	svc := testService(t, testSnapshot(t))

	_, err := svc.Search(context.Background(), Request{Query: ""})
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)

	_, err = svc.Search(context.Background(), Request{Query: "「」"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)
}

func TestSearchNoSnapshot(t *testing.T) {
	svc := testService(t, nil)
	_, err := svc.Search(context.Background(), Request{Query: "たべる"})
	assert.ErrorIs(t, err, apperrors.ErrIndexLoad)
}

func TestSearchIdempotent(t *testing.T) {
	svc := testService(t, testSnapshot(t))
	ctx := context.Background()
	req := Request{Query: "たべ", Mode: query.ModePartial}

	first, err := svc.Search(ctx, req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.Search(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearchPaginationConsistency(t *testing.T) {
	b := index.NewBuilder(2).WithVersion(1)
	for id := uint32(1); id <= 30; id++ {
		require.NoError(t, b.Add(&index.WordEntry{
			EntryID: id,
			Written: "食べる",
			Reading: "たべる",
			Freq:    float64(id) / 100,
		}))
	}
	svc := testService(t, b.Build())
	ctx := context.Background()

	page1, err := svc.Search(ctx, Request{Query: "たべる", Kinds: []index.Kind{index.KindWord}, Limit: 10})
	require.NoError(t, err)
	page2, err := svc.Search(ctx, Request{Query: "たべる", Kinds: []index.Kind{index.KindWord}, Offset: 10, Limit: 10})
	require.NoError(t, err)
	all, err := svc.Search(ctx, Request{Query: "たべる", Kinds: []index.Kind{index.KindWord}, Limit: 20})
	require.NoError(t, err)

	require.Len(t, page1.Items, 10)
	require.Len(t, page2.Items, 10)
	require.Len(t, all.Items, 20)
	assert.Equal(t, all.Items[:10], page1.Items)
	assert.Equal(t, all.Items[10:], page2.Items)
	assert.True(t, page1.HasMore)
}

func TestSearchTopKBoundsResults(t *testing.T) {
	b := index.NewBuilder(2).WithVersion(1)
	for id := uint32(1); id <= 30; id++ {
		require.NoError(t, b.Add(&index.WordEntry{
			EntryID: id, Written: "食べる", Reading: "たべる", Freq: float64(id) / 100,
		}))
	}
	cfg := config.SearchConfig{
		TopK: 5, DefaultLimit: 20, MaxResults: 50, KindQuota: 5,
		SubQueryTimeout: time.Second, QueryTimeout: 2 * time.Second,
	}
	svc := NewService(index.NewHandle(b.Build()), query.NewPlanner(nil), nil, nil, cfg)

	result, err := svc.Search(context.Background(), Request{
		Query: "たべる", Kinds: []index.Kind{index.KindWord}, Limit: 20,
	})
	require.NoError(t, err)
	// Total reflects the full candidate set even though only top-K
	// survive for paging.
	assert.Equal(t, 30, result.Total)
	assert.Len(t, result.Items, 5)
	// The K retained are the highest-frequency ones.
	assert.Equal(t, uint32(30), result.Items[0].ID)
}

func TestSearchSnapshotSwapDoesNotAffectInFlight(t *testing.T) {
	snap := testSnapshot(t)
	handle := index.NewHandle(snap)
	cfg := config.SearchConfig{
		TopK: 100, DefaultLimit: 20, MaxResults: 50, KindQuota: 5,
		SubQueryTimeout: time.Second, QueryTimeout: 2 * time.Second,
	}
	svc := NewService(handle, query.NewPlanner(nil), nil, nil, cfg)
	ctx := context.Background()

	before, err := svc.Search(ctx, Request{Query: "食べる", Kinds: []index.Kind{index.KindWord}})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), before.SnapshotVersion)

	// Swap in an empty build; new queries see it, the old result stands.
	handle.Swap(index.NewBuilder(2).WithVersion(2).Build())

	after, err := svc.Search(ctx, Request{Query: "食べる", Kinds: []index.Kind{index.KindWord}})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), after.SnapshotVersion)
	assert.Empty(t, after.Items)
	assert.NotEmpty(t, before.Items)
}

// denseSnapshot builds a snapshot big enough that scoring a partial
// query takes measurable time, so a nanosecond budget reliably expires
// before the sub-query finishes.
func denseSnapshot(t *testing.T, n int) *index.Snapshot {
	t.Helper()
	syllables := []string{"か", "き", "く", "け", "こ", "さ", "し", "す", "せ", "そ"}
	b := index.NewBuilder(2).WithVersion(1)
	for i := 0; i < n; i++ {
		reading := "たべ"
		for v := i; v > 0; v /= len(syllables) {
			reading += syllables[v%len(syllables)]
		}
		require.NoError(t, b.Add(&index.WordEntry{
			EntryID: uint32(i + 1),
			Written: reading,
			Reading: reading,
			Freq:    0.5,
		}))
	}
	return b.Build()
}

func TestSearchSubQueryTimeoutDegrades(t *testing.T) {
	cfg := config.SearchConfig{
		TopK: 100, DefaultLimit: 20, MaxResults: 50, KindQuota: 5,
		SubQueryTimeout: time.Nanosecond,
		QueryTimeout:    time.Minute,
	}
	svc := NewService(index.NewHandle(denseSnapshot(t, 5000)), query.NewPlanner(nil), nil, nil, cfg)

	result, err := svc.Search(context.Background(), Request{
		Query: "たべ",
		Kinds: []index.Kind{index.KindWord},
		Mode:  query.ModePartial,
	})
	require.NoError(t, err)
	// The overrun is reported as metadata, not as a failure.
	assert.True(t, result.Degraded)
	assert.Equal(t, []string{"word"}, result.TimedOut)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.Total)
}

func TestSearchQueryBudgetDegrades(t *testing.T) {
	cfg := config.SearchConfig{
		TopK: 100, DefaultLimit: 20, MaxResults: 50, KindQuota: 5,
		SubQueryTimeout: time.Minute,
		QueryTimeout:    time.Nanosecond,
	}
	svc := NewService(index.NewHandle(denseSnapshot(t, 5000)), query.NewPlanner(nil), nil, nil, cfg)

	// The per-query budget expires while the sub-query is still running;
	// the merge excludes it instead of waiting out SubQueryTimeout.
	result, err := svc.Search(context.Background(), Request{
		Query: "たべ",
		Kinds: []index.Kind{index.KindWord},
		Mode:  query.ModePartial,
	})
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Contains(t, result.TimedOut, "word")
	assert.Empty(t, result.Items)
}

func TestReloadIndex(t *testing.T) {
	snap := testSnapshot(t)
	dir := t.TempDir()
	path := dir + "/index.ktb"
	require.NoError(t, index.SaveFile(path, snap))

	svc := testService(t, nil)
	require.Error(t, svc.ReloadIndex(context.Background(), dir+"/missing.ktb"))

	require.NoError(t, svc.ReloadIndex(context.Background(), path))
	require.NotNil(t, svc.Snapshot())
	assert.Equal(t, snap.Version, svc.Snapshot().Version)
}
