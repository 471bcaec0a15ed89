package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDuplicateID(t *testing.T) {
	b := NewBuilder(2)
	require.NoError(t, b.Add(&WordEntry{EntryID: 1, Reading: "たべる"}))
	assert.Error(t, b.Add(&WordEntry{EntryID: 1, Reading: "のむ"}))
	// Same ID under another kind is fine.
	assert.NoError(t, b.Add(&KanjiEntry{EntryID: 1, Literal: "食"}))
}

func TestBuilderVersionDefaultsToTimestamp(t *testing.T) {
	snap := NewBuilder(2).Build()
	assert.NotZero(t, snap.Version)
	assert.False(t, snap.BuiltAt.IsZero())
}

func TestSnapshotMissingKind(t *testing.T) {
	snap := NewBuilder(2).Build()
	_, ok := snap.Entry(KindName, 1)
	assert.False(t, ok)
	assert.Nil(t, snap.Candidates(KindName, "やまだ"))
	assert.Equal(t, 0, snap.Count(KindName))
}

func TestHandleSwap(t *testing.T) {
	first := NewBuilder(2).WithVersion(1).Build()
	second := NewBuilder(2).WithVersion(2).Build()

	h := NewHandle(first)
	assert.Equal(t, uint32(1), h.Current().Version)

	old := h.Swap(second)
	assert.Equal(t, uint32(1), old.Version)
	assert.Equal(t, uint32(2), h.Current().Version)
}

func TestHandleConcurrentReaders(t *testing.T) {
	h := NewHandle(NewBuilder(2).WithVersion(1).Build())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snap := h.Current()
				// A reader must always see a complete snapshot.
				assert.NotNil(t, snap)
				assert.NotZero(t, snap.Version)
			}
		}()
	}
	for v := uint32(2); v < 10; v++ {
		h.Swap(NewBuilder(2).WithVersion(v).Build())
	}
	wg.Wait()
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("verb")
	assert.Error(t, err)
}
