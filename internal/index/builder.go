package index

import (
	"fmt"
	"time"
)

// Builder accumulates entries and produces an immutable Snapshot. Not
// safe for concurrent use; build single-threaded, then share the result.
type Builder struct {
	n       int
	version uint32
	kinds   map[Kind]*kindBuilder
}

type kindBuilder struct {
	entries map[uint32]Entry
	grams   *GramIndex
	vectors *vectorBuilder
}

// NewBuilder returns a Builder indexing n-character grams.
func NewBuilder(n int) *Builder {
	return &Builder{
		n:     n,
		kinds: make(map[Kind]*kindBuilder),
	}
}

// WithVersion pins the snapshot version. Without it the build timestamp
// is used.
func (b *Builder) WithVersion(v uint32) *Builder {
	b.version = v
	return b
}

// Add indexes one entry. Adding a second entry with the same kind and ID
// is an error; IDs must be assigned uniquely by the data source.
func (b *Builder) Add(e Entry) error {
	kb, ok := b.kinds[e.Kind()]
	if !ok {
		kb = &kindBuilder{
			entries: make(map[uint32]Entry),
			grams:   NewGramIndex(b.n),
			vectors: newVectorBuilder(),
		}
		b.kinds[e.Kind()] = kb
	}
	if _, dup := kb.entries[e.ID()]; dup {
		return fmt.Errorf("duplicate %s entry id %d", e.Kind(), e.ID())
	}
	kb.entries[e.ID()] = e
	for _, text := range e.SearchTexts() {
		if text == "" {
			continue
		}
		kb.grams.Add(e.ID(), text)
		kb.vectors.add(e.ID(), Grams(text, b.n))
	}
	return nil
}

// Build finalizes the accumulated entries into a Snapshot.
func (b *Builder) Build() *Snapshot {
	now := time.Now()
	version := b.version
	if version == 0 {
		version = uint32(now.Unix())
	}
	snap := &Snapshot{
		Version: version,
		BuiltAt: now,
		Kinds:   make(map[Kind]*KindIndex, len(b.kinds)),
	}
	for kind, kb := range b.kinds {
		snap.Kinds[kind] = &KindIndex{
			Entries: kb.entries,
			Grams:   kb.grams,
			Vectors: kb.vectors.build(),
		}
	}
	return snap
}
