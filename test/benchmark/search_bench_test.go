// Package benchmark contains Go benchmarks for the index retrieval
// primitives and the full search pipeline, measuring throughput and
// allocation behaviour.
package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/query"
	"github.com/kotoba-dict/kotoba/internal/search"
	"github.com/kotoba-dict/kotoba/pkg/config"
)

var syllables = []string{
	"あ", "い", "う", "え", "お", "か", "き", "く", "け", "こ",
	"さ", "し", "す", "せ", "そ", "た", "ち", "つ", "て", "と",
	"な", "に", "ぬ", "ね", "の", "は", "ひ", "ふ", "へ", "ほ",
	"ま", "み", "む", "め", "も", "や", "ゆ", "よ", "ら", "り",
}

// syntheticReading derives a pseudo-random kana string from id so the
// corpus has a realistic spread of shared and unique grams.
func syntheticReading(id, length int) string {
	var b bytes.Buffer
	x := id*2654435761 + 1
	for i := 0; i < length; i++ {
		b.WriteString(syllables[x%len(syllables)])
		x = x*1103515245 + 12345
		if x < 0 {
			x = -x
		}
	}
	return b.String()
}

func buildSnapshot(b *testing.B, n int) *index.Snapshot {
	b.Helper()
	builder := index.NewBuilder(2).WithVersion(1)
	for id := 1; id <= n; id++ {
		err := builder.Add(&index.WordEntry{
			EntryID: uint32(id),
			Written: syntheticReading(id, 3),
			Reading: syntheticReading(id, 4),
			Senses:  []index.Sense{{Glosses: []string{fmt.Sprintf("gloss %d", id)}, Lang: "en"}},
			Freq:    float64(id%1000) / 1000,
		})
		if err != nil {
			b.Fatalf("adding entry: %v", err)
		}
	}
	return builder.Build()
}

// BenchmarkSnapshotCandidates measures conjunctive n-gram candidate
// retrieval over a 50 000 entry corpus.
func BenchmarkSnapshotCandidates(b *testing.B) {
	snap := buildSnapshot(b, 50000)
	probe := syntheticReading(4242, 4)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ids := snap.Candidates(index.KindWord, probe)
		_ = ids
	}
}

// BenchmarkSnapshotQueryVector measures building a weighted query vector
// plus one similarity evaluation.
func BenchmarkSnapshotQueryVector(b *testing.B) {
	snap := buildSnapshot(b, 50000)
	probe := syntheticReading(4242, 4)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vec := snap.QueryVector(index.KindWord, probe)
		_ = snap.Similarity(index.KindWord, 4242, vec)
	}
}

func benchService(b *testing.B, n int) *search.Service {
	b.Helper()
	cfg := config.SearchConfig{
		TopK:            500,
		DefaultLimit:    20,
		MaxResults:      100,
		KindQuota:       5,
		SubQueryTimeout: time.Second,
		QueryTimeout:    5 * time.Second,
	}
	return search.NewService(index.NewHandle(buildSnapshot(b, n)), query.NewPlanner(nil), nil, nil, cfg)
}

// BenchmarkSearch measures end-to-end query latency (plan, fan-out,
// score, merge) without cache or network.
func BenchmarkSearch(b *testing.B) {
	for _, n := range []int{1000, 10000, 50000} {
		b.Run(fmt.Sprintf("corpus-%d", n), func(b *testing.B) {
			svc := benchService(b, n)
			ctx := context.Background()
			probe := syntheticReading(42, 3)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := svc.Search(ctx, search.Request{
					Query: probe,
					Kinds: []index.Kind{index.KindWord},
				})
				if err != nil {
					b.Fatalf("search: %v", err)
				}
			}
		})
	}
}

// BenchmarkSearchParallel measures concurrent read throughput against a
// single shared snapshot.
func BenchmarkSearchParallel(b *testing.B) {
	svc := benchService(b, 50000)
	ctx := context.Background()
	probe := syntheticReading(42, 3)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, err := svc.Search(ctx, search.Request{
				Query: probe,
				Kinds: []index.Kind{index.KindWord},
			})
			if err != nil {
				b.Fatalf("search: %v", err)
			}
		}
	})
}

// BenchmarkSnapshotEncode measures serialising a 10 000 entry snapshot.
func BenchmarkSnapshotEncode(b *testing.B) {
	snap := buildSnapshot(b, 10000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if err := index.WriteSnapshot(&buf, snap); err != nil {
			b.Fatalf("encode: %v", err)
		}
	}
}

// BenchmarkSnapshotDecode measures loading the serialised form back.
func BenchmarkSnapshotDecode(b *testing.B) {
	snap := buildSnapshot(b, 10000)
	var buf bytes.Buffer
	if err := index.WriteSnapshot(&buf, snap); err != nil {
		b.Fatalf("encode: %v", err)
	}
	data := buf.Bytes()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := index.ReadSnapshot(bytes.NewReader(data)); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}
