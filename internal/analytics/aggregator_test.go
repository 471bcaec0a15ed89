package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(query string, total int, latency int64, cacheHit, degraded bool) QueryEvent {
	return QueryEvent{
		Query:     query,
		Script:    "hiragana",
		Mode:      "partial",
		Total:     total,
		Returned:  min(total, 20),
		CacheHit:  cacheHit,
		Degraded:  degraded,
		LatencyMs: latency,
		Timestamp: time.Now().UTC(),
	}
}

func TestAggregatorRecord(t *testing.T) {
	agg := NewAggregator()
	agg.Record(event("たべる", 10, 5, false, false))
	agg.Record(event("たべる", 10, 3, true, false))
	agg.Record(event("ぞんざい", 0, 8, false, true))

	stats := agg.Stats()
	assert.Equal(t, int64(3), stats.TotalQueries)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(2), stats.CacheMisses)
	assert.Equal(t, int64(1), stats.ZeroResultCount)
	assert.Equal(t, int64(1), stats.DegradedCount)
	assert.Equal(t, int64(3), stats.QueriesByScript["hiragana"])

	require.NotEmpty(t, stats.TopQueries)
	assert.Equal(t, "たべる", stats.TopQueries[0].Query)
	assert.Equal(t, int64(2), stats.TopQueries[0].Count)

	require.Len(t, stats.ZeroResultQueries, 1)
	assert.Equal(t, "ぞんざい", stats.ZeroResultQueries[0].Query)
}

func TestAggregatorLatencyPercentiles(t *testing.T) {
	agg := NewAggregator()
	for i := int64(1); i <= 100; i++ {
		agg.Record(event("q", 1, i, false, false))
	}
	stats := agg.Stats()
	assert.InDelta(t, 50.5, stats.AvgLatencyMs, 0.01)
	assert.Equal(t, int64(51), stats.P50LatencyMs)
	assert.Equal(t, int64(96), stats.P95LatencyMs)
	assert.Equal(t, int64(100), stats.P99LatencyMs)
}

func TestHandleEventDecodes(t *testing.T) {
	agg := NewAggregator()
	handler := HandleEvent(agg)

	payload, err := json.Marshal(event("すし", 4, 2, false, false))
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), nil, payload))
	assert.Equal(t, int64(1), agg.Stats().TotalQueries)

	// Garbage input is skipped without error so the consumer keeps going.
	require.NoError(t, handler(context.Background(), nil, []byte("not json")))
	assert.Equal(t, int64(1), agg.Stats().TotalQueries)
}

func TestTopNStableOrder(t *testing.T) {
	counts := map[string]int64{"b": 2, "a": 2, "c": 1}
	top := topN(counts, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].Query)
	assert.Equal(t, "b", top[1].Query)
}
