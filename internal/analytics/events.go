// Package analytics tracks query traffic: the search service emits one
// event per query to Kafka, and the aggregator consumes the stream into
// live usage statistics (top queries, zero-result queries, latency
// percentiles).
package analytics

import "time"

// QueryEvent is one completed search, published to the query-events
// topic.
type QueryEvent struct {
	Query     string    `json:"query"`
	Script    string    `json:"script"`
	Mode      string    `json:"mode"`
	Kinds     []string  `json:"kinds,omitempty"`
	Total     int       `json:"total"`
	Returned  int       `json:"returned"`
	Degraded  bool      `json:"degraded,omitempty"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyMs int64     `json:"latency_ms"`
	QueryID   string    `json:"query_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
