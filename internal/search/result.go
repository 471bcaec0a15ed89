// Package search is the query-facing facade: it plans a raw query, fans
// the sub-queries out per entry kind against the current index snapshot,
// merges the ranked candidates and shapes the final paginated result.
package search

import (
	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/japanese"
	"github.com/kotoba-dict/kotoba/internal/query"
)

// Request is one search call.
type Request struct {
	Query string
	// Kinds restricts the entry kinds consulted; empty means all.
	Kinds  []index.Kind
	Mode   query.Mode
	Offset int
	Limit  int
}

// Highlight is a byte range of the headword that matches the query.
type Highlight struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Item is one entry of the final result list.
type Item struct {
	Kind     string  `json:"kind"`
	ID       uint32  `json:"id"`
	Headword string  `json:"headword"`
	Reading  string  `json:"reading,omitempty"`
	Score    float64 `json:"score"`
	// Glosses carries word senses or kanji meanings.
	Glosses []string `json:"glosses,omitempty"`
	// Translation is set for sentence entries.
	Translation string                  `json:"translation,omitempty"`
	Furigana    []japanese.FuriganaPair `json:"furigana,omitempty"`
	Highlights  []Highlight             `json:"highlights,omitempty"`
}

// Result is the final, paginated response of one search.
type Result struct {
	Query string `json:"query"`
	// Total is the exact candidate count before truncation, summed
	// over the consulted kinds.
	Total   int    `json:"total"`
	Items   []Item `json:"items"`
	HasMore bool   `json:"has_more"`
	// Degraded marks a partial result: at least one sub-query timed
	// out and was excluded from the merge.
	Degraded bool `json:"degraded,omitempty"`
	// TimedOut lists the entry kinds whose sub-queries were excluded.
	TimedOut []string `json:"timed_out,omitempty"`
	// SnapshotVersion identifies the index build that served the query.
	SnapshotVersion uint32 `json:"snapshot_version"`
}
