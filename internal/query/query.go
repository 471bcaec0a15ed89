// Package query turns raw user input into structured sub-queries, one
// per requested entry kind, selecting probe texts based on the input's
// script composition.
package query

import (
	"fmt"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/japanese"
)

// Mode selects how strictly candidates must match.
type Mode uint8

const (
	// ModeExact surfaces entries whose normalized text equals the query.
	ModeExact Mode = iota + 1
	// ModePartial additionally surfaces prefix and substring matches.
	ModePartial
	// ModeFuzzy widens candidate retrieval to any-gram matches and
	// leans on vector similarity.
	ModeFuzzy
)

func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModePartial:
		return "partial"
	case ModeFuzzy:
		return "fuzzy"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode parses the string form produced by String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "exact":
		return ModeExact, nil
	case "partial":
		return ModePartial, nil
	case "fuzzy":
		return ModeFuzzy, nil
	}
	return 0, fmt.Errorf("unknown search mode %q", s)
}

// SubQuery is one unit of retrieval work: a probe against a single
// entry kind's indexes. Sub-queries of a plan execute independently.
type SubQuery struct {
	Kind index.Kind
	// Text is the normalized probe; candidates must contain its grams.
	Text string
	// Mode is inherited from the plan.
	Mode Mode
	// ReadingFilter restricts kanji candidates to those carrying this
	// reading. Set for paired kanji-reading queries ("食 た").
	ReadingFilter string
	// Lemmas are dictionary base forms extracted from sentence-like
	// input; sentence candidates may match on them as well as on Text.
	Lemmas []string
}

// Plan is the full structured form of one search request.
type Plan struct {
	Raw        string
	Normalized string
	Script     japanese.Script
	Mode       Mode
	SubQueries []SubQuery
}
