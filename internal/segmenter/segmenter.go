// Package segmenter wraps morphological analysis of Japanese sentence text:
// kagome tokenization with reading extraction, and sentence splitting that
// respects quoting brackets.
package segmenter

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/kotoba-dict/kotoba/internal/japanese"
)

// Token is one morpheme of a segmented sentence.
type Token struct {
	// Surface is the form as written in the sentence.
	Surface string `json:"surface"`
	// Reading is the hiragana reading of the surface, or the surface
	// itself when the dictionary has no reading for it.
	Reading string `json:"reading,omitempty"`
	// Lemma is the dictionary base form ("食べ" -> "食べる").
	Lemma string `json:"lemma,omitempty"`
	// Class is the coarse part-of-speech tag.
	Class string `json:"class,omitempty"`
}

// Segmenter produces morpheme tokens from Japanese text. Safe for
// concurrent use.
type Segmenter struct {
	tok *tokenizer.Tokenizer
}

// New builds a Segmenter backed by the bundled IPA dictionary.
func New() (*Segmenter, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Segmenter{tok: t}, nil
}

// Tokens segments text into morphemes. Whitespace tokens are dropped and
// katakana dictionary readings are folded to hiragana.
func (s *Segmenter) Tokens(text string) []Token {
	ktoks := s.tok.Analyze(text, tokenizer.Search)
	out := make([]Token, 0, len(ktoks))
	for _, kt := range ktoks {
		if kt.Class == tokenizer.DUMMY || strings.TrimSpace(kt.Surface) == "" {
			continue
		}
		lemma, ok := kt.BaseForm()
		if !ok || lemma == "" || lemma == "*" {
			lemma = kt.Surface
		}
		reading, ok := kt.Reading()
		if !ok || reading == "" || reading == "*" {
			reading = kt.Surface
		}
		class := ""
		if pos := kt.POS(); len(pos) > 0 {
			class = pos[0]
		}
		out = append(out, Token{
			Surface: kt.Surface,
			Reading: japanese.KatakanaToHiragana(reading),
			Lemma:   lemma,
			Class:   class,
		})
	}
	return out
}

// Furigana derives display furigana for text from the analyzer readings:
// each kanji-bearing token is aligned with its dictionary reading, other
// tokens map to themselves.
func (s *Segmenter) Furigana(text string) []japanese.FuriganaPair {
	var pairs []japanese.FuriganaPair
	for _, t := range s.Tokens(text) {
		if japanese.HasKanji(t.Surface) && t.Reading != "" {
			pairs = append(pairs, japanese.AlignFurigana(t.Surface, t.Reading)...)
			continue
		}
		pairs = append(pairs, japanese.FuriganaPair{Written: t.Surface, Reading: t.Surface})
	}
	return pairs
}

// Lemmas returns the distinct dictionary base forms of text, in first-seen
// order. Used to index sentences under the words they contain.
func (s *Segmenter) Lemmas(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range s.Tokens(text) {
		if _, ok := seen[t.Lemma]; ok {
			continue
		}
		seen[t.Lemma] = struct{}{}
		out = append(out, t.Lemma)
	}
	return out
}
