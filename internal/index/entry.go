// Package index holds the immutable search index: dictionary entries of
// four kinds, character n-gram posting lists for candidate retrieval, and
// TF-IDF document vectors for similarity scoring. A built Snapshot is
// read-only and swapped in atomically via Handle.
package index

import (
	"fmt"
	"strings"

	"github.com/kotoba-dict/kotoba/internal/japanese"
)

// Kind discriminates the entry types of the dictionary.
type Kind uint8

const (
	KindWord Kind = iota + 1
	KindKanji
	KindName
	KindSentence
)

// Kinds returns all entry kinds in canonical order.
func Kinds() []Kind {
	return []Kind{KindWord, KindKanji, KindName, KindSentence}
}

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindKanji:
		return "kanji"
	case KindName:
		return "name"
	case KindSentence:
		return "sentence"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind parses the string form produced by String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "word":
		return KindWord, nil
	case "kanji":
		return KindKanji, nil
	case "name":
		return KindName, nil
	case "sentence":
		return KindSentence, nil
	}
	return 0, fmt.Errorf("unknown entry kind %q", s)
}

// Entry is one indexed dictionary record. IDs are unique within a kind,
// not across kinds.
type Entry interface {
	ID() uint32
	Kind() Kind
	// Frequency is a popularity signal in [0, 1]; higher means more
	// common. Used for scoring and as the second tie-break key.
	Frequency() float64
	// Headword is the primary display form.
	Headword() string
	// SearchTexts returns the normalized texts the entry matches under.
	SearchTexts() []string
}

// NormalizeText folds an indexable text into canonical matching form:
// fullwidth ASCII to halfwidth, lowercase, katakana to hiragana. Queries
// go through the same fold, so matching is width-, case- and
// kana-insensitive.
func NormalizeText(s string) string {
	return japanese.KatakanaToHiragana(strings.ToLower(japanese.ToHalfwidth(s)))
}

// Sense is one meaning of a word, a group of glosses in one language.
type Sense struct {
	Glosses       []string
	PartsOfSpeech []string
	Lang          string
}

// WordEntry is a vocabulary entry: a written form, its kana reading,
// and glossed senses.
type WordEntry struct {
	EntryID  uint32
	Written  string
	Reading  string
	AltForms []string
	Senses   []Sense
	Freq     float64
	Common   bool
	JLPT     uint8
}

func (e *WordEntry) ID() uint32         { return e.EntryID }
func (e *WordEntry) Kind() Kind         { return KindWord }
func (e *WordEntry) Frequency() float64 { return e.Freq }

func (e *WordEntry) Headword() string {
	if e.Written != "" {
		return e.Written
	}
	return e.Reading
}

func (e *WordEntry) SearchTexts() []string {
	texts := make([]string, 0, 2+len(e.AltForms))
	if e.Written != "" {
		texts = append(texts, NormalizeText(e.Written))
	}
	if e.Reading != "" {
		texts = append(texts, NormalizeText(e.Reading))
	}
	for _, alt := range e.AltForms {
		texts = append(texts, NormalizeText(alt))
	}
	for _, s := range e.Senses {
		for _, g := range s.Glosses {
			texts = append(texts, NormalizeText(g))
		}
	}
	return texts
}

// Furigana aligns the written form with its reading.
func (e *WordEntry) Furigana() []japanese.FuriganaPair {
	return japanese.AlignFurigana(e.Written, e.Reading)
}

// KanjiEntry is a single character with its readings and meanings.
type KanjiEntry struct {
	EntryID     uint32
	Literal     string
	OnReadings  []string
	KunReadings []string
	Meanings    []string
	StrokeCount uint8
	Grade       uint8
	JLPT        uint8
	Freq        float64
}

func (e *KanjiEntry) ID() uint32         { return e.EntryID }
func (e *KanjiEntry) Kind() Kind         { return KindKanji }
func (e *KanjiEntry) Frequency() float64 { return e.Freq }
func (e *KanjiEntry) Headword() string   { return e.Literal }

func (e *KanjiEntry) SearchTexts() []string {
	texts := []string{e.Literal}
	for _, r := range e.OnReadings {
		texts = append(texts, NormalizeText(r))
	}
	for _, r := range e.KunReadings {
		// Kun readings carry an okurigana separator (た.べる); the
		// fold drops it so queries match the plain kana.
		texts = append(texts, NormalizeText(strings.ReplaceAll(r, ".", "")))
	}
	for _, m := range e.Meanings {
		texts = append(texts, NormalizeText(m))
	}
	return texts
}

// ReadingMatches reports whether kana (normalized hiragana) is one of the
// kanji's readings, ignoring okurigana separators. Supports refinement
// queries that pair a kanji with a reading.
func (e *KanjiEntry) ReadingMatches(kana string) bool {
	for _, r := range e.OnReadings {
		if NormalizeText(r) == kana {
			return true
		}
	}
	for _, r := range e.KunReadings {
		folded := NormalizeText(strings.ReplaceAll(r, ".", ""))
		if folded == kana || strings.HasPrefix(folded, kana) {
			return true
		}
	}
	return false
}

// NameEntry is a proper noun: person, place, company, and so on.
type NameEntry struct {
	EntryID    uint32
	Written    string
	Reading    string
	Romaji     string
	Categories []string
	Freq       float64
}

func (e *NameEntry) ID() uint32         { return e.EntryID }
func (e *NameEntry) Kind() Kind         { return KindName }
func (e *NameEntry) Frequency() float64 { return e.Freq }

func (e *NameEntry) Headword() string {
	if e.Written != "" {
		return e.Written
	}
	return e.Reading
}

func (e *NameEntry) SearchTexts() []string {
	var texts []string
	if e.Written != "" {
		texts = append(texts, NormalizeText(e.Written))
	}
	if e.Reading != "" {
		texts = append(texts, NormalizeText(e.Reading))
	}
	if e.Romaji != "" {
		texts = append(texts, NormalizeText(e.Romaji))
	}
	return texts
}

// SentenceEntry is an example sentence with one translation.
type SentenceEntry struct {
	EntryID     uint32
	Japanese    string
	Translation string
	Lang        string
	// Lemmas are the dictionary base forms of the sentence's words,
	// precomputed at build time by morphological analysis.
	Lemmas []string
	// Furigana holds precomputed reading annotations for the kanji
	// spans of the sentence, when the source data provides them.
	Furigana []japanese.FuriganaPair
	Freq     float64
}

func (e *SentenceEntry) ID() uint32         { return e.EntryID }
func (e *SentenceEntry) Kind() Kind         { return KindSentence }
func (e *SentenceEntry) Frequency() float64 { return e.Freq }
func (e *SentenceEntry) Headword() string   { return e.Japanese }

func (e *SentenceEntry) SearchTexts() []string {
	texts := []string{NormalizeText(e.Japanese)}
	for _, l := range e.Lemmas {
		texts = append(texts, NormalizeText(l))
	}
	if e.Translation != "" {
		texts = append(texts, NormalizeText(e.Translation))
	}
	return texts
}
