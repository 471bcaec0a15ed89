// Package japanese classifies and normalizes script-mixing text: hiragana,
// katakana, kanji, romaji, fullwidth/halfwidth variants, and furigana
// alignment between written forms and their kana readings.
package japanese

// CharType is the script class of a single rune.
type CharType int

const (
	CharOther CharType = iota
	CharHiragana
	CharKatakana
	CharKanji
	CharSymbol
	CharLatin
)

// IsHiragana reports whether r is in the hiragana block.
func IsHiragana(r rune) bool {
	return r >= 0x3040 && r <= 0x309F
}

// IsKatakana reports whether r is in the katakana block, including the
// prolonged sound mark. The middle dot ・ sits inside the block but is
// punctuation, not kana.
func IsKatakana(r rune) bool {
	return r >= 0x30A0 && r <= 0x30FF && r != 0x30FB
}

// IsKana reports whether r is hiragana or katakana.
func IsKana(r rune) bool {
	return IsHiragana(r) || IsKatakana(r)
}

// IsKanji reports whether r is a CJK ideograph.
func IsKanji(r rune) bool {
	return (r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x20000 && r <= 0x2A6DF)
}

// IsSymbol reports whether r is a CJK punctuation or fullwidth symbol.
func IsSymbol(r rune) bool {
	return (r >= 0x3000 && r <= 0x303F) ||
		(r >= 0xFF01 && r <= 0xFF0F) ||
		(r >= 0xFF1A && r <= 0xFF20) ||
		(r >= 0xFF3B && r <= 0xFF40) ||
		(r >= 0xFF5B && r <= 0xFF5E) ||
		r == 0x30FB || r == 0x00D7
}

// IsLatin reports whether r is a letter or digit, in ASCII or its
// fullwidth variant, so fullwidth romaji classifies as Latin before the
// width fold runs.
func IsLatin(r rune) bool {
	if r >= 0xFF01 && r <= 0xFF5E {
		r -= 0xFEE0
	}
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// TypeOf returns the CharType of r.
func TypeOf(r rune) CharType {
	switch {
	case IsHiragana(r):
		return CharHiragana
	case IsKatakana(r):
		return CharKatakana
	case IsKanji(r):
		return CharKanji
	case IsSymbol(r):
		return CharSymbol
	case IsLatin(r):
		return CharLatin
	default:
		return CharOther
	}
}

// Script is the overall script composition of a string.
type Script int

const (
	ScriptUnknown Script = iota
	ScriptHiragana
	ScriptKatakana
	ScriptKanji
	// ScriptJapanese is a kana/kanji mixture.
	ScriptJapanese
	ScriptRomaji
	// ScriptSymbol is punctuation-only input, unusable as a query.
	ScriptSymbol
)

func (s Script) String() string {
	switch s {
	case ScriptHiragana:
		return "hiragana"
	case ScriptKatakana:
		return "katakana"
	case ScriptKanji:
		return "kanji"
	case ScriptJapanese:
		return "japanese"
	case ScriptRomaji:
		return "romaji"
	case ScriptSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// IsJapanese reports whether the script contains kana or kanji.
func (s Script) IsJapanese() bool {
	switch s {
	case ScriptHiragana, ScriptKatakana, ScriptKanji, ScriptJapanese:
		return true
	}
	return false
}

// Classify returns the script composition of s. Whitespace and symbols do
// not change the class unless nothing else is present.
func Classify(s string) Script {
	var hira, kata, kanji, latin, other, symbol int
	for _, r := range s {
		if r == ' ' || r == '\t' {
			continue
		}
		switch TypeOf(r) {
		case CharHiragana:
			hira++
		case CharKatakana:
			kata++
		case CharKanji:
			kanji++
		case CharSymbol:
			symbol++
		case CharLatin:
			latin++
		default:
			other++
		}
	}
	japanese := hira + kata + kanji
	switch {
	case japanese == 0 && latin > 0:
		return ScriptRomaji
	case japanese == 0 && symbol > 0 && other == 0:
		return ScriptSymbol
	case japanese == 0:
		return ScriptUnknown
	case kanji > 0 && (hira > 0 || kata > 0):
		return ScriptJapanese
	case kanji > 0:
		return ScriptKanji
	case kata > 0 && hira == 0:
		return ScriptKatakana
	default:
		return ScriptHiragana
	}
}

// HasKanji reports whether s contains at least one kanji.
func HasKanji(s string) bool {
	for _, r := range s {
		if IsKanji(r) {
			return true
		}
	}
	return false
}

// HasKana reports whether s contains at least one kana character.
func HasKana(s string) bool {
	for _, r := range s {
		if IsKana(r) {
			return true
		}
	}
	return false
}

// KanjiRunes returns the distinct kanji of s in first-seen order.
func KanjiRunes(s string) []rune {
	var out []rune
	seen := make(map[rune]struct{})
	for _, r := range s {
		if IsKanji(r) {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// TextParts splits s into maximal runs of the same CharType, in source
// order. Kana types (hiragana/katakana) are treated as one class so that a
// katakana word inside hiragana text stays a single part boundary.
func TextParts(s string) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	class := func(r rune) CharType {
		t := TypeOf(r)
		if t == CharKatakana {
			return CharHiragana
		}
		return t
	}
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if class(runes[i]) != class(runes[i-1]) {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	parts = append(parts, string(runes[start:]))
	return parts
}
