package japanese

import "strings"

// ToHalfwidth converts fullwidth ASCII variants into normal ASCII
// (Ａ -> A, １ -> 1) by shifting the codepoint down by 0xFEE0.
func ToHalfwidth(s string) string {
	return shiftRunes(s, 0xFF01, 0xFF5E, -0xFEE0)
}

// ToFullwidth converts ASCII into fullwidth variants (A -> Ａ).
func ToFullwidth(s string) string {
	return shiftRunes(s, 0x0021, 0x007E, 0xFEE0)
}

// KatakanaToHiragana folds katakana into hiragana (ア -> あ). The prolonged
// sound mark and other non-letter katakana are kept as-is.
func KatakanaToHiragana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x30A1 && r <= 0x30F6 {
			r -= 0x60
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HiraganaToKatakana folds hiragana into katakana (あ -> ア).
func HiraganaToKatakana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x3041 && r <= 0x3096 {
			r += 0x60
		}
		b.WriteRune(r)
	}
	return b.String()
}

func shiftRunes(s string, lo, hi, delta rune) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= lo && r <= hi {
			r += delta
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize folds s into the canonical matching form used by the index:
// fullwidth ASCII to halfwidth, Latin lowercased, katakana folded to
// hiragana, romaji transliterated to hiragana. The returned Script is the
// classification of the input before transliteration.
func Normalize(s string) (string, Script) {
	trimmed := strings.TrimSpace(s)
	script := Classify(trimmed)
	out := ToHalfwidth(trimmed)
	out = strings.ToLower(out)
	if script == ScriptRomaji {
		if kana, ok := RomajiToHiragana(out); ok {
			return kana, script
		}
		// Not cleanly transliterable (e.g. an English gloss query);
		// keep the lowercased form for gloss matching.
		return out, script
	}
	out = KatakanaToHiragana(out)
	return out, script
}
