package japanese

// FuriganaPair maps a span of the written form to the span of the reading
// that voices it. Concatenating all Written fields reproduces the written
// form; concatenating all Reading fields reproduces the reading.
type FuriganaPair struct {
	Written string `json:"written"`
	Reading string `json:"reading"`
}

// AlignFurigana aligns a written form (kanji/kana mixture) with its full
// kana reading. Contiguous kana runs of the written form act as anchors:
// each anchor is matched at its leftmost occurrence in the reading after
// the position reached so far, and the reading text between two anchors is
// assigned to the kanji run they bracket. A kanji run bracketed by anchors
// may map several kanji onto one merged reading span; no sub-splitting is
// attempted.
//
// When anchoring fails (irregular okurigana, reading mismatch) a single
// best-effort pair covering the whole word is returned instead.
func AlignFurigana(written, reading string) []FuriganaPair {
	fallback := []FuriganaPair{{Written: written, Reading: reading}}
	if written == "" || reading == "" {
		return fallback
	}
	if !HasKanji(written) {
		return fallback
	}

	wRunes := []rune(written)
	rRunes := []rune(reading)
	// Matching is done on hiragana-folded runes so katakana okurigana
	// still anchors; output slices use the original runes.
	rFold := []rune(KatakanaToHiragana(reading))

	type run struct {
		text []rune
		kana bool
	}
	var runs []run
	start := 0
	for i := 1; i <= len(wRunes); i++ {
		if i == len(wRunes) || IsKana(wRunes[i]) != IsKana(wRunes[start]) {
			runs = append(runs, run{text: wRunes[start:i], kana: IsKana(wRunes[start])})
			start = i
		}
	}

	pairs := make([]FuriganaPair, 0, len(runs))
	rpos := 0
	for idx, ru := range runs {
		if !ru.kana {
			// Reading span is resolved when the next anchor matches,
			// or at the end of the reading for a trailing kanji run.
			if idx == len(runs)-1 {
				if rpos >= len(rRunes) {
					return fallback
				}
				pairs = append(pairs, FuriganaPair{
					Written: string(ru.text),
					Reading: string(rRunes[rpos:]),
				})
				rpos = len(rRunes)
			}
			continue
		}

		anchor := []rune(KatakanaToHiragana(string(ru.text)))
		searchFrom := rpos
		if idx > 0 && !runs[idx-1].kana {
			// The preceding kanji run voices at least one reading rune.
			searchFrom = rpos + 1
		}
		p := indexRunes(rFold, anchor, searchFrom)
		if p < 0 {
			return fallback
		}
		if idx > 0 && !runs[idx-1].kana {
			pairs = append(pairs, FuriganaPair{
				Written: string(runs[idx-1].text),
				Reading: string(rRunes[rpos:p]),
			})
		} else if p != rpos {
			// A kana run with no kanji before it must sit exactly at the
			// current reading position.
			return fallback
		}
		pairs = append(pairs, FuriganaPair{
			Written: string(ru.text),
			Reading: string(rRunes[p : p+len(anchor)]),
		})
		rpos = p + len(anchor)
	}

	if rpos != len(rRunes) {
		return fallback
	}
	return pairs
}

// indexRunes returns the index of the leftmost occurrence of needle in
// haystack at or after from, or -1.
func indexRunes(haystack, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
