package japanese

import "strings"

// Hepburn syllable table, longest-match first (3, then 2, then 1 chars).
var romajiTable = map[string]string{
	"kya": "きゃ", "kyu": "きゅ", "kyo": "きょ",
	"gya": "ぎゃ", "gyu": "ぎゅ", "gyo": "ぎょ",
	"sha": "しゃ", "shu": "しゅ", "sho": "しょ", "shi": "し",
	"sya": "しゃ", "syu": "しゅ", "syo": "しょ",
	"cha": "ちゃ", "chu": "ちゅ", "cho": "ちょ", "chi": "ち",
	"tya": "ちゃ", "tyu": "ちゅ", "tyo": "ちょ",
	"ja": "じゃ", "ju": "じゅ", "jo": "じょ", "ji": "じ",
	"jya": "じゃ", "jyu": "じゅ", "jyo": "じょ",
	"nya": "にゃ", "nyu": "にゅ", "nyo": "にょ",
	"hya": "ひゃ", "hyu": "ひゅ", "hyo": "ひょ",
	"bya": "びゃ", "byu": "びゅ", "byo": "びょ",
	"pya": "ぴゃ", "pyu": "ぴゅ", "pyo": "ぴょ",
	"mya": "みゃ", "myu": "みゅ", "myo": "みょ",
	"rya": "りゃ", "ryu": "りゅ", "ryo": "りょ",
	"tsu": "つ", "dzu": "づ",
	"ka": "か", "ki": "き", "ku": "く", "ke": "け", "ko": "こ",
	"ga": "が", "gi": "ぎ", "gu": "ぐ", "ge": "げ", "go": "ご",
	"sa": "さ", "su": "す", "se": "せ", "so": "そ",
	"za": "ざ", "zu": "ず", "ze": "ぜ", "zo": "ぞ",
	"ta": "た", "te": "て", "to": "と",
	"da": "だ", "di": "ぢ", "du": "づ", "de": "で", "do": "ど",
	"na": "な", "ni": "に", "nu": "ぬ", "ne": "ね", "no": "の",
	"ha": "は", "hi": "ひ", "fu": "ふ", "hu": "ふ", "he": "へ", "ho": "ほ",
	"ba": "ば", "bi": "び", "bu": "ぶ", "be": "べ", "bo": "ぼ",
	"pa": "ぱ", "pi": "ぴ", "pu": "ぷ", "pe": "ぺ", "po": "ぽ",
	"ma": "ま", "mi": "み", "mu": "む", "me": "め", "mo": "も",
	"ya": "や", "yu": "ゆ", "yo": "よ",
	"ra": "ら", "ri": "り", "ru": "る", "re": "れ", "ro": "ろ",
	"wa": "わ", "wo": "を",
	"fa": "ふぁ", "fi": "ふぃ", "fe": "ふぇ", "fo": "ふぉ",
	"va": "ゔぁ", "vi": "ゔぃ", "vu": "ゔ", "ve": "ゔぇ", "vo": "ゔぉ",
	"a": "あ", "i": "い", "u": "う", "e": "え", "o": "お",
}

func isConsonant(c byte) bool {
	return c >= 'a' && c <= 'z' && !strings.ContainsRune("aeiou", rune(c))
}

// RomajiToHiragana transliterates Hepburn romaji into hiragana using
// longest-match lookup. Doubled consonants become the sokuon っ, "n" before
// a consonant (or final) becomes ん, and "-" becomes the prolonged sound
// mark. It returns false when the input contains a fragment that is not
// valid romaji, in which case the caller should keep the Latin form.
func RomajiToHiragana(s string) (string, bool) {
	s = strings.ToLower(s)
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c == ' ' || c == '\'' {
			i++
			continue
		}
		if c == '-' {
			b.WriteRune('ー')
			i++
			continue
		}
		// Sokuon: doubled consonant other than "nn", plus Hepburn "tch".
		if i+1 < len(s) && (c == s[i+1] || (c == 't' && s[i+1] == 'c')) && isConsonant(c) && c != 'n' {
			b.WriteRune('っ')
			i++
			continue
		}
		// Syllabic n: final "n", "n'", or "n" before a consonant. Only one
		// byte is consumed so "konnichiwa" yields こんにちわ, not こんいちわ.
		// "ny" is not syllabic, it opens the にゃ row; ん before や is
		// written with the apostrophe ("kin'youbi").
		if c == 'n' && (i+1 >= len(s) || (isConsonant(s[i+1]) && s[i+1] != 'y') || s[i+1] == '\'') {
			b.WriteRune('ん')
			i++
			continue
		}
		matched := false
		for l := 3; l >= 1; l-- {
			if i+l > len(s) {
				continue
			}
			if kana, ok := romajiTable[s[i:i+l]]; ok {
				b.WriteString(kana)
				i += l
				matched = true
				break
			}
		}
		if !matched {
			return "", false
		}
	}
	return b.String(), true
}

// RomajiPrefix reports whether romaji is a prefix of the romanized form of
// kana. Used for suggestion-style partial matching of romaji queries.
func RomajiPrefix(romaji, kana string) bool {
	hira, ok := RomajiToHiragana(strings.ToLower(romaji))
	if !ok {
		return false
	}
	return strings.HasPrefix(KatakanaToHiragana(kana), hira)
}
