package segmenter

import "strings"

var closingFor = map[rune]rune{
	'「': '」',
	'『': '』',
	'（': '）',
	'(': ')',
	'【': '】',
}

func isTerminator(r rune) bool {
	switch r {
	case '。', '！', '？', '!', '?', '\n':
		return true
	}
	return false
}

// SplitSentences splits text at sentence terminators (。！？!? and
// newlines). Terminators inside quoting brackets do not split, so
// 「どこ？」と聞いた stays one sentence. The terminator stays attached to
// its sentence; empty sentences are dropped.
func SplitSentences(text string) []string {
	var out []string
	var stack []rune
	runes := []rune(text)
	start := 0
	flush := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			out = append(out, s)
		}
		start = end
	}
	for i, r := range runes {
		if closing, ok := closingFor[r]; ok {
			stack = append(stack, closing)
			continue
		}
		if len(stack) > 0 {
			if r == stack[len(stack)-1] {
				stack = stack[:len(stack)-1]
			}
			continue
		}
		if isTerminator(r) {
			flush(i + 1)
		}
	}
	flush(len(runes))
	return out
}
