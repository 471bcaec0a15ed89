package segmenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"two sentences",
			"今日は晴れです。明日は雨です。",
			[]string{"今日は晴れです。", "明日は雨です。"},
		},
		{
			"question inside quotes kept together",
			"「どこ？」と聞いた。",
			[]string{"「どこ？」と聞いた。"},
		},
		{
			"nested brackets",
			"彼は「『走れ！』と叫んだ」と言った。次の日。",
			[]string{"彼は「『走れ！』と叫んだ」と言った。", "次の日。"},
		},
		{
			"newline splits",
			"一行目\n二行目",
			[]string{"一行目", "二行目"},
		},
		{
			"no terminator",
			"終わりなし",
			[]string{"終わりなし"},
		},
		{
			"exclamation ascii",
			"すごい! 本当?",
			[]string{"すごい!", "本当?"},
		},
		{
			"empty",
			"",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.input))
		})
	}
}
