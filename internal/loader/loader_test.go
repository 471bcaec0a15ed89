package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/japanese"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadJSONDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "words.json", `[
		{"id": 1, "written": "食べる", "reading": "たべる",
		 "senses": [{"glosses": ["to eat"], "lang": "en"}],
		 "freq": 0.9, "common": true},
		{"id": 2, "written": "飲む", "reading": "のむ", "freq": 0.8}
	]`)
	writeFile(t, dir, "kanji.json", `[
		{"id": 1, "literal": "食", "on_readings": ["ショク"],
		 "kun_readings": ["た.べる"], "meanings": ["eat"], "freq": 0.7}
	]`)
	writeFile(t, dir, "sentences.json", `[
		{"id": 1, "japanese": "寿司を食べる", "translation": "I eat sushi",
		 "lang": "en", "lemmas": ["寿司", "食べる"],
		 "furigana": [{"written": "寿司", "reading": "すし"}, {"written": "を食べる", "reading": "をたべる"}],
		 "freq": 0.1}
	]`)

	b := index.NewBuilder(2).WithVersion(1)
	l := New(b, nil)
	require.NoError(t, l.LoadJSONDir(dir))

	counts := l.Counts()
	assert.Equal(t, 2, counts.Words)
	assert.Equal(t, 1, counts.Kanji)
	assert.Equal(t, 0, counts.Names, "missing names.json is not an error")
	assert.Equal(t, 1, counts.Sentences)
	assert.Equal(t, 4, counts.Total())

	snap := b.Build()
	entry, ok := snap.Entry(index.KindWord, 1)
	require.True(t, ok)
	word := entry.(*index.WordEntry)
	assert.Equal(t, "食べる", word.Written)
	assert.Equal(t, []string{"to eat"}, word.Senses[0].Glosses)
	assert.True(t, word.Common)

	entry, ok = snap.Entry(index.KindSentence, 1)
	require.True(t, ok)
	sentence := entry.(*index.SentenceEntry)
	assert.Equal(t, []string{"寿司", "食べる"}, sentence.Lemmas)
	assert.Equal(t, []japanese.FuriganaPair{
		{Written: "寿司", Reading: "すし"},
		{Written: "を食べる", Reading: "をたべる"},
	}, sentence.Furigana)
}

func TestLoadJSONDirBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "words.json", `{not json`)

	l := New(index.NewBuilder(2), nil)
	assert.Error(t, l.LoadJSONDir(dir))
}

func TestLoadJSONDirDuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "words.json", `[
		{"id": 1, "written": "食べる", "reading": "たべる"},
		{"id": 1, "written": "飲む", "reading": "のむ"}
	]`)

	l := New(index.NewBuilder(2), nil)
	assert.Error(t, l.LoadJSONDir(dir))
}

func TestFreqFromRank(t *testing.T) {
	assert.Equal(t, 0.0, freqFromRank(0))
	assert.Equal(t, 0.0, freqFromRank(-5))
	assert.Equal(t, 1.0, freqFromRank(1))
	assert.Greater(t, freqFromRank(10), freqFromRank(1000))
	assert.Greater(t, freqFromRank(100000), 0.0)
}
