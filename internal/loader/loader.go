// Package loader populates an index.Builder from dictionary source data,
// either JSON files exported by upstream tooling or the Postgres source
// database.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/japanese"
	"github.com/kotoba-dict/kotoba/internal/segmenter"
	"github.com/kotoba-dict/kotoba/pkg/postgres"
)

// Counts reports how many entries of each kind were loaded.
type Counts struct {
	Words     int
	Kanji     int
	Names     int
	Sentences int
}

// Total returns the sum over all kinds.
func (c Counts) Total() int {
	return c.Words + c.Kanji + c.Names + c.Sentences
}

// Loader feeds dictionary source records into an index builder. When a
// segmenter is present, sentences without precomputed lemmas get them
// from morphological analysis.
type Loader struct {
	builder *index.Builder
	seg     *segmenter.Segmenter
	logger  *slog.Logger
	counts  Counts
}

// New creates a Loader over builder. seg may be nil.
func New(builder *index.Builder, seg *segmenter.Segmenter) *Loader {
	return &Loader{
		builder: builder,
		seg:     seg,
		logger:  slog.Default().With("component", "loader"),
	}
}

// Counts returns the running totals of loaded entries.
func (l *Loader) Counts() Counts {
	return l.counts
}

type senseSource struct {
	Glosses       []string `json:"glosses"`
	PartsOfSpeech []string `json:"parts_of_speech"`
	Lang          string   `json:"lang"`
}

type wordSource struct {
	ID       uint32        `json:"id"`
	Written  string        `json:"written"`
	Reading  string        `json:"reading"`
	AltForms []string      `json:"alt_forms"`
	Senses   []senseSource `json:"senses"`
	Freq     float64       `json:"freq"`
	Common   bool          `json:"common"`
	JLPT     uint8         `json:"jlpt"`
}

type kanjiSource struct {
	ID          uint32   `json:"id"`
	Literal     string   `json:"literal"`
	OnReadings  []string `json:"on_readings"`
	KunReadings []string `json:"kun_readings"`
	Meanings    []string `json:"meanings"`
	StrokeCount uint8    `json:"stroke_count"`
	Grade       uint8    `json:"grade"`
	JLPT        uint8    `json:"jlpt"`
	Freq        float64  `json:"freq"`
}

type nameSource struct {
	ID         uint32   `json:"id"`
	Written    string   `json:"written"`
	Reading    string   `json:"reading"`
	Romaji     string   `json:"romaji"`
	Categories []string `json:"categories"`
	Freq       float64  `json:"freq"`
}

type sentenceSource struct {
	ID          uint32                  `json:"id"`
	Japanese    string                  `json:"japanese"`
	Translation string                  `json:"translation"`
	Lang        string                  `json:"lang"`
	Lemmas      []string                `json:"lemmas"`
	Furigana    []japanese.FuriganaPair `json:"furigana"`
	Freq        float64                 `json:"freq"`
}

// LoadJSONDir loads words.json, kanji.json, names.json and sentences.json
// from dir. Missing files are skipped, any other read or decode error
// aborts the load.
func (l *Loader) LoadJSONDir(dir string) error {
	if err := loadJSONFile(dir, "words.json", func(src wordSource) error {
		return l.addWord(src)
	}); err != nil {
		return err
	}
	if err := loadJSONFile(dir, "kanji.json", func(src kanjiSource) error {
		return l.addKanji(src)
	}); err != nil {
		return err
	}
	if err := loadJSONFile(dir, "names.json", func(src nameSource) error {
		return l.addName(src)
	}); err != nil {
		return err
	}
	if err := loadJSONFile(dir, "sentences.json", func(src sentenceSource) error {
		return l.addSentence(src)
	}); err != nil {
		return err
	}
	l.logger.Info("json sources loaded",
		"dir", dir,
		"words", l.counts.Words,
		"kanji", l.counts.Kanji,
		"names", l.counts.Names,
		"sentences", l.counts.Sentences,
	)
	return nil
}

func loadJSONFile[T any](dir, name string, fn func(T) error) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	for _, r := range records {
		if err := fn(r); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

func (l *Loader) addWord(src wordSource) error {
	senses := make([]index.Sense, 0, len(src.Senses))
	for _, s := range src.Senses {
		senses = append(senses, index.Sense{
			Glosses:       s.Glosses,
			PartsOfSpeech: s.PartsOfSpeech,
			Lang:          s.Lang,
		})
	}
	err := l.builder.Add(&index.WordEntry{
		EntryID:  src.ID,
		Written:  src.Written,
		Reading:  src.Reading,
		AltForms: src.AltForms,
		Senses:   senses,
		Freq:     src.Freq,
		Common:   src.Common,
		JLPT:     src.JLPT,
	})
	if err != nil {
		return err
	}
	l.counts.Words++
	return nil
}

func (l *Loader) addKanji(src kanjiSource) error {
	err := l.builder.Add(&index.KanjiEntry{
		EntryID:     src.ID,
		Literal:     src.Literal,
		OnReadings:  src.OnReadings,
		KunReadings: src.KunReadings,
		Meanings:    src.Meanings,
		StrokeCount: src.StrokeCount,
		Grade:       src.Grade,
		JLPT:        src.JLPT,
		Freq:        src.Freq,
	})
	if err != nil {
		return err
	}
	l.counts.Kanji++
	return nil
}

func (l *Loader) addName(src nameSource) error {
	err := l.builder.Add(&index.NameEntry{
		EntryID:    src.ID,
		Written:    src.Written,
		Reading:    src.Reading,
		Romaji:     src.Romaji,
		Categories: src.Categories,
		Freq:       src.Freq,
	})
	if err != nil {
		return err
	}
	l.counts.Names++
	return nil
}

func (l *Loader) addSentence(src sentenceSource) error {
	lemmas := src.Lemmas
	if len(lemmas) == 0 && l.seg != nil {
		lemmas = l.seg.Lemmas(src.Japanese)
	}
	furigana := src.Furigana
	if len(furigana) == 0 && l.seg != nil && japanese.HasKanji(src.Japanese) {
		furigana = l.seg.Furigana(src.Japanese)
	}
	err := l.builder.Add(&index.SentenceEntry{
		EntryID:     src.ID,
		Japanese:    src.Japanese,
		Translation: src.Translation,
		Lang:        src.Lang,
		Lemmas:      lemmas,
		Furigana:    furigana,
		Freq:        src.Freq,
	})
	if err != nil {
		return err
	}
	l.counts.Sentences++
	return nil
}

// LoadPostgres streams all four source tables from the dictionary
// database into the builder.
func (l *Loader) LoadPostgres(ctx context.Context, client *postgres.Client) error {
	if err := client.FetchWords(ctx, func(r postgres.WordRow) error {
		src := wordSource{
			ID:     uint32(r.ID),
			Freq:   freqFromRank(r.FreqRank),
			Common: r.FreqRank > 0 && r.FreqRank <= 10000,
		}
		if len(r.Writings) > 0 {
			src.Written = r.Writings[0]
			src.AltForms = r.Writings[1:]
		}
		if len(r.Readings) > 0 {
			src.Reading = r.Readings[0]
		}
		if len(r.Senses) > 0 {
			if err := json.Unmarshal(r.Senses, &src.Senses); err != nil {
				return fmt.Errorf("decoding senses for word %d: %w", r.ID, err)
			}
		}
		return l.addWord(src)
	}); err != nil {
		return fmt.Errorf("loading words: %w", err)
	}

	if err := client.FetchKanji(ctx, func(r postgres.KanjiRow) error {
		return l.addKanji(kanjiSource{
			ID:          uint32(r.ID),
			Literal:     r.Literal,
			OnReadings:  r.Onyomi,
			KunReadings: r.Kunyomi,
			StrokeCount: uint8(r.StrokeCount),
			Grade:       uint8(r.Grade),
			Freq:        freqFromRank(r.Frequency),
		})
	}); err != nil {
		return fmt.Errorf("loading kanji: %w", err)
	}

	if err := client.FetchNames(ctx, func(r postgres.NameRow) error {
		src := nameSource{
			ID:      uint32(r.ID),
			Written: r.Written,
			Reading: r.Reading,
		}
		if r.Category != "" {
			src.Categories = []string{r.Category}
		}
		return l.addName(src)
	}); err != nil {
		return fmt.Errorf("loading names: %w", err)
	}

	if err := client.FetchSentences(ctx, func(r postgres.SentenceRow) error {
		src := sentenceSource{
			ID:       uint32(r.ID),
			Japanese: r.Text,
		}
		if len(r.Furigana) > 0 {
			if err := json.Unmarshal(r.Furigana, &src.Furigana); err != nil {
				return fmt.Errorf("decoding furigana for sentence %d: %w", r.ID, err)
			}
		}
		if len(r.Translations) > 0 {
			var translations map[string]string
			if err := json.Unmarshal(r.Translations, &translations); err != nil {
				return fmt.Errorf("decoding translations for sentence %d: %w", r.ID, err)
			}
			if text, ok := translations["en"]; ok {
				src.Translation, src.Lang = text, "en"
			} else {
				for lang, text := range translations {
					src.Translation, src.Lang = text, lang
					break
				}
			}
		}
		return l.addSentence(src)
	}); err != nil {
		return fmt.Errorf("loading sentences: %w", err)
	}

	l.logger.Info("postgres sources loaded",
		"words", l.counts.Words,
		"kanji", l.counts.Kanji,
		"names", l.counts.Names,
		"sentences", l.counts.Sentences,
	)
	return nil
}

// freqFromRank maps a 1-based frequency rank (1 = most common) onto the
// (0, 1] popularity scale used for scoring. Unranked rows get 0.
func freqFromRank(rank int) float64 {
	if rank <= 0 {
		return 0
	}
	return 1 / (1 + math.Log(float64(rank)))
}
