// Package postgres provides a database/sql client (lib/pq) for the
// dictionary source database consumed by the offline index builder.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kotoba-dict/kotoba/pkg/config"
	_ "github.com/lib/pq"
)

// Client wraps a pooled Postgres connection.
type Client struct {
	DB  *sql.DB
	cfg config.PostgresConfig
}

// New opens a connection pool and verifies it with a ping.
func New(cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db, cfg: cfg}, nil
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.DB.Close()
}

// WordRow is one row of the words source table.
type WordRow struct {
	ID       int64
	Writings []string
	Readings []string
	Senses   []byte // JSON-encoded sense list
	FreqRank int
}

// KanjiRow is one row of the kanji source table.
type KanjiRow struct {
	ID          int64
	Literal     string
	Onyomi      []string
	Kunyomi     []string
	StrokeCount int
	Grade       int
	Frequency   int
}

// NameRow is one row of the names source table.
type NameRow struct {
	ID       int64
	Written  string
	Reading  string
	Category string
}

// SentenceRow is one row of the sentences source table.
type SentenceRow struct {
	ID           int64
	Text         string
	Furigana     []byte // JSON-encoded span pairs
	Translations []byte // JSON-encoded language map
}

// FetchWords streams all word rows through fn.
func (c *Client) FetchWords(ctx context.Context, fn func(WordRow) error) error {
	const q = `SELECT id, writings, readings, senses, freq_rank FROM words ORDER BY id`
	rows, err := c.DB.QueryContext(ctx, q)
	if err != nil {
		return fmt.Errorf("querying words: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r WordRow
		var writings, readings []byte
		if err := rows.Scan(&r.ID, &writings, &readings, &r.Senses, &r.FreqRank); err != nil {
			return fmt.Errorf("scanning word row: %w", err)
		}
		r.Writings = splitArray(writings)
		r.Readings = splitArray(readings)
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// FetchKanji streams all kanji rows through fn.
func (c *Client) FetchKanji(ctx context.Context, fn func(KanjiRow) error) error {
	const q = `SELECT id, literal, onyomi, kunyomi, stroke_count, grade, frequency FROM kanji ORDER BY id`
	rows, err := c.DB.QueryContext(ctx, q)
	if err != nil {
		return fmt.Errorf("querying kanji: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r KanjiRow
		var on, kun []byte
		if err := rows.Scan(&r.ID, &r.Literal, &on, &kun, &r.StrokeCount, &r.Grade, &r.Frequency); err != nil {
			return fmt.Errorf("scanning kanji row: %w", err)
		}
		r.Onyomi = splitArray(on)
		r.Kunyomi = splitArray(kun)
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// FetchNames streams all name rows through fn.
func (c *Client) FetchNames(ctx context.Context, fn func(NameRow) error) error {
	const q = `SELECT id, written, reading, category FROM names ORDER BY id`
	rows, err := c.DB.QueryContext(ctx, q)
	if err != nil {
		return fmt.Errorf("querying names: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r NameRow
		if err := rows.Scan(&r.ID, &r.Written, &r.Reading, &r.Category); err != nil {
			return fmt.Errorf("scanning name row: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// FetchSentences streams all sentence rows through fn.
func (c *Client) FetchSentences(ctx context.Context, fn func(SentenceRow) error) error {
	const q = `SELECT id, text, furigana, translations FROM sentences ORDER BY id`
	rows, err := c.DB.QueryContext(ctx, q)
	if err != nil {
		return fmt.Errorf("querying sentences: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r SentenceRow
		if err := rows.Scan(&r.ID, &r.Text, &r.Furigana, &r.Translations); err != nil {
			return fmt.Errorf("scanning sentence row: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// splitArray decodes a text[] column returned by lib/pq in its
// {a,b,c} literal form.
func splitArray(raw []byte) []string {
	s := string(raw)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil
	}
	s = s[1 : len(s)-1]
	if s == "" {
		return nil
	}
	var out []string
	var cur []byte
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"':
			inQuote = !inQuote
		case c == '\\' && i+1 < len(s):
			i++
			cur = append(cur, s[i])
		case c == ',' && !inQuote:
			out = append(out, string(cur))
			cur = cur[:0]
		default:
			cur = append(cur, c)
		}
	}
	out = append(out, string(cur))
	return out
}
