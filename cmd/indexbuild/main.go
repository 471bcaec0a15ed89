package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/loader"
	"github.com/kotoba-dict/kotoba/internal/segmenter"
	"github.com/kotoba-dict/kotoba/pkg/config"
	"github.com/kotoba-dict/kotoba/pkg/logger"
	"github.com/kotoba-dict/kotoba/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	sourceDir := flag.String("source", "", "directory of JSON source files")
	fromPostgres := flag.Bool("from-postgres", false, "load sources from the dictionary database")
	out := flag.String("out", "", "output snapshot path (default: index.snapshotPath from config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *sourceDir == "" && !*fromPostgres {
		fmt.Fprintln(os.Stderr, "either -source or -from-postgres is required")
		os.Exit(1)
	}
	outPath := *out
	if outPath == "" {
		outPath = cfg.Index.SnapshotPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seg, err := segmenter.New()
	if err != nil {
		slog.Warn("morphological analyzer unavailable, sentence lemmas limited to source data", "error", err)
		seg = nil
	}

	start := time.Now()
	builder := index.NewBuilder(cfg.Index.NGramSize)
	l := loader.New(builder, seg)

	switch {
	case *fromPostgres:
		slog.Info("loading sources from postgres",
			"host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		if err := l.LoadPostgres(ctx, client); err != nil {
			slog.Error("failed to load postgres sources", "error", err)
			os.Exit(1)
		}
	default:
		slog.Info("loading sources from json", "dir", *sourceDir)
		if err := l.LoadJSONDir(*sourceDir); err != nil {
			slog.Error("failed to load json sources", "error", err)
			os.Exit(1)
		}
	}

	counts := l.Counts()
	if counts.Total() == 0 {
		slog.Error("no entries loaded, refusing to write an empty snapshot")
		os.Exit(1)
	}

	snap := builder.Build()
	if err := index.SaveFile(outPath, snap); err != nil {
		slog.Error("failed to write snapshot", "path", outPath, "error", err)
		os.Exit(1)
	}

	slog.Info("snapshot written",
		"path", outPath,
		"version", snap.Version,
		"words", counts.Words,
		"kanji", counts.Kanji,
		"names", counts.Names,
		"sentences", counts.Sentences,
		"grams", snap.GramCount(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
}
