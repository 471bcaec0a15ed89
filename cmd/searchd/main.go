package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kotoba-dict/kotoba/internal/analytics"
	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/query"
	"github.com/kotoba-dict/kotoba/internal/search"
	"github.com/kotoba-dict/kotoba/internal/segmenter"
	"github.com/kotoba-dict/kotoba/pkg/config"
	"github.com/kotoba-dict/kotoba/pkg/health"
	"github.com/kotoba-dict/kotoba/pkg/kafka"
	"github.com/kotoba-dict/kotoba/pkg/logger"
	"github.com/kotoba-dict/kotoba/pkg/metrics"
	"github.com/kotoba-dict/kotoba/pkg/middleware"
	pkgredis "github.com/kotoba-dict/kotoba/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port)

	// The snapshot is the whole point of the process; refusing to start
	// without one beats serving empty results.
	snap, err := index.LoadFile(cfg.Index.SnapshotPath)
	if err != nil {
		slog.Error("failed to load index snapshot",
			"path", cfg.Index.SnapshotPath, "error", err)
		os.Exit(1)
	}
	handle := index.NewHandle(snap)
	slog.Info("index snapshot loaded",
		"path", cfg.Index.SnapshotPath,
		"version", snap.Version,
		"entries", snap.TotalCount(),
		"grams", snap.GramCount(),
	)

	seg, err := segmenter.New()
	if err != nil {
		slog.Warn("morphological analyzer unavailable, sentence lemma queries disabled", "error", err)
		seg = nil
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	var queryCache *search.Cache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = search.NewCache(redisClient, cfg.Redis)
		slog.Info("query cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
	defer producer.Close()
	collector := analytics.NewCollector(producer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.QueryEvents)

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents, analytics.HandleEvent(aggregator))
	go func() {
		if err := aggregator.Start(ctx, consumer); err != nil {
			slog.Error("analytics aggregator error", "error", err)
		}
	}()
	analyticsH := analytics.NewHandler(aggregator)

	svc := search.NewService(handle, query.NewPlanner(seg), queryCache, m, cfg.Search)
	svc.PublishSnapshotStats()
	h := search.NewHandler(svc, queryCache, collector, cfg.Index.SnapshotPath)

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		s := svc.Snapshot()
		if s == nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no snapshot loaded"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("version %d, %d entries", s.Version, s.TotalCount()),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.QueryID(chain)

	if cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			slog.Info("metrics server listening", "addr", addr)
			if err := http.ListenAndServe(addr, metrics.Handler()); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	if cfg.Index.ReloadInterval > 0 {
		go reloadLoop(ctx, svc, cfg.Index.SnapshotPath, cfg.Index.ReloadInterval)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

// reloadLoop periodically re-reads the snapshot file so a rebuilt index
// goes live without a restart. A failed reload keeps the current
// snapshot and retries on the next tick.
func reloadLoop(ctx context.Context, svc *search.Service, path string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.ReloadIndex(ctx, path); err != nil {
				slog.Warn("periodic index reload failed", "error", err)
			}
		}
	}
}
