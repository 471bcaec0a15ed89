package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/query"
	"github.com/kotoba-dict/kotoba/pkg/config"
	apperrors "github.com/kotoba-dict/kotoba/pkg/errors"
	"github.com/kotoba-dict/kotoba/pkg/logger"
	"github.com/kotoba-dict/kotoba/pkg/metrics"
	"github.com/kotoba-dict/kotoba/pkg/resilience"
)

// Service is the search engine facade: Search serves queries against
// the current snapshot, ReloadIndex swaps in a new build.
type Service struct {
	handle   *index.Handle
	planner  *query.Planner
	executor *Executor
	composer *Composer
	cache    *Cache
	metrics  *metrics.Metrics
	cfg      config.SearchConfig
	logger   *slog.Logger
}

// NewService wires the facade. cache and m may be nil (caching and
// metrics disabled).
func NewService(
	handle *index.Handle,
	planner *query.Planner,
	cache *Cache,
	m *metrics.Metrics,
	cfg config.SearchConfig,
) *Service {
	return &Service{
		handle:   handle,
		planner:  planner,
		executor: NewExecutor(cfg.TopK, m),
		composer: NewComposer(cfg.KindQuota),
		cache:    cache,
		metrics:  m,
		cfg:      cfg,
		logger:   slog.Default().With("component", "search-service"),
	}
}

// Search plans the request, fans the sub-queries out in parallel
// against one snapshot, and returns the merged paginated result. A
// sub-query that overruns its timeout is excluded and the result is
// flagged degraded; the call fails only for invalid input or a missing
// index.
func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	req = s.clampLimits(req)
	snap := s.handle.Current()
	if snap == nil {
		return nil, fmt.Errorf("%w: no index snapshot loaded", apperrors.ErrIndexLoad)
	}

	plan, err := s.planner.Plan(req.Query, req.Kinds, req.Mode)
	if err != nil {
		s.countQuery("all", "invalid")
		return nil, err
	}

	// Per-query budget: sub-queries still running when it expires are
	// excluded from the merge rather than failing the call.
	if s.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
	}

	var (
		result   *Result
		cacheHit bool
	)
	if s.cache != nil {
		result, cacheHit, err = s.cache.GetOrCompute(ctx, snap.Version, req, func() (*Result, error) {
			return s.execute(ctx, snap, plan, req)
		})
	} else {
		result, err = s.execute(ctx, snap, plan, req)
	}
	if err != nil {
		s.countQuery("all", "error")
		return nil, err
	}

	s.observe(result, cacheHit, time.Since(start))
	log.Info("search completed",
		"query", req.Query,
		"mode", plan.Mode.String(),
		"total", result.Total,
		"returned", len(result.Items),
		"degraded", result.Degraded,
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// execute fans out one sub-query per kind. Each runs under its own
// timeout; the merge waits for all of them and excludes the ones that
// timed out.
func (s *Service) execute(ctx context.Context, snap *index.Snapshot, plan *query.Plan, req Request) (*Result, error) {
	type outcome struct {
		kr       *KindResult
		timedOut bool
	}
	outcomes := make([]outcome, len(plan.SubQueries))

	var wg sync.WaitGroup
	for i, sq := range plan.SubQueries {
		wg.Add(1)
		go func(i int, sq query.SubQuery) {
			defer wg.Done()
			subStart := time.Now()
			var kr *KindResult
			err := resilience.WithTimeout(ctx, s.cfg.SubQueryTimeout, "subquery-"+sq.Kind.String(),
				func(context.Context) error {
					// Candidate resolution and scoring run to
					// completion as one unit; the timeout excludes the
					// whole sub-query, it does not interrupt it midway.
					kr = s.executor.Execute(snap, sq)
					return nil
				})
			if err != nil {
				s.logger.Warn("sub-query timed out, excluding from merge",
					"kind", sq.Kind.String(), "error", err)
				outcomes[i] = outcome{timedOut: true}
			} else {
				outcomes[i] = outcome{kr: kr}
			}
			if s.metrics != nil {
				s.metrics.SubQueryLatency.WithLabelValues(sq.Kind.String()).
					Observe(time.Since(subStart).Seconds())
			}
		}(i, sq)
	}
	wg.Wait()

	var results []*KindResult
	var timedOut []string
	for i, o := range outcomes {
		if o.timedOut || o.kr == nil {
			timedOut = append(timedOut, plan.SubQueries[i].Kind.String())
			continue
		}
		results = append(results, o.kr)
	}

	result := s.composer.Compose(plan.Normalized, results, req.Offset, req.Limit)
	result.Query = req.Query
	result.SnapshotVersion = snap.Version
	if len(timedOut) > 0 {
		result.Degraded = true
		result.TimedOut = timedOut
	}
	return result, nil
}

// ReloadIndex loads a new snapshot from path and atomically swaps it
// in. On failure the previous snapshot stays live. In-flight queries
// keep the snapshot pointer they started with.
func (s *Service) ReloadIndex(ctx context.Context, path string) error {
	var snap *index.Snapshot
	retryCfg := resilience.RetryConfig{
		MaxAttempts: 3,
		// A format version mismatch will not fix itself between attempts.
		RetryIf: func(err error) bool { return !errors.Is(err, apperrors.ErrIndexVersion) },
	}
	err := resilience.Retry(ctx, "index-reload", retryCfg, func() error {
		loaded, err := index.LoadFile(path)
		if err != nil {
			return err
		}
		snap = loaded
		return nil
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.SnapshotReloads.WithLabelValues("failure").Inc()
		}
		return fmt.Errorf("reload index from %s: %w", path, err)
	}

	old := s.handle.Swap(snap)
	s.publishSnapshotStats(snap)
	if s.metrics != nil {
		s.metrics.SnapshotReloads.WithLabelValues("success").Inc()
	}
	oldVersion := uint32(0)
	if old != nil {
		oldVersion = old.Version
	}
	s.logger.Info("index snapshot swapped",
		"old_version", oldVersion,
		"new_version", snap.Version,
		"entries", snap.TotalCount(),
	)

	// Cached results from the old build are keyed by its version and
	// simply expire; flushing keeps the keyspace small.
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("cache invalidation after reload failed", "error", err)
		}
	}
	return nil
}

// Snapshot returns the currently served snapshot.
func (s *Service) Snapshot() *index.Snapshot {
	return s.handle.Current()
}

// PublishSnapshotStats exports gauge metrics for the live snapshot.
func (s *Service) PublishSnapshotStats() {
	s.publishSnapshotStats(s.handle.Current())
}

func (s *Service) publishSnapshotStats(snap *index.Snapshot) {
	if s.metrics == nil || snap == nil {
		return
	}
	for _, k := range index.Kinds() {
		s.metrics.SnapshotEntries.WithLabelValues(k.String()).Set(float64(snap.Count(k)))
	}
	s.metrics.SnapshotGrams.Set(float64(snap.GramCount()))
}

func (s *Service) clampLimits(req Request) Request {
	if req.Limit <= 0 {
		req.Limit = s.cfg.DefaultLimit
	}
	if req.Limit > s.cfg.MaxResults {
		req.Limit = s.cfg.MaxResults
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return req
}

func (s *Service) countQuery(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.SearchQueriesTotal.WithLabelValues(kind, outcome).Inc()
	}
}

func (s *Service) observe(result *Result, cacheHit bool, elapsed time.Duration) {
	outcome := "hit"
	if result.Total == 0 {
		outcome = "zero_result"
	}
	s.countQuery("all", outcome)
	if s.metrics == nil {
		return
	}
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	if cacheHit {
		s.metrics.CacheHitsTotal.Inc()
	} else if s.cache != nil {
		s.metrics.CacheMissesTotal.Inc()
	}
	s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
	s.metrics.SearchResultsCount.Observe(float64(len(result.Items)))
	if result.Degraded {
		s.metrics.DegradedQueries.Inc()
	}
}
