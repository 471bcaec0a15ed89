package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kotoba-dict/kotoba/internal/analytics"
	"github.com/kotoba-dict/kotoba/internal/index"
	"github.com/kotoba-dict/kotoba/internal/japanese"
	"github.com/kotoba-dict/kotoba/internal/query"
	apperrors "github.com/kotoba-dict/kotoba/pkg/errors"
	"github.com/kotoba-dict/kotoba/pkg/logger"
)

// Handler exposes the search service over HTTP.
type Handler struct {
	service   *Service
	cache     *Cache
	collector *analytics.Collector
	indexPath string
	logger    *slog.Logger
}

// NewHandler wires the HTTP surface. cache and collector may be nil.
func NewHandler(service *Service, cache *Cache, collector *analytics.Collector, indexPath string) *Handler {
	return &Handler{
		service:   service,
		cache:     cache,
		collector: collector,
		indexPath: indexPath,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/entries/{kind}/{id}", h.Entry)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("POST /api/v1/admin/reload", h.Reload)
}

// Search handles GET /api/v1/search?q=...&kinds=word,kanji&mode=partial.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Search(ctx, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidQuery) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("search failed", "query", req.Query, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "search failed")
		return
	}

	if h.collector != nil {
		_, script := japanese.Normalize(req.Query)
		kinds := make([]string, 0, len(req.Kinds))
		for _, k := range req.Kinds {
			kinds = append(kinds, k.String())
		}
		h.collector.Track(analytics.QueryEvent{
			Query:     req.Query,
			Script:    script.String(),
			Mode:      req.Mode.String(),
			Kinds:     kinds,
			Total:     result.Total,
			Returned:  len(result.Items),
			Degraded:  result.Degraded,
			LatencyMs: time.Since(start).Milliseconds(),
			QueryID:   logger.QueryID(ctx),
			Timestamp: time.Now().UTC(),
		})
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Entry handles GET /api/v1/entries/{kind}/{id}.
func (h *Handler) Entry(w http.ResponseWriter, r *http.Request) {
	kind, err := index.ParseKind(r.PathValue("kind"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "id must be an unsigned integer")
		return
	}
	snap := h.service.Snapshot()
	if snap == nil {
		h.writeError(w, http.StatusServiceUnavailable, "no index loaded")
		return
	}
	entry, ok := snap.Entry(kind, uint32(id))
	if !ok {
		err := fmt.Errorf("%w: %s/%d", apperrors.ErrEntryNotFound, kind, id)
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

// Reload handles POST /api/v1/admin/reload, swapping in the snapshot file.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ReloadIndex(r.Context(), h.indexPath); err != nil {
		h.logger.Error("index reload failed", "path", h.indexPath, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "reload failed")
		return
	}
	snap := h.service.Snapshot()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "reloaded",
		"version": snap.Version,
		"entries": snap.TotalCount(),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func parseRequest(r *http.Request) (Request, error) {
	q := r.URL.Query()
	req := Request{Query: q.Get("q")}
	if req.Query == "" {
		return req, errors.New("query parameter 'q' is required")
	}
	if kindsParam := q.Get("kinds"); kindsParam != "" {
		for _, part := range strings.Split(kindsParam, ",") {
			kind, err := index.ParseKind(strings.TrimSpace(part))
			if err != nil {
				return req, err
			}
			req.Kinds = append(req.Kinds, kind)
		}
	}
	if modeParam := q.Get("mode"); modeParam != "" {
		mode, err := query.ParseMode(modeParam)
		if err != nil {
			return req, err
		}
		req.Mode = mode
	}
	var err error
	if req.Offset, err = parseUintParam(q.Get("offset")); err != nil {
		return req, errors.New("offset must be a non-negative integer")
	}
	if req.Limit, err = parseUintParam(q.Get("limit")); err != nil {
		return req, errors.New("limit must be a non-negative integer")
	}
	return req, nil
}

func parseUintParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, errors.New("invalid")
	}
	return v, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
