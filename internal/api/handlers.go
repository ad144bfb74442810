package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/neexbeast/tourfront/internal/metrics"
	"github.com/neexbeast/tourfront/internal/tour"
)

const msgFetchFailed = "Failed to fetch tours"

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	repo           SnapshotRepo
	cache          ListingCache
	source         TourSource
	snapshotMaxAge time.Duration
	now            func() time.Time
	log            *zap.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
// Stored snapshots older than snapshotMaxAge are ignored in favour of a fresh fetch.
func NewHandlers(repo SnapshotRepo, cache ListingCache, source TourSource, snapshotMaxAge time.Duration, log *zap.Logger) *Handlers {
	return &Handlers{
		repo:           repo,
		cache:          cache,
		source:         source,
		snapshotMaxAge: snapshotMaxAge,
		now:            time.Now,
		log:            log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type listMeta struct {
	Total       int            `json:"total"`
	Accumulated int            `json:"accumulated"`
	Scope       string         `json:"scope"`
	Sort        tour.SortOrder `json:"sort"`
	Source      string         `json:"source"`
}

type listResponse struct {
	Data []tour.Tour `json:"data"`
	Meta listMeta    `json:"meta"`
}

// ListTours handles GET /api/v1/tours.
// Resolves the scope, loads the accumulated listing, then filters and sorts it.
func (h *Handlers) ListTours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope := tour.ScopeFromQuery(q)

	order, err := tour.ParseSortOrder(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := tour.FilterFromQuery(q)

	tours, source, err := h.listing(r.Context(), scope)
	if err != nil {
		h.log.Error("listing failed", zap.Stringer("scope", scope), zap.Error(err))
		writeError(w, http.StatusBadGateway, msgFetchFailed)
		return
	}

	result := tour.Apply(tours, filter, order)
	writeJSON(w, http.StatusOK, listResponse{
		Data: result,
		Meta: listMeta{
			Total:       len(result),
			Accumulated: len(tours),
			Scope:       scope.String(),
			Sort:        order,
			Source:      source,
		},
	})
}

// listing returns the accumulated list for scope.
// Cache hit → return. Fresh snapshot → cache + return. Otherwise fetch upstream, persist, cache.
func (h *Handlers) listing(ctx context.Context, scope tour.Scope) ([]tour.Tour, string, error) {
	cached, err := h.cache.Get(ctx, scope)
	if err != nil {
		h.log.Error("cache get failed", zap.Stringer("scope", scope), zap.Error(err))
	}
	if cached != nil {
		metrics.ListingSource.WithLabelValues(metrics.SourceCache).Inc()
		return cached, metrics.SourceCache, nil
	}

	snap, err := h.repo.GetSnapshot(ctx, scope)
	if err != nil {
		h.log.Warn("snapshot get failed, falling back to upstream", zap.Stringer("scope", scope), zap.Error(err))
	}
	if snap != nil && snap.FreshAt(h.now(), h.snapshotMaxAge) {
		if err := h.cache.Set(ctx, scope, snap.Tours); err != nil {
			h.log.Warn("cache set failed after snapshot hit", zap.Stringer("scope", scope), zap.Error(err))
		}
		metrics.ListingSource.WithLabelValues(metrics.SourceSnapshot).Inc()
		return snap.Tours, metrics.SourceSnapshot, nil
	}

	tours, err := h.source.FetchAll(ctx, scope)
	if err != nil {
		return nil, "", err
	}

	if err := h.repo.UpsertSnapshot(ctx, scope, tours); err != nil {
		h.log.Warn("snapshot upsert failed after fetch", zap.Stringer("scope", scope), zap.Error(err))
	}
	if err := h.cache.Set(ctx, scope, tours); err != nil {
		h.log.Warn("cache set failed after fetch", zap.Stringer("scope", scope), zap.Error(err))
	}
	metrics.ListingSource.WithLabelValues(metrics.SourceUpstream).Inc()
	return tours, metrics.SourceUpstream, nil
}

type refreshResponse struct {
	Scope string `json:"scope"`
	Total int    `json:"total"`
}

// RefreshTours handles POST /api/v1/tours/refresh.
// Fetches the whole scope again, upserts the snapshot, invalidates + repopulates cache.
func (h *Handlers) RefreshTours(w http.ResponseWriter, r *http.Request) {
	scope := tour.ScopeFromQuery(r.URL.Query())

	tours, err := h.refresh(r.Context(), scope)
	if err != nil {
		var pe *persistError
		if errors.As(err, &pe) {
			writeError(w, http.StatusInternalServerError, "failed to store tours")
			return
		}
		writeError(w, http.StatusBadGateway, msgFetchFailed)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{Scope: scope.String(), Total: len(tours)})
}

// persistError marks a refresh that fetched fine but could not be stored.
type persistError struct{ err error }

func (e *persistError) Error() string { return "persisting snapshot: " + e.err.Error() }
func (e *persistError) Unwrap() error { return e.err }

func (h *Handlers) refresh(ctx context.Context, scope tour.Scope) ([]tour.Tour, error) {
	tours, err := h.source.FetchAll(ctx, scope)
	if err != nil {
		h.log.Error("refresh fetch failed", zap.Stringer("scope", scope), zap.Error(err))
		return nil, err
	}

	if err := h.repo.UpsertSnapshot(ctx, scope, tours); err != nil {
		h.log.Error("refresh upsert failed", zap.Stringer("scope", scope), zap.Error(err))
		return nil, &persistError{err: err}
	}

	if err := h.cache.Delete(ctx, scope); err != nil {
		h.log.Warn("cache delete failed", zap.Stringer("scope", scope), zap.Error(err))
	}
	if err := h.cache.Set(ctx, scope, tours); err != nil {
		h.log.Warn("cache set failed after refresh", zap.Stringer("scope", scope), zap.Error(err))
	}

	h.log.Info("scope refreshed", zap.Stringer("scope", scope), zap.Int("tours", len(tours)))
	return tours, nil
}

// GetTour handles GET /api/v1/tours/{id}.
func (h *Handlers) GetTour(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.source.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, tour.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tour not found")
			return
		}
		h.log.Error("tour detail failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to fetch tour")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": detail})
}

type scopeEntry struct {
	Scope      string    `json:"scope"`
	LocationID string    `json:"location_id,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// GetTourScopes handles GET /api/v1/tours/{id}/scopes.
// Lists the stored scopes whose listing contains the tour.
func (h *Handlers) GetTourScopes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snaps, err := h.repo.FindSnapshotsByTour(r.Context(), id)
	if err != nil {
		h.log.Error("snapshot lookup failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]scopeEntry, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, scopeEntry{Scope: s.Scope, LocationID: s.LocationID, FetchedAt: s.FetchedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc handles GET /api/v1/health.
// Pings DB and Redis; returns 200 if both ok, 503 otherwise.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		overall := "ok"
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", zap.Error(err))
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", zap.Error(err))
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if status != http.StatusOK {
			overall = "degraded"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
