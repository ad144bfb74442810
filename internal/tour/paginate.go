package tour

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neexbeast/tourfront/internal/metrics"
)

// ErrPageLimit is returned when a run hits MaxPages while upstream still reports more data.
var ErrPageLimit = errors.New("page limit reached")

// Page is one fetched page. HasMore is nil when upstream did not send the flag.
type Page[T any] struct {
	Items   []T
	HasMore *bool
}

// more applies the continuation rule: the explicit flag wins, otherwise a
// non-empty page means there may be another one.
func (p Page[T]) more() bool {
	if p.HasMore != nil {
		return *p.HasMore
	}
	return len(p.Items) > 0
}

// PageFunc fetches the given 1-based page.
type PageFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// AccumulateOptions tunes Accumulate.
type AccumulateOptions struct {
	MaxPages int
	Logger   *zap.Logger
}

// Accumulate requests pages 1, 2, ... one at a time and concatenates their items
// until the continuation rule says stop. Any page error fails the whole run and
// no items are returned.
func Accumulate[T any](ctx context.Context, fetch PageFunc[T], opts AccumulateOptions) ([]T, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", uuid.NewString()))

	var all []T
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			metrics.AccumulationRuns.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, fmt.Errorf("accumulation cancelled before page %d: %w", page, err)
		}
		if page > maxPages {
			metrics.AccumulationRuns.WithLabelValues(metrics.OutcomeError).Inc()
			log.Warn("pagination exceeded page limit", zap.Int("max_pages", maxPages))
			return nil, fmt.Errorf("after %d pages: %w", maxPages, ErrPageLimit)
		}

		p, err := fetch(ctx, page)
		if err != nil {
			metrics.AccumulationRuns.WithLabelValues(metrics.OutcomeError).Inc()
			log.Warn("page fetch failed, discarding run",
				zap.Int("page", page), zap.Int("discarded", len(all)), zap.Error(err))
			return nil, fmt.Errorf("fetching page %d: %w", page, err)
		}

		all = append(all, p.Items...)

		if !p.more() {
			metrics.AccumulationRuns.WithLabelValues(metrics.OutcomeOK).Inc()
			metrics.AccumulationPages.Observe(float64(page))
			log.Debug("pagination complete", zap.Int("pages", page), zap.Int("items", len(all)))
			if all == nil {
				all = []T{}
			}
			return all, nil
		}
	}
}
