package api

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/tourfront/internal/tour"
)

const warmConcurrency = 4

// Warm refreshes the given scopes in parallel, at most four at a time.
// Pagination inside each scope stays sequential. A failing scope does not stop
// the others; all failures are returned joined.
func (h *Handlers) Warm(ctx context.Context, scopes []tour.Scope) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)

	var mu sync.Mutex
	var failures []error

	for _, scope := range scopes {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					h.log.Error("warm-up panicked", zap.Stringer("scope", scope), zap.Any("recover", r))
					err = fmt.Errorf("warm-up for scope %s panicked: %v", scope, r)
				}
			}()

			if _, refreshErr := h.refresh(gCtx, scope); refreshErr != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("scope %s: %w", scope, refreshErr))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("warming scopes: %w", err)
	}
	return errors.Join(failures...)
}
