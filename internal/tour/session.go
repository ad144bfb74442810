package tour

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrStale is returned by Session.Load when a newer load superseded it.
var ErrStale = errors.New("listing superseded by a newer scope")

// Source yields the accumulated list for a scope. *Client satisfies it.
type Source interface {
	FetchAll(ctx context.Context, scope Scope) ([]Tour, error)
}

// View is a snapshot of a Session for rendering.
type View struct {
	Scope   Scope
	Filter  FilterState
	Sort    SortOrder
	Tours   []Tour
	Total   int
	Loading bool
	Err     error
}

// Session owns the state behind one tour listing: the accumulated list for the
// current scope plus the filter and sort the user picked. Filter and sort
// changes never refetch. Every Load bumps an epoch and its result is only
// applied if no later Load started in the meantime.
type Session struct {
	source Source

	mu      sync.Mutex
	epoch   uint64
	scope   Scope
	tours   []Tour
	filter  FilterState
	order   SortOrder
	loading bool
	err     error
}

// NewSession creates an empty Session reading from source.
func NewSession(source Source) *Session {
	return &Session{source: source, order: SortRecommended}
}

// Load switches the session to scope and rebuilds the accumulated list from scratch.
func (s *Session) Load(ctx context.Context, scope Scope) error {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.scope = scope
	s.tours = nil
	s.err = nil
	s.loading = true
	s.mu.Unlock()

	tours, err := s.source.FetchAll(ctx, scope)

	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return fmt.Errorf("scope %s: %w", scope, ErrStale)
	}

	s.loading = false
	if err != nil {
		s.err = err
		return err
	}
	s.tours = tours
	return nil
}

// SetFilter replaces the filter state.
func (s *Session) SetFilter(f FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// SetSort replaces the sort order.
func (s *Session) SetSort(order SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = order
}

// Filter returns the current filter state.
func (s *Session) Filter() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// View renders the current state. On error no tours are returned.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Scope:   s.scope,
		Filter:  s.filter,
		Sort:    s.order,
		Total:   len(s.tours),
		Loading: s.loading,
		Err:     s.err,
	}
	if s.err == nil {
		v.Tours = Apply(s.tours, s.filter, s.order)
	}
	return v
}
