package tour_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tourfront/internal/tour"
)

// gatedSource blocks FetchAll for a scope until its gate is released.
type gatedSource struct {
	mu      sync.Mutex
	calls   int
	gates   map[string]chan struct{}
	results map[string][]tour.Tour
	errs    map[string]error
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		gates:   map[string]chan struct{}{},
		results: map[string][]tour.Tour{},
		errs:    map[string]error{},
	}
}

func (g *gatedSource) FetchAll(ctx context.Context, scope tour.Scope) ([]tour.Tour, error) {
	g.mu.Lock()
	g.calls++
	gate := g.gates[scope.Key()]
	res := g.results[scope.Key()]
	err := g.errs[scope.Key()]
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return res, err
}

func TestSession_LoadAndView(t *testing.T) {
	src := newGatedSource()
	src.results[tour.AllTours.Key()] = sampleTours()

	s := tour.NewSession(src)
	require.NoError(t, s.Load(context.Background(), tour.AllTours))

	v := s.View()
	assert.NoError(t, v.Err)
	assert.False(t, v.Loading)
	assert.Equal(t, 5, v.Total)
	assert.Equal(t, tour.SortRecommended, v.Sort)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(v.Tours))
}

func TestSession_FilterAndSortDoNotRefetch(t *testing.T) {
	src := newGatedSource()
	src.results[tour.AllTours.Key()] = sampleTours()

	s := tour.NewSession(src)
	require.NoError(t, s.Load(context.Background(), tour.AllTours))

	s.SetFilter(tour.FilterState{Language: "("})
	s.SetSort(tour.SortPriceLowHigh)

	v := s.View()
	assert.Equal(t, []string{"1", "3", "2"}, ids(v.Tours))
	assert.Equal(t, 5, v.Total)
	assert.Equal(t, tour.FilterState{Language: "("}, s.Filter())
	assert.Equal(t, 1, src.calls)
}

func TestSession_ErrorHidesList(t *testing.T) {
	src := newGatedSource()
	src.results[tour.AllTours.Key()] = sampleTours()
	src.errs[tour.NewScope("9").Key()] = errors.New("GET returned status 500")

	s := tour.NewSession(src)
	require.NoError(t, s.Load(context.Background(), tour.AllTours))
	require.Error(t, s.Load(context.Background(), tour.NewScope("9")))

	v := s.View()
	assert.Error(t, v.Err)
	assert.Empty(t, v.Tours)
	assert.Equal(t, 0, v.Total)
	assert.Equal(t, "9", v.Scope.LocationID)
}

func TestSession_StaleLoadIsDiscarded(t *testing.T) {
	src := newGatedSource()
	slow := tour.NewScope("slow")
	fast := tour.NewScope("fast")
	src.gates[slow.Key()] = make(chan struct{})
	src.results[slow.Key()] = []tour.Tour{{ID: "stale"}}
	src.results[fast.Key()] = []tour.Tour{{ID: "fresh"}}

	s := tour.NewSession(src)

	slowErr := make(chan error, 1)
	go func() { slowErr <- s.Load(context.Background(), slow) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.calls == 1
	}, waitFor, tick)

	assert.True(t, s.View().Loading)

	require.NoError(t, s.Load(context.Background(), fast))
	close(src.gates[slow.Key()])

	require.ErrorIs(t, <-slowErr, tour.ErrStale)

	v := s.View()
	assert.Equal(t, fast, v.Scope)
	assert.False(t, v.Loading)
	assert.Equal(t, []string{"fresh"}, ids(v.Tours))
}

func TestSession_ScopeChangeClearsList(t *testing.T) {
	src := newGatedSource()
	next := tour.NewScope("next")
	src.results[tour.AllTours.Key()] = sampleTours()
	src.gates[next.Key()] = make(chan struct{})

	s := tour.NewSession(src)
	require.NoError(t, s.Load(context.Background(), tour.AllTours))

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background(), next) }()

	require.Eventually(t, func() bool { return s.View().Loading }, waitFor, tick)
	assert.Empty(t, s.View().Tours)

	close(src.gates[next.Key()])
	require.NoError(t, <-done)
}
