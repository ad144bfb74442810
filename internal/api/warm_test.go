package api_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neexbeast/tourfront/internal/api"
	"github.com/neexbeast/tourfront/internal/tour"
)

func TestWarm_RefreshesEveryScope(t *testing.T) {
	var mu sync.Mutex
	stored := map[string]int{}

	repo := emptyRepo()
	repo.upsertFn = func(_ context.Context, s tour.Scope, tours []tour.Tour) error {
		mu.Lock()
		defer mu.Unlock()
		stored[s.Key()] = len(tours)
		return nil
	}

	h := api.NewHandlers(repo, emptyCache(), sourceReturning(sampleTours(), nil), time.Hour, zap.NewNop())
	scopes := []tour.Scope{tour.AllTours, tour.NewScope("1"), tour.NewScope("2"), tour.NewScope("3"), tour.NewScope("4")}

	require.NoError(t, h.Warm(context.Background(), scopes))
	assert.Len(t, stored, 5)
	assert.Equal(t, 3, stored["location:4"])
}

func TestWarm_PartialFailure(t *testing.T) {
	source := sourceReturning(nil, nil)
	source.fetchAllFn = func(_ context.Context, s tour.Scope) ([]tour.Tour, error) {
		if s.LocationID == "bad" {
			return nil, fmt.Errorf("upstream 500")
		}
		return sampleTours(), nil
	}

	var mu sync.Mutex
	var refreshed []string
	repo := emptyRepo()
	repo.upsertFn = func(_ context.Context, s tour.Scope, _ []tour.Tour) error {
		mu.Lock()
		defer mu.Unlock()
		refreshed = append(refreshed, s.Key())
		return nil
	}

	h := api.NewHandlers(repo, emptyCache(), source, time.Hour, zap.NewNop())
	err := h.Warm(context.Background(), []tour.Scope{tour.NewScope("good"), tour.NewScope("bad")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scope bad")
	assert.Equal(t, []string{"location:good"}, refreshed)
}

func TestWarm_NoScopes(t *testing.T) {
	h := api.NewHandlers(emptyRepo(), emptyCache(), sourceReturning(nil, nil), time.Hour, zap.NewNop())
	assert.NoError(t, h.Warm(context.Background(), nil))
}
