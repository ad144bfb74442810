package api

import (
	"context"

	"github.com/neexbeast/tourfront/internal/tour"
)

// SnapshotRepo defines the storage operations needed by handlers.
type SnapshotRepo interface {
	GetSnapshot(ctx context.Context, scope tour.Scope) (*tour.Snapshot, error)
	UpsertSnapshot(ctx context.Context, scope tour.Scope, tours []tour.Tour) error
	FindSnapshotsByTour(ctx context.Context, tourID string) ([]*tour.Snapshot, error)
}

// ListingCache defines the cache operations needed by handlers.
type ListingCache interface {
	Get(ctx context.Context, scope tour.Scope) ([]tour.Tour, error)
	Set(ctx context.Context, scope tour.Scope, tours []tour.Tour) error
	Delete(ctx context.Context, scope tour.Scope) error
}

// TourSource defines the remote tour API operations needed by handlers.
type TourSource interface {
	FetchAll(ctx context.Context, scope tour.Scope) ([]tour.Tour, error)
	Detail(ctx context.Context, id string) (*tour.TourDetail, error)
}
