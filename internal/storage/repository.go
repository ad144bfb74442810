package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/tourfront/internal/tour"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists accumulated tour listings per scope.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

const snapshotColumns = `id, scope, location_id, tours, tour_count, fetched_at, created_at, updated_at`

// scanSnapshot reads one row selected with snapshotColumns.
func scanSnapshot(row pgx.Row) (*tour.Snapshot, error) {
	var s tour.Snapshot
	var toursJSON []byte

	if err := row.Scan(
		&s.ID,
		&s.Scope,
		&s.LocationID,
		&toursJSON,
		&s.TourCount,
		&s.FetchedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.Tours = []tour.Tour{}
	if err := json.Unmarshal(toursJSON, &s.Tours); err != nil {
		return nil, fmt.Errorf("unmarshaling tours for scope %s: %w", s.Scope, err)
	}
	return &s, nil
}

// GetSnapshot retrieves the stored listing for a scope.
// Returns nil, nil when nothing has been stored yet.
func (r *Repository) GetSnapshot(ctx context.Context, scope tour.Scope) (*tour.Snapshot, error) {
	q := `SELECT ` + snapshotColumns + ` FROM tour_snapshots WHERE scope = $1`

	s, err := scanSnapshot(r.q.QueryRow(ctx, q, scope.Key()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying snapshot for scope %s: %w", scope, err)
	}
	return s, nil
}

// UpsertSnapshot inserts or replaces the listing for a scope.
// On conflict (scope), updates tours, tour_count, fetched_at, and updated_at.
func (r *Repository) UpsertSnapshot(ctx context.Context, scope tour.Scope, tours []tour.Tour) error {
	if tours == nil {
		tours = []tour.Tour{}
	}
	toursJSON, err := json.Marshal(tours)
	if err != nil {
		return fmt.Errorf("marshaling tours for scope %s: %w", scope, err)
	}

	const q = `
		INSERT INTO tour_snapshots (scope, location_id, tours, tour_count, fetched_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (scope) DO UPDATE
		SET tours      = EXCLUDED.tours,
		    tour_count = EXCLUDED.tour_count,
		    fetched_at = EXCLUDED.fetched_at,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.q.Exec(ctx, q, scope.Key(), scope.LocationID, toursJSON, len(tours)); err != nil {
		return fmt.Errorf("upserting snapshot for scope %s: %w", scope, err)
	}

	return nil
}

// FindSnapshotsByTour returns every stored listing that contains the given tour id.
// Uses the JSONB @> containment operator.
func (r *Repository) FindSnapshotsByTour(ctx context.Context, tourID string) ([]*tour.Snapshot, error) {
	filter, err := json.Marshal([]map[string]string{{"id": tourID}})
	if err != nil {
		return nil, fmt.Errorf("marshaling JSONB filter: %w", err)
	}

	q := `SELECT ` + snapshotColumns + ` FROM tour_snapshots WHERE tours @> $1::jsonb ORDER BY scope`

	rows, err := r.q.Query(ctx, q, string(filter))
	if err != nil {
		return nil, fmt.Errorf("querying snapshots by tour %s: %w", tourID, err)
	}
	defer rows.Close()

	var results []*tour.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot rows: %w", err)
	}

	return results, nil
}
