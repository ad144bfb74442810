package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/tourfront/internal/tour"
)

const defaultTTL = 15 * time.Minute

// Cache keeps accumulated tour listings in Redis, one entry per scope.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache. A non-positive ttl falls back to 15 minutes.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// key returns the Redis key for the given scope.
func key(scope tour.Scope) string {
	return "tours:" + scope.Key()
}

// Get retrieves the listing for scope.
// Returns nil, nil on a cache miss (not an error).
func (c *Cache) Get(ctx context.Context, scope tour.Scope) ([]tour.Tour, error) {
	val, err := c.client.Get(ctx, key(scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get for scope %s: %w", scope, err)
	}

	tours := []tour.Tour{}
	if err := json.Unmarshal(val, &tours); err != nil {
		return nil, fmt.Errorf("unmarshaling cached tours for scope %s: %w", scope, err)
	}

	return tours, nil
}

// Set stores the listing for scope with the configured TTL.
// An empty listing is cached too; a nil one is ignored.
func (c *Cache) Set(ctx context.Context, scope tour.Scope, tours []tour.Tour) error {
	if tours == nil {
		return nil
	}

	b, err := json.Marshal(tours)
	if err != nil {
		return fmt.Errorf("marshaling tours for scope %s: %w", scope, err)
	}

	if err := c.client.Set(ctx, key(scope), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set for scope %s: %w", scope, err)
	}

	return nil
}

// Delete removes the cached listing for scope.
func (c *Cache) Delete(ctx context.Context, scope tour.Scope) error {
	if err := c.client.Del(ctx, key(scope)).Err(); err != nil {
		return fmt.Errorf("cache delete for scope %s: %w", scope, err)
	}
	return nil
}
