package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
)

// SnapshotCache stores processed dashboard payloads as JSON strings.
// Key format: snapshot:<kind>:<query key>
type SnapshotCache struct {
	client *redis.Client
}

// NewSnapshotCache creates a SnapshotCache wrapping the given Redis client.
func NewSnapshotCache(client *redis.Client) *SnapshotCache {
	return &SnapshotCache{client: client}
}

// Load decodes the snapshot into dst, or returns domain.ErrSnapshotMiss.
func (c *SnapshotCache) Load(ctx context.Context, kind ports.DashboardKind, key string, dst any) error {
	raw, err := c.client.Get(ctx, c.key(kind, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ErrSnapshotMiss
	}
	if err != nil {
		return fmt.Errorf("snapshot load: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("snapshot decode: %w", err)
	}
	return nil
}

// Store records v for ttl.
func (c *SnapshotCache) Store(ctx context.Context, kind ports.DashboardKind, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("snapshot encode: %w", err)
	}
	return c.client.Set(ctx, c.key(kind, key), raw, ttl).Err()
}

func (c *SnapshotCache) key(kind ports.DashboardKind, key string) string {
	return fmt.Sprintf("snapshot:%s:%s", kind, key)
}
