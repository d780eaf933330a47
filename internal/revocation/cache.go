// Package revocation implements "logout everywhere" for stateless access
// tokens. Logout writes a per-user timestamp into redis with a TTL equal to
// the access-token lifetime; the access guard rejects any token whose
// issued-at does not strictly postdate that marker. Once the TTL elapses
// every token issued before the marker has expired on its own, so the
// marker can be forgotten. No allow-list of live tokens is kept anywhere.
package revocation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache wires the cache to a redis client. ttl must be the access-token
// lifetime.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// MarkLogout records that every token issued at or before `at` is dead.
// A second logout overwrites the previous marker.
func (c *Cache) MarkLogout(ctx context.Context, userID string, at time.Time) error {
	return c.rdb.Set(ctx, userID, strconv.FormatInt(at.Unix(), 10), c.ttl).Err()
}

// LogoutTime returns the user's logout marker, if one is still alive.
func (c *Cache) LogoutTime(ctx context.Context, userID string) (time.Time, bool, error) {
	val, err := c.rdb.Get(ctx, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	sec, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(sec, 0), true, nil
}
