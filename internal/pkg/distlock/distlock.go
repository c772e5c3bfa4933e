// Package distlock serializes snapshot generation across processes. Keys
// name a (user, day) pair; whoever holds the key owns that day's recompute.
// Redis is the preferred backend, with Postgres advisory locks as the
// fallback so a deployment without Redis still gets mutual exclusion.
package distlock

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock is a single-use distributed lock. A Lock instance belongs to one
// goroutine; concurrent holders create their own instances for the same key.
type Lock interface {
	// Acquire attempts to take the lock without blocking. False means
	// another holder owns the key.
	Acquire(ctx context.Context) (bool, error)
	// Release gives the lock back, only if this instance still owns it.
	Release(ctx context.Context) error
}

// NewLock picks the backend: Redis when a client is configured, otherwise
// a Postgres advisory lock on the same database the snapshots live in.
// The ttl applies only to the Redis backend; advisory locks are released
// by session teardown instead.
func NewLock(redisClient *redis.Client, db *sql.DB, key string, ttl time.Duration) Lock {
	if redisClient != nil {
		return NewRedisLock(redisClient, key, ttl)
	}
	return NewPGAdvisoryLock(db, key)
}
