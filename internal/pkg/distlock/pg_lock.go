package distlock

import (
	"context"
	"database/sql"
	"hash/fnv"
)

// PGAdvisoryLock maps the string key onto Postgres's 64-bit advisory lock
// space via FNV-1a. Advisory locks are session-scoped: a crashed holder's
// connection teardown frees the lock, which stands in for the TTL the
// Redis backend gets.
type PGAdvisoryLock struct {
	db  *sql.DB
	key int64
}

// NewPGAdvisoryLock derives the advisory lock ID from key. Two processes
// hashing the same (user, day) key contend on the same ID.
func NewPGAdvisoryLock(db *sql.DB, key string) *PGAdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &PGAdvisoryLock{db: db, key: int64(h.Sum64())}
}

// Acquire is non-blocking: pg_try_advisory_lock returns immediately so a
// contended snapshot recompute can proceed without queueing.
func (l *PGAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	var ok bool
	err := l.db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.key).Scan(&ok)
	return ok, err
}

// Release unlocks the advisory lock for this session.
func (l *PGAdvisoryLock) Release(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.key)
	return err
}
