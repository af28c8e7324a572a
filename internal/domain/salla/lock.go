package salla

import "context"

// SyncLocker guards each (entity kind, local key) pair so that only one
// sync attempt runs against a given record at a time. Acquire returns
// false when another attempt already holds the lock; callers report the
// attempt as skipped rather than waiting.
type SyncLocker interface {
	// Acquire takes the lock for the pair. It never blocks.
	Acquire(ctx context.Context, kind EntityKind, localKey string) (bool, error)

	// Release frees a lock previously acquired for the pair.
	// Releasing a lock that is not held is a no-op.
	Release(ctx context.Context, kind EntityKind, localKey string) error
}
