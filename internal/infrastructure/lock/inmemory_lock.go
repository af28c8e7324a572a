package lock

import (
	"context"
	"sync"
	"time"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// held represents an acquired lock with expiration
type held struct {
	expiresAt time.Time
}

// InMemorySyncLocker implements SyncLocker using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemorySyncLocker struct {
	mu        sync.Mutex
	ttl       time.Duration
	locks     map[string]held
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySyncLocker creates a new in-memory sync locker. The TTL is a
// safety net against leaked locks when a sync crashes without releasing;
// a background goroutine reaps expired entries.
func NewInMemorySyncLocker(ttl time.Duration) *InMemorySyncLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	l := &InMemorySyncLocker{
		ttl:      ttl,
		locks:    make(map[string]held),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.reapLoop()

	return l
}

// Acquire takes the lock for the (kind, localKey) pair without blocking.
// Returns false if another sync already holds it.
func (l *InMemorySyncLocker) Acquire(ctx context.Context, kind salla.EntityKind, localKey string) (bool, error) {
	key := lockKey(kind, localKey)

	l.mu.Lock()
	defer l.mu.Unlock()

	if h, exists := l.locks[key]; exists {
		if time.Now().Before(h.expiresAt) {
			return false, nil
		}
		// Expired holder, take over
	}

	l.locks[key] = held{expiresAt: time.Now().Add(l.ttl)}
	return true, nil
}

// Release frees the lock for the pair. Releasing an unheld lock is a no-op.
func (l *InMemorySyncLocker) Release(ctx context.Context, kind salla.EntityKind, localKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.locks, lockKey(kind, localKey))
	return nil
}

// Close stops the reaper goroutine. Safe to call multiple times.
func (l *InMemorySyncLocker) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

// reapLoop periodically removes expired locks
func (l *InMemorySyncLocker) reapLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.reap()
		}
	}
}

func (l *InMemorySyncLocker) reap() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, h := range l.locks {
		if now.After(h.expiresAt) {
			delete(l.locks, key)
		}
	}
}

// Size returns the number of held locks (for testing/monitoring)
func (l *InMemorySyncLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func lockKey(kind salla.EntityKind, localKey string) string {
	return string(kind) + ":" + localKey
}

// Ensure InMemorySyncLocker implements SyncLocker
var _ salla.SyncLocker = (*InMemorySyncLocker)(nil)
