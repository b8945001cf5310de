package repositories

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type sessionEntry[V any] struct {
	value      V
	lastAccess time.Time
}

// SessionRepository keeps values in memory and forgets those idle for longer than the TTL
type SessionRepository[V any] struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry[V]
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	onEvict func(id string, v V)
}

// NewSessionRepository creates an empty repository. A ttl of zero disables eviction.
func NewSessionRepository[V any](ttl time.Duration, logger *zap.Logger) *SessionRepository[V] {
	return &SessionRepository[V]{
		entries: make(map[string]*sessionEntry[V]),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Put stores v under id, replacing any previous value
func (r *SessionRepository[V]) Put(id string, v V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &sessionEntry[V]{value: v, lastAccess: r.now()}
}

// Get returns the value stored under id and refreshes its idle timer
func (r *SessionRepository[V]) Get(id string) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		var zero V
		return zero, false
	}
	entry.lastAccess = r.now()
	return entry.value, true
}

// Delete removes id
func (r *SessionRepository[V]) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Len returns the number of stored values
func (r *SessionRepository[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// OnEvict registers a callback run for every value removed by EvictIdle
func (r *SessionRepository[V]) OnEvict(fn func(id string, v V)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = fn
}

// EvictIdle removes values whose idle time exceeds the TTL and returns how many were removed.
// keep may veto eviction of a value, e.g. one with work in progress.
func (r *SessionRepository[V]) EvictIdle(keep func(V) bool) int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	cutoff := r.now().Add(-r.ttl)
	evicted := make(map[string]V)
	for id, entry := range r.entries {
		if entry.lastAccess.After(cutoff) {
			continue
		}
		if keep != nil && keep(entry.value) {
			continue
		}
		evicted[id] = entry.value
		delete(r.entries, id)
	}
	onEvict := r.onEvict
	r.mu.Unlock()

	for id, v := range evicted {
		if onEvict != nil {
			onEvict(id, v)
		}
	}
	return len(evicted)
}

// RunJanitor evicts idle values every interval until ctx is done
func (r *SessionRepository[V]) RunJanitor(ctx context.Context, interval time.Duration, keep func(V) bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(keep); n > 0 {
				r.logger.Info("evicted idle sessions", zap.Int("count", n), zap.Int("remaining", r.Len()))
			}
		}
	}
}
