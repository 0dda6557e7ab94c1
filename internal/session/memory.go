package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore keeps sessions in process memory. Expired entries are ignored
// by Get and dropped by Sweep; the cache never runs its own cleanup loop.
type MemoryStore struct {
	cache   *ttlcache.Cache[string, uint64]
	sweepMu sync.Mutex
	expired atomic.Int64
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		cache: ttlcache.New[string, uint64](
			ttlcache.WithDisableTouchOnHit[string, uint64](),
		),
	}
	s.cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, _ *ttlcache.Item[string, uint64]) {
		if reason == ttlcache.EvictionReasonExpired {
			s.expired.Add(1)
		}
	})
	return s
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, userID uint64, ttl time.Duration) error {
	s.cache.Set(sessionID, userID, ttl)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (uint64, error) {
	item := s.cache.Get(sessionID)
	if item == nil || item.IsExpired() {
		return 0, ErrSessionNotFound
	}
	return item.Value(), nil
}

func (s *MemoryStore) Remove(_ context.Context, sessionID string) error {
	s.cache.Delete(sessionID)
	return nil
}

// Sweep deletes expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	s.expired.Store(0)
	s.cache.DeleteExpired()
	return int(s.expired.Swap(0))
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
