package cache

import (
	"strings"
	"sync"
	"time"
)

// sweepThreshold is the store size past which a Set also sweeps expired
// entries. The sweep only ever removes entries that are already past their
// TTL, so a store full of live entries can legitimately sit above this.
const sweepThreshold = 200

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is a process-local TTL cache. Every operation takes the one mutex,
// so operations are linearizable: concurrent writers to the same key race
// and the last one wins, but no write is ever dropped. Restarting the
// process restarts the cache cold; nothing is persisted.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry

	hits      int64
	misses    int64
	evictions int64
	sweeps    int64

	now func() time.Time // swapped out by tests
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value stored under key. An entry past its TTL counts as
// absent and gets removed on the spot rather than lingering until a sweep.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses += 1
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		s.evictions += 1
		s.misses += 1
		return nil, false
	}
	s.hits += 1
	return e.value, true
}

func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
	if len(s.entries) > sweepThreshold {
		s.sweep()
	}
}

// Invalidate removes every entry whose key contains the given substring
// anywhere, not just as a prefix. Returns how many entries went away.
func (s *Store) Invalidate(substring string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.Contains(key, substring) {
			delete(s.entries, key)
			removed += 1
		}
	}
	s.evictions += int64(removed)
	return removed
}

// Sweep removes expired entries. Live entries always survive a sweep, no
// matter how big the store has grown.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweep()
}

// Callers must hold s.mu.
func (s *Store) sweep() int {
	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			removed += 1
		}
	}
	s.sweeps += 1
	s.evictions += int64(removed)
	return removed
}

// Flush empties the store entirely.
func (s *Store) Flush() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.entries)
	s.entries = make(map[string]entry)
	s.evictions += int64(removed)
	return removed
}

type Stats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Sweeps    int64 `json:"sweeps"`
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Entries:   len(s.entries),
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
		Sweeps:    s.sweeps,
	}
}

// Get is the typed counterpart to Store.Get. A present entry of the wrong
// type counts as absent, which can only happen if two call sites disagree
// about a key.
func Get[T any](s *Store, key string) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
