package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func frozenStore(start time.Time) (*Store, *time.Time) {
	current := start
	s := NewStore()
	s.now = func() time.Time { return current }
	return s, &current
}

func TestGetSet(t *testing.T) {
	s, current := frozenStore(time.Unix(1000, 0))

	s.Set("thread:1", "hello", time.Minute)
	v, ok := s.Get("thread:1")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	// Still there one second before expiry.
	*current = current.Add(59 * time.Second)
	_, ok = s.Get("thread:1")
	assert.True(t, ok)

	// Gone after, and gone from the map too, not just hidden.
	*current = current.Add(2 * time.Second)
	_, ok = s.Get("thread:1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Stats().Entries)
}

func TestLastWriterWins(t *testing.T) {
	s := NewStore()
	s.Set("categories", "old", time.Minute)
	s.Set("categories", "new", time.Minute)
	v, _ := s.Get("categories")
	assert.Equal(t, "new", v)

	// Setting again after an invalidation is allowed and sticks.
	s.Invalidate("categories")
	s.Set("categories", "newer", time.Minute)
	v, _ = s.Get("categories")
	assert.Equal(t, "newer", v)
}

func TestInvalidateSubstring(t *testing.T) {
	s := NewStore()
	s.Set("threads:all:all:1:25:recent", 1, time.Minute)
	s.Set("threads:7:diabetes:1:25:popular", 2, time.Minute)
	s.Set("thread:42", 3, time.Minute)
	s.Set("categories", 4, time.Minute)

	removed := s.Invalidate("threads:")
	assert.Equal(t, 2, removed)

	_, ok := s.Get("thread:42")
	assert.True(t, ok)
	_, ok = s.Get("categories")
	assert.True(t, ok)

	removed = s.Invalidate("thread:")
	assert.Equal(t, 1, removed)
	_, ok = s.Get("categories")
	assert.True(t, ok)
}

func TestSweep(t *testing.T) {
	t.Run("removes only expired entries", func(t *testing.T) {
		s, current := frozenStore(time.Unix(1000, 0))
		s.Set("thread:1", 1, time.Second)
		s.Set("thread:2", 2, time.Hour)

		*current = current.Add(time.Minute)
		removed := s.Sweep()
		assert.Equal(t, 1, removed)
		assert.Equal(t, 1, s.Stats().Entries)

		_, ok := s.Get("thread:2")
		assert.True(t, ok)
	})

	t.Run("set past the threshold triggers a sweep", func(t *testing.T) {
		s, current := frozenStore(time.Unix(1000, 0))
		for i := 0; i < sweepThreshold; i += 1 {
			s.Set(fmt.Sprintf("thread:%d", i), i, time.Second)
		}
		assert.Equal(t, sweepThreshold, s.Stats().Entries)

		*current = current.Add(time.Minute)
		s.Set("thread:fresh", "fresh", time.Hour)
		assert.Equal(t, 1, s.Stats().Entries)

		_, ok := s.Get("thread:fresh")
		assert.True(t, ok)
	})

	t.Run("live entries survive past the threshold", func(t *testing.T) {
		s := NewStore()
		for i := 0; i < sweepThreshold+50; i += 1 {
			s.Set(fmt.Sprintf("thread:%d", i), i, time.Hour)
		}
		assert.Equal(t, sweepThreshold+50, s.Stats().Entries)
	})
}

func TestTypedGet(t *testing.T) {
	type view struct {
		Title string
	}

	s := NewStore()
	s.Set("thread:1", view{Title: "hello"}, time.Minute)

	v, ok := Get[view](s, "thread:1")
	assert.True(t, ok)
	assert.Equal(t, "hello", v.Title)

	_, ok = Get[int](s, "thread:1")
	assert.False(t, ok)

	_, ok = Get[view](s, "thread:2")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i += 1 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j += 1 {
				key := fmt.Sprintf("threads:%d:%d", n, j)
				s.Set(key, j, time.Minute)
				v, ok := s.Get(key)
				assert.True(t, ok)
				assert.Equal(t, j, v)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 800, s.Stats().Entries)
}

func TestStats(t *testing.T) {
	s := NewStore()
	s.Set("categories", 1, time.Minute)

	s.Get("categories")
	s.Get("categories")
	s.Get("nope")

	stats := s.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	s.Flush()
	assert.Equal(t, 0, s.Stats().Entries)
	assert.Equal(t, int64(1), s.Stats().Evictions)
}
