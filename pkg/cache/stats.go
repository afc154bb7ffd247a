package cache

import "sync/atomic"

// Statistics tracks cache effectiveness. All counters are atomic so reads
// never block the cache.
type Statistics struct {
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	size      atomic.Int64
}

// NewStatistics creates zeroed statistics.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Hit records a cache hit.
func (s *Statistics) Hit() { s.hits.Add(1) }

// Miss records a cache miss.
func (s *Statistics) Miss() { s.misses.Add(1) }

// Evict records an eviction.
func (s *Statistics) Evict() { s.evictions.Add(1) }

// SetSize records the current entry count.
func (s *Statistics) SetSize(n int) { s.size.Store(int64(n)) }

// Hits returns the total hit count.
func (s *Statistics) Hits() int64 { return s.hits.Load() }

// Misses returns the total miss count.
func (s *Statistics) Misses() int64 { return s.misses.Load() }

// Evictions returns the total eviction count.
func (s *Statistics) Evictions() int64 { return s.evictions.Load() }

// Size returns the last recorded entry count.
func (s *Statistics) Size() int64 { return s.size.Load() }

// HitRate returns hits / (hits + misses), or 0 with no lookups.
func (s *Statistics) HitRate() float64 {
	hits := s.hits.Load()
	total := hits + s.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
