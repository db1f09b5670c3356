package thumbcache

import (
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	// ShardCount is the number of shards. It is a power of two so the
	// shard index is a mask of the key hash.
	ShardCount = 16

	// DefaultMaxBytes is the total budget used when New gets a
	// non-positive size.
	DefaultMaxBytes = 64 << 20

	shardMask = ShardCount - 1
)

// EvictFunc is called for every entry the cache drops to stay inside its
// budget. It is not called for Delete, DeletePrefix or Clear.
type EvictFunc func(key string, size int)

// Option configures a Cache.
type Option func(*Cache)

// WithEvictHook sets the function called on budget evictions.
func WithEvictHook(fn EvictFunc) Option {
	return func(c *Cache) {
		c.onEvict = fn
	}
}

// Cache is a thread-safe, sharded LRU cache bounded by total value size.
type Cache struct {
	shards      [ShardCount]*shard
	shardBudget int64
	onEvict     EvictFunc

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*entry
	lru     lruList
	bytes   int64
}

type entry struct {
	value []byte
	node  *lruNode
}

// New creates a cache holding at most maxBytes of values, split evenly
// across shards. A value larger than one shard's share is never stored.
func New(maxBytes int64, opts ...Option) *Cache {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	c := &Cache{shardBudget: max(maxBytes/ShardCount, 1)}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// hashKey computes the FNV-1a hash of a key.
func hashKey(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

func (c *Cache) shardFor(key string) *shard {
	return c.shards[hashKey(key)&shardMask]
}

// Get returns the cached bytes for key and marks them recently used.
// The returned slice is shared and must not be modified.
func (c *Cache) Get(key string) ([]byte, bool) {
	s := c.shardFor(key)

	s.mu.RLock()
	_, exists := s.entries[key]
	s.mu.RUnlock()
	if !exists {
		c.misses.Add(1)
		return nil, false
	}

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	s.lru.MoveToFront(e.node)
	value := e.value
	s.mu.Unlock()

	c.hits.Add(1)
	return value, true
}

// Set stores value under key, evicting least recently used entries of
// the same shard until it fits. It reports false if the value is larger
// than a shard's budget and was not stored.
//
// The value is stored as-is; callers must not modify it afterwards.
func (c *Cache) Set(key string, value []byte) bool {
	size := int64(len(value))
	if size > c.shardBudget {
		return false
	}
	s := c.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.bytes -= int64(len(e.value))
		s.lru.Remove(e.node)
		delete(s.entries, key)
	}

	for s.bytes+size > c.shardBudget {
		oldest := s.lru.Oldest()
		if oldest == nil {
			break
		}
		e := s.entries[oldest.key]
		s.lru.Remove(oldest)
		delete(s.entries, oldest.key)
		s.bytes -= int64(len(e.value))
		c.evictions.Add(1)
		if c.onEvict != nil {
			c.onEvict(oldest.key, len(e.value))
		}
	}

	s.entries[key] = &entry{value: value, node: s.lru.PushFront(key)}
	s.bytes += size
	return true
}

// Delete removes key and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	s := c.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.lru.Remove(e.node)
	delete(s.entries, key)
	s.bytes -= int64(len(e.value))
	return true
}

// DeletePrefix removes every key starting with prefix and returns how
// many were removed.
func (c *Cache) DeletePrefix(prefix string) int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for key, e := range s.entries {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			s.lru.Remove(e.node)
			delete(s.entries, key)
			s.bytes -= int64(len(e.value))
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// Clear removes all entries.
func (c *Cache) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[string]*entry)
		s.lru.Clear()
		s.bytes = 0
		s.mu.Unlock()
	}
}

// Len returns the number of entries across all shards.
func (c *Cache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Bytes returns the total size of cached values.
func (c *Cache) Bytes() int64 {
	var total int64
	for _, s := range c.shards {
		s.mu.RLock()
		total += s.bytes
		s.mu.RUnlock()
	}
	return total
}

// MaxBytes returns the total budget.
func (c *Cache) MaxBytes() int64 {
	return c.shardBudget * ShardCount
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len       int
	Bytes     int64
	MaxBytes  int64
	Hits      uint64
	Misses    uint64
	HitRate   float64
	Evictions uint64
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:       c.Len(),
		Bytes:     c.Bytes(),
		MaxBytes:  c.MaxBytes(),
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate,
		Evictions: c.evictions.Load(),
	}
}

// ResetStats resets the hit, miss and eviction counters.
func (c *Cache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
