package diff

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/codimo/promptdiff/internal/core"
)

// DefaultCacheSize is the number of diffs a Cache keeps when no size is given.
const DefaultCacheSize = 128

// Cache memoizes diffs by their (before, after) pair. Concurrent requests for the same pair
// share a single computation. Once the cache is full, the oldest entry is evicted first.
type Cache struct {
	engine Engine
	size   int
	group  singleflight.Group

	mu      sync.Mutex
	entries map[core.Hash]*Diff
	order   []core.Hash
	hits    int
	misses  int
}

// CacheStats reports cache effectiveness. Misses counts computations actually run; callers
// that joined an in-flight computation count as neither a hit nor a miss.
type CacheStats struct {
	Entries int `json:"entries"`
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
}

// NewCache returns a cache in front of engine holding at most size diffs. A size <= 0 uses
// DefaultCacheSize.
func NewCache(engine Engine, size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{
		engine:  engine,
		size:    size,
		entries: make(map[core.Hash]*Diff),
	}
}

// Engine returns the engine used for cache misses.
func (c *Cache) Engine() Engine {
	return c.engine
}

// Compute returns the diff of before against after, computing it only if the pair has not been
// seen. Concurrent calls for the same pair share one computation. Errors, such as
// ErrInputTooLarge, are not cached.
func (c *Cache) Compute(before, after string) (*Diff, error) {
	key := core.HashStrings(before, after)

	if d, ok := c.lookup(key); ok {
		return d, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		// An earlier flight may have stored the pair since the lookup above.
		if d, ok := c.lookup(key); ok {
			return d, nil
		}

		c.mu.Lock()
		c.misses++
		c.mu.Unlock()

		d, err := c.engine.Compute(before, after)
		if err != nil {
			return nil, err
		}
		c.store(key, d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Diff), nil
}

// lookup returns a stored diff and counts the hit.
func (c *Cache) lookup(key core.Hash) (*Diff, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return d, ok
}

func (c *Cache) store(key core.Hash, d *Diff) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return
	}
	for len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = d
	c.order = append(c.order, key)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
