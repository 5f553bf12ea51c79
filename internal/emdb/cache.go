package emdb

import "sync"

// countyCacheSize is the default number of counties kept mapped at once,
// matching the original EditorCache's EDITOR_CACHE_SIZE.
const countyCacheSize = 10

// countyCacheEntry tracks one open container and its last access tick,
// or a negative ("this fips has no county") marker.
type countyCacheEntry struct {
	container  *Container
	lastAccess uint64
	noCounty   bool
}

// CountyOpener opens (creating if necessary) the container for fips.
// Returning a *Error with KindNotFound tells the cache to remember fips
// as having no county (spec.md §4.6 "negative caching"), rather than
// retrying the open on every subsequent lookup.
type CountyOpener func(fips int32) (*Container, error)

// CountyCache is a bounded LRU of open county containers, keyed by FIPS
// code, with negative caching for counties known not to exist
// (spec.md §4.6). Eviction runs a best-effort Sync before Close, exactly
// as the original EditorCache flushes a county before reusing its slot.
type CountyCache struct {
	mu       sync.Mutex
	capacity int
	open     CountyOpener
	entries  map[int32]*countyCacheEntry
	counter  uint64
}

// NewCountyCache creates a cache of the given capacity (0 uses the
// default of 10) backed by open to materialize cache misses.
func NewCountyCache(capacity int, open CountyOpener) *CountyCache {
	if capacity <= 0 {
		capacity = countyCacheSize
	}
	return &CountyCache{
		capacity: capacity,
		open:     open,
		entries:  make(map[int32]*countyCacheEntry),
	}
}

// tick returns the next monotonic access value, resetting every entry's
// bookkeeping (but not evicting their containers) on the rare wraparound,
// per spec.md §4.6.
func (c *CountyCache) tick() uint64 {
	if c.counter == ^uint64(0) {
		c.counter = 0
		for _, e := range c.entries {
			e.lastAccess = 0
		}
	}
	c.counter++
	return c.counter
}

// Get returns the open container for fips, opening (or reusing a cached
// negative result for) it as needed.
func (c *CountyCache) Get(fips int32) (*Container, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[fips]; ok {
		e.lastAccess = c.tick()
		if e.noCounty {
			return nil, newErr("county_cache_get", KindNoCounty, nil)
		}
		return e.container, nil
	}

	cont, err := c.open(fips)
	if err != nil {
		if e, ok := err.(*Error); ok && e.Kind == KindNotFound {
			c.insertLocked(fips, &countyCacheEntry{noCounty: true, lastAccess: c.tick()})
			return nil, newErr("county_cache_get", KindNoCounty, nil)
		}
		return nil, err
	}

	c.insertLocked(fips, &countyCacheEntry{container: cont, lastAccess: c.tick()})
	return cont, nil
}

// insertLocked adds entry under fips, evicting the least-recently-used
// entry first if the cache is at capacity. Caller holds c.mu.
func (c *CountyCache) insertLocked(fips int32, entry *countyCacheEntry) {
	if len(c.entries) >= c.capacity {
		c.evictOneLocked()
	}
	c.entries[fips] = entry
}

func (c *CountyCache) evictOneLocked() {
	var victimFips int32
	var victim *countyCacheEntry
	for fips, e := range c.entries {
		if victim == nil || e.lastAccess < victim.lastAccess {
			victimFips, victim = fips, e
		}
	}
	if victim == nil {
		return
	}
	delete(c.entries, victimFips)
	if victim.container != nil {
		_ = victim.container.Sync()
		_ = victim.container.Close()
	}
}

// Evict closes and removes fips from the cache, if present, returning
// whether it was.
func (c *CountyCache) Evict(fips int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[fips]
	if !ok {
		return false
	}
	delete(c.entries, fips)
	if e.container != nil {
		_ = e.container.Sync()
		_ = e.container.Close()
	}
	return true
}

// Close evicts every entry, syncing and closing every open container.
func (c *CountyCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for fips, e := range c.entries {
		delete(c.entries, fips)
		if e.container == nil {
			continue
		}
		if err := e.container.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := e.container.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Len returns the number of entries (positive or negative) currently cached.
func (c *CountyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
