// Package ratecache implements the process-wide, time-bounded exchange-rate
// cache that sits between the conversion engine and the live rate provider.
// Entries carry two TTL classes: rates read in a historical context stay
// valid for 24 hours, live rates for 1 hour. Expiry is checked lazily at read
// time; a background sweep additionally bounds memory growth.
package ratecache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Source records where a cached rate came from.
type Source string

const (
	SourceAPI      Source = "api"
	SourceDatabase Source = "database"
	SourceFallback Source = "fallback"
)

// Defaults match the observed production configuration.
const (
	DefaultCapacity        = 1000
	DefaultCurrentTTL      = time.Hour
	DefaultHistoricalTTL   = 24 * time.Hour
	DefaultCleanupInterval = 5 * time.Minute
)

// entry is one cached rate. Owned exclusively by the cache; never escapes.
type entry struct {
	fromCurrency   string
	toCurrency     string
	rate           float64
	source         Source
	fetchedAt      time.Time
	accessCount    int64
	lastAccessedAt time.Time
}

// Options configures a Cache. Zero fields fall back to the defaults above.
type Options struct {
	Capacity        int
	CurrentTTL      time.Duration
	HistoricalTTL   time.Duration
	CleanupInterval time.Duration
}

// Cache is a capacity-bounded, TTL-bounded map from currency pair to rate.
// All operations are safe for concurrent use; a single mutex guards the map,
// the recency list and the counters. Cache operations never fail: they only
// report "absent" or return values. A fetch-function failure in GetOrFetch is
// not a cache failure and is surfaced verbatim to the caller.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*list.Element // pair key -> element whose Value is *entry
	recency *list.List               // front = most recently accessed

	capacity        int
	currentTTL      time.Duration
	historicalTTL   time.Duration
	cleanupInterval time.Duration

	hits                 int64
	misses               int64
	evictions            int64
	expired              int64
	providerCallsAvoided int64

	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool

	// now is swappable in tests.
	now func() time.Time
}

// New constructs a stopped cache. Call Start to run the background sweep.
func New(opts Options) *Cache {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.CurrentTTL <= 0 {
		opts.CurrentTTL = DefaultCurrentTTL
	}
	if opts.HistoricalTTL <= 0 {
		opts.HistoricalTTL = DefaultHistoricalTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}
	return &Cache{
		entries:         make(map[string]*list.Element),
		recency:         list.New(),
		capacity:        opts.Capacity,
		currentTTL:      opts.CurrentTTL,
		historicalTTL:   opts.HistoricalTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
}

func pairKey(from, to string) string {
	return from + ":" + to
}

// Get returns the cached rate for the pair if present and not expired under
// the applicable TTL. A present-but-expired entry is deleted as a side effect
// and counted as a miss (lazy expiry).
func (c *Cache) Get(from, to string, historical bool) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[pairKey(from, to)]
	if !ok {
		c.misses++
		return 0, false
	}

	ent := elem.Value.(*entry)
	ttl := c.currentTTL
	if historical {
		ttl = c.historicalTTL
	}
	now := c.now()
	if now.Sub(ent.fetchedAt) > ttl {
		c.removeElement(elem)
		c.expired++
		c.misses++
		return 0, false
	}

	ent.accessCount++
	ent.lastAccessedAt = now
	c.recency.MoveToFront(elem)
	c.hits++
	return ent.rate, true
}

// Set inserts or replaces the entry for the pair, refreshing its timestamp
// and resetting its access stats. A non-positive rate is treated as
// "unavailable" and never cached. At capacity, the least-recently-accessed
// entry is evicted first.
func (c *Cache) Set(from, to string, rate float64, source Source) {
	if rate <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	key := pairKey(from, to)
	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*entry)
		ent.rate = rate
		ent.source = source
		ent.fetchedAt = now
		ent.accessCount = 0
		ent.lastAccessedAt = now
		c.recency.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.capacity {
		if oldest := c.recency.Back(); oldest != nil {
			c.removeElement(oldest)
			c.evictions++
		}
	}

	elem := c.recency.PushFront(&entry{
		fromCurrency:   from,
		toCurrency:     to,
		rate:           rate,
		source:         source,
		fetchedAt:      now,
		lastAccessedAt: now,
	})
	c.entries[key] = elem
}

// FetchFunc resolves a live rate for a pair. Failures propagate out of
// GetOrFetch without caching anything.
type FetchFunc func(ctx context.Context) (float64, error)

// GetOrFetch returns the cached value when present, otherwise calls fetch and
// caches the successful result with SourceAPI. The cache lock is never held
// across the fetch call, so a slow provider cannot block other readers.
func (c *Cache) GetOrFetch(ctx context.Context, from, to string, fetch FetchFunc, historical bool) (float64, error) {
	if rate, ok := c.Get(from, to, historical); ok {
		c.mu.Lock()
		c.providerCallsAvoided++
		c.mu.Unlock()
		return rate, nil
	}

	rate, err := fetch(ctx)
	if err != nil {
		return 0, err
	}
	c.Set(from, to, rate, SourceAPI)
	return rate, nil
}

// Invalidate removes every entry where the currency appears on either side of
// the pair and returns how many were removed.
func (c *Cache) Invalidate(currency string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, elem := range c.entries {
		ent := elem.Value.(*entry)
		if ent.fromCurrency == currency || ent.toCurrency == currency {
			c.removeElement(elem)
			removed++
		}
	}
	return removed
}

// Clear removes all entries and resets the metrics counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.recency.Init()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
	c.expired = 0
	c.providerCallsAvoided = 0
}

// Len reports the current number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Start launches the background sweep that removes entries older than the
// default (current) TTL regardless of TTL class, bounding memory growth from
// rarely-read historical entries. The sweep stops when ctx is cancelled or
// Stop is called. Starting an already-started cache is a no-op.
func (c *Cache) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	stopCh, doneCh := c.stopCh, c.doneCh
	c.mu.Unlock()

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(c.cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the background sweep and waits for it to exit. Safe to call on a
// never-started or already-stopped cache.
func (c *Cache) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	stopCh, doneCh := c.stopCh, c.doneCh
	c.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// sweep removes entries older than the current TTL. Exported indirectly via
// Start; callable directly in tests through the package-internal surface.
func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, elem := range c.entries {
		ent := elem.Value.(*entry)
		if now.Sub(ent.fetchedAt) > c.currentTTL {
			c.removeElement(elem)
			c.expired++
		}
	}
}

// removeElement must be called with the lock held.
func (c *Cache) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry)
	delete(c.entries, pairKey(ent.fromCurrency, ent.toCurrency))
	c.recency.Remove(elem)
}
