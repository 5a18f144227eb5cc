package ratecache

import "time"

// Metrics is a point-in-time snapshot of the cache counters. Counters reset
// only on Clear or process restart.
type Metrics struct {
	Hits                 int64
	Misses               int64
	Entries              int
	Evictions            int64
	Expired              int64
	ProviderCallsAvoided int64
	HitRate              float64
	AvgAccessCount       float64
	OldestEntryAge       time.Duration
	NewestEntryAge       time.Duration
}

// Snapshot derives the current metrics under the cache lock.
func (c *Cache) Snapshot() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := Metrics{
		Hits:                 c.hits,
		Misses:               c.misses,
		Entries:              len(c.entries),
		Evictions:            c.evictions,
		Expired:              c.expired,
		ProviderCallsAvoided: c.providerCallsAvoided,
	}
	if total := c.hits + c.misses; total > 0 {
		m.HitRate = float64(c.hits) / float64(total)
	}

	now := c.now()
	var totalAccess int64
	for _, elem := range c.entries {
		ent := elem.Value.(*entry)
		totalAccess += ent.accessCount
		age := now.Sub(ent.fetchedAt)
		if age > m.OldestEntryAge {
			m.OldestEntryAge = age
		}
		if m.NewestEntryAge == 0 || age < m.NewestEntryAge {
			m.NewestEntryAge = age
		}
	}
	if len(c.entries) > 0 {
		m.AvgAccessCount = float64(totalAccess) / float64(len(c.entries))
	}
	return m
}
