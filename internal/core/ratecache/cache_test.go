package ratecache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(opts Options) (*Cache, *time.Time) {
	c := New(opts)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestGetMissOnEmptyCache(t *testing.T) {
	c, _ := newTestCache(Options{})

	_, ok := c.Get("USD", "EUR", false)
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Snapshot().Misses)
}

func TestSetThenGetWithinTTL(t *testing.T) {
	c, now := newTestCache(Options{})

	c.Set("USD", "EUR", 0.93, SourceAPI)
	*now = now.Add(59 * time.Minute)

	rate, ok := c.Get("USD", "EUR", false)
	require.True(t, ok)
	assert.Equal(t, 0.93, rate)
	assert.Equal(t, int64(1), c.Snapshot().Hits)
}

func TestExpiredEntryIsAbsentAndDeleted(t *testing.T) {
	c, now := newTestCache(Options{})

	c.Set("USD", "EUR", 0.93, SourceAPI)
	*now = now.Add(61 * time.Minute)

	_, ok := c.Get("USD", "EUR", false)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "lazy expiry must delete the entry")

	m := c.Snapshot()
	assert.Equal(t, int64(1), m.Misses)
	assert.Equal(t, int64(1), m.Expired)
}

func TestHistoricalTTLIsLonger(t *testing.T) {
	c, now := newTestCache(Options{})

	c.Set("USD", "EUR", 0.93, SourceDatabase)
	*now = now.Add(2 * time.Hour)

	// Still valid under the 24h historical TTL.
	rate, ok := c.Get("USD", "EUR", true)
	require.True(t, ok)
	assert.Equal(t, 0.93, rate)

	// But expired under the 1h current TTL.
	_, ok = c.Get("USD", "EUR", false)
	assert.False(t, ok)
}

func TestNonPositiveRateIsNeverCached(t *testing.T) {
	c, _ := newTestCache(Options{})

	c.Set("USD", "EUR", 0, SourceAPI)
	c.Set("USD", "EUR", -1.5, SourceAPI)

	assert.Equal(t, 0, c.Len())
}

func TestEvictionAtCapacity(t *testing.T) {
	c, _ := newTestCache(Options{Capacity: 1000})

	for i := 0; i < 1001; i++ {
		c.Set(fmt.Sprintf("C%03d", i), "EUR", 1.5, SourceAPI)
	}

	assert.Equal(t, 1000, c.Len())
	_, ok := c.Get("C000", "EUR", false)
	assert.False(t, ok, "least-recently-accessed entry must be gone")
	_, ok = c.Get("C001", "EUR", false)
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Snapshot().Evictions)
}

func TestEvictionPrefersLeastRecentlyAccessed(t *testing.T) {
	c, _ := newTestCache(Options{Capacity: 2})

	c.Set("USD", "EUR", 0.9, SourceAPI)
	c.Set("GBP", "EUR", 1.2, SourceAPI)

	// Touch USD so GBP becomes least recently accessed.
	_, ok := c.Get("USD", "EUR", false)
	require.True(t, ok)

	c.Set("CHF", "EUR", 1.05, SourceAPI)

	_, ok = c.Get("GBP", "EUR", false)
	assert.False(t, ok)
	_, ok = c.Get("USD", "EUR", false)
	assert.True(t, ok)
}

func TestInvalidateRemovesBothSides(t *testing.T) {
	c, _ := newTestCache(Options{})

	c.Set("USD", "EUR", 0.9, SourceAPI)
	c.Set("EUR", "USD", 1.1, SourceAPI)
	c.Set("GBP", "CHF", 1.15, SourceAPI)

	removed := c.Invalidate("USD")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("GBP", "CHF", false)
	assert.True(t, ok)
}

func TestClearResetsMetrics(t *testing.T) {
	c, _ := newTestCache(Options{})

	c.Set("USD", "EUR", 0.9, SourceAPI)
	c.Get("USD", "EUR", false)
	c.Get("USD", "GBP", false)

	c.Clear()

	m := c.Snapshot()
	assert.Equal(t, 0, m.Entries)
	assert.Equal(t, int64(0), m.Hits)
	assert.Equal(t, int64(0), m.Misses)
}

func TestGetOrFetchCachesSuccessfulResult(t *testing.T) {
	c, _ := newTestCache(Options{})
	calls := 0
	fetch := func(ctx context.Context) (float64, error) {
		calls++
		return 0.85, nil
	}

	rate, err := c.GetOrFetch(context.Background(), "USD", "EUR", fetch, false)
	require.NoError(t, err)
	assert.Equal(t, 0.85, rate)

	rate, err = c.GetOrFetch(context.Background(), "USD", "EUR", fetch, false)
	require.NoError(t, err)
	assert.Equal(t, 0.85, rate)
	assert.Equal(t, 1, calls, "second call must be served from the cache")
	assert.Equal(t, int64(1), c.Snapshot().ProviderCallsAvoided)
}

func TestGetOrFetchPropagatesFetchFailure(t *testing.T) {
	c, _ := newTestCache(Options{})
	fetchErr := errors.New("provider down")

	_, err := c.GetOrFetch(context.Background(), "USD", "EUR", func(ctx context.Context) (float64, error) {
		return 0, fetchErr
	}, false)

	assert.ErrorIs(t, err, fetchErr)
	assert.Equal(t, 0, c.Len(), "failures must not be cached")
}

func TestSnapshotHitRateAndAges(t *testing.T) {
	c, now := newTestCache(Options{})

	c.Set("USD", "EUR", 0.9, SourceAPI)
	*now = now.Add(10 * time.Minute)
	c.Set("GBP", "EUR", 1.2, SourceAPI)

	c.Get("USD", "EUR", false) // hit
	c.Get("CHF", "EUR", false) // miss

	m := c.Snapshot()
	assert.Equal(t, 0.5, m.HitRate)
	assert.Equal(t, 10*time.Minute, m.OldestEntryAge)
	assert.Equal(t, time.Duration(0), m.NewestEntryAge)
	assert.Equal(t, 0.5, m.AvgAccessCount)
}

func TestSweepRemovesEntriesOlderThanCurrentTTL(t *testing.T) {
	c, now := newTestCache(Options{})

	// A historical-context entry is swept under the default TTL too.
	c.Set("USD", "EUR", 0.9, SourceDatabase)
	*now = now.Add(3 * time.Hour)
	c.Set("GBP", "EUR", 1.2, SourceAPI)

	c.sweep()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("GBP", "EUR", false)
	assert.True(t, ok)
}

func TestStartStopLifecycle(t *testing.T) {
	c := New(Options{CleanupInterval: time.Millisecond})

	c.Start(context.Background())
	c.Start(context.Background()) // double start is a no-op
	time.Sleep(5 * time.Millisecond)
	c.Stop()
	c.Stop() // double stop is safe
}

func TestConcurrentAccessKeepsStructureIntact(t *testing.T) {
	c := New(Options{Capacity: 50})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				from := fmt.Sprintf("C%02d", (worker+j)%60)
				c.Set(from, "EUR", 1.0+float64(j), SourceAPI)
				c.Get(from, "EUR", false)
				if j%50 == 0 {
					c.Invalidate(from)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
	assert.Equal(t, c.Len(), c.recency.Len(), "map and recency list must stay in sync")
}
