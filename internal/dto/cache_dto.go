package dto

// CacheMetricsResponse is the API shape for exchange-rate cache metrics.
type CacheMetricsResponse struct {
	Hits                 int64   `json:"hits"`
	Misses               int64   `json:"misses"`
	Entries              int     `json:"entries"`
	Evictions            int64   `json:"evictions"`
	Expired              int64   `json:"expired"`
	ProviderCallsAvoided int64   `json:"providerCallsAvoided"`
	HitRate              float64 `json:"hitRate"`
	AvgAccessCount       float64 `json:"avgAccessCount"`
	OldestEntryAgeMs     int64   `json:"oldestEntryAgeMs"`
	NewestEntryAgeMs     int64   `json:"newestEntryAgeMs"`
}

// InvalidateCacheResponse reports how many cache entries an invalidation removed.
type InvalidateCacheResponse struct {
	RemovedCount int `json:"removedCount"`
}
