package services

import "github.com/velsh/expense_tracker_app/internal/core/ratecache"

// ServiceContainer bundles the service implementations handed to the HTTP
// layer at startup. RateCache is exposed directly because its metrics and
// invalidation operations are part of the public surface.
type ServiceContainer struct {
	Conversion     ConversionSvcFacade
	HistoricalRate HistoricalRateSvcFacade
	Migration      MigrationSvcFacade
	Freshness      FreshnessSvcFacade
	RateCache      *ratecache.Cache
}
