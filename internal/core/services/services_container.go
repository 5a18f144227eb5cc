package services

import (
	"log/slog"

	portsprov "github.com/velsh/expense_tracker_app/internal/core/ports/providers"
	portsrepo "github.com/velsh/expense_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/velsh/expense_tracker_app/internal/core/ports/services"
	"github.com/velsh/expense_tracker_app/internal/core/ratecache"
	"github.com/velsh/expense_tracker_app/internal/platform/config"
)

// NewServiceContainer wires the conversion subsystem together. The cache
// instance is shared by reference across the services; its lifecycle
// (Start/Stop of the cleanup sweep) stays with the caller.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, provider portsprov.RateProvider, cache *ratecache.Cache, logger *slog.Logger) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{RateCache: cache}

	container.Conversion = NewConversionService(cache, repos.HistoricalRateRepo, provider, logger)
	container.HistoricalRate = NewHistoricalRateService(
		repos.HistoricalRateRepo,
		repos.ExpenseRepo,
		container.Conversion,
		cfg.BaseCurrency,
		logger,
	)
	container.Migration = NewMigrationService(
		repos.ExpenseRepo,
		repos.HistoricalRateRepo,
		repos.RateHistoryRepo,
		container.Conversion,
		cfg.BaseCurrency,
		cfg.SupportedCurrencies,
		cfg.MigrationBatchSize,
		logger,
	)
	container.Freshness = NewFreshnessService(
		repos.RateHistoryRepo,
		provider,
		cache,
		cfg.BaseCurrency,
		cfg.SupportedCurrencies,
		logger,
	)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.ConversionSvcFacade     = (*conversionService)(nil)
	_ portssvc.HistoricalRateSvcFacade = (*historicalRateService)(nil)
	_ portssvc.MigrationSvcFacade      = (*migrationService)(nil)
	_ portssvc.FreshnessSvcFacade      = (*freshnessService)(nil)
)
