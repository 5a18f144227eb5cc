package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/velsh/expense_tracker_app/internal/apperrors"
	portsprov "github.com/velsh/expense_tracker_app/internal/core/ports/providers"
	portsrepo "github.com/velsh/expense_tracker_app/internal/core/ports/repositories"
	"github.com/velsh/expense_tracker_app/internal/core/ratecache"
	"github.com/velsh/expense_tracker_app/internal/dto"
	"github.com/velsh/expense_tracker_app/internal/models"
)

// freshnessService answers "are today's rates already refreshed?" before an
// operation that depends on current pricing, and if not, races a refresh
// against a caller-supplied timeout. Freshness is advisory: a timeout never
// blocks the caller's write.
type freshnessService struct {
	rateHistoryRepo     portsrepo.RateHistoryRepository
	provider            portsprov.RateProvider
	cache               *ratecache.Cache
	baseCurrency        string
	supportedCurrencies []string
	logger              *slog.Logger
}

// NewFreshnessService creates the freshness guard.
func NewFreshnessService(rateHistoryRepo portsrepo.RateHistoryRepository, provider portsprov.RateProvider, cache *ratecache.Cache, baseCurrency string, supportedCurrencies []string, logger *slog.Logger) *freshnessService {
	if logger == nil {
		logger = slog.Default()
	}
	return &freshnessService{
		rateHistoryRepo:     rateHistoryRepo,
		provider:            provider,
		cache:               cache,
		baseCurrency:        baseCurrency,
		supportedCurrencies: supportedCurrencies,
		logger:              logger,
	}
}

// EnsureFresh returns immediately when the newest rate observation is from
// today. Otherwise it starts a refresh and races it against the timeout: the
// refresh winning yields Updated, the timeout winning yields TimedOut and the
// refresh is cancelled. A late refresh result is discarded, never applied
// retroactively. Provider failures propagate so the caller knows rates are
// stale.
func (s *freshnessService) EnsureFresh(ctx context.Context, timeout time.Duration) (dto.FreshnessResult, error) {
	latest, err := s.rateHistoryRepo.LatestFetchTime(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return dto.FreshnessResult{}, fmt.Errorf("failed to read last rate refresh time: %w", err)
	}
	if err == nil && sameDay(latest, time.Now()) {
		return dto.FreshnessResult{Success: true}, nil
	}

	refreshCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so a refresh that finishes after the timeout has somewhere to
	// put its result and exit; nobody reads it.
	done := make(chan error, 1)
	go func() {
		done <- s.refreshAll(refreshCtx)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return dto.FreshnessResult{}, err
		}
		return dto.FreshnessResult{Success: true, Updated: true}, nil
	case <-timer.C:
		cancel()
		s.logger.Warn("rate refresh timed out, proceeding with available rates",
			slog.Duration("timeout", timeout),
		)
		return dto.FreshnessResult{Success: true, TimedOut: true}, nil
	case <-ctx.Done():
		return dto.FreshnessResult{Success: true, TimedOut: true}, nil
	}
}

// refreshAll fetches the live rate from every supported currency to the base
// currency, stores the observations and warms the cache. Individual pair
// failures are tolerated; the refresh fails only when no pair resolved.
func (s *freshnessService) refreshAll(ctx context.Context) error {
	now := time.Now()
	var points []models.RatePoint
	var lastErr error

	for _, currency := range s.supportedCurrencies {
		if currency == s.baseCurrency {
			continue
		}
		rate, err := s.provider.FetchLiveRate(ctx, currency, s.baseCurrency)
		if err != nil {
			lastErr = err
			s.logger.Warn("rate refresh failed for pair",
				slog.String("from", currency),
				slog.String("to", s.baseCurrency),
				slog.String("error", err.Error()),
			)
			continue
		}
		points = append(points, models.RatePoint{
			RatePointID:  uuid.NewString(),
			FromCurrency: currency,
			ToCurrency:   s.baseCurrency,
			Rate:         rate,
			FetchedAt:    now,
		})
		s.cache.Set(currency, s.baseCurrency, rate, ratecache.SourceAPI)
	}

	if len(points) == 0 {
		if lastErr != nil {
			return fmt.Errorf("rate refresh produced no rates: %w", lastErr)
		}
		return nil
	}

	if err := s.rateHistoryRepo.SaveRatePoints(ctx, points); err != nil {
		return fmt.Errorf("failed to persist refreshed rates: %w", err)
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
