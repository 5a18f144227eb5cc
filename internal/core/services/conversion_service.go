package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/velsh/expense_tracker_app/internal/apperrors"
	portsprov "github.com/velsh/expense_tracker_app/internal/core/ports/providers"
	portsrepo "github.com/velsh/expense_tracker_app/internal/core/ports/repositories"
	"github.com/velsh/expense_tracker_app/internal/core/ratecache"
	"github.com/velsh/expense_tracker_app/internal/dto"
)

// conversionService is the single authoritative conversion algorithm. It is
// the sole consumer of the rate cache and the historical-rate store, and the
// only component allowed to call the live rate provider.
type conversionService struct {
	cache          *ratecache.Cache
	historicalRepo portsrepo.HistoricalRateRepository
	provider       portsprov.RateProvider
	logger         *slog.Logger
}

// NewConversionService creates the conversion engine. The cache is shared,
// lifetime-scoped state owned by the caller; the engine only borrows it.
func NewConversionService(cache *ratecache.Cache, historicalRepo portsrepo.HistoricalRateRepository, provider portsprov.RateProvider, logger *slog.Logger) *conversionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &conversionService{
		cache:          cache,
		historicalRepo: historicalRepo,
		provider:       provider,
		logger:         logger,
	}
}

// Convert resolves a rate for the request and applies it. The fallback chain
// is ordered and the first success wins:
//
//  1. same currency: the amount is returned untouched, no collaborator is hit
//  2. frozen historical rate, when an expense identity is given
//  3. cached or live direct rate
//  4. cached or live inverse rate (amount divided, never by zero)
//  5. identity fallback: the unconverted amount with a logged warning, so that
//     reporting never hard-fails on one bad currency pair
//
// Strict mode replaces step 5 with apperrors.ErrRateUnavailable. No rounding
// is applied; presentation-layer rounding is an external concern.
func (s *conversionService) Convert(ctx context.Context, req dto.ConversionRequest) (float64, error) {
	if req.From == req.To {
		return req.Amount, nil
	}

	if req.ExpenseID != "" {
		historical, err := s.historicalRepo.FindHistoricalRate(ctx, req.ExpenseID, req.From, req.To)
		if err == nil && historical.Rate > 0 {
			return req.Amount * historical.Rate, nil
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			// A failing store is not fatal for the read path; fall through to
			// the live sources.
			s.logger.Warn("historical rate lookup failed, falling back to live sources",
				slog.String("expense_id", req.ExpenseID),
				slog.String("from", req.From),
				slog.String("to", req.To),
				slog.String("error", err.Error()),
			)
		}
	}

	if rate, err := s.FetchCurrentRate(ctx, req.From, req.To); err == nil {
		return req.Amount * rate, nil
	}

	if inverse, err := s.FetchCurrentRate(ctx, req.To, req.From); err == nil && inverse != 0 {
		return req.Amount / inverse, nil
	}

	if req.Strict {
		return 0, fmt.Errorf("%w: no source produced a rate for %s->%s", apperrors.ErrRateUnavailable, req.From, req.To)
	}

	s.logger.Warn("no exchange rate available, returning amount unconverted",
		slog.String("from", req.From),
		slog.String("to", req.To),
	)
	return req.Amount, nil
}

// FetchCurrentRate resolves a live rate through the cache-or-provider path.
// Provider failures propagate; nothing is cached on failure.
func (s *conversionService) FetchCurrentRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error) {
	return s.cache.GetOrFetch(ctx, fromCurrency, toCurrency, func(ctx context.Context) (float64, error) {
		return s.provider.FetchLiveRate(ctx, fromCurrency, toCurrency)
	}, false)
}
