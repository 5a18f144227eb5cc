package services

import (
	"context"

	"github.com/velsh/expense_tracker_app/internal/dto"
)

// ConversionSvcFacade is the single authoritative entry point for turning an
// amount in one currency into another. It owns the fallback chain: frozen
// historical rate, cached/live direct rate, cached/live inverse rate, and
// finally the identity fallback (or an error in strict mode).
type ConversionSvcFacade interface {
	Convert(ctx context.Context, req dto.ConversionRequest) (float64, error)
	// FetchCurrentRate resolves a live rate through the cache-or-provider
	// path without any historical lookup. Provider failures propagate.
	FetchCurrentRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error)
}
