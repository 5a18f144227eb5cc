package providers

import "context"

// RateProvider is the live exchange-rate source. Implementations are treated
// as unreliable and possibly slow: every call takes a context and must be
// abandonable on deadline. A non-positive rate is never returned; providers
// report it as an error instead.
type RateProvider interface {
	FetchLiveRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error)
}
