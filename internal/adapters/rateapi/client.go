// Package rateapi adapts the external exchange-rate HTTP API to the
// providers.RateProvider port. The provider is treated as unreliable and
// possibly slow: every request carries the caller's context and any network,
// decoding or data problem is reported as apperrors.ErrRateUnavailable.
package rateapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/velsh/expense_tracker_app/internal/apperrors"
)

const defaultRequestTimeout = 10 * time.Second

// Client calls a frankfurter-style latest-rates endpoint:
// GET {baseURL}/latest?base={from}&symbols={to} -> {"rates": {"{to}": 0.93}}
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a rate API client. timeout bounds each individual request
// in addition to whatever deadline the caller's context carries.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type latestRatesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// FetchLiveRate fetches the current rate for one currency pair. A rate that
// the API does not know, or reports as zero or negative, is an error: callers
// rely on never receiving a non-positive rate.
func (c *Client) FetchLiveRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error) {
	reqURL := fmt.Sprintf("%s/latest?base=%s&symbols=%s",
		c.baseURL, url.QueryEscape(fromCurrency), url.QueryEscape(toCurrency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: building rate request for %s->%s: %v", apperrors.ErrRateUnavailable, fromCurrency, toCurrency, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: fetching rate %s->%s: %v", apperrors.ErrRateUnavailable, fromCurrency, toCurrency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: rate API returned status %d for %s->%s", apperrors.ErrRateUnavailable, resp.StatusCode, fromCurrency, toCurrency)
	}

	var payload latestRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("%w: decoding rate response for %s->%s: %v", apperrors.ErrRateUnavailable, fromCurrency, toCurrency, err)
	}

	rate, ok := payload.Rates[toCurrency]
	if !ok {
		return 0, fmt.Errorf("%w: rate API has no rate for %s->%s", apperrors.ErrRateUnavailable, fromCurrency, toCurrency)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("%w: rate API returned non-positive rate %v for %s->%s", apperrors.ErrRateUnavailable, rate, fromCurrency, toCurrency)
	}
	return rate, nil
}
