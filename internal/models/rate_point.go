package models

import "time"

// RatePoint is one row of the general rate-history table: a rate observed for
// a currency pair at a point in time. It is not tied to any expense. The
// backfill job uses it for closest-in-window lookups and the freshness guard
// reads the newest FetchedAt as the "last updated" timestamp.
type RatePoint struct {
	RatePointID  string    `json:"ratePointID"` // Surrogate key (UUID)
	FromCurrency string    `json:"fromCurrency"`
	ToCurrency   string    `json:"toCurrency"`
	Rate         float64   `json:"rate"` // Always > 0
	FetchedAt    time.Time `json:"fetchedAt"`
}
