package repositories

import (
	"context"
	"time"

	"github.com/velsh/expense_tracker_app/internal/models"
)

// RateHistoryRepository persists observed rates not tied to any expense.
type RateHistoryRepository interface {
	// FindClosestRateInWindow returns the rate point for the pair whose
	// FetchedAt is closest to date, as long as it is within maxDaysDiff days
	// on either side. Returns apperrors.ErrNotFound when no candidate exists.
	FindClosestRateInWindow(ctx context.Context, fromCurrency, toCurrency string, date time.Time, maxDaysDiff int) (*models.RatePoint, error)
	// LatestFetchTime returns the newest FetchedAt across all rate points, or
	// apperrors.ErrNotFound when the table is empty.
	LatestFetchTime(ctx context.Context) (time.Time, error)
	SaveRatePoints(ctx context.Context, points []models.RatePoint) error
}
