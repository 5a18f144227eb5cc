package services

import (
	"context"
	"time"

	"github.com/velsh/expense_tracker_app/internal/dto"
)

// HistoricalRateSvcFacade manages the per-expense frozen rates.
type HistoricalRateSvcFacade interface {
	// GetRate returns the frozen rate for an expense and pair. Same-currency
	// pairs return 1 without touching the store.
	GetRate(ctx context.Context, expenseID, fromCurrency, toCurrency string) (float64, error)
	// SaveRatesForExpense snapshots the current rate from the expense's
	// currency to the base currency. Provider failures are logged and
	// swallowed; only persistence failures are returned.
	SaveRatesForExpense(ctx context.Context, expenseID string, recordedAt time.Time) error
	// SaveRatesForExpenseAsync runs SaveRatesForExpense in a detached
	// goroutine with its own deadline. Errors are logged, never propagated.
	SaveRatesForExpenseAsync(expenseID string, recordedAt time.Time)
}

// MigrationSvcFacade runs the historical-rate backfill over existing expenses.
type MigrationSvcFacade interface {
	MigrateExistingExpenses(ctx context.Context) *dto.MigrationResult
}

// FreshnessSvcFacade checks whether today's rates have been refreshed and, if
// not, races a refresh against the given timeout.
type FreshnessSvcFacade interface {
	EnsureFresh(ctx context.Context, timeout time.Duration) (dto.FreshnessResult, error)
}
