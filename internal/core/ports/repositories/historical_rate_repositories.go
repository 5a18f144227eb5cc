package repositories

import (
	"context"

	"github.com/velsh/expense_tracker_app/internal/models"
)

// HistoricalRateRepository persists the per-expense frozen rates. Rows are
// append-only: CreateHistoricalRates must treat an insert that collides with
// an existing (expenseID, from, to) row as a harmless no-op, never an error,
// so that concurrent check-then-insert writers cannot corrupt the store.
type HistoricalRateRepository interface {
	FindHistoricalRate(ctx context.Context, expenseID, fromCurrency, toCurrency string) (*models.HistoricalRate, error)
	CountHistoricalRatesForExpense(ctx context.Context, expenseID string) (int, error)
	CreateHistoricalRates(ctx context.Context, rates []models.HistoricalRate) error
}
