package models

import "time"

// HistoricalRate freezes the exchange rate that was in force when an expense
// was recorded, so later rate movements never change already-reported amounts.
// Rows are immutable after creation: they are only ever created if absent and
// deleted by cascade when the parent expense is deleted. The logical primary
// key is (expenseID, fromCurrency, toCurrency).
type HistoricalRate struct {
	HistoricalRateID string    `json:"historicalRateID"` // Surrogate key (UUID)
	ExpenseID        string    `json:"expenseID"`        // FK -> Expense.expenseID
	FromCurrency     string    `json:"fromCurrency"`
	ToCurrency       string    `json:"toCurrency"`
	Rate             float64   `json:"rate"` // Always > 0; a non-positive rate is never persisted
	RecordedAt       time.Time `json:"recordedAt"`
	CreatedAt        time.Time `json:"createdAt"`
}
