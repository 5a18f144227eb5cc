package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is the persisted expense record as the conversion core sees it.
// The expense store itself is owned by the surrounding application; this
// subsystem only reads expenses, it never creates or mutates them.
type Expense struct {
	ExpenseID   string          `json:"expenseID"` // Primary Key (e.g., UUID)
	UserID      string          `json:"userID"`    // FK -> User.userID
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`   // Stored as NUMERIC; precise decimal type
	Currency    string          `json:"currency"` // 3-letter code, treated as opaque
	// ConversionRate is the legacy inline rate to the base currency, present
	// only on expenses created before per-expense historical rates existed.
	ConversionRate *float64  `json:"conversionRate,omitempty"`
	Date           time.Time `json:"date"`
	AuditFields
}
