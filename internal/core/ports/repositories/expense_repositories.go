package repositories

import (
	"context"

	"github.com/velsh/expense_tracker_app/internal/models"
)

// ExpenseRepository exposes the read-only view of the expense store that the
// conversion subsystem needs. Expense writes belong to the surrounding
// application and are out of scope here.
type ExpenseRepository interface {
	FindExpenseByID(ctx context.Context, expenseID string) (*models.Expense, error)
	// FindAllExpensesForMigration pages through the expense collection for the
	// backfill job. Ordering must be stable across calls.
	FindAllExpensesForMigration(ctx context.Context, limit, offset int) ([]models.Expense, error)
}
